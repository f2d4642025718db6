package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"go.hackfix.me/todo/db/models"
	"go.hackfix.me/todo/mediator"
	"go.hackfix.me/todo/todo"
	"go.hackfix.me/todo/weather"
	"go.hackfix.me/todo/web/server/handler"
	"go.hackfix.me/todo/web/server/types"
)

// Authenticator checks user credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, name, password string) (*models.User, error)
}

// TokenIssuer issues access tokens for authenticated users.
type TokenIssuer interface {
	Issue(user *models.User) (string, time.Time, error)
}

// Services are the application services exposed by the API.
type Services struct {
	Todos     *todo.Service
	Forecasts mediator.HandlerFunc[weather.GetWeatherForecasts, []weather.Forecast]
	Users     Authenticator
	Tokens    TokenIssuer
	// Ping checks that the database is reachable.
	Ping    func(ctx context.Context) error
	Version string
}

// Handler is the API endpoint handler.
type Handler struct {
	svc    Services
	logger *slog.Logger
}

// SetupHandlers configures the web API handlers. Routes are relative to the
// API root, which is expected to be mounted at /api.
func SetupHandlers(svc Services, logger *slog.Logger) http.Handler {
	h := Handler{svc: svc, logger: logger}
	mux := http.NewServeMux()

	p := handler.NewPipeline(logger)
	pJSON := p.ProcessRequest(handler.RequireJSON)
	todos := svc.Todos

	mux.Handle("POST /auth/token", handler.Handle(pJSON, h.issueToken,
		handler.DecodeJSON[types.TokenRequest], handler.JSON[*types.TokenResponse](http.StatusOK)))

	mux.Handle("GET /todo-lists", handler.Handle(p, todos.GetTodos,
		handler.None[todo.GetTodos](), handler.JSON[*todo.TodosVM](http.StatusOK)))
	mux.Handle("POST /todo-lists", handler.Handle(pJSON, todos.CreateTodoList,
		handler.DecodeJSON[todo.CreateTodoList], handler.Created(todoListsPath)))
	mux.Handle("PUT /todo-lists/{id}", handler.Handle(pJSON, todos.UpdateTodoList,
		decodeUpdateTodoList, handler.NoContent[struct{}]()))
	mux.Handle("DELETE /todo-lists/{id}", handler.Handle(p, todos.DeleteTodoList,
		decodeDeleteTodoList, handler.NoContent[struct{}]()))
	mux.Handle("DELETE /todo-lists", handler.Handle(p, todos.PurgeTodoLists,
		handler.None[todo.PurgeTodoLists](), respondPurged))
	mux.Handle("GET /todo-lists/{id}/export", handler.Handle(p, todos.ExportTodos,
		decodeExportTodos, respondFile))

	mux.Handle("GET /todo-items", handler.Handle(p, todos.GetTodoItemsWithPagination,
		decodeGetTodoItems, handler.JSON[*todo.PaginatedList[todo.TodoItemBriefDTO]](http.StatusOK)))
	mux.Handle("POST /todo-items", handler.Handle(pJSON, todos.CreateTodoItem,
		handler.DecodeJSON[todo.CreateTodoItem], handler.Created(todoItemsPath)))
	mux.Handle("PUT /todo-items/{id}", handler.Handle(pJSON, todos.UpdateTodoItem,
		decodeUpdateTodoItem, handler.NoContent[struct{}]()))
	mux.Handle("PUT /todo-items/{id}/detail", handler.Handle(pJSON, todos.UpdateTodoItemDetail,
		decodeUpdateTodoItemDetail, handler.NoContent[struct{}]()))
	mux.Handle("DELETE /todo-items/{id}", handler.Handle(p, todos.DeleteTodoItem,
		decodeDeleteTodoItem, handler.NoContent[struct{}]()))

	mux.Handle("GET /weather-forecasts", handler.Handle(p, svc.Forecasts,
		handler.None[weather.GetWeatherForecasts](), handler.JSON[[]weather.Forecast](http.StatusOK)))

	mux.HandleFunc("GET /health", h.health)

	return mux
}
