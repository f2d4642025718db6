package todo

import (
	"context"
	"errors"
	"log/slog"

	"go.hackfix.me/todo/db/models"
	dbtypes "go.hackfix.me/todo/db/types"
	"go.hackfix.me/todo/mediator"
)

// Service exposes every todo operation as a function that runs the request
// through the mediator pipeline.
type Service struct {
	CreateTodoList             mediator.HandlerFunc[CreateTodoList, uint64]
	UpdateTodoList             mediator.HandlerFunc[UpdateTodoList, struct{}]
	DeleteTodoList             mediator.HandlerFunc[DeleteTodoList, struct{}]
	PurgeTodoLists             mediator.HandlerFunc[PurgeTodoLists, int64]
	CreateTodoItem             mediator.HandlerFunc[CreateTodoItem, uint64]
	UpdateTodoItem             mediator.HandlerFunc[UpdateTodoItem, struct{}]
	UpdateTodoItemDetail       mediator.HandlerFunc[UpdateTodoItemDetail, struct{}]
	DeleteTodoItem             mediator.HandlerFunc[DeleteTodoItem, struct{}]
	GetTodos                   mediator.HandlerFunc[GetTodos, *TodosVM]
	GetTodoItemsWithPagination mediator.HandlerFunc[GetTodoItemsWithPagination, *PaginatedList[TodoItemBriefDTO]]
	ExportTodos                mediator.HandlerFunc[ExportTodos, *ExportFile]
}

// Option configures the Service.
type Option func(*handlers)

// WithPublisher sets the publisher of todo events. By default events are
// logged with slog.Default.
func WithPublisher(pub Publisher) Option {
	return func(h *handlers) {
		h.events = pub
	}
}

// NewService registers all todo handlers with the pipeline p.
func NewService(p *mediator.Pipeline, store Store, opts ...Option) *Service {
	h := &handlers{store: store, events: LogPublisher{Logger: slog.Default()}}
	for _, opt := range opts {
		opt(h)
	}

	return &Service{
		CreateTodoList: mediator.Handle(p, h.createTodoList,
			fieldRules[CreateTodoList](),
			supportedColour(func(r CreateTodoList) string { return r.Colour }),
			uniqueListTitle(store, func(r CreateTodoList) (string, uint64) { return r.Title, 0 }),
		),
		UpdateTodoList: mediator.Handle(p, h.updateTodoList,
			fieldRules[UpdateTodoList](),
			supportedColour(func(r UpdateTodoList) string { return r.Colour }),
			uniqueListTitle(store, func(r UpdateTodoList) (string, uint64) { return r.Title, r.ID }),
		),
		DeleteTodoList: mediator.Handle(p, h.deleteTodoList, fieldRules[DeleteTodoList]()),
		PurgeTodoLists: mediator.Handle(p, h.purgeTodoLists),
		CreateTodoItem: mediator.Handle(p, h.createTodoItem, fieldRules[CreateTodoItem]()),
		UpdateTodoItem: mediator.Handle(p, h.updateTodoItem, fieldRules[UpdateTodoItem]()),
		UpdateTodoItemDetail: mediator.Handle(p, h.updateTodoItemDetail,
			fieldRules[UpdateTodoItemDetail]()),
		DeleteTodoItem: mediator.Handle(p, h.deleteTodoItem, fieldRules[DeleteTodoItem]()),
		GetTodos:       mediator.Handle(p, h.getTodos),
		GetTodoItemsWithPagination: mediator.Handle(p, h.getTodoItemsWithPagination,
			fieldRules[GetTodoItemsWithPagination]()),
		ExportTodos: mediator.Handle(p, h.exportTodos, fieldRules[ExportTodos]()),
	}
}

type handlers struct {
	store  Store
	events Publisher
}

func (h *handlers) createTodoList(ctx context.Context, req CreateTodoList) (uint64, error) {
	if req.Title == "" {
		return 0, mediator.ArgumentError{Name: "Title", Msg: "must not be empty"}
	}

	colour := models.White
	if req.Colour != "" {
		var err error
		if colour, err = models.ColourFromCode(req.Colour); err != nil {
			return 0, mediator.ArgumentError{Name: "Colour", Msg: err.Error()}
		}
	}

	list := &models.TodoList{Title: req.Title, Colour: colour}
	if err := h.store.SaveTodoList(ctx, list, false); err != nil {
		return 0, err
	}

	return list.ID, nil
}

func (h *handlers) updateTodoList(ctx context.Context, req UpdateTodoList) (struct{}, error) {
	list, err := h.todoList(ctx, req.ID)
	if err != nil {
		return struct{}{}, err
	}

	changed := false
	if req.Title != "" && req.Title != list.Title {
		list.Title = req.Title
		changed = true
	}
	if req.Colour != "" {
		colour, err := models.ColourFromCode(req.Colour)
		if err != nil {
			return struct{}{}, mediator.ArgumentError{Name: "Colour", Msg: err.Error()}
		}
		if colour != list.Colour {
			list.Colour = colour
			changed = true
		}
	}

	if !changed {
		return struct{}{}, nil
	}

	return struct{}{}, h.store.SaveTodoList(ctx, list, true)
}

func (h *handlers) deleteTodoList(ctx context.Context, req DeleteTodoList) (struct{}, error) {
	list, err := h.todoList(ctx, req.ID)
	if err != nil {
		return struct{}{}, err
	}

	return struct{}{}, notFound(h.store.DeleteTodoList(ctx, list), "TodoList", req.ID)
}

func (h *handlers) purgeTodoLists(ctx context.Context, _ PurgeTodoLists) (int64, error) {
	return h.store.PurgeTodoLists(ctx)
}

func (h *handlers) createTodoItem(ctx context.Context, req CreateTodoItem) (uint64, error) {
	if req.Title == "" {
		return 0, mediator.ArgumentError{Name: "Title", Msg: "must not be empty"}
	}
	if _, err := h.todoList(ctx, req.ListID); err != nil {
		return 0, err
	}

	item := &models.TodoItem{ListID: req.ListID, Title: req.Title}
	if err := h.store.SaveTodoItem(ctx, item, false); err != nil {
		return 0, err
	}

	return item.ID, nil
}

func (h *handlers) updateTodoItem(ctx context.Context, req UpdateTodoItem) (struct{}, error) {
	item, err := h.todoItem(ctx, req.ID)
	if err != nil {
		return struct{}{}, err
	}

	changed, completed := false, false
	if req.Title != nil && *req.Title != "" && *req.Title != item.Title {
		item.Title = *req.Title
		changed = true
	}
	if req.Done != nil && *req.Done != item.Done {
		completed = *req.Done
		item.Done = *req.Done
		changed = true
	}

	if !changed {
		return struct{}{}, nil
	}
	if err = h.store.SaveTodoItem(ctx, item, true); err != nil {
		return struct{}{}, err
	}

	if completed {
		h.events.Publish(ctx, ItemCompleted{ItemID: item.ID, ListID: item.ListID, Title: item.Title})
	}

	return struct{}{}, nil
}

func (h *handlers) updateTodoItemDetail(ctx context.Context, req UpdateTodoItemDetail) (struct{}, error) {
	item, err := h.todoItem(ctx, req.ID)
	if err != nil {
		return struct{}{}, err
	}

	changed := false
	if req.ListID != 0 && req.ListID != item.ListID {
		if _, err = h.todoList(ctx, req.ListID); err != nil {
			return struct{}{}, err
		}
		item.ListID = req.ListID
		changed = true
	}
	if req.Priority != item.Priority {
		if !req.Priority.Valid() {
			return struct{}{}, mediator.ArgumentError{Name: "Priority", Msg: "unknown priority level"}
		}
		item.Priority = req.Priority
		changed = true
	}
	if req.Note != nil && *req.Note != item.Note {
		item.Note = *req.Note
		changed = true
	}

	if !changed {
		return struct{}{}, nil
	}

	return struct{}{}, h.store.SaveTodoItem(ctx, item, true)
}

func (h *handlers) deleteTodoItem(ctx context.Context, req DeleteTodoItem) (struct{}, error) {
	item, err := h.todoItem(ctx, req.ID)
	if err != nil {
		return struct{}{}, err
	}

	return struct{}{}, notFound(h.store.DeleteTodoItem(ctx, item), "TodoItem", req.ID)
}

func (h *handlers) getTodos(ctx context.Context, _ GetTodos) (*TodosVM, error) {
	lists, err := h.store.TodoLists(ctx)
	if err != nil {
		return nil, err
	}

	vm := &TodosVM{
		PriorityLevels: priorityLookups(),
		Colours:        colourDTOs(),
		Lists:          make([]TodoListDTO, 0, len(lists)),
	}
	for _, l := range lists {
		vm.Lists = append(vm.Lists, toTodoListDTO(l))
	}

	return vm, nil
}

func (h *handlers) getTodoItemsWithPagination(
	ctx context.Context, req GetTodoItemsWithPagination,
) (*PaginatedList[TodoItemBriefDTO], error) {
	return Paginate(ctx, listItemsSource{store: h.store, listID: req.ListID},
		req.PageNumber, req.PageSize, toTodoItemBriefDTO)
}

func (h *handlers) exportTodos(ctx context.Context, req ExportTodos) (*ExportFile, error) {
	list, err := h.todoList(ctx, req.ListID)
	if err != nil {
		return nil, err
	}

	return exportList(list, req.Format)
}

func (h *handlers) todoList(ctx context.Context, id uint64) (*models.TodoList, error) {
	list, err := h.store.TodoList(ctx, id)
	if err != nil {
		return nil, notFound(err, "TodoList", id)
	}

	return list, nil
}

func (h *handlers) todoItem(ctx context.Context, id uint64) (*models.TodoItem, error) {
	item, err := h.store.TodoItem(ctx, id)
	if err != nil {
		return nil, notFound(err, "TodoItem", id)
	}

	return item, nil
}

// notFound converts a missing record error into a mediator.NotFoundError.
func notFound(err error, entity string, key uint64) error {
	var nrErr dbtypes.NoResultError
	if errors.As(err, &nrErr) {
		return mediator.NotFoundError{Entity: entity, Key: key}
	}

	return err
}
