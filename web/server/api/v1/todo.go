package api

import (
	"fmt"
	"net/http"

	"go.hackfix.me/todo/todo"
	"go.hackfix.me/todo/web/server/handler"
	"go.hackfix.me/todo/web/server/types"
)

const (
	todoListsPath = "/api/todo-lists"
	todoItemsPath = "/api/todo-items"
)

func decodeUpdateTodoList(r *http.Request) (todo.UpdateTodoList, error) {
	req, err := handler.DecodeJSON[todo.UpdateTodoList](r)
	if err != nil {
		return req, err
	}
	req.ID, err = handler.PathID(r, "id")

	return req, err
}

func decodeDeleteTodoList(r *http.Request) (todo.DeleteTodoList, error) {
	id, err := handler.PathID(r, "id")
	return todo.DeleteTodoList{ID: id}, err
}

func decodeExportTodos(r *http.Request) (todo.ExportTodos, error) {
	id, err := handler.PathID(r, "id")
	return todo.ExportTodos{ListID: id, Format: r.URL.Query().Get("format")}, err
}

func decodeGetTodoItems(r *http.Request) (todo.GetTodoItemsWithPagination, error) {
	var (
		req todo.GetTodoItemsWithPagination
		err error
	)
	if req.ListID, err = handler.QueryUint(r, "listId"); err != nil {
		return req, err
	}
	if req.PageNumber, err = handler.QueryInt(r, "pageNumber", todo.DefaultPageNumber); err != nil {
		return req, err
	}
	req.PageSize, err = handler.QueryInt(r, "pageSize", todo.DefaultPageSize)

	return req, err
}

func decodeUpdateTodoItem(r *http.Request) (todo.UpdateTodoItem, error) {
	req, err := handler.DecodeJSON[todo.UpdateTodoItem](r)
	if err != nil {
		return req, err
	}
	req.ID, err = handler.PathID(r, "id")

	return req, err
}

func decodeUpdateTodoItemDetail(r *http.Request) (todo.UpdateTodoItemDetail, error) {
	req, err := handler.DecodeJSON[todo.UpdateTodoItemDetail](r)
	if err != nil {
		return req, err
	}
	req.ID, err = handler.PathID(r, "id")

	return req, err
}

func decodeDeleteTodoItem(r *http.Request) (todo.DeleteTodoItem, error) {
	id, err := handler.PathID(r, "id")
	return todo.DeleteTodoItem{ID: id}, err
}

func respondPurged(w http.ResponseWriter, _ *http.Request, count int64) error {
	return handler.WriteJSON(w, http.StatusOK, types.Purged{Count: count})
}

func respondFile(w http.ResponseWriter, _ *http.Request, f *todo.ExportFile) error {
	w.Header().Set("Content-Type", f.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.FileName))
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(f.Content)

	//nolint:wrapcheck // Wrapped by caller.
	return err
}
