package todo

import (
	"context"

	"go.hackfix.me/todo/db/models"
)

// Store is the persistence layer used by the handlers. Lookups of missing
// records return a db/types.NoResultError, and updates of records that were
// removed concurrently return a db/types.ConcurrencyError.
type Store interface {
	// TodoList returns the list with its items.
	TodoList(ctx context.Context, id uint64) (*models.TodoList, error)
	// TodoLists returns all lists with their items, ordered by title.
	TodoLists(ctx context.Context) ([]*models.TodoList, error)
	TodoListTitleExists(ctx context.Context, title string, excludeID uint64) (bool, error)
	SaveTodoList(ctx context.Context, list *models.TodoList, update bool) error
	DeleteTodoList(ctx context.Context, list *models.TodoList) error
	PurgeTodoLists(ctx context.Context) (int64, error)

	TodoItem(ctx context.Context, id uint64) (*models.TodoItem, error)
	CountTodoItems(ctx context.Context, listID uint64) (int, error)
	// TodoItemsPage returns limit items of a list ordered by title, skipping
	// the first offset items.
	TodoItemsPage(ctx context.Context, listID uint64, offset, limit int) ([]*models.TodoItem, error)
	SaveTodoItem(ctx context.Context, item *models.TodoItem, update bool) error
	DeleteTodoItem(ctx context.Context, item *models.TodoItem) error
}

type listItemsSource struct {
	store  Store
	listID uint64
}

var _ PageSource[*models.TodoItem] = listItemsSource{}

func (s listItemsSource) Count(ctx context.Context) (int, error) {
	return s.store.CountTodoItems(ctx, s.listID)
}

func (s listItemsSource) Page(ctx context.Context, offset, limit int) ([]*models.TodoItem, error) {
	return s.store.TodoItemsPage(ctx, s.listID, offset, limit)
}
