package db

import (
	"context"
	"fmt"
	"math"

	"go.hackfix.me/todo/db/models"
	"go.hackfix.me/todo/db/types"
	"go.hackfix.me/todo/mediator"
)

// Store persists todo lists and items. It records the current user in the
// audit fields of every saved record.
type Store struct {
	d    types.Querier
	user mediator.CurrentUser
}

// NewStore returns a new Store that runs its queries with d.
func NewStore(d types.Querier, user mediator.CurrentUser) *Store {
	return &Store{d: d, user: user}
}

// SQLite row IDs are signed 64-bit integers, so larger IDs can't match any
// record. The driver rejects them as query arguments.
func storableID(id uint64) bool {
	return id <= math.MaxInt64
}

// TodoList returns the list with its items.
func (s *Store) TodoList(ctx context.Context, id uint64) (*models.TodoList, error) {
	if !storableID(id) {
		return nil, types.NoResultError{ModelName: "todo list", ID: fmt.Sprintf("ID %d", id)}
	}
	list := &models.TodoList{ID: id}
	if err := list.Load(ctx, s.d); err != nil {
		return nil, err
	}

	return list, nil
}

// TodoLists returns all lists with their items, ordered by title.
func (s *Store) TodoLists(ctx context.Context) ([]*models.TodoList, error) {
	lists, err := models.TodoLists(ctx, s.d, nil)
	if err != nil {
		return nil, err
	}
	if err = models.LoadTodoListItems(ctx, s.d, lists); err != nil {
		return nil, err
	}

	return lists, nil
}

// TodoListTitleExists returns true if a list other than excludeID has the
// given title.
func (s *Store) TodoListTitleExists(ctx context.Context, title string, excludeID uint64) (bool, error) {
	if !storableID(excludeID) {
		excludeID = 0
	}
	return models.TodoListTitleExists(ctx, s.d, title, excludeID)
}

// SaveTodoList creates or updates the list.
func (s *Store) SaveTodoList(ctx context.Context, list *models.TodoList, update bool) error {
	if update {
		list.UpdatedBy = s.user.UserID(ctx)
	} else {
		list.CreatedBy = s.user.UserID(ctx)
	}

	return list.Save(ctx, s.d, update)
}

// DeleteTodoList removes the list and its items.
func (s *Store) DeleteTodoList(ctx context.Context, list *models.TodoList) error {
	return list.Delete(ctx, s.d)
}

// PurgeTodoLists removes all lists and items.
func (s *Store) PurgeTodoLists(ctx context.Context) (int64, error) {
	return models.DeleteAllTodoLists(ctx, s.d)
}

// TodoItem returns a single item.
func (s *Store) TodoItem(ctx context.Context, id uint64) (*models.TodoItem, error) {
	if !storableID(id) {
		return nil, types.NoResultError{ModelName: "todo item", ID: fmt.Sprintf("ID %d", id)}
	}
	item := &models.TodoItem{ID: id}
	if err := item.Load(ctx, s.d); err != nil {
		return nil, err
	}

	return item, nil
}

// CountTodoItems returns the number of items in a list.
func (s *Store) CountTodoItems(ctx context.Context, listID uint64) (int, error) {
	if !storableID(listID) {
		return 0, nil
	}
	return models.CountTodoItems(ctx, s.d, types.NewFilter("list_id = ?", []any{listID}))
}

// TodoItemsPage returns limit items of a list ordered by title, skipping the
// first offset items.
func (s *Store) TodoItemsPage(ctx context.Context, listID uint64, offset, limit int) ([]*models.TodoItem, error) {
	if !storableID(listID) {
		return []*models.TodoItem{}, nil
	}
	return models.TodoItems(ctx, s.d, &types.Filter{
		Where:   "list_id = ?",
		Args:    []any{listID},
		OrderBy: "i.title ASC, i.id ASC",
		Limit:   limit,
		Offset:  offset,
	})
}

// SaveTodoItem creates or updates the item.
func (s *Store) SaveTodoItem(ctx context.Context, item *models.TodoItem, update bool) error {
	if update {
		item.UpdatedBy = s.user.UserID(ctx)
	} else {
		item.CreatedBy = s.user.UserID(ctx)
	}

	return item.Save(ctx, s.d, update)
}

// DeleteTodoItem removes the item.
func (s *Store) DeleteTodoItem(ctx context.Context, item *models.TodoItem) error {
	return item.Delete(ctx, s.d)
}
