package models

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.hackfix.me/todo/db/types"
)

// TodoList is a titled collection of todo items.
type TodoList struct {
	ID        uint64
	CreatedAt time.Time
	CreatedBy string
	UpdatedAt time.Time
	UpdatedBy string
	Title     string
	Colour    Colour
	Items     []*TodoItem
}

// Save stores the list data in the database. Items are saved separately.
// Updating a list that no longer exists returns a types.ConcurrencyError.
func (l *TodoList) Save(ctx context.Context, d types.Querier, update bool) error {
	timeNow := d.TimeNow().UTC()
	if l.Colour == (Colour{}) {
		l.Colour = White
	}

	if update {
		if l.ID == 0 {
			return errors.New("must provide a todo list ID to update")
		}

		res, err := d.ExecContext(ctx, `UPDATE todo_lists
			SET updated_at = ?,
			    updated_by = ?,
			    title = ?,
			    colour = ?
			WHERE id = ?`,
			timeNow, l.UpdatedBy, l.Title, l.Colour.Code, l.ID)
		if err != nil {
			return types.Err("todo list", fmt.Sprintf("title '%s'", l.Title), err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed getting affected rows: %w", err)
		}
		if n == 0 {
			return types.ConcurrencyError{ModelName: "todo list", ID: fmt.Sprintf("ID %d", l.ID)}
		}
		l.UpdatedAt = timeNow
	} else {
		res, err := d.ExecContext(ctx, `INSERT INTO todo_lists
			(id, created_at, created_by, updated_at, updated_by, title, colour)
			VALUES (NULL, ?, ?, ?, ?, ?, ?)`,
			timeNow, l.CreatedBy, timeNow, l.CreatedBy, l.Title, l.Colour.Code)
		if err != nil {
			return types.Err("todo list", fmt.Sprintf("title '%s'", l.Title), err)
		}

		l.ID, err = lastInsertID(res)
		if err != nil {
			return err
		}
		l.CreatedAt = timeNow
		l.UpdatedAt = timeNow
		l.UpdatedBy = l.CreatedBy
	}

	return nil
}

// Load the list and its items from the database. Either the list ID or Title
// must be set for the lookup.
func (l *TodoList) Load(ctx context.Context, d types.Querier) error {
	if l.ID == 0 && l.Title == "" {
		return types.InvalidInputError{Msg: "either todo list ID or Title must be set"}
	}

	var filter *types.Filter
	var filterStr string
	if l.ID != 0 {
		filter = &types.Filter{Where: "l.id = ?", Args: []any{l.ID}}
		filterStr = fmt.Sprintf("ID %d", l.ID)
	} else {
		filter = &types.Filter{Where: "l.title = ?", Args: []any{l.Title}}
		filterStr = fmt.Sprintf("title '%s'", l.Title)
	}

	lists, err := TodoLists(ctx, d, filter)
	if err != nil {
		return err
	}
	if len(lists) == 0 {
		return types.NoResultError{ModelName: "todo list", ID: filterStr}
	}

	if err = LoadTodoListItems(ctx, d, lists[:1]); err != nil {
		return err
	}
	*l = *lists[0]

	return nil
}

// Delete removes the list and all its items from the database. It returns an
// error if the list doesn't exist.
func (l *TodoList) Delete(ctx context.Context, d types.Querier) error {
	if l.ID == 0 {
		return types.InvalidInputError{Msg: "todo list ID must be set"}
	}

	filterStr := fmt.Sprintf("ID %d", l.ID)
	if _, err := d.ExecContext(ctx, `DELETE FROM todo_items WHERE list_id = ?`, l.ID); err != nil {
		return types.Err("todo list items", filterStr, err)
	}

	res, err := d.ExecContext(ctx, `DELETE FROM todo_lists WHERE id = ?`, l.ID)
	if err != nil {
		return types.Err("todo list", filterStr, err)
	}

	var n int64
	if n, err = res.RowsAffected(); err != nil {
		return fmt.Errorf("failed getting affected rows: %w", err)
	} else if n == 0 {
		return types.NoResultError{ModelName: "todo list", ID: filterStr}
	}

	return nil
}

// DeleteAllTodoLists removes every list and item, and returns the number of
// removed lists.
func DeleteAllTodoLists(ctx context.Context, d types.Querier) (int64, error) {
	if _, err := d.ExecContext(ctx, `DELETE FROM todo_items`); err != nil {
		return 0, fmt.Errorf("failed deleting todo items: %w", err)
	}

	res, err := d.ExecContext(ctx, `DELETE FROM todo_lists`)
	if err != nil {
		return 0, fmt.Errorf("failed deleting todo lists: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed getting affected rows: %w", err)
	}

	return n, nil
}

// TodoLists returns lists from the database without their items, ordered by
// title unless the filter says otherwise. An optional filter can be passed to
// limit the results.
func TodoLists(ctx context.Context, d types.Querier, filter *types.Filter) (lists []*TodoList, rerr error) {
	where, args := whereClause(filter)
	tail, tailArgs := filter.Tail("l.title ASC")
	query := fmt.Sprintf(`SELECT l.id, l.created_at, l.created_by, l.updated_at,
		     l.updated_by, l.title, l.colour
		FROM todo_lists l
		WHERE %s
		%s`, where, tail)

	rows, err := d.QueryContext(ctx, query, slices.Concat(args, tailArgs)...)
	if err != nil {
		return nil, types.LoadError{ModelName: "todo lists", Err: err}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = fmt.Errorf("failed closing todo lists rows: %w", err)
		}
	}()

	lists = make([]*TodoList, 0)
	for rows.Next() {
		var (
			l          TodoList
			colourCode string
		)
		err = rows.Scan(&l.ID, &l.CreatedAt, &l.CreatedBy, &l.UpdatedAt,
			&l.UpdatedBy, &l.Title, &colourCode)
		if err != nil {
			return nil, types.ScanError{ModelName: "todo list", Err: err}
		}
		if l.Colour, err = ColourFromCode(colourCode); err != nil {
			return nil, types.ScanError{ModelName: "todo list", Err: err}
		}
		lists = append(lists, &l)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over todo lists rows: %w", err)
	}

	return lists, nil
}

// LoadTodoListItems loads the items of all lists with a single query. Items
// are ordered by ID.
func LoadTodoListItems(ctx context.Context, d types.Querier, lists []*TodoList) error {
	if len(lists) == 0 {
		return nil
	}

	byID := make(map[uint64]*TodoList, len(lists))
	placeholders := make([]string, 0, len(lists))
	args := make([]any, 0, len(lists))
	for _, l := range lists {
		l.Items = []*TodoItem{}
		byID[l.ID] = l
		placeholders = append(placeholders, "?")
		args = append(args, l.ID)
	}

	items, err := TodoItems(ctx, d, &types.Filter{
		Where: fmt.Sprintf("list_id IN (%s)", strings.Join(placeholders, ", ")),
		Args:  args,
	})
	if err != nil {
		return err
	}

	for _, item := range items {
		if l, ok := byID[item.ListID]; ok {
			l.Items = append(l.Items, item)
		}
	}

	return nil
}

// TodoListTitleExists returns true if a list other than excludeID has the
// given title.
func TodoListTitleExists(ctx context.Context, d types.Querier, title string, excludeID uint64) (bool, error) {
	count, err := filterCount(ctx, d, "todo_lists", &types.Filter{
		Where: "title = ? AND id != ?", Args: []any{title, excludeID},
	})
	if err != nil {
		return false, err
	}

	return count > 0, nil
}
