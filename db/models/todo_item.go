package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"time"

	"go.hackfix.me/todo/db/types"
)

// TodoItem is a single entry of a todo list.
type TodoItem struct {
	ID        uint64
	ListID    uint64
	CreatedAt time.Time
	CreatedBy string
	UpdatedAt time.Time
	UpdatedBy string
	Title     string
	Note      string
	Priority  PriorityLevel
	Reminder  sql.Null[time.Time]
	Done      bool
}

// Save stores the item data in the database. Updating an item that no longer
// exists returns a types.ConcurrencyError.
func (i *TodoItem) Save(ctx context.Context, d types.Querier, update bool) error {
	timeNow := d.TimeNow().UTC()
	idStr := fmt.Sprintf("ID %d", i.ID)

	if update {
		if i.ID == 0 {
			return errors.New("must provide a todo item ID to update")
		}

		res, err := d.ExecContext(ctx, `UPDATE todo_items
			SET updated_at = ?,
			    updated_by = ?,
			    list_id = ?,
			    title = ?,
			    note = ?,
			    priority = ?,
			    reminder = ?,
			    done = ?
			WHERE id = ?`,
			timeNow, i.UpdatedBy, i.ListID, i.Title, i.Note, i.Priority,
			i.Reminder, i.Done, i.ID)
		if err != nil {
			return types.Err("todo item", idStr, err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed getting affected rows: %w", err)
		}
		if n == 0 {
			return types.ConcurrencyError{ModelName: "todo item", ID: idStr}
		}
		i.UpdatedAt = timeNow
	} else {
		res, err := d.ExecContext(ctx, `INSERT INTO todo_items
			(id, list_id, created_at, created_by, updated_at, updated_by,
			 title, note, priority, reminder, done)
			VALUES (NULL, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			i.ListID, timeNow, i.CreatedBy, timeNow, i.CreatedBy,
			i.Title, i.Note, i.Priority, i.Reminder, i.Done)
		if err != nil {
			return types.Err("todo item", fmt.Sprintf("list ID %d", i.ListID), err)
		}

		i.ID, err = lastInsertID(res)
		if err != nil {
			return err
		}
		i.CreatedAt = timeNow
		i.UpdatedAt = timeNow
		i.UpdatedBy = i.CreatedBy
	}

	return nil
}

// Load the item data from the database. The item ID must be set.
func (i *TodoItem) Load(ctx context.Context, d types.Querier) error {
	if i.ID == 0 {
		return types.InvalidInputError{Msg: "todo item ID must be set"}
	}

	items, err := TodoItems(ctx, d, &types.Filter{Where: "id = ?", Args: []any{i.ID}})
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return types.NoResultError{ModelName: "todo item", ID: fmt.Sprintf("ID %d", i.ID)}
	}
	*i = *items[0]

	return nil
}

// Delete removes the item from the database. It returns an error if the item
// doesn't exist.
func (i *TodoItem) Delete(ctx context.Context, d types.Querier) error {
	if i.ID == 0 {
		return types.InvalidInputError{Msg: "todo item ID must be set"}
	}

	idStr := fmt.Sprintf("ID %d", i.ID)
	res, err := d.ExecContext(ctx, `DELETE FROM todo_items WHERE id = ?`, i.ID)
	if err != nil {
		return types.Err("todo item", idStr, err)
	}

	var n int64
	if n, err = res.RowsAffected(); err != nil {
		return fmt.Errorf("failed getting affected rows: %w", err)
	} else if n == 0 {
		return types.NoResultError{ModelName: "todo item", ID: idStr}
	}

	return nil
}

// TodoItems returns items from the database, ordered by ID unless the filter
// says otherwise. An optional filter can be passed to limit the results.
func TodoItems(ctx context.Context, d types.Querier, filter *types.Filter) (items []*TodoItem, rerr error) {
	where, args := whereClause(filter)
	tail, tailArgs := filter.Tail("i.id ASC")
	query := fmt.Sprintf(`SELECT i.id, i.list_id, i.created_at, i.created_by,
		     i.updated_at, i.updated_by, i.title, i.note, i.priority,
		     i.reminder, i.done
		FROM todo_items i
		WHERE %s
		%s`, where, tail)

	rows, err := d.QueryContext(ctx, query, slices.Concat(args, tailArgs)...)
	if err != nil {
		return nil, types.LoadError{ModelName: "todo items", Err: err}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = fmt.Errorf("failed closing todo items rows: %w", err)
		}
	}()

	items = make([]*TodoItem, 0)
	for rows.Next() {
		var i TodoItem
		err = rows.Scan(&i.ID, &i.ListID, &i.CreatedAt, &i.CreatedBy,
			&i.UpdatedAt, &i.UpdatedBy, &i.Title, &i.Note, &i.Priority,
			&i.Reminder, &i.Done)
		if err != nil {
			return nil, types.ScanError{ModelName: "todo item", Err: err}
		}
		items = append(items, &i)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over todo items rows: %w", err)
	}

	return items, nil
}

// CountTodoItems returns the number of items matching the filter.
func CountTodoItems(ctx context.Context, d types.Querier, filter *types.Filter) (int, error) {
	where, args := whereClause(filter)
	return filterCount(ctx, d, "todo_items", &types.Filter{Where: where, Args: args})
}
