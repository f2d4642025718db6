package models

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/todo/db/types"
)

var timeNow = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

type mockDB struct {
	*sql.DB
	ctx context.Context
}

func (d mockDB) NewContext() context.Context { return d.ctx }

func (d mockDB) TimeNow() time.Time { return timeNow }

func newMockDB(t *testing.T) (mockDB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = sqlDB.Close()
	})

	return mockDB{DB: sqlDB, ctx: t.Context()}, mock
}

func TestTodoListSaveConcurrency(t *testing.T) {
	t.Parallel()

	d, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE todo_lists`)).
		WithArgs(timeNow, "bob", "Work", Red.Code, uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	list := &TodoList{ID: 4, UpdatedBy: "bob", Title: "Work", Colour: Red}
	err := list.Save(t.Context(), d, true)
	assert.Equal(t, types.ConcurrencyError{ModelName: "todo list", ID: "ID 4"}, err)
}

func TestTodoItemSaveConcurrency(t *testing.T) {
	t.Parallel()

	d, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE todo_items`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	item := &TodoItem{ID: 9, ListID: 1, Title: "Milk"}
	err := item.Save(t.Context(), d, true)
	assert.Equal(t, types.ConcurrencyError{ModelName: "todo item", ID: "ID 9"}, err)
}

func TestTodoItemSaveNew(t *testing.T) {
	t.Parallel()

	d, mock := newMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO todo_items`)).
		WillReturnResult(sqlmock.NewResult(12, 1))

	item := &TodoItem{ListID: 1, CreatedBy: "alice", Title: "Milk"}
	require.NoError(t, item.Save(t.Context(), d, false))
	assert.Equal(t, uint64(12), item.ID)
	assert.Equal(t, timeNow, item.CreatedAt)
	assert.Equal(t, "alice", item.UpdatedBy)
}

func TestTodoListsQueryError(t *testing.T) {
	t.Parallel()

	errConn := errors.New("connection reset")
	d, mock := newMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM todo_lists l`)).WillReturnError(errConn)

	_, err := TodoLists(t.Context(), d, nil)
	assert.Equal(t, types.LoadError{ModelName: "todo lists", Err: errConn}, err)
	assert.ErrorIs(t, err, errConn)
}

func TestTodoListsUnknownColour(t *testing.T) {
	t.Parallel()

	d, mock := newMockDB(t)
	rows := sqlmock.NewRows([]string{
		"id", "created_at", "created_by", "updated_at", "updated_by", "title", "colour",
	}).AddRow(1, timeNow, "", timeNow, "", "Work", "#000000")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM todo_lists l`)).WillReturnRows(rows)

	_, err := TodoLists(t.Context(), d, nil)
	var scanErr types.ScanError
	require.ErrorAs(t, err, &scanErr)
	assert.Equal(t, UnsupportedColourError{Code: "#000000"}, scanErr.Err)
}

func TestTodoItemsPaging(t *testing.T) {
	t.Parallel()

	d, mock := newMockDB(t)
	rows := sqlmock.NewRows([]string{
		"id", "list_id", "created_at", "created_by", "updated_at", "updated_by",
		"title", "note", "priority", "reminder", "done",
	}).AddRow(3, 1, timeNow, "a", timeNow, "a", "Milk", "", 2, nil, false)
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY i.title ASC LIMIT ? OFFSET ?`)).
		WithArgs(uint64(1), 5, 10).
		WillReturnRows(rows)

	items, err := TodoItems(t.Context(), d, &types.Filter{
		Where: "list_id = ?", Args: []any{uint64(1)},
		OrderBy: "i.title ASC", Limit: 5, Offset: 10,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, PriorityMedium, items[0].Priority)
	assert.False(t, items[0].Reminder.Valid)
}

func TestLoadRequiresID(t *testing.T) {
	t.Parallel()

	d, _ := newMockDB(t)

	tests := []struct {
		name   string
		load   func() error
		expErr error
	}{
		{
			name:   "err/todo_list",
			load:   func() error { return (&TodoList{}).Load(t.Context(), d) },
			expErr: types.InvalidInputError{Msg: "either todo list ID or Title must be set"},
		},
		{
			name:   "err/todo_item",
			load:   func() error { return (&TodoItem{}).Load(t.Context(), d) },
			expErr: types.InvalidInputError{Msg: "todo item ID must be set"},
		},
		{
			name:   "err/user",
			load:   func() error { return (&User{}).Load(t.Context(), d) },
			expErr: types.InvalidInputError{Msg: "either user ID or Name must be set"},
		},
		{
			name:   "err/role",
			load:   func() error { return (&Role{}).Load(t.Context(), d) },
			expErr: types.InvalidInputError{Msg: "either role ID or Name must be set"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expErr, tt.load())
		})
	}
}

func TestColourFromCode(t *testing.T) {
	t.Parallel()

	c, err := ColourFromCode("#ffc300")
	require.NoError(t, err)
	assert.Equal(t, Orange, c)

	_, err = ColourFromCode("orange")
	assert.Equal(t, UnsupportedColourError{Code: "orange"}, err)
}

func TestPriorityLevel(t *testing.T) {
	t.Parallel()

	for _, p := range PriorityLevels() {
		assert.True(t, p.Valid())
		assert.NotEqual(t, "Unknown", p.String())
	}
	assert.False(t, PriorityLevel(4).Valid())
	assert.Equal(t, "Unknown", PriorityLevel(-1).String())
}
