package todo

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/todo/db"
	"go.hackfix.me/todo/db/models"
	"go.hackfix.me/todo/mediator"
)

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type mockStore struct {
	mock.Mock
}

var _ Store = (*mockStore)(nil)

func (m *mockStore) TodoList(ctx context.Context, id uint64) (*models.TodoList, error) {
	args := m.Called(ctx, id)
	list, _ := args.Get(0).(*models.TodoList)
	return list, args.Error(1)
}

func (m *mockStore) TodoLists(ctx context.Context) ([]*models.TodoList, error) {
	args := m.Called(ctx)
	lists, _ := args.Get(0).([]*models.TodoList)
	return lists, args.Error(1)
}

func (m *mockStore) TodoListTitleExists(ctx context.Context, title string, excludeID uint64) (bool, error) {
	args := m.Called(ctx, title, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStore) SaveTodoList(ctx context.Context, list *models.TodoList, update bool) error {
	args := m.Called(ctx, list, update)
	return args.Error(0)
}

func (m *mockStore) DeleteTodoList(ctx context.Context, list *models.TodoList) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *mockStore) PurgeTodoLists(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1) //nolint:forcetypeassert // Test setup.
}

func (m *mockStore) TodoItem(ctx context.Context, id uint64) (*models.TodoItem, error) {
	args := m.Called(ctx, id)
	item, _ := args.Get(0).(*models.TodoItem)
	return item, args.Error(1)
}

func (m *mockStore) CountTodoItems(ctx context.Context, listID uint64) (int, error) {
	args := m.Called(ctx, listID)
	return args.Int(0), args.Error(1)
}

func (m *mockStore) TodoItemsPage(ctx context.Context, listID uint64, offset, limit int) ([]*models.TodoItem, error) {
	args := m.Called(ctx, listID, offset, limit)
	items, _ := args.Get(0).([]*models.TodoItem)
	return items, args.Error(1)
}

func (m *mockStore) SaveTodoItem(ctx context.Context, item *models.TodoItem, update bool) error {
	args := m.Called(ctx, item, update)
	return args.Error(0)
}

func (m *mockStore) DeleteTodoItem(ctx context.Context, item *models.TodoItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

// stubIdentity grants roles and policies from static maps keyed by user ID.
type stubIdentity struct {
	roles    map[string][]string
	policies map[string][]string
}

func (s stubIdentity) IsInRole(_ context.Context, userID, role string) (bool, error) {
	return slices.Contains(s.roles[userID], role), nil
}

func (s stubIdentity) Authorize(_ context.Context, userID, policy string) (bool, error) {
	return slices.Contains(s.policies[userID], policy), nil
}

func (s stubIdentity) UserName(_ context.Context, userID string) (string, error) {
	return "user-" + userID, nil
}

type userKey struct{}

func withUser(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userKey{}, id)
}

var currentUser = mediator.CurrentUserFunc(func(ctx context.Context) string {
	id, _ := ctx.Value(userKey{}).(string)
	return id
})

func newTestPipeline() *mediator.Pipeline {
	identity := stubIdentity{
		roles:    map[string][]string{"admin": {"Administrator"}, "boss": {"Administrator"}},
		policies: map[string][]string{"admin": {"CanPurge"}},
	}
	return mediator.Default(slog.New(slog.DiscardHandler), currentUser, identity)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(_ context.Context, event Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}

// newTestDBStore returns a store backed by a new initialized in-memory SQLite
// database.
func newTestDBStore(t *testing.T) *db.Store {
	t.Helper()

	rndName := make([]byte, 12)
	_, err := rand.Read(rndName)
	require.NoError(t, err)

	d, err := db.Open(t.Context(),
		fmt.Sprintf("file:todo-%x?mode=memory&cache=shared", rndName),
		func() time.Time { return timeNow })
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	require.NoError(t, d.Init("test", slog.New(slog.DiscardHandler)))

	return db.NewStore(d, currentUser)
}
