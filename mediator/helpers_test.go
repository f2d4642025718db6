package mediator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
)

type openRequest struct {
	Value string
}

type userRequest struct{}

func (userRequest) AuthorizationRule() AuthorizationRule { return Authenticated }

type adminRequest struct{}

func (adminRequest) AuthorizationRule() AuthorizationRule {
	return AuthorizationRule{Roles: " Administrator , Manager "}
}

type purgeRequest struct{}

func (purgeRequest) AuthorizationRule() AuthorizationRule {
	return AuthorizationRule{Roles: "Administrator", Policies: "CanPurge"}
}

type mockIdentity struct {
	mock.Mock
}

func (m *mockIdentity) IsInRole(ctx context.Context, userID, role string) (bool, error) {
	args := m.Called(ctx, userID, role)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdentity) Authorize(ctx context.Context, userID, policy string) (bool, error) {
	args := m.Called(ctx, userID, policy)
	return args.Bool(0), args.Error(1)
}

func (m *mockIdentity) UserName(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func staticUser(id string) CurrentUser {
	return CurrentUserFunc(func(context.Context) string { return id })
}

type logRecorder struct {
	mu      sync.Mutex
	records []slog.Record
}

var _ slog.Handler = (*logRecorder)(nil)

func (h *logRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (h *logRecorder) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r.Clone())
	return nil
}

func (h *logRecorder) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *logRecorder) WithGroup(string) slog.Handler { return h }

func (h *logRecorder) Records() []slog.Record {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]slog.Record(nil), h.records...)
}

func recordAttrs(r slog.Record) map[string]any {
	attrs := map[string]any{}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})
	return attrs
}

func newRecordingLogger() (*slog.Logger, *logRecorder) {
	rec := &logRecorder{}
	return slog.New(rec), rec
}

// stepClock advances by step on every call to Now.
type stepClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

var timeNow = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
