package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	aerrors "go.hackfix.me/todo/app/errors"
	"go.hackfix.me/todo/db"
	"go.hackfix.me/todo/db/models"
	"go.hackfix.me/todo/db/queries"
	"go.hackfix.me/todo/identity"
	"go.hackfix.me/todo/todo"
	"go.hackfix.me/todo/web/client"
)

func TestAppInit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		expStdout []string
		expStderr string
		expErr    string
		expHint   string
	}{
		{
			name:    "err/uninitialized",
			args:    []string{"user", "ls"},
			expErr:  "todo is not initialized",
			expHint: "run 'todo init' first",
		},
		{
			name:      "ok/weather_uninitialized",
			args:      []string{"weather"},
			expStdout: []string{"2025-01-02", "2025-01-06"},
		},
		{
			name:      "ok/init",
			args:      []string{"init"},
			expStderr: "database initialized",
		},
		{
			name:    "err/init_again",
			args:    []string{"init"},
			expErr:  "the database is already initialized with version v0.0.0-dev",
			expHint: "remove the data directory to start over",
		},
		{
			name: "ok/user_ls_empty",
			args: []string{"user", "ls"},
		},
	}

	tctx, cancel, h := newTestContext(t, 5*time.Second)
	defer cancel()

	app, err := newTestApp(tctx)
	h(assert.NoError(t, err))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err = app.Run(tt.args...)

			if tt.expErr != "" {
				h(assert.EqualError(t, err, tt.expErr))
				var rerr *aerrors.RuntimeError
				h(assert.ErrorAs(t, err, &rerr))
				h(assert.Equal(t, tt.expHint, rerr.Hint()))
			} else {
				h(assert.NoError(t, err))
			}

			stdout := app.stdout.String()
			if len(tt.expStdout) == 0 {
				h(assert.Empty(t, stdout))
			}
			for _, exp := range tt.expStdout {
				h(assert.Contains(t, stdout, exp))
			}
			if tt.expStderr != "" {
				h(assert.Contains(t, app.stderr.String(), tt.expStderr))
			}
		})
	}

	version, err := queries.Version(app.ctx.DB.NewContext(), app.ctx.DB)
	h(assert.NoError(t, err))
	h(assert.Equal(t, "v0.0.0-dev", version.V))
}

func TestAppUser(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		args      []string
		expStdout []string
		expStderr string
		expErr    string
		expCause  string
		expUsers  []string
	}{
		{
			name:      "ok/add",
			args:      []string{"add", "alice", "--password", "alicepass"},
			expStderr: "added user name=alice",
			expUsers:  []string{"alice"},
		},
		{
			name:     "ok/add_admin",
			args:     []string{"add", "root", "--password", "rootpass", "--role", "Administrator"},
			expUsers: []string{"alice", "root"},
		},
		{
			name:     "err/add_invalid_role",
			args:     []string{"add", "carol", "--password", "carolpass", "--role", "Guest"},
			expErr:   "invalid role 'Guest'",
			expUsers: []string{"alice", "root"},
		},
		{
			name:     "err/add_exists",
			args:     []string{"add", "alice", "--password", "other"},
			expErr:   "failed adding user 'alice'",
			expCause: "user with name 'alice' already exists",
			expUsers: []string{"alice", "root"},
		},
		{
			name:     "err/add_no_password",
			args:     []string{"add", "dave"},
			expErr:   "failed parsing CLI arguments: missing flags: --password=STRING",
			expUsers: []string{"alice", "root"},
		},
		{
			name:      "ok/ls",
			args:      []string{"ls"},
			expStdout: []string{"alice", "root", "Administrator", "2025-01-01 00:00:00"},
			expUsers:  []string{"alice", "root"},
		},
		{
			name:     "err/token_unknown_user",
			args:     []string{"token", "nobody"},
			expErr:   "failed loading user 'nobody'",
			expUsers: []string{"alice", "root"},
		},
		{
			name:     "err/token_past_expiration",
			args:     []string{"token", "alice", "--expiration", "2024-12-31T00:00:00Z"},
			expErr:   "expiration time is in the past",
			expUsers: []string{"alice", "root"},
		},
		{
			name:     "ok/rm",
			args:     []string{"rm", "root"},
			expUsers: []string{"alice"},
		},
		{
			name:     "err/rm_missing",
			args:     []string{"rm", "root"},
			expErr:   "failed removing user 'root'",
			expCause: "user with name 'root' doesn't exist",
			expUsers: []string{"alice"},
		},
	}

	tctx, cancel, h := newTestContext(t, 5*time.Second)
	defer cancel()

	app, err := newTestApp(tctx)
	h(assert.NoError(t, err))

	err = initTestDB(app.ctx, nil)
	h(assert.NoError(t, err))

	for _, tt := range tests {
		args := []string{"user"}
		t.Run(tt.name, func(t *testing.T) {
			args = append(args, tt.args...)
			err = app.Run(args...)

			if tt.expErr != "" {
				h(assert.ErrorContains(t, err, tt.expErr))
			} else {
				h(assert.NoError(t, err))
			}
			if tt.expCause != "" {
				var serr *aerrors.StructuredError
				h(assert.True(t, errors.As(err, &serr)))
				h(assert.EqualError(t, serr.Cause(), tt.expCause))
			}

			stdout := app.stdout.String()
			for _, exp := range tt.expStdout {
				h(assert.Contains(t, stdout, exp))
			}
			if tt.expStderr != "" {
				h(assert.Contains(t, app.stderr.String(), tt.expStderr))
			}

			users, err := models.Users(app.ctx.DB.NewContext(), app.ctx.DB, nil)
			h(assert.NoError(t, err))
			names := make([]string, len(users))
			for i, u := range users {
				names[i] = u.Name
			}
			h(assert.ElementsMatch(t, tt.expUsers, names))
		})
	}
}

func TestAppUserToken(t *testing.T) {
	t.Parallel()

	tctx, cancel, h := newTestContext(t, 5*time.Second)
	defer cancel()

	app, err := newTestApp(tctx)
	h(assert.NoError(t, err))

	err = initTestDB(app.ctx, []testUser{{name: "alice", password: "alicepass", roles: []string{db.RoleUser}}})
	h(assert.NoError(t, err))

	dbCtx := app.ctx.DB.NewContext()
	alice := &models.User{Name: "alice"}
	h(assert.NoError(t, alice.Load(dbCtx, app.ctx.DB)))
	secret, err := queries.TokenSecret(dbCtx, app.ctx.DB)
	h(assert.NoError(t, err))

	verify := func(token string, after time.Duration) (string, error) {
		tokens, terr := identity.NewTokens(secret, time.Hour,
			func() time.Time { return timeNow.Add(after) })
		if terr != nil {
			return "", terr
		}
		return tokens.Verify(token)
	}

	tests := []struct {
		name     string
		args     []string
		validFor time.Duration
	}{
		{name: "ok/default_expiration", args: []string{"user", "token", "alice"}, validFor: 12 * time.Hour},
		{name: "ok/duration", args: []string{"user", "token", "alice", "--expiration", "1h"}, validFor: time.Hour},
		{
			name:     "ok/timestamp",
			args:     []string{"user", "token", "alice", "--expiration", "2025-01-03T00:00:00Z"},
			validFor: 48 * time.Hour,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err = app.Run(tt.args...)
			h(assert.NoError(t, err))

			token := strings.TrimSpace(app.stdout.String())
			h(assert.NotEmpty(t, token))

			userID, verr := verify(token, tt.validFor-time.Second)
			h(assert.NoError(t, verr))
			h(assert.Equal(t, alice.ID, userID))

			_, verr = verify(token, tt.validFor+time.Second)
			var terr identity.InvalidTokenError
			h(assert.ErrorAs(t, verr, &terr))
		})
	}
}

func TestAppServe(t *testing.T) {
	t.Parallel()

	tctx, cancel, h := newTestContext(t, 10*time.Second)
	defer cancel()

	app, err := newTestApp(tctx)
	h(assert.NoError(t, err))

	err = initTestDB(app.ctx, []testUser{{name: "alice", password: "alicepass", roles: []string{db.RoleUser}}})
	h(assert.NoError(t, err))

	addrCh := make(chan string)
	app.stderr.waitFor(`started listener.*address=(\S+)`, 1, addrCh)

	runErr := make(chan error)
	go func() {
		runErr <- app.Run("serve", "127.0.0.1:0")
	}()

	var addr string
	select {
	case addr = <-addrCh:
	case err = <-runErr:
		h(assert.NoError(t, err))
		t.FailNow()
	case <-tctx.Done():
		t.Fatal("timed out waiting for the web server to start")
	}

	c := client.New("http://" + addr)
	_, err = c.Login(tctx, "alice", "alicepass")
	h(assert.NoError(t, err))

	listID, err := c.CreateTodoList(tctx, todo.CreateTodoList{Title: "Chores"})
	h(assert.NoError(t, err))

	vm, err := c.TodoLists(tctx)
	h(assert.NoError(t, err))
	h(assert.Len(t, vm.Lists, 1))
	h(assert.Equal(t, listID, vm.Lists[0].ID))
	h(assert.Equal(t, "Chores", vm.Lists[0].Title))

	forecasts, err := c.WeatherForecasts(tctx)
	h(assert.NoError(t, err))
	h(assert.NotEmpty(t, forecasts))

	cancel()
	select {
	case err = <-runErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the web server to stop")
	}
}
