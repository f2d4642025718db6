package identity

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.hackfix.me/todo/crypto"
	"go.hackfix.me/todo/db"
	"go.hackfix.me/todo/db/models"
)

var timeNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	rndName := make([]byte, 12)
	_, err := rand.Read(rndName)
	require.NoError(t, err)

	d, err := db.Open(t.Context(),
		fmt.Sprintf("file:identity-%x?mode=memory&cache=shared", rndName),
		func() time.Time { return timeNow })
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, d.Init("test", slog.New(slog.DiscardHandler)))

	return d
}

func addUser(t *testing.T, d *db.DB, name, password string, roles ...string) *models.User {
	t.Helper()

	hash, err := crypto.HashPassword(password)
	require.NoError(t, err)

	user := &models.User{Name: name, PasswordHash: hash}
	for _, r := range roles {
		user.Roles = append(user.Roles, &models.Role{Name: r})
	}
	require.NoError(t, user.Save(d.NewContext(), d, false))

	return user
}

func TestServiceRolesAndPolicies(t *testing.T) {
	t.Parallel()

	d := newTestDB(t)
	admin := addUser(t, d, "root", "supersecret", db.RoleAdministrator)
	user := addUser(t, d, "alice", "alicepass", db.RoleUser)
	svc := NewService(d, NewPolicySet())
	ctx := t.Context()

	tests := []struct {
		name   string
		check  func() (bool, error)
		exp    bool
		expErr error
	}{
		{
			name:  "ok/admin_in_role",
			check: func() (bool, error) { return svc.IsInRole(ctx, admin.ID, db.RoleAdministrator) },
			exp:   true,
		},
		{
			name:  "ok/user_not_admin",
			check: func() (bool, error) { return svc.IsInRole(ctx, user.ID, db.RoleAdministrator) },
		},
		{
			name:  "ok/unknown_user_no_role",
			check: func() (bool, error) { return svc.IsInRole(ctx, "nobody", db.RoleUser) },
		},
		{
			name:  "ok/admin_can_purge",
			check: func() (bool, error) { return svc.Authorize(ctx, admin.ID, PolicyCanPurge) },
			exp:   true,
		},
		{
			name:  "ok/user_cannot_purge",
			check: func() (bool, error) { return svc.Authorize(ctx, user.ID, PolicyCanPurge) },
		},
		{
			name:   "err/unknown_policy",
			check:  func() (bool, error) { return svc.Authorize(ctx, admin.ID, "CanFly") },
			expErr: UnknownPolicyError{Name: "CanFly"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := tt.check()
			if tt.expErr != nil {
				assert.Equal(t, tt.expErr, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.exp, ok)
		})
	}

	name, err := svc.UserName(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", name)

	name, err = svc.UserName(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, name)
}

func TestServiceAuthenticate(t *testing.T) {
	t.Parallel()

	d := newTestDB(t)
	alice := addUser(t, d, "alice", "alicepass", db.RoleUser)
	svc := NewService(d, NewPolicySet())

	user, err := svc.Authenticate(t.Context(), "alice", "alicepass")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, user.ID)

	_, err = svc.Authenticate(t.Context(), "alice", "wrongpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(t.Context(), "bob", "alicepass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTokens(t *testing.T) {
	t.Parallel()

	now := timeNow
	clock := func() time.Time { return now }
	user := &models.User{
		ID: "u123", Name: "alice", Roles: []*models.Role{{Name: db.RoleUser}},
	}

	tokens, err := NewTokens([]byte("0123456789abcdef"), time.Hour, clock)
	require.NoError(t, err)

	token, expiresAt, err := tokens.Issue(user)
	require.NoError(t, err)
	assert.Equal(t, timeNow.Add(time.Hour), expiresAt)

	userID, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u123", userID)

	other, err := NewTokens([]byte("another secret!!"), time.Hour, clock)
	require.NoError(t, err)
	_, err = other.Verify(token)
	var tokErr InvalidTokenError
	assert.ErrorAs(t, err, &tokErr)

	_, err = tokens.Verify("not-a-token")
	assert.ErrorAs(t, err, &tokErr)

	expired, err := NewTokens([]byte("0123456789abcdef"), time.Hour,
		func() time.Time { return timeNow.Add(2 * time.Hour) })
	require.NoError(t, err)
	_, err = expired.Verify(token)
	assert.ErrorAs(t, err, &tokErr)
}

func TestNewTokensInvalid(t *testing.T) {
	t.Parallel()

	_, err := NewTokens(nil, time.Hour, time.Now)
	assert.EqualError(t, err, "token secret is empty")

	_, err = NewTokens([]byte("x"), 0, time.Now)
	assert.EqualError(t, err, "invalid token expiration '0s'")
}

func TestCurrentUser(t *testing.T) {
	t.Parallel()

	assert.Empty(t, CurrentUser.UserID(context.Background()))
	ctx := WithUserID(context.Background(), "u1")
	assert.Equal(t, "u1", CurrentUser.UserID(ctx))
	assert.Equal(t, "u1", UserID(ctx))
}
