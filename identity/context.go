package identity

import (
	"context"

	"go.hackfix.me/todo/mediator"
)

type userIDKey struct{}

// WithUserID returns a copy of ctx that carries the ID of the authenticated
// user.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserID returns the ID of the authenticated user stored in ctx, or an empty
// string if the request is anonymous.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// CurrentUser resolves the current user from the request context.
//
//nolint:gochecknoglobals // Stateless adapter.
var CurrentUser mediator.CurrentUser = mediator.CurrentUserFunc(UserID)
