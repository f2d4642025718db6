package mediator

import "context"

// CurrentUser resolves the ID of the user making the current request. An
// empty ID means that the request is unauthenticated.
type CurrentUser interface {
	UserID(ctx context.Context) string
}

// CurrentUserFunc adapts a function to the CurrentUser interface.
type CurrentUserFunc func(ctx context.Context) string

// UserID implements CurrentUser.
func (f CurrentUserFunc) UserID(ctx context.Context) string {
	return f(ctx)
}

// Identity answers questions about users. Any method may fail, in which case
// the error is propagated to the caller of the request.
type Identity interface {
	IsInRole(ctx context.Context, userID, role string) (bool, error)
	Authorize(ctx context.Context, userID, policy string) (bool, error)
	UserName(ctx context.Context, userID string) (string, error)
}

func userName(ctx context.Context, identity Identity, userID string) string {
	if userID == "" || identity == nil {
		return ""
	}
	name, err := identity.UserName(ctx, userID)
	if err != nil {
		return ""
	}

	return name
}
