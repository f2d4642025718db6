package mediator

import (
	"context"
	"fmt"
	"strings"
)

// AuthorizationRule describes the access a request type requires. Roles and
// Policies are comma-separated lists of names. Names are trimmed and matched
// case-sensitively. A rule with neither roles nor policies only requires an
// authenticated user.
type AuthorizationRule struct {
	Roles    string
	Policies string
}

// Authorized is implemented by request types that require authorization.
// Request types that don't implement it are never checked.
type Authorized interface {
	AuthorizationRule() AuthorizationRule
}

// Authenticated is the rule for requests that any signed in user can make.
var Authenticated = AuthorizationRule{}

// Authorization enforces the AuthorizationRule of the request type. The user
// must be in at least one of the listed roles, and satisfy at least one of the
// listed policies. Roles are checked before policies, and the first failing
// check decides the returned error.
func Authorization(user CurrentUser, identity Identity) Behaviour {
	return func(ctx context.Context, call *Call, next Next) (any, error) {
		authz, ok := call.Request.(Authorized)
		if !ok {
			return next(ctx)
		}
		rule := authz.AuthorizationRule()

		userID := user.UserID(ctx)
		if userID == "" {
			return nil, UnauthorizedError{}
		}

		if roles := splitNames(rule.Roles); len(roles) > 0 {
			ok, err := anyOf(ctx, roles, func(ctx context.Context, role string) (bool, error) {
				return identity.IsInRole(ctx, userID, role)
			})
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ForbiddenError{
					Msg: fmt.Sprintf("%s requires one of the roles: %s",
						call.Name, strings.Join(roles, ", ")),
				}
			}
		}

		if policies := splitNames(rule.Policies); len(policies) > 0 {
			ok, err := anyOf(ctx, policies, func(ctx context.Context, policy string) (bool, error) {
				return identity.Authorize(ctx, userID, policy)
			})
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, ForbiddenError{
					Msg: fmt.Sprintf("%s requires one of the policies: %s",
						call.Name, strings.Join(policies, ", ")),
				}
			}
		}

		return next(ctx)
	}
}

// anyOf returns true on the first name for which check succeeds.
func anyOf(
	ctx context.Context, names []string,
	check func(context.Context, string) (bool, error),
) (bool, error) {
	for _, name := range names {
		ok, err := check(ctx, name)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	return false, nil
}

func splitNames(list string) []string {
	var names []string
	for name := range strings.SplitSeq(list, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}

	return names
}
