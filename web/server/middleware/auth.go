package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"go.hackfix.me/todo/identity"
	"go.hackfix.me/todo/web/server/handler"
	"go.hackfix.me/todo/web/server/types"
)

// TokenVerifier verifies an access token and returns the ID of its user.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// Authn authenticates the user from a bearer token in the Authorization
// header, and stores the user ID in the request context.
//
// Requests without the header proceed anonymously, and it's up to the
// handlers to reject them. If the header is malformed or the token is
// invalid, a response with status 401 Unauthorized is returned.
func Authn(tokens TokenVerifier, logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := parseAuthHeader(header)
			if !ok {
				unauthorized(w, "malformed Authorization header")
				return
			}

			userID, err := tokens.Verify(token)
			if err != nil {
				logger.Warn("failed verifying access token",
					"remote_addr", r.RemoteAddr, "error", err.Error())
				unauthorized(w, "invalid access token")
				return
			}

			ctx := identity.WithUserID(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func parseAuthHeader(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)

	return token, token != ""
}

func unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="todo"`)
	w.Header().Set("Content-Type", "application/problem+json")
	_ = handler.WriteJSON(w, http.StatusUnauthorized, types.NewProblem(http.StatusUnauthorized, detail))
}
