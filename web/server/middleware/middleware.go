package middleware

import (
	"net/http"
)

// Middleware wraps an http.Handler to provide additional functionality such
// as logging, authentication or tracing.
type Middleware func(http.Handler) http.Handler

// Chain wraps h with the middlewares in the order specified, so that requests
// pass through them from left to right before reaching h.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}

	return h
}
