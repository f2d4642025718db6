package handler

import (
	"errors"
	"net/http"

	dbtypes "go.hackfix.me/todo/db/types"
	"go.hackfix.me/todo/identity"
	"go.hackfix.me/todo/mediator"
	"go.hackfix.me/todo/web/server/types"
)

const internalErrorDetail = "An error occurred while processing your request."

// ProblemFor converts an error returned while handling a request into the
// problem response sent to the client. Errors outside of the known taxonomy
// are reported as internal errors without revealing their message.
func ProblemFor(err error) *types.Problem {
	var (
		problem  *types.Problem
		verr     *mediator.ValidationError
		argErr   mediator.ArgumentError
		fbErr    mediator.ForbiddenError
		nfErr    mediator.NotFoundError
		tokErr   identity.InvalidTokenError
		dupErr   dbtypes.DuplicateError
		concErr  dbtypes.ConcurrencyError
		unauthed mediator.UnauthorizedError
	)

	switch {
	case errors.As(err, &problem):
		return problem
	case errors.As(err, &verr):
		p := types.NewProblem(http.StatusBadRequest, "")
		p.Title = "One or more validation errors occurred."
		p.Errors = verr.Errors()
		return p
	case errors.As(err, &argErr):
		return types.NewProblem(http.StatusBadRequest, argErr.Error())
	case errors.As(err, &unauthed), errors.As(err, &tokErr):
		return types.NewProblem(http.StatusUnauthorized, "")
	case errors.As(err, &fbErr):
		return types.NewProblem(http.StatusForbidden, fbErr.Error())
	case errors.As(err, &nfErr):
		return types.NewProblem(http.StatusNotFound, nfErr.Error())
	case errors.As(err, &dupErr):
		return types.NewProblem(http.StatusConflict, dupErr.Error())
	case errors.As(err, &concErr):
		return types.NewProblem(http.StatusConflict, concErr.Error())
	default:
		return types.NewProblem(http.StatusInternalServerError, internalErrorDetail)
	}
}
