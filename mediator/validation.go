package mediator

import (
	"context"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Validator checks a request and returns the rules it breaks. An error is
// returned only when the check itself couldn't be performed.
type Validator[Req any] interface {
	Validate(ctx context.Context, req Req) ([]ValidationFailure, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc[Req any] func(ctx context.Context, req Req) ([]ValidationFailure, error)

// Validate implements Validator.
func (f ValidatorFunc[Req]) Validate(ctx context.Context, req Req) ([]ValidationFailure, error) {
	return f(ctx, req)
}

type validator func(ctx context.Context, req any) ([]ValidationFailure, error)

// Validation runs all validators registered for the request concurrently. If
// any of them reports a failure the handler isn't invoked, and a
// *ValidationError with all failures is returned instead. Failures are ordered
// by validator registration order.
func Validation() Behaviour {
	return func(ctx context.Context, call *Call, next Next) (any, error) {
		if len(call.validators) == 0 {
			return next(ctx)
		}

		results := make([][]ValidationFailure, len(call.validators))
		g, gctx := errgroup.WithContext(ctx)
		for i, v := range call.validators {
			g.Go(func() error {
				failures, err := v(gctx, call.Request)
				if err != nil {
					return err
				}
				results[i] = failures
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		if failures := slices.Concat(results...); len(failures) > 0 {
			verr, err := NewValidationError(failures)
			if err != nil {
				return nil, err
			}
			return nil, verr
		}

		return next(ctx)
	}
}
