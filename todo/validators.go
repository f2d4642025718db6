package todo

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"go.hackfix.me/todo/db/models"
	"go.hackfix.me/todo/mediator"
)

//nolint:gochecknoglobals // validator.Validate caches struct metadata and is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// fieldRules checks the `validate` struct tags of the request.
func fieldRules[Req any]() mediator.Validator[Req] {
	return mediator.ValidatorFunc[Req](func(ctx context.Context, req Req) ([]mediator.ValidationFailure, error) {
		err := validate.StructCtx(ctx, req)
		if err == nil {
			return nil, nil
		}

		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return nil, fmt.Errorf("failed validating %T: %w", req, err)
		}

		failures := make([]mediator.ValidationFailure, 0, len(verrs))
		for _, fe := range verrs {
			failures = append(failures, mediator.ValidationFailure{
				Field: fe.Field(), Message: failureMessage(fe),
			})
		}

		return failures, nil
	})
}

func failureMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("'%s' must not be empty.", field)
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The length of '%s' must be %s characters or fewer.", field, fe.Param())
		}
		return fmt.Sprintf("'%s' must be less than or equal to '%s'.", field, fe.Param())
	case "lte":
		return fmt.Sprintf("'%s' must be less than or equal to '%s'.", field, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("'%s' must be greater than or equal to '%s'.", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("'%s' must be one of: %s.", field,
			strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return fmt.Sprintf("'%s' is not valid.", field)
	}
}

func uniqueListTitle[Req any](store Store, fields func(Req) (string, uint64)) mediator.Validator[Req] {
	return mediator.ValidatorFunc[Req](func(ctx context.Context, req Req) ([]mediator.ValidationFailure, error) {
		title, id := fields(req)
		if title == "" {
			return nil, nil
		}

		exists, err := store.TodoListTitleExists(ctx, title, id)
		if err != nil {
			return nil, err
		}
		if exists {
			return []mediator.ValidationFailure{{Field: "Title", Message: "'Title' must be unique."}}, nil
		}

		return nil, nil
	})
}

func supportedColour[Req any](colour func(Req) string) mediator.Validator[Req] {
	return mediator.ValidatorFunc[Req](func(_ context.Context, req Req) ([]mediator.ValidationFailure, error) {
		code := colour(req)
		if code == "" {
			return nil, nil
		}
		if _, err := models.ColourFromCode(code); err != nil {
			return []mediator.ValidationFailure{{
				Field: "Colour", Message: fmt.Sprintf("'Colour' %s is unsupported.", code),
			}}, nil
		}

		return nil, nil
	})
}
