package mediator

import (
	"context"
	"fmt"
	"reflect"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "go.hackfix.me/todo/mediator"

// Call is a single in-flight request as seen by behaviours.
type Call struct {
	// Name is the request type name, e.g. "CreateTodoList".
	Name string
	// Request is the request value. Behaviours must not modify it.
	Request any

	validators []validator
}

// Next invokes the remainder of the pipeline.
type Next func(ctx context.Context) (any, error)

// Behaviour is a pipeline stage wrapped around the terminal handler. It may
// act before and after calling next, or return without calling it.
type Behaviour func(ctx context.Context, call *Call, next Next) (any, error)

// HandlerFunc handles a request of type Req and produces a response of type
// Resp.
type HandlerFunc[Req, Resp any] func(ctx context.Context, req Req) (Resp, error)

// Pipeline is an ordered list of behaviours. The first behaviour is the
// outermost one.
type Pipeline struct {
	behaviours []Behaviour
	tracer     trace.Tracer
}

// New returns a pipeline that runs the given behaviours in order.
func New(behaviours []Behaviour, opts ...Option) *Pipeline {
	p := &Pipeline{
		behaviours: behaviours,
		tracer:     otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithTracerProvider sets the provider of the tracer used to create a span for
// every request. By default the global provider is used.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Pipeline) {
		p.tracer = tp.Tracer(tracerName)
	}
}

type stage func(ctx context.Context, call *Call) (any, error)

// Handle composes the pipeline around fn and returns a function that sends a
// request through it. The validators are run by the Validation behaviour.
func Handle[Req, Resp any](
	p *Pipeline, fn HandlerFunc[Req, Resp], validators ...Validator[Req],
) HandlerFunc[Req, Resp] {
	name := requestName[Req]()

	vals := make([]validator, 0, len(validators))
	for _, v := range validators {
		vals = append(vals, func(ctx context.Context, req any) ([]ValidationFailure, error) {
			return v.Validate(ctx, req.(Req)) //nolint:forcetypeassert // Always a Req.
		})
	}

	chain := compose(p.behaviours, func(ctx context.Context, call *Call) (any, error) {
		return fn(ctx, call.Request.(Req)) //nolint:forcetypeassert // Always a Req.
	})

	return func(ctx context.Context, req Req) (Resp, error) {
		var zero Resp

		ctx, span := p.tracer.Start(ctx, name,
			trace.WithAttributes(attribute.String("todo.request", name)))
		defer span.End()

		resp, err := chain(ctx, &Call{Name: name, Request: req, validators: vals})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return zero, err
		}

		if resp == nil {
			return zero, nil
		}

		r, ok := resp.(Resp)
		if !ok {
			return zero, fmt.Errorf("unexpected response type %T for %s", resp, name)
		}

		return r, nil
	}
}

func compose(behaviours []Behaviour, terminal stage) stage {
	next := guard(terminal)
	for i := len(behaviours) - 1; i >= 0; i-- {
		b, inner := behaviours[i], next
		next = guard(func(ctx context.Context, call *Call) (any, error) {
			return b(ctx, call, func(ctx context.Context) (any, error) {
				return inner(ctx, call)
			})
		})
	}

	return next
}

// guard stops the chain as soon as the context is done.
func guard(s stage) stage {
	return func(ctx context.Context, call *Call) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return s(ctx, call)
	}
}

func requestName[Req any]() string {
	t := reflect.TypeFor[Req]()
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" {
		return t.String()
	}

	return t.Name()
}
