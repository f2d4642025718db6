package mediator

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"pgregory.net/rapid"
)

func TestHandleBehaviourOrder(t *testing.T) {
	t.Parallel()

	var trail []string
	mark := func(name string) Behaviour {
		return func(ctx context.Context, _ *Call, next Next) (any, error) {
			trail = append(trail, name+":before")
			resp, err := next(ctx)
			trail = append(trail, name+":after")
			return resp, err
		}
	}

	p := New([]Behaviour{mark("outer"), mark("middle"), mark("inner")})
	handle := Handle(p, func(_ context.Context, req openRequest) (string, error) {
		trail = append(trail, "handler")
		return "got " + req.Value, nil
	})

	resp, err := handle(context.Background(), openRequest{Value: "x"})
	require.NoError(t, err)
	assert.Equal(t, "got x", resp)
	assert.Equal(t, []string{
		"outer:before", "middle:before", "inner:before",
		"handler",
		"inner:after", "middle:after", "outer:after",
	}, trail)
}

func TestHandleCancelled(t *testing.T) {
	t.Parallel()

	logger, rec := newRecordingLogger()
	identity := &mockIdentity{}
	p := Default(logger, staticUser(""), identity)

	called := false
	handle := Handle(p, func(context.Context, openRequest) (int, error) {
		called = true
		return 1, nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := handle(ctx, openRequest{})
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
	assert.Empty(t, rec.Records())
}

func TestHandleRequestName(t *testing.T) {
	t.Parallel()

	var got string
	spy := New([]Behaviour{func(ctx context.Context, call *Call, next Next) (any, error) {
		got = call.Name
		return next(ctx)
	}})

	_, err := Handle(spy, func(context.Context, *openRequest) (struct{}, error) {
		return struct{}{}, nil
	})(context.Background(), &openRequest{})
	require.NoError(t, err)
	assert.Equal(t, "openRequest", got)
}

func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("ok/valid_request", func(t *testing.T) {
		t.Parallel()

		logger, rec := newRecordingLogger()
		identity := &mockIdentity{}
		identity.On("UserName", mock.Anything, "u1").Return("alice", nil)

		p := Default(logger, staticUser("u1"), identity,
			WithTimeSource(&stepClock{now: timeNow, step: 10 * time.Millisecond}))
		handle := Handle(p, func(_ context.Context, _ userRequest) (uint64, error) {
			return 42, nil
		})

		id, err := handle(context.Background(), userRequest{})
		require.NoError(t, err)
		assert.Equal(t, uint64(42), id)

		records := rec.Records()
		require.Len(t, records, 1)
		assert.Equal(t, slog.LevelInfo, records[0].Level)
		assert.Equal(t, "Todo Request", records[0].Message)
	})

	t.Run("err/validation_skips_handler_and_logging", func(t *testing.T) {
		t.Parallel()

		logger, rec := newRecordingLogger()
		p := Default(logger, staticUser("u1"), &mockIdentity{})
		called := false
		handle := Handle(p,
			func(context.Context, userRequest) (uint64, error) {
				called = true
				return 0, nil
			},
			ValidatorFunc[userRequest](func(context.Context, userRequest) ([]ValidationFailure, error) {
				return []ValidationFailure{{Field: "Title", Message: "'Title' must not be empty."}}, nil
			}),
		)

		_, err := handle(context.Background(), userRequest{})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, map[string][]string{"Title": {"'Title' must not be empty."}}, verr.Errors())
		assert.False(t, called)

		records := rec.Records()
		require.Len(t, records, 1)
		assert.Equal(t, slog.LevelError, records[0].Level)
		assert.Equal(t, "Todo Request: Unhandled Exception", records[0].Message)
	})

	t.Run("err/unauthorized_before_validation", func(t *testing.T) {
		t.Parallel()

		logger, _ := newRecordingLogger()
		p := Default(logger, staticUser(""), &mockIdentity{})
		validated := false
		handle := Handle(p,
			func(context.Context, userRequest) (uint64, error) { return 0, nil },
			ValidatorFunc[userRequest](func(context.Context, userRequest) ([]ValidationFailure, error) {
				validated = true
				return nil, nil
			}),
		)

		_, err := handle(context.Background(), userRequest{})
		require.ErrorAs(t, err, new(UnauthorizedError))
		assert.False(t, validated)
	})
}

func TestHandleTracing(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	errBoom := errors.New("boom")
	p := New(nil, WithTracerProvider(tp))
	_, err := Handle(p, func(context.Context, openRequest) (int, error) {
		return 0, errBoom
	})(context.Background(), openRequest{})
	require.ErrorIs(t, err, errBoom)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "openRequest", spans[0].Name())
	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	t.Run("err/empty", func(t *testing.T) {
		t.Parallel()

		verr, err := NewValidationError(nil)
		assert.Nil(t, verr)
		var aerr ArgumentError
		require.ErrorAs(t, err, &aerr)
		assert.Equal(t, "failures", aerr.Name)
	})

	t.Run("ok/grouped", func(t *testing.T) {
		t.Parallel()

		verr, err := NewValidationError([]ValidationFailure{
			{Field: "Title", Message: "a"},
			{Field: "ListID", Message: "b"},
			{Field: "Title", Message: "c"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Title", "ListID"}, verr.Fields())
		assert.Equal(t, map[string][]string{
			"Title":  {"a", "c"},
			"ListID": {"b"},
		}, verr.Errors())
	})

	t.Run("ok/keeps_every_message", func(t *testing.T) {
		t.Parallel()

		rapid.Check(t, func(t *rapid.T) {
			failures := rapid.SliceOfN(rapid.Custom(func(t *rapid.T) ValidationFailure {
				return ValidationFailure{
					Field:   rapid.SampledFrom([]string{"Title", "ListID", "Note"}).Draw(t, "field"),
					Message: rapid.String().Draw(t, "message"),
				}
			}), 1, 20).Draw(t, "failures")

			verr, err := NewValidationError(failures)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			total := 0
			for _, msgs := range verr.Errors() {
				total += len(msgs)
			}
			if total != len(failures) {
				t.Fatalf("expected %d messages, got %d", len(failures), total)
			}
			if verr.Fields()[0] != failures[0].Field {
				t.Fatalf("expected first field %q, got %q", failures[0].Field, verr.Fields()[0])
			}
		})
	})
}
