package mediator

import (
	"context"
	"log/slog"
	"time"
)

// LongRunningThreshold is the duration above which a request is reported as
// long running.
const LongRunningThreshold = 500 * time.Millisecond

// TimeSource is the source of time information.
type TimeSource interface {
	Now() time.Time
}

type systemTime struct{}

func (systemTime) Now() time.Time { return time.Now() }

// SystemTime is the TimeSource backed by the system clock.
var SystemTime TimeSource = systemTime{} //nolint:gochecknoglobals // Stateless.

// DurationObserver receives the duration and outcome of every request that
// reaches the Performance behaviour.
type DurationObserver func(name string, elapsed time.Duration, err error)

// UnhandledError logs every failed request once and returns the error
// unchanged. Panics are logged and then re-raised with the same value.
func UnhandledError(logger *slog.Logger) Behaviour {
	return func(ctx context.Context, call *Call, next Next) (resp any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.ErrorContext(ctx, "Todo Request: Unhandled Exception",
					"name", call.Name, "request", call.Request, "panic", r)
				panic(r)
			}
		}()

		resp, err = next(ctx)
		if err != nil {
			logger.ErrorContext(ctx, "Todo Request: Unhandled Exception",
				"name", call.Name, "request", call.Request, "error", err)
		}

		return resp, err
	}
}

// Logging records every request before it is handled.
func Logging(logger *slog.Logger, user CurrentUser, identity Identity) Behaviour {
	return func(ctx context.Context, call *Call, next Next) (any, error) {
		userID := user.UserID(ctx)
		logger.InfoContext(ctx, "Todo Request",
			"name", call.Name,
			"user_id", userID,
			"user_name", userName(ctx, identity, userID),
			"request", call.Request)

		return next(ctx)
	}
}

// Performance measures the rest of the pipeline and warns about requests
// that take longer than LongRunningThreshold, whether they fail or not. If
// observer is not nil, it receives every measurement.
func Performance(
	logger *slog.Logger, user CurrentUser, identity Identity,
	ts TimeSource, observer DurationObserver,
) Behaviour {
	if ts == nil {
		ts = SystemTime
	}

	return func(ctx context.Context, call *Call, next Next) (any, error) {
		start := ts.Now()
		resp, err := next(ctx)
		elapsed := ts.Now().Sub(start)

		if observer != nil {
			observer(call.Name, elapsed, err)
		}

		if elapsed > LongRunningThreshold {
			userID := user.UserID(ctx)
			logger.WarnContext(ctx, "Todo Long Running Request",
				"name", call.Name,
				"elapsed_ms", elapsed.Milliseconds(),
				"user_id", userID,
				"user_name", userName(ctx, identity, userID),
				"request", call.Request)
		}

		return resp, err
	}
}

// Default returns the standard pipeline: unhandled error logging,
// authorization, validation, logging and performance monitoring.
func Default(
	logger *slog.Logger, user CurrentUser, identity Identity, opts ...DefaultOption,
) *Pipeline {
	cfg := &defaultConfig{ts: SystemTime}
	for _, opt := range opts {
		opt(cfg)
	}

	return New([]Behaviour{
		UnhandledError(logger),
		Authorization(user, identity),
		Validation(),
		Logging(logger, user, identity),
		Performance(logger, user, identity, cfg.ts, cfg.observer),
	}, cfg.pipelineOpts...)
}

type defaultConfig struct {
	ts           TimeSource
	observer     DurationObserver
	pipelineOpts []Option
}

// DefaultOption configures the pipeline created by Default.
type DefaultOption func(*defaultConfig)

// WithTimeSource sets the time source used to measure requests.
func WithTimeSource(ts TimeSource) DefaultOption {
	return func(c *defaultConfig) {
		c.ts = ts
	}
}

// WithDurationObserver sets a function that receives every request duration.
func WithDurationObserver(o DurationObserver) DefaultOption {
	return func(c *defaultConfig) {
		c.observer = o
	}
}

// WithPipelineOptions passes options to the underlying Pipeline.
func WithPipelineOptions(opts ...Option) DefaultOption {
	return func(c *defaultConfig) {
		c.pipelineOpts = append(c.pipelineOpts, opts...)
	}
}
