package server

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	actx "go.hackfix.me/todo/app/context"
	"go.hackfix.me/todo/db"
	"go.hackfix.me/todo/db/queries"
	"go.hackfix.me/todo/identity"
	"go.hackfix.me/todo/mediator"
	"go.hackfix.me/todo/telemetry"
	"go.hackfix.me/todo/todo"
	"go.hackfix.me/todo/weather"
	"go.hackfix.me/todo/web/server/api/v1"
	"go.hackfix.me/todo/web/server/middleware"
)

// Server is a wrapper around http.Server with some custom behavior.
type Server struct {
	*http.Server
	logger *slog.Logger
}

type options struct {
	policies *identity.PolicySet
	tp       trace.TracerProvider
}

// Option configures the Server.
type Option func(*options)

// WithPolicies sets the authorization policies. Only the built-in policies are
// available by default.
func WithPolicies(policies *identity.PolicySet) Option {
	return func(o *options) {
		o.policies = policies
	}
}

// WithTracerProvider sets the provider of the tracer used for HTTP and
// mediator request spans. Tracing is disabled by default.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) {
		o.tp = tp
	}
}

// New returns a new web Server instance that will listen on addr.
func New(appCtx *actx.Context, addr string, opts ...Option) (*Server, error) {
	o := &options{tp: noop.NewTracerProvider()}
	for _, opt := range opts {
		opt(o)
	}
	if o.policies == nil {
		o.policies = identity.NewPolicySet()
	}
	metrics := appCtx.Metrics
	if metrics == nil {
		metrics = telemetry.NewMetrics()
	}

	logger := appCtx.Logger.With("component", "web-server")
	svc, tokens, err := NewServices(appCtx, o.policies, metrics, o.tp)
	if err != nil {
		return nil, err
	}

	srv := &Server{
		Server: &http.Server{
			Handler:           SetupHandlers(svc, tokens, metrics, o.tp, logger),
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      time.Minute,
		},
		logger: logger,
	}

	return srv, nil
}

// ListenAndServe starts the HTTP server. It stores the actual listen address,
// which is convenient when the address is dynamically determined by the system
// (e.g. ':0').
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		//nolint:wrapcheck // This is fine.
		return err
	}

	s.Addr = ln.Addr().String()
	s.logger.Info("started listener", "address", s.Addr)

	//nolint:wrapcheck // This is fine.
	return s.Serve(ln)
}

// NewServices creates the application services served by the API, and the
// verifier of access tokens. All requests run through the default mediator
// pipeline.
func NewServices(
	appCtx *actx.Context, policies *identity.PolicySet, metrics *telemetry.Metrics, tp trace.TracerProvider,
) (api.Services, *identity.Tokens, error) {
	dbCtx := appCtx.DB.NewContext()
	secret, err := queries.TokenSecret(dbCtx, appCtx.DB)
	if err != nil {
		return api.Services{}, nil, err
	}

	expiration := 12 * time.Hour
	if appCtx.Config != nil && appCtx.Config.Server.TokenExpiration.Valid {
		expiration = appCtx.Config.Server.TokenExpiration.V
	}
	tokens, err := identity.NewTokens(secret, expiration, appCtx.TimeNow)
	if err != nil {
		return api.Services{}, nil, fmt.Errorf("failed creating token issuer: %w", err)
	}

	users := identity.NewService(appCtx.DB, policies)
	p := mediator.Default(appCtx.Logger.With("component", "mediator"), identity.CurrentUser, users,
		mediator.WithDurationObserver(metrics.Observe),
		mediator.WithPipelineOptions(mediator.WithTracerProvider(tp)),
	)
	store := db.NewStore(appCtx.DB, identity.CurrentUser)

	svc := api.Services{
		Todos: todo.NewService(p, store,
			todo.WithPublisher(todo.LogPublisher{Logger: appCtx.Logger.With("component", "events")})),
		Forecasts: weather.NewHandler(p, weather.WithTimeNow(appCtx.TimeNow)),
		Users:     users,
		Tokens:    tokens,
		Ping:      appCtx.DB.PingContext,
	}
	if appCtx.Version != nil {
		svc.Version = appCtx.Version.Semantic
	}

	return svc, tokens, nil
}

// SetupHandlers configures the server HTTP handlers.
func SetupHandlers(
	svc api.Services, tokens middleware.TokenVerifier, metrics *telemetry.Metrics,
	tp trace.TracerProvider, logger *slog.Logger,
) http.Handler {
	mux := http.NewServeMux()

	apiHandler := middleware.Chain(api.SetupHandlers(svc, logger), middleware.Authn(tokens, logger))
	mux.Handle("/api/", http.StripPrefix("/api", apiHandler))
	mux.Handle("GET /metrics", metrics.Handler())

	return middleware.Chain(mux,
		middleware.RequestID(),
		middleware.Logger(logger, metrics.ObserveHTTP),
		middleware.Trace("todo", tp),
	)
}
