package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	actx "go.hackfix.me/todo/app/context"
	aerrors "go.hackfix.me/todo/app/errors"
	"go.hackfix.me/todo/identity"
	"go.hackfix.me/todo/telemetry"
	"go.hackfix.me/todo/web/server"
)

// Serve starts the web server.
type Serve struct {
	Address      string `arg:"" optional:"" help:"[host]:port to listen on."`
	PoliciesFile string `help:"Path to a YAML file with authorization policies. It's reloaded when it changes."`
	OTLPEndpoint string `name:"otlp-endpoint" help:"host:port of an OTLP gRPC collector to export traces to."`
	OTLPInsecure bool   `name:"otlp-insecure" help:"Connect to the OTLP collector without TLS."`
}

// Run the serve command.
func (c *Serve) Run(appCtx *actx.Context) error {
	ctx, cancel := context.WithCancel(appCtx.Ctx)
	defer cancel()

	tp, shutdownTracing, err := telemetry.SetupTracing(ctx, telemetry.TracingConfig{
		ServiceName:    "todo",
		ServiceVersion: appCtx.Version.Semantic,
		Endpoint:       c.OTLPEndpoint,
		Insecure:       c.OTLPInsecure,
	})
	if err != nil {
		return aerrors.NewRuntimeError("failed setting up tracing", err, "",
			"endpoint", c.OTLPEndpoint)
	}
	defer func() {
		sctx, scancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer scancel()
		if serr := shutdownTracing(sctx); serr != nil {
			slog.Warn("failed flushing traces", "error", serr.Error())
		}
	}()

	policies := identity.NewPolicySet()
	if c.PoliciesFile != "" {
		if err = policies.Watch(ctx, c.PoliciesFile, appCtx.Logger); err != nil {
			return aerrors.NewRuntimeError("failed loading policies", err, "",
				"path", c.PoliciesFile)
		}
	}

	srv, err := server.New(appCtx, c.Address,
		server.WithPolicies(policies), server.WithTracerProvider(tp))
	if err != nil {
		return err
	}

	// Gracefully shutdown the server if a process signal is received, or the
	// main context is done.
	// See https://dev.to/mokiat/proper-http-shutdown-in-go-3fji
	srvDone := make(chan error)
	go func() {
		srvErr := srv.ListenAndServe()
		slog.Debug("web server shutdown")
		srvDone <- srvErr
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case s := <-sigCh:
		slog.Debug("process received signal", "signal", s)
	case <-appCtx.Ctx.Done():
		slog.Debug("app context is done")
	case srvErr := <-srvDone:
		if srvErr != nil && !errors.Is(srvErr, http.ErrServerClosed) {
			return fmt.Errorf("web server error: %w", srvErr)
		}
		return nil
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err = srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed shutting down web server: %w", err)
	}

	return nil
}
