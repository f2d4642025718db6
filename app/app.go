package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/mandelsoft/vfs/pkg/memoryfs"

	"go.hackfix.me/todo/app/config"
	actx "go.hackfix.me/todo/app/context"
	aerrors "go.hackfix.me/todo/app/errors"
	"go.hackfix.me/todo/cli"
	"go.hackfix.me/todo/db"
	"go.hackfix.me/todo/db/queries"
	"go.hackfix.me/todo/telemetry"
)

// App is the application.
type App struct {
	name string
	ctx  *actx.Context
	cli  *cli.CLI
	// the logging level is set via the CLI, if the app was initialized with the
	// WithLogger option.
	logLevel *slog.LevelVar
}

// New initializes a new application. configPath and dataDir are the default
// locations of the configuration file and the data directory, which can be
// overridden from the command line.
func New(name, configPath, dataDir string, opts ...Option) (*App, error) {
	version, err := actx.GetVersion()
	if err != nil {
		return nil, err
	}

	defaultCtx := &actx.Context{
		Ctx:     context.Background(),
		FS:      memoryfs.New(),
		Logger:  slog.Default(),
		TimeNow: time.Now,
		Version: version,
	}
	app := &App{name: name, ctx: defaultCtx}

	for _, opt := range opts {
		opt(app)
	}

	if app.ctx.Metrics == nil {
		app.ctx.Metrics = telemetry.NewMetrics()
	}

	ver := fmt.Sprintf("%s %s", app.name, app.ctx.Version.String())
	app.cli, err = cli.New(app.ctx, configPath, dataDir, ver)
	if err != nil {
		return nil, err
	}

	return app, nil
}

// Run initializes the application environment and starts execution of the
// application.
func (app *App) Run(args []string) error {
	if err := app.cli.Parse(args); err != nil {
		return err
	}

	if app.logLevel != nil {
		app.logLevel.Set(app.cli.Log.Level)
		slog.SetLogLoggerLevel(app.cli.Log.Level)
	}

	if app.ctx.Config == nil {
		cfg := config.NewConfig(app.ctx.FS, app.cli.ConfigFile)
		if err := cfg.Load(); err != nil {
			return aerrors.NewRuntimeError("failed loading configuration", err, "",
				"path", app.cli.ConfigFile)
		}
		cfg.SetDefaults()
		app.ctx.Config = cfg
	}
	app.cli.ApplyConfig(app.ctx.Config)

	if err := app.initDB(); err != nil {
		return err
	}

	return app.cli.Execute(app.ctx)
}

// Commands that can run before the database is initialized.
//
//nolint:gochecknoglobals // Static lookup table.
var uninitializedCommands = []string{"init", "weather"}

func (app *App) initDB() error {
	if app.ctx.DB == nil {
		if err := app.ctx.FS.MkdirAll(app.cli.DataDir, 0o700); err != nil {
			return fmt.Errorf("failed creating data directory: %w", err)
		}
		dbPath := filepath.Join(app.cli.DataDir, fmt.Sprintf("%s.db", app.name))
		d, err := db.Open(app.ctx.Ctx, dbPath, app.ctx.TimeNow)
		if err != nil {
			return aerrors.NewRuntimeError("failed opening database", err, "", "path", dbPath)
		}
		app.ctx.DB = d
	}

	version, err := queries.Version(app.ctx.DB.NewContext(), app.ctx.DB)
	if err != nil {
		return aerrors.NewRuntimeError("failed reading database version", err, "")
	}
	app.ctx.VersionInit = version.V

	if !version.Valid && !slices.Contains(uninitializedCommands, app.cli.Command()) {
		return aerrors.NewRuntimeError(
			fmt.Sprintf("%s is not initialized", app.name), errors.New("database is empty"),
			fmt.Sprintf("run '%s init' first", app.name))
	}

	return nil
}
