// Package context holds the objects shared by the app and cli packages. It
// lives apart from app so that cli can use it without an import cycle.
package context

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/mandelsoft/vfs/pkg/vfs"

	"go.hackfix.me/todo/app/config"
	"go.hackfix.me/todo/db"
	"go.hackfix.me/todo/telemetry"
)

// Context contains common objects used by the application. It is passed around
// the application to avoid direct dependencies on external systems, and make
// testing easier.
type Context struct {
	Ctx     context.Context  // global context
	FS      vfs.FileSystem   // filesystem
	Env     Environment      // process environment
	Logger  *slog.Logger     // global logger
	TimeNow func() time.Time // current time
	Config  *config.Config
	DB      *db.DB
	Metrics *telemetry.Metrics

	// Standard streams
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Metadata
	Version     *VersionInfo
	VersionInit string // version the database was initialized with
}

// Environment reads and writes process environment variables.
type Environment interface {
	Get(key string) string
	Set(key, val string) error
}
