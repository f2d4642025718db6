package cli

import (
	"fmt"

	actx "go.hackfix.me/todo/app/context"
	aerrors "go.hackfix.me/todo/app/errors"
)

// The Init command creates the database schema, the token signing secret and
// the built-in roles.
type Init struct{}

// Run the init command.
func (c *Init) Run(appCtx *actx.Context) error {
	if appCtx.VersionInit != "" {
		return aerrors.NewRuntimeError(
			fmt.Sprintf("the database is already initialized with version %s", appCtx.VersionInit),
			nil, "remove the data directory to start over")
	}

	if err := appCtx.DB.Init(appCtx.Version.Semantic, appCtx.Logger); err != nil {
		return aerrors.NewRuntimeError("failed initializing database", err, "")
	}

	return nil
}
