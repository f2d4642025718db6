package cli

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/alecthomas/kong"

	actx "go.hackfix.me/todo/app/context"
	aerrors "go.hackfix.me/todo/app/errors"
	"go.hackfix.me/todo/crypto"
	"go.hackfix.me/todo/db"
	"go.hackfix.me/todo/db/models"
	"go.hackfix.me/todo/db/queries"
	"go.hackfix.me/todo/identity"
)

// The User command manages users of the web API.
type User struct {
	Add struct {
		Name     string   `arg:"" help:"The unique name of the user."`
		Password string   `required:"" help:"The password of the user."`
		Role     []string `default:"User" help:"Roles assigned to the user. Valid values: Administrator, User."`
	} `kong:"cmd,help='Add a new user.'"`
	Rm struct {
		Name string `arg:"" help:"The unique name of the user."`
	} `kong:"cmd,help='Remove a user.'"`
	Ls    struct{} `kong:"cmd,help='List users.'"`
	Token struct {
		Name string `arg:"" help:"The unique name of the user."`
		//nolint:lll // Long struct tags are unavoidable.
		Expiration time.Time `kong:"type='expiration',help='Token expiration as a duration from now or an RFC 3339 timestamp, e.g. 12h or %s. Defaults to the configured token expiration.'"`
	} `kong:"cmd,help='Issue an access token for a user.'"`
}

// Run the user command.
func (c *User) Run(kctx *kong.Context, appCtx *actx.Context) error {
	dbCtx := appCtx.DB.NewContext()

	switch kctx.Args[1] {
	case "add":
		return c.add(appCtx)
	case "rm":
		user := &models.User{Name: c.Rm.Name}
		if err := user.Delete(dbCtx, appCtx.DB); err != nil {
			return aerrors.NewRuntimeError(
				fmt.Sprintf("failed removing user '%s'", c.Rm.Name), err, "")
		}
		appCtx.Logger.Info("removed user", "name", c.Rm.Name)
	case "ls":
		users, err := models.Users(dbCtx, appCtx.DB, nil)
		if err != nil {
			return aerrors.NewRuntimeError("failed listing users", err, "")
		}

		data := make([][]string, len(users))
		for i, user := range users {
			roles := make([]string, len(user.Roles))
			for j, r := range user.Roles {
				roles[j] = r.Name
			}
			data[i] = []string{user.Name, strings.Join(roles, ","), user.CreatedAt.Format(time.DateTime)}
		}

		if len(data) > 0 {
			header := []string{"Name", "Roles", "Created"}
			if err = renderTable(appCtx.Stdout, header, data); err != nil {
				return fmt.Errorf("failed rendering table: %w", err)
			}
		}
	case "token":
		return c.token(appCtx)
	}

	return nil
}

func (c *User) add(appCtx *actx.Context) error {
	validRoles := []string{db.RoleAdministrator, db.RoleUser}
	user := &models.User{Name: c.Add.Name}
	for _, r := range c.Add.Role {
		if !slices.Contains(validRoles, r) {
			return aerrors.NewRuntimeError(fmt.Sprintf("invalid role '%s'", r), nil,
				fmt.Sprintf("valid roles are: %s", strings.Join(validRoles, ", ")))
		}
		user.Roles = append(user.Roles, &models.Role{Name: r})
	}

	hash, err := crypto.HashPassword(c.Add.Password)
	if err != nil {
		return aerrors.NewRuntimeError("failed hashing password", err, "")
	}
	user.PasswordHash = hash

	if err = user.Save(appCtx.DB.NewContext(), appCtx.DB, false); err != nil {
		return aerrors.NewRuntimeError(
			fmt.Sprintf("failed adding user '%s'", c.Add.Name), err, "")
	}
	appCtx.Logger.Info("added user", "name", user.Name, "id", user.ID)

	return nil
}

func (c *User) token(appCtx *actx.Context) error {
	dbCtx := appCtx.DB.NewContext()

	user := &models.User{Name: c.Token.Name}
	if err := user.Load(dbCtx, appCtx.DB); err != nil {
		return aerrors.NewRuntimeError(
			fmt.Sprintf("failed loading user '%s'", c.Token.Name), err, "")
	}

	secret, err := queries.TokenSecret(dbCtx, appCtx.DB)
	if err != nil {
		return aerrors.NewRuntimeError("failed reading token secret", err, "")
	}

	expiration := appCtx.Config.Server.TokenExpiration.V
	if !c.Token.Expiration.IsZero() {
		expiration = c.Token.Expiration.Sub(appCtx.TimeNow())
	}

	tokens, err := identity.NewTokens(secret, expiration, appCtx.TimeNow)
	if err != nil {
		return aerrors.NewRuntimeError("failed creating token issuer", err, "")
	}
	token, expiresAt, err := tokens.Issue(user)
	if err != nil {
		return aerrors.NewRuntimeError("failed issuing token", err, "")
	}

	appCtx.Logger.Debug("issued access token", "name", user.Name,
		"expires_at", expiresAt.Format(time.RFC3339))
	fmt.Fprintln(appCtx.Stdout, token)

	return nil
}
