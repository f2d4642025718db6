package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nrednav/cuid2"

	"go.hackfix.me/todo/db/types"
)

// User represents a user of the todo service.
type User struct {
	ID           string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Name         string
	PasswordHash []byte
	Roles        []*Role
}

// Save stores the user data and role assignments in the database. New users
// are assigned a random ID.
func (u *User) Save(ctx context.Context, d types.Querier, update bool) error {
	timeNow := d.TimeNow().UTC()
	if update { //nolint:nestif // It's fine.
		var filter *types.Filter
		var filterStr string
		switch {
		case u.ID != "":
			filter = &types.Filter{Where: "id = ?", Args: []any{u.ID}}
			filterStr = fmt.Sprintf("ID '%s'", u.ID)
		case u.Name != "":
			filter = &types.Filter{Where: "name = ?", Args: []any{u.Name}}
			filterStr = fmt.Sprintf("name '%s'", u.Name)
		default:
			return errors.New("must provide either a user name or ID to update")
		}

		args := append([]any{timeNow, u.PasswordHash}, filter.Args...)
		updateStmt := fmt.Sprintf(`UPDATE users
			SET updated_at = ?,
			    password_hash = ?
			WHERE %s`, filter.Where)
		res, err := d.ExecContext(ctx, updateStmt, args...)
		if err != nil {
			return err
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed getting affected rows: %w", err)
		}
		if n == 0 {
			return types.NoResultError{ModelName: "user", ID: filterStr}
		}
		if n > 1 {
			return types.IntegrityError{Msg: fmt.Sprintf("updated %d users", n)}
		}
		u.UpdatedAt = timeNow
	} else {
		if u.ID == "" {
			u.ID = cuid2.Generate()
		}
		insertStmt := `INSERT INTO users
		(id, created_at, updated_at, name, password_hash)
		VALUES (?, ?, ?, ?, ?)`
		_, err := d.ExecContext(ctx, insertStmt, u.ID, timeNow, timeNow, u.Name, u.PasswordHash)
		if err != nil {
			return types.Err("user", fmt.Sprintf("name '%s'", u.Name), err)
		}

		u.CreatedAt = timeNow
		u.UpdatedAt = timeNow
	}

	return u.saveRoles(ctx, d, update)
}

func (u *User) saveRoles(ctx context.Context, d types.Querier, update bool) error {
	if update {
		if u.ID == "" {
			err := d.QueryRowContext(ctx, `SELECT id FROM users WHERE name = ?`, u.Name).Scan(&u.ID)
			if err != nil {
				return types.LoadError{ModelName: "user", Err: err}
			}
		}
		_, err := d.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = ?`, u.ID)
		if err != nil {
			return fmt.Errorf("failed clearing user roles: %w", err)
		}
	}

	for _, role := range u.Roles {
		if role.ID == 0 {
			if err := role.Load(ctx, d); err != nil {
				return err
			}
		}
		_, err := d.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_id) VALUES (?, ?)`, u.ID, role.ID)
		if err != nil {
			return types.Err("user role", fmt.Sprintf("name '%s'", role.Name), err)
		}
	}

	return nil
}

// Load the user data and roles from the database. Either the user ID or Name
// must be set for the lookup.
func (u *User) Load(ctx context.Context, d types.Querier) error {
	if u.ID == "" && u.Name == "" {
		return types.InvalidInputError{Msg: "either user ID or Name must be set"}
	}

	var filter *types.Filter
	var filterStr string
	if u.ID != "" {
		filter = &types.Filter{Where: "u.id = ?", Args: []any{u.ID}}
		filterStr = fmt.Sprintf("ID '%s'", u.ID)
	} else {
		filter = &types.Filter{Where: "u.name = ?", Args: []any{u.Name}}
		filterStr = fmt.Sprintf("name '%s'", u.Name)
	}

	users, err := Users(ctx, d, filter)
	if err != nil {
		return err
	}

	if len(users) == 0 {
		return types.NoResultError{ModelName: "user", ID: filterStr}
	}

	// The unique constraints on users.id and users.name should return only a
	// single result.
	if len(users) > 1 {
		panic(fmt.Sprintf("users query returned more than 1 user: %d", len(users)))
	}
	*u = *users[0]

	return nil
}

// Delete removes the user data from the database. Either the user ID or Name
// must be set for the lookup. It returns an error if the user doesn't exist.
func (u *User) Delete(ctx context.Context, d types.Querier) error {
	if u.ID == "" && u.Name == "" {
		return types.InvalidInputError{Msg: "either user ID or Name must be set"}
	}

	var filter *types.Filter
	var filterStr string
	if u.ID != "" {
		filter = &types.Filter{Where: "id = ?", Args: []any{u.ID}}
		filterStr = fmt.Sprintf("ID '%s'", u.ID)
	} else {
		filter = &types.Filter{Where: "name = ?", Args: []any{u.Name}}
		filterStr = fmt.Sprintf("name '%s'", u.Name)
	}

	stmt := fmt.Sprintf(`DELETE FROM users WHERE %s`, filter.Where)

	res, err := d.ExecContext(ctx, stmt, filter.Args...)
	if err != nil {
		return types.Err("user", filterStr, err)
	}

	var n int64
	if n, err = res.RowsAffected(); err != nil {
		return fmt.Errorf("failed getting affected rows: %w", err)
	} else if n == 0 {
		return types.NoResultError{ModelName: "user", ID: filterStr}
	}

	return nil
}

// HasRole returns true if the user is assigned the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// Users returns one or more users with their roles from the database. An
// optional filter can be passed to limit the results.
func Users(ctx context.Context, d types.Querier, filter *types.Filter) (users []*User, rerr error) {
	where, args := whereClause(filter)
	query := fmt.Sprintf(`SELECT u.id, u.created_at, u.updated_at, u.name,
		     u.password_hash, COALESCE(GROUP_CONCAT(ur.role_id), '')
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		WHERE %s
		GROUP BY u.id
		ORDER BY u.name ASC`, where)

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.LoadError{ModelName: "users", Err: err}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = fmt.Errorf("failed closing users rows: %w", err)
		}
	}()

	users = make([]*User, 0)
	roleIDs := map[*User]string{}
	for rows.Next() {
		var (
			u   User
			ids string
		)
		err = rows.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt, &u.Name, &u.PasswordHash, &ids)
		if err != nil {
			return nil, types.ScanError{ModelName: "user", Err: err}
		}
		users = append(users, &u)
		roleIDs[&u] = ids
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over users rows: %w", err)
	}

	if len(users) == 0 {
		return users, nil
	}

	roles, err := Roles(ctx, d, nil)
	if err != nil {
		return nil, err
	}
	rolesByID := make(map[string]*Role, len(roles))
	for _, r := range roles {
		rolesByID[fmt.Sprint(r.ID)] = r
	}

	for _, u := range users {
		u.Roles = []*Role{}
		for id := range strings.SplitSeq(roleIDs[u], ",") {
			if r, ok := rolesByID[id]; ok {
				u.Roles = append(u.Roles, r)
			}
		}
	}

	return users, nil
}
