package models

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.hackfix.me/todo/db/types"
)

// Permission allows an action on a target. Both fields may be glob patterns,
// e.g. "*" or "todo*".
type Permission struct {
	Action string `yaml:"action"`
	Target string `yaml:"target"`
}

// Role is a named set of permissions that can be assigned to users.
type Role struct {
	ID          uint64
	Name        string
	Permissions []Permission
}

// Save stores the role and its permissions in the database. Existing roles
// have their permissions replaced.
func (r *Role) Save(ctx context.Context, d types.Querier, update bool) error {
	if update {
		if r.ID == 0 {
			return errors.New("must provide a role ID to update")
		}
		res, err := d.ExecContext(ctx, `UPDATE roles SET name = ? WHERE id = ?`, r.Name, r.ID)
		if err != nil {
			return types.Err("role", fmt.Sprintf("name '%s'", r.Name), err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return fmt.Errorf("failed getting affected rows: %w", err)
		} else if n == 0 {
			return types.ConcurrencyError{ModelName: "role", ID: fmt.Sprintf("ID %d", r.ID)}
		}
		if _, err = d.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = ?`, r.ID); err != nil {
			return fmt.Errorf("failed clearing role permissions: %w", err)
		}
	} else {
		res, err := d.ExecContext(ctx, `INSERT INTO roles (id, name) VALUES (NULL, ?)`, r.Name)
		if err != nil {
			return types.Err("role", fmt.Sprintf("name '%s'", r.Name), err)
		}
		if r.ID, err = lastInsertID(res); err != nil {
			return err
		}
	}

	for _, p := range r.Permissions {
		_, err := d.ExecContext(ctx,
			`INSERT INTO role_permissions (role_id, action, target) VALUES (?, ?, ?)`,
			r.ID, p.Action, p.Target)
		if err != nil {
			return types.Err("role permission", fmt.Sprintf("%s:%s", p.Action, p.Target), err)
		}
	}

	return nil
}

// Load the role and its permissions from the database. Either the role ID or
// Name must be set for the lookup.
func (r *Role) Load(ctx context.Context, d types.Querier) error {
	if r.ID == 0 && r.Name == "" {
		return types.InvalidInputError{Msg: "either role ID or Name must be set"}
	}

	var filter *types.Filter
	var filterStr string
	if r.ID != 0 {
		filter = &types.Filter{Where: "r.id = ?", Args: []any{r.ID}}
		filterStr = fmt.Sprintf("ID %d", r.ID)
	} else {
		filter = &types.Filter{Where: "r.name = ?", Args: []any{r.Name}}
		filterStr = fmt.Sprintf("name '%s'", r.Name)
	}

	roles, err := Roles(ctx, d, filter)
	if err != nil {
		return err
	}
	if len(roles) == 0 {
		return types.NoResultError{ModelName: "role", ID: filterStr}
	}
	*r = *roles[0]

	return nil
}

// Roles returns roles with their permissions from the database, ordered by
// name. An optional filter can be passed to limit the results.
func Roles(ctx context.Context, d types.Querier, filter *types.Filter) (roles []*Role, rerr error) {
	where, args := whereClause(filter)
	query := fmt.Sprintf(`SELECT r.id, r.name, rp.action, rp.target
		FROM roles r
		LEFT JOIN role_permissions rp ON rp.role_id = r.id
		WHERE %s
		ORDER BY r.name ASC, rp.action ASC, rp.target ASC`, where)

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, types.LoadError{ModelName: "roles", Err: err}
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = fmt.Errorf("failed closing roles rows: %w", err)
		}
	}()

	roles = make([]*Role, 0)
	for rows.Next() {
		var (
			id             uint64
			name           string
			action, target *string
		)
		if err = rows.Scan(&id, &name, &action, &target); err != nil {
			return nil, types.ScanError{ModelName: "role", Err: err}
		}

		if len(roles) == 0 || roles[len(roles)-1].ID != id {
			roles = append(roles, &Role{ID: id, Name: name, Permissions: []Permission{}})
		}
		if action != nil && target != nil {
			r := roles[len(roles)-1]
			r.Permissions = append(r.Permissions, Permission{Action: *action, Target: *target})
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over roles rows: %w", err)
	}

	return roles, nil
}

// RoleNames returns the names of the given roles.
func RoleNames(roles []*Role) []string {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, r.Name)
	}
	slices.Sort(names)

	return names
}
