package db

import (
	"context"

	"go.hackfix.me/todo/db/models"
	"go.hackfix.me/todo/db/types"
)

// Built-in role names.
const (
	RoleAdministrator = "Administrator"
	RoleUser          = "User"
)

func createRoles(ctx context.Context, d types.Querier) (map[string]*models.Role, error) {
	roles := []*models.Role{
		{
			Name:        RoleAdministrator,
			Permissions: []models.Permission{{Action: "*", Target: "*"}},
		},
		{
			Name: RoleUser,
			Permissions: []models.Permission{
				{Action: "read", Target: "todo*"},
				{Action: "write", Target: "todo*"},
			},
		},
	}

	rolesMap := map[string]*models.Role{}
	for _, role := range roles {
		if err := role.Save(ctx, d, false); err != nil {
			return nil, err
		}
		rolesMap[role.Name] = role
	}

	return rolesMap, nil
}
