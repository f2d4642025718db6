package queries

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.hackfix.me/todo/crypto"
	"go.hackfix.me/todo/db/types"
)

// TokenSecret returns the key used to sign access tokens. It returns an error
// if it's missing or invalid.
func TokenSecret(ctx context.Context, d types.Querier) ([]byte, error) {
	var secret sql.Null[string]
	err := d.QueryRowContext(ctx, `SELECT token_secret FROM _meta`).Scan(&secret)
	if err != nil {
		return nil, fmt.Errorf("failed reading token secret: %w", err)
	}

	if !secret.Valid || secret.V == "" {
		return nil, errors.New("token secret not found")
	}

	return crypto.DecodeSecret(secret.V)
}

// Version returns the application version the database was initialized
// with. If the returned sql.Null value is invalid, it indicates that the
// database hasn't been initialized.
func Version(ctx context.Context, d types.Querier) (sql.Null[string], error) {
	var version sql.Null[string]
	err := d.QueryRowContext(ctx, `SELECT version FROM _meta`).
		Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) && !isMissingTable(err) {
		return version, err
	}

	return version, nil
}

func isMissingTable(err error) bool {
	return strings.Contains(err.Error(), "no such table")
}
