package migrator

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"time"

	"go.hackfix.me/todo/db/types"
)

// Direction is the direction migrations are run in.
type Direction string

// Supported migration directions.
const (
	MigrationUp   Direction = "up"
	MigrationDown Direction = "down"
)

// Migration is a single schema change with the SQL to apply and revert it.
type Migration struct {
	ID   int
	Name string
	Up   string
	Down string
}

var fileNameRx = regexp.MustCompile(`^(\d+)-([\w-]+)\.(up|down)\.sql$`)

// LoadMigrations reads all migration files from the root of fsys. Files must
// be named {id}-{name}.{up|down}.sql, and every migration needs an up file.
func LoadMigrations(fsys fs.FS) ([]*Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed reading migrations directory: %w", err)
	}

	byID := map[int]*Migration{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := fileNameRx.FindStringSubmatch(entry.Name())
		if match == nil {
			return nil, fmt.Errorf("invalid migration file name '%s'", entry.Name())
		}

		id, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("invalid migration ID in '%s': %w", entry.Name(), err)
		}

		sqlData, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed reading migration file '%s': %w", entry.Name(), err)
		}

		m, ok := byID[id]
		if !ok {
			m = &Migration{ID: id, Name: match[2]}
			byID[id] = m
		} else if m.Name != match[2] {
			return nil, fmt.Errorf("conflicting names for migration %d: '%s' and '%s'",
				id, m.Name, match[2])
		}

		if Direction(match[3]) == MigrationUp {
			m.Up = string(sqlData)
		} else {
			m.Down = string(sqlData)
		}
	}

	migrations := make([]*Migration, 0, len(byID))
	for _, m := range byID {
		if m.Up == "" {
			return nil, fmt.Errorf("migration %d-%s has no up file", m.ID, m.Name)
		}
		migrations = append(migrations, m)
	}
	slices.SortFunc(migrations, func(a, b *Migration) int { return a.ID - b.ID })

	return migrations, nil
}

// RunMigrations applies or reverts migrations until the database is at the
// target migration ID. A target of "all" applies every migration when going
// up, and reverts every migration when going down.
func RunMigrations(
	d types.Querier, migrations []*Migration, dir Direction, to string,
	logger *slog.Logger,
) error {
	ctx := d.NewContext()

	target, err := parseTarget(migrations, dir, to)
	if err != nil {
		return err
	}

	if _, err = d.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TIMESTAMP NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed creating migrations table: %w", err)
	}

	applied, err := appliedMigrations(ctx, d)
	if err != nil {
		return err
	}

	plan := planMigrations(migrations, applied, dir, target)
	for _, m := range plan {
		mlogger := logger.With("id", m.ID, "name", m.Name, "direction", dir)
		mlogger.Debug("running migration")
		if err = runMigration(ctx, d, m, dir); err != nil {
			return err
		}
		mlogger.Info("migration complete")
	}

	return nil
}

func parseTarget(migrations []*Migration, dir Direction, to string) (int, error) {
	if to == "all" {
		if dir == MigrationDown || len(migrations) == 0 {
			return 0, nil
		}
		return migrations[len(migrations)-1].ID, nil
	}

	target, err := strconv.Atoi(to)
	if err != nil || target < 0 {
		return 0, fmt.Errorf("invalid migration target '%s'", to)
	}

	return target, nil
}

func planMigrations(
	migrations []*Migration, applied map[int]struct{}, dir Direction, target int,
) []*Migration {
	var plan []*Migration
	switch dir {
	case MigrationUp:
		for _, m := range migrations {
			if _, ok := applied[m.ID]; !ok && m.ID <= target {
				plan = append(plan, m)
			}
		}
	case MigrationDown:
		for _, m := range slices.Backward(migrations) {
			if _, ok := applied[m.ID]; ok && m.ID > target {
				plan = append(plan, m)
			}
		}
	}

	return plan
}

func appliedMigrations(ctx context.Context, d types.Querier) (_ map[int]struct{}, rerr error) {
	rows, err := d.QueryContext(ctx, `SELECT id FROM _migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed querying applied migrations: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = fmt.Errorf("failed closing migrations rows: %w", err)
		}
	}()

	applied := map[int]struct{}{}
	for rows.Next() {
		var id int
		if err = rows.Scan(&id); err != nil {
			return nil, types.ScanError{ModelName: "migration", Err: err}
		}
		applied[id] = struct{}{}
	}

	return applied, rows.Err()
}

func runMigration(ctx context.Context, d types.Querier, m *Migration, dir Direction) error {
	script := m.Up
	if dir == MigrationDown {
		script = m.Down
	}
	if script == "" {
		return fmt.Errorf("migration %d-%s has no %s script", m.ID, m.Name, dir)
	}

	if _, err := d.ExecContext(ctx, script); err != nil {
		return fmt.Errorf("failed running migration %d-%s %s: %w", m.ID, m.Name, dir, err)
	}

	var err error
	if dir == MigrationUp {
		_, err = d.ExecContext(ctx,
			`INSERT INTO _migrations (id, name, applied_at) VALUES (?, ?, ?)`,
			m.ID, m.Name, d.TimeNow().UTC().Truncate(time.Second))
	} else {
		_, err = d.ExecContext(ctx, `DELETE FROM _migrations WHERE id = ?`, m.ID)
	}
	if err != nil {
		return fmt.Errorf("failed recording migration %d-%s: %w", m.ID, m.Name, err)
	}

	return nil
}
