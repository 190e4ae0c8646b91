package seed

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"HeroCatalog/internal/hero"
)

const (
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"

	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

var ErrUnknownDriver = errors.New("unknown sql driver")

// OpenSQL opens and pings a read-only seed database.
func OpenSQL(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	err = withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return db.PingContext(ctx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return db, nil
}

// FromSQL reads the heroes table. Powers are stored as a JSON array of
// strings; alias and team may be NULL. Rows come back with numeric ids in
// numeric order ("2" before "10").
func FromSQL(ctx context.Context, db *sql.DB) ([]hero.Hero, error) {
	var out []hero.Hero

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := db.QueryContext(ctx, `
			SELECT id, name, alias, powers, nationality, team, description, image
			FROM heroes
			ORDER BY LENGTH(id), id
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]hero.Hero, 0, 8)
		for rows.Next() {
			var (
				h           hero.Hero
				alias, team sql.NullString
				powers      string
			)
			if err := rows.Scan(&h.ID, &h.Name, &alias, &powers, &h.Nationality, &team, &h.Description, &h.Image); err != nil {
				return err
			}
			if err := json.Unmarshal([]byte(powers), &h.Powers); err != nil {
				return fmt.Errorf("hero %s: decode powers: %w", h.ID, err)
			}
			h.Alias = alias.String
			h.Team = team.String
			out = append(out, h)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("query seed heroes: %w", err)
	}

	if err := validate(out); err != nil {
		return nil, err
	}
	return out, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
