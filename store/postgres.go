// Package store implements the append-only update.Log against a real
// Postgres connection, with schema migrations applied via golang-migrate.
// Grounded on channeldb/db.go's thin-wrapper-around-a-persistence-engine
// shape and its version/migration bookkeeping (SPEC_FULL.md §6, component
// J), adapted from boltdb's in-process migrations to golang-migrate's
// file-driven ones since the underlying engine here is a network database.
package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"time"

	"github.com/go-errors/errors"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/kollider-hedge/hedged/internal/build"
	"github.com/kollider-hedge/hedged/update"
)

var log = build.NewSubLogger("STOR")

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Postgres implements update.Log against a database/sql connection pool
// using the lib/pq driver.
type Postgres struct {
	db *sql.DB
}

// Open connects to dsn, applies any pending migrations, and returns a ready
// Postgres store.
func Open(dsn string) (*Postgres, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, 0)
	}

	if err := migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Postgres{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return errors.Wrap(err, 0)
	}

	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return errors.Wrap(err, 0)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return errors.Wrap(err, 0)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, 0)
	}
	return nil
}

// Close releases the underlying connection pool.
func (p *Postgres) Close() error {
	return p.db.Close()
}

// Append persists body with the current wall-clock time.
func (p *Postgres) Append(ctx context.Context, body update.UpdateBody) error {
	tag, version, raw, err := update.EncodeBody(body)
	if err != nil {
		return errors.Wrap(err, 0)
	}

	_, err = p.db.ExecContext(ctx,
		`INSERT INTO updates (created, version, tag, body) VALUES ($1, $2, $3, $4)`,
		time.Now().UTC(), version, tag, []byte(raw),
	)
	if err != nil {
		return errors.Wrap(err, 0)
	}
	log.Tracef("appended update tag=%s version=%d", tag, version)
	return nil
}

// Scan returns the update history needed to reconstruct current state,
// newest first, truncated at (and including) the most recent snapshot.
func (p *Postgres) Scan(ctx context.Context) ([]update.StateUpdate, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT created, version, tag, body FROM updates ORDER BY created DESC`,
	)
	if err != nil {
		return nil, errors.Wrap(err, 0)
	}
	defer rows.Close()

	var out []update.StateUpdate
	for rows.Next() {
		var (
			created time.Time
			version uint16
			tag     string
			raw     json.RawMessage
		)
		if err := rows.Scan(&created, &version, &tag, &raw); err != nil {
			return nil, errors.Wrap(err, 0)
		}

		body, err := update.DecodeBody(tag, version, raw)
		if err != nil {
			return nil, err
		}

		entry := update.StateUpdate{Created: created, Body: body}
		out = append(out, entry)
		if body.Tag() == update.TagSnapshot {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, 0)
	}
	return out, nil
}
