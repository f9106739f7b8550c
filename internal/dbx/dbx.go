// Package dbx owns the single PostgreSQL pool handle and the startup
// migration runner. Per the teacher's dynamic-dispatch note (spec.md §9),
// storage is a single aggregate struct with explicit methods rather than an
// interface with one implementation: there is only ever one production
// store, so the extra indirection buys nothing.
package dbx

import (
	"context"
	"embed"
	"sort"
	"strings"

	"github.com/alcionai/clues"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/floorsync/core/internal/logger"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationsDir = "migrations"

// Store wraps the shared pgx pool. It is constructed once at startup and
// handed by reference to every pipeline stage that touches the database.
type Store struct {
	Pool *pgxpool.Pool
}

// Open connects the pool and runs pending migrations. A failure here is a
// Fatal-class error (§7): callers should abort the process before starting
// any pipeline task.
func Open(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, clues.Wrap(err, "connecting to database")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, clues.Wrap(err, "pinging database")
	}

	s := &Store{Pool: pool}

	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, clues.Wrap(err, "running migrations")
	}

	return s, nil
}

// Close releases the pool.
func (s *Store) Close() {
	s.Pool.Close()
}

// migrate applies every *.up.sql file in lexical order inside a single
// transaction per file, tracking applied versions in a bookkeeping table.
// This is a minimal, embedded stand-in for golang-migrate: the schema here
// is small and fixed, so a full migration framework isn't warranted, but
// the up-only, ordered-by-filename semantics mirror it.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version text PRIMARY KEY,
			applied_at timestamptz NOT NULL DEFAULT now()
		)`); err != nil {
		return clues.Wrap(err, "creating schema_migrations table")
	}

	entries, err := migrationFS.ReadDir(migrationsDir)
	if err != nil {
		return clues.Wrap(err, "reading embedded migrations")
	}

	var versions []string

	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			versions = append(versions, e.Name())
		}
	}

	sort.Strings(versions)

	log := logger.Ctx(ctx)

	for _, v := range versions {
		var already bool

		row := s.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, v)
		if err := row.Scan(&already); err != nil {
			return clues.Wrap(err, "checking migration state").With("version", v)
		}

		if already {
			continue
		}

		sqlBytes, err := migrationFS.ReadFile(migrationsDir + "/" + v)
		if err != nil {
			return clues.Wrap(err, "reading migration").With("version", v)
		}

		tx, err := s.Pool.Begin(ctx)
		if err != nil {
			return clues.Wrap(err, "beginning migration transaction").With("version", v)
		}

		if _, err := tx.Exec(ctx, string(sqlBytes)); err != nil {
			_ = tx.Rollback(ctx)
			return clues.Wrap(err, "applying migration").With("version", v)
		}

		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, v); err != nil {
			_ = tx.Rollback(ctx)
			return clues.Wrap(err, "recording migration").With("version", v)
		}

		if err := tx.Commit(ctx); err != nil {
			return clues.Wrap(err, "committing migration").With("version", v)
		}

		log.Infow("applied migration", "version", v)
	}

	return nil
}
