// Package history archives emitted translation results in PostgreSQL for
// later inspection. Archiving is best-effort and never blocks the display
// path on failure.
package history

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"babelfeed/internal/config"
	"babelfeed/internal/logger"
	"babelfeed/internal/pipeline"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const connectTimeout = 10 * time.Second

type Entry struct {
	ID             string
	Seq            uint64
	Sender         string
	SourceText     string
	TranslatedText string
	Engine         string
	Succeeded      bool
	ErrorKind      string
	EmittedAt      time.Time
}

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

// Open connects, verifies the connection, and applies pending migrations.
func Open(ctx context.Context, cfg config.PostgresConfig, log logger.Logger) (*Store, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	store := NewStore(db, log)
	if err := store.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewStore wraps an existing connection without migrating. Used by tests
// that manage the schema themselves.
func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{db: db, logger: log}
}

// Migrate applies the embedded migrations.
func (s *Store) Migrate() error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	driver, err := migratepg.WithInstance(s.db, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Record archives one emitted result.
func (s *Store) Record(ctx context.Context, res pipeline.TranslationResult) error {
	query := `
		INSERT INTO translation_history
			(id, seq, sender, source_text, translated_text, engine, succeeded, error_kind, emitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	_, err := s.db.ExecContext(ctx, query,
		res.ID,
		res.Seq,
		res.Sender,
		res.SourceText,
		res.TranslatedText,
		res.Engine,
		res.Succeeded,
		res.ErrorKind,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// Recent returns the newest entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, seq, sender, source_text, translated_text, engine, succeeded, error_kind, emitted_at
		FROM translation_history
		ORDER BY emitted_at DESC, seq DESC
		LIMIT $1
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(
			&e.ID,
			&e.Seq,
			&e.Sender,
			&e.SourceText,
			&e.TranslatedText,
			&e.Engine,
			&e.Succeeded,
			&e.ErrorKind,
			&e.EmittedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return entries, nil
}

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}
