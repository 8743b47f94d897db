// Package sqlstore provides a preview store on SQLite or PostgreSQL.
package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/artimix/internal/domain/mix"
)

// Config holds SQL store settings.
type Config struct {
	// DSN is a file path (plus optional query) for sqlite or a connection URL for postgres.
	DSN          string `mapstructure:"dsn" validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" default:"4" validate:"gte=1"`
}

const schema = `CREATE TABLE IF NOT EXISTS mix_previews (
	id         TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	created_at BIGINT NOT NULL
)`

const (
	insertPreview = `INSERT INTO mix_previews (id, payload, created_at) VALUES ($1, $2, $3)`
	selectPreview = `SELECT payload FROM mix_previews WHERE id = $1`
	deletePreview = `DELETE FROM mix_previews WHERE id = $1`
	sweepPreviews = `DELETE FROM mix_previews WHERE created_at < $1`
)

var drivers = map[string]string{
	"sqlite":   "sqlite3",
	"postgres": "pgx",
}

// Store keeps one row per preview. Single-row statements give atomic publish and retire.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open connects to the database for kind ("sqlite" or "postgres") and ensures the schema.
func Open(kind string, settings map[string]any) (*Store, error) {
	driver, ok := drivers[kind]
	if !ok {
		return nil, errors.Newf("unsupported sql store kind: %s", kind)
	}

	var cfg Config
	if err := mapstructure.Decode(settings, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(cfg); err != nil {
		return nil, errors.Wrap(err, "validation failed")
	}

	db, err := sql.Open(driver, cfg.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", kind)
	}
	if kind == "sqlite" {
		// SQLite serializes writers anyway.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "failed to connect to %s", kind)
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	zlog.Debug().Msgf("sql preview store ready: kind=%s", kind)
	return s, nil
}

// New wraps an open database. The schema must already exist; see Migrate.
func New(db *sql.DB) *Store {
	return &Store{db: db, now: time.Now}
}

// Migrate creates the previews table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to create mix_previews table")
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put implements preview.Store.
func (s *Store) Put(ctx context.Context, p *mix.Preview) (string, error) {
	data, err := mix.Marshal(p)
	if err != nil {
		return "", err
	}
	if _, err := s.db.ExecContext(ctx, insertPreview, p.ID, string(data), s.now().Unix()); err != nil {
		return "", errors.Wrapf(err, "failed to insert preview %s", p.ID)
	}
	return p.ID, nil
}

// Get implements preview.Store.
func (s *Store) Get(ctx context.Context, handle string) (*mix.Preview, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, selectPreview, handle).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, mix.NewNotFoundError(handle)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read preview %s", handle)
	}
	return mix.Unmarshal(handle, []byte(payload))
}

// Delete implements preview.Store.
func (s *Store) Delete(ctx context.Context, handle string) error {
	if _, err := s.db.ExecContext(ctx, deletePreview, handle); err != nil {
		return errors.Wrapf(err, "failed to delete preview %s", handle)
	}
	return nil
}

// Sweep implements preview.Sweeper.
func (s *Store) Sweep(ctx context.Context, olderThan time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, sweepPreviews, olderThan.Unix())
	if err != nil {
		return 0, errors.Wrap(err, "failed to sweep previews")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "failed to count swept previews")
	}
	return int(n), nil
}
