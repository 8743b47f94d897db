// Package filestore provides a preview store backed by one JSON file per handle.
package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/artimix/internal/domain/mix"
)

const fileExt = ".json"

// Config holds file store settings.
type Config struct {
	Dir string `mapstructure:"dir" default:"temp_previews" validate:"required"`
}

// Store writes each preview to <dir>/<handle>.json.
type Store struct {
	dir string
}

// New creates a Store from backend settings, creating the directory if needed.
func New(settings map[string]any) (*Store, error) {
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
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create preview directory %s", cfg.Dir)
	}
	zlog.Debug().Msgf("file preview store: dir=%s", cfg.Dir)
	return &Store{dir: cfg.Dir}, nil
}

// path maps a handle to its file. Only canonical UUIDs are accepted so a
// handle can never name a file outside the store directory.
func (s *Store) path(handle string) (string, bool) {
	u, err := uuid.Parse(handle)
	if err != nil || u.String() != handle {
		return "", false
	}
	return filepath.Join(s.dir, handle+fileExt), true
}

// Put implements preview.Store. The record becomes visible only once fully written.
func (s *Store) Put(ctx context.Context, p *mix.Preview) (string, error) {
	data, err := mix.Marshal(p)
	if err != nil {
		return "", err
	}
	dst, ok := s.path(p.ID)
	if !ok {
		return "", errors.Newf("preview id %q is not a valid handle", p.ID)
	}

	tmp, err := os.CreateTemp(s.dir, ".preview-*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "failed to create temp file")
	}
	tmpName := tmp.Name()
	defer func() {
		// Leftover only when something below failed.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", errors.Wrap(err, "failed to write preview")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return "", errors.Wrap(err, "failed to sync preview")
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "failed to close preview")
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return "", errors.Wrap(err, "failed to publish preview")
	}
	return p.ID, nil
}

// Get implements preview.Store.
func (s *Store) Get(ctx context.Context, handle string) (*mix.Preview, error) {
	path, ok := s.path(handle)
	if !ok {
		return nil, mix.NewNotFoundError(handle)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, mix.NewNotFoundError(handle)
		}
		return nil, errors.Wrapf(err, "failed to read preview %s", handle)
	}
	return mix.Unmarshal(handle, data)
}

// Delete implements preview.Store.
func (s *Store) Delete(ctx context.Context, handle string) error {
	path, ok := s.path(handle)
	if !ok {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrapf(err, "failed to delete preview %s", handle)
	}
	return nil
}

// Sweep implements preview.Sweeper using file modification times.
func (s *Store) Sweep(ctx context.Context, olderThan time.Time) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, errors.Wrap(err, "failed to list previews")
	}

	removed := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if !info.ModTime().Before(olderThan) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			zlog.Warn().Msgf("failed to remove expired preview: file=%s error=%v", e.Name(), err)
			continue
		}
		removed++
	}
	return removed, nil
}
