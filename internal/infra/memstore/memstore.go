// Package memstore provides a bounded in-memory preview store.
package memstore

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	lru "github.com/hashicorp/golang-lru"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/artimix/internal/domain/mix"
)

// Config holds memory store settings.
type Config struct {
	// Size is the maximum number of previews kept. The least recently used is evicted first.
	// Zero selects the default.
	Size int `mapstructure:"size" default:"1024" validate:"gte=1"`
}

type entry struct {
	data      []byte
	createdAt time.Time
}

// Store keeps encoded previews in an LRU cache. Records do not survive a restart.
type Store struct {
	cache *lru.Cache
	now   func() time.Time
}

// New creates a Store from backend settings.
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

	cache, err := lru.New(cfg.Size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cache")
	}
	zlog.Debug().Msgf("memory preview store: size=%d", cfg.Size)
	return &Store{cache: cache, now: time.Now}, nil
}

// Put implements preview.Store.
func (s *Store) Put(ctx context.Context, p *mix.Preview) (string, error) {
	data, err := mix.Marshal(p)
	if err != nil {
		return "", err
	}
	if evicted := s.cache.Add(p.ID, entry{data: data, createdAt: s.now()}); evicted {
		zlog.Debug().Msg("memory preview store full, evicted oldest preview")
	}
	return p.ID, nil
}

// Get implements preview.Store.
func (s *Store) Get(ctx context.Context, handle string) (*mix.Preview, error) {
	v, ok := s.cache.Get(handle)
	if !ok {
		return nil, mix.NewNotFoundError(handle)
	}
	e, ok := v.(entry)
	if !ok {
		return nil, mix.NewCorruptError(handle, errors.Newf("unexpected entry type %T", v))
	}
	return mix.Unmarshal(handle, e.data)
}

// Delete implements preview.Store.
func (s *Store) Delete(ctx context.Context, handle string) error {
	s.cache.Remove(handle)
	return nil
}

// Sweep implements preview.Sweeper.
func (s *Store) Sweep(ctx context.Context, olderThan time.Time) (int, error) {
	removed := 0
	for _, key := range s.cache.Keys() {
		v, ok := s.cache.Peek(key)
		if !ok {
			continue
		}
		if e, ok := v.(entry); ok && e.createdAt.Before(olderThan) {
			s.cache.Remove(key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored previews.
func (s *Store) Len() int {
	return s.cache.Len()
}
