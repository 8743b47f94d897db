package preview

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/artimix/internal/infra/config"
	"github.com/osa030/artimix/internal/infra/filestore"
	"github.com/osa030/artimix/internal/infra/memstore"
	"github.com/osa030/artimix/internal/infra/sqlstore"
)

// NewStoreFromConfig creates the configured preview store.
// The returned close function releases backend resources and is never nil.
func NewStoreFromConfig(cfg *config.PreviewStoreConfig) (Store, func() error, error) {
	noop := func() error { return nil }
	zlog.Debug().Msgf("creating preview store: type=%s settings=%+v", cfg.Type, cfg.Settings)

	switch cfg.Type {
	case "memory":
		s, err := memstore.New(cfg.Settings)
		if err != nil {
			return nil, noop, errors.Wrap(err, "failed to create memory store")
		}
		return s, noop, nil

	case "file":
		s, err := filestore.New(cfg.Settings)
		if err != nil {
			return nil, noop, errors.Wrap(err, "failed to create file store")
		}
		return s, noop, nil

	case "sqlite", "postgres":
		s, err := sqlstore.Open(cfg.Type, cfg.Settings)
		if err != nil {
			return nil, noop, errors.Wrapf(err, "failed to open %s store", cfg.Type)
		}
		return s, s.Close, nil

	default:
		return nil, noop, errors.Newf("unsupported preview store type: %s", cfg.Type)
	}
}
