// Package preview defines the preview store contract and its lifecycle helpers.
package preview

import (
	"context"
	"time"

	"github.com/osa030/artimix/internal/domain/mix"
)

// Store persists previews under their opaque handle.
//
// Implementations publish and retire a record atomically per handle: a Get
// racing a Delete sees either the whole record or mix.ErrNotFound.
type Store interface {
	// Put stores p under p.ID and returns the handle. Invalid previews are rejected.
	Put(ctx context.Context, p *mix.Preview) (string, error)
	// Get returns the preview, mix.ErrNotFound, or mix.ErrCorrupt for a structurally invalid record.
	Get(ctx context.Context, handle string) (*mix.Preview, error)
	// Delete removes the record. Deleting an absent handle is not an error.
	Delete(ctx context.Context, handle string) error
}

// Sweeper is implemented by stores that can expire old records.
type Sweeper interface {
	// Sweep deletes records created before olderThan and returns how many were removed.
	Sweep(ctx context.Context, olderThan time.Time) (int, error)
}
