package memstore

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/artimix/internal/domain/mix"
	"github.com/osa030/artimix/internal/domain/track"
)

func newPreview(n int) *mix.Preview {
	tracks := make([]track.Track, n)
	for i := range tracks {
		tracks[i] = track.Track{URI: fmt.Sprintf("spotify:track:%d", i), Name: fmt.Sprintf("Song %d", i)}
	}
	return mix.NewPreview(uuid.NewString(), "Mix", tracks, []mix.Contribution{
		{Name: "Artist", TracksContributed: n, RequestedWeightPercent: 100},
	})
}

func TestNew_Settings(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]any
		wantErr  bool
	}{
		{name: "defaults", settings: nil},
		{name: "explicit size", settings: map[string]any{"size": 8}},
		{name: "invalid size", settings: map[string]any{"size": -1}, wantErr: true},
		{name: "wrong type", settings: map[string]any{"size": "big"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.settings)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, s)
		})
	}
}

func TestStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s, err := New(nil)
	require.NoError(t, err)

	p := newPreview(5)
	handle, err := s.Put(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, p.ID, handle)

	got, err := s.Get(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, p.TrackURIs, got.TrackURIs)
	assert.Equal(t, p.Contributions, got.Contributions)

	// Reading does not consume the record.
	_, err = s.Get(ctx, handle)
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, handle))
	require.NoError(t, s.Delete(ctx, handle), "second delete is a no-op")

	_, err = s.Get(ctx, handle)
	assert.True(t, errors.Is(err, mix.ErrNotFound))
	require.NoError(t, s.Delete(ctx, handle), "delete after not found is a no-op")
	assert.Zero(t, s.Len())
}

func TestStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s, err := New(nil)
	require.NoError(t, err)

	p := newPreview(3)
	_, err = s.Put(ctx, p)
	require.NoError(t, err)
	p.TrackURIs[0] = "mutated"

	got, err := s.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "spotify:track:0", got.TrackURIs[0])
}

func TestStore_PutRejectsInvalid(t *testing.T) {
	s, err := New(nil)
	require.NoError(t, err)

	p := newPreview(2)
	p.TotalTrackCount = 9
	_, err = s.Put(context.Background(), p)
	assert.Error(t, err)
	assert.Zero(t, s.Len())
}

func TestStore_Eviction(t *testing.T) {
	ctx := context.Background()
	s, err := New(map[string]any{"size": 2})
	require.NoError(t, err)

	first, second, third := newPreview(1), newPreview(1), newPreview(1)
	for _, p := range []*mix.Preview{first, second, third} {
		_, err := s.Put(ctx, p)
		require.NoError(t, err)
	}

	_, err = s.Get(ctx, first.ID)
	assert.True(t, errors.Is(err, mix.ErrNotFound))
	_, err = s.Get(ctx, third.ID)
	assert.NoError(t, err)
}

func TestNew_ZeroSizeUsesDefault(t *testing.T) {
	ctx := context.Background()
	s, err := New(map[string]any{"size": 0})
	require.NoError(t, err)

	for i := 0; i < 1025; i++ {
		_, err := s.Put(ctx, newPreview(1))
		require.NoError(t, err)
	}
	assert.Equal(t, 1024, s.Len())
}

func TestStore_Sweep(t *testing.T) {
	ctx := context.Background()
	s, err := New(nil)
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	old, fresh := newPreview(1), newPreview(1)

	s.now = func() time.Time { return base }
	_, err = s.Put(ctx, old)
	require.NoError(t, err)
	s.now = func() time.Time { return base.Add(2 * time.Hour) }
	_, err = s.Put(ctx, fresh)
	require.NoError(t, err)

	n, err := s.Sweep(ctx, base.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.Get(ctx, old.ID)
	assert.True(t, errors.Is(err, mix.ErrNotFound))
	_, err = s.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestStore_ConcurrentGetDelete(t *testing.T) {
	ctx := context.Background()
	s, err := New(nil)
	require.NoError(t, err)

	p := newPreview(10)
	_, err = s.Put(ctx, p)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			got, err := s.Get(ctx, p.ID)
			if err != nil {
				assert.True(t, errors.Is(err, mix.ErrNotFound))
				return
			}
			assert.Len(t, got.TrackURIs, 10)
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Delete(ctx, p.ID))
		}()
	}
	wg.Wait()
}
