package filestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
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

func newStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "previews")
	s, err := New(map[string]any{"dir": dir})
	require.NoError(t, err)
	return s, dir
}

func TestNew_CreatesDirectory(t *testing.T) {
	_, dir := newStore(t)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)

	p := newPreview(4)
	handle, err := s.Put(ctx, p)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, handle+".json"))

	got, err := s.Get(ctx, handle)
	require.NoError(t, err)
	assert.Equal(t, p.TrackURIs, got.TrackURIs)
	assert.Equal(t, p.DisplaySample, got.DisplaySample)

	require.NoError(t, s.Delete(ctx, handle))
	require.NoError(t, s.Delete(ctx, handle))

	_, err = s.Get(ctx, handle)
	assert.True(t, errors.Is(err, mix.ErrNotFound))
	assert.NoFileExists(t, filepath.Join(dir, handle+".json"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no temp files are left behind")
}

func TestStore_CorruptRecord(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)

	handle := uuid.NewString()
	require.NoError(t, os.WriteFile(filepath.Join(dir, handle+".json"), []byte(`{"id":"`+handle+`"}`), 0o644))

	_, err := s.Get(ctx, handle)
	require.Error(t, err)
	assert.True(t, errors.Is(err, mix.ErrCorrupt))

	require.NoError(t, s.Delete(ctx, handle))
	_, err = s.Get(ctx, handle)
	assert.True(t, errors.Is(err, mix.ErrNotFound))
}

func TestStore_RejectsNonCanonicalHandles(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)

	outside := filepath.Join(filepath.Dir(dir), "secret.json")
	require.NoError(t, os.WriteFile(outside, []byte("{}"), 0o644))

	for _, handle := range []string{
		"../secret",
		"",
		"not-a-uuid",
		"{" + uuid.NewString() + "}",
		"urn:uuid:" + uuid.NewString(),
	} {
		_, err := s.Get(ctx, handle)
		assert.True(t, errors.Is(err, mix.ErrNotFound), "handle %q", handle)
		assert.NoError(t, s.Delete(ctx, handle))
	}
	assert.FileExists(t, outside)

	p := newPreview(1)
	p.ID = "../escape"
	_, err := s.Put(ctx, p)
	assert.Error(t, err)
}

func TestStore_Sweep(t *testing.T) {
	ctx := context.Background()
	s, dir := newStore(t)

	old, fresh := newPreview(1), newPreview(1)
	for _, p := range []*mix.Preview{old, fresh} {
		_, err := s.Put(ctx, p)
		require.NoError(t, err)
	}
	// Unrelated files are left alone.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("x"), 0o644))

	past := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, old.ID+".json"), past, past))

	n, err := s.Sweep(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.Get(ctx, old.ID)
	assert.True(t, errors.Is(err, mix.ErrNotFound))
	_, err = s.Get(ctx, fresh.ID)
	assert.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "README"))
}
