// Package sampler gathers a bounded, de-duplicated sample of an artist's tracks.
package sampler

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/artimix/internal/app/catalog"
	"github.com/osa030/artimix/internal/app/shuffle"
	"github.com/osa030/artimix/internal/domain/track"
)

// Options bounds a single artist sample.
type Options struct {
	// MaxReleasesScanned caps both the releases enumerated per kind and the releases scanned for tracks.
	MaxReleasesScanned int `yaml:"max_releases" default:"10" validate:"min=1"`
	MaxTracks          int `yaml:"max_tracks" default:"150" validate:"min=1"`
	// PageSize is the page size for release and release-track listings.
	PageSize int `yaml:"page_size" default:"50" validate:"min=1,max=50"`
}

// DefaultOptions returns the standard sampling bounds.
func DefaultOptions() Options {
	return Options{MaxReleasesScanned: 10, MaxTracks: 150, PageSize: 50}
}

var releaseKinds = []catalog.ReleaseKind{catalog.ReleaseKindAlbum, catalog.ReleaseKindSingle}

// Sampler samples artist catalogs.
type Sampler struct {
	opts Options
	rng  shuffle.Rand
}

// New creates a Sampler. Zero option fields take the default bounds.
func New(opts Options, rng shuffle.Rand) *Sampler {
	def := DefaultOptions()
	if opts.MaxReleasesScanned <= 0 {
		opts.MaxReleasesScanned = def.MaxReleasesScanned
	}
	if opts.MaxTracks <= 0 {
		opts.MaxTracks = def.MaxTracks
	}
	if opts.PageSize <= 0 {
		opts.PageSize = def.PageSize
	}
	return &Sampler{opts: opts, rng: rng}
}

// Sample returns up to MaxTracks distinct tracks of artistID.
//
// Releases are scanned in random order so truncation does not favour the
// catalog's listing order. Top tracks fill any remaining room. A failed fetch
// ends the scan and the tracks gathered so far are returned.
func (s *Sampler) Sample(ctx context.Context, cat catalog.TrackSource, artistID string) []track.Track {
	acc := newAccumulator(s.opts.MaxTracks)

	releases, err := s.listReleases(ctx, cat, artistID)
	if err != nil {
		zlog.Debug().Msgf("release enumeration failed: artist=%s releases=%d error=%v", artistID, len(releases), err)
		return acc.tracks
	}
	shuffle.InPlace(s.rng, releases)

	for i, rel := range releases {
		if i >= s.opts.MaxReleasesScanned || acc.full() {
			break
		}
		tracks, err := cat.GetReleaseTracks(ctx, rel.ID, s.opts.PageSize)
		if err != nil {
			zlog.Debug().Msgf("release tracks fetch failed: artist=%s release=%s collected=%d error=%v",
				artistID, rel.ID, len(acc.tracks), err)
			return acc.tracks
		}
		for _, t := range tracks {
			t.ImageURL = rel.ImageURL
			if !acc.add(t) {
				break
			}
		}
	}

	if !acc.full() {
		top, err := cat.GetTopTracks(ctx, artistID)
		if err != nil {
			zlog.Debug().Msgf("top tracks fetch failed: artist=%s collected=%d error=%v", artistID, len(acc.tracks), err)
			return acc.tracks
		}
		for _, t := range top {
			if !acc.add(t) {
				break
			}
		}
	}

	zlog.Debug().Msgf("sampled artist: artist=%s releases=%d tracks=%d", artistID, len(releases), len(acc.tracks))
	return acc.tracks
}

// listReleases pages through albums then singles, up to MaxReleasesScanned per
// kind, and returns them de-duplicated by release ID in listing order.
// On error the releases listed so far are returned alongside it.
func (s *Sampler) listReleases(ctx context.Context, cat catalog.TrackSource, artistID string) ([]catalog.Release, error) {
	seen := make(map[string]bool)
	var out []catalog.Release

	for _, kind := range releaseKinds {
		fetched := 0
		for fetched < s.opts.MaxReleasesScanned {
			limit := min(s.opts.PageSize, s.opts.MaxReleasesScanned-fetched)
			page, err := cat.GetArtistReleases(ctx, artistID, kind, limit, fetched)
			if err != nil {
				return out, err
			}
			if page == nil || len(page.Releases) == 0 {
				break
			}
			for _, r := range page.Releases {
				if r.ID == "" || seen[r.ID] {
					continue
				}
				seen[r.ID] = true
				out = append(out, r)
			}
			fetched += len(page.Releases)
			if !page.HasNext {
				break
			}
		}
	}
	return out, nil
}

// accumulator collects distinct tracks up to a cap.
type accumulator struct {
	limit  int
	seen   *track.Set
	tracks []track.Track
}

func newAccumulator(limit int) *accumulator {
	return &accumulator{limit: limit, seen: track.NewSet(), tracks: make([]track.Track, 0)}
}

func (a *accumulator) full() bool {
	return len(a.tracks) >= a.limit
}

// add appends t unless its URI was seen. It reports false once the cap is reached.
func (a *accumulator) add(t track.Track) bool {
	if a.full() {
		return false
	}
	if t.URI != "" && a.seen.Add(t.URI) {
		a.tracks = append(a.tracks, t)
	}
	return !a.full()
}
