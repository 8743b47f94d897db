// Package synth combines weighted per-artist samples into a single mix preview.
package synth

import (
	"context"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/osa030/artimix/internal/app/catalog"
	"github.com/osa030/artimix/internal/app/shuffle"
	"github.com/osa030/artimix/internal/domain/artist"
	"github.com/osa030/artimix/internal/domain/mix"
	"github.com/osa030/artimix/internal/domain/track"
)

// Sampler produces the candidate tracks for one artist.
type Sampler interface {
	Sample(ctx context.Context, cat catalog.TrackSource, artistID string) []track.Track
}

// Resolved is an artist row that resolved to a catalog artist.
type Resolved struct {
	Artist        artist.Artist
	WeightPercent int
}

// Synthesizer builds mixes.
type Synthesizer struct {
	sampler     Sampler
	rng         shuffle.Rand
	concurrency int
	display     int
	newID       func() string
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithConcurrency bounds the number of artists sampled at once. n <= 0 means unbounded.
func WithConcurrency(n int) Option {
	return func(s *Synthesizer) { s.concurrency = n }
}

// WithDisplaySample sets how many tracks the preview keeps for review, up to mix.MaxDisplaySample.
func WithDisplaySample(n int) Option {
	return func(s *Synthesizer) {
		if n > 0 && n <= mix.MaxDisplaySample {
			s.display = n
		}
	}
}

// WithIDGenerator replaces the preview ID source.
func WithIDGenerator(fn func() string) Option {
	return func(s *Synthesizer) { s.newID = fn }
}

// New creates a Synthesizer.
func New(sampler Sampler, rng shuffle.Rand, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		sampler:     sampler,
		rng:         rng,
		concurrency: 4,
		display:     mix.MaxDisplaySample,
		newID:       func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Count returns how many of available tracks a weight draws.
// It is floor(available*weight/100), raised to 1 for any positive weight, and never more than available.
func Count(available, weightPercent int) int {
	if available <= 0 || weightPercent <= 0 {
		return 0
	}
	k := available * weightPercent / 100
	if k == 0 {
		k = 1
	}
	return min(k, available)
}

// Synthesize samples every artist, draws by weight, merges and shuffles.
// It fails with mix.ErrNoTracks when the merged result is empty.
func (s *Synthesizer) Synthesize(ctx context.Context, cat catalog.TrackSource, requests []Resolved, playlistName string) (*mix.Preview, error) {
	samples := make([][]track.Track, len(requests))

	g, gctx := errgroup.WithContext(ctx)
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i, req := range requests {
		g.Go(func() error {
			samples[i] = s.sampler.Sample(gctx, cat, req.Artist.ID)
			return nil
		})
	}
	// Sampling absorbs its own failures; Wait is the join barrier.
	_ = g.Wait()

	seen := track.NewSet()
	merged := make([]track.Track, 0)
	contributions := make([]mix.Contribution, len(requests))

	for i, req := range requests {
		k := Count(len(samples[i]), req.WeightPercent)
		drawn := shuffle.Sample(s.rng, samples[i], k)
		for _, t := range drawn {
			if seen.Add(t.URI) {
				merged = append(merged, t)
			}
		}
		contributions[i] = mix.Contribution{
			Name:                   req.Artist.Name,
			ImageURL:               req.Artist.ImageURL,
			TracksContributed:      k,
			RequestedWeightPercent: req.WeightPercent,
		}
		zlog.Debug().Msgf("artist draw: artist=%s weight=%d sampled=%d drawn=%d",
			req.Artist.ID, req.WeightPercent, len(samples[i]), k)
	}

	if len(merged) == 0 {
		return nil, mix.NewNoTracksError()
	}
	shuffle.InPlace(s.rng, merged)

	p := mix.NewPreview(s.newID(), playlistName, merged, contributions)
	if len(p.DisplaySample) > s.display {
		p.DisplaySample = p.DisplaySample[:s.display]
	}
	zlog.Info().Msgf("mix synthesized: id=%s artists=%d tracks=%d", p.ID, len(requests), p.TotalTrackCount)
	return p, nil
}
