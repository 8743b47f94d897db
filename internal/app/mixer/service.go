// Package mixer orchestrates artist resolution, mix synthesis, preview storage
// and playlist commit for a single request.
package mixer

import (
	"context"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/artimix/internal/app/catalog"
	"github.com/osa030/artimix/internal/app/preview"
	"github.com/osa030/artimix/internal/app/resolver"
	"github.com/osa030/artimix/internal/app/synth"
	"github.com/osa030/artimix/internal/domain/mix"
)

// Config holds playlist and commit policy.
type Config struct {
	DefaultPlaylistName      string
	Description              string
	Public                   bool
	RetainOnTransientFailure bool
}

// CommitResult describes a playlist created from a preview.
type CommitResult struct {
	Playlist     catalog.Playlist
	PlaylistName string
	TrackCount   int
}

// Service is the mix pipeline entry point. Every operation that talks to the
// catalog takes the caller's authenticated client explicitly.
type Service struct {
	resolver *resolver.Resolver
	synth    *synth.Synthesizer
	store    preview.Store
	cfg      Config

	mu      sync.Mutex
	claimed map[string]struct{} // handles with a commit in flight
}

// NewService creates a new Service.
func NewService(res *resolver.Resolver, syn *synth.Synthesizer, store preview.Store, cfg Config) *Service {
	if cfg.DefaultPlaylistName == "" {
		cfg.DefaultPlaylistName = "My Artimix Playlist"
	}
	return &Service{
		resolver: res,
		synth:    syn,
		store:    store,
		cfg:      cfg,
		claimed:  make(map[string]struct{}),
	}
}

// Suggest returns ranked artist suggestions for free-form input.
func (s *Service) Suggest(ctx context.Context, cat catalog.ArtistFinder, query string) ([]resolver.Suggestion, error) {
	suggestions, err := s.resolver.Resolve(ctx, cat, query)
	if err != nil {
		zlog.Warn().Msgf("suggestion failed: query=%q error=%v", query, err)
		return nil, errors.WithHint(err, mix.MsgSuggestFailed)
	}
	return suggestions, nil
}

// Generate resolves the requested artists, synthesizes a mix and stores it as a preview.
// Rows that do not resolve are dropped; the request fails only if none resolve.
func (s *Service) Generate(ctx context.Context, cat catalog.Client, playlistName string, requests []mix.Request) (*mix.Preview, error) {
	if len(requests) == 0 {
		return nil, mix.NewValidationError(mix.MsgNoArtists)
	}

	playlistName = strings.TrimSpace(playlistName)
	if playlistName == "" {
		playlistName = s.cfg.DefaultPlaylistName
	}

	resolved := make([]synth.Resolved, 0, len(requests))
	for _, req := range requests {
		a, ok := s.resolver.ResolveOne(ctx, cat, req)
		if !ok {
			zlog.Info().Msgf("artist row dropped: query=%q confirmed_id=%s", req.QueryName, req.ConfirmedID)
			continue
		}
		if a.Name == "" {
			a.Name = req.QueryName
		}
		resolved = append(resolved, synth.Resolved{Artist: *a, WeightPercent: req.WeightPercent})
	}
	if len(resolved) == 0 {
		return nil, mix.NewValidationError(mix.MsgUnresolved)
	}

	p, err := s.synth.Synthesize(ctx, cat, resolved, playlistName)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Put(ctx, p); err != nil {
		return nil, errors.Wrap(err, "failed to store preview")
	}
	zlog.Info().Msgf("preview generated: id=%s name=%q tracks=%d rows=%d resolved=%d",
		p.ID, p.PlaylistName, p.TotalTrackCount, len(requests), len(resolved))
	return p, nil
}

// Preview returns a stored preview without consuming it.
func (s *Service) Preview(ctx context.Context, handle string) (*mix.Preview, error) {
	return s.load(ctx, handle)
}

// load reads a preview, deleting and reporting as not found any corrupt record.
func (s *Service) load(ctx context.Context, handle string) (*mix.Preview, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, mix.NewValidationError(mix.MsgMissingHandle)
	}

	p, err := s.store.Get(ctx, handle)
	if err == nil {
		return p, nil
	}
	if errors.Is(err, mix.ErrCorrupt) {
		zlog.Warn().Msgf("corrupt preview removed: id=%s error=%v", handle, err)
		if derr := s.store.Delete(ctx, handle); derr != nil {
			zlog.Warn().Msgf("failed to delete corrupt preview: id=%s error=%v", handle, derr)
		}
		return nil, mix.NewNotFoundError(handle)
	}
	return nil, err
}

// Commit creates a playlist from the preview and consumes the preview.
//
// A handle can be committed at most once: a concurrent or later commit of the
// same handle observes not found. On failure the preview is deleted unless
// RetainOnTransientFailure is set, the failure is transient and no remote
// playlist was created yet.
func (s *Service) Commit(ctx context.Context, cat catalog.PlaylistWriter, handle string) (*CommitResult, error) {
	handle = strings.TrimSpace(handle)
	if !s.claim(handle) {
		zlog.Info().Msgf("commit already in progress: id=%s", handle)
		return nil, mix.NewNotFoundError(handle)
	}
	defer s.release(handle)

	p, err := s.load(ctx, handle)
	if err != nil {
		return nil, err
	}

	playlist, err := s.publish(ctx, cat, p)
	if err != nil {
		// A retry after a partial append would create a second playlist.
		retain := s.cfg.RetainOnTransientFailure && catalog.IsTransient(err) && playlist == nil
		zlog.Error().Msgf("commit failed: id=%s retain=%v error=%v", handle, retain, err)
		if !retain {
			s.discard(ctx, handle)
		}
		return nil, mix.NewCommitError(mix.MsgCommitPrefix, err)
	}

	s.discard(ctx, handle)
	zlog.Info().Msgf("playlist committed: id=%s playlist=%s tracks=%d", handle, playlist.ID, len(p.TrackURIs))
	return &CommitResult{Playlist: *playlist, PlaylistName: p.PlaylistName, TrackCount: len(p.TrackURIs)}, nil
}

// publish creates the remote playlist and appends the tracks in batches.
// When an append fails the created playlist is returned with the error.
func (s *Service) publish(ctx context.Context, cat catalog.PlaylistWriter, p *mix.Preview) (*catalog.Playlist, error) {
	user, err := cat.CurrentUser(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get current user")
	}

	playlist, err := cat.CreatePlaylist(ctx, user.ID, p.PlaylistName, s.cfg.Description, s.cfg.Public)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create playlist")
	}

	for start := 0; start < len(p.TrackURIs); start += catalog.MaxAddBatch {
		end := min(start+catalog.MaxAddBatch, len(p.TrackURIs))
		if err := cat.AddTracksToPlaylist(ctx, playlist.ID, p.TrackURIs[start:end]); err != nil {
			return playlist, errors.Wrapf(err, "failed to add tracks %d-%d to playlist %s", start, end, playlist.ID)
		}
	}
	return playlist, nil
}

func (s *Service) discard(ctx context.Context, handle string) {
	if err := s.store.Delete(ctx, handle); err != nil {
		zlog.Warn().Msgf("failed to delete preview: id=%s error=%v", handle, err)
	}
}

func (s *Service) claim(handle string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.claimed[handle]; busy {
		return false
	}
	s.claimed[handle] = struct{}{}
	return true
}

func (s *Service) release(handle string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.claimed, handle)
}
