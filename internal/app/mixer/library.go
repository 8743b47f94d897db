package mixer

import (
	"context"

	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/artimix/internal/app/catalog"
	"github.com/osa030/artimix/internal/domain/artist"
	"github.com/osa030/artimix/internal/domain/mix"
)

const (
	libraryPageSize = 50
	artistBatchSize = 50
	// maxLibraryPages bounds a library walk at 10k saved tracks.
	maxLibraryPages = 200
)

// Profile is the signed-in user as shown to them.
type Profile struct {
	ID          string
	DisplayName string
	ImageURL    string
}

// LikedTracks returns the user's saved tracks in library order.
func (s *Service) LikedTracks(ctx context.Context, cat catalog.Library) ([]catalog.SavedTrack, error) {
	tracks, err := savedTracks(ctx, cat)
	if err != nil {
		return nil, mix.NewUpstreamError(mix.MsgLibraryFailed, err)
	}
	return tracks, nil
}

// LikedArtists returns the distinct artists credited on the user's saved tracks,
// in first-seen order, with images filled from a batch lookup.
func (s *Service) LikedArtists(ctx context.Context, cat catalog.Library) ([]artist.Artist, error) {
	tracks, err := savedTracks(ctx, cat)
	if err != nil {
		return nil, mix.NewUpstreamError(mix.MsgArtistsFailed, err)
	}

	index := make(map[string]int)
	artists := make([]artist.Artist, 0)
	for _, t := range tracks {
		for _, a := range t.Artists {
			if a.ID == "" {
				continue
			}
			if _, ok := index[a.ID]; ok {
				continue
			}
			index[a.ID] = len(artists)
			artists = append(artists, artist.Artist{ID: a.ID, Name: a.Name})
		}
	}

	for start := 0; start < len(artists); start += artistBatchSize {
		end := min(start+artistBatchSize, len(artists))
		ids := make([]string, 0, end-start)
		for _, a := range artists[start:end] {
			ids = append(ids, a.ID)
		}
		full, err := cat.GetArtists(ctx, ids)
		if err != nil {
			return nil, mix.NewUpstreamError(mix.MsgArtistsFailed, err)
		}
		for _, a := range full {
			if i, ok := index[a.ID]; ok {
				artists[i].ImageURL = a.ImageURL
			}
		}
	}
	return artists, nil
}

// Profile returns the signed-in user's display name and image.
// The display name falls back to the user ID.
func (s *Service) Profile(ctx context.Context, cat catalog.PlaylistWriter) (*Profile, error) {
	u, err := cat.CurrentUser(ctx)
	if err != nil {
		return nil, mix.NewUpstreamError(mix.MsgProfileFailed, err)
	}
	name := u.DisplayName
	if name == "" {
		name = u.ID
	}
	return &Profile{ID: u.ID, DisplayName: name, ImageURL: u.ImageURL}, nil
}

func savedTracks(ctx context.Context, cat catalog.Library) ([]catalog.SavedTrack, error) {
	out := make([]catalog.SavedTrack, 0)
	for page := 0; page < maxLibraryPages; page++ {
		res, err := cat.GetSavedTracks(ctx, libraryPageSize, page*libraryPageSize)
		if err != nil {
			return nil, err
		}
		out = append(out, res.Items...)
		if !res.HasNext || len(res.Items) == 0 {
			return out, nil
		}
	}
	zlog.Warn().Msgf("library walk truncated: tracks=%d", len(out))
	return out, nil
}
