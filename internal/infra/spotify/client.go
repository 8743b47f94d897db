// Package spotify adapts the Spotify Web API to the catalog capability.
package spotify

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/zmb3/spotify/v2"
	"golang.org/x/time/rate"

	"github.com/osa030/artimix/internal/app/catalog"
	"github.com/osa030/artimix/internal/domain/artist"
	"github.com/osa030/artimix/internal/domain/track"
)

const (
	maxSearchLimit = 50
	maxPageLimit   = 50
	maxArtistBatch = 50
)

// Client is a Spotify API client acting for one user.
type Client struct {
	client     *spotify.Client
	market     string
	limiter    *rate.Limiter
	maxRetries int
	retryDelay time.Duration
}

// Options configures a Client.
type Options struct {
	Market string
	// Limiter is shared by every client of the process. Nil means unlimited.
	Limiter    *rate.Limiter
	MaxRetries int
	RetryDelay time.Duration
	// BaseURL overrides the API endpoint. Must end with a slash.
	BaseURL string
}

var _ catalog.Client = (*Client)(nil)

// New creates a Client over an authenticated HTTP client.
func New(httpClient *http.Client, opts Options) *Client {
	var clientOpts []spotify.ClientOption
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, spotify.WithBaseURL(opts.BaseURL))
	}

	market := opts.Market
	if market == "" {
		market = "US"
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = time.Second
	}

	return &Client{
		client:     spotify.New(httpClient, clientOpts...),
		market:     market,
		limiter:    opts.Limiter,
		maxRetries: maxRetries,
		retryDelay: retryDelay,
	}
}

// GetArtist implements catalog.ArtistFinder.
func (c *Client) GetArtist(ctx context.Context, id string) (*artist.Artist, error) {
	var result *spotify.FullArtist
	err := c.retry(ctx, func() error {
		a, err := c.client.GetArtist(ctx, spotify.ID(id))
		if err != nil {
			return err
		}
		result = a
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get artist %s", id)
	}
	a := convertArtist(result)
	return &a, nil
}

// SearchArtists implements catalog.ArtistFinder.
func (c *Client) SearchArtists(ctx context.Context, text string, mode catalog.SearchMode, limit int) ([]artist.Artist, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("search query is required")
	}
	limit = clamp(limit, 1, maxSearchLimit)

	query := "artist:" + text
	if mode == catalog.SearchExact {
		query = `artist:"` + strings.ReplaceAll(text, `"`, "") + `"`
	}

	var result *spotify.SearchResult
	err := c.retry(ctx, func() error {
		r, err := c.client.Search(ctx, query, spotify.SearchTypeArtist, spotify.Limit(limit))
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to search artists")
	}

	artists := make([]artist.Artist, 0)
	if result.Artists == nil {
		return artists, nil
	}
	for i := range result.Artists.Artists {
		artists = append(artists, convertArtist(&result.Artists.Artists[i]))
	}
	return artists, nil
}

// GetRelatedArtists implements catalog.ArtistFinder.
func (c *Client) GetRelatedArtists(ctx context.Context, id string) ([]artist.Artist, error) {
	var result []spotify.FullArtist
	err := c.retry(ctx, func() error {
		r, err := c.client.GetRelatedArtists(ctx, spotify.ID(id))
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get related artists of %s", id)
	}

	artists := make([]artist.Artist, 0, len(result))
	for i := range result {
		artists = append(artists, convertArtist(&result[i]))
	}
	return artists, nil
}

// GetArtistReleases implements catalog.TrackSource.
func (c *Client) GetArtistReleases(ctx context.Context, artistID string, kind catalog.ReleaseKind, limit, offset int) (*catalog.ReleasePage, error) {
	albumType := spotify.AlbumTypeAlbum
	if kind == catalog.ReleaseKindSingle {
		albumType = spotify.AlbumTypeSingle
	}

	var page *spotify.SimpleAlbumPage
	err := c.retry(ctx, func() error {
		p, err := c.client.GetArtistAlbums(ctx, spotify.ID(artistID), []spotify.AlbumType{albumType},
			spotify.Limit(clamp(limit, 1, maxPageLimit)),
			spotify.Offset(offset),
			spotify.Market(c.market),
		)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get %s releases of %s", kind, artistID)
	}

	releases := make([]catalog.Release, 0, len(page.Albums))
	for _, a := range page.Albums {
		releases = append(releases, catalog.Release{
			ID:       string(a.ID),
			Name:     a.Name,
			ImageURL: firstImage(a.Images),
		})
	}
	return &catalog.ReleasePage{Releases: releases, HasNext: page.Next != ""}, nil
}

// GetReleaseTracks implements catalog.TrackSource.
func (c *Client) GetReleaseTracks(ctx context.Context, releaseID string, limit int) ([]track.Track, error) {
	var page *spotify.SimpleTrackPage
	err := c.retry(ctx, func() error {
		p, err := c.client.GetAlbumTracks(ctx, spotify.ID(releaseID),
			spotify.Limit(clamp(limit, 1, maxPageLimit)),
			spotify.Market(c.market),
		)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get tracks of release %s", releaseID)
	}

	tracks := make([]track.Track, 0, len(page.Tracks))
	for i := range page.Tracks {
		tracks = append(tracks, convertSimpleTrack(&page.Tracks[i]))
	}
	return tracks, nil
}

// GetTopTracks implements catalog.TrackSource.
func (c *Client) GetTopTracks(ctx context.Context, artistID string) ([]track.Track, error) {
	var result []spotify.FullTrack
	err := c.retry(ctx, func() error {
		r, err := c.client.GetArtistsTopTracks(ctx, spotify.ID(artistID), c.market)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get top tracks of %s", artistID)
	}

	tracks := make([]track.Track, 0, len(result))
	for i := range result {
		tracks = append(tracks, convertFullTrack(&result[i]))
	}
	return tracks, nil
}

// GetSavedTracks implements catalog.Library.
func (c *Client) GetSavedTracks(ctx context.Context, limit, offset int) (*catalog.SavedTrackPage, error) {
	var page *spotify.SavedTrackPage
	err := c.retry(ctx, func() error {
		p, err := c.client.CurrentUsersTracks(ctx,
			spotify.Limit(clamp(limit, 1, maxPageLimit)),
			spotify.Offset(offset),
		)
		if err != nil {
			return err
		}
		page = p
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get saved tracks")
	}

	items := make([]catalog.SavedTrack, 0, len(page.Tracks))
	for i := range page.Tracks {
		items = append(items, convertSavedTrack(&page.Tracks[i].FullTrack))
	}
	return &catalog.SavedTrackPage{Items: items, HasNext: page.Next != ""}, nil
}

// GetArtists implements catalog.Library.
func (c *Client) GetArtists(ctx context.Context, ids []string) ([]artist.Artist, error) {
	if len(ids) == 0 {
		return []artist.Artist{}, nil
	}
	if len(ids) > maxArtistBatch {
		return nil, errors.Newf("at most %d artists per lookup, got %d", maxArtistBatch, len(ids))
	}

	spotifyIDs := make([]spotify.ID, len(ids))
	for i, id := range ids {
		spotifyIDs[i] = spotify.ID(id)
	}

	var result []*spotify.FullArtist
	err := c.retry(ctx, func() error {
		r, err := c.client.GetArtists(ctx, spotifyIDs...)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get artists")
	}

	artists := make([]artist.Artist, 0, len(result))
	for _, a := range result {
		// Unknown IDs come back as null entries.
		if a == nil || a.ID == "" {
			continue
		}
		artists = append(artists, convertArtist(a))
	}
	return artists, nil
}

// CurrentUser implements catalog.PlaylistWriter.
func (c *Client) CurrentUser(ctx context.Context) (*catalog.User, error) {
	var result *spotify.PrivateUser
	err := c.retry(ctx, func() error {
		u, err := c.client.CurrentUser(ctx)
		if err != nil {
			return err
		}
		result = u
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get current user")
	}
	return &catalog.User{
		ID:          result.ID,
		DisplayName: result.DisplayName,
		ImageURL:    firstImage(result.Images),
	}, nil
}

// CreatePlaylist implements catalog.PlaylistWriter.
func (c *Client) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*catalog.Playlist, error) {
	var playlist *spotify.FullPlaylist
	err := c.retry(ctx, func() error {
		p, err := c.client.CreatePlaylistForUser(ctx, userID, name, description, public, false)
		if err != nil {
			return err
		}
		playlist = p
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create playlist")
	}

	url := playlist.ExternalURLs["spotify"]
	if url == "" {
		url = PlaylistURL(string(playlist.ID))
	}
	return &catalog.Playlist{ID: string(playlist.ID), URL: url}, nil
}

// AddTracksToPlaylist implements catalog.PlaylistWriter.
// uris may be Spotify track URIs, URLs or IDs. Batches above the API limit are split.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error {
	ids := make([]spotify.ID, len(uris))
	for i, uri := range uris {
		ids[i] = spotify.ID(extractTrackID(uri))
	}

	for i := 0; i < len(ids); i += catalog.MaxAddBatch {
		end := min(i+catalog.MaxAddBatch, len(ids))
		batch := ids[i:end]

		err := c.retry(ctx, func() error {
			_, err := c.client.AddTracksToPlaylist(ctx, spotify.ID(playlistID), batch...)
			return err
		})
		if err != nil {
			return errors.Wrap(err, "failed to add tracks to playlist")
		}
	}
	return nil
}

// PlaylistURL returns the Spotify URL for a playlist.
func PlaylistURL(playlistID string) string {
	return "https://open.spotify.com/playlist/" + playlistID
}

// retry runs fn under the shared rate limit, retrying rate limits and server
// errors with linear backoff. A retryable error that outlives the retries is
// marked catalog.ErrTransient.
func (c *Client) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return errors.Mark(errors.Wrap(err, "rate limiter"), catalog.ErrTransient)
			}
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !isRetryable(err) {
			return err
		}

		if i < c.maxRetries-1 {
			select {
			case <-ctx.Done():
				return errors.Mark(errors.Wrap(lastErr, "retry aborted"), catalog.ErrTransient)
			case <-time.After(c.retryDelay * time.Duration(i+1)):
			}
		}
	}
	return errors.Mark(errors.Wrap(lastErr, "max retries exceeded"), catalog.ErrTransient)
}

// isRetryable checks if an error is retryable.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= http.StatusInternalServerError
	}
	// Rate limit errors and server errors are retryable
	errStr := err.Error()
	return strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "502") ||
		strings.Contains(errStr, "503") ||
		strings.Contains(errStr, "504")
}

// extractTrackID extracts the track ID from a Spotify track URL or URI.
func extractTrackID(input string) string {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "spotify:track:") {
		return strings.TrimPrefix(input, "spotify:track:")
	}

	// https://open.spotify.com/track/ID or https://open.spotify.com/intl-XX/track/ID
	if strings.Contains(input, "open.spotify.com") && strings.Contains(input, "/track/") {
		parts := strings.Split(input, "/track/")
		id := strings.Split(parts[len(parts)-1], "?")[0]
		return strings.TrimRight(id, "/")
	}

	return input
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
