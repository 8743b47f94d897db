// Package catalog defines the music catalog capability consumed by the mix pipeline.
//
// A Client is an authenticated, per-request handle. Core operations receive it
// as an explicit argument; the API layer carries it in the request context.
package catalog

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/osa030/artimix/internal/domain/artist"
	"github.com/osa030/artimix/internal/domain/track"
)

// MaxAddBatch is the largest number of track references one append call may carry.
const MaxAddBatch = 100

// ErrTransient marks a failure that may succeed if retried later,
// such as a rate limit or an upstream 5xx that outlived the adapter's own retries.
var ErrTransient = errors.New("transient catalog failure")

// IsTransient reports whether err is marked ErrTransient.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// ReleaseKind is the kind of release enumerated for an artist.
type ReleaseKind string

const (
	ReleaseKindAlbum  ReleaseKind = "album"
	ReleaseKindSingle ReleaseKind = "single"
)

// SearchMode selects how the artist search query is issued.
type SearchMode int

const (
	// SearchLoose matches the text anywhere in the artist field.
	SearchLoose SearchMode = iota
	// SearchExact issues a quoted-phrase search.
	SearchExact
)

// Release is an album or single.
type Release struct {
	ID       string
	Name     string
	ImageURL string
}

// ReleasePage is one page of an artist's releases.
type ReleasePage struct {
	Releases []Release
	HasNext  bool
}

// SavedTrack is an entry in the user's library.
type SavedTrack struct {
	ID      string
	Album   string
	Track   track.Track
	Artists []artist.Artist // Credited artists (ID and Name only)
}

// SavedTrackPage is one page of the user's library.
type SavedTrackPage struct {
	Items   []SavedTrack
	HasNext bool
}

// User is the authenticated user's profile.
type User struct {
	ID          string
	DisplayName string
	ImageURL    string
}

// Playlist is a playlist created on the remote account.
type Playlist struct {
	ID  string
	URL string
}

// ArtistFinder looks artists up by ID or text.
type ArtistFinder interface {
	GetArtist(ctx context.Context, id string) (*artist.Artist, error)
	SearchArtists(ctx context.Context, text string, mode SearchMode, limit int) ([]artist.Artist, error)
	GetRelatedArtists(ctx context.Context, id string) ([]artist.Artist, error)
}

// TrackSource enumerates an artist's tracks.
type TrackSource interface {
	GetArtistReleases(ctx context.Context, artistID string, kind ReleaseKind, limit, offset int) (*ReleasePage, error)
	GetReleaseTracks(ctx context.Context, releaseID string, limit int) ([]track.Track, error)
	GetTopTracks(ctx context.Context, artistID string) ([]track.Track, error)
}

// Library reads the user's saved content.
type Library interface {
	GetSavedTracks(ctx context.Context, limit, offset int) (*SavedTrackPage, error)
	// GetArtists looks up to 50 artists in one call. Unknown IDs are omitted.
	GetArtists(ctx context.Context, ids []string) ([]artist.Artist, error)
}

// PlaylistWriter creates and fills playlists on the user's account.
type PlaylistWriter interface {
	CurrentUser(ctx context.Context) (*User, error)
	CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*Playlist, error)
	// AddTracksToPlaylist appends uris in order. Callers send at most MaxAddBatch per call.
	AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error
}

// Client is the full catalog capability.
type Client interface {
	ArtistFinder
	TrackSource
	Library
	PlaylistWriter
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying c.
func NewContext(ctx context.Context, c Client) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the Client carried by ctx, if any.
func FromContext(ctx context.Context) (Client, bool) {
	c, ok := ctx.Value(contextKey{}).(Client)
	return c, ok && c != nil
}
