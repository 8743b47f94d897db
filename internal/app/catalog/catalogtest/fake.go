// Package catalogtest provides an in-memory catalog.Client for tests.
package catalogtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"

	"github.com/osa030/artimix/internal/app/catalog"
	"github.com/osa030/artimix/internal/domain/artist"
	"github.com/osa030/artimix/internal/domain/track"
)

// ErrNotFound is returned for unknown IDs.
var ErrNotFound = errors.New("404 not found")

// SearchCall records one SearchArtists invocation.
type SearchCall struct {
	Text  string
	Mode  catalog.SearchMode
	Limit int
}

// CreatedPlaylist records a playlist created through the fake.
type CreatedPlaylist struct {
	catalog.Playlist
	UserID      string
	Name        string
	Description string
	Public      bool
	Tracks      []string
	AddCalls    int
}

// Fake is a canned catalog. Fields may be set directly before use.
type Fake struct {
	mu sync.Mutex

	Artists       map[string]artist.Artist
	Related       map[string][]artist.Artist
	SearchResults map[string][]artist.Artist // keyed by search text
	Releases      map[string]map[catalog.ReleaseKind][]catalog.Release
	ReleaseTracks map[string][]track.Track
	TopTracks     map[string][]track.Track
	Saved         []catalog.SavedTrack
	User          *catalog.User

	// Errors forces a method, by name, to fail.
	Errors map[string]error
	// MaxAddBatch fails AddTracksToPlaylist when a call carries more URIs.
	MaxAddBatch int

	SearchCalls []SearchCall
	Calls       map[string]int
	Playlists   []*CreatedPlaylist
}

// NewFake returns an empty Fake with a default user.
func NewFake() *Fake {
	return &Fake{
		Artists:       make(map[string]artist.Artist),
		Related:       make(map[string][]artist.Artist),
		SearchResults: make(map[string][]artist.Artist),
		Releases:      make(map[string]map[catalog.ReleaseKind][]catalog.Release),
		ReleaseTracks: make(map[string][]track.Track),
		TopTracks:     make(map[string][]track.Track),
		User:          &catalog.User{ID: "user-1", DisplayName: "Test User"},
		Errors:        make(map[string]error),
		MaxAddBatch:   100,
		Calls:         make(map[string]int),
	}
}

var _ catalog.Client = (*Fake)(nil)

// AddArtist registers a with the fake and makes it searchable by its name.
func (f *Fake) AddArtist(a artist.Artist) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Artists[a.ID] = a
	f.SearchResults[a.Name] = append(f.SearchResults[a.Name], a)
}

// AddCatalog gives artistID albums with tracksPerAlbum distinct tracks each.
// Track URIs are "spotify:track:<artistID>-<album>-<n>".
func (f *Fake) AddCatalog(artistID string, albums, tracksPerAlbum int) []track.Track {
	f.mu.Lock()
	defer f.mu.Unlock()

	var all []track.Track
	kinds := f.Releases[artistID]
	if kinds == nil {
		kinds = make(map[catalog.ReleaseKind][]catalog.Release)
		f.Releases[artistID] = kinds
	}
	name := f.Artists[artistID].Name
	for a := 0; a < albums; a++ {
		releaseID := fmt.Sprintf("%s-album-%d", artistID, a)
		kinds[catalog.ReleaseKindAlbum] = append(kinds[catalog.ReleaseKindAlbum], catalog.Release{
			ID:       releaseID,
			Name:     fmt.Sprintf("Album %d", a),
			ImageURL: "https://i.scdn.co/image/" + releaseID,
		})
		for n := 0; n < tracksPerAlbum; n++ {
			t := track.Track{
				URI:     fmt.Sprintf("spotify:track:%s-%d-%d", artistID, a, n),
				Name:    fmt.Sprintf("Track %d-%d", a, n),
				Artists: []string{name},
			}
			f.ReleaseTracks[releaseID] = append(f.ReleaseTracks[releaseID], t)
			all = append(all, t)
		}
	}
	return all
}

func (f *Fake) record(method string) error {
	f.Calls[method]++
	return f.Errors[method]
}

// CallCount returns how many times method was invoked.
func (f *Fake) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[method]
}

// GetArtist implements catalog.ArtistFinder.
func (f *Fake) GetArtist(ctx context.Context, id string) (*artist.Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetArtist"); err != nil {
		return nil, err
	}
	a, ok := f.Artists[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

// SearchArtists implements catalog.ArtistFinder.
func (f *Fake) SearchArtists(ctx context.Context, text string, mode catalog.SearchMode, limit int) ([]artist.Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.SearchCalls = append(f.SearchCalls, SearchCall{Text: text, Mode: mode, Limit: limit})
	if err := f.record("SearchArtists"); err != nil {
		return nil, err
	}
	results := f.SearchResults[text]
	if len(results) > limit {
		results = results[:limit]
	}
	return append([]artist.Artist(nil), results...), nil
}

// GetRelatedArtists implements catalog.ArtistFinder.
func (f *Fake) GetRelatedArtists(ctx context.Context, id string) ([]artist.Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetRelatedArtists"); err != nil {
		return nil, err
	}
	return append([]artist.Artist(nil), f.Related[id]...), nil
}

// GetArtistReleases implements catalog.TrackSource.
func (f *Fake) GetArtistReleases(ctx context.Context, artistID string, kind catalog.ReleaseKind, limit, offset int) (*catalog.ReleasePage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetArtistReleases"); err != nil {
		return nil, err
	}
	all := f.Releases[artistID][kind]
	if offset >= len(all) {
		return &catalog.ReleasePage{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return &catalog.ReleasePage{
		Releases: append([]catalog.Release(nil), all[offset:end]...),
		HasNext:  end < len(all),
	}, nil
}

// GetReleaseTracks implements catalog.TrackSource.
func (f *Fake) GetReleaseTracks(ctx context.Context, releaseID string, limit int) ([]track.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetReleaseTracks"); err != nil {
		return nil, err
	}
	tracks := f.ReleaseTracks[releaseID]
	if len(tracks) > limit {
		tracks = tracks[:limit]
	}
	return append([]track.Track(nil), tracks...), nil
}

// GetTopTracks implements catalog.TrackSource.
func (f *Fake) GetTopTracks(ctx context.Context, artistID string) ([]track.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetTopTracks"); err != nil {
		return nil, err
	}
	return append([]track.Track(nil), f.TopTracks[artistID]...), nil
}

// GetSavedTracks implements catalog.Library.
func (f *Fake) GetSavedTracks(ctx context.Context, limit, offset int) (*catalog.SavedTrackPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetSavedTracks"); err != nil {
		return nil, err
	}
	if offset >= len(f.Saved) {
		return &catalog.SavedTrackPage{}, nil
	}
	end := offset + limit
	if end > len(f.Saved) {
		end = len(f.Saved)
	}
	return &catalog.SavedTrackPage{
		Items:   append([]catalog.SavedTrack(nil), f.Saved[offset:end]...),
		HasNext: end < len(f.Saved),
	}, nil
}

// GetArtists implements catalog.Library.
func (f *Fake) GetArtists(ctx context.Context, ids []string) ([]artist.Artist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetArtists"); err != nil {
		return nil, err
	}
	if len(ids) > 50 {
		return nil, errors.Newf("too many ids: %d", len(ids))
	}
	var out []artist.Artist
	for _, id := range ids {
		if a, ok := f.Artists[id]; ok {
			out = append(out, a)
		}
	}
	return out, nil
}

// CurrentUser implements catalog.PlaylistWriter.
func (f *Fake) CurrentUser(ctx context.Context) (*catalog.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CurrentUser"); err != nil {
		return nil, err
	}
	u := *f.User
	return &u, nil
}

// CreatePlaylist implements catalog.PlaylistWriter.
func (f *Fake) CreatePlaylist(ctx context.Context, userID, name, description string, public bool) (*catalog.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreatePlaylist"); err != nil {
		return nil, err
	}
	id := fmt.Sprintf("playlist-%d", len(f.Playlists)+1)
	p := &CreatedPlaylist{
		Playlist:    catalog.Playlist{ID: id, URL: "https://open.spotify.com/playlist/" + id},
		UserID:      userID,
		Name:        name,
		Description: description,
		Public:      public,
	}
	f.Playlists = append(f.Playlists, p)
	out := p.Playlist
	return &out, nil
}

// AddTracksToPlaylist implements catalog.PlaylistWriter.
// It behaves like a single remote call: callers must chunk.
func (f *Fake) AddTracksToPlaylist(ctx context.Context, playlistID string, uris []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("AddTracksToPlaylist"); err != nil {
		return err
	}
	if f.MaxAddBatch > 0 && len(uris) > f.MaxAddBatch {
		return errors.Newf("400 too many tracks in one request: %d", len(uris))
	}
	for _, p := range f.Playlists {
		if p.ID == playlistID {
			p.Tracks = append(p.Tracks, uris...)
			p.AddCalls++
			return nil
		}
	}
	return ErrNotFound
}
