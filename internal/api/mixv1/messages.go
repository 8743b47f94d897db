// Package mixv1 defines the artimix.v1.MixService wire messages and the
// handler and client bindings for connect.
package mixv1

// Artist is a catalog artist.
type Artist struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url,omitempty"`
}

// Suggestion is a ranked artist suggestion.
type Suggestion struct {
	Artist
	// Related is set when the entry was padded in from related artists.
	Related bool `json:"related,omitempty"`
}

// Track is a track as shown for review.
type Track struct {
	URI      string   `json:"uri"`
	Name     string   `json:"name"`
	Artists  []string `json:"artists"`
	ImageURL string   `json:"image_url,omitempty"`
}

// Contribution is one artist row's share of a mix.
type Contribution struct {
	Name                   string `json:"name"`
	ImageURL               string `json:"image_url,omitempty"`
	Count                  int    `json:"count"`
	RequestedWeightPercent int    `json:"requested_percentage"`
}

// Preview is a generated mix awaiting commit.
type Preview struct {
	ID                  string         `json:"id"`
	PlaylistName        string         `json:"playlist_name"`
	TotalTracks         int            `json:"total_songs_in_playlist"`
	Contributions       []Contribution `json:"artist_contributions"`
	TracksForDisplay    []Track        `json:"tracks_for_preview_display"`
	DisplayedTrackCount int            `json:"displayed_track_count"`
}

// SuggestArtistsRequest carries free-form artist input: a name, a quoted name or an artist URL.
type SuggestArtistsRequest struct {
	Query string `json:"query"`
}

// SuggestArtistsResponse lists up to five ranked suggestions.
type SuggestArtistsResponse struct {
	Suggestions []Suggestion `json:"suggestions"`
}

// ArtistRow is one artist row as typed by the user.
// Weight is kept as text so malformed input is reported like the form does.
type ArtistRow struct {
	Query    string `json:"query"`
	ArtistID string `json:"artist_id,omitempty"`
	Weight   string `json:"weight"`
}

// GeneratePreviewRequest asks for a new mix from weighted artist rows.
type GeneratePreviewRequest struct {
	PlaylistName string      `json:"playlist_name"`
	Artists      []ArtistRow `json:"artists"`
}

// GeneratePreviewResponse returns the stored preview.
type GeneratePreviewResponse struct {
	Preview Preview `json:"preview"`
}

// GetPreviewRequest addresses a stored preview by ID.
type GetPreviewRequest struct {
	ID string `json:"id"`
}

// GetPreviewResponse returns the stored preview unchanged.
type GetPreviewResponse struct {
	Preview Preview `json:"preview"`
}

// CommitPreviewRequest turns a preview into a playlist. The preview is consumed.
type CommitPreviewRequest struct {
	ID string `json:"id"`
}

// CommitPreviewResponse describes the created playlist.
type CommitPreviewResponse struct {
	PlaylistID   string `json:"playlist_id"`
	PlaylistURL  string `json:"playlist_url"`
	PlaylistName string `json:"playlist_name"`
	TrackCount   int    `json:"track_count"`
}

// ListLikedTracksRequest lists the caller's saved tracks.
type ListLikedTracksRequest struct{}

// LikedTrack is a saved track in the user's library.
type LikedTrack struct {
	ID       string   `json:"id"`
	URI      string   `json:"uri"`
	Name     string   `json:"name"`
	Artists  []string `json:"artists"`
	Album    string   `json:"album"`
	ImageURL string   `json:"image_url,omitempty"`
}

// ListLikedTracksResponse holds saved tracks in library order.
type ListLikedTracksResponse struct {
	Tracks []LikedTrack `json:"tracks"`
}

// ListLikedArtistsRequest lists artists credited on the caller's saved tracks.
type ListLikedArtistsRequest struct{}

// ListLikedArtistsResponse holds distinct artists in first-seen order.
type ListLikedArtistsResponse struct {
	Artists []Artist `json:"artists"`
}

// GetProfileRequest fetches the signed-in user.
type GetProfileRequest struct{}

// GetProfileResponse is the signed-in user as shown to them.
type GetProfileResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ImageURL    string `json:"image_url,omitempty"`
}
