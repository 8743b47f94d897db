// Package track provides the Track domain entity.
package track

import "strings"

// Track represents a sampled Spotify track.
// Contains only the information needed to build and review a mix.
type Track struct {
	URI      string   `json:"uri" validate:"required"` // Spotify track URI, the dedup key
	Name     string   `json:"name"`                    // Track name
	Artists  []string `json:"artists"`                 // Artist names in credit order
	ImageURL string   `json:"image_url"`               // Cover art of the release it was sampled from (optional)
}

// ArtistsString returns the artist names joined for display.
func (t *Track) ArtistsString() string {
	return strings.Join(t.Artists, ", ")
}

// URIs returns the URIs of the given tracks, preserving order.
func URIs(tracks []Track) []string {
	uris := make([]string, len(tracks))
	for i, t := range tracks {
		uris[i] = t.URI
	}
	return uris
}

// Set tracks seen URIs while building a deduplicated track list.
type Set struct {
	seen map[string]struct{}
}

// NewSet creates an empty Set.
func NewSet() *Set {
	return &Set{seen: make(map[string]struct{})}
}

// Add records the URI and reports whether it was not seen before.
func (s *Set) Add(uri string) bool {
	if _, ok := s.seen[uri]; ok {
		return false
	}
	s.seen[uri] = struct{}{}
	return true
}

// Len returns the number of distinct URIs recorded.
func (s *Set) Len() int {
	return len(s.seen)
}
