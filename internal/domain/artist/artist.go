// Package artist provides the Artist domain entity.
package artist

// Artist is a canonical catalog identity for an artist.
type Artist struct {
	ID       string `json:"id"`        // Spotify Artist ID
	Name     string `json:"name"`      // Display name as returned by the catalog
	ImageURL string `json:"image_url"` // Widest artist image (optional)
}

// List accumulates artists in rank order, dropping repeated IDs.
type List struct {
	items []Artist
	seen  map[string]struct{}
	limit int
}

// NewList creates a List capped at limit entries.
func NewList(limit int) *List {
	return &List{
		items: make([]Artist, 0, limit),
		seen:  make(map[string]struct{}),
		limit: limit,
	}
}

// Add appends a when it has an ID, is not already present and the list is not full.
// It reports whether a was added.
func (l *List) Add(a Artist) bool {
	if a.ID == "" || l.Full() {
		return false
	}
	if _, ok := l.seen[a.ID]; ok {
		return false
	}
	l.seen[a.ID] = struct{}{}
	l.items = append(l.items, a)
	return true
}

// Full reports whether the list reached its limit.
func (l *List) Full() bool {
	return len(l.items) >= l.limit
}

// Items returns the accumulated artists.
func (l *List) Items() []Artist {
	return l.items
}
