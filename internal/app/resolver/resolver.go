// Package resolver turns free-form artist input into canonical catalog artists.
package resolver

import (
	"context"
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/artimix/internal/app/catalog"
	"github.com/osa030/artimix/internal/domain/artist"
	"github.com/osa030/artimix/internal/domain/mix"
)

const (
	// MaxSuggestions caps the ranked result of Resolve.
	MaxSuggestions = 5

	exactSearchLimit = 25
	looseSearchLimit = 10

	catalogHost      = "open.spotify.com"
	artistURIPrefix  = "spotify:artist:"
	artistPathMarker = "artist"
)

// Suggestion is a ranked resolution result.
type Suggestion struct {
	artist.Artist
	// Related is set for entries padded in from the requested artist's related artists.
	Related bool
}

// SimilarSource names artists similar to a given artist.
type SimilarSource interface {
	SimilarArtists(ctx context.Context, artistName string, limit int) ([]string, error)
}

// Resolver resolves artist input against a catalog.
type Resolver struct {
	similar SimilarSource
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSimilarSource pads URL lookups from src when the catalog's related
// artists fail or leave room.
func WithSimilarSource(src SimilarSource) Option {
	return func(r *Resolver) { r.similar = src }
}

// New creates a new Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns up to MaxSuggestions artists for interactive suggestion.
//
// Catalog URLs (and spotify:artist: URIs) resolve by direct lookup padded with
// related artists and never fall back to text search. Quoted input filters an
// exact-phrase search by name. Anything else is a loose text search.
// The error is non-nil only when a text search call itself failed.
func (r *Resolver) Resolve(ctx context.Context, cat catalog.ArtistFinder, input string) ([]Suggestion, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return []Suggestion{}, nil
	}

	if id, ok := parseArtistRef(input); ok {
		return r.resolveByID(ctx, cat, id), nil
	}

	text, quoted := unquote(input)
	if quoted && text == "" {
		return []Suggestion{}, nil
	}

	mode, limit := catalog.SearchLoose, looseSearchLimit
	if quoted {
		mode, limit = catalog.SearchExact, exactSearchLimit
	}

	results, err := cat.SearchArtists(ctx, text, mode, limit)
	if err != nil {
		zlog.Debug().Msgf("artist search failed: text=%q exact=%v error=%v", text, quoted, err)
		return nil, errors.Wrapf(err, "search artists %q", text)
	}

	list := artist.NewList(MaxSuggestions)
	needle := strings.ToLower(text)
	for _, a := range results {
		if list.Full() {
			break
		}
		if quoted && !strings.Contains(strings.ToLower(a.Name), needle) {
			continue
		}
		list.Add(a)
	}
	return toSuggestions(list.Items(), false), nil
}

// resolveByID looks up id directly and pads the result with related artists.
// A failed lookup yields an empty result.
func (r *Resolver) resolveByID(ctx context.Context, cat catalog.ArtistFinder, id string) []Suggestion {
	if id == "" {
		zlog.Debug().Msg("artist URL without an artist id")
		return []Suggestion{}
	}

	primary, err := cat.GetArtist(ctx, id)
	if err != nil || primary == nil {
		zlog.Debug().Msgf("artist lookup by URL failed: id=%s error=%v", id, err)
		return []Suggestion{}
	}

	list := artist.NewList(MaxSuggestions)
	list.Add(*primary)

	if !list.Full() {
		related, err := cat.GetRelatedArtists(ctx, id)
		if err != nil {
			zlog.Debug().Msgf("related artists lookup failed: id=%s error=%v", id, err)
		}
		for _, a := range related {
			if list.Full() {
				break
			}
			list.Add(a)
		}
	}
	if !list.Full() && r.similar != nil {
		r.padSimilar(ctx, cat, primary.Name, list)
	}

	items := list.Items()
	out := toSuggestions(items, true)
	if len(out) > 0 {
		out[0].Related = false
	}
	return out
}

// padSimilar adds catalog artists named by the similar source. Each name is
// matched by an exact-phrase search and kept only when the names agree.
func (r *Resolver) padSimilar(ctx context.Context, cat catalog.ArtistFinder, name string, list *artist.List) {
	names, err := r.similar.SimilarArtists(ctx, name, MaxSuggestions)
	if err != nil {
		zlog.Debug().Msgf("similar artists lookup failed: artist=%q error=%v", name, err)
		return
	}
	for _, n := range names {
		if list.Full() {
			return
		}
		hits, err := cat.SearchArtists(ctx, n, catalog.SearchExact, 1)
		if err != nil {
			zlog.Debug().Msgf("similar artist search failed: name=%q error=%v", n, err)
			continue
		}
		for _, a := range hits {
			if strings.EqualFold(a.Name, n) {
				list.Add(a)
			}
		}
	}
}

// ResolveOne resolves a single artist row at generation time.
// A confirmed ID is tried first; otherwise, or on failure, the first loose
// search hit for the query name wins. It reports false when nothing matched.
func (r *Resolver) ResolveOne(ctx context.Context, cat catalog.ArtistFinder, req mix.Request) (*artist.Artist, bool) {
	if req.ConfirmedID != "" {
		a, err := cat.GetArtist(ctx, req.ConfirmedID)
		if err == nil && a != nil && a.ID != "" {
			return a, true
		}
		zlog.Debug().Msgf("confirmed artist lookup failed, falling back to search: id=%s query=%q error=%v",
			req.ConfirmedID, req.QueryName, err)
	}

	results, err := cat.SearchArtists(ctx, req.QueryName, catalog.SearchLoose, 1)
	if err != nil {
		zlog.Debug().Msgf("artist search failed: query=%q error=%v", req.QueryName, err)
		return nil, false
	}
	for _, a := range results {
		if a.ID != "" {
			return &a, true
		}
	}
	return nil, false
}

func toSuggestions(items []artist.Artist, related bool) []Suggestion {
	out := make([]Suggestion, len(items))
	for i, a := range items {
		out[i] = Suggestion{Artist: a, Related: related}
	}
	return out
}

// parseArtistRef extracts an artist ID from a catalog web URL or spotify:artist: URI.
// ok is true whenever input is recognized as an artist reference, even if the ID is missing.
func parseArtistRef(input string) (id string, ok bool) {
	if strings.HasPrefix(input, artistURIPrefix) {
		return strings.TrimSpace(strings.TrimPrefix(input, artistURIPrefix)), true
	}

	u, err := url.Parse(input)
	if err != nil || !u.IsAbs() {
		return "", false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", false
	}
	if !strings.EqualFold(u.Hostname(), catalogHost) {
		return "", false
	}

	// Handles /artist/ID as well as localized /intl-xx/artist/ID paths.
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, seg := range segments {
		if seg != artistPathMarker {
			continue
		}
		if i+1 < len(segments) {
			return segments[i+1], true
		}
		return "", true
	}
	return "", false
}

// unquote reports whether input is wrapped in a pair of double quotes and returns the inner text.
func unquote(input string) (string, bool) {
	if len(input) >= 2 && strings.HasPrefix(input, `"`) && strings.HasSuffix(input, `"`) {
		return strings.TrimSpace(input[1 : len(input)-1]), true
	}
	return input, false
}
