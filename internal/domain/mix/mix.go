// Package mix provides the mix request and preview domain entities.
package mix

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"

	"github.com/osa030/artimix/internal/domain/track"
)

// MaxDisplaySample is the upper bound on tracks kept for human review.
const MaxDisplaySample = 30

var validate = validator.New()

// Row is one raw artist row as submitted by a client.
type Row struct {
	Query    string // Artist name, quoted name or catalog URL as typed
	ArtistID string // Artist ID confirmed through suggestions (optional)
	Weight   string // Weight percentage as typed
}

// Request is a validated artist row.
type Request struct {
	QueryName     string
	ConfirmedID   string
	WeightPercent int
}

// ParseRequests validates rows in order.
// Rows with a blank query or weight are skipped. A malformed weight rejects the whole batch.
func ParseRequests(rows []Row) ([]Request, error) {
	requests := make([]Request, 0, len(rows))
	for _, row := range rows {
		query := strings.TrimSpace(row.Query)
		weight := strings.TrimSpace(row.Weight)
		if query == "" || weight == "" {
			continue
		}

		percent, err := strconv.Atoi(weight)
		if err != nil {
			return nil, NewValidationError(MsgInvalidWeight)
		}
		if percent <= 0 || percent > 100 {
			return nil, NewValidationError(MsgWeightRange)
		}

		requests = append(requests, Request{
			QueryName:     query,
			ConfirmedID:   strings.TrimSpace(row.ArtistID),
			WeightPercent: percent,
		})
	}

	if len(requests) == 0 {
		return nil, NewValidationError(MsgNoArtists)
	}
	return requests, nil
}

// Contribution summarizes what one artist row drew into the mix.
type Contribution struct {
	Name                   string `json:"name" validate:"required"`
	ImageURL               string `json:"image_url"`
	TracksContributed      int    `json:"count" validate:"gte=0"`
	RequestedWeightPercent int    `json:"requested_percentage" validate:"gte=1,lte=100"`
}

// Preview is a synthesized mix waiting for review and commit.
// It is the persisted record; its ID is the handle.
type Preview struct {
	ID              string         `json:"id" validate:"required"`
	PlaylistName    string         `json:"playlist_name" validate:"required"`
	TrackURIs       []string       `json:"track_uris" validate:"required,min=1,unique,dive,required"`
	Contributions   []Contribution `json:"artist_contributions" validate:"dive"`
	DisplaySample   []track.Track  `json:"tracks_for_preview_display" validate:"max=30,dive"`
	TotalTrackCount int            `json:"total_songs_in_playlist" validate:"gte=1"`
}

// NewPreview builds a preview from the final, already shuffled track list.
func NewPreview(id, playlistName string, tracks []track.Track, contributions []Contribution) *Preview {
	sample := tracks
	if len(sample) > MaxDisplaySample {
		sample = sample[:MaxDisplaySample]
	}
	display := make([]track.Track, len(sample))
	copy(display, sample)

	return &Preview{
		ID:              id,
		PlaylistName:    playlistName,
		TrackURIs:       track.URIs(tracks),
		Contributions:   contributions,
		DisplaySample:   display,
		TotalTrackCount: len(tracks),
	}
}

// Validate checks the record's structure.
func (p *Preview) Validate() error {
	if p == nil {
		return errors.New("preview is nil")
	}
	if err := validate.Struct(p); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}
	if p.TotalTrackCount != len(p.TrackURIs) {
		return errors.Newf("total_songs_in_playlist (%d) does not match track_uris (%d)", p.TotalTrackCount, len(p.TrackURIs))
	}
	// The display sample is the head of the final ordering.
	if len(p.DisplaySample) > len(p.TrackURIs) {
		return errors.Newf("display sample (%d) is longer than track list (%d)", len(p.DisplaySample), len(p.TrackURIs))
	}
	for i, t := range p.DisplaySample {
		if t.URI != p.TrackURIs[i] {
			return errors.Newf("display sample entry %d (%s) is not track %s", i, t.URI, p.TrackURIs[i])
		}
	}
	return nil
}
