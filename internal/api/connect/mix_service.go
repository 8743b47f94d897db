package connect

import (
	"context"

	"connectrpc.com/connect"

	"github.com/osa030/artimix/internal/api/mixv1"
	"github.com/osa030/artimix/internal/app/mixer"
	"github.com/osa030/artimix/internal/domain/mix"
	"github.com/osa030/artimix/internal/domain/track"
)

// MixService implements the MixService RPC.
type MixService struct {
	mixer *mixer.Service
}

// NewMixService creates a new MixService.
func NewMixService(m *mixer.Service) *MixService {
	return &MixService{mixer: m}
}

// Ensure MixService implements the interface.
var _ mixv1.MixServiceHandler = (*MixService)(nil)

// SuggestArtists handles artist suggestion requests.
func (s *MixService) SuggestArtists(
	ctx context.Context,
	req *connect.Request[mixv1.SuggestArtistsRequest],
) (*connect.Response[mixv1.SuggestArtistsResponse], error) {
	cat, err := clientFrom(ctx)
	if err != nil {
		return nil, err
	}

	suggestions, err := s.mixer.Suggest(ctx, cat, req.Msg.Query)
	if err != nil {
		return nil, toConnectError(req.Spec().Procedure, err)
	}

	res := &mixv1.SuggestArtistsResponse{Suggestions: make([]mixv1.Suggestion, 0, len(suggestions))}
	for _, sg := range suggestions {
		res.Suggestions = append(res.Suggestions, mixv1.Suggestion{
			Artist:  mixv1.Artist{ID: sg.ID, Name: sg.Name, ImageURL: sg.ImageURL},
			Related: sg.Related,
		})
	}
	return connect.NewResponse(res), nil
}

// GeneratePreview handles mix generation requests.
func (s *MixService) GeneratePreview(
	ctx context.Context,
	req *connect.Request[mixv1.GeneratePreviewRequest],
) (*connect.Response[mixv1.GeneratePreviewResponse], error) {
	cat, err := clientFrom(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]mix.Row, len(req.Msg.Artists))
	for i, a := range req.Msg.Artists {
		rows[i] = mix.Row{Query: a.Query, ArtistID: a.ArtistID, Weight: a.Weight}
	}
	requests, err := mix.ParseRequests(rows)
	if err != nil {
		return nil, toConnectError(req.Spec().Procedure, err)
	}

	p, err := s.mixer.Generate(ctx, cat, req.Msg.PlaylistName, requests)
	if err != nil {
		return nil, toConnectError(req.Spec().Procedure, err)
	}
	return connect.NewResponse(&mixv1.GeneratePreviewResponse{Preview: toPreview(p)}), nil
}

// GetPreview returns a stored preview.
func (s *MixService) GetPreview(
	ctx context.Context,
	req *connect.Request[mixv1.GetPreviewRequest],
) (*connect.Response[mixv1.GetPreviewResponse], error) {
	p, err := s.mixer.Preview(ctx, req.Msg.ID)
	if err != nil {
		return nil, toConnectError(req.Spec().Procedure, err)
	}
	return connect.NewResponse(&mixv1.GetPreviewResponse{Preview: toPreview(p)}), nil
}

// CommitPreview creates the playlist and consumes the preview.
func (s *MixService) CommitPreview(
	ctx context.Context,
	req *connect.Request[mixv1.CommitPreviewRequest],
) (*connect.Response[mixv1.CommitPreviewResponse], error) {
	cat, err := clientFrom(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.mixer.Commit(ctx, cat, req.Msg.ID)
	if err != nil {
		return nil, toConnectError(req.Spec().Procedure, err)
	}
	return connect.NewResponse(&mixv1.CommitPreviewResponse{
		PlaylistID:   result.Playlist.ID,
		PlaylistURL:  result.Playlist.URL,
		PlaylistName: result.PlaylistName,
		TrackCount:   result.TrackCount,
	}), nil
}

// ListLikedTracks returns the caller's saved tracks.
func (s *MixService) ListLikedTracks(
	ctx context.Context,
	req *connect.Request[mixv1.ListLikedTracksRequest],
) (*connect.Response[mixv1.ListLikedTracksResponse], error) {
	cat, err := clientFrom(ctx)
	if err != nil {
		return nil, err
	}

	saved, err := s.mixer.LikedTracks(ctx, cat)
	if err != nil {
		return nil, toConnectError(req.Spec().Procedure, err)
	}

	res := &mixv1.ListLikedTracksResponse{Tracks: make([]mixv1.LikedTrack, 0, len(saved))}
	for _, t := range saved {
		res.Tracks = append(res.Tracks, mixv1.LikedTrack{
			ID:       t.ID,
			URI:      t.Track.URI,
			Name:     t.Track.Name,
			Artists:  t.Track.Artists,
			Album:    t.Album,
			ImageURL: t.Track.ImageURL,
		})
	}
	return connect.NewResponse(res), nil
}

// ListLikedArtists returns the artists on the caller's saved tracks.
func (s *MixService) ListLikedArtists(
	ctx context.Context,
	req *connect.Request[mixv1.ListLikedArtistsRequest],
) (*connect.Response[mixv1.ListLikedArtistsResponse], error) {
	cat, err := clientFrom(ctx)
	if err != nil {
		return nil, err
	}

	artists, err := s.mixer.LikedArtists(ctx, cat)
	if err != nil {
		return nil, toConnectError(req.Spec().Procedure, err)
	}

	res := &mixv1.ListLikedArtistsResponse{Artists: make([]mixv1.Artist, 0, len(artists))}
	for _, a := range artists {
		res.Artists = append(res.Artists, mixv1.Artist{ID: a.ID, Name: a.Name, ImageURL: a.ImageURL})
	}
	return connect.NewResponse(res), nil
}

// GetProfile returns the caller's profile.
func (s *MixService) GetProfile(
	ctx context.Context,
	req *connect.Request[mixv1.GetProfileRequest],
) (*connect.Response[mixv1.GetProfileResponse], error) {
	cat, err := clientFrom(ctx)
	if err != nil {
		return nil, err
	}

	p, err := s.mixer.Profile(ctx, cat)
	if err != nil {
		return nil, toConnectError(req.Spec().Procedure, err)
	}
	return connect.NewResponse(&mixv1.GetProfileResponse{
		ID:          p.ID,
		DisplayName: p.DisplayName,
		ImageURL:    p.ImageURL,
	}), nil
}

func toPreview(p *mix.Preview) mixv1.Preview {
	out := mixv1.Preview{
		ID:                  p.ID,
		PlaylistName:        p.PlaylistName,
		TotalTracks:         p.TotalTrackCount,
		Contributions:       make([]mixv1.Contribution, 0, len(p.Contributions)),
		TracksForDisplay:    make([]mixv1.Track, 0, len(p.DisplaySample)),
		DisplayedTrackCount: len(p.DisplaySample),
	}
	for _, c := range p.Contributions {
		out.Contributions = append(out.Contributions, mixv1.Contribution{
			Name:                   c.Name,
			ImageURL:               c.ImageURL,
			Count:                  c.TracksContributed,
			RequestedWeightPercent: c.RequestedWeightPercent,
		})
	}
	for _, t := range p.DisplaySample {
		out.TracksForDisplay = append(out.TracksForDisplay, toTrack(t))
	}
	return out
}

func toTrack(t track.Track) mixv1.Track {
	return mixv1.Track{URI: t.URI, Name: t.Name, Artists: t.Artists, ImageURL: t.ImageURL}
}
