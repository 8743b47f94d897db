package mixv1

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// MixServiceName is the fully-qualified name of the MixService service.
const MixServiceName = "artimix.v1.MixService"

// Procedure paths of MixService.
const (
	MixServiceSuggestArtistsProcedure   = "/artimix.v1.MixService/SuggestArtists"
	MixServiceGeneratePreviewProcedure  = "/artimix.v1.MixService/GeneratePreview"
	MixServiceGetPreviewProcedure       = "/artimix.v1.MixService/GetPreview"
	MixServiceCommitPreviewProcedure    = "/artimix.v1.MixService/CommitPreview"
	MixServiceListLikedTracksProcedure  = "/artimix.v1.MixService/ListLikedTracks"
	MixServiceListLikedArtistsProcedure = "/artimix.v1.MixService/ListLikedArtists"
	MixServiceGetProfileProcedure       = "/artimix.v1.MixService/GetProfile"
)

// MixServiceHandler is the server side of MixService.
type MixServiceHandler interface {
	SuggestArtists(context.Context, *connect.Request[SuggestArtistsRequest]) (*connect.Response[SuggestArtistsResponse], error)
	GeneratePreview(context.Context, *connect.Request[GeneratePreviewRequest]) (*connect.Response[GeneratePreviewResponse], error)
	GetPreview(context.Context, *connect.Request[GetPreviewRequest]) (*connect.Response[GetPreviewResponse], error)
	CommitPreview(context.Context, *connect.Request[CommitPreviewRequest]) (*connect.Response[CommitPreviewResponse], error)
	ListLikedTracks(context.Context, *connect.Request[ListLikedTracksRequest]) (*connect.Response[ListLikedTracksResponse], error)
	ListLikedArtists(context.Context, *connect.Request[ListLikedArtistsRequest]) (*connect.Response[ListLikedArtistsResponse], error)
	GetProfile(context.Context, *connect.Request[GetProfileRequest]) (*connect.Response[GetProfileResponse], error)
}

// NewMixServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewMixServiceHandler(svc MixServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(JSONCodec{})}, opts...)

	handlers := map[string]http.Handler{
		MixServiceSuggestArtistsProcedure:   connect.NewUnaryHandler(MixServiceSuggestArtistsProcedure, svc.SuggestArtists, opts...),
		MixServiceGeneratePreviewProcedure:  connect.NewUnaryHandler(MixServiceGeneratePreviewProcedure, svc.GeneratePreview, opts...),
		MixServiceGetPreviewProcedure:       connect.NewUnaryHandler(MixServiceGetPreviewProcedure, svc.GetPreview, opts...),
		MixServiceCommitPreviewProcedure:    connect.NewUnaryHandler(MixServiceCommitPreviewProcedure, svc.CommitPreview, opts...),
		MixServiceListLikedTracksProcedure:  connect.NewUnaryHandler(MixServiceListLikedTracksProcedure, svc.ListLikedTracks, opts...),
		MixServiceListLikedArtistsProcedure: connect.NewUnaryHandler(MixServiceListLikedArtistsProcedure, svc.ListLikedArtists, opts...),
		MixServiceGetProfileProcedure:       connect.NewUnaryHandler(MixServiceGetProfileProcedure, svc.GetProfile, opts...),
	}

	return "/" + MixServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// MixServiceClient is a client for MixService.
type MixServiceClient struct {
	suggestArtists   *connect.Client[SuggestArtistsRequest, SuggestArtistsResponse]
	generatePreview  *connect.Client[GeneratePreviewRequest, GeneratePreviewResponse]
	getPreview       *connect.Client[GetPreviewRequest, GetPreviewResponse]
	commitPreview    *connect.Client[CommitPreviewRequest, CommitPreviewResponse]
	listLikedTracks  *connect.Client[ListLikedTracksRequest, ListLikedTracksResponse]
	listLikedArtists *connect.Client[ListLikedArtistsRequest, ListLikedArtistsResponse]
	getProfile       *connect.Client[GetProfileRequest, GetProfileResponse]
}

// NewMixServiceClient constructs a client for the MixService at baseURL.
func NewMixServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *MixServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(JSONCodec{})}, opts...)
	return &MixServiceClient{
		suggestArtists:   connect.NewClient[SuggestArtistsRequest, SuggestArtistsResponse](httpClient, baseURL+MixServiceSuggestArtistsProcedure, opts...),
		generatePreview:  connect.NewClient[GeneratePreviewRequest, GeneratePreviewResponse](httpClient, baseURL+MixServiceGeneratePreviewProcedure, opts...),
		getPreview:       connect.NewClient[GetPreviewRequest, GetPreviewResponse](httpClient, baseURL+MixServiceGetPreviewProcedure, opts...),
		commitPreview:    connect.NewClient[CommitPreviewRequest, CommitPreviewResponse](httpClient, baseURL+MixServiceCommitPreviewProcedure, opts...),
		listLikedTracks:  connect.NewClient[ListLikedTracksRequest, ListLikedTracksResponse](httpClient, baseURL+MixServiceListLikedTracksProcedure, opts...),
		listLikedArtists: connect.NewClient[ListLikedArtistsRequest, ListLikedArtistsResponse](httpClient, baseURL+MixServiceListLikedArtistsProcedure, opts...),
		getProfile:       connect.NewClient[GetProfileRequest, GetProfileResponse](httpClient, baseURL+MixServiceGetProfileProcedure, opts...),
	}
}

func (c *MixServiceClient) SuggestArtists(ctx context.Context, req *connect.Request[SuggestArtistsRequest]) (*connect.Response[SuggestArtistsResponse], error) {
	return c.suggestArtists.CallUnary(ctx, req)
}

func (c *MixServiceClient) GeneratePreview(ctx context.Context, req *connect.Request[GeneratePreviewRequest]) (*connect.Response[GeneratePreviewResponse], error) {
	return c.generatePreview.CallUnary(ctx, req)
}

func (c *MixServiceClient) GetPreview(ctx context.Context, req *connect.Request[GetPreviewRequest]) (*connect.Response[GetPreviewResponse], error) {
	return c.getPreview.CallUnary(ctx, req)
}

func (c *MixServiceClient) CommitPreview(ctx context.Context, req *connect.Request[CommitPreviewRequest]) (*connect.Response[CommitPreviewResponse], error) {
	return c.commitPreview.CallUnary(ctx, req)
}

func (c *MixServiceClient) ListLikedTracks(ctx context.Context, req *connect.Request[ListLikedTracksRequest]) (*connect.Response[ListLikedTracksResponse], error) {
	return c.listLikedTracks.CallUnary(ctx, req)
}

func (c *MixServiceClient) ListLikedArtists(ctx context.Context, req *connect.Request[ListLikedArtistsRequest]) (*connect.Response[ListLikedArtistsResponse], error) {
	return c.listLikedArtists.CallUnary(ctx, req)
}

func (c *MixServiceClient) GetProfile(ctx context.Context, req *connect.Request[GetProfileRequest]) (*connect.Response[GetProfileResponse], error) {
	return c.getProfile.CallUnary(ctx, req)
}
