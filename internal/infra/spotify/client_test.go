package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zmb3/spotify/v2"

	"github.com/osa030/artimix/internal/app/catalog"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return New(server.Client(), Options{
		Market:     "JP",
		BaseURL:    server.URL + "/",
		RetryDelay: time.Millisecond,
	})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestExtractTrackID(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Spotify URI format",
			input:    "spotify:track:4uLU6hMCjMI75M1A2tKUQC",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "Spotify URL format",
			input:    "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "Spotify URL with query params",
			input:    "https://open.spotify.com/track/4uLU6hMCjMI75M1A2tKUQC?si=abc123",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "Localized URL",
			input:    "https://open.spotify.com/intl-ja/track/4uLU6hMCjMI75M1A2tKUQC",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "Plain track ID",
			input:    "4uLU6hMCjMI75M1A2tKUQC",
			expected: "4uLU6hMCjMI75M1A2tKUQC",
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := extractTrackID(tt.input)
			assert.Equal(t, tt.expected, result,
				"extractTrackID(%s) should return %s", tt.input, tt.expected)
		})
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{
			name:     "nil error",
			err:      nil,
			expected: false,
		},
		{
			name:     "rate limit error with 429",
			err:      errors.New("Error 429: rate limit exceeded"),
			expected: true,
		},
		{
			name:     "rate limit text",
			err:      errors.New("rate limit exceeded"),
			expected: true,
		},
		{
			name:     "server error 500",
			err:      errors.New("Error 500: internal server error"),
			expected: true,
		},
		{
			name:     "server error 502",
			err:      errors.New("502 Bad Gateway"),
			expected: true,
		},
		{
			name:     "server error 503",
			err:      errors.New("503 Service Unavailable"),
			expected: true,
		},
		{
			name:     "server error 504",
			err:      errors.New("504 Gateway Timeout"),
			expected: true,
		},
		{
			name:     "client error 400",
			err:      errors.New("400 Bad Request"),
			expected: false,
		},
		{
			name:     "not found error",
			err:      errors.New("404 not found"),
			expected: false,
		},
		{
			name:     "generic error",
			err:      errors.New("something went wrong"),
			expected: false,
		},
		{
			name:     "api error 429",
			err:      spotify.Error{Status: http.StatusTooManyRequests, Message: "API rate limit exceeded"},
			expected: true,
		},
		{
			name:     "api error 503",
			err:      spotify.Error{Status: http.StatusServiceUnavailable, Message: "unavailable"},
			expected: true,
		},
		{
			name:     "api error 401",
			err:      spotify.Error{Status: http.StatusUnauthorized, Message: "The access token expired"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := isRetryable(tt.err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestClient_GetArtist(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /artists/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "4tZwfgrHOc3mvqYlEYSvVi", r.PathValue("id"))
		writeJSON(w, http.StatusOK, `{"id":"4tZwfgrHOc3mvqYlEYSvVi","name":"Daft Punk",
			"images":[{"url":"https://i.scdn.co/image/wide","width":640,"height":640},{"url":"https://i.scdn.co/image/small","width":64,"height":64}]}`)
	})
	c := newTestClient(t, mux)

	a, err := c.GetArtist(context.Background(), "4tZwfgrHOc3mvqYlEYSvVi")
	require.NoError(t, err)
	assert.Equal(t, "Daft Punk", a.Name)
	assert.Equal(t, "https://i.scdn.co/image/wide", a.ImageURL)
}

func TestClient_SearchArtists(t *testing.T) {
	tests := []struct {
		name      string
		mode      catalog.SearchMode
		limit     int
		wantQuery string
		wantLimit string
	}{
		{name: "exact", mode: catalog.SearchExact, limit: 25, wantQuery: `artist:"Daft Punk"`, wantLimit: "25"},
		{name: "loose", mode: catalog.SearchLoose, limit: 10, wantQuery: "artist:Daft Punk", wantLimit: "10"},
		{name: "limit clamped", mode: catalog.SearchLoose, limit: 500, wantQuery: "artist:Daft Punk", wantLimit: "50"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				assert.Equal(t, tt.wantQuery, q.Get("q"))
				assert.Equal(t, "artist", q.Get("type"))
				assert.Equal(t, tt.wantLimit, q.Get("limit"))
				writeJSON(w, http.StatusOK, `{"artists":{"items":[{"id":"a1","name":"Daft Punk"},{"id":"a2","name":"Daft Punk Tribute"}]}}`)
			})
			c := newTestClient(t, mux)

			got, err := c.SearchArtists(context.Background(), "Daft Punk", tt.mode, tt.limit)
			require.NoError(t, err)
			require.Len(t, got, 2)
			assert.Equal(t, "a1", got[0].ID)
		})
	}
}

func TestClient_SearchArtists_NoArtistSection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /search", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{}`)
	})
	c := newTestClient(t, mux)

	got, err := c.SearchArtists(context.Background(), "nobody", catalog.SearchLoose, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_GetArtistReleases(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /artists/{id}/albums", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "single", q.Get("include_groups"))
		assert.Equal(t, "JP", q.Get("market"))
		assert.Equal(t, "5", q.Get("limit"))
		assert.Equal(t, "10", q.Get("offset"))
		writeJSON(w, http.StatusOK, `{"items":[{"id":"r1","name":"One","images":[{"url":"https://i.scdn.co/image/r1"}]}],
			"next":"https://api.spotify.com/v1/artists/a/albums?offset=15"}`)
	})
	c := newTestClient(t, mux)

	page, err := c.GetArtistReleases(context.Background(), "a", catalog.ReleaseKindSingle, 5, 10)
	require.NoError(t, err)
	assert.True(t, page.HasNext)
	assert.Equal(t, []catalog.Release{{ID: "r1", Name: "One", ImageURL: "https://i.scdn.co/image/r1"}}, page.Releases)
}

func TestClient_GetReleaseTracks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /albums/{id}/tracks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "r1", r.PathValue("id"))
		writeJSON(w, http.StatusOK, `{"items":[{"id":"t1","uri":"spotify:track:t1","name":"Song",
			"artists":[{"id":"a","name":"Alpha"},{"id":"b","name":"Beta"}]}]}`)
	})
	c := newTestClient(t, mux)

	got, err := c.GetReleaseTracks(context.Background(), "r1", 50)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "spotify:track:t1", got[0].URI)
	assert.Equal(t, []string{"Alpha", "Beta"}, got[0].Artists)
}

func TestClient_GetTopTracks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /artists/{id}/top-tracks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "JP", r.URL.Query().Get("country"))
		writeJSON(w, http.StatusOK, `{"tracks":[{"id":"t9","uri":"spotify:track:t9","name":"Hit",
			"artists":[{"id":"a","name":"Alpha"}],"album":{"id":"r","name":"R","images":[{"url":"https://i.scdn.co/image/r"}]}}]}`)
	})
	c := newTestClient(t, mux)

	got, err := c.GetTopTracks(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://i.scdn.co/image/r", got[0].ImageURL)
}

func TestClient_GetSavedTracks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /me/tracks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		writeJSON(w, http.StatusOK, `{"items":[{"added_at":"2024-01-01T00:00:00Z","track":{"id":"t1","uri":"spotify:track:t1","name":"Song",
			"artists":[{"id":"a","name":"Alpha"}],"album":{"id":"r","name":"Record"}}}],"next":null}`)
	})
	c := newTestClient(t, mux)

	page, err := c.GetSavedTracks(context.Background(), 50, 0)
	require.NoError(t, err)
	assert.False(t, page.HasNext)
	require.Len(t, page.Items, 1)
	item := page.Items[0]
	assert.Equal(t, "t1", item.ID)
	assert.Equal(t, "Record", item.Album)
	assert.Equal(t, "a", item.Artists[0].ID)
}

func TestClient_GetArtists_SkipsUnknown(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /artists", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "a,zz", r.URL.Query().Get("ids"))
		writeJSON(w, http.StatusOK, `{"artists":[{"id":"a","name":"Alpha"},null]}`)
	})
	c := newTestClient(t, mux)

	got, err := c.GetArtists(context.Background(), []string{"a", "zz"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha", got[0].Name)

	_, err = c.GetArtists(context.Background(), make([]string, 51))
	assert.Error(t, err)
}

func TestClient_CreatePlaylistAndAddTracks(t *testing.T) {
	var batches [][]string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /users/{id}/playlists", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u1", r.PathValue("id"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "My Mix", body["name"])
		assert.Equal(t, false, body["public"])
		writeJSON(w, http.StatusCreated, `{"id":"p1","external_urls":{"spotify":"https://open.spotify.com/playlist/p1"}}`)
	})
	mux.HandleFunc("POST /playlists/{id}/tracks", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			URIs []string `json:"uris"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		batches = append(batches, body.URIs)
		writeJSON(w, http.StatusCreated, `{"snapshot_id":"s"}`)
	})
	c := newTestClient(t, mux)
	ctx := context.Background()

	p, err := c.CreatePlaylist(ctx, "u1", "My Mix", "desc", false)
	require.NoError(t, err)
	assert.Equal(t, &catalog.Playlist{ID: "p1", URL: "https://open.spotify.com/playlist/p1"}, p)

	uris := make([]string, 150)
	for i := range uris {
		uris[i] = "spotify:track:t" + string(rune('a'+i%26))
	}
	require.NoError(t, c.AddTracksToPlaylist(ctx, "p1", uris))
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 100)
	assert.Len(t, batches[1], 50)
	assert.Equal(t, "spotify:track:ta", batches[0][0])
}

func TestClient_RetryThenSucceed(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, `{"error":{"status":503,"message":"unavailable"}}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"id":"u1","display_name":"Ada"}`)
	})
	c := newTestClient(t, mux)

	u, err := c.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.DisplayName)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_RetryExhaustedIsTransient(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /me", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusTooManyRequests, `{"error":{"status":429,"message":"API rate limit exceeded"}}`)
	})
	c := newTestClient(t, mux)

	_, err := c.CurrentUser(context.Background())
	require.Error(t, err)
	assert.True(t, catalog.IsTransient(err))
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /artists/{id}", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusBadRequest, `{"error":{"status":400,"message":"invalid id"}}`)
	})
	c := newTestClient(t, mux)

	_, err := c.GetArtist(context.Background(), "bogus")
	require.Error(t, err)
	assert.False(t, catalog.IsTransient(err))
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 5))
	l := NewLimiter(10, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
}

func TestNewAuthenticator(t *testing.T) {
	_, err := NewAuthenticator(AuthConfig{ClientID: "id"}, Options{})
	assert.Error(t, err)

	a, err := NewAuthenticator(AuthConfig{ClientID: "id", ClientSecret: "secret", RedirectURL: "http://127.0.0.1:8080/callback"}, Options{})
	require.NoError(t, err)
	url := a.AuthURL("state-1")
	assert.Contains(t, url, "client_id=id")
	assert.Contains(t, url, "state=state-1")
	assert.Contains(t, url, "user-library-read")
}
