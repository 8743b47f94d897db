package lastfm

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarArtists(t *testing.T) {
	var calls atomic.Int32
	// Mock server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "artist.getSimilar", r.URL.Query().Get("method"))
		assert.Equal(t, "Daft Punk", r.URL.Query().Get("artist"))
		assert.Equal(t, "test_key", r.URL.Query().Get("api_key"))
		assert.Equal(t, "5", r.URL.Query().Get("limit"))

		response := `{
			"similarartists": {
				"artist": [
					{"name": "Justice", "match": "1"},
					{"name": "", "match": "0.9"},
					{"name": "Cassius", "match": "0.8"}
				]
			}
		}`
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, response)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "test_key"})
	require.NoError(t, err)
	client.baseURL = server.URL + "/"

	// Test API call
	ctx := context.Background()
	names, err := client.SimilarArtists(ctx, "Daft Punk", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Justice", "Cassius"}, names)

	// Test Caching
	cached, err := client.SimilarArtists(ctx, "daft punk", 5)
	assert.NoError(t, err)
	assert.Equal(t, names, cached)
	assert.Equal(t, int32(1), calls.Load())
}

func TestSimilarArtists_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"error": 6, "message": "The artist you supplied could not be found"}`)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "test_key"})
	require.NoError(t, err)
	client.baseURL = server.URL + "/"

	_, err = client.SimilarArtists(context.Background(), "Nobody", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not be found")
}

func TestSimilarArtists_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := New(Config{APIKey: "test_key"})
	require.NoError(t, err)
	client.baseURL = server.URL + "/"

	_, err = client.SimilarArtists(context.Background(), "Daft Punk", 5)
	assert.Error(t, err)
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)

	_, err = (&Client{}).SimilarArtists(context.Background(), " ", 5)
	assert.Error(t, err)
}
