// Package lastfm provides a client for the Last.fm API.
package lastfm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	lru "github.com/hashicorp/golang-lru"
	zlog "github.com/rs/zerolog/log"
)

// Client is a Last.fm API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client

	// Cache for similar artist names, keyed by lowercased artist and limit
	similarCache *lru.Cache
}

// Config represents Last.fm client configuration.
type Config struct {
	APIKey    string
	CacheSize int
}

// GetSimilarResponse represents the response from artist.getSimilar API.
type GetSimilarResponse struct {
	SimilarArtists struct {
		Artist []struct {
			Name string `json:"name"`
		} `json:"artist"`
	} `json:"similarartists"`
}

// LastFMError represents an error response from Last.fm API.
type LastFMError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// New creates a new Last.fm client.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("last.fm API key is required")
	}
	size := cfg.CacheSize
	if size <= 0 {
		size = 256
	}
	cache, err := lru.New(size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create cache")
	}

	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      "https://ws.audioscrobbler.com/2.0/",
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		similarCache: cache,
	}, nil
}

// SimilarArtists returns the names of artists similar to artistName, most similar first.
// Reference: https://www.last.fm/api/show/artist.getSimilar
func (c *Client) SimilarArtists(ctx context.Context, artistName string, limit int) ([]string, error) {
	artistName = strings.TrimSpace(artistName)
	if artistName == "" {
		return nil, errors.New("artist name is required")
	}

	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	// Check cache first
	cacheKey := fmt.Sprintf("%s:%d", strings.ToLower(artistName), limit)
	if v, ok := c.similarCache.Get(cacheKey); ok {
		zlog.Debug().Msgf("using cached similar artists: artist=%q", artistName)
		return v.([]string), nil
	}

	params := url.Values{}
	params.Set("method", "artist.getSimilar")
	params.Set("api_key", c.apiKey)
	params.Set("artist", artistName)
	params.Set("limit", fmt.Sprintf("%d", limit))
	params.Set("format", "json")
	params.Set("autocorrect", "1")

	reqURL := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to send request")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	// Check for Last.fm API errors
	var apiError LastFMError
	if err := json.Unmarshal(body, &apiError); err == nil && apiError.Error != 0 {
		return nil, errors.Errorf("last.fm API error %d: %s", apiError.Error, apiError.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("last.fm API returned status %d", resp.StatusCode)
	}

	// Parse successful response
	var response GetSimilarResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, errors.Wrap(err, "failed to parse response")
	}

	names := make([]string, 0, len(response.SimilarArtists.Artist))
	for _, a := range response.SimilarArtists.Artist {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}

	// Cache the result
	c.similarCache.Add(cacheKey, names)
	zlog.Debug().Msgf("cached similar artists: artist=%q count=%d", artistName, len(names))

	return names, nil
}
