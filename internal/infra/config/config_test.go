package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() Config {
	return Config{
		Server:  ServerConfig{Addr: ":8080", PublicURL: "/"},
		Session: SessionConfig{Secret: "0123456789abcdef", CookieName: "artimix_session", MaxAge: time.Hour},
		Spotify: SpotifyConfig{
			ClientID:     "test-client-id",
			ClientSecret: "test-client-secret",
			RedirectURL:  "http://127.0.0.1:8080/callback",
			Market:       "US",
			RateLimit:    10,
			RateBurst:    5,
		},
		LastFM:   LastFMConfig{CacheSize: 256},
		Playlist: PlaylistConfig{DefaultName: "My Artimix Playlist"},
		Sampling: SamplingConfig{MaxReleases: 10, MaxTracks: 150, PageSize: 50, Concurrency: 4, DisplaySample: 30},
		PreviewStore: PreviewStoreConfig{
			Type:          "file",
			SweepSchedule: "@hourly",
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing spotify client id",
			mutate:  func(c *Config) { c.Spotify.ClientID = "" },
			wantErr: true,
			errMsg:  "ClientID",
		},
		{
			name:    "missing spotify client secret",
			mutate:  func(c *Config) { c.Spotify.ClientSecret = "" },
			wantErr: true,
			errMsg:  "ClientSecret",
		},
		{
			name:    "short session secret",
			mutate:  func(c *Config) { c.Session.Secret = "short" },
			wantErr: true,
			errMsg:  "Secret",
		},
		{
			name:    "invalid market",
			mutate:  func(c *Config) { c.Spotify.Market = "USA" },
			wantErr: true,
			errMsg:  "Market",
		},
		{
			name:    "unknown preview store type",
			mutate:  func(c *Config) { c.PreviewStore.Type = "redis" },
			wantErr: true,
			errMsg:  "Type",
		},
		{
			name:    "display sample above thirty",
			mutate:  func(c *Config) { c.Sampling.DisplaySample = 31 },
			wantErr: true,
			errMsg:  "DisplaySample",
		},
		{
			name:    "page size above catalog maximum",
			mutate:  func(c *Config) { c.Sampling.PageSize = 51 },
			wantErr: true,
			errMsg:  "PageSize",
		},
		{
			name: "bad sweep schedule with retention",
			mutate: func(c *Config) {
				c.PreviewStore.Retention = 24 * time.Hour
				c.PreviewStore.SweepSchedule = "every now and then"
			},
			wantErr: true,
			errMsg:  "sweep_schedule",
		},
		{
			name:   "bad sweep schedule ignored without retention",
			mutate: func(c *Config) { c.PreviewStore.SweepSchedule = "every now and then" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("LASTFM_API_KEY", "")
	path := writeConfig(t, `
session:
  secret: "0123456789abcdef0123"
spotify:
  client_id: "id"
  client_secret: "secret"
preview_store:
  type: memory
  settings:
    size: 16
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "artimix_session", cfg.Session.CookieName)
	assert.Equal(t, 720*time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, "US", cfg.Spotify.Market)
	assert.Equal(t, "My Artimix Playlist", cfg.Playlist.DefaultName)
	assert.Equal(t, "Created with Artimix!", cfg.Playlist.Description)
	assert.False(t, cfg.Playlist.Public)
	assert.Equal(t, 10, cfg.Sampling.MaxReleases)
	assert.Equal(t, 150, cfg.Sampling.MaxTracks)
	assert.Equal(t, 50, cfg.Sampling.PageSize)
	assert.Equal(t, 30, cfg.Sampling.DisplaySample)
	assert.Equal(t, "memory", cfg.PreviewStore.Type)
	assert.Equal(t, 16, cfg.PreviewStore.Settings["size"])
	assert.Zero(t, cfg.PreviewStore.Retention)
	assert.Empty(t, cfg.LastFM.APIKey)
	assert.Equal(t, 256, cfg.LastFM.CacheSize)
	assert.False(t, cfg.Commit.RetainOnTransientFailure)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("SPOTIFY_CLIENT_SECRET", "env-secret")
	t.Setenv("SPOTIFY_REDIRECT_URI", "https://mix.example.com/callback")
	t.Setenv("SESSION_SECRET", "env-session-secret-value")
	t.Setenv("LASTFM_API_KEY", "env-lastfm-key")

	path := writeConfig(t, `
spotify:
  client_id: "file-id"
  market: "JP"
preview_store:
  retention: 48h
  sweep_schedule: "0 3 * * *"
commit:
  retain_on_transient_failure: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-id", cfg.Spotify.ClientID)
	assert.Equal(t, "env-secret", cfg.Spotify.ClientSecret)
	assert.Equal(t, "https://mix.example.com/callback", cfg.Spotify.RedirectURL)
	assert.Equal(t, "env-session-secret-value", cfg.Session.Secret)
	assert.Equal(t, "env-lastfm-key", cfg.LastFM.APIKey)
	assert.Equal(t, "JP", cfg.Spotify.Market)
	assert.Equal(t, 48*time.Hour, cfg.PreviewStore.Retention)
	assert.True(t, cfg.Commit.RetainOnTransientFailure)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server: [unterminated"))
		assert.Error(t, err)
	})

	t.Run("missing secrets", func(t *testing.T) {
		_, err := Load(writeConfig(t, "server:\n  addr: \":9090\"\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "config validation failed")
	})
}
