// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Session      SessionConfig      `yaml:"session"`
	Spotify      SpotifyConfig      `yaml:"spotify"`
	LastFM       LastFMConfig       `yaml:"lastfm"`
	Playlist     PlaylistConfig     `yaml:"playlist"`
	Sampling     SamplingConfig     `yaml:"sampling"`
	PreviewStore PreviewStoreConfig `yaml:"preview_store"`
	Commit       CommitConfig       `yaml:"commit"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr        string   `yaml:"addr" default:":8080"`
	CORSOrigins []string `yaml:"cors_origins"`
	// PublicURL is where browsers land after login, e.g. the web UI origin.
	PublicURL string `yaml:"public_url" default:"/" validate:"required"`
}

// SessionConfig represents the browser session cookie configuration.
type SessionConfig struct {
	Secret     string        `yaml:"secret" validate:"required,min=16"`
	CookieName string        `yaml:"cookie_name" default:"artimix_session" validate:"required"`
	MaxAge     time.Duration `yaml:"max_age" default:"720h" validate:"gt=0"`
	Secure     bool          `yaml:"secure"`
}

// SpotifyConfig represents Spotify API configuration.
type SpotifyConfig struct {
	ClientID     string  `yaml:"client_id" validate:"required"`
	ClientSecret string  `yaml:"client_secret" validate:"required"`
	RedirectURL  string  `yaml:"redirect_url" default:"http://127.0.0.1:8080/callback" validate:"required,url"`
	Market       string  `yaml:"market" validate:"omitempty,len=2" default:"US"`
	RateLimit    float64 `yaml:"rate_limit" default:"10" validate:"gt=0"` // requests per second, shared by all users
	RateBurst    int     `yaml:"rate_burst" default:"5" validate:"gte=1"`
}

// LastFMConfig enables similar-artist padding from Last.fm. An empty APIKey disables it.
type LastFMConfig struct {
	APIKey    string `yaml:"api_key"`
	CacheSize int    `yaml:"cache_size" default:"256" validate:"gte=1"`
}

// PlaylistConfig represents settings for playlists created on commit.
type PlaylistConfig struct {
	DefaultName string `yaml:"default_name" default:"My Artimix Playlist" validate:"required"`
	Description string `yaml:"description" default:"Created with Artimix!"`
	Public      bool   `yaml:"public"`
}

// SamplingConfig bounds per-artist catalog sampling.
type SamplingConfig struct {
	MaxReleases   int `yaml:"max_releases" default:"10" validate:"gte=1,lte=50"`
	MaxTracks     int `yaml:"max_tracks" default:"150" validate:"gte=1,lte=1000"`
	PageSize      int `yaml:"page_size" default:"50" validate:"gte=1,lte=50"`
	Concurrency   int `yaml:"concurrency" default:"4" validate:"gte=1,lte=32"`
	DisplaySample int `yaml:"display_sample" default:"30" validate:"gte=1,lte=30"`
}

// PreviewStoreConfig selects and configures the preview backend.
type PreviewStoreConfig struct {
	Type     string         `yaml:"type" default:"file" validate:"oneof=memory file sqlite postgres"`
	Settings map[string]any `yaml:"settings"`
	// Retention enables the sweep of previews older than this. Zero disables it.
	Retention     time.Duration `yaml:"retention" validate:"gte=0"`
	SweepSchedule string        `yaml:"sweep_schedule" default:"@hourly"`
}

// CommitConfig represents commit policy.
type CommitConfig struct {
	// RetainOnTransientFailure keeps the preview when playlist creation fails with a retryable error.
	RetainOnTransientFailure bool `yaml:"retain_on_transient_failure"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	// Override with environment variables
	cfg.overrideFromEnv()

	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URI"); v != "" {
		c.Spotify.RedirectURL = v
	}
	if v := os.Getenv("LASTFM_API_KEY"); v != "" {
		c.LastFM.APIKey = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.Session.Secret = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	if c.PreviewStore.Retention > 0 {
		if _, err := cron.ParseStandard(c.PreviewStore.SweepSchedule); err != nil {
			return errors.Wrapf(err, "invalid sweep_schedule %q", c.PreviewStore.SweepSchedule)
		}
	}

	return nil
}
