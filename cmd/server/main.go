// Package main provides the server entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apiconnect "github.com/osa030/artimix/internal/api/connect"
	"github.com/osa030/artimix/internal/api/mixv1"
	"github.com/osa030/artimix/internal/api/web"
	"github.com/osa030/artimix/internal/app/mixer"
	"github.com/osa030/artimix/internal/app/preview"
	"github.com/osa030/artimix/internal/app/resolver"
	"github.com/osa030/artimix/internal/app/sampler"
	"github.com/osa030/artimix/internal/app/shuffle"
	"github.com/osa030/artimix/internal/app/synth"
	"github.com/osa030/artimix/internal/infra/config"
	"github.com/osa030/artimix/internal/infra/lastfm"
	"github.com/osa030/artimix/internal/infra/logger"
	"github.com/osa030/artimix/internal/infra/spotify"
)

var (
	app        = kingpin.New("artimix-server", "artimix playlist mixing server")
	configPath = app.Flag("config", "Path to config file").Default("config/server.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()
	logFormat  = app.Flag("log-format", "Log format: console or json").Enum("console", "json")

	validateCmd = app.Command("validate-config", "Validate the config file and exit")
)

func init() {
	// start command (default) - no need to store the command
	app.Command("start", "Start the server (default)").Default()
}

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
		Format: *logFormat,
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	if err := logger.Init(loggerConfig); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	if command == validateCmd.FullCommand() {
		fmt.Printf("%s: OK (preview_store=%s)\n", *configPath, cfg.PreviewStore.Type)
		return
	}

	// Run server (defer ensures cleanup runs)
	if err := run(cfg); err != nil {
		zlog.Error().Msgf("Server error: %v", err)
		os.Exit(1)
	}
}

// run executes the main server logic. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(cfg *config.Config) error {
	// Create preview store
	store, closeStore, err := preview.NewStoreFromConfig(&cfg.PreviewStore)
	if err != nil {
		return errors.Wrap(err, "failed to create preview store")
	}
	defer func() {
		if err := closeStore(); err != nil {
			zlog.Error().Msgf("Failed to close preview store: %v", err)
		}
	}()
	zlog.Info().Msgf("Preview store ready: type=%s", cfg.PreviewStore.Type)

	// Schedule preview retention if configured
	if cfg.PreviewStore.Retention > 0 {
		sweeper, ok := store.(preview.Sweeper)
		if !ok {
			return errors.Newf("preview store %s does not support retention", cfg.PreviewStore.Type)
		}
		retention, err := preview.NewRetention(sweeper, cfg.PreviewStore.Retention, cfg.PreviewStore.SweepSchedule)
		if err != nil {
			return errors.Wrap(err, "failed to schedule preview retention")
		}
		retention.Start()
		defer retention.Stop()
	}

	// Create Spotify authenticator (one rate limit shared by every user)
	auth, err := spotify.NewAuthenticator(spotify.AuthConfig{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RedirectURL:  cfg.Spotify.RedirectURL,
	}, spotify.Options{
		Market:  cfg.Spotify.Market,
		Limiter: spotify.NewLimiter(cfg.Spotify.RateLimit, cfg.Spotify.RateBurst),
	})
	if err != nil {
		return errors.Wrap(err, "failed to create Spotify authenticator")
	}

	sessions, err := web.NewSessions(auth, web.Config{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		MaxAge:     cfg.Session.MaxAge,
		Secure:     cfg.Session.Secure,
		PublicURL:  cfg.Server.PublicURL,
	})
	if err != nil {
		return errors.Wrap(err, "failed to create sessions")
	}

	// Create mix pipeline
	rng := shuffle.NewCrypto()
	smp := sampler.New(sampler.Options{
		MaxReleasesScanned: cfg.Sampling.MaxReleases,
		MaxTracks:          cfg.Sampling.MaxTracks,
		PageSize:           cfg.Sampling.PageSize,
	}, rng)
	syn := synth.New(smp, rng,
		synth.WithConcurrency(cfg.Sampling.Concurrency),
		synth.WithDisplaySample(cfg.Sampling.DisplaySample),
	)
	var resolverOpts []resolver.Option
	if cfg.LastFM.APIKey != "" {
		lf, err := lastfm.New(lastfm.Config{APIKey: cfg.LastFM.APIKey, CacheSize: cfg.LastFM.CacheSize})
		if err != nil {
			return errors.Wrap(err, "failed to create Last.fm client")
		}
		resolverOpts = append(resolverOpts, resolver.WithSimilarSource(lf))
		zlog.Info().Msg("Last.fm similar artists enabled")
	}
	mixSvc := mixer.NewService(resolver.New(resolverOpts...), syn, store, mixer.Config{
		DefaultPlaylistName:      cfg.Playlist.DefaultName,
		Description:              cfg.Playlist.Description,
		Public:                   cfg.Playlist.Public,
		RetainOnTransientFailure: cfg.Commit.RetainOnTransientFailure,
	})

	// Register services
	mixPath, mixHandler := mixv1.NewMixServiceHandler(
		apiconnect.NewMixService(mixSvc),
		connect.WithInterceptors(apiconnect.NewAuthInterceptor(sessions)),
	)

	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(logger.Middleware)
	router.Handle(mixPath+"*", mixHandler)
	router.Mount("/", sessions.Routes())

	handler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders:   []string{logger.RequestIDHeader},
		AllowCredentials: true,
	}).Handler(router)

	// Create server with h2c (HTTP/2 cleartext) support
	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to capture server errors
	serverErrCh := make(chan error, 1)

	// Start server
	go func() {
		zlog.Info().Msgf("Starting server: addr=%s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- err
		}
	}()

	// Wait for shutdown signal or server error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		zlog.Info().Msg("Received shutdown signal...")
	case err := <-serverErrCh:
		return errors.Wrap(err, "server error")
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Msgf("Failed to shutdown server: %v", err)
	}

	zlog.Info().Msg("Server stopped")
	return nil
}
