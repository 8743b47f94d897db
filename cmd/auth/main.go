// Package main provides the Spotify authentication tool.
// It prints a refresh token for use with mixcli.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"

	"github.com/osa030/artimix/internal/infra/spotify"
)

var (
	app          = kingpin.New("artimix-auth", "Spotify authentication tool for artimix")
	clientID     = app.Flag("client-id", "Spotify Client ID").Envar("SPOTIFY_CLIENT_ID").Required().String()
	clientSecret = app.Flag("client-secret", "Spotify Client Secret").Envar("SPOTIFY_CLIENT_SECRET").Required().String()
	port         = app.Flag("port", "Callback server port").Default("8888").Int()

	auth  *spotify.Authenticator
	ch    = make(chan *oauth2.Token)
	state = uuid.NewString()
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse flags
	kingpin.MustParse(app.Parse(os.Args[1:]))

	// Build redirect URI with custom port
	customRedirectURI := fmt.Sprintf("http://127.0.0.1:%d/callback", *port)

	// Create authenticator
	var err error
	auth, err = spotify.NewAuthenticator(spotify.AuthConfig{
		ClientID:     *clientID,
		ClientSecret: *clientSecret,
		RedirectURL:  customRedirectURI,
	}, spotify.Options{})
	if err != nil {
		log.Fatalf("Failed to create authenticator: %v", err)
	}

	// Start HTTP server for callback
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", completeAuth)
	server := &http.Server{Addr: fmt.Sprintf(":%d", *port), Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Print authorization URL
	fmt.Println("Please visit the following URL to authorize artimix:")
	fmt.Println("")
	fmt.Println(auth.AuthURL(state))
	fmt.Println("")
	fmt.Println("Waiting for authorization...")

	// Wait for token
	token := <-ch

	// Shutdown server
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Failed to shutdown server: %v", err)
	}

	// Print token
	fmt.Println("")
	fmt.Println("=== Authorization Successful ===")
	fmt.Println("")
	fmt.Println("Refresh Token:")
	fmt.Println(token.RefreshToken)
	fmt.Println("")
	fmt.Println("Use it with mixcli:")
	fmt.Printf("export ARTIMIX_REFRESH_TOKEN=\"%s\"\n", token.RefreshToken)
}

func completeAuth(w http.ResponseWriter, r *http.Request) {
	token, err := auth.Exchange(r.Context(), state, r)
	if err != nil {
		http.Error(w, "Failed to get token", http.StatusForbidden)
		log.Printf("Failed to get token: %v", err)
		return
	}

	fmt.Fprint(w, `<!DOCTYPE html>
<html>
<head><title>artimix - Authorization Complete</title></head>
<body style="font-family: sans-serif; text-align: center; padding-top: 20vh;">
    <h1>Authorization Complete</h1>
    <p>You can close this window and return to the terminal.</p>
</body>
</html>
`)

	ch <- token
}
