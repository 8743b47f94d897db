// Package main provides the mix CLI entry point.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"connectrpc.com/connect"
	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"

	"github.com/osa030/artimix/internal/api/mixv1"
)

var (
	app    = kingpin.New("artimix-mixcli", "artimix command line client")
	server = app.Flag("server", "Server address").Default("http://localhost:8080").String()
	token  = app.Flag("token", "Spotify refresh token (or set ARTIMIX_REFRESH_TOKEN env)").Envar("ARTIMIX_REFRESH_TOKEN").String()

	// suggest command
	suggestCmd   = app.Command("suggest", "Suggest artists for a name, quoted name or artist URL")
	suggestQuery = suggestCmd.Arg("query", "Artist input").Required().String()

	// generate command
	generateCmd  = app.Command("generate", "Generate a preview mix")
	generateName = generateCmd.Flag("name", "Playlist name").Short('n').String()
	generateRows = generateCmd.Arg("artists", `Artist rows as QUERY=PERCENT, e.g. "Daft Punk=60"`).Required().Strings()

	// show command
	showCmd = app.Command("show", "Show a stored preview")
	showID  = showCmd.Arg("preview-id", "Preview ID").Required().String()

	// commit command
	commitCmd = app.Command("commit", "Create the playlist from a preview")
	commitID  = commitCmd.Arg("preview-id", "Preview ID").Required().String()

	likedTracksCmd  = app.Command("liked-tracks", "List your saved tracks")
	likedArtistsCmd = app.Command("liked-artists", "List artists on your saved tracks")
	whoamiCmd       = app.Command("whoami", "Show the signed-in user")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Check token
	if *token == "" {
		fmt.Println("Error: refresh token is required (use --token or ARTIMIX_REFRESH_TOKEN env, see artimix-auth)")
		os.Exit(1)
	}

	// Create client
	client := mixv1.NewMixServiceClient(
		http.DefaultClient,
		*server,
		connect.WithInterceptors(newBearerInterceptor(*token)),
	)

	ctx := context.Background()

	// Execute command
	var err error
	switch command {
	case suggestCmd.FullCommand():
		err = suggest(ctx, client, *suggestQuery)
	case generateCmd.FullCommand():
		err = generate(ctx, client, *generateName, *generateRows)
	case showCmd.FullCommand():
		err = show(ctx, client, *showID)
	case commitCmd.FullCommand():
		err = commit(ctx, client, *commitID)
	case likedTracksCmd.FullCommand():
		err = likedTracks(ctx, client)
	case likedArtistsCmd.FullCommand():
		err = likedArtists(ctx, client)
	case whoamiCmd.FullCommand():
		err = whoami(ctx, client)
	}
	if err != nil {
		fmt.Println(renderError(err))
		os.Exit(1)
	}
}

// newBearerInterceptor sends the refresh token on every call.
func newBearerInterceptor(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}

func suggest(ctx context.Context, client *mixv1.MixServiceClient, query string) error {
	resp, err := client.SuggestArtists(ctx, connect.NewRequest(&mixv1.SuggestArtistsRequest{Query: query}))
	if err != nil {
		return err
	}
	fmt.Println(renderSuggestions(resp.Msg.Suggestions))
	return nil
}

func generate(ctx context.Context, client *mixv1.MixServiceClient, name string, args []string) error {
	rows := make([]mixv1.ArtistRow, 0, len(args))
	for _, arg := range args {
		row, err := parseRow(arg)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	resp, err := client.GeneratePreview(ctx, connect.NewRequest(&mixv1.GeneratePreviewRequest{
		PlaylistName: name,
		Artists:      rows,
	}))
	if err != nil {
		return err
	}
	fmt.Println(renderPreview(resp.Msg.Preview))
	fmt.Printf("\nCommit with: mixcli commit %s\n", resp.Msg.Preview.ID)
	return nil
}

// parseRow splits QUERY=PERCENT at the last '=' so URLs with query strings survive.
// A QUERY of the form NAME#ID carries an ID confirmed through suggest.
func parseRow(arg string) (mixv1.ArtistRow, error) {
	i := strings.LastIndex(arg, "=")
	if i <= 0 {
		return mixv1.ArtistRow{}, errors.Newf("artist row %q must be QUERY=PERCENT", arg)
	}
	query, weight := arg[:i], arg[i+1:]

	row := mixv1.ArtistRow{Query: query, Weight: weight}
	if name, id, ok := strings.Cut(query, "#"); ok && !strings.Contains(query, "://") {
		row.Query, row.ArtistID = name, id
	}
	return row, nil
}

func show(ctx context.Context, client *mixv1.MixServiceClient, id string) error {
	resp, err := client.GetPreview(ctx, connect.NewRequest(&mixv1.GetPreviewRequest{ID: id}))
	if err != nil {
		return err
	}
	fmt.Println(renderPreview(resp.Msg.Preview))
	return nil
}

func commit(ctx context.Context, client *mixv1.MixServiceClient, id string) error {
	resp, err := client.CommitPreview(ctx, connect.NewRequest(&mixv1.CommitPreviewRequest{ID: id}))
	if err != nil {
		return err
	}
	fmt.Println(renderCommit(resp.Msg))
	return nil
}

func likedTracks(ctx context.Context, client *mixv1.MixServiceClient) error {
	resp, err := client.ListLikedTracks(ctx, connect.NewRequest(&mixv1.ListLikedTracksRequest{}))
	if err != nil {
		return err
	}
	fmt.Println(renderLikedTracks(resp.Msg.Tracks))
	return nil
}

func likedArtists(ctx context.Context, client *mixv1.MixServiceClient) error {
	resp, err := client.ListLikedArtists(ctx, connect.NewRequest(&mixv1.ListLikedArtistsRequest{}))
	if err != nil {
		return err
	}
	fmt.Println(renderArtists(resp.Msg.Artists))
	return nil
}

func whoami(ctx context.Context, client *mixv1.MixServiceClient) error {
	resp, err := client.GetProfile(ctx, connect.NewRequest(&mixv1.GetProfileRequest{}))
	if err != nil {
		return err
	}
	fmt.Printf("%s (%s)\n", titleStyle.Render(resp.Msg.DisplayName), resp.Msg.ID)
	return nil
}
