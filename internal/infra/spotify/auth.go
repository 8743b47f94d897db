package spotify

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/osa030/artimix/internal/app/catalog"
)

// Scopes are the permissions artimix requests from the user.
var Scopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
}

// AuthConfig holds the OAuth application credentials.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Authenticator runs the authorization code flow and builds per-user clients
// sharing one rate limit.
type Authenticator struct {
	auth *spotifyauth.Authenticator
	opts Options
}

// NewAuthenticator creates an Authenticator. opts is applied to every client it builds.
func NewAuthenticator(cfg AuthConfig, opts Options) (*Authenticator, error) {
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("client_id and client_secret are required")
	}
	return &Authenticator{
		auth: spotifyauth.New(
			spotifyauth.WithRedirectURL(cfg.RedirectURL),
			spotifyauth.WithClientID(cfg.ClientID),
			spotifyauth.WithClientSecret(cfg.ClientSecret),
			spotifyauth.WithScopes(Scopes...),
		),
		opts: opts,
	}, nil
}

// NewLimiter returns the process-wide limiter for perSecond requests with burst.
// A non-positive perSecond disables limiting.
func NewLimiter(perSecond float64, burst int) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), max(burst, 1))
}

// AuthURL returns the consent page URL carrying state.
func (a *Authenticator) AuthURL(state string) string {
	return a.auth.AuthURL(state)
}

// Exchange completes the flow from the callback request.
func (a *Authenticator) Exchange(ctx context.Context, state string, r *http.Request) (*oauth2.Token, error) {
	tok, err := a.auth.Token(ctx, state, r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to exchange authorization code")
	}
	return tok, nil
}

// ClientFor returns a catalog client acting with tok. Expired access tokens are
// refreshed transparently while the refresh token is valid.
func (a *Authenticator) ClientFor(ctx context.Context, tok *oauth2.Token) catalog.Client {
	return New(a.auth.Client(ctx, tok), a.opts)
}

// FromRefreshToken returns a catalog client for a long-lived refresh token.
func (a *Authenticator) FromRefreshToken(ctx context.Context, refreshToken string) catalog.Client {
	return a.ClientFor(ctx, &oauth2.Token{RefreshToken: refreshToken})
}
