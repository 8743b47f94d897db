// Package web serves the browser login flow and resolves the caller's catalog
// client from a session cookie or a bearer refresh token.
package web

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	zlog "github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/osa030/artimix/internal/app/catalog"
)

const (
	stateCacheSize = 100
	stateTTL       = 10 * time.Minute
)

var errNoSession = errors.New("no session")

// Authenticator runs the OAuth flow and builds catalog clients.
type Authenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, state string, r *http.Request) (*oauth2.Token, error)
	ClientFor(ctx context.Context, tok *oauth2.Token) catalog.Client
	FromRefreshToken(ctx context.Context, refreshToken string) catalog.Client
}

// Config configures the session cookie.
type Config struct {
	Secret     string
	CookieName string
	MaxAge     time.Duration
	Secure     bool
	// PublicURL is where the browser is sent after login and logout.
	PublicURL string
}

// Sessions owns the login flow and the session cookie.
type Sessions struct {
	auth  Authenticator
	codec *tokenCodec
	cfg   Config

	mu     sync.Mutex // serializes state consumption
	states *lru.Cache // state -> issue time
}

// NewSessions creates Sessions.
func NewSessions(auth Authenticator, cfg Config) (*Sessions, error) {
	if len(cfg.Secret) < 16 {
		return nil, errors.New("session secret must be at least 16 bytes")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "artimix_session"
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 30 * 24 * time.Hour
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = "/"
	}

	states, err := lru.New(stateCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create state cache")
	}

	return &Sessions{
		auth:   auth,
		codec:  newTokenCodec(cfg.Secret, cfg.MaxAge),
		states: states,
		cfg:    cfg,
	}, nil
}

// Routes returns the login, callback and logout routes.
func (s *Sessions) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/login", s.login)
	r.Get("/callback", s.callback)
	r.Get("/logout", s.logout)
	return r
}

func (s *Sessions) login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	s.states.Add(state, s.codec.now())
	http.Redirect(w, r, s.auth.AuthURL(state), http.StatusFound)
}

func (s *Sessions) callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	if e := q.Get("error"); e != "" {
		zlog.Info().Msgf("login declined: error=%s", e)
		http.Error(w, "Authorization was declined", http.StatusForbidden)
		return
	}

	state := q.Get("state")
	if !s.takeState(state) {
		zlog.Warn().Msgf("login state mismatch: state=%q", state)
		http.Error(w, "State mismatch", http.StatusForbidden)
		return
	}

	tok, err := s.auth.Exchange(ctx, state, r)
	if err != nil {
		zlog.Warn().Msgf("token exchange failed: error=%v", err)
		http.Error(w, "Couldn't get token", http.StatusForbidden)
		return
	}

	user, err := s.auth.ClientFor(ctx, tok).CurrentUser(ctx)
	if err != nil {
		zlog.Warn().Msgf("profile lookup after login failed: error=%v", err)
		http.Error(w, "Could not get user info", http.StatusBadGateway)
		return
	}

	value, err := s.codec.encode(user.ID, tok)
	if err != nil {
		zlog.Error().Msgf("session encode failed: error=%v", err)
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, s.cookie(value, int(s.cfg.MaxAge.Seconds())))
	zlog.Info().Msgf("user logged in: user=%s", user.ID)
	http.Redirect(w, r, s.cfg.PublicURL, http.StatusFound)
}

func (s *Sessions) logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.cookie("", -1))
	http.Redirect(w, r, s.cfg.PublicURL, http.StatusFound)
}

// takeState consumes a state issued by login within stateTTL.
func (s *Sessions) takeState(state string) bool {
	if state == "" {
		return false
	}
	s.mu.Lock()
	v, ok := s.states.Peek(state)
	if ok {
		s.states.Remove(state)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	issued, _ := v.(time.Time)
	return s.codec.now().Sub(issued) <= stateTTL
}

func (s *Sessions) cookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     s.cfg.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClientFromHeader returns the caller's catalog client. A bearer refresh token
// takes precedence over the session cookie.
func (s *Sessions) ClientFromHeader(ctx context.Context, header http.Header) (catalog.Client, error) {
	if authz := header.Get("Authorization"); authz != "" {
		token, ok := strings.CutPrefix(authz, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			return nil, errors.New("malformed authorization header")
		}
		return s.auth.FromRefreshToken(ctx, token), nil
	}

	c, err := (&http.Request{Header: header}).Cookie(s.cfg.CookieName)
	if err != nil {
		return nil, errNoSession
	}
	_, tok, err := s.codec.decode(c.Value)
	if err != nil {
		return nil, err
	}
	return s.auth.ClientFor(ctx, tok), nil
}
