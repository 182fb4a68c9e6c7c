package services

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/plman/internal/shared"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

// Scopes requested during authorization.
var Scopes = []string{
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopeUserLibraryModify,
	spotifyauth.ScopePlaylistModifyPublic,
}

// NewAuthenticator builds the OAuth2 authenticator for the configured Spotify application.
func NewAuthenticator(creds shared.SpotifyConfig) (*spotifyauth.Authenticator, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	redirectURI := creds.RedirectURI
	if redirectURI == "" {
		redirectURI = shared.DefaultRedirectURI
	}

	return spotifyauth.New(
		spotifyauth.WithClientID(creds.ClientID),
		spotifyauth.WithClientSecret(creds.ClientSecret),
		spotifyauth.WithRedirectURL(redirectURI),
		spotifyauth.WithScopes(Scopes...),
	), nil
}

// Session is the authenticated connection to Spotify held for the lifetime of a command.
type Session struct {
	source *refreshableTokenSource
	client *http.Client

	mu     sync.Mutex
	closed bool
}

// NewSession wraps token in a refreshing [http.Client]. onRefresh, when non-nil, receives every new token.
func NewSession(ctx context.Context, auth *spotifyauth.Authenticator, token *oauth2.Token, onRefresh func(*oauth2.Token)) (*Session, error) {
	if auth == nil {
		return nil, fmt.Errorf("%w: nil authenticator", shared.ErrInvalidArgument)
	}
	if token == nil || token.AccessToken == "" {
		return nil, fmt.Errorf("%w: no stored token, run `plman auth` first", shared.ErrNotAuthenticated)
	}

	var src oauth2.TokenSource = oauth2.StaticTokenSource(token)
	if t, ok := auth.Client(ctx, token).Transport.(*oauth2.Transport); ok {
		src = t.Source
	}

	source := &refreshableTokenSource{source: src, callback: onRefresh, last: token.AccessToken}

	return &Session{
		source: source,
		client: oauth2.NewClient(ctx, source),
	}, nil
}

// Client returns the authenticated [http.Client].
func (s *Session) Client() *http.Client {
	return s.client
}

// Token returns the current token, refreshing it first if it has expired.
func (s *Session) Token() (*oauth2.Token, error) {
	return s.source.Token()
}

// Close releases idle connections. It is safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.client.CloseIdleConnections()
	return nil
}

// refreshableTokenSource reports new tokens to callback as they are minted by source.
type refreshableTokenSource struct {
	source   oauth2.TokenSource
	callback func(*oauth2.Token)

	mu   sync.Mutex
	last string
}

func (r *refreshableTokenSource) Token() (*oauth2.Token, error) {
	token, err := r.source.Token()
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	changed := token.AccessToken != r.last
	r.last = token.AccessToken
	r.mu.Unlock()

	if changed && r.callback != nil {
		r.callback(token)
	}
	return token, nil
}
