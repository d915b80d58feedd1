// Spotify accounts service implementation of [TokenService]
//
// Endpoints documented at https://developer.spotify.com/documentation/web-api/tutorials/code-flow
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/desertthunder/biosync/internal/models"
	"github.com/desertthunder/biosync/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// ScopeUserReadPlaybackState grants read access to the player endpoint.
	ScopeUserReadPlaybackState = "user-read-playback-state"
)

// DefaultScopes are requested by the generate flow.
var DefaultScopes = []string{ScopeUserReadPlaybackState}

// SpotifyAuth implements [TokenService] on top of [oauth2.Config].
//
// Client credentials are sent in a Basic Authorization header on every token request.
type SpotifyAuth struct {
	config     *oauth2.Config
	httpClient *http.Client
}

// NewSpotifyAuth creates a token client for the given application credentials.
func NewSpotifyAuth(app models.AppCredentials, client *http.Client) (*SpotifyAuth, error) {
	if app.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}
	if app.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	return &SpotifyAuth{
		config: &oauth2.Config{
			ClientID:     app.ClientID,
			ClientSecret: app.ClientSecret,
			RedirectURL:  app.RedirectURI,
			Endpoint: oauth2.Endpoint{
				AuthURL:   spotifyAuthURL,
				TokenURL:  spotifyTokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: client,
	}, nil
}

// AuthorizationURL returns the authorize endpoint with client_id, response_type=code, redirect_uri
// and the space-joined scopes. state is only added when non-empty.
func (a *SpotifyAuth) AuthorizationURL(state string, scopes []string) string {
	config := *a.config
	config.Scopes = scopes
	return config.AuthCodeURL(state)
}

// ParseCallback returns the code query parameter of a redirect URI.
//
// A redirect carrying an error parameter (user denied access) yields an [shared.AuthorizationError].
func (a *SpotifyAuth) ParseCallback(uri string) (string, error) {
	return ParseCallback(uri)
}

// ParseCallback is the stateless form of [SpotifyAuth.ParseCallback].
func ParseCallback(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrMalformedCallback, err)
	}

	query := u.Query()
	if code := query.Get("error"); code != "" {
		return "", &shared.AuthorizationError{Code: code, Description: query.Get("error_description")}
	}

	code := query.Get("code")
	if code == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrMalformedCallback, uri)
	}
	return code, nil
}

// ExchangeCode performs the authorization_code grant.
func (a *SpotifyAuth) ExchangeCode(ctx context.Context, code string) (models.AccessToken, error) {
	if code == "" {
		return models.AccessToken{}, fmt.Errorf("%w: authorization code", shared.ErrMissingArgument)
	}

	tok, err := a.config.Exchange(a.clientContext(ctx), code)
	if err != nil {
		return models.AccessToken{}, tokenError(err, shared.ErrAPIRequest)
	}
	return accessTokenFrom(tok), nil
}

// Refresh performs the refresh_token grant.
//
// The returned token keeps token.RefreshToken unless the service issued a new one.
func (a *SpotifyAuth) Refresh(ctx context.Context, token models.AccessToken) (models.AccessToken, error) {
	if token.RefreshToken == "" {
		return models.AccessToken{}, shared.ErrNoRefreshToken
	}

	// An empty access token is never valid, so the source always hits the token endpoint.
	src := a.config.TokenSource(a.clientContext(ctx), &oauth2.Token{RefreshToken: token.RefreshToken})
	tok, err := src.Token()
	if err != nil {
		return models.AccessToken{}, tokenError(err, shared.ErrRefreshFailed)
	}

	refreshed := accessTokenFrom(tok)
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = token.RefreshToken
	}
	if refreshed.Scope == "" {
		refreshed.Scope = token.Scope
	}
	return refreshed, nil
}

func (a *SpotifyAuth) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
}

// tokenError maps an [oauth2.RetrieveError] carrying an error code to [shared.AuthorizationError]
// and wraps everything else with sentinel.
func tokenError(err error, sentinel error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		if rErr.ErrorCode != "" {
			return &shared.AuthorizationError{Code: rErr.ErrorCode, Description: rErr.ErrorDescription}
		}
		if rErr.Response != nil {
			return fmt.Errorf("%w: status %d, body: %s", sentinel, rErr.Response.StatusCode, string(rErr.Body))
		}
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

func accessTokenFrom(tok *oauth2.Token) models.AccessToken {
	token := models.AccessToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    expiresIn(tok),
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		token.Scope = scope
	}
	return token
}

// expiresIn prefers the raw expires_in field and falls back to the computed expiry.
func expiresIn(tok *oauth2.Token) int {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return int(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return int(n)
		}
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}

	if tok.Expiry.IsZero() {
		return 0
	}
	return int(time.Until(tok.Expiry).Round(time.Second) / time.Second)
}
