// package services implements the HTTP clients biosync talks to:
// the Spotify accounts service, the Spotify player endpoint and the Telegram Bot API.
package services

import (
	"context"

	"github.com/desertthunder/biosync/internal/models"
)

// TokenService performs the OAuth2 grants against the Spotify accounts service.
type TokenService interface {
	// AuthorizationURL builds the page the user visits to grant access.
	AuthorizationURL(state string, scopes []string) string

	// ParseCallback extracts the authorization code from a redirect URI.
	ParseCallback(uri string) (string, error)

	// ExchangeCode trades an authorization code for a token pair.
	ExchangeCode(ctx context.Context, code string) (models.AccessToken, error)

	// Refresh obtains a fresh access token using token's refresh token.
	Refresh(ctx context.Context, token models.AccessToken) (models.AccessToken, error)
}

// Player reads the user's current playback.
type Player interface {
	// PlaybackState returns nil with no error when nothing is playing on any device.
	PlaybackState(ctx context.Context, token models.AccessToken) (*models.PlaybackState, error)
}

// BioWriter replaces the profile text on the messaging service.
type BioWriter interface {
	// SetBio blocks until the service acknowledges the update.
	SetBio(ctx context.Context, bio string) error
}

var (
	_ TokenService = (*SpotifyAuth)(nil)
	_ Player       = (*SpotifyPlayer)(nil)
	_ BioWriter    = (*TelegramBio)(nil)
)
