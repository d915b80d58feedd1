package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Authentication errors
	ErrAuthFailed        = fmt.Errorf("authentication failed")
	ErrTokenExpired      = fmt.Errorf("access token expired")
	ErrRefreshFailed     = fmt.Errorf("token refresh failed")
	ErrNoRefreshToken    = fmt.Errorf("no refresh token available")
	ErrMalformedCallback = fmt.Errorf("callback URI has no authorization code")
	ErrStateMismatch     = fmt.Errorf("invalid state parameter")
	ErrTimeout           = fmt.Errorf("operation timed out")

	// API and service errors
	ErrAPIRequest = fmt.Errorf("API request failed")
	ErrListen     = fmt.Errorf("could not listen for callback")
	ErrBioUpdate  = fmt.Errorf("bio update failed")

	// Input validation errors
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrAborted         = fmt.Errorf("aborted by user")
)

// AuthorizationError is returned when the Spotify accounts service rejects a grant.
//
// Code and Description mirror the error and error_description fields of the response body.
type AuthorizationError struct {
	Code        string
	Description string
}

func (e *AuthorizationError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("spotify authorization error: %s", e.Code)
	}
	return fmt.Sprintf("spotify authorization error: %s: %s", e.Code, e.Description)
}

// Unwrap lets callers match any rejected grant with [ErrAuthFailed].
func (e *AuthorizationError) Unwrap() error {
	return ErrAuthFailed
}

// PlaybackParseError reports a player response that could not be turned into a playback state.
type PlaybackParseError struct {
	Field string // missing field, empty when the body is not valid JSON
	Err   error
}

func (e *PlaybackParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("malformed playback state: missing %s", e.Field)
	}
	return fmt.Sprintf("malformed playback state: %v", e.Err)
}

func (e *PlaybackParseError) Unwrap() error {
	return e.Err
}
