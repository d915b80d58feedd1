// Package services implements the three remote collaborators of the poll loop.
//
// # Spotify Accounts
//
// [SpotifyAuth] implements [TokenService] with [oauth2.Config] pointed at the Spotify accounts
// service. Client credentials go in a Basic Authorization header. Rejected grants surface as
// [shared.AuthorizationError] carrying the service's error and error_description; transport
// failures wrap [shared.ErrAPIRequest] (code exchange) or [shared.ErrRefreshFailed] (refresh).
//
// Unlike an [oauth2.Client], nothing here refreshes tokens behind the caller's back: the scheduler
// owns the token and decides when to call [SpotifyAuth.Refresh].
//
// # Spotify Player
//
// [SpotifyPlayer] reads GET /me/player with the token's own type in the Authorization header.
//   - empty body : nothing playing, returned as a nil state
//   - 401 : [shared.ErrTokenExpired]
//   - missing is_playing or item fields : [shared.PlaybackParseError]
//
// # Telegram
//
// [TelegramBio] implements [BioWriter] with the Bot API's setMyShortDescription method.
// Writes are spaced by a [rate.Limiter] so a flapping player cannot flood the API.
package services
