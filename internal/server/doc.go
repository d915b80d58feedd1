// Package server captures the Spotify OAuth2 redirect on a short-lived local HTTP server.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first). [Logging] is the only
// middleware in use and never records query strings.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
//
// # OAuth Callback Handler
//
// [OAuthHandler] validates the state parameter, hands the redirect to a [CodeExchanger], and sends the
// result through a channel. It only processes one callback.
//
// [CaptureCallback] binds the configured address (127.0.0.1:8888 by default, which must match the
// redirect URI registered for the Spotify app), waits for that one callback, and shuts down.
package server
