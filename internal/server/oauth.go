package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/biosync/internal/models"
	"github.com/desertthunder/biosync/internal/shared"
)

// CallbackPath is the route Spotify redirects to after the consent page.
const CallbackPath = "/callback"

// CodeExchanger turns a redirect into a token pair. [services.SpotifyAuth] implements it.
type CodeExchanger interface {
	ParseCallback(uri string) (string, error)
	ExchangeCode(ctx context.Context, code string) (models.AccessToken, error)
}

// OAuthResult contains the result of an OAuth authorization flow.
type OAuthResult struct {
	Token models.AccessToken
	err   error
}

func (o *OAuthResult) Error() error {
	return o.err
}

// OAuthHandler handles the authorization code callback.
// Implements the [Handler] interface for registration with a [Router].
type OAuthHandler struct {
	exchanger   CodeExchanger
	state       string
	resultChan  chan OAuthResult
	once        sync.Once
	callbackHit bool
	mu          sync.Mutex
}

// NewOAuthHandler creates a handler that accepts a single callback carrying state.
func NewOAuthHandler(exchanger CodeExchanger, state string) *OAuthHandler {
	return &OAuthHandler{
		exchanger:  exchanger,
		state:      state,
		resultChan: make(chan OAuthResult, 1),
	}
}

// Routes returns the HTTP routes this handler serves.
func (h *OAuthHandler) Routes() []Route {
	return []Route{{Method: http.MethodGet, Path: CallbackPath}}
}

// ServeHTTP validates state, exchanges the code, and sends the result through the result channel.
func (h *OAuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.callbackHit {
		h.mu.Unlock()
		http.Error(w, "Callback already processed", http.StatusBadRequest)
		return
	}
	h.callbackHit = true
	h.mu.Unlock()

	if state := r.URL.Query().Get("state"); state != h.state {
		h.Send(OAuthResult{err: shared.ErrStateMismatch})
		http.Error(w, "Invalid state parameter", http.StatusBadRequest)
		return
	}

	code, err := h.exchanger.ParseCallback(r.URL.String())
	if err != nil {
		h.Send(OAuthResult{err: err})
		http.Error(w, "Authorization failed", http.StatusBadRequest)
		return
	}

	token, err := h.exchanger.ExchangeCode(r.Context(), code)
	if err != nil {
		h.Send(OAuthResult{err: fmt.Errorf("token exchange failed: %w", err)})
		http.Error(w, "Token exchange failed", http.StatusInternalServerError)
		return
	}

	h.Send(OAuthResult{Token: token})

	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, successPage)
}

// Send sends the OAuth result through the channel (only once).
func (h *OAuthHandler) Send(result OAuthResult) {
	h.once.Do(func() {
		h.resultChan <- result
		close(h.resultChan)
	})
}

// Result returns the result channel for receiving OAuth flow completion.
//
// Channel will receive exactly one result and then be closed.
func (h *OAuthHandler) Result() <-chan OAuthResult {
	return h.resultChan
}

// CaptureOpts configures [CaptureCallback].
type CaptureOpts struct {
	Addr    string        // host:port to listen on
	Timeout time.Duration // zero waits until ctx is done
	Logger  *log.Logger
	// Ready, when set, receives the bound address once the listener is up.
	Ready func(addr string)
}

// CaptureCallback serves h on a temporary local server until one callback arrives,
// then shuts the server down and returns the token.
func CaptureCallback(ctx context.Context, h *OAuthHandler, opts CaptureOpts) (models.AccessToken, error) {
	logger := opts.Logger
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	ln, err := net.Listen("tcp", opts.Addr)
	if err != nil {
		return models.AccessToken{}, fmt.Errorf("%w: listen on %s: %v", shared.ErrListen, opts.Addr, err)
	}

	router := NewBasicRouter()
	router.Use(Logging(logger))
	router.Handler(h)
	httpServer := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("waiting for OAuth callback", "addr", ln.Addr().String())
		if err := httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error shutting down server", "error", err)
		}
	}()

	if opts.Ready != nil {
		opts.Ready(ln.Addr().String())
	}

	var timeout <-chan time.Time
	if opts.Timeout > 0 {
		timer := time.NewTimer(opts.Timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case result := <-h.Result():
		if result.Error() != nil {
			return models.AccessToken{}, result.Error()
		}
		return result.Token, nil
	case err := <-serverErrors:
		return models.AccessToken{}, fmt.Errorf("server error: %w", err)
	case <-timeout:
		return models.AccessToken{}, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, opts.Timeout)
	case <-ctx.Done():
		return models.AccessToken{}, fmt.Errorf("%w: %v", shared.ErrAborted, ctx.Err())
	}
}

const successPage = `
<!DOCTYPE html>
<html>
<head>
    <title>biosync</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #121212; }
        .card { text-align: center; background: #181818; padding: 2rem; border-radius: 8px; }
        h1 { color: #1DB954; margin: 0 0 1rem 0; }
        p { color: #b3b3b3; margin: 0; }
    </style>
</head>
<body>
    <div class="card">
        <h1>Spotify connected</h1>
        <p>Return to the terminal to finish setting up biosync.</p>
    </div>
</body>
</html>
`
