// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/desertthunder/biosync/internal/models"
)

// PollResult is one scripted answer of [FakePlayer].
type PollResult struct {
	State *models.PlaybackState
	Err   error
}

// FakePlayer is a test double for services.Player that replays scripted results.
//
// Once the script is exhausted the last result repeats. OnPoll, when set, runs after every poll.
type FakePlayer struct {
	mu      sync.Mutex
	Results []PollResult
	Tokens  []models.AccessToken
	OnPoll  func(n int)
	calls   int
}

func (f *FakePlayer) PlaybackState(ctx context.Context, token models.AccessToken) (*models.PlaybackState, error) {
	f.mu.Lock()
	f.calls++
	n := f.calls
	f.Tokens = append(f.Tokens, token)
	var result PollResult
	if len(f.Results) > 0 {
		idx := min(n-1, len(f.Results)-1)
		result = f.Results[idx]
	}
	onPoll := f.OnPoll
	f.mu.Unlock()

	if onPoll != nil {
		onPoll(n)
	}
	return result.State, result.Err
}

// Calls returns the number of polls made so far.
func (f *FakePlayer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// FakeBioWriter is a test double for services.BioWriter that records every write.
type FakeBioWriter struct {
	mu   sync.Mutex
	Bios []string
	// Errs are returned by successive calls; nil entries and calls past the end succeed.
	Errs []error
}

func (f *FakeBioWriter) SetBio(ctx context.Context, bio string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := len(f.Bios)
	f.Bios = append(f.Bios, bio)
	if n < len(f.Errs) {
		return f.Errs[n]
	}
	return nil
}

// Writes returns a copy of the recorded bios.
func (f *FakeBioWriter) Writes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Bios...)
}

// FakeRefresher is a test double for the scheduler's token refresher.
//
// Each refresh returns a token whose access token is "refreshed-N".
type FakeRefresher struct {
	mu    sync.Mutex
	Errs  []error
	calls int
}

func (f *FakeRefresher) Refresh(ctx context.Context, token models.AccessToken) (models.AccessToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls-1 < len(f.Errs) && f.Errs[f.calls-1] != nil {
		return models.AccessToken{}, f.Errs[f.calls-1]
	}
	token.AccessToken = "refreshed-" + strconv.Itoa(f.calls)
	return token, nil
}

// Calls returns the number of refreshes attempted.
func (f *FakeRefresher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Playing builds a playing state for track by artists.
func Playing(track string, artists ...string) *models.PlaybackState {
	credits := make([]models.Artist, 0, len(artists))
	for _, a := range artists {
		credits = append(credits, models.Artist{Name: a})
	}
	return &models.PlaybackState{IsPlaying: true, Item: models.Track{Name: track, Artists: credits}}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}
