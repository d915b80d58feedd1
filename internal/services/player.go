package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/biosync/internal/models"
	"github.com/desertthunder/biosync/internal/shared"
)

// SpotifyPlayer implements [Player] against GET /me/player.
type SpotifyPlayer struct {
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyPlayer creates a player client. A nil client gets a 30 second timeout.
func NewSpotifyPlayer(client *http.Client) *SpotifyPlayer {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &SpotifyPlayer{baseURL: spotifyBaseURL, httpClient: client}
}

// playerResponse mirrors the fields read from the player object. Pointers distinguish missing from zero.
type playerResponse struct {
	IsPlaying  *bool `json:"is_playing"`
	ProgressMS *int  `json:"progress_ms"`
	Item       *struct {
		Name       *string         `json:"name"`
		Artists    []models.Artist `json:"artists"`
		DurationMS int             `json:"duration_ms"`
	} `json:"item"`
}

// PlaybackState fetches the current playback.
//
// An empty body (no active device) is reported as a nil state. A 401 maps to [shared.ErrTokenExpired]
// so the caller can refresh before retrying.
func (p *SpotifyPlayer) PlaybackState(ctx context.Context, token models.AccessToken) (*models.PlaybackState, error) {
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token", shared.ErrMissingCredentials)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/me/player", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", token.Authorization())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrAPIRequest, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s", shared.ErrTokenExpired, string(body))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: spotify status %d, body: %s", shared.ErrAPIRequest, resp.StatusCode, string(body))
	}

	return parsePlaybackState(body)
}

func parsePlaybackState(body []byte) (*models.PlaybackState, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var raw playerResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &shared.PlaybackParseError{Err: err}
	}

	switch {
	case raw.IsPlaying == nil:
		return nil, &shared.PlaybackParseError{Field: "is_playing"}
	case raw.Item == nil && !*raw.IsPlaying:
		// paused with nothing loaded, displayed as idle either way
		return &models.PlaybackState{}, nil
	case raw.Item == nil:
		return nil, &shared.PlaybackParseError{Field: "item"}
	case raw.Item.Name == nil:
		return nil, &shared.PlaybackParseError{Field: "item.name"}
	case raw.Item.Artists == nil:
		return nil, &shared.PlaybackParseError{Field: "item.artists"}
	}

	state := &models.PlaybackState{
		IsPlaying: *raw.IsPlaying,
		Item: models.Track{
			Name:       *raw.Item.Name,
			Artists:    raw.Item.Artists,
			DurationMS: raw.Item.DurationMS,
		},
	}
	if raw.ProgressMS != nil {
		state.ProgressMS = *raw.ProgressMS
	}
	return state, nil
}
