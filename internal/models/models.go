// package models defines the data passed between the Spotify client, the bio formatter and the scheduler.
package models

// AppCredentials identifies the calling application to Spotify.
type AppCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	RedirectURI  string `json:"redirect_uri"`
}

// AccessToken is the OAuth2 token pair returned by the Spotify accounts service.
//
// A refresh replaces AccessToken, TokenType, Scope and ExpiresIn; RefreshToken only changes
// when the service hands out a new one.
type AccessToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	Scope        string `json:"scope"`
	ExpiresIn    int    `json:"expires_in"` // seconds
}

// Authorization returns the value of the Authorization header for API requests.
func (t AccessToken) Authorization() string {
	tokenType := t.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return tokenType + " " + t.AccessToken
}

// Artist is a track credit. Only the name is used for display.
type Artist struct {
	Name string `json:"name"`
}

// Track is the item currently loaded in the player.
type Track struct {
	Name       string   `json:"name"`
	Artists    []Artist `json:"artists"`
	DurationMS int      `json:"duration_ms"`
}

// ArtistNames returns the artist names in credit order.
func (t Track) ArtistNames() []string {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	return names
}

// PlaybackState is a single snapshot of the user's player.
type PlaybackState struct {
	IsPlaying  bool  `json:"is_playing"`
	ProgressMS int   `json:"progress_ms"`
	Item       Track `json:"item"`
}

// Playing reports whether s describes something audible. A nil state is idle.
func (s *PlaybackState) Playing() bool {
	return s != nil && s.IsPlaying
}

// TelegramLogin holds the parameters needed to sign in to the Telegram Bot API.
type TelegramLogin struct {
	BotToken     string `json:"bot_token"`
	APIEndpoint  string `json:"api_endpoint,omitempty"`  // defaults to the public Bot API
	LanguageCode string `json:"language_code,omitempty"` // empty applies to all users
}
