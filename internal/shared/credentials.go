package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/desertthunder/biosync/internal/models"
)

// DefaultCredentialsPath is where `generate` writes and `run` reads the credentials document.
const DefaultCredentialsPath = "config.json"

// Credentials is the persisted JSON document holding everything needed to log in to both services.
type Credentials struct {
	App      models.AppCredentials `json:"spotifyAppInfo"`
	Token    models.AccessToken    `json:"spotifyCredentials"`
	Telegram models.TelegramLogin  `json:"telegramConfig"`
}

// Validate reports the first field that would make a login impossible.
func (c *Credentials) Validate() error {
	switch {
	case c.App.ClientID == "":
		return fmt.Errorf("%w: spotifyAppInfo.client_id", ErrMissingCredentials)
	case c.App.ClientSecret == "":
		return fmt.Errorf("%w: spotifyAppInfo.client_secret", ErrMissingCredentials)
	case c.Token.AccessToken == "" && c.Token.RefreshToken == "":
		return fmt.Errorf("%w: spotifyCredentials", ErrMissingCredentials)
	case c.Telegram.BotToken == "":
		return fmt.Errorf("%w: telegramConfig.bot_token", ErrMissingCredentials)
	}
	return nil
}

// CredentialStore loads and saves a [Credentials] document at a fixed path.
type CredentialStore struct {
	path string
}

// NewCredentialStore creates a store for path, falling back to [DefaultCredentialsPath].
func NewCredentialStore(path string) *CredentialStore {
	if path == "" {
		path = DefaultCredentialsPath
	}
	return &CredentialStore{path: path}
}

// Path returns the document location.
func (s *CredentialStore) Path() string {
	return s.path
}

// Exists reports whether the document is present. Absence means first run.
func (s *CredentialStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load reads and decodes the document.
func (s *CredentialStore) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, s.path)
	} else if err != nil {
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, s.path, err)
	}
	return &creds, nil
}

// Save writes the document with owner-only permissions, replacing any previous version.
func (s *CredentialStore) Save(creds *Credentials) error {
	if creds == nil {
		return fmt.Errorf("%w: nil credentials", ErrInvalidArgument)
	}

	data, err := MarshalJSON(creds, true)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create credentials directory: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace credentials: %w", err)
	}
	return nil
}

// SaveToken replaces the stored Spotify token, leaving the rest of the document untouched.
func (s *CredentialStore) SaveToken(token models.AccessToken) error {
	creds, err := s.Load()
	if err != nil {
		return err
	}
	creds.Token = token
	return s.Save(creds)
}

// MarshalJSON encodes v, indented when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
