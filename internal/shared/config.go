package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application settings loaded from a TOML file.
type Config struct {
	Poll     PollConfig     `toml:"poll"`
	Bio      BioConfig      `toml:"bio"`
	Telegram TelegramConfig `toml:"telegram"`
	Server   ServerConfig   `toml:"server"`
	Log      LogConfig      `toml:"log"`
}

// PollConfig controls the scheduler cadence.
type PollConfig struct {
	IntervalSeconds       int  `toml:"interval_seconds"`
	CyclePolls            int  `toml:"cycle_polls"`
	PersistRefreshedToken bool `toml:"persist_refreshed_token"`
}

// Interval returns the poll interval as a [time.Duration].
func (p PollConfig) Interval() time.Duration {
	return time.Duration(p.IntervalSeconds) * time.Second
}

// BioConfig selects and overrides the presentation strings.
type BioConfig struct {
	Variant   string `toml:"variant"`
	Idle      string `toml:"idle"`
	Playing   string `toml:"playing"`
	MaxLength int    `toml:"max_length"`
}

// TelegramConfig contains settings for profile writes.
type TelegramConfig struct {
	MinUpdateSeconds int `toml:"min_update_seconds"`
}

// MinUpdateInterval returns the minimum spacing between two profile writes.
func (t TelegramConfig) MinUpdateInterval() time.Duration {
	return time.Duration(t.MinUpdateSeconds) * time.Second
}

// ServerConfig contains the OAuth callback listener settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// Validate rejects settings the scheduler cannot run with.
func (c *Config) Validate() error {
	if c.Poll.IntervalSeconds <= 0 {
		return fmt.Errorf("%w: poll.interval_seconds must be positive", ErrInvalidConfig)
	}
	if c.Poll.CyclePolls <= 0 {
		return fmt.Errorf("%w: poll.cycle_polls must be positive", ErrInvalidConfig)
	}
	if c.Bio.MaxLength < 0 {
		return fmt.Errorf("%w: bio.max_length must not be negative", ErrInvalidConfig)
	}
	if c.Telegram.MinUpdateSeconds < 0 {
		return fmt.Errorf("%w: telegram.min_update_seconds must not be negative", ErrInvalidConfig)
	}
	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
