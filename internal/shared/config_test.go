package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Poll.IntervalSeconds != 10 {
			t.Errorf("expected poll interval 10, got %d", config.Poll.IntervalSeconds)
		}

		if config.Poll.CyclePolls != 10 {
			t.Errorf("expected 10 polls per cycle, got %d", config.Poll.CyclePolls)
		}

		if !config.Poll.PersistRefreshedToken {
			t.Error("expected refreshed tokens to be persisted by default")
		}

		if config.Bio.Variant != "ru" {
			t.Errorf("expected bio variant ru, got %s", config.Bio.Variant)
		}

		if config.Poll.Interval() != 10*time.Second {
			t.Errorf("expected interval 10s, got %v", config.Poll.Interval())
		}

		if config.Server.Addr() != "127.0.0.1:8888" {
			t.Errorf("expected server addr 127.0.0.1:8888, got %s", config.Server.Addr())
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should be valid: %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if *config != *DefaultConfig() {
			t.Errorf("created config doesn't match default: %+v", config)
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[poll]
interval_seconds = 3
cycle_polls = 4

[bio]
variant = "en"
playing = "{track} by {artists}"

[log]
level = "debug"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Poll.IntervalSeconds != 3 || config.Poll.CyclePolls != 4 {
			t.Errorf("expected poll 3s x 4, got %+v", config.Poll)
		}

		if config.Bio.Variant != "en" || config.Bio.Playing != "{track} by {artists}" {
			t.Errorf("unexpected bio config %+v", config.Bio)
		}

		if config.Server.Port != 8888 {
			t.Errorf("expected unset keys to keep defaults, got port %d", config.Server.Port)
		}

		if config.Log.Level != "debug" {
			t.Errorf("expected log level debug, got %s", config.Log.Level)
		}
	})

	t.Run("LoadConfig rejects invalid values", func(t *testing.T) {
		tc := []struct {
			name string
			body string
		}{
			{name: "zero interval", body: "[poll]\ninterval_seconds = 0\n"},
			{name: "negative cycle", body: "[poll]\ncycle_polls = -1\n"},
			{name: "negative max length", body: "[bio]\nmax_length = -5\n"},
			{name: "not toml", body: "[poll\n"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				configPath := filepath.Join(t.TempDir(), "config.toml")
				if err := os.WriteFile(configPath, []byte(tt.body), 0644); err != nil {
					t.Fatalf("failed to write test config: %v", err)
				}

				_, err := LoadConfig(configPath)
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestBrowserCommand(t *testing.T) {
	tc := []struct {
		goos    string
		want    string
		wantErr bool
	}{
		{goos: "darwin", want: "open"},
		{goos: "linux", want: "xdg-open"},
		{goos: "windows", want: "rundll32"},
		{goos: "plan9", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.goos, func(t *testing.T) {
			name, args, err := browserCommand(tt.goos, "https://example.com")
			if tt.wantErr {
				if err == nil {
					t.Error("expected error for unsupported platform")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.want {
				t.Errorf("expected %s, got %s", tt.want, name)
			}
			if args[len(args)-1] != "https://example.com" {
				t.Errorf("expected url as last argument, got %v", args)
			}
		})
	}
}
