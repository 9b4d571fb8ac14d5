// Package config loads the relay configuration from a TOML file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

const defaultTimeoutMinutes = 60

// Config holds the settings for one relay run.
type Config struct {
	// BotToken is the Telegram bot credential.
	BotToken string `toml:"bot_token"`
	// UserID is the sole authorized correspondent; prompts are sent to it
	// and only its replies count.
	UserID int64 `toml:"user_id"`
	// TimeoutMinutes bounds the wait for a reply.
	TimeoutMinutes int `toml:"timeout_minutes"`
}

// Timeout returns the reply deadline as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

// DefaultPath returns the per-OS config file location: XDG config dir on
// Linux (HOME/.config fallback), Application Support on macOS, APPDATA on
// Windows.
func DefaultPath() (string, error) {
	switch runtime.GOOS {
	case "windows":
		appdata := os.Getenv("APPDATA")
		if appdata == "" {
			return "", fmt.Errorf("APPDATA environment variable is not set")
		}
		return filepath.Join(appdata, "teleprompt", "config.toml"), nil
	case "darwin":
		home := os.Getenv("HOME")
		if home == "" {
			return "", fmt.Errorf("HOME environment variable is not set")
		}
		return filepath.Join(home, "Library", "Application Support", "teleprompt", "config.toml"), nil
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "teleprompt", "config.toml"), nil
		}
		home := os.Getenv("HOME")
		if home == "" {
			return "", fmt.Errorf("HOME environment variable is not set")
		}
		return filepath.Join(home, ".config", "teleprompt", "config.toml"), nil
	}
}

// Load reads the TOML config at path and applies TELEPROMPT_* environment
// overrides on top. The file may be absent when the environment supplies
// every required value.
func Load(path string) (Config, error) {
	cfg := Config{TimeoutMinutes: defaultTimeoutMinutes}

	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Tolerated; validation below fails unless the environment fills
		// in the required fields.
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if v := os.Getenv("TELEPROMPT_BOT_TOKEN"); v != "" {
		cfg.BotToken = v
	}
	if v := os.Getenv("TELEPROMPT_USER_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("TELEPROMPT_USER_ID must be an integer: %w", err)
		}
		cfg.UserID = id
	}
	if v := os.Getenv("TELEPROMPT_TIMEOUT_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("TELEPROMPT_TIMEOUT_MINUTES must be an integer: %w", err)
		}
		cfg.TimeoutMinutes = n
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("bot_token is required (config file or TELEPROMPT_BOT_TOKEN)")
	}
	if c.UserID == 0 {
		return fmt.Errorf("user_id is required (config file or TELEPROMPT_USER_ID)")
	}
	if c.TimeoutMinutes <= 0 {
		return fmt.Errorf("timeout_minutes must be positive, got %d", c.TimeoutMinutes)
	}
	return nil
}
