package config

import (
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Gemini  GeminiConfig
	Chat    ChatConfig
	Storage StorageConfig
	Log     LogConfig
}

type ServerConfig struct {
	Port          int
	AllowedOrigin string
}

// AuthConfig selects how bearer credentials are resolved to identities.
//
// Mode "remote" verifies tokens against a GoTrue-compatible auth service
// (BaseURL + AnonKey). Mode "static" accepts a single operator token and maps
// it to a fixed identity; it exists for local development and the CLI.
type AuthConfig struct {
	Mode    string
	BaseURL string
	AnonKey string
	Token   string
	UserID  string
	Email   string
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type ChatConfig struct {
	HistoryLimit int
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:          8787,
			AllowedOrigin: "*",
		},
		Auth: AuthConfig{
			Mode:   "remote",
			UserID: "operator",
			Email:  "operator@localhost",
		},
		Gemini: GeminiConfig{
			Model:   "gemini-2.5-pro",
			BaseURL: "https://generativelanguage.googleapis.com/v1",
		},
		Chat: ChatConfig{
			HistoryLimit: 10,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "ironcoach-data"
		}
	}
	return filepath.Join(dir, "ironcoach")
}

// Load reads configuration from the file backend and environment variables.
// Environment variables (IRONCOACH_*) override backend values. Secrets (the
// Gemini API key, auth tokens) are environment-only and never written to disk.
func Load() (Config, error) {
	return loadWith(newFileBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if cfg.Gemini.APIKey == "" {
		return Config{}, fmt.Errorf("missing required config: Gemini API key. Set it via environment variable IRONCOACH_GEMINI_API_KEY")
	}

	switch cfg.Auth.Mode {
	case "remote":
		if cfg.Auth.BaseURL == "" {
			return Config{}, fmt.Errorf("missing required config: auth base URL for remote mode. Set auth.base_url or IRONCOACH_AUTH_BASE_URL")
		}
	case "static":
		if cfg.Auth.Token == "" {
			return Config{}, fmt.Errorf("missing required config: static auth token. Set it via environment variable IRONCOACH_AUTH_TOKEN")
		}
	default:
		return Config{}, fmt.Errorf("invalid auth.mode %q (want \"remote\" or \"static\")", cfg.Auth.Mode)
	}

	return cfg, nil
}
