package config

import (
	"strings"
	"testing"
)

// mapBackend is an in-memory ConfigBackend for tests.
type mapBackend struct {
	data map[string]any
}

func (b *mapBackend) GetString(key string) (string, bool, error) {
	v, ok := b.data[key]
	if !ok {
		return "", false, nil
	}
	s, isStr := v.(string)
	if !isStr {
		return "", false, nil
	}
	return s, true, nil
}

func (b *mapBackend) GetInt(key string) (int, bool, error) {
	v, ok := b.data[key]
	if !ok {
		return 0, false, nil
	}
	i, isInt := v.(int)
	if !isInt {
		return 0, false, nil
	}
	return i, true, nil
}

func (b *mapBackend) SetString(key, val string) error { b.data[key] = val; return nil }
func (b *mapBackend) SetInt(key string, val int) error { b.data[key] = val; return nil }
func (b *mapBackend) Delete(key string) error          { delete(b.data, key); return nil }

func clearEnv(t *testing.T) {
	t.Helper()
	for _, s := range specs {
		if s.env != "" {
			t.Setenv(s.env, "")
		}
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("IRONCOACH_GEMINI_API_KEY", "test-key")
	t.Setenv("IRONCOACH_AUTH_BASE_URL", "https://auth.example.com")

	cfg, err := loadWith(&mapBackend{data: map[string]any{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8787 {
		t.Errorf("Server.Port = %d, want 8787", cfg.Server.Port)
	}
	if cfg.Server.AllowedOrigin != "*" {
		t.Errorf("Server.AllowedOrigin = %q, want %q", cfg.Server.AllowedOrigin, "*")
	}
	if cfg.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("Gemini.Model = %q, want %q", cfg.Gemini.Model, "gemini-2.5-pro")
	}
	if cfg.Chat.HistoryLimit != 10 {
		t.Errorf("Chat.HistoryLimit = %d, want 10", cfg.Chat.HistoryLimit)
	}
	if cfg.Auth.Mode != "remote" {
		t.Errorf("Auth.Mode = %q, want %q", cfg.Auth.Mode, "remote")
	}
}

func TestEnvOverridesBackend(t *testing.T) {
	clearEnv(t)
	t.Setenv("IRONCOACH_GEMINI_API_KEY", "test-key")
	t.Setenv("IRONCOACH_AUTH_BASE_URL", "https://auth.example.com")
	t.Setenv("IRONCOACH_SERVER_PORT", "9999")

	cfg, err := loadWith(&mapBackend{data: map[string]any{"server.port": 1234}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want env override 9999", cfg.Server.Port)
	}
}

func TestMissingGeminiKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("IRONCOACH_AUTH_BASE_URL", "https://auth.example.com")

	_, err := loadWith(&mapBackend{data: map[string]any{}})
	if err == nil {
		t.Fatal("expected error for missing Gemini API key, got nil")
	}
	if !strings.Contains(err.Error(), "missing required config") {
		t.Errorf("error = %q, want it to mention missing required config", err)
	}
}

func TestStaticModeRequiresToken(t *testing.T) {
	clearEnv(t)
	t.Setenv("IRONCOACH_GEMINI_API_KEY", "test-key")
	t.Setenv("IRONCOACH_AUTH_MODE", "static")

	_, err := loadWith(&mapBackend{data: map[string]any{}})
	if err == nil {
		t.Fatal("expected error for missing static token, got nil")
	}

	t.Setenv("IRONCOACH_AUTH_TOKEN", "operator-token")
	cfg, err := loadWith(&mapBackend{data: map[string]any{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Auth.Token != "operator-token" {
		t.Errorf("Auth.Token = %q, want %q", cfg.Auth.Token, "operator-token")
	}
}

func TestInvalidAuthMode(t *testing.T) {
	clearEnv(t)
	t.Setenv("IRONCOACH_GEMINI_API_KEY", "test-key")
	t.Setenv("IRONCOACH_AUTH_MODE", "oauth")

	_, err := loadWith(&mapBackend{data: map[string]any{}})
	if err == nil {
		t.Fatal("expected error for invalid auth mode, got nil")
	}
}

func TestSecretKeysHiddenFromShowAll(t *testing.T) {
	clearEnv(t)
	t.Setenv("IRONCOACH_GEMINI_API_KEY", "super-secret")
	t.Setenv("IRONCOACH_AUTH_BASE_URL", "https://auth.example.com")

	cfg, err := loadWith(&mapBackend{data: map[string]any{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, k := range ShowAll(cfg) {
		if k.Key == "gemini.api_key" || k.Key == "auth.token" || k.Key == "auth.anon_key" {
			t.Errorf("secret key %q exposed by ShowAll", k.Key)
		}
		if strings.Contains(k.Value, "super-secret") {
			t.Errorf("secret value leaked via key %q", k.Key)
		}
	}
}
