package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		value, ok := env[key]
		return value, ok
	}
}

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(nil))
	if err != nil {
		t.Fatalf("expected defaults to be valid, got %v", err)
	}
	if cfg != Default() {
		t.Fatalf("expected default config, got %+v", cfg)
	}
	if cfg.Speech() {
		t.Fatalf("expected no speech without an api key")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	cfg, err := FromEnv(lookupFrom(map[string]string{
		"DEEPGRAM_API_KEY":     "key",
		"WALKTHROUGH_VOICE":    "aura-2-orion-en",
		"WALKTHROUGH_PAGE":     "browser",
		"WALKTHROUGH_URL":      "http://localhost:3000",
		"WALKTHROUGH_AUDIO":    "none",
		"WALKTHROUGH_HEADLESS": "true",
	}))
	if err != nil {
		t.Fatalf("expected config to be valid, got %v", err)
	}
	if !cfg.Speech() || cfg.Voice != "aura-2-orion-en" {
		t.Fatalf("expected speech settings, got %+v", cfg)
	}
	if cfg.Page != PageBrowser || cfg.URL != "http://localhost:3000" || !cfg.Headless {
		t.Fatalf("expected browser settings, got %+v", cfg)
	}
	if cfg.Audio != AudioNone {
		t.Fatalf("expected no audio, got %q", cfg.Audio)
	}
}

func TestFromEnvInvalid(t *testing.T) {
	tests := []map[string]string{
		{"WALKTHROUGH_HEADLESS": "sometimes"},
		{"WALKTHROUGH_PAGE": "desktop"},
		{"WALKTHROUGH_PAGE": "browser"},
		{"WALKTHROUGH_AUDIO": "alsa"},
	}

	for _, env := range tests {
		if _, err := FromEnv(lookupFrom(env)); !errors.Is(err, ErrInvalidSetting) {
			t.Fatalf("expected ErrInvalidSetting for %v, got %v", env, err)
		}
	}
}

func TestLoadReadsEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("WALKTHROUGH_VOICE=aura-2-luna-en\n"), 0o600); err != nil {
		t.Fatalf("expected env file to be written, got %v", err)
	}
	t.Setenv("WALKTHROUGH_VOICE", "")
	os.Unsetenv("WALKTHROUGH_VOICE")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}
	if cfg.Voice != "aura-2-luna-en" {
		t.Fatalf("expected voice from env file, got %q", cfg.Voice)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("expected a missing env file to be ignored, got %v", err)
	}
}
