// Package config reads the walkthrough CLI settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	PageTerminal = "terminal"
	PageBrowser  = "browser"

	AudioMiniaudio = "miniaudio"
	AudioPortaudio = "portaudio"
	AudioNone      = "none"
)

var ErrInvalidSetting = errors.New("invalid setting")

type Config struct {
	DeepgramAPIKey string
	// Voice is the Deepgram speech voice; empty means the default voice
	Voice string
	// Model and Language configure recognition
	Model    string
	Language string

	Page     string
	URL      string
	Audio    string
	Headless bool
}

func Default() Config {
	return Config{
		Model:    "nova-3",
		Language: "en-US",
		Page:     PageTerminal,
		Audio:    AudioMiniaudio,
	}
}

// Load reads the given .env files, or .env in the working directory when
// none are given, and then the process environment. A missing .env file is
// not an error. Variables already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a config from lookup on top of [Default].
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	str := func(key string, dst *string) {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*dst = strings.TrimSpace(value)
		}
	}
	str("DEEPGRAM_API_KEY", &cfg.DeepgramAPIKey)
	str("WALKTHROUGH_VOICE", &cfg.Voice)
	str("WALKTHROUGH_STT_MODEL", &cfg.Model)
	str("WALKTHROUGH_LANGUAGE", &cfg.Language)
	str("WALKTHROUGH_PAGE", &cfg.Page)
	str("WALKTHROUGH_URL", &cfg.URL)
	str("WALKTHROUGH_AUDIO", &cfg.Audio)

	if value, ok := lookup("WALKTHROUGH_HEADLESS"); ok && value != "" {
		headless, err := strconv.ParseBool(value)
		if err != nil {
			return Config{}, fmt.Errorf("%w: WALKTHROUGH_HEADLESS=%q", ErrInvalidSetting, value)
		}
		cfg.Headless = headless
	}

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Page {
	case PageTerminal:
	case PageBrowser:
		if c.URL == "" {
			return fmt.Errorf("%w: browser page needs a url", ErrInvalidSetting)
		}
	default:
		return fmt.Errorf("%w: unknown page %q", ErrInvalidSetting, c.Page)
	}

	switch c.Audio {
	case AudioMiniaudio, AudioPortaudio, AudioNone:
	default:
		return fmt.Errorf("%w: unknown audio backend %q", ErrInvalidSetting, c.Audio)
	}
	return nil
}

// Speech reports whether Deepgram can be used for narration and
// recognition.
func (c Config) Speech() bool {
	return c.DeepgramAPIKey != ""
}
