// Package config provides the configuration structure for the speech
// intelligence platform.
package config

import (
	"fmt"
	"time"

	"github.com/book-expert/configurator"
	"github.com/book-expert/logger"
)

// NATSConfig holds the configuration for the NATS job surface.
type NATSConfig struct {
	URL                    string `toml:"url"`
	AnalysisSubject        string `toml:"analysis_subject"`
	SynthesisSubject       string `toml:"synthesis_subject"`
	AudioObjectStoreBucket string `toml:"audio_object_store_bucket"`
}

// DeepgramConfig holds the speech service endpoints and the default
// selection a fresh session starts with. Empty endpoint URLs fall back to
// the hosted service defaults. The API key itself is never configured here;
// it comes from the DEEPGRAM_API_KEY environment variable at first use.
type DeepgramConfig struct {
	ListenURL         string `toml:"listen_url"`
	ReadURL           string `toml:"read_url"`
	SpeakURL          string `toml:"speak_url"`
	Model             string `toml:"model"`
	Language          string `toml:"language"`
	Voice             string `toml:"voice"`
	TimeoutSeconds    int    `toml:"timeout_seconds"`
	MaxSynthesisChars int    `toml:"max_synthesis_chars"`
}

// Timeout returns the per-call deadline for external requests.
func (c *DeepgramConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SessionConfig holds per-session tuning.
type SessionConfig struct {
	CacheCapacity int `toml:"cache_capacity"`
}

// PathsConfig holds the configuration for file paths.
type PathsConfig struct {
	BaseLogsDir string `toml:"base_logs_dir"`
}

// Config is the root configuration structure.
type Config struct {
	NATS     NATSConfig     `toml:"nats"`
	Deepgram DeepgramConfig `toml:"deepgram"`
	Session  SessionConfig  `toml:"session"`
	Paths    PathsConfig    `toml:"paths"`
}

// Load loads the configuration for the platform.
func Load(log *logger.Logger) (*Config, error) {
	var cfg Config

	err := configurator.Load(&cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from configurator: %w", err)
	}

	return &cfg, nil
}
