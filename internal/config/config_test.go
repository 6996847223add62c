// Package config_test tests the configuration structure for the platform.
package config_test

import (
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/config"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	tomlData := `
[nats]
url = "nats://127.0.0.1:4222"
analysis_subject = "speech.analysis.requested"
synthesis_subject = "speech.synthesis.requested"
audio_object_store_bucket = "SPEECH_AUDIO"

[deepgram]
listen_url = "https://api.deepgram.com/v1/listen"
read_url = "https://api.deepgram.com/v1/read"
speak_url = "https://api.deepgram.com/v1/speak"
model = "nova-3-general"
language = "en"
voice = "thalia"
timeout_seconds = 30
max_synthesis_chars = 1000

[session]
cache_capacity = 64

[paths]
base_logs_dir = "/var/log/speech-intelligence"
`

	var cfg config.Config

	err := toml.Unmarshal([]byte(tomlData), &cfg)
	require.NoError(t, err)

	assert.Equal(t, "nats://127.0.0.1:4222", cfg.NATS.URL)
	assert.Equal(t, "speech.analysis.requested", cfg.NATS.AnalysisSubject)
	assert.Equal(t, "speech.synthesis.requested", cfg.NATS.SynthesisSubject)
	assert.Equal(t, "SPEECH_AUDIO", cfg.NATS.AudioObjectStoreBucket)
	assert.Equal(t, "https://api.deepgram.com/v1/listen", cfg.Deepgram.ListenURL)
	assert.Equal(t, "https://api.deepgram.com/v1/read", cfg.Deepgram.ReadURL)
	assert.Equal(t, "https://api.deepgram.com/v1/speak", cfg.Deepgram.SpeakURL)
	assert.Equal(t, "nova-3-general", cfg.Deepgram.Model)
	assert.Equal(t, "en", cfg.Deepgram.Language)
	assert.Equal(t, "thalia", cfg.Deepgram.Voice)
	assert.Equal(t, 30, cfg.Deepgram.TimeoutSeconds)
	assert.Equal(t, 30*time.Second, cfg.Deepgram.Timeout())
	assert.Equal(t, 1000, cfg.Deepgram.MaxSynthesisChars)
	assert.Equal(t, 64, cfg.Session.CacheCapacity)
	assert.Equal(t, "/var/log/speech-intelligence", cfg.Paths.BaseLogsDir)
}
