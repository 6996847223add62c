package deepgram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/core"
)

// Synthesis request shaping.
const (
	// DefaultMaxSynthesisRunes bounds the text sent to the paid synthesis
	// endpoint. Longer text is truncated with an ellipsis.
	DefaultMaxSynthesisRunes = 1000

	truncationSuffix = "..."

	// speakModelFormat assembles the Aura-2 model name from voice and
	// language, e.g. "aura-2-thalia-en".
	speakModelFormat = "aura-2-%s-%s"
)

// ErrEmptyAudio indicates the service returned a successful status with no
// audio payload.
var ErrEmptyAudio = errors.New("received empty audio data")

// SynthesisClient is the adapter for text-to-speech rendering.
type SynthesisClient struct {
	httpClient *http.Client
	apiKey     string
	speakURL   string
	maxRunes   int
}

// NewSynthesisClient creates a synthesis adapter. An empty URL falls back to
// the hosted service default and a non-positive maxRunes to
// DefaultMaxSynthesisRunes. The API key is not validated until the first
// call.
func NewSynthesisClient(apiKey, speakURL string, maxRunes int, timeout time.Duration) *SynthesisClient {
	if speakURL == "" {
		speakURL = DefaultSpeakURL
	}

	if maxRunes <= 0 {
		maxRunes = DefaultMaxSynthesisRunes
	}

	return &SynthesisClient{
		httpClient: newHTTPClient(timeout),
		apiKey:     apiKey,
		speakURL:   speakURL,
		maxRunes:   maxRunes,
	}
}

// Synthesize renders the request text into MP3 audio bytes with the selected
// voice persona. One attempt, no retries; a failed render returns the mapped
// taxonomy error and nothing else.
func (c *SynthesisClient) Synthesize(
	ctx context.Context,
	req core.SynthesisRequest,
) ([]byte, error) {
	validationErr := c.validateRequest(req)
	if validationErr != nil {
		return nil, validationErr
	}

	if c.apiKey == "" {
		return nil, core.ErrMissingAPIKey
	}

	text := truncateRunes(req.Text, c.maxRunes)

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal synthesis request: %w", err)
	}

	model := fmt.Sprintf(speakModelFormat, req.Voice, req.Language)

	query := url.Values{}
	query.Set(paramModel, model)

	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.speakURL+"?"+query.Encode(),
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(headerAuthorization, authSchemeToken+c.apiKey)
	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set(headerAccept, contentTypeMP3)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio data: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyResponse(resp.StatusCode, responseBody)
	}

	contentType := resp.Header.Get(headerContentType)
	if !strings.HasPrefix(contentType, "audio/") {
		return nil, fmt.Errorf(
			"unexpected content type: expected audio, got %s",
			contentType,
		)
	}

	if len(responseBody) == 0 {
		return nil, ErrEmptyAudio
	}

	return responseBody, nil
}

func (c *SynthesisClient) validateRequest(req core.SynthesisRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return core.ErrEmptyText
	}

	if !req.Voice.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnsupportedVoice, req.Voice)
	}

	if !req.Language.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnsupportedLanguage, req.Language)
	}

	return nil
}

// truncateRunes shortens text to at most limit runes, marking the cut with
// an ellipsis.
func truncateRunes(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}

	return string(runes[:limit]) + truncationSuffix
}
