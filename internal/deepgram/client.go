// Package deepgram provides the HTTP adapters for the hosted speech
// service: transcription plus text intelligence, and text-to-speech.
//
// The adapters are thin typed wrappers: one attempt per call, a deadline on
// every request, and no retry logic. Failures are mapped onto the core error
// taxonomy so callers never inspect HTTP details.
package deepgram

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/core"
)

// Default service endpoints.
const (
	DefaultListenURL = "https://api.deepgram.com/v1/listen"
	DefaultReadURL   = "https://api.deepgram.com/v1/read"
	DefaultSpeakURL  = "https://api.deepgram.com/v1/speak"
)

// Default client behavior.
const (
	DefaultTimeout = 30 * time.Second
)

// HTTP headers and content types.
const (
	headerAuthorization = "Authorization"
	headerContentType   = "Content-Type"
	headerAccept        = "Accept"
	authSchemeToken     = "Token "
	contentTypeJSON     = "application/json"
	contentTypeMP3      = "audio/mpeg"
	contentTypeBinary   = "application/octet-stream"
)

// serviceError is the provider's structured error body. Parsing it is best
// effort; a non-JSON body is surfaced raw.
type serviceError struct {
	ErrCode string `json:"err_code"`
	ErrMsg  string `json:"err_msg"`
}

// classifyResponse maps a non-2xx provider response onto the error taxonomy:
// credential rejections become ErrAuth, everything else an
// ExternalServiceError carrying the provider detail.
func classifyResponse(statusCode int, body []byte) error {
	detail := string(body)

	var parsed serviceError

	err := json.Unmarshal(body, &parsed)
	if err == nil && parsed.ErrMsg != "" {
		detail = parsed.ErrMsg
		if parsed.ErrCode != "" {
			detail = fmt.Sprintf("%s (code: %s)", parsed.ErrMsg, parsed.ErrCode)
		}
	}

	if statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden {
		return fmt.Errorf("%w: %s", core.ErrAuth, detail)
	}

	return &core.ExternalServiceError{
		StatusCode: statusCode,
		Message:    detail,
	}
}

// classifyTransport maps transport-level failures: an exceeded deadline
// becomes ErrTimeout, anything else is wrapped unchanged.
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", core.ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", core.ErrTimeout, err)
	}

	return fmt.Errorf("failed to reach speech service: %w", err)
}

// newHTTPClient builds the underlying client with the adapter deadline.
func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &http.Client{
		Transport:     nil,
		CheckRedirect: nil,
		Jar:           nil,
		Timeout:       timeout,
	}
}
