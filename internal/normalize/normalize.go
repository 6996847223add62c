// Package normalize turns heterogeneous user input (audio URL, raw text, or
// an uploaded file) into a canonical analysis source.
//
// Validation here is purely syntactic: URLs are checked for shape, never
// fetched, and uploads are checked against the extension whitelist only.
// Retrieval and format handling are the speech service's concern.
package normalize

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/core"
)

// Kind identifies which input surface the payload came from.
type Kind string

// Supported input kinds.
const (
	KindURL  Kind = "url"
	KindText Kind = "text"
	KindFile Kind = "file"
)

// URL schemes accepted for remote audio.
const (
	schemeHTTP  = "http"
	schemeHTTPS = "https"
)

// ErrUnknownKind is returned for an input kind outside the supported set.
var ErrUnknownKind = fmt.Errorf("%w: unknown input kind", core.ErrInvalidInput)

// mimeHints maps whitelisted upload extensions to the MIME hint sent to the
// transcription endpoint.
var mimeHints = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".webm": "audio/webm",
}

// Input carries one raw user submission. Exactly the fields relevant to the
// kind are consulted: URL for KindURL, Text for KindText, FileName and Data
// for KindFile.
type Input struct {
	Kind     Kind
	URL      string
	Text     string
	FileName string
	Data     []byte
}

// Normalize validates the input and constructs the canonical source for it.
// It is a pure function with no side effects; every rejection wraps
// core.ErrInvalidInput.
func Normalize(in Input) (core.Source, error) {
	switch in.Kind {
	case KindURL:
		return normalizeURL(in.URL)
	case KindText:
		return normalizeText(in.Text)
	case KindFile:
		return normalizeFile(in.FileName, in.Data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, in.Kind)
	}
}

func normalizeURL(rawURL string) (core.Source, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, core.ErrEmptyPayload
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", core.ErrMalformedURL, trimmed)
	}

	if (parsed.Scheme != schemeHTTP && parsed.Scheme != schemeHTTPS) || parsed.Host == "" {
		return nil, fmt.Errorf("%w: %s", core.ErrMalformedURL, trimmed)
	}

	return &core.SpeechSource{
		URL:      trimmed,
		Data:     nil,
		MIMEHint: "",
	}, nil
}

func normalizeText(text string) (core.Source, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, core.ErrEmptyText
	}

	return &core.TextSource{Text: trimmed}, nil
}

func normalizeFile(fileName string, data []byte) (core.Source, error) {
	if len(data) == 0 {
		return nil, core.ErrEmptyPayload
	}

	extension := strings.ToLower(filepath.Ext(fileName))

	mimeHint, ok := mimeHints[extension]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, extension)
	}

	return &core.SpeechSource{
		URL:      "",
		Data:     data,
		MIMEHint: mimeHint,
	}, nil
}
