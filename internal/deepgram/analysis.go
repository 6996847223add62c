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
	"time"

	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/core"
)

// Transcription and analysis query parameters.
const (
	paramModel     = "model"
	paramLanguage  = "language"
	paramSentiment = "sentiment"
	paramTopics    = "topics"
	paramIntents   = "intents"
	paramSummarize = "summarize"

	valueTrue        = "true"
	valueSummarizeV2 = "v2"
	paramSmartFormat = "smart_format"
)

// Static analysis errors.
var (
	// ErrNilSource indicates an analysis request without a source.
	ErrNilSource = fmt.Errorf("%w: analysis request has no source", core.ErrInvalidInput)
	// ErrEmptyTranscript indicates the service produced no transcript.
	// Usually the audio URL, model, or credentials are wrong.
	ErrEmptyTranscript = errors.New("empty transcript; check the audio, model, or credentials")
)

// AnalysisClient is the adapter for transcription and text intelligence.
type AnalysisClient struct {
	httpClient *http.Client
	apiKey     string
	listenURL  string
	readURL    string
}

// NewAnalysisClient creates an analysis adapter. Empty URLs fall back to the
// hosted service defaults; the API key is not validated until the first call.
func NewAnalysisClient(apiKey, listenURL, readURL string, timeout time.Duration) *AnalysisClient {
	if listenURL == "" {
		listenURL = DefaultListenURL
	}

	if readURL == "" {
		readURL = DefaultReadURL
	}

	return &AnalysisClient{
		httpClient: newHTTPClient(timeout),
		apiKey:     apiKey,
		listenURL:  listenURL,
		readURL:    readURL,
	}
}

// listenResponse is the transcription response shape, reduced to the fields
// the platform consumes.
type listenResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// readResponse is the text-intelligence response shape, reduced to the
// average sentiment and the topic and intent segments.
type readResponse struct {
	Results struct {
		Sentiments struct {
			Average struct {
				Sentiment      string  `json:"sentiment"`
				SentimentScore float64 `json:"sentiment_score"`
			} `json:"average"`
		} `json:"sentiments"`
		Topics struct {
			Segments []struct {
				Topics []struct {
					Topic           string  `json:"topic"`
					ConfidenceScore float64 `json:"confidence_score"`
				} `json:"topics"`
			} `json:"segments"`
		} `json:"topics"`
		Intents struct {
			Segments []struct {
				Intents []struct {
					Intent          string  `json:"intent"`
					ConfidenceScore float64 `json:"confidence_score"`
				} `json:"intents"`
			} `json:"segments"`
		} `json:"intents"`
	} `json:"results"`
}

// Analyze transcribes the source when it is audio, then runs text
// intelligence over the transcript. Text sources skip transcription and the
// returned result carries an empty transcript.
func (c *AnalysisClient) Analyze(
	ctx context.Context,
	req core.AnalysisRequest,
) (*core.AnalysisResult, error) {
	validationErr := c.validateRequest(req)
	if validationErr != nil {
		return nil, validationErr
	}

	if c.apiKey == "" {
		return nil, core.ErrMissingAPIKey
	}

	switch source := req.Source.(type) {
	case *core.TextSource:
		result, err := c.analyzeText(ctx, source.Text, req.Language)
		if err != nil {
			return nil, err
		}

		return result, nil
	case *core.SpeechSource:
		transcript, err := c.transcribe(ctx, source, req.Model)
		if err != nil {
			return nil, err
		}

		result, err := c.analyzeText(ctx, transcript, req.Language)
		if err != nil {
			return nil, err
		}

		result.Transcript = transcript

		return result, nil
	default:
		return nil, ErrNilSource
	}
}

func (c *AnalysisClient) validateRequest(req core.AnalysisRequest) error {
	if req.Source == nil {
		return ErrNilSource
	}

	if !req.Model.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnsupportedModel, req.Model)
	}

	if !req.Language.Valid() {
		return fmt.Errorf("%w: %q", core.ErrUnsupportedLanguage, req.Language)
	}

	return nil
}

// transcribe sends the audio to the transcription endpoint, either by URL
// reference or as raw bytes with the upload's MIME hint.
func (c *AnalysisClient) transcribe(
	ctx context.Context,
	source *core.SpeechSource,
	model core.Model,
) (string, error) {
	query := url.Values{}
	query.Set(paramModel, string(model))
	query.Set(paramSmartFormat, valueTrue)

	var (
		body        []byte
		contentType string
	)

	if source.URL != "" {
		payload, err := json.Marshal(map[string]string{"url": source.URL})
		if err != nil {
			return "", fmt.Errorf("failed to marshal transcription request: %w", err)
		}

		body = payload
		contentType = contentTypeJSON
	} else {
		body = source.Data

		contentType = source.MIMEHint
		if contentType == "" {
			contentType = contentTypeBinary
		}
	}

	responseBody, err := c.post(ctx, c.listenURL+"?"+query.Encode(), contentType, body)
	if err != nil {
		return "", err
	}

	var parsed listenResponse

	err = json.Unmarshal(responseBody, &parsed)
	if err != nil {
		return "", fmt.Errorf("failed to decode transcription response: %w", err)
	}

	if len(parsed.Results.Channels) == 0 ||
		len(parsed.Results.Channels[0].Alternatives) == 0 ||
		parsed.Results.Channels[0].Alternatives[0].Transcript == "" {
		return "", ErrEmptyTranscript
	}

	return parsed.Results.Channels[0].Alternatives[0].Transcript, nil
}

// analyzeText runs text intelligence over the text and normalizes the
// segmented response into the flat domain result.
func (c *AnalysisClient) analyzeText(
	ctx context.Context,
	text string,
	language core.Language,
) (*core.AnalysisResult, error) {
	query := url.Values{}
	query.Set(paramLanguage, string(language))
	query.Set(paramSentiment, valueTrue)
	query.Set(paramTopics, valueTrue)
	query.Set(paramIntents, valueTrue)
	query.Set(paramSummarize, valueSummarizeV2)

	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis request: %w", err)
	}

	responseBody, err := c.post(ctx, c.readURL+"?"+query.Encode(), contentTypeJSON, payload)
	if err != nil {
		return nil, err
	}

	var parsed readResponse

	err = json.Unmarshal(responseBody, &parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to decode analysis response: %w", err)
	}

	return normalizeAnalysis(&parsed), nil
}

// normalizeAnalysis flattens the segmented provider response. Absent values
// stay absent: a missing sentiment yields nil, not a defaulted label.
func normalizeAnalysis(parsed *readResponse) *core.AnalysisResult {
	result := &core.AnalysisResult{
		Transcript: "",
		Sentiment:  nil,
		Topics:     nil,
		Intents:    nil,
	}

	average := parsed.Results.Sentiments.Average
	if average.Sentiment != "" {
		result.Sentiment = &core.Sentiment{
			Label:      average.Sentiment,
			Confidence: average.SentimentScore,
		}
	}

	for _, segment := range parsed.Results.Topics.Segments {
		for _, topic := range segment.Topics {
			result.Topics = append(result.Topics, core.Topic{
				Label:      topic.Topic,
				Confidence: topic.ConfidenceScore,
			})
		}
	}

	for _, segment := range parsed.Results.Intents.Segments {
		for _, intent := range segment.Intents {
			result.Intents = append(result.Intents, core.Intent{
				Label:      intent.Intent,
				Confidence: intent.ConfidenceScore,
			})
		}
	}

	return result
}

// post issues one request and returns the response body, mapping failures
// onto the error taxonomy.
func (c *AnalysisClient) post(
	ctx context.Context,
	requestURL, contentType string,
	body []byte,
) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		requestURL,
		bytes.NewReader(body),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set(headerAuthorization, authSchemeToken+c.apiKey)
	httpReq.Header.Set(headerContentType, contentType)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyResponse(resp.StatusCode, responseBody)
	}

	return responseBody, nil
}
