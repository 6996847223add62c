package pipeline_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/book-expert/logger"

	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/cache"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/core"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/narrative"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/normalize"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/pipeline"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/sanitize"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/session"
)

var errAnalyzerDown = errors.New("analysis backend unavailable")

// mockAnalyzer is a test double for the analysis adapter.
type mockAnalyzer struct {
	result      *core.AnalysisResult
	err         error
	calls       int
	lastRequest core.AnalysisRequest
}

func (m *mockAnalyzer) Analyze(
	_ context.Context,
	req core.AnalysisRequest,
) (*core.AnalysisResult, error) {
	m.calls++
	m.lastRequest = req

	if m.err != nil {
		return nil, m.err
	}

	return m.result, nil
}

// mockSynthesizer is a test double for the synthesis adapter.
type mockSynthesizer struct {
	audio        []byte
	err          error
	calls        int
	lastRequests []core.SynthesisRequest
}

func (m *mockSynthesizer) Synthesize(
	_ context.Context,
	req core.SynthesisRequest,
) ([]byte, error) {
	m.calls++
	m.lastRequests = append(m.lastRequests, req)

	if m.err != nil {
		return nil, m.err
	}

	return m.audio, nil
}

// testHarness bundles the pipeline under test with its doubles and a session.
type testHarness struct {
	pipeline    *pipeline.Pipeline
	state       *session.State
	analyzer    *mockAnalyzer
	synthesizer *mockSynthesizer
}

func newTestHarness(t *testing.T) *testHarness {
	t.Helper()

	log, err := logger.New(t.TempDir(), "pipeline_test.log")
	if err != nil {
		t.Fatalf("Failed to create test logger: %v", err)
	}

	t.Cleanup(func() { _ = log.Close() })

	analyzer := &mockAnalyzer{
		result: &core.AnalysisResult{
			Transcript: "hello from the spacewalk",
			Sentiment:  &core.Sentiment{Label: "positive", Confidence: 0.8},
			Topics:     []core.Topic{{Label: "space", Confidence: 0.9}},
			Intents:    []core.Intent{{Label: "inform", Confidence: 0.7}},
		},
		err:         nil,
		calls:       0,
		lastRequest: core.AnalysisRequest{Source: nil, Model: "", Language: ""},
	}
	synthesizer := &mockSynthesizer{
		audio:        []byte("mp3-bytes"),
		err:          nil,
		calls:        0,
		lastRequests: nil,
	}

	sanitizer := sanitize.New()
	sessions := session.NewStore(sanitizer, cache.DefaultCapacity, session.DefaultSelection())

	return &testHarness{
		pipeline: pipeline.New(
			analyzer, synthesizer, sanitizer, narrative.New(), log, 0,
		),
		state:       sessions.Begin(),
		analyzer:    analyzer,
		synthesizer: synthesizer,
	}
}

func textInput(text string) normalize.Input {
	return normalize.Input{
		Kind:     normalize.KindText,
		URL:      "",
		Text:     text,
		FileName: "",
		Data:     nil,
	}
}

func TestPipeline_Analyze_RecordsResult(t *testing.T) {
	t.Parallel()

	harness := newTestHarness(t)

	result, err := harness.pipeline.Analyze(
		context.Background(), harness.state, textInput("I love space."),
	)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if result.Transcript != "hello from the spacewalk" {
		t.Errorf("Unexpected result transcript %q", result.Transcript)
	}

	if harness.state.LastAnalysis() != result {
		t.Error("Expected the result to be recorded on the session")
	}

	selection := harness.state.Selection()
	if harness.analyzer.lastRequest.Model != selection.Model {
		t.Errorf(
			"Expected the session model %q, got %q",
			selection.Model, harness.analyzer.lastRequest.Model,
		)
	}

	if harness.analyzer.lastRequest.Language != selection.Language {
		t.Errorf(
			"Expected the session language %q, got %q",
			selection.Language, harness.analyzer.lastRequest.Language,
		)
	}
}

func TestPipeline_Analyze_InvalidInputSkipsExternalCall(t *testing.T) {
	t.Parallel()

	harness := newTestHarness(t)

	_, err := harness.pipeline.Analyze(
		context.Background(), harness.state, textInput("   "),
	)
	if !errors.Is(err, core.ErrInvalidInput) {
		t.Fatalf("Expected a validation error, got %v", err)
	}

	if harness.analyzer.calls != 0 {
		t.Error("Expected no analyzer call for invalid input")
	}

	if harness.state.LastAnalysis() != nil {
		t.Error("Expected no recorded result for invalid input")
	}
}

func TestPipeline_Analyze_FailureLeavesLastResult(t *testing.T) {
	t.Parallel()

	harness := newTestHarness(t)

	previous, err := harness.pipeline.Analyze(
		context.Background(), harness.state, textInput("first request"),
	)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	harness.analyzer.err = errAnalyzerDown

	_, err = harness.pipeline.Analyze(
		context.Background(), harness.state, textInput("second request"),
	)
	if !errors.Is(err, errAnalyzerDown) {
		t.Fatalf("Expected the analyzer error, got %v", err)
	}

	if harness.state.LastAnalysis() != previous {
		t.Error("Expected a failed analysis to leave the previous result in place")
	}
}

func TestPipeline_Speak_CachesRepeatedRequests(t *testing.T) {
	t.Parallel()

	harness := newTestHarness(t)

	first, err := harness.pipeline.SpeakAs(
		context.Background(), harness.state, "Hi", core.VoiceZeus,
	)
	if err != nil {
		t.Fatalf("First SpeakAs failed: %v", err)
	}

	second, err := harness.pipeline.SpeakAs(
		context.Background(), harness.state, "Hi", core.VoiceZeus,
	)
	if err != nil {
		t.Fatalf("Second SpeakAs failed: %v", err)
	}

	if harness.synthesizer.calls != 1 {
		t.Errorf("Expected one synthesis call for repeated requests, got %d", harness.synthesizer.calls)
	}

	if !bytes.Equal(first, second) {
		t.Error("Expected byte-identical audio on repeat requests")
	}
}

func TestPipeline_Speak_SanitizesBeforeSynthesis(t *testing.T) {
	t.Parallel()

	harness := newTestHarness(t)

	_, err := harness.pipeline.Speak(
		context.Background(), harness.state, "**Hello** world!",
	)
	if err != nil {
		t.Fatalf("Speak failed: %v", err)
	}

	if len(harness.synthesizer.lastRequests) != 1 {
		t.Fatalf("Expected one synthesis request, got %d", len(harness.synthesizer.lastRequests))
	}

	sent := harness.synthesizer.lastRequests[0]
	if sent.Text != "Hello world!" {
		t.Errorf("Expected sanitized text to be synthesized, got %q", sent.Text)
	}

	// A markup variant of the same text must hit the cached render.
	_, err = harness.pipeline.Speak(
		context.Background(), harness.state, "Hello world!",
	)
	if err != nil {
		t.Fatalf("Speak failed: %v", err)
	}

	if harness.synthesizer.calls != 1 {
		t.Errorf("Expected the markup variant to be served from cache, got %d calls", harness.synthesizer.calls)
	}
}

func TestPipeline_Speak_EmptyAfterSanitization(t *testing.T) {
	t.Parallel()

	harness := newTestHarness(t)

	_, err := harness.pipeline.Speak(context.Background(), harness.state, "***###***")
	if !errors.Is(err, core.ErrEmptyText) {
		t.Fatalf("Expected ErrEmptyText, got %v", err)
	}

	if harness.synthesizer.calls != 0 {
		t.Error("Expected no synthesis call for markup-only text")
	}
}

func TestPipeline_SpeakAs_RejectsUnknownVoice(t *testing.T) {
	t.Parallel()

	harness := newTestHarness(t)

	_, err := harness.pipeline.SpeakAs(
		context.Background(), harness.state, "Hello", "hera",
	)
	if !errors.Is(err, core.ErrUnsupportedVoice) {
		t.Fatalf("Expected ErrUnsupportedVoice, got %v", err)
	}

	if harness.synthesizer.calls != 0 {
		t.Error("Expected no synthesis call for an unknown voice")
	}
}

func TestPipeline_Speak_FailureNotCached(t *testing.T) {
	t.Parallel()

	harness := newTestHarness(t)
	harness.synthesizer.err = fmt.Errorf("%w: credentials rejected", core.ErrAuth)

	_, err := harness.pipeline.Speak(context.Background(), harness.state, "Hi")
	if !errors.Is(err, core.ErrAuth) {
		t.Fatalf("Expected the synthesis error, got %v", err)
	}

	harness.synthesizer.err = nil

	audio, err := harness.pipeline.Speak(context.Background(), harness.state, "Hi")
	if err != nil {
		t.Fatalf("Retry after failure failed: %v", err)
	}

	if !bytes.Equal(audio, harness.synthesizer.audio) {
		t.Errorf("Expected the retried render, got %q", audio)
	}

	if harness.synthesizer.calls != 2 {
		t.Errorf("Expected the retry to reach the synthesizer, got %d calls", harness.synthesizer.calls)
	}
}

func TestPipeline_Narrate(t *testing.T) {
	t.Parallel()

	harness := newTestHarness(t)

	_, err := harness.pipeline.Narrate(harness.state)
	if !errors.Is(err, pipeline.ErrNoAnalysis) {
		t.Fatalf("Expected ErrNoAnalysis before any analysis, got %v", err)
	}

	_, err = harness.pipeline.Analyze(
		context.Background(), harness.state, textInput("I love space."),
	)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	text, err := harness.pipeline.Narrate(harness.state)
	if err != nil {
		t.Fatalf("Narrate failed: %v", err)
	}

	if text == "" {
		t.Error("Expected a non-empty narrative")
	}
}

func TestPipeline_SpeakTranscript(t *testing.T) {
	t.Parallel()

	harness := newTestHarness(t)

	_, err := harness.pipeline.SpeakTranscript(context.Background(), harness.state)
	if !errors.Is(err, pipeline.ErrNoAnalysis) {
		t.Fatalf("Expected ErrNoAnalysis before any analysis, got %v", err)
	}

	_, err = harness.pipeline.Analyze(
		context.Background(), harness.state, textInput("I love space."),
	)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	audio, err := harness.pipeline.SpeakTranscript(context.Background(), harness.state)
	if err != nil {
		t.Fatalf("SpeakTranscript failed: %v", err)
	}

	if !bytes.Equal(audio, harness.synthesizer.audio) {
		t.Errorf("Expected the synthesized transcript audio, got %q", audio)
	}

	sent := harness.synthesizer.lastRequests[0]
	if sent.Text != "hello from the spacewalk" {
		t.Errorf("Expected the transcript to be synthesized, got %q", sent.Text)
	}
}

func TestPipeline_SpeakTranscript_TextOnlyAnalysis(t *testing.T) {
	t.Parallel()

	harness := newTestHarness(t)
	harness.analyzer.result = &core.AnalysisResult{
		Transcript: "",
		Sentiment:  nil,
		Topics:     nil,
		Intents:    nil,
	}

	_, err := harness.pipeline.Analyze(
		context.Background(), harness.state, textInput("direct text"),
	)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	_, err = harness.pipeline.SpeakTranscript(context.Background(), harness.state)
	if !errors.Is(err, pipeline.ErrNoTranscript) {
		t.Errorf("Expected ErrNoTranscript for a text-only analysis, got %v", err)
	}
}

func TestPipeline_SpeakNarrative_FlattensListMarkers(t *testing.T) {
	t.Parallel()

	harness := newTestHarness(t)

	_, err := harness.pipeline.Analyze(
		context.Background(), harness.state, textInput("I love space."),
	)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	_, err = harness.pipeline.SpeakNarrative(context.Background(), harness.state)
	if err != nil {
		t.Fatalf("SpeakNarrative failed: %v", err)
	}

	if len(harness.synthesizer.lastRequests) != 1 {
		t.Fatalf("Expected one synthesis request, got %d", len(harness.synthesizer.lastRequests))
	}

	sent := harness.synthesizer.lastRequests[0]
	for _, marker := range []string{"###", "**", "- "} {
		if bytes.Contains([]byte(sent.Text), []byte(marker)) {
			t.Errorf("Expected %q to be stripped from the spoken narrative, got %q", marker, sent.Text)
		}
	}
}
