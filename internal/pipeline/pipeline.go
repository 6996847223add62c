// Package pipeline orchestrates the request flow of the platform: input
// normalization, analysis, session bookkeeping, sanitization, and cached
// speech synthesis.
//
// The pipeline is the only component that writes session state. It never
// retries external calls; retry-on-user-action is the only retry mechanism.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/book-expert/logger"

	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/core"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/narrative"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/normalize"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/sanitize"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/session"
)

// DefaultCallTimeout bounds each external call so a hung service cannot
// stall the session indefinitely.
const DefaultCallTimeout = 30 * time.Second

// Static pipeline errors.
var (
	// ErrNoAnalysis indicates the session has no analysis result yet.
	ErrNoAnalysis = errors.New("no analysis result available in this session")
	// ErrNoTranscript indicates the last analysis carried no transcript,
	// which is the case for direct text input.
	ErrNoTranscript = errors.New("last analysis has no transcript")
)

// Pipeline wires the platform components together around session state.
type Pipeline struct {
	analyzer    core.Analyzer
	synthesizer core.Synthesizer
	sanitizer   *sanitize.Sanitizer
	renderer    *narrative.Renderer
	log         *logger.Logger
	callTimeout time.Duration
}

// New creates a pipeline. A non-positive callTimeout falls back to
// DefaultCallTimeout.
func New(
	analyzer core.Analyzer,
	synthesizer core.Synthesizer,
	sanitizer *sanitize.Sanitizer,
	renderer *narrative.Renderer,
	log *logger.Logger,
	callTimeout time.Duration,
) *Pipeline {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}

	return &Pipeline{
		analyzer:    analyzer,
		synthesizer: synthesizer,
		sanitizer:   sanitizer,
		renderer:    renderer,
		log:         log,
		callTimeout: callTimeout,
	}
}

// Analyze normalizes the input, runs it through the analyzer with the
// session's selected model and language, and records the result on success.
// Validation failures reject the request before any external call is made,
// and a failed analysis leaves the session's last result untouched.
func (p *Pipeline) Analyze(
	ctx context.Context,
	state *session.State,
	input normalize.Input,
) (*core.AnalysisResult, error) {
	source, err := normalize.Normalize(input)
	if err != nil {
		return nil, err
	}

	selection := state.Selection()

	req := core.AnalysisRequest{
		Source:   source,
		Model:    selection.Model,
		Language: selection.Language,
	}

	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()

	result, err := p.analyzer.Analyze(callCtx, req)
	if err != nil {
		p.log.Error("Analysis failed for session %s: %v", state.ID(), err)

		return nil, err
	}

	state.SetLastAnalysis(result)
	p.log.Info(
		"Analysis completed for session %s (%d topics, %d intents)",
		state.ID(), len(result.Topics), len(result.Intents),
	)

	return result, nil
}

// Speak renders the text with the session's selected voice. See SpeakAs.
func (p *Pipeline) Speak(
	ctx context.Context,
	state *session.State,
	text string,
) ([]byte, error) {
	return p.SpeakAs(ctx, state, text, state.Selection().Voice)
}

// SpeakAs sanitizes the text and renders it with the given voice, going
// through the session's synthesis cache: a repeated (text, voice, language)
// render is served from the cache without a second paid call, and
// concurrent identical requests collapse into one upstream call.
func (p *Pipeline) SpeakAs(
	ctx context.Context,
	state *session.State,
	text string,
	voice core.Voice,
) ([]byte, error) {
	sanitized := p.sanitizer.Sanitize(text)
	if sanitized == "" {
		return nil, core.ErrEmptyText
	}

	if !voice.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrUnsupportedVoice, voice)
	}

	req := core.SynthesisRequest{
		Text:     sanitized,
		Voice:    voice,
		Language: state.Selection().Language,
	}

	audio, err := state.Cache().GetOrCreate(ctx, req,
		func(produceCtx context.Context) ([]byte, error) {
			callCtx, cancel := context.WithTimeout(produceCtx, p.callTimeout)
			defer cancel()

			return p.synthesizer.Synthesize(callCtx, req)
		})
	if err != nil {
		p.log.Error("Synthesis failed for session %s: %v", state.ID(), err)

		return nil, err
	}

	p.log.Info(
		"Synthesized %d bytes for session %s (voice: %s)",
		len(audio), state.ID(), voice,
	)

	return audio, nil
}

// Narrate renders the session's last analysis result into a markdown
// narrative.
func (p *Pipeline) Narrate(state *session.State) (string, error) {
	last := state.LastAnalysis()
	if last == nil {
		return "", ErrNoAnalysis
	}

	text, err := p.renderer.Render(last)
	if err != nil {
		return "", err
	}

	return text, nil
}

// SpeakTranscript renders the last analysis transcript with the session's
// selected voice.
func (p *Pipeline) SpeakTranscript(
	ctx context.Context,
	state *session.State,
) ([]byte, error) {
	last := state.LastAnalysis()
	if last == nil {
		return nil, ErrNoAnalysis
	}

	if last.Transcript == "" {
		return nil, ErrNoTranscript
	}

	return p.Speak(ctx, state, last.Transcript)
}

// SpeakNarrative renders the last analysis narrative as speech. The
// narrative is flattened into prose first so list markers are not read
// aloud.
func (p *Pipeline) SpeakNarrative(
	ctx context.Context,
	state *session.State,
) ([]byte, error) {
	text, err := p.Narrate(state)
	if err != nil {
		return nil, err
	}

	return p.Speak(ctx, state, p.sanitizer.SanitizeNarrative(text))
}
