// Package worker provides a NATS worker that processes analysis and
// synthesis jobs against session-scoped state.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/book-expert/logger"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/core"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/normalize"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/pipeline"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/session"
)

const handleMessageTimeout = 60 * time.Second

// audioKeySuffix names synthesized artifacts in the object store.
const audioKeySuffix = ".mp3"

// Worker listens for analysis and synthesis jobs on NATS subjects and
// processes them through the pipeline. Each job carries a session ID; state
// for unknown sessions is created on first use.
type Worker struct {
	natsConnection   *nats.Conn
	analysisSubject  string
	synthesisSubject string
	store            core.ObjectStore
	pipeline         *pipeline.Pipeline
	sessions         *session.Store
	log              *logger.Logger
}

// New creates a worker bound to the given subjects.
func New(
	natsConnection *nats.Conn,
	analysisSubject, synthesisSubject string,
	store core.ObjectStore,
	processingPipeline *pipeline.Pipeline,
	sessions *session.Store,
	log *logger.Logger,
) (*Worker, error) {
	return &Worker{
		natsConnection:   natsConnection,
		analysisSubject:  analysisSubject,
		synthesisSubject: synthesisSubject,
		store:            store,
		pipeline:         processingPipeline,
		sessions:         sessions,
		log:              log,
	}, nil
}

// Run subscribes to both job subjects and blocks until the context is
// canceled, then drains the subscriptions.
func (w *Worker) Run(ctx context.Context) error {
	analysisSub, err := w.natsConnection.Subscribe(w.analysisSubject, w.handleAnalysis)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.analysisSubject, err)
	}

	synthesisSub, err := w.natsConnection.Subscribe(w.synthesisSubject, w.handleSynthesis)
	if err != nil {
		return fmt.Errorf("failed to subscribe to subject %s: %w", w.synthesisSubject, err)
	}

	<-ctx.Done()

	drainErr := analysisSub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain analysis subscription: %w", drainErr)
	}

	drainErr = synthesisSub.Drain()
	if drainErr != nil {
		return fmt.Errorf("failed to drain synthesis subscription: %w", drainErr)
	}

	return nil
}

func (w *Worker) handleAnalysis(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	var event AnalysisRequestedEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		w.log.Error("Failed to unmarshal analysis event: %v", err)

		return
	}

	state := w.sessions.GetOrCreate(event.SessionID)

	input, err := w.buildInput(ctx, &event)
	if err != nil {
		w.log.Error("Failed to build input for session %s: %v", event.SessionID, err)

		return
	}

	result, err := w.pipeline.Analyze(ctx, state, input)
	if err != nil {
		w.log.Error("Failed to process analysis job for session %s: %v", event.SessionID, err)

		return
	}

	narrativeText, err := w.pipeline.Narrate(state)
	if err != nil {
		w.log.Error("Failed to render narrative for session %s: %v", event.SessionID, err)

		return
	}

	reply := &AnalysisCompletedEvent{
		Header:     event.Header,
		SessionID:  event.SessionID,
		Transcript: result.Transcript,
		Narrative:  narrativeText,
		Result:     *result,
	}

	err = w.respond(msg, reply)
	if err != nil {
		w.log.Error("Failed to publish analysis reply for session %s: %v", event.SessionID, err)
	}
}

func (w *Worker) handleSynthesis(msg *nats.Msg) {
	ctx, cancel := context.WithTimeout(context.Background(), handleMessageTimeout)
	defer cancel()

	var event SynthesisRequestedEvent

	err := json.Unmarshal(msg.Data, &event)
	if err != nil {
		w.log.Error("Failed to unmarshal synthesis event: %v", err)

		return
	}

	state := w.sessions.GetOrCreate(event.SessionID)

	voice := event.Voice
	if voice == "" {
		voice = state.Selection().Voice
	}

	audio, err := w.pipeline.SpeakAs(ctx, state, event.Text, voice)
	if err != nil {
		w.log.Error("Failed to process synthesis job for session %s: %v", event.SessionID, err)

		return
	}

	audioKey := uuid.NewString() + audioKeySuffix

	err = w.store.Upload(ctx, audioKey, audio)
	if err != nil {
		w.log.Error("Failed to upload audio for session %s: %v", event.SessionID, err)

		return
	}

	reply := &SpeechSynthesizedEvent{
		Header:    event.Header,
		SessionID: event.SessionID,
		AudioKey:  audioKey,
		ByteSize:  len(audio),
	}

	err = w.respond(msg, reply)
	if err != nil {
		w.log.Error("Failed to publish synthesis reply for session %s: %v", event.SessionID, err)
	}
}

// buildInput maps the event payload to a normalizer input, fetching uploaded
// audio from the object store when the job references a stored file.
func (w *Worker) buildInput(
	ctx context.Context,
	event *AnalysisRequestedEvent,
) (normalize.Input, error) {
	input := normalize.Input{
		Kind:     normalize.Kind(event.Kind),
		URL:      event.URL,
		Text:     event.Text,
		FileName: event.FileName,
		Data:     nil,
	}

	if input.Kind == normalize.KindFile {
		data, err := w.store.Download(ctx, event.AudioKey)
		if err != nil {
			return normalize.Input{}, fmt.Errorf(
				"failed to download audio for key '%s': %w", event.AudioKey, err,
			)
		}

		input.Data = data
	}

	return input, nil
}

// respond marshals and sends the reply event.
func (w *Worker) respond(msg *nats.Msg, reply any) error {
	replyData, err := json.Marshal(reply)
	if err != nil {
		return fmt.Errorf("failed to marshal reply event: %w", err)
	}

	err = msg.Respond(replyData)
	if err != nil {
		return fmt.Errorf("failed to publish reply event: %w", err)
	}

	return nil
}
