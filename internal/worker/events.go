package worker

import (
	"github.com/book-expert/events"

	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/core"
)

// AnalysisRequestedEvent asks the worker to transcribe and analyze one
// input. Kind selects which payload field applies: "url" uses URL, "text"
// uses Text, and "file" uses AudioKey plus FileName, with the uploaded bytes
// fetched from the object store.
type AnalysisRequestedEvent struct {
	Header    events.EventHeader `json:"header"`
	SessionID string             `json:"session_id"`
	Kind      string             `json:"kind"`
	URL       string             `json:"url,omitempty"`
	Text      string             `json:"text,omitempty"`
	FileName  string             `json:"file_name,omitempty"`
	AudioKey  string             `json:"audio_key,omitempty"`
}

// AnalysisCompletedEvent is the reply for a successful analysis.
type AnalysisCompletedEvent struct {
	Header     events.EventHeader  `json:"header"`
	SessionID  string              `json:"session_id"`
	Transcript string              `json:"transcript,omitempty"`
	Narrative  string              `json:"narrative"`
	Result     core.AnalysisResult `json:"result"`
}

// SynthesisRequestedEvent asks the worker to render text as speech. An empty
// Voice falls back to the session's selected persona.
type SynthesisRequestedEvent struct {
	Header    events.EventHeader `json:"header"`
	SessionID string             `json:"session_id"`
	Text      string             `json:"text"`
	Voice     core.Voice         `json:"voice,omitempty"`
}

// SpeechSynthesizedEvent is the reply for a successful synthesis. The audio
// itself travels through the object store under AudioKey.
type SpeechSynthesizedEvent struct {
	Header    events.EventHeader `json:"header"`
	SessionID string             `json:"session_id"`
	AudioKey  string             `json:"audio_key"`
	ByteSize  int                `json:"byte_size"`
}
