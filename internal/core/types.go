// Package core defines the domain types, interfaces, and error taxonomy for
// the speech intelligence platform.
package core

// Model identifies a transcription model offered by the speech service.
type Model string

// Supported transcription models.
const (
	ModelNova3General Model = "nova-3-general"
	ModelNova2        Model = "nova-2"
	ModelNova         Model = "nova"
	ModelEnhanced     Model = "enhanced"
	ModelBase         Model = "base"
)

// Language identifies a language code accepted for analysis and synthesis.
type Language string

// Supported language codes.
const (
	LanguageEN   Language = "en"
	LanguageENUS Language = "en-US"
	LanguageENGB Language = "en-GB"
)

// Voice identifies a voice persona from the Aura-2 catalog.
type Voice string

// Supported voice personas.
const (
	VoiceThalia    Voice = "thalia"
	VoiceZeus      Voice = "zeus"
	VoiceAsteria   Voice = "asteria"
	VoiceOdysseus  Voice = "odysseus"
	VoiceArcas     Voice = "arcas"
	VoiceAndromeda Voice = "andromeda"
)

var supportedModels = map[Model]struct{}{
	ModelNova3General: {},
	ModelNova2:        {},
	ModelNova:         {},
	ModelEnhanced:     {},
	ModelBase:         {},
}

var supportedLanguages = map[Language]struct{}{
	LanguageEN:   {},
	LanguageENUS: {},
	LanguageENGB: {},
}

var voiceDescriptions = map[Voice]string{
	VoiceThalia:    "Warm and friendly",
	VoiceZeus:      "Authoritative and strong",
	VoiceAsteria:   "Clear and professional",
	VoiceOdysseus:  "Conversational and engaging",
	VoiceArcas:     "Calm and soothing",
	VoiceAndromeda: "Modern and dynamic",
}

// Valid reports whether the model is part of the supported set.
func (m Model) Valid() bool {
	_, ok := supportedModels[m]

	return ok
}

// Valid reports whether the language code is part of the supported set.
func (l Language) Valid() bool {
	_, ok := supportedLanguages[l]

	return ok
}

// Valid reports whether the voice persona is part of the Aura-2 catalog.
func (v Voice) Valid() bool {
	_, ok := voiceDescriptions[v]

	return ok
}

// Description returns the human-readable persona description for the voice,
// or an empty string for an unknown voice.
func (v Voice) Description() string {
	return voiceDescriptions[v]
}

// Voices returns the voice persona catalog with persona descriptions.
func Voices() map[Voice]string {
	catalog := make(map[Voice]string, len(voiceDescriptions))
	for voice, description := range voiceDescriptions {
		catalog[voice] = description
	}

	return catalog
}

// Source is a normalized analysis input: either speech audio or raw text.
// The two implementations are SpeechSource and TextSource.
type Source interface {
	source()
}

// SpeechSource points at audio to transcribe, either by URL or as uploaded
// bytes. Exactly one of URL and Data is populated.
type SpeechSource struct {
	URL      string
	Data     []byte
	MIMEHint string
}

func (*SpeechSource) source() {}

// TextSource carries raw text submitted directly for analysis.
type TextSource struct {
	Text string
}

func (*TextSource) source() {}

// AnalysisRequest describes one transcription and analysis job.
type AnalysisRequest struct {
	Source   Source
	Model    Model
	Language Language
}

// Sentiment is the overall polarity of the analyzed text.
type Sentiment struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Topic is one detected topic with its confidence score.
type Topic struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Intent is one detected intent with its confidence score.
type Intent struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// AnalysisResult holds the transcript and semantic analysis for one request.
// Transcript is empty when the input was text rather than audio. Sentiment is
// nil and the slices are empty when the service detected nothing; absent
// values are never fabricated.
type AnalysisResult struct {
	Transcript string     `json:"transcript,omitempty"`
	Sentiment  *Sentiment `json:"sentiment,omitempty"`
	Topics     []Topic    `json:"topics,omitempty"`
	Intents    []Intent   `json:"intents,omitempty"`
}

// PrimaryIntent returns the first detected intent, or nil when none was
// detected.
func (r *AnalysisResult) PrimaryIntent() *Intent {
	if len(r.Intents) == 0 {
		return nil
	}

	return &r.Intents[0]
}

// SynthesisRequest describes one text-to-speech render.
type SynthesisRequest struct {
	Text     string
	Voice    Voice
	Language Language
}
