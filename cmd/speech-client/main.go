// main package for the speech-client, a direct-mode command line client for
// the speech intelligence platform. It talks to the hosted speech service
// without going through the NATS job surface.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"github.com/book-expert/logger"
	"github.com/joho/godotenv"

	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/config"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/core"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/deepgram"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/narrative"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/normalize"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/pipeline"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/sanitize"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/session"
)

// Flag names.
const (
	flagURL             = "url"
	flagText            = "text"
	flagFile            = "file"
	flagModel           = "model"
	flagLanguage        = "language"
	flagVoice           = "voice"
	flagSpeak           = "speak"
	flagSpeakTranscript = "speak-transcript"
	flagSpeakNarrative  = "speak-narrative"
	flagOut             = "out"
	flagVoices          = "voices"
)

// Flag descriptions.
const (
	flagURLDesc             = "Audio URL to transcribe and analyze"
	flagTextDesc            = "Text to analyze directly"
	flagFileDesc            = "Audio file to upload, transcribe, and analyze"
	flagModelDesc           = "Transcription model"
	flagLanguageDesc        = "Language code (en, en-US, en-GB)"
	flagVoiceDesc           = "Voice persona for synthesis"
	flagSpeakDesc           = "Text to render as speech"
	flagSpeakTranscriptDesc = "Render the analysis transcript as speech"
	flagSpeakNarrativeDesc  = "Render the analysis narrative as speech"
	flagOutDesc             = "Output path for synthesized audio"
	flagVoicesDesc          = "List the voice persona catalog and exit"
)

// Defaults and constants.
const (
	defaultOutputFile = "speech.mp3"
	envAPIKey         = "DEEPGRAM_API_KEY"
	filePermissions   = 0o600
	logFileName       = "speech-client.log"
)

// Static errors.
var (
	errNoAction          = errors.New("provide an input (--url, --text, --file), --speak, or --voices")
	errMultipleInputs    = errors.New("provide at most one of --url, --text, --file")
	errNothingToVocalize = errors.New("--speak-transcript and --speak-narrative require an analysis input")
)

// appFlags holds the parsed command-line flag values.
type appFlags struct {
	url             string
	text            string
	file            string
	model           string
	language        string
	voice           string
	speak           string
	speakTranscript bool
	speakNarrative  bool
	out             string
	voices          bool
}

func main() {
	err := run()
	if err != nil {
		// The logger might not be initialized yet, so use the standard
		// log package.
		log.Fatalf("Error: %v", err)
	}
}

func run() error {
	flags := parseFlags()

	if flags.voices {
		printVoices()

		return nil
	}

	err := validateFlags(flags)
	if err != nil {
		flag.Usage()

		return err
	}

	// A .env file is optional; the environment wins either way.
	_ = godotenv.Load()

	cfg, clientLog, err := setup()
	if err != nil {
		return err
	}
	defer clientLog.Close()

	state, processingPipeline, err := buildSession(cfg, clientLog, flags)
	if err != nil {
		return err
	}

	return execute(context.Background(), state, processingPipeline, flags)
}

func parseFlags() appFlags {
	var flags appFlags

	flag.StringVar(&flags.url, flagURL, "", flagURLDesc)
	flag.StringVar(&flags.text, flagText, "", flagTextDesc)
	flag.StringVar(&flags.file, flagFile, "", flagFileDesc)
	flag.StringVar(&flags.model, flagModel, "", flagModelDesc)
	flag.StringVar(&flags.language, flagLanguage, "", flagLanguageDesc)
	flag.StringVar(&flags.voice, flagVoice, "", flagVoiceDesc)
	flag.StringVar(&flags.speak, flagSpeak, "", flagSpeakDesc)
	flag.BoolVar(&flags.speakTranscript, flagSpeakTranscript, false, flagSpeakTranscriptDesc)
	flag.BoolVar(&flags.speakNarrative, flagSpeakNarrative, false, flagSpeakNarrativeDesc)
	flag.StringVar(&flags.out, flagOut, defaultOutputFile, flagOutDesc)
	flag.BoolVar(&flags.voices, flagVoices, false, flagVoicesDesc)
	flag.Parse()

	return flags
}

func validateFlags(flags appFlags) error {
	inputs := 0
	for _, value := range []string{flags.url, flags.text, flags.file} {
		if value != "" {
			inputs++
		}
	}

	if inputs > 1 {
		return errMultipleInputs
	}

	if inputs == 0 && flags.speak == "" {
		return errNoAction
	}

	if inputs == 0 && (flags.speakTranscript || flags.speakNarrative) {
		return errNothingToVocalize
	}

	return nil
}

func setup() (*config.Config, *logger.Logger, error) {
	bootstrapLog, err := logger.New(os.TempDir(), logFileName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create bootstrap logger: %w", err)
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	clientLog, err := logger.New(cfg.Paths.BaseLogsDir, logFileName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return cfg, clientLog, nil
}

// buildSession wires the adapters and begins a fresh session with the
// effective selection: configured defaults overridden by flags.
func buildSession(
	cfg *config.Config,
	clientLog *logger.Logger,
	flags appFlags,
) (*session.State, *pipeline.Pipeline, error) {
	apiKey := os.Getenv(envAPIKey)

	analyzer := deepgram.NewAnalysisClient(
		apiKey, cfg.Deepgram.ListenURL, cfg.Deepgram.ReadURL, cfg.Deepgram.Timeout(),
	)
	synthesizer := deepgram.NewSynthesisClient(
		apiKey, cfg.Deepgram.SpeakURL, cfg.Deepgram.MaxSynthesisChars, cfg.Deepgram.Timeout(),
	)

	sanitizer := sanitize.New()
	sessions := session.NewStore(sanitizer, cfg.Session.CacheCapacity, session.DefaultSelection())
	processingPipeline := pipeline.New(
		analyzer, synthesizer, sanitizer, narrative.New(), clientLog, cfg.Deepgram.Timeout(),
	)

	state := sessions.Begin()

	selection, err := effectiveSelection(cfg, flags, state.Selection())
	if err != nil {
		return nil, nil, err
	}

	err = state.SetSelection(selection)
	if err != nil {
		return nil, nil, err
	}

	return state, processingPipeline, nil
}

// effectiveSelection layers configured defaults and flag overrides on top of
// the base selection.
func effectiveSelection(
	cfg *config.Config,
	flags appFlags,
	base session.Selection,
) (session.Selection, error) {
	selection := base

	if cfg.Deepgram.Model != "" {
		selection.Model = core.Model(cfg.Deepgram.Model)
	}

	if cfg.Deepgram.Language != "" {
		selection.Language = core.Language(cfg.Deepgram.Language)
	}

	if cfg.Deepgram.Voice != "" {
		selection.Voice = core.Voice(cfg.Deepgram.Voice)
	}

	if flags.model != "" {
		selection.Model = core.Model(flags.model)
	}

	if flags.language != "" {
		selection.Language = core.Language(flags.language)
	}

	if flags.voice != "" {
		selection.Voice = core.Voice(flags.voice)
	}

	err := selection.Validate()
	if err != nil {
		return session.Selection{}, err
	}

	return selection, nil
}

func execute(
	ctx context.Context,
	state *session.State,
	processingPipeline *pipeline.Pipeline,
	flags appFlags,
) error {
	if flags.url != "" || flags.text != "" || flags.file != "" {
		err := analyze(ctx, state, processingPipeline, flags)
		if err != nil {
			return err
		}
	}

	if flags.speakTranscript {
		audio, err := processingPipeline.SpeakTranscript(ctx, state)
		if err != nil {
			return fmt.Errorf("failed to speak transcript: %w", err)
		}

		return writeAudio(flags.out, audio)
	}

	if flags.speakNarrative {
		audio, err := processingPipeline.SpeakNarrative(ctx, state)
		if err != nil {
			return fmt.Errorf("failed to speak narrative: %w", err)
		}

		return writeAudio(flags.out, audio)
	}

	if flags.speak != "" {
		audio, err := processingPipeline.Speak(ctx, state, flags.speak)
		if err != nil {
			return fmt.Errorf("failed to generate speech: %w", err)
		}

		return writeAudio(flags.out, audio)
	}

	return nil
}

func analyze(
	ctx context.Context,
	state *session.State,
	processingPipeline *pipeline.Pipeline,
	flags appFlags,
) error {
	input, err := buildInput(flags)
	if err != nil {
		return err
	}

	result, err := processingPipeline.Analyze(ctx, state, input)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if result.Transcript != "" {
		fmt.Println("## Transcript")
		fmt.Println(result.Transcript)
		fmt.Println()
	}

	narrativeText, err := processingPipeline.Narrate(state)
	if err != nil {
		return fmt.Errorf("failed to render narrative: %w", err)
	}

	fmt.Println(narrativeText)

	return nil
}

func buildInput(flags appFlags) (normalize.Input, error) {
	switch {
	case flags.url != "":
		return normalize.Input{
			Kind:     normalize.KindURL,
			URL:      flags.url,
			Text:     "",
			FileName: "",
			Data:     nil,
		}, nil
	case flags.text != "":
		return normalize.Input{
			Kind:     normalize.KindText,
			URL:      "",
			Text:     flags.text,
			FileName: "",
			Data:     nil,
		}, nil
	default:
		data, err := os.ReadFile(flags.file)
		if err != nil {
			return normalize.Input{}, fmt.Errorf("failed to read audio file: %w", err)
		}

		return normalize.Input{
			Kind:     normalize.KindFile,
			URL:      "",
			Text:     "",
			FileName: flags.file,
			Data:     data,
		}, nil
	}
}

func writeAudio(path string, audio []byte) error {
	err := os.WriteFile(path, audio, filePermissions)
	if err != nil {
		return fmt.Errorf("failed to write audio file: %w", err)
	}

	fmt.Printf("Generated: %s (%d bytes)\n", path, len(audio))

	return nil
}

func printVoices() {
	catalog := core.Voices()

	names := make([]string, 0, len(catalog))
	for voice := range catalog {
		names = append(names, string(voice))
	}

	sort.Strings(names)

	fmt.Println("Available voice personas:")

	for _, name := range names {
		fmt.Printf("  %-10s %s\n", name, catalog[core.Voice(name)])
	}
}
