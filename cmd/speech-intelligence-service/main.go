// main package for the speech-intelligence-service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/book-expert/logger"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/config"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/core"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/deepgram"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/narrative"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/objectstore"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/pipeline"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/sanitize"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/session"
	"github.com/VijayPrakashReddy-k/deepgram-stt-tts-intelligence/internal/worker"
)

const envAPIKey = "DEEPGRAM_API_KEY"

func setupLogger(logPath string) (*logger.Logger, error) {
	log, err := logger.New(logPath, "speech-intelligence-service.log")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

func run() error {
	// A .env file is optional; the environment wins either way.
	_ = godotenv.Load()

	bootstrapLog, err := setupLogger(os.TempDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return err
	}

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return fmt.Errorf("failed to load configuration: %w", err)
	}

	finalLog, err := setupLogger(cfg.Paths.BaseLogsDir)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return fmt.Errorf("failed to create final logger: %w", err)
	}

	defer func() {
		closeErr := finalLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
		}
	}()

	return serve(cfg, finalLog)
}

func serve(cfg *config.Config, log *logger.Logger) error {
	defaults, err := defaultSelection(cfg)
	if err != nil {
		return err
	}

	// The key may be empty here; absence surfaces as an auth failure on
	// the first external call, not at startup.
	apiKey := os.Getenv(envAPIKey)

	analyzer := deepgram.NewAnalysisClient(
		apiKey, cfg.Deepgram.ListenURL, cfg.Deepgram.ReadURL, cfg.Deepgram.Timeout(),
	)
	synthesizer := deepgram.NewSynthesisClient(
		apiKey, cfg.Deepgram.SpeakURL, cfg.Deepgram.MaxSynthesisChars, cfg.Deepgram.Timeout(),
	)

	sanitizer := sanitize.New()
	sessions := session.NewStore(sanitizer, cfg.Session.CacheCapacity, defaults)
	processingPipeline := pipeline.New(
		analyzer, synthesizer, sanitizer, narrative.New(), log, cfg.Deepgram.Timeout(),
	)

	natsConnection, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}
	defer natsConnection.Close()

	jetstreamContext, err := natsConnection.JetStream()
	if err != nil {
		return fmt.Errorf("failed to create JetStream context: %w", err)
	}

	store, err := objectstore.New(jetstreamContext, cfg.NATS.AudioObjectStoreBucket)
	if err != nil {
		return fmt.Errorf("failed to initialize object store: %w", err)
	}

	jobWorker, err := worker.New(
		natsConnection,
		cfg.NATS.AnalysisSubject,
		cfg.NATS.SynthesisSubject,
		store,
		processingPipeline,
		sessions,
		log,
	)
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.System(
		"Speech intelligence service initialized. Listening on subjects: %s, %s",
		cfg.NATS.AnalysisSubject, cfg.NATS.SynthesisSubject,
	)

	runErr := jobWorker.Run(ctx)
	if runErr != nil {
		return fmt.Errorf("worker stopped with error: %w", runErr)
	}

	return nil
}

// defaultSelection builds the selection fresh sessions start with,
// overriding the built-in defaults with any configured values.
func defaultSelection(cfg *config.Config) (session.Selection, error) {
	selection := session.DefaultSelection()

	if cfg.Deepgram.Model != "" {
		selection.Model = core.Model(cfg.Deepgram.Model)
	}

	if cfg.Deepgram.Language != "" {
		selection.Language = core.Language(cfg.Deepgram.Language)
	}

	if cfg.Deepgram.Voice != "" {
		selection.Voice = core.Voice(cfg.Deepgram.Voice)
	}

	err := selection.Validate()
	if err != nil {
		return session.Selection{}, fmt.Errorf("invalid configured defaults: %w", err)
	}

	return selection, nil
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Service exited with error: %v\n", err)
		os.Exit(1)
	}
}
