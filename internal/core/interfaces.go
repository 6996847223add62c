package core

import "context"

// Analyzer transcribes and analyzes a normalized source through the speech
// service. Implementations make a single attempt per call; retry policy
// belongs to the caller.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error)
}

// Synthesizer renders text into audio bytes through the speech service.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error)
}

// ObjectStore defines the interface for interacting with a key-value blob
// store holding audio artifacts in transit.
type ObjectStore interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Upload(ctx context.Context, key string, data []byte) error
}
