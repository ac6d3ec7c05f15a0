// Package core defines the core business logic and interfaces for landing-judge.
package core

import (
	"context"
	"errors"
)

// Polly engine tiers. A voice supports one or both; synthesis against an
// unsupported tier fails with ErrEngineUnsupported.
const (
	EngineStandard = "standard"
	EngineNeural   = "neural"
)

// ErrEngineUnsupported indicates that the requested engine tier is not
// available for the requested voice.
var ErrEngineUnsupported = errors.New("engine not supported for voice")

// SpeechRequest holds the full parameter tuple for one synthesis call.
// The tuple is also the identity of the produced artifact: the audio cache
// keys entries on every field of it.
type SpeechRequest struct {
	Text         string
	VoiceID      string
	Engine       string
	OutputFormat string
	Region       string
}

// Synthesizer defines the interface for a text-to-speech provider.
type Synthesizer interface {
	// Synthesize converts text to speech and returns the raw audio bytes.
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error)

	// PreferredEngine reports the engine tier to try first for a voice.
	PreferredEngine(ctx context.Context, voiceID string) string
}

// ArtifactStore defines the interface for persisting synthesized audio
// artifacts. Artifacts are written once and are immutable afterwards.
type ArtifactStore interface {
	Save(name string, data []byte) error
	Exists(name string) bool
}

// AlternateEngine returns the other engine tier, used for the single bounded
// retry after an ErrEngineUnsupported failure.
func AlternateEngine(engine string) string {
	if engine == EngineNeural {
		return EngineStandard
	}

	return EngineNeural
}
