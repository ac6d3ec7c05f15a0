// Package tts provides the Amazon Polly implementation of the core
// Synthesizer interface.
package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/polly"
	"github.com/aws/aws-sdk-go-v2/service/polly/types"
	"github.com/aws/smithy-go"
	"github.com/book-expert/logger"
	"github.com/craigybabyj/landing-judge/internal/core"
)

// Static errors.
var (
	ErrTextEmpty  = errors.New("text cannot be empty")
	ErrVoiceEmpty = errors.New("voice cannot be empty")
)

// Provider error code for a voice/engine mismatch.
const engineNotSupportedCode = "EngineNotSupportedException"

// PollyAPI is the subset of the Polly client used here; it allows tests to
// substitute a fake provider.
type PollyAPI interface {
	SynthesizeSpeech(
		ctx context.Context,
		params *polly.SynthesizeSpeechInput,
		optFns ...func(*polly.Options),
	) (*polly.SynthesizeSpeechOutput, error)
	DescribeVoices(
		ctx context.Context,
		params *polly.DescribeVoicesInput,
		optFns ...func(*polly.Options),
	) (*polly.DescribeVoicesOutput, error)
}

// PollySynthesizer implements core.Synthesizer against Amazon Polly.
type PollySynthesizer struct {
	client PollyAPI
	log    *logger.Logger

	catalogOnce sync.Once
	catalog     map[string][]string
}

// NewPollySynthesizer creates a synthesizer for the given region using the
// AWS default credential chain, so profiles and SSO keep working without
// explicit keys.
func NewPollySynthesizer(ctx context.Context, region string, log *logger.Logger) (*PollySynthesizer, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	return NewPollySynthesizerWithClient(polly.NewFromConfig(awsCfg), log), nil
}

// NewPollySynthesizerWithClient creates a synthesizer with a custom Polly
// client. This constructor is primarily for testing purposes.
func NewPollySynthesizerWithClient(client PollyAPI, log *logger.Logger) *PollySynthesizer {
	return &PollySynthesizer{
		client:      client,
		log:         log,
		catalogOnce: sync.Once{},
		catalog:     nil,
	}
}

// Synthesize converts text to speech with the requested voice, engine and
// output format. A voice/engine mismatch is reported as
// core.ErrEngineUnsupported so the caller can retry the alternate tier.
func (p *PollySynthesizer) Synthesize(ctx context.Context, req core.SpeechRequest) ([]byte, error) {
	if req.Text == "" {
		return nil, ErrTextEmpty
	}

	if req.VoiceID == "" {
		return nil, ErrVoiceEmpty
	}

	input := &polly.SynthesizeSpeechInput{
		Text:         aws.String(req.Text),
		VoiceId:      types.VoiceId(req.VoiceID),
		OutputFormat: types.OutputFormat(req.OutputFormat),
		Engine:       types.Engine(req.Engine),
	}

	output, err := p.client.SynthesizeSpeech(ctx, input)
	if err != nil {
		if isEngineUnsupported(err) {
			return nil, fmt.Errorf("voice '%s' with engine '%s': %w",
				req.VoiceID, req.Engine, core.ErrEngineUnsupported)
		}

		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}

	defer func() {
		closeErr := output.AudioStream.Close()
		if closeErr != nil {
			p.log.Warn("Failed to close Polly audio stream: %v", closeErr)
		}
	}()

	audioData, err := io.ReadAll(output.AudioStream)
	if err != nil {
		return nil, fmt.Errorf("failed to read Polly audio stream: %w", err)
	}

	return audioData, nil
}

// PreferredEngine reports "neural" when the voice supports it in this region
// and "standard" otherwise, including when the catalog cannot be fetched.
func (p *PollySynthesizer) PreferredEngine(ctx context.Context, voiceID string) string {
	engines, ok := p.voiceCatalog(ctx)[voiceID]
	if !ok {
		return core.EngineStandard
	}

	for _, engine := range engines {
		if engine == core.EngineNeural {
			return core.EngineNeural
		}
	}

	return core.EngineStandard
}

// SanitizeVoiceID reduces a raw voice setting to a bare Polly voice id. Rich
// UI labels ("GB Emma - Natural") are matched against the region's catalog
// first by exact id, then by substring; with no catalog match the longest
// alphabetic token wins.
func (p *PollySynthesizer) SanitizeVoiceID(ctx context.Context, raw string) string {
	trimmed := trimVoiceLabel(raw)
	if trimmed == "" {
		return ""
	}

	catalog := p.voiceCatalog(ctx)
	if _, ok := catalog[trimmed]; ok {
		return trimmed
	}

	for voiceID := range catalog {
		if voiceID != "" && containsToken(trimmed, voiceID) {
			return voiceID
		}
	}

	return longestAlphaToken(trimmed)
}

// voiceCatalog fetches the voices available in the region once and caches
// the result. On failure it degrades to an empty catalog.
func (p *PollySynthesizer) voiceCatalog(ctx context.Context) map[string][]string {
	p.catalogOnce.Do(func() {
		p.catalog = map[string][]string{}

		output, err := p.client.DescribeVoices(ctx, &polly.DescribeVoicesInput{})
		if err != nil {
			p.log.Warn("Failed to describe Polly voices, defaulting to standard engine: %v", err)

			return
		}

		for _, voice := range output.Voices {
			engines := make([]string, 0, len(voice.SupportedEngines))
			for _, engine := range voice.SupportedEngines {
				engines = append(engines, string(engine))
			}

			p.catalog[string(voice.Id)] = engines
		}
	})

	return p.catalog
}

// isEngineUnsupported reports whether the provider rejected the request
// because the engine tier is not available for the voice.
func isEngineUnsupported(err error) bool {
	var engineErr *types.EngineNotSupportedException
	if errors.As(err, &engineErr) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == engineNotSupportedCode
	}

	return false
}
