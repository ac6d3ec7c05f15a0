// Package audiocache_test tests the content-addressed audio cache.
package audiocache_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/book-expert/logger"
	"github.com/craigybabyj/landing-judge/internal/audiocache"
	"github.com/craigybabyj/landing-judge/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errMockProvider = errors.New("mock provider failure")

// mockSynthesizer scripts per-engine outcomes and counts synthesis calls.
type mockSynthesizer struct {
	preferred   string
	failEngines map[string]error
	calls       int
}

func (m *mockSynthesizer) Synthesize(_ context.Context, req core.SpeechRequest) ([]byte, error) {
	m.calls++

	if err, ok := m.failEngines[req.Engine]; ok {
		return nil, err
	}

	return []byte("audio:" + req.Engine + ":" + req.Text), nil
}

func (m *mockSynthesizer) PreferredEngine(_ context.Context, _ string) string {
	return m.preferred
}

func newTestCache(t *testing.T, synth core.Synthesizer) (*audiocache.Cache, *audiocache.DiskStore, string) {
	t.Helper()

	dir := t.TempDir()
	indexPath := filepath.Join(dir, "audio", "audio_index.json")

	artifacts, err := audiocache.NewDiskStore(filepath.Join(dir, "audio"))
	require.NoError(t, err)

	testLogger, err := logger.New(t.TempDir(), "cache-test.log")
	require.NoError(t, err)

	cache := audiocache.New(
		indexPath,
		artifacts,
		synth,
		"Joanna",
		"mp3",
		"us-east-1",
		testLogger,
	)

	return cache, artifacts, indexPath
}

// readIndex loads the persisted index document for assertions.
func readIndex(t *testing.T, indexPath string) map[string]audiocache.Entry {
	t.Helper()

	data, err := os.ReadFile(indexPath)
	require.NoError(t, err)

	index := map[string]audiocache.Entry{}
	require.NoError(t, json.Unmarshal(data, &index))

	return index
}

func findEntry(t *testing.T, indexPath, text string) audiocache.Entry {
	t.Helper()

	for _, entry := range readIndex(t, indexPath) {
		if entry.Text == text {
			return entry
		}
	}

	t.Fatalf("no index entry for text %q", text)

	return audiocache.Entry{}
}

func TestResolveSynthesizesOncePerKey(t *testing.T) {
	t.Parallel()

	synth := &mockSynthesizer{preferred: core.EngineNeural}
	cache, artifacts, _ := newTestCache(t, synth)
	ctx := context.Background()

	first := cache.Resolve(ctx, "Absolute butter.")
	require.NotEmpty(t, first)
	assert.Equal(t, 1, synth.calls)

	second := cache.Resolve(ctx, "Absolute butter.")
	assert.Equal(t, first, second)
	assert.Equal(t, 1, synth.calls, "second resolve must be a pure cache hit")

	filename := filepath.Base(first)
	assert.True(t, artifacts.Exists(filename))
}

func TestIndexKeysAreTwelveHexCharacters(t *testing.T) {
	t.Parallel()

	synth := &mockSynthesizer{preferred: core.EngineNeural}
	cache, _, indexPath := newTestCache(t, synth)

	require.NotEmpty(t, cache.Resolve(context.Background(), "Chief pilot approved!"))

	for key := range readIndex(t, indexPath) {
		assert.Len(t, key, 12)
		assert.Regexp(t, "^[0-9a-f]+$", key)
	}
}

func TestResolveEngineFallbackRetry(t *testing.T) {
	t.Parallel()

	synth := &mockSynthesizer{
		preferred: core.EngineNeural,
		failEngines: map[string]error{
			core.EngineNeural: fmt.Errorf("synthesis: %w", core.ErrEngineUnsupported),
		},
	}
	cache, _, _ := newTestCache(t, synth)

	locator := cache.Resolve(context.Background(), "Greased it.")
	require.NotEmpty(t, locator)
	assert.Equal(t, 2, synth.calls)
	assert.Contains(t, locator, "_standard_")
}

func TestResolveBothEnginesFailYieldsEmpty(t *testing.T) {
	t.Parallel()

	synth := &mockSynthesizer{
		preferred: core.EngineNeural,
		failEngines: map[string]error{
			core.EngineNeural:   fmt.Errorf("synthesis: %w", core.ErrEngineUnsupported),
			core.EngineStandard: fmt.Errorf("synthesis: %w", core.ErrEngineUnsupported),
		},
	}
	cache, _, _ := newTestCache(t, synth)

	assert.Empty(t, cache.Resolve(context.Background(), "Greased it."))
	assert.Equal(t, 2, synth.calls, "exactly one retry")
}

func TestResolveProviderFailureYieldsEmpty(t *testing.T) {
	t.Parallel()

	synth := &mockSynthesizer{
		preferred: core.EngineStandard,
		failEngines: map[string]error{
			core.EngineStandard: errMockProvider,
		},
	}
	cache, _, _ := newTestCache(t, synth)

	assert.Empty(t, cache.Resolve(context.Background(), "Hard arrival."))
	assert.Equal(t, 1, synth.calls, "generic failures are not retried")
}

func TestResolveEmptyTextYieldsEmpty(t *testing.T) {
	t.Parallel()

	synth := &mockSynthesizer{preferred: core.EngineStandard}
	cache, _, _ := newTestCache(t, synth)

	assert.Empty(t, cache.Resolve(context.Background(), ""))
	assert.Zero(t, synth.calls)
}

func TestResolveHealsAfterArtifactDeletion(t *testing.T) {
	t.Parallel()

	synth := &mockSynthesizer{preferred: core.EngineNeural}
	cache, artifacts, _ := newTestCache(t, synth)
	ctx := context.Background()

	locator := cache.Resolve(ctx, "Smooth operator.")
	require.NotEmpty(t, locator)

	// Simulate manual deletion of the artifact file.
	filename := filepath.Base(locator)
	require.NoError(t, os.Remove(filepath.Join(artifacts.Dir(), filename)))

	again := cache.Resolve(ctx, "Smooth operator.")
	assert.Equal(t, locator, again)
	assert.Equal(t, 2, synth.calls, "missing file forces re-synthesis")
	assert.True(t, artifacts.Exists(filename))
}

func TestRecordPlayMissingEntryIsNoOp(t *testing.T) {
	t.Parallel()

	synth := &mockSynthesizer{preferred: core.EngineNeural}
	cache, _, _ := newTestCache(t, synth)

	cache.RecordPlay(context.Background(), "never synthesized")
}

func TestRecordPlayIncrementsPersistedCount(t *testing.T) {
	t.Parallel()

	synth := &mockSynthesizer{preferred: core.EngineNeural}
	cache, _, indexPath := newTestCache(t, synth)
	ctx := context.Background()

	require.NotEmpty(t, cache.Resolve(ctx, "Polite applause."))
	assert.Equal(t, 0, findEntry(t, indexPath, "Polite applause.").PlayCount)

	cache.RecordPlay(ctx, "Polite applause.")
	cache.RecordPlay(ctx, "Polite applause.")

	entry := findEntry(t, indexPath, "Polite applause.")
	assert.Equal(t, 2, entry.PlayCount)
	assert.Equal(t, "Joanna", entry.Voice)
	assert.Equal(t, "mp3", entry.Format)
	assert.Equal(t, "us-east-1", entry.Region)
}
