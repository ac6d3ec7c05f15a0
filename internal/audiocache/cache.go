// Package audiocache provides the content-addressed cache for synthesized
// audio artifacts.
//
// Artifacts are keyed by a deterministic hash of the full synthesis
// parameter tuple, so identical requests reuse the same file across process
// restarts. Synthesis happens at most once per key; every provider failure
// degrades to "no artifact" because audio is an enhancement, never a
// requirement of the vote pipeline.
package audiocache

import (
	"context"
	"crypto/md5" // #nosec G501 -- cache keying, not a security boundary
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/book-expert/logger"
	"github.com/craigybabyj/landing-judge/internal/core"
	"github.com/craigybabyj/landing-judge/internal/fsutil"
)

const (
	keyHashLength = 12
	locatorPrefix = "/static/audio/"
	tsLayout      = "2006-01-02T15:04:05Z"
)

// Entry is one persisted index record. Entries are append/update-only;
// play_count only ever grows.
type Entry struct {
	Text      string `json:"text"`
	Voice     string `json:"voice"`
	Engine    string `json:"engine"`
	Format    string `json:"format"`
	Region    string `json:"region"`
	Filename  string `json:"filename"`
	CreatedTS string `json:"created_ts"`
	PlayCount int    `json:"play_count"`
}

// Cache maps synthesis parameters to previously produced artifacts and
// synthesizes on miss. A single lock serializes every index
// read-modify-write, which also guarantees at-most-once synthesis for
// concurrent identical requests.
type Cache struct {
	indexPath string
	artifacts core.ArtifactStore
	synth     core.Synthesizer
	voiceID   string
	format    string
	region    string
	mu        sync.Mutex
	log       *logger.Logger
}

// New creates a Cache over the given index path and artifact store. voiceID
// must already be sanitized to a bare voice id.
func New(
	indexPath string,
	artifacts core.ArtifactStore,
	synth core.Synthesizer,
	voiceID, format, region string,
	log *logger.Logger,
) *Cache {
	return &Cache{
		indexPath: indexPath,
		artifacts: artifacts,
		synth:     synth,
		voiceID:   voiceID,
		format:    format,
		region:    region,
		mu:        sync.Mutex{},
		log:       log,
	}
}

// Resolve returns the locator for the cached or freshly synthesized artifact
// for text, or "" when no artifact can be produced. It never returns an
// error: absence of audio must never block the vote pipeline.
func (c *Cache) Resolve(ctx context.Context, text string) string {
	if text == "" || c.voiceID == "" {
		return ""
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	engine := c.synth.PreferredEngine(ctx, c.voiceID)
	index := c.loadIndex()

	key := c.cacheKey(text, engine)
	if locator, ok := c.lookup(index, key); ok {
		return locator
	}

	data, err := c.synth.Synthesize(ctx, c.request(text, engine))
	if errors.Is(err, core.ErrEngineUnsupported) {
		// One bounded retry on the alternate tier, key recomputed.
		engine = core.AlternateEngine(engine)

		key = c.cacheKey(text, engine)
		if locator, ok := c.lookup(index, key); ok {
			return locator
		}

		data, err = c.synth.Synthesize(ctx, c.request(text, engine))
	}

	if err != nil {
		c.log.Warn("Speech synthesis failed, continuing without audio: %v", err)

		return ""
	}

	filename := artifactFilename(c.voiceID, engine, text, c.format)

	saveErr := c.artifacts.Save(filename, data)
	if saveErr != nil {
		c.log.Warn("Failed to save audio artifact '%s': %v", filename, saveErr)

		return ""
	}

	index[key] = Entry{
		Text:      text,
		Voice:     c.voiceID,
		Engine:    engine,
		Format:    c.format,
		Region:    c.region,
		Filename:  filename,
		CreatedTS: time.Now().UTC().Format(tsLayout),
		PlayCount: 0,
	}

	indexErr := c.saveIndex(index)
	if indexErr != nil {
		c.log.Warn("Failed to persist audio index: %v", indexErr)
	}

	return locatorPrefix + filename
}

// RecordPlay increments play_count for the entry matching text, trying both
// engine tiers. A missing entry is a silent no-op; this is best-effort
// analytics, not correctness-critical.
func (c *Cache) RecordPlay(ctx context.Context, text string) {
	if text == "" || c.voiceID == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	engine := c.synth.PreferredEngine(ctx, c.voiceID)
	index := c.loadIndex()

	key := c.cacheKey(text, engine)
	if _, ok := index[key]; !ok {
		key = c.cacheKey(text, core.AlternateEngine(engine))
		if _, ok := index[key]; !ok {
			return
		}
	}

	entry := index[key]
	entry.PlayCount++
	index[key] = entry

	err := c.saveIndex(index)
	if err != nil {
		c.log.Warn("Failed to persist audio index after play count update: %v", err)
	}
}

// lookup returns the locator for key when the index entry and its artifact
// file both exist. A missing file invalidates the entry, self-healing
// against manual deletion.
func (c *Cache) lookup(index map[string]Entry, key string) (string, bool) {
	entry, ok := index[key]
	if !ok {
		return "", false
	}

	if !c.artifacts.Exists(entry.Filename) {
		return "", false
	}

	return locatorPrefix + entry.Filename, true
}

func (c *Cache) request(text, engine string) core.SpeechRequest {
	return core.SpeechRequest{
		Text:         text,
		VoiceID:      c.voiceID,
		Engine:       engine,
		OutputFormat: c.format,
		Region:       c.region,
	}
}

// cacheKey derives the deterministic index key for the full parameter tuple.
func (c *Cache) cacheKey(text, engine string) string {
	material := fmt.Sprintf("%s|voice=%s|engine=%s|fmt=%s|region=%s",
		text, c.voiceID, engine, c.format, c.region)

	return shortHash(material)
}

// loadIndex reads the persisted index, degrading to an empty map on any
// read or parse failure.
func (c *Cache) loadIndex() map[string]Entry {
	index := map[string]Entry{}

	data, err := os.ReadFile(c.indexPath)
	if err != nil {
		return index
	}

	err = json.Unmarshal(data, &index)
	if err != nil {
		c.log.Warn("Failed to parse audio index '%s', treating as empty: %v", c.indexPath, err)

		return map[string]Entry{}
	}

	return index
}

func (c *Cache) saveIndex(index map[string]Entry) error {
	data, err := json.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal audio index: %w", err)
	}

	err = fsutil.WriteFileAtomic(c.indexPath, data)
	if err != nil {
		return fmt.Errorf("failed to write audio index '%s': %w", c.indexPath, err)
	}

	return nil
}

// artifactFilename derives the on-disk name for an artifact. The name is
// content-addressed through the text hash, so it is collision-free in
// practice and stable across restarts.
func artifactFilename(voiceID, engine, text, format string) string {
	return fmt.Sprintf("quote_%s_%s_%s.%s",
		sanitizeFilenamePart(voiceID), engine, shortHash(text), format)
}

func shortHash(material string) string {
	sum := md5.Sum([]byte(material)) // #nosec G401 -- cache keying, not a security boundary

	return hex.EncodeToString(sum[:])[:keyHashLength]
}

func sanitizeFilenamePart(part string) string {
	var builder strings.Builder

	for _, r := range part {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			builder.WriteRune(r)
		}
	}

	return builder.String()
}
