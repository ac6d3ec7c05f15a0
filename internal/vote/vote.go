// Package vote orchestrates one vote: clamp the score, pick a reaction
// line, resolve audio, persist the landing, and broadcast the composed
// event.
package vote

import (
	"context"
	"fmt"
	"time"

	"github.com/book-expert/logger"
)

// Score bounds; anything outside is corrected, not rejected.
const (
	MinScore = 1
	MaxScore = 10
)

// Severity tiers derived from the clamped score.
const (
	LevelBad   = "bad"
	LevelOK    = "ok"
	LevelGood  = "good"
	LevelGreat = "great"
)

const tsLayout = "2006-01-02T15:04:05Z"

// Event is the composed vote event. It is both the broadcast payload and
// the HTTP response body for a vote, built exactly once per vote.
type Event struct {
	Type       string `json:"type"`
	Score      int    `json:"score"`
	Message    string `json:"message"`
	Quote      string `json:"quote"`
	AudioURL   string `json:"audio_url"`
	Level      string `json:"level"`
	DurationMS int    `json:"duration_ms"`
	TS         string `json:"ts"`
}

// HelloEvent is the minimal event emitted on stream establishment and on
// reset rebroadcasts.
type HelloEvent struct {
	Type string `json:"type"`
}

// NewHelloEvent returns the canonical hello payload.
func NewHelloEvent() HelloEvent {
	return HelloEvent{Type: "hello"}
}

// LandingStore persists accepted votes.
type LandingStore interface {
	Append(score int, ts string) error
}

// AudioResolver resolves a reaction line to an artifact locator, possibly
// empty, and records playback.
type AudioResolver interface {
	Resolve(ctx context.Context, text string) string
	RecordPlay(ctx context.Context, text string)
}

// Publisher fans an event out to all stream subscribers.
type Publisher interface {
	Publish(event any) error
}

// QuoteSource supplies reaction lines and per-score messages.
type QuoteSource interface {
	RandomQuote(score int) string
	Message(score int) string
}

// Handler runs the vote pipeline. Audio failures degrade to an empty
// locator; only a store write failure fails the vote.
type Handler struct {
	store      LandingStore
	audio      AudioResolver
	publisher  Publisher
	quotes     QuoteSource
	ttsEnabled bool
	durationMS int
	log        *logger.Logger
}

// NewHandler wires the vote pipeline. audio may be nil when TTS is disabled.
func NewHandler(
	store LandingStore,
	audio AudioResolver,
	publisher Publisher,
	quotes QuoteSource,
	ttsEnabled bool,
	durationMS int,
	log *logger.Logger,
) *Handler {
	return &Handler{
		store:      store,
		audio:      audio,
		publisher:  publisher,
		quotes:     quotes,
		ttsEnabled: ttsEnabled,
		durationMS: durationMS,
		log:        log,
	}
}

// HandleVote processes one raw score of unconstrained range. On success the
// returned event has already been persisted and broadcast.
func (h *Handler) HandleVote(ctx context.Context, rawScore int) (Event, error) {
	clamped := ClampScore(rawScore)
	quote := h.quotes.RandomQuote(clamped)

	audioURL := ""
	if h.ttsEnabled && h.audio != nil {
		audioURL = h.audio.Resolve(ctx, quote)
		if audioURL != "" {
			h.audio.RecordPlay(ctx, quote)
		}
	}

	ts := utcNowISO()

	err := h.store.Append(clamped, ts)
	if err != nil {
		// The vote is not accepted; nothing is broadcast.
		return Event{}, fmt.Errorf("failed to persist vote: %w", err)
	}

	event := Event{
		Type:       "vote",
		Score:      clamped,
		Message:    h.quotes.Message(clamped),
		Quote:      quote,
		AudioURL:   audioURL,
		Level:      LevelForScore(clamped),
		DurationMS: h.durationMS,
		TS:         ts,
	}

	publishErr := h.publisher.Publish(event)
	if publishErr != nil {
		h.log.Warn("Failed to broadcast vote event: %v", publishErr)
	}

	return event, nil
}

// ClampScore corrects an out-of-range score into [MinScore, MaxScore].
func ClampScore(score int) int {
	if score < MinScore {
		return MinScore
	}

	if score > MaxScore {
		return MaxScore
	}

	return score
}

// LevelForScore maps a clamped score onto its severity tier.
func LevelForScore(score int) string {
	switch {
	case score <= 3:
		return LevelBad
	case score <= 6:
		return LevelOK
	case score <= 8:
		return LevelGood
	default:
		return LevelGreat
	}
}

// utcNowISO formats the current time as UTC ISO-8601 with second precision
// and a Z suffix, the timestamp format of both the log and the event.
func utcNowISO() string {
	return time.Now().UTC().Format(tsLayout)
}
