// Package server exposes the vote, stats, stream, and reset endpoints over
// HTTP, plus static serving of synthesized audio artifacts.
package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/book-expert/logger"

	"github.com/craigybabyj/landing-judge/internal/hub"
	"github.com/craigybabyj/landing-judge/internal/store"
	"github.com/craigybabyj/landing-judge/internal/vote"
)

// VoteProcessor runs the full vote pipeline for one raw score.
type VoteProcessor interface {
	HandleVote(ctx context.Context, rawScore int) (vote.Event, error)
}

// LandingSource reads and clears the persisted vote log.
type LandingSource interface {
	GetAll() []store.Landing
	Reset() error
}

// Handlers holds the endpoint implementations and their dependencies.
type Handlers struct {
	votes    VoteProcessor
	landings LandingSource
	hub      *hub.Hub
	audioDir string
	log      *logger.Logger
}

// NewHandlers wires the endpoint set.
func NewHandlers(
	votes VoteProcessor,
	landings LandingSource,
	eventHub *hub.Hub,
	audioDir string,
	log *logger.Logger,
) *Handlers {
	return &Handlers{
		votes:    votes,
		landings: landings,
		hub:      eventHub,
		audioDir: audioDir,
		log:      log,
	}
}

// NewRouter returns the configured mux for all endpoints.
func NewRouter(handlers *Handlers) *http.ServeMux {
	mux := http.NewServeMux()
	log := handlers.log

	mux.HandleFunc("GET /healthz", handlers.Health)
	mux.HandleFunc("GET /vote/{score}", WithLogging(log, handlers.Vote))
	mux.HandleFunc("GET /stats", WithLogging(log, handlers.Stats))
	mux.HandleFunc("GET /stream", handlers.Stream)
	mux.HandleFunc("POST /reset", WithLogging(log, handlers.ResetOverlay))
	mux.HandleFunc("POST /landings/reset", WithLogging(log, handlers.ResetLandings))
	mux.Handle(
		"GET /static/audio/",
		http.StripPrefix(
			"/static/audio/",
			http.FileServer(http.Dir(handlers.audioDir)),
		),
	)

	return mux
}

// Health handles GET /healthz.
func (h *Handlers) Health(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)

	_, err := writer.Write([]byte("OK"))
	if err != nil {
		h.log.Error("Failed to write health response: %v", err)
	}
}

// Vote handles GET /vote/{score}. Any integer is accepted; out-of-range
// scores are clamped downstream. Non-integers are rejected.
func (h *Handlers) Vote(writer http.ResponseWriter, request *http.Request) {
	rawScore, err := strconv.Atoi(request.PathValue("score"))
	if err != nil {
		ErrorResponse(writer, h.log, http.StatusBadRequest, "score must be an integer")

		return
	}

	event, err := h.votes.HandleVote(request.Context(), rawScore)
	if err != nil {
		h.log.Error("Vote failed: %v", err)
		ErrorResponse(writer, h.log, http.StatusInternalServerError, "failed to record vote")

		return
	}

	JSONResponse(writer, h.log, http.StatusOK, event)
}

// Stats handles GET /stats with aggregates over the full vote log.
func (h *Handlers) Stats(writer http.ResponseWriter, _ *http.Request) {
	stats := store.ComputeStats(h.landings.GetAll())

	JSONResponse(writer, h.log, http.StatusOK, stats)
}

// ResetOverlay handles POST /reset. It only rebroadcasts the hello event so
// connected overlays clear their current banner; the vote log is untouched.
func (h *Handlers) ResetOverlay(writer http.ResponseWriter, _ *http.Request) {
	err := h.hub.Publish(vote.NewHelloEvent())
	if err != nil {
		h.log.Warn("Failed to broadcast reset: %v", err)
	}

	JSONResponse(writer, h.log, http.StatusOK, okBody{OK: true})
}

// ResetLandings handles POST /landings/reset and clears the vote log.
func (h *Handlers) ResetLandings(writer http.ResponseWriter, _ *http.Request) {
	err := h.landings.Reset()
	if err != nil {
		h.log.Error("Failed to reset landings: %v", err)
		ErrorResponse(writer, h.log, http.StatusInternalServerError, "failed to reset landings")

		return
	}

	JSONResponse(writer, h.log, http.StatusOK, okBody{OK: true})
}
