package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/craigybabyj/landing-judge/internal/hub"
	"github.com/craigybabyj/landing-judge/internal/vote"
)

const (
	// keepAliveInterval bounds how long a quiet stream stays silent before
	// a comment frame proves the connection is alive.
	keepAliveInterval = 60 * time.Second

	dataFrameFormat = "data: %s\n\n"
	keepAliveFrame  = ": keep-alive\n\n"
)

// Stream handles GET /stream. Each connection gets its own subscription and
// sees every broadcast from the moment it subscribes. The subscription is
// released when the client disconnects, whatever state the loop is in.
func (h *Handlers) Stream(writer http.ResponseWriter, request *http.Request) {
	flusher, ok := writer.(http.Flusher)
	if !ok {
		ErrorResponse(writer, h.log, http.StatusInternalServerError, "streaming unsupported")

		return
	}

	subscription, err := h.hub.Subscribe()
	if err != nil {
		h.log.Error("Failed to subscribe stream client: %v", err)
		ErrorResponse(writer, h.log, http.StatusInternalServerError, "failed to subscribe")

		return
	}

	defer h.hub.Unsubscribe(subscription)

	writer.Header().Set("Content-Type", "text/event-stream")
	writer.Header().Set("Cache-Control", "no-cache")
	writer.Header().Set("Connection", "keep-alive")
	writer.Header().Set("X-Accel-Buffering", "no")
	writer.WriteHeader(http.StatusOK)

	hello, err := json.Marshal(vote.NewHelloEvent())
	if err != nil {
		h.log.Error("Failed to marshal hello event: %v", err)

		return
	}

	err = writeFrame(writer, flusher, fmt.Sprintf(dataFrameFormat, hello))
	if err != nil {
		return
	}

	h.log.Info("Stream client connected: subscriber=%s", subscription.ID())

	done := request.Context().Done()

	for {
		payload, nextErr := subscription.Next(done, keepAliveInterval)

		switch {
		case errors.Is(nextErr, hub.ErrIdleTimeout):
			err = writeFrame(writer, flusher, keepAliveFrame)
		case errors.Is(nextErr, hub.ErrSubscriptionClosed):
			h.log.Info("Stream client disconnected: subscriber=%s", subscription.ID())

			return
		case nextErr != nil:
			h.log.Warn("Stream receive failed: subscriber=%s error=%v", subscription.ID(), nextErr)

			return
		default:
			err = writeFrame(writer, flusher, fmt.Sprintf(dataFrameFormat, payload))
		}

		if err != nil {
			return
		}
	}
}

func writeFrame(writer http.ResponseWriter, flusher http.Flusher, frame string) error {
	_, err := fmt.Fprint(writer, frame)
	if err != nil {
		return fmt.Errorf("failed to write stream frame: %w", err)
	}

	flusher.Flush()

	return nil
}
