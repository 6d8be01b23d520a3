package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/providers"
)

// SSEHandler streams statistics snapshots over Server-Sent Events as the
// scheduler publishes them.
type SSEHandler struct {
	eventBus providers.EventBus
}

// NewSSEHandler creates a new SSE handler
func NewSSEHandler(eventBus providers.EventBus) *SSEHandler {
	return &SSEHandler{eventBus: eventBus}
}

// StreamStatistics handles SSE connections for statistics updates
// GET /api/statistics/stream
func (h *SSEHandler) StreamStatistics(w http.ResponseWriter, r *http.Request) {
	if h.eventBus == nil {
		respondWithErrorCode(w, http.StatusServiceUnavailable, "INTERNAL_ERROR", "event streaming unavailable")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithErrorCode(w, http.StatusInternalServerError, "INTERNAL_ERROR", "streaming not supported")
		return
	}

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eventChan, err := h.eventBus.Subscribe(r.Context(), providers.StatisticsEventChannel)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to subscribe to statistics events")
		respondWithErrorCode(w, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to subscribe to events")
		return
	}

	h.sendEvent(w, "connected", map[string]interface{}{
		"timestamp": time.Now(),
	})
	flusher.Flush()

	// Heartbeats keep intermediaries from closing the idle connection
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Debug().Msg("Client disconnected from statistics stream")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case snapshot, ok := <-eventChan:
			if !ok {
				return
			}
			if snapshot == nil {
				continue
			}
			h.sendEvent(w, "statistics", snapshot)
			flusher.Flush()
		}
	}
}

// sendEvent writes one SSE event to the client
func (h *SSEHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to marshal event data")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}
