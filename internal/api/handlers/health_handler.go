package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger reports liveness of one backing dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service health with per-dependency status
type HealthHandler struct {
	db    Pinger
	redis Pinger
}

// NewHealthHandler creates a new health handler. A nil redis pinger is
// reported as "disabled"; the service runs without a cache.
func NewHealthHandler(db, redis Pinger) *HealthHandler {
	return &HealthHandler{db: db, redis: redis}
}

// GetHealth handles GET /health
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	services := map[string]string{}

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			services["database"] = "unreachable"
			status = http.StatusServiceUnavailable
		} else {
			services["database"] = "ok"
		}
	} else {
		services["database"] = "disabled"
		status = http.StatusServiceUnavailable
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			// Degraded, not down: every cache read falls through to upstream
			services["redis"] = "unreachable"
		} else {
			services["redis"] = "ok"
		}
	} else {
		services["redis"] = "disabled"
	}

	overall := "ok"
	if status != http.StatusOK {
		overall = "unavailable"
	}

	respondWithJSON(w, status, map[string]interface{}{
		"status":    overall,
		"services":  services,
		"timestamp": time.Now(),
	})
}
