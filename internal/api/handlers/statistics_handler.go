package handlers

import (
	"net/http"

	"github.com/holocron-labs/swapi-explorer/backend/internal/application/services"
	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/entities"
	apperrors "github.com/holocron-labs/swapi-explorer/backend/pkg/errors"
)

// StatisticsHandler serves the latest precomputed snapshot. Statistics are
// never computed on the request path.
type StatisticsHandler struct {
	stats *services.StatisticsService
}

// NewStatisticsHandler creates a new statistics handler
func NewStatisticsHandler(stats *services.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{stats: stats}
}

// GetStatistics handles GET /api/statistics
func (h *StatisticsHandler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.stats.GetLatest(r.Context())
	if err != nil {
		// No snapshot yet is a documented empty state, not an error
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Type == apperrors.ErrorTypeNotFound {
			respondWithJSON(w, http.StatusOK, map[string]interface{}{
				"success": true,
				"message": "No statistics available yet",
				"data":    entities.EmptyStatisticsSnapshot(),
			})
			return
		}
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    snapshot,
	})
}
