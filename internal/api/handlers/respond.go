package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/holocron-labs/swapi-explorer/backend/pkg/errors"
)

// Helper functions shared by all handlers
func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

func respondWithErrorCode(w http.ResponseWriter, statusCode int, code, message string) {
	respondWithJSON(w, statusCode, map[string]string{
		"code":    code,
		"message": message,
	})
}

// respondWithAppError maps a service error to its wire code and status.
// Wrapped causes stay server-side; clients only see the public message.
func respondWithAppError(w http.ResponseWriter, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		message := appErr.Message
		if appErr.Type == apperrors.ErrorTypeInternal {
			message = "internal server error"
		}
		respondWithErrorCode(w, appErr.HTTPStatus(), appErr.Code(), message)
		return
	}

	log.Error().Err(err).Msg("Unclassified handler error")
	respondWithErrorCode(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
