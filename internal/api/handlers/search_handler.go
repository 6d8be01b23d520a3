package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/holocron-labs/swapi-explorer/backend/internal/application/services"
	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/entities"
)

// SearchHandler handles search and detail HTTP requests
type SearchHandler struct {
	search    *services.SearchService
	analytics *services.QueryAnalyticsService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(search *services.SearchService, analytics *services.QueryAnalyticsService) *SearchHandler {
	return &SearchHandler{
		search:    search,
		analytics: analytics,
	}
}

// SearchPeople handles GET /api/search/people?name=
func (h *SearchHandler) SearchPeople(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		respondWithErrorCode(w, http.StatusBadRequest, "VALIDATION_ERROR", "name query parameter is required")
		return
	}

	start := time.Now()
	page, err := h.search.SearchPeople(r.Context(), name)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	elapsed := time.Since(start).Milliseconds()

	// Logged off the request path; the response never waits on the insert
	h.analytics.TrackSearch(&entities.QueryLog{
		SearchTerm:     name,
		SearchType:     entities.SearchTypePeople,
		ResultsCount:   len(page.Result),
		ResponseTimeMs: int(elapsed),
	})

	// data carries the upstream envelope untouched: {message, result: [...]}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"data":         page,
		"count":        len(page.Result),
		"responseTime": elapsed,
	})
}

// SearchMovies handles GET /api/search/movies?title=
func (h *SearchHandler) SearchMovies(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if strings.TrimSpace(title) == "" {
		respondWithErrorCode(w, http.StatusBadRequest, "VALIDATION_ERROR", "title query parameter is required")
		return
	}

	start := time.Now()
	page, err := h.search.SearchMovies(r.Context(), title)
	if err != nil {
		respondWithAppError(w, err)
		return
	}
	elapsed := time.Since(start).Milliseconds()

	h.analytics.TrackSearch(&entities.QueryLog{
		SearchTerm:     title,
		SearchType:     entities.SearchTypeMovies,
		ResultsCount:   len(page.Result),
		ResponseTimeMs: int(elapsed),
	})

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"data":         page,
		"count":        len(page.Result),
		"responseTime": elapsed,
	})
}

// GetPerson handles GET /api/search/people/{id}
func (h *SearchHandler) GetPerson(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	detail, err := h.search.GetPersonByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	// data carries the upstream envelope: {message, result: {uid, description, properties}}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    detail,
	})
}

// GetMovie handles GET /api/search/movies/{id}
func (h *SearchHandler) GetMovie(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	detail, err := h.search.GetMovieByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    detail,
	})
}
