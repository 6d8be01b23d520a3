package routes

import (
	"net/http"

	"github.com/holocron-labs/swapi-explorer/backend/internal/api/handlers"
	"github.com/holocron-labs/swapi-explorer/backend/internal/api/middleware"
	"github.com/holocron-labs/swapi-explorer/backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	searchHandler     *handlers.SearchHandler
	statisticsHandler *handlers.StatisticsHandler
	sseHandler        *handlers.SSEHandler
	healthHandler     *handlers.HealthHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	searchHandler *handlers.SearchHandler,
	statisticsHandler *handlers.StatisticsHandler,
	sseHandler *handlers.SSEHandler,
	healthHandler *handlers.HealthHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux:               http.NewServeMux(),
		searchHandler:     searchHandler,
		statisticsHandler: statisticsHandler,
		sseHandler:        sseHandler,
		healthHandler:     healthHandler,
		metrics:           metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", r.healthHandler.GetHealth)

	// Search endpoints. Literal segments are registered alongside the {id}
	// wildcard; the mux prefers the more specific pattern.
	r.mux.HandleFunc("GET /api/search/people", r.searchHandler.SearchPeople)
	r.mux.HandleFunc("GET /api/search/people/{id}", r.searchHandler.GetPerson)
	r.mux.HandleFunc("GET /api/search/movies", r.searchHandler.SearchMovies)
	r.mux.HandleFunc("GET /api/search/movies/{id}", r.searchHandler.GetMovie)

	// Statistics endpoints
	r.mux.HandleFunc("GET /api/statistics", r.statisticsHandler.GetStatistics)
	if r.sseHandler != nil {
		r.mux.HandleFunc("GET /api/statistics/stream", r.sseHandler.StreamStatistics)
	}

	// Apply middleware in reverse order (last middleware wraps first).
	// CORS is outermost so error responses also carry CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
