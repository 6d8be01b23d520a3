package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/entities"
	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/repositories"
)

// QueryAnalyticsService appends completed searches to the query log.
type QueryAnalyticsService struct {
	repo repositories.QueryLogRepository
}

// NewQueryAnalyticsService creates a new query analytics service
func NewQueryAnalyticsService(repo repositories.QueryLogRepository) *QueryAnalyticsService {
	return &QueryAnalyticsService{repo: repo}
}

// TrackSearch records a completed search in the background so the response
// is never delayed by log persistence. A fresh context is used because the
// request context may already be cancelled by the time the write runs.
func (s *QueryAnalyticsService) TrackSearch(entry *entities.QueryLog) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.repo.Create(ctx, entry); err != nil {
			log.Warn().
				Str("term", entry.SearchTerm).
				Str("type", entry.SearchType).
				Err(err).
				Msg("Failed to log search query")
		}
	}()
}
