package repositories

import (
	"context"
	"time"

	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/entities"
)

// HourCount is the number of log entries recorded within one hour of day
type HourCount struct {
	Hour  int
	Count int64
}

// QueryLogRepository persists and aggregates the append-only query log.
// Entries are never updated; reads exist only for the statistics engine.
type QueryLogRepository interface {
	// Create appends one query log entry
	Create(ctx context.Context, entry *entities.QueryLog) error

	// Count returns the total number of log entries
	Count(ctx context.Context) (int64, error)

	// AverageResponseTime returns the mean response time in milliseconds,
	// 0 when the log is empty
	AverageResponseTime(ctx context.Context) (float64, error)

	// TopTerms returns the most frequent search terms with their share of
	// the total log, sorted descending by count
	TopTerms(ctx context.Context, limit int) ([]entities.TopQuery, error)

	// CountByHour returns entry counts grouped by hour of day, sorted
	// descending by count
	CountByHour(ctx context.Context) ([]HourCount, error)

	// DeleteOlderThan prunes entries created before the cutoff; used only
	// when a retention window is configured
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
