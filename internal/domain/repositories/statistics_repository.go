package repositories

import (
	"context"

	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/entities"
)

// StatisticsRepository persists computed snapshots. Inserts are independent
// rows; retention deletes everything but the newest keepCount snapshots.
type StatisticsRepository interface {
	// Create inserts a new snapshot
	Create(ctx context.Context, snapshot *entities.StatisticsSnapshot) error

	// GetLatest returns the most recently computed snapshot, or a
	// NOT_FOUND error when none exists yet
	GetLatest(ctx context.Context) (*entities.StatisticsSnapshot, error)

	// CleanOld deletes all but the keepCount most recent snapshots
	CleanOld(ctx context.Context, keepCount int) error
}
