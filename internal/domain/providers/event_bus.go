package providers

import (
	"context"

	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/entities"
)

// StatisticsEventChannel is the pub/sub channel snapshot events are published on
const StatisticsEventChannel = "statistics:computed"

// EventBus broadcasts statistics snapshot events to interested subscribers
// (the SSE stream, other processes sharing the Redis instance)
type EventBus interface {
	// Publish publishes a freshly computed snapshot
	Publish(ctx context.Context, channel string, snapshot *entities.StatisticsSnapshot) error

	// Subscribe subscribes to snapshot events on a channel; the returned
	// channel is closed when ctx is cancelled or the bus shuts down
	Subscribe(ctx context.Context, channel string) (<-chan *entities.StatisticsSnapshot, error)

	// Close closes the event bus and all subscriptions
	Close() error
}
