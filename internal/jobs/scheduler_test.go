package jobs_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocron-labs/swapi-explorer/backend/internal/application/services"
	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/entities"
	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/repositories"
	"github.com/holocron-labs/swapi-explorer/backend/internal/jobs"
	"github.com/holocron-labs/swapi-explorer/backend/pkg/config"
)

type fakeLogRepo struct{}

func (fakeLogRepo) Create(ctx context.Context, entry *entities.QueryLog) error { return nil }
func (fakeLogRepo) Count(ctx context.Context) (int64, error)                   { return 7, nil }
func (fakeLogRepo) AverageResponseTime(ctx context.Context) (float64, error)   { return 12.5, nil }
func (fakeLogRepo) TopTerms(ctx context.Context, limit int) ([]entities.TopQuery, error) {
	return []entities.TopQuery{{SearchTerm: "luke", Count: 7, Percentage: 100}}, nil
}
func (fakeLogRepo) CountByHour(ctx context.Context) ([]repositories.HourCount, error) {
	return []repositories.HourCount{{Hour: 11, Count: 7}}, nil
}
func (fakeLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeSnapshotRepo struct {
	mu      sync.Mutex
	created []*entities.StatisticsSnapshot
	notify  chan struct{}
}

func (r *fakeSnapshotRepo) Create(ctx context.Context, snapshot *entities.StatisticsSnapshot) error {
	r.mu.Lock()
	r.created = append(r.created, snapshot)
	r.mu.Unlock()
	select {
	case r.notify <- struct{}{}:
	default:
	}
	return nil
}

func (r *fakeSnapshotRepo) GetLatest(ctx context.Context) (*entities.StatisticsSnapshot, error) {
	return nil, nil
}

func (r *fakeSnapshotRepo) CleanOld(ctx context.Context, keepCount int) error { return nil }

func (r *fakeSnapshotRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.created)
}

type fakeBus struct {
	mu        sync.Mutex
	published []*entities.StatisticsSnapshot
}

func (b *fakeBus) Publish(ctx context.Context, channel string, snapshot *entities.StatisticsSnapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, snapshot)
	return nil
}

func (b *fakeBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.StatisticsSnapshot, error) {
	return nil, nil
}

func (b *fakeBus) Close() error { return nil }

func TestStatisticsScheduler_StartRunsInitialCycle(t *testing.T) {
	snapshots := &fakeSnapshotRepo{notify: make(chan struct{}, 1)}
	service := services.NewStatisticsService(fakeLogRepo{}, snapshots, 10)
	bus := &fakeBus{}

	scheduler := jobs.NewStatisticsScheduler(service, bus, config.StatisticsConfig{Interval: time.Hour})
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	select {
	case <-snapshots.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("initial cycle did not run")
	}

	require.Eventually(t, func() bool {
		bus.mu.Lock()
		defer bus.mu.Unlock()
		return len(bus.published) == 1
	}, 2*time.Second, 10*time.Millisecond)

	bus.mu.Lock()
	assert.Equal(t, int64(7), bus.published[0].TotalQueries)
	bus.mu.Unlock()
}

func TestStatisticsScheduler_TriggerQueuesExtraCycle(t *testing.T) {
	snapshots := &fakeSnapshotRepo{notify: make(chan struct{}, 1)}
	service := services.NewStatisticsService(fakeLogRepo{}, snapshots, 10)

	scheduler := jobs.NewStatisticsScheduler(service, nil, config.StatisticsConfig{Interval: time.Hour})
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	select {
	case <-snapshots.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("initial cycle did not run")
	}

	scheduler.Trigger()

	select {
	case <-snapshots.notify:
	case <-time.After(2 * time.Second):
		t.Fatal("triggered cycle did not run")
	}

	assert.GreaterOrEqual(t, snapshots.count(), 2)
}

func TestStatisticsScheduler_StopWaitsForWorker(t *testing.T) {
	snapshots := &fakeSnapshotRepo{notify: make(chan struct{}, 1)}
	service := services.NewStatisticsService(fakeLogRepo{}, snapshots, 10)

	scheduler := jobs.NewStatisticsScheduler(service, nil, config.StatisticsConfig{Interval: time.Hour})
	scheduler.Start(context.Background())

	<-snapshots.notify

	finished := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}
