package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocron-labs/swapi-explorer/backend/internal/application/services"
	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/entities"
	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/repositories"
)

type stubLogRepo struct {
	total      int64
	totalErr   error
	avg        float64
	avgErr     error
	terms      []entities.TopQuery
	termsErr   error
	hours      []repositories.HourCount
	hoursErr   error
	deleted    int64
	deleteErr  error
	lastCutoff time.Time
}

func (r *stubLogRepo) Create(ctx context.Context, entry *entities.QueryLog) error { return nil }

func (r *stubLogRepo) Count(ctx context.Context) (int64, error) { return r.total, r.totalErr }

func (r *stubLogRepo) AverageResponseTime(ctx context.Context) (float64, error) {
	return r.avg, r.avgErr
}

func (r *stubLogRepo) TopTerms(ctx context.Context, limit int) ([]entities.TopQuery, error) {
	return r.terms, r.termsErr
}

func (r *stubLogRepo) CountByHour(ctx context.Context) ([]repositories.HourCount, error) {
	return r.hours, r.hoursErr
}

func (r *stubLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	r.lastCutoff = cutoff
	return r.deleted, r.deleteErr
}

type stubSnapshotRepo struct {
	created      []*entities.StatisticsSnapshot
	createErr    error
	latest       *entities.StatisticsSnapshot
	latestErr    error
	cleanedWith  int
	cleanOldErr  error
	cleanOldRuns int
}

func (r *stubSnapshotRepo) Create(ctx context.Context, snapshot *entities.StatisticsSnapshot) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, snapshot)
	return nil
}

func (r *stubSnapshotRepo) GetLatest(ctx context.Context) (*entities.StatisticsSnapshot, error) {
	return r.latest, r.latestErr
}

func (r *stubSnapshotRepo) CleanOld(ctx context.Context, keepCount int) error {
	r.cleanedWith = keepCount
	r.cleanOldRuns++
	return r.cleanOldErr
}

func TestStatisticsService_ComputeAndSave_AggregatesAllFour(t *testing.T) {
	logs := &stubLogRepo{
		total: 10,
		avg:   123.456,
		terms: []entities.TopQuery{
			{SearchTerm: "luke", Count: 6, Percentage: 60},
			{SearchTerm: "vader", Count: 4, Percentage: 40},
		},
		hours: []repositories.HourCount{{Hour: 14, Count: 7}, {Hour: 9, Count: 3}},
	}
	snapshots := &stubSnapshotRepo{}
	service := services.NewStatisticsService(logs, snapshots, 10)

	snapshot, err := service.ComputeAndSave(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(10), snapshot.TotalQueries)
	assert.Equal(t, 123.46, snapshot.AvgResponseTime)
	assert.Equal(t, 14, snapshot.MostPopularHour)
	require.Len(t, snapshot.TopQueries, 2)
	assert.Equal(t, "luke", snapshot.TopQueries[0].SearchTerm)
	assert.Equal(t, float64(60), snapshot.TopQueries[0].Percentage)

	require.Len(t, snapshots.created, 1)
	assert.Equal(t, 10, snapshots.cleanedWith)
}

func TestStatisticsService_ComputeAndSave_EmptyLogYieldsZeroSnapshot(t *testing.T) {
	logs := &stubLogRepo{}
	snapshots := &stubSnapshotRepo{}
	service := services.NewStatisticsService(logs, snapshots, 10)

	snapshot, err := service.ComputeAndSave(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, snapshot.TopQueries)
	assert.Empty(t, snapshot.TopQueries)
	assert.Zero(t, snapshot.AvgResponseTime)
	assert.Zero(t, snapshot.MostPopularHour)
	assert.Zero(t, snapshot.TotalQueries)
	assert.Len(t, snapshots.created, 1)
}

func TestStatisticsService_ComputeAndSave_SubComputationFailureDegradesToZero(t *testing.T) {
	logs := &stubLogRepo{
		total:    42,
		avgErr:   errors.New("query timeout"),
		termsErr: errors.New("query timeout"),
		hours:    []repositories.HourCount{{Hour: 20, Count: 5}},
	}
	snapshots := &stubSnapshotRepo{}
	service := services.NewStatisticsService(logs, snapshots, 10)

	snapshot, err := service.ComputeAndSave(context.Background())

	require.NoError(t, err)
	assert.Empty(t, snapshot.TopQueries)
	assert.Zero(t, snapshot.AvgResponseTime)
	assert.Equal(t, 20, snapshot.MostPopularHour)
	assert.Equal(t, int64(42), snapshot.TotalQueries)
}

func TestStatisticsService_ComputeAndSave_PersistFailureIsFatal(t *testing.T) {
	logs := &stubLogRepo{}
	snapshots := &stubSnapshotRepo{createErr: errors.New("connection lost")}
	service := services.NewStatisticsService(logs, snapshots, 10)

	_, err := service.ComputeAndSave(context.Background())

	require.Error(t, err)
	assert.Zero(t, snapshots.cleanOldRuns)
}

func TestStatisticsService_ComputeAndSave_PruneFailureIsNotFatal(t *testing.T) {
	logs := &stubLogRepo{}
	snapshots := &stubSnapshotRepo{cleanOldErr: errors.New("lock timeout")}
	service := services.NewStatisticsService(logs, snapshots, 10)

	snapshot, err := service.ComputeAndSave(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, snapshot)
}

func TestStatisticsService_PruneQueryLog_DisabledByZeroRetention(t *testing.T) {
	logs := &stubLogRepo{deleted: 99}
	service := services.NewStatisticsService(logs, &stubSnapshotRepo{}, 10)

	service.PruneQueryLog(context.Background(), 0)

	assert.True(t, logs.lastCutoff.IsZero())
}

func TestStatisticsService_PruneQueryLog_UsesRetentionWindow(t *testing.T) {
	logs := &stubLogRepo{deleted: 3}
	service := services.NewStatisticsService(logs, &stubSnapshotRepo{}, 10)

	service.PruneQueryLog(context.Background(), 30)

	expected := time.Now().AddDate(0, 0, -30)
	assert.WithinDuration(t, expected, logs.lastCutoff, 5*time.Second)
}
