package services

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/entities"
	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/repositories"
)

const topQueriesLimit = 5

// StatisticsService aggregates the query log into snapshots. Each
// sub-computation degrades to its zero value on failure; only persisting the
// snapshot itself can fail a cycle.
type StatisticsService struct {
	logs      repositories.QueryLogRepository
	snapshots repositories.StatisticsRepository
	keepCount int
}

// NewStatisticsService creates a new statistics service
func NewStatisticsService(logs repositories.QueryLogRepository, snapshots repositories.StatisticsRepository, keepCount int) *StatisticsService {
	if keepCount <= 0 {
		keepCount = 10
	}
	return &StatisticsService{
		logs:      logs,
		snapshots: snapshots,
		keepCount: keepCount,
	}
}

// ComputeTopQueries returns the top search terms; empty on failure.
func (s *StatisticsService) ComputeTopQueries(ctx context.Context) []entities.TopQuery {
	terms, err := s.logs.TopTerms(ctx, topQueriesLimit)
	if err != nil {
		log.Error().Err(err).Msg("Error computing top queries")
		return []entities.TopQuery{}
	}
	if terms == nil {
		terms = []entities.TopQuery{}
	}
	return terms
}

// ComputeAvgResponseTime returns the mean response time rounded to two
// decimals; 0 on failure or an empty log.
func (s *StatisticsService) ComputeAvgResponseTime(ctx context.Context) float64 {
	avg, err := s.logs.AverageResponseTime(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error computing average response time")
		return 0
	}
	return math.Round(avg*100) / 100
}

// ComputeMostPopularHour returns the hour of day (0-23) with the most
// queries. 0 also stands for "no data yet", preserving the wire contract.
func (s *StatisticsService) ComputeMostPopularHour(ctx context.Context) int {
	counts, err := s.logs.CountByHour(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error computing most popular hour")
		return 0
	}
	if len(counts) == 0 {
		return 0
	}
	return counts[0].Hour
}

// ComputeTotalQueries returns the size of the query log; 0 on failure.
func (s *StatisticsService) ComputeTotalQueries(ctx context.Context) int64 {
	count, err := s.logs.Count(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error counting queries")
		return 0
	}
	return count
}

// ComputeAndSave runs the four computations concurrently, persists the
// snapshot and enforces retention. Persisting is fatal to the cycle (the
// scheduler retries); the retention prune is best-effort.
func (s *StatisticsService) ComputeAndSave(ctx context.Context) (*entities.StatisticsSnapshot, error) {
	snapshot := &entities.StatisticsSnapshot{}

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		snapshot.TopQueries = s.ComputeTopQueries(ctx)
	}()
	go func() {
		defer wg.Done()
		snapshot.AvgResponseTime = s.ComputeAvgResponseTime(ctx)
	}()
	go func() {
		defer wg.Done()
		snapshot.MostPopularHour = s.ComputeMostPopularHour(ctx)
	}()
	go func() {
		defer wg.Done()
		snapshot.TotalQueries = s.ComputeTotalQueries(ctx)
	}()
	wg.Wait()

	if err := s.snapshots.Create(ctx, snapshot); err != nil {
		return nil, err
	}

	if err := s.snapshots.CleanOld(ctx, s.keepCount); err != nil {
		log.Warn().Err(err).Msg("Failed to prune old snapshots")
	}

	return snapshot, nil
}

// GetLatest returns the most recent snapshot.
func (s *StatisticsService) GetLatest(ctx context.Context) (*entities.StatisticsSnapshot, error) {
	return s.snapshots.GetLatest(ctx)
}

// PruneQueryLog deletes raw log entries older than the retention window.
// A retentionDays of 0 disables pruning (the log grows unbounded, matching
// the original behavior).
func (s *StatisticsService) PruneQueryLog(ctx context.Context, retentionDays int) {
	if retentionDays <= 0 {
		return
	}

	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	deleted, err := s.logs.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to prune query log")
		return
	}
	if deleted > 0 {
		log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Pruned query log")
	}
}
