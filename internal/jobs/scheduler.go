package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/holocron-labs/swapi-explorer/backend/internal/application/services"
	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/entities"
	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/providers"
	"github.com/holocron-labs/swapi-explorer/backend/pkg/config"
	"github.com/holocron-labs/swapi-explorer/backend/pkg/retry"
)

// StatisticsScheduler drives periodic snapshot computation. A single consumer
// goroutine drains the trigger channel, so overlapping computations are
// impossible even when the ticker fires while a cycle is running. The channel
// buffer of one collapses bursts of triggers into a single pending cycle.
type StatisticsScheduler struct {
	stats *services.StatisticsService
	bus   providers.EventBus
	cfg   config.StatisticsConfig

	trigger chan struct{}
	stop    chan struct{}
	done    chan struct{}
}

// NewStatisticsScheduler creates a new statistics scheduler
func NewStatisticsScheduler(stats *services.StatisticsService, bus providers.EventBus, cfg config.StatisticsConfig) *StatisticsScheduler {
	interval := cfg.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
		cfg.Interval = interval
	}
	return &StatisticsScheduler{
		stats:   stats,
		bus:     bus,
		cfg:     cfg,
		trigger: make(chan struct{}, 1),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start launches the worker and ticker. An initial cycle is queued immediately
// so fresh deployments have a snapshot before the first tick.
func (s *StatisticsScheduler) Start(ctx context.Context) {
	s.Trigger()
	go s.run(ctx)
	log.Info().Dur("interval", s.cfg.Interval).Msg("Statistics scheduler started")
}

// Trigger queues a computation cycle. Never blocks; if a cycle is already
// pending the trigger is dropped.
func (s *StatisticsScheduler) Trigger() {
	select {
	case s.trigger <- struct{}{}:
	default:
	}
}

// Stop halts the scheduler and waits for an in-flight cycle to finish.
func (s *StatisticsScheduler) Stop() {
	close(s.stop)
	<-s.done
}

func (s *StatisticsScheduler) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Trigger()
		case <-s.trigger:
			s.runCycle(ctx)
		}
	}
}

// runCycle computes and persists one snapshot, retrying transient failures
// with backoff. A cycle that exhausts its retries is logged and skipped; the
// next tick gets a fresh chance.
func (s *StatisticsScheduler) runCycle(ctx context.Context) {
	var snapshot *entities.StatisticsSnapshot
	err := retry.DoWithLog(ctx, retry.JobConfig(), "compute statistics", func() error {
		result, err := s.stats.ComputeAndSave(ctx)
		if err != nil {
			return err
		}
		snapshot = result
		return nil
	}, func(attempt int, err error, nextDelay time.Duration) {
		log.Warn().
			Int("attempt", attempt).
			Dur("next_delay", nextDelay).
			Err(err).
			Msg("Statistics computation failed, retrying")
	})
	if err != nil {
		log.Error().Err(err).Msg("Statistics computation cycle failed")
		return
	}

	log.Info().
		Int64("total_queries", snapshot.TotalQueries).
		Int("top_queries", len(snapshot.TopQueries)).
		Msg("Statistics snapshot computed")

	if s.bus != nil {
		if err := s.bus.Publish(ctx, providers.StatisticsEventChannel, snapshot); err != nil {
			log.Warn().Err(err).Msg("Failed to publish statistics snapshot event")
		}
	}

	s.stats.PruneQueryLog(ctx, s.cfg.LogRetentionDays)
}
