package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/entities"
	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/repositories"
	"github.com/holocron-labs/swapi-explorer/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/holocron-labs/swapi-explorer/backend/pkg/errors"
)

// StatisticsAdapter persists statistics snapshots in Postgres.
type StatisticsAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewStatisticsAdapter creates a new statistics adapter.
func NewStatisticsAdapter(client *postgres.Client) repositories.StatisticsRepository {
	return &StatisticsAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a new snapshot row. Top queries are stored as JSONB.
func (a *StatisticsAdapter) Create(ctx context.Context, snapshot *entities.StatisticsSnapshot) error {
	if snapshot.ID == "" {
		snapshot.ID = uuid.New().String()
	}
	if snapshot.ComputedAt == nil {
		now := time.Now()
		snapshot.ComputedAt = &now
	}

	topQueries, err := json.Marshal(snapshot.TopQueries)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal top queries", err)
	}

	record := goqu.Record{
		"id":                snapshot.ID,
		"top_queries":       string(topQueries),
		"avg_response_time": snapshot.AvgResponseTime,
		"most_popular_hour": snapshot.MostPopularHour,
		"total_queries":     snapshot.TotalQueries,
		"computed_at":       *snapshot.ComputedAt,
	}

	query, args, err := a.db.Insert("statistics").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build snapshot insert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create statistics snapshot", err)
	}

	return nil
}

// GetLatest returns the most recently computed snapshot.
func (a *StatisticsAdapter) GetLatest(ctx context.Context) (*entities.StatisticsSnapshot, error) {
	query := `
		SELECT id, top_queries, avg_response_time, most_popular_hour, total_queries, computed_at
		FROM statistics
		ORDER BY computed_at DESC
		LIMIT 1
	`

	snapshot := &entities.StatisticsSnapshot{}
	var topQueries []byte
	var computedAt time.Time

	row := a.client.DB().QueryRowContext(ctx, query)
	err := row.Scan(
		&snapshot.ID,
		&topQueries,
		&snapshot.AvgResponseTime,
		&snapshot.MostPopularHour,
		&snapshot.TotalQueries,
		&computedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError("no statistics snapshot available yet")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load latest snapshot", err)
	}

	if err := json.Unmarshal(topQueries, &snapshot.TopQueries); err != nil {
		return nil, apperrors.NewInternalError("failed to unmarshal top queries", err)
	}
	if snapshot.TopQueries == nil {
		snapshot.TopQueries = []entities.TopQuery{}
	}
	snapshot.ComputedAt = &computedAt

	return snapshot, nil
}

// CleanOld deletes all but the keepCount most recent snapshots.
func (a *StatisticsAdapter) CleanOld(ctx context.Context, keepCount int) error {
	if keepCount <= 0 {
		keepCount = 10
	}

	query := `
		DELETE FROM statistics
		WHERE id NOT IN (
			SELECT id FROM statistics
			ORDER BY computed_at DESC
			LIMIT $1
		)
	`

	if _, err := a.client.DB().ExecContext(ctx, query, keepCount); err != nil {
		return apperrors.NewInternalError("failed to clean old snapshots", err)
	}

	return nil
}
