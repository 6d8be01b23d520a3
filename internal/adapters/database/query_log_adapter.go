package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"

	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/entities"
	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/repositories"
	"github.com/holocron-labs/swapi-explorer/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/holocron-labs/swapi-explorer/backend/pkg/errors"
)

// QueryLogAdapter implements the append-only query log in Postgres.
type QueryLogAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewQueryLogAdapter creates a new query log adapter.
func NewQueryLogAdapter(client *postgres.Client) repositories.QueryLogRepository {
	return &QueryLogAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create appends one query log entry.
func (a *QueryLogAdapter) Create(ctx context.Context, entry *entities.QueryLog) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	record := goqu.Record{
		"id":               entry.ID,
		"search_term":      entry.SearchTerm,
		"search_type":      entry.SearchType,
		"results_count":    entry.ResultsCount,
		"response_time_ms": entry.ResponseTimeMs,
		"created_at":       entry.CreatedAt,
	}

	query, args, err := a.db.Insert("queries").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query log insert", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create query log entry", err)
	}

	return nil
}

// Count returns the total number of log entries.
func (a *QueryLogAdapter) Count(ctx context.Context) (int64, error) {
	var count int64
	row := a.client.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM queries`)
	if err := row.Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count query log entries", err)
	}
	return count, nil
}

// AverageResponseTime returns the mean response time in milliseconds.
func (a *QueryLogAdapter) AverageResponseTime(ctx context.Context) (float64, error) {
	var avg sql.NullFloat64
	row := a.client.DB().QueryRowContext(ctx, `SELECT AVG(response_time_ms) FROM queries`)
	if err := row.Scan(&avg); err != nil {
		return 0, apperrors.NewInternalError("failed to compute average response time", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}

// TopTerms returns the most frequent search terms with their percentage of
// the whole log, computed in one pass in the database.
func (a *QueryLogAdapter) TopTerms(ctx context.Context, limit int) ([]entities.TopQuery, error) {
	if limit <= 0 {
		limit = 5
	}

	query := `
		SELECT
			search_term,
			COUNT(*) AS count,
			ROUND((COUNT(*) * 100.0 / NULLIF((SELECT COUNT(*) FROM queries), 0)), 2) AS percentage
		FROM queries
		GROUP BY search_term
		ORDER BY count DESC
		LIMIT $1
	`

	rows, err := a.client.DB().QueryContext(ctx, query, limit)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to compute top terms", err)
	}
	defer rows.Close()

	var terms []entities.TopQuery
	for rows.Next() {
		var tq entities.TopQuery
		var percentage sql.NullFloat64
		if err := rows.Scan(&tq.SearchTerm, &tq.Count, &percentage); err != nil {
			return nil, apperrors.NewInternalError("failed to scan top term", err)
		}
		if percentage.Valid {
			tq.Percentage = percentage.Float64
		}
		terms = append(terms, tq)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate top terms", err)
	}

	return terms, nil
}

// CountByHour returns entry counts grouped by hour of day (0-23), busiest first.
func (a *QueryLogAdapter) CountByHour(ctx context.Context) ([]repositories.HourCount, error) {
	query := `
		SELECT
			EXTRACT(HOUR FROM created_at)::integer AS hour,
			COUNT(*) AS count
		FROM queries
		GROUP BY hour
		ORDER BY count DESC
	`

	rows, err := a.client.DB().QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to count entries by hour", err)
	}
	defer rows.Close()

	var counts []repositories.HourCount
	for rows.Next() {
		var hc repositories.HourCount
		if err := rows.Scan(&hc.Hour, &hc.Count); err != nil {
			return nil, apperrors.NewInternalError("failed to scan hour count", err)
		}
		counts = append(counts, hc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("failed to iterate hour counts", err)
	}

	return counts, nil
}

// DeleteOlderThan prunes log entries created before the cutoff.
func (a *QueryLogAdapter) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := a.db.Delete("queries").
		Where(goqu.C("created_at").Lt(cutoff)).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build query log prune", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.NewInternalError("failed to prune query log", err)
	}

	affected, _ := result.RowsAffected()
	return affected, nil
}
