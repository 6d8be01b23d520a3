package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/holocron-labs/swapi-explorer/backend/internal/adapters/database"
	"github.com/holocron-labs/swapi-explorer/backend/internal/domain/entities"
	"github.com/holocron-labs/swapi-explorer/backend/internal/infrastructure/clients/postgres"
)

func newMockedAdapter(t *testing.T) (*database.QueryLogAdapter, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	adapter := database.NewQueryLogAdapter(postgres.NewClientFromDB(db)).(*database.QueryLogAdapter)
	return adapter, mock
}

func TestQueryLogAdapter_Create_FillsIDAndTimestamp(t *testing.T) {
	adapter, mock := newMockedAdapter(t)

	mock.ExpectExec(`INSERT INTO "queries"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	entry := &entities.QueryLog{
		SearchTerm:     "luke",
		SearchType:     entities.SearchTypePeople,
		ResultsCount:   1,
		ResponseTimeMs: 120,
	}

	err := adapter.Create(context.Background(), entry)

	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueryLogAdapter_Count(t *testing.T) {
	adapter, mock := newMockedAdapter(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM queries`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := adapter.Count(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(42), count)
}

func TestQueryLogAdapter_AverageResponseTime_EmptyLogIsZero(t *testing.T) {
	adapter, mock := newMockedAdapter(t)

	mock.ExpectQuery(`SELECT AVG\(response_time_ms\) FROM queries`).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(nil))

	avg, err := adapter.AverageResponseTime(context.Background())

	require.NoError(t, err)
	assert.Zero(t, avg)
}

func TestQueryLogAdapter_TopTerms(t *testing.T) {
	adapter, mock := newMockedAdapter(t)

	rows := sqlmock.NewRows([]string{"search_term", "count", "percentage"}).
		AddRow("luke", 6, 60.00).
		AddRow("vader", 4, 40.00)
	mock.ExpectQuery(`GROUP BY search_term`).
		WithArgs(5).
		WillReturnRows(rows)

	terms, err := adapter.TopTerms(context.Background(), 5)

	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.Equal(t, entities.TopQuery{SearchTerm: "luke", Count: 6, Percentage: 60.00}, terms[0])
	assert.Equal(t, entities.TopQuery{SearchTerm: "vader", Count: 4, Percentage: 40.00}, terms[1])
}

func TestQueryLogAdapter_CountByHour(t *testing.T) {
	adapter, mock := newMockedAdapter(t)

	rows := sqlmock.NewRows([]string{"hour", "count"}).
		AddRow(14, 10).
		AddRow(9, 3)
	mock.ExpectQuery(`EXTRACT\(HOUR FROM created_at\)`).
		WillReturnRows(rows)

	counts, err := adapter.CountByHour(context.Background())

	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, 14, counts[0].Hour)
	assert.Equal(t, int64(10), counts[0].Count)
}

func TestQueryLogAdapter_DeleteOlderThan(t *testing.T) {
	adapter, mock := newMockedAdapter(t)

	mock.ExpectExec(`DELETE FROM "queries"`).
		WillReturnResult(sqlmock.NewResult(0, 7))

	deleted, err := adapter.DeleteOlderThan(context.Background(), time.Now().AddDate(0, 0, -30))

	require.NoError(t, err)
	assert.Equal(t, int64(7), deleted)
}
