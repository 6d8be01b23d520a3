package entities

import "time"

// TopQuery is one entry of a snapshot's most frequent search terms
type TopQuery struct {
	SearchTerm string  `json:"searchTerm"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// StatisticsSnapshot is an immutable point-in-time aggregate over the query
// log. Snapshots are inserted as new rows, never updated; only the most
// recent one is served to clients. The row ID is storage-internal and never
// leaves the process.
type StatisticsSnapshot struct {
	ID              string     `json:"-"`
	TopQueries      []TopQuery `json:"topQueries"`
	AvgResponseTime float64    `json:"avgResponseTime"`
	MostPopularHour int        `json:"mostPopularHour"`
	TotalQueries    int64      `json:"totalQueries"`
	ComputedAt      *time.Time `json:"computedAt,omitempty"`
}

// EmptyStatisticsSnapshot is the documented payload served before the first
// snapshot exists. MostPopularHour 0 doubles as "no data"; ComputedAt is nil
// only in this empty state.
func EmptyStatisticsSnapshot() *StatisticsSnapshot {
	return &StatisticsSnapshot{
		TopQueries:      []TopQuery{},
		AvgResponseTime: 0,
		MostPopularHour: 0,
		TotalQueries:    0,
	}
}
