package entities

import "time"

// Search types recorded in the query log
const (
	SearchTypePeople = "people"
	SearchTypeMovies = "movies"
)

// QueryLog is one append-only record of a completed search request
type QueryLog struct {
	ID             string    `json:"id"`
	SearchTerm     string    `json:"searchTerm"`
	SearchType     string    `json:"searchType"`
	ResultsCount   int       `json:"resultsCount"`
	ResponseTimeMs int       `json:"responseTimeMs"`
	CreatedAt      time.Time `json:"createdAt"`
}
