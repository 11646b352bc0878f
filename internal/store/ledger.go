package store

import "time"

// ProcessedRecord is the permanent dedup marker for one candidate. Once
// written it is never mutated; only retention cleanup or an administrative
// clear removes it.
type ProcessedRecord struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	ProcessedAt time.Time `json:"processedAt"`
	EpisodeID   string    `json:"episodeId"`
}

// FailedURLRecord is the temporary cooldown marker for a URL whose body
// fetch failed. Age beyond the retention window makes the URL eligible for
// retry without deleting the record.
type FailedURLRecord struct {
	URL          string    `json:"url"`
	LastError    string    `json:"lastError"`
	LastFailedAt time.Time `json:"lastFailedAt"`
	FailureCount int       `json:"failureCount"`
}

// ledger is the persisted document layout.
type ledger struct {
	ProcessedArticles []ProcessedRecord `json:"processedArticles"`
	FailedURLs        []FailedURLRecord `json:"failedUrls"`
}
