package candidate

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Metadata carries optional source-specific signals collected alongside a
// candidate (bookmark counts, forum points, and the like).
type Metadata struct {
	Bookmarks int    `json:"bookmarks,omitempty"`
	Points    int    `json:"points,omitempty"`
	Comments  int    `json:"comments,omitempty"`
	Category  string `json:"category,omitempty"`
}

// Candidate is a collected article proposed for inclusion, prior to
// selection. ID is a deterministic hash of the URL so the same article seen
// through different collectors always dedups to one record.
type Candidate struct {
	ID          string   `json:"id"`
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Source      string   `json:"source"`
	SourceName  string   `json:"sourceName,omitempty"`
	Metadata    Metadata `json:"metadata,omitempty"`
}

// Enriched pairs a candidate with its fetched body text.
type Enriched struct {
	Candidate Candidate
	Body      string
}

// Selection is the outcome of the external selector: a priority-ordered
// subset of the pool with per-candidate reasons. Priority 1 is the best.
type Selection struct {
	Selected   []Candidate
	Reasons    map[string]string
	Priorities map[string]int
}

// FetchOutcome records one body-fetch attempt.
type FetchOutcome struct {
	CandidateID string
	Success     bool
	Body        string
	FailReason  string
}

// IDForURL derives the stable candidate identifier from a URL.
func IDForURL(url string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(url)))
	return hex.EncodeToString(sum[:])[:16]
}

// EnsureID fills in the derived identifier when a collector omitted it.
func (c *Candidate) EnsureID() {
	if strings.TrimSpace(c.ID) == "" {
		c.ID = IDForURL(c.URL)
	}
}
