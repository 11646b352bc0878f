package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/zrn-ns/curacast/internal/candidate"
	"github.com/zrn-ns/curacast/internal/logging"
)

// Store manages the dedup ledger in memory and mirrors every mutation to
// disk before returning.
type Store struct {
	mu     sync.Mutex
	path   string
	ledger ledger
	now    func() time.Time
	logger *slog.Logger
}

// Option adjusts store construction.
type Option func(*Store)

// WithClock injects the time source, used by cooldown tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger attaches a logger for load/save diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logging.NewComponentLogger(logger, "store")
		}
	}
}

// Open loads the ledger at path, initializing an empty one when the file
// does not exist yet.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:   path,
		now:    func() time.Time { return time.Now().UTC() },
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if err := json.Unmarshal(data, &s.ledger); err != nil {
		return nil, fmt.Errorf("parse ledger %s: %w", path, err)
	}
	s.logger.Debug("ledger loaded",
		logging.Int("processed", len(s.ledger.ProcessedArticles)),
		logging.Int("failed_urls", len(s.ledger.FailedURLs)),
	)
	return s, nil
}

// IsProcessed reports whether a processed record exists for the id.
func (s *Store) IsProcessed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOfProcessed(id) >= 0
}

// IsURLFailed reports whether the URL carries a failure record younger than
// the retention window. Older records are ignored, not deleted, so the
// failure history survives until cleanup.
func (s *Store) IsURLFailed(url string, retentionDays int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOfFailed(url)
	if idx < 0 {
		return false
	}
	window := time.Duration(retentionDays) * 24 * time.Hour
	return s.now().Sub(s.ledger.FailedURLs[idx].LastFailedAt) < window
}

// MarkProcessed appends a permanent dedup record for the candidate. Calling
// it again for the same id is a no-op.
func (s *Store) MarkProcessed(c candidate.Candidate, episodeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOfProcessed(c.ID) >= 0 {
		return nil
	}
	s.ledger.ProcessedArticles = append(s.ledger.ProcessedArticles, ProcessedRecord{
		ID:          c.ID,
		URL:         c.URL,
		Title:       c.Title,
		ProcessedAt: s.now(),
		EpisodeID:   episodeID,
	})
	return s.saveLocked()
}

// MarkURLFailed upserts the cooldown record for a URL: existing records get
// a refreshed timestamp, error text, and an incremented failure count.
func (s *Store) MarkURLFailed(url string, cause error) error {
	message := ""
	if cause != nil {
		message = cause.Error()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if idx := s.indexOfFailed(url); idx >= 0 {
		record := &s.ledger.FailedURLs[idx]
		record.LastError = message
		record.LastFailedAt = s.now()
		record.FailureCount++
		return s.saveLocked()
	}
	s.ledger.FailedURLs = append(s.ledger.FailedURLs, FailedURLRecord{
		URL:          url,
		LastError:    message,
		LastFailedAt: s.now(),
		FailureCount: 1,
	})
	return s.saveLocked()
}

// CleanupProcessed permanently removes processed records older than the
// retention window and returns the number removed.
func (s *Store) CleanupProcessed(retentionDays int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	kept := s.ledger.ProcessedArticles[:0]
	removed := 0
	for _, record := range s.ledger.ProcessedArticles {
		if record.ProcessedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, record)
	}
	s.ledger.ProcessedArticles = kept
	if removed == 0 {
		return 0, nil
	}
	return removed, s.saveLocked()
}

// CleanupFailedURLs permanently removes failure records older than the
// retention window and returns the number removed.
func (s *Store) CleanupFailedURLs(retentionDays int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-time.Duration(retentionDays) * 24 * time.Hour)
	kept := s.ledger.FailedURLs[:0]
	removed := 0
	for _, record := range s.ledger.FailedURLs {
		if record.LastFailedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, record)
	}
	s.ledger.FailedURLs = kept
	if removed == 0 {
		return 0, nil
	}
	return removed, s.saveLocked()
}

// ClearProcessed drops every processed record. Administrative reset.
func (s *Store) ClearProcessed() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := len(s.ledger.ProcessedArticles)
	s.ledger.ProcessedArticles = nil
	if removed == 0 {
		return 0, nil
	}
	return removed, s.saveLocked()
}

// ClearFailedURLs drops every failure record. Administrative reset.
func (s *Store) ClearFailedURLs() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := len(s.ledger.FailedURLs)
	s.ledger.FailedURLs = nil
	if removed == 0 {
		return 0, nil
	}
	return removed, s.saveLocked()
}

// ClearAll drops both ledgers and returns the total records removed.
func (s *Store) ClearAll() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := len(s.ledger.ProcessedArticles) + len(s.ledger.FailedURLs)
	s.ledger.ProcessedArticles = nil
	s.ledger.FailedURLs = nil
	if removed == 0 {
		return 0, nil
	}
	return removed, s.saveLocked()
}

// Counts reports the current ledger sizes.
func (s *Store) Counts() (processed, failed int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ledger.ProcessedArticles), len(s.ledger.FailedURLs)
}

// ProcessedRecords returns a copy of the processed ledger, newest last.
func (s *Store) ProcessedRecords() []ProcessedRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ProcessedRecord, len(s.ledger.ProcessedArticles))
	copy(out, s.ledger.ProcessedArticles)
	return out
}

// FailedURLRecords returns a copy of the failed-URL ledger.
func (s *Store) FailedURLRecords() []FailedURLRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FailedURLRecord, len(s.ledger.FailedURLs))
	copy(out, s.ledger.FailedURLs)
	return out
}

func (s *Store) indexOfProcessed(id string) int {
	for i, record := range s.ledger.ProcessedArticles {
		if record.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) indexOfFailed(url string) int {
	for i, record := range s.ledger.FailedURLs {
		if record.URL == url {
			return i
		}
	}
	return -1
}

// saveLocked rewrites the whole ledger through a temp file so a reader never
// observes a partial document. Callers must hold s.mu.
func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure ledger directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("create ledger temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close ledger temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
