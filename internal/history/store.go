package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/zrn-ns/curacast/internal/episode"
)

// Run statuses recorded in history.
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// RunRecord is one pipeline invocation.
type RunRecord struct {
	ID                string
	StartedAt         time.Time
	FinishedAt        time.Time
	Status            string
	ArticlesProcessed int
	EpisodeID         string
	Message           string
}

// Store manages history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database and applies
// migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun records a run in the running state.
func (s *Store) BeginRun(ctx context.Context, runID string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, status) VALUES (?, ?, ?)`,
		runID, startedAt.UTC().Format(time.RFC3339Nano), StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun closes out a run record with its final outcome.
func (s *Store) FinishRun(ctx context.Context, runID, status string, articles int, episodeID, message string, finishedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, status = ?, articles_processed = ?, episode_id = ?, message = ? WHERE id = ?`,
		finishedAt.UTC().Format(time.RFC3339Nano), status, articles, nullable(episodeID), nullable(message), runID,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// RecordEpisode stores a published episode.
func (s *Store) RecordEpisode(ctx context.Context, runID string, ep episode.Episode) error {
	articles, err := json.Marshal(ep.Articles)
	if err != nil {
		return fmt.Errorf("marshal article summaries: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO episodes (id, run_id, title, audio_path, size_bytes, duration_seconds, published_at, articles_json)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ep.ID, nullable(runID), ep.Title, ep.AudioPath, ep.SizeBytes, ep.DurationSeconds,
		ep.PublishedAt.UTC().Format(time.RFC3339Nano), string(articles),
	)
	if err != nil {
		return fmt.Errorf("insert episode: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, status, articles_processed, episode_id, message
         FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var (
			rec                        RunRecord
			startedAt                  string
			finishedAt, episodeID, msg sql.NullString
		)
		if err := rows.Scan(&rec.ID, &startedAt, &finishedAt, &rec.Status, &rec.ArticlesProcessed, &episodeID, &msg); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		if finishedAt.Valid {
			rec.FinishedAt, _ = time.Parse(time.RFC3339Nano, finishedAt.String)
		}
		rec.EpisodeID = episodeID.String
		rec.Message = msg.String
		records = append(records, rec)
	}
	return records, rows.Err()
}

// RecentEpisodes returns up to limit published episodes, newest first.
func (s *Store) RecentEpisodes(ctx context.Context, limit int) ([]episode.Episode, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, audio_path, size_bytes, duration_seconds, published_at, articles_json
         FROM episodes ORDER BY published_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []episode.Episode
	for rows.Next() {
		var (
			ep           episode.Episode
			publishedAt  string
			articlesJSON string
		)
		if err := rows.Scan(&ep.ID, &ep.Title, &ep.AudioPath, &ep.SizeBytes, &ep.DurationSeconds, &publishedAt, &articlesJSON); err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		ep.PublishedAt, _ = time.Parse(time.RFC3339Nano, publishedAt)
		if err := json.Unmarshal([]byte(articlesJSON), &ep.Articles); err != nil {
			return nil, fmt.Errorf("decode article summaries: %w", err)
		}
		episodes = append(episodes, ep)
	}
	return episodes, rows.Err()
}

func nullable(value string) any {
	if value == "" {
		return nil
	}
	return value
}
