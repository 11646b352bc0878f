// Package episode defines the published unit of work and its identifier
// scheme. Identifiers are date-prefixed so artifacts sort chronologically
// on disk, with a random suffix to keep multiple runs per day distinct.
package episode

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ArticleSummary records one source article inside an episode, for run
// results and history.
type ArticleSummary struct {
	CandidateID string `json:"candidateId"`
	URL         string `json:"url"`
	Title       string `json:"title"`
}

// Episode is one fully assembled, published audio unit. Immutable once
// published.
type Episode struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Description     string           `json:"description"`
	AudioPath       string           `json:"audioPath"`
	SizeBytes       int64            `json:"sizeBytes"`
	DurationSeconds int              `json:"durationSeconds"`
	PublishedAt     time.Time        `json:"publishedAt"`
	Articles        []ArticleSummary `json:"articles"`
}

// NewID derives an episode identifier for the given publication time,
// e.g. 20260314-3f8a21bc.
func NewID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s", now.Format("20060102"), suffix)
}

// AudioFilename is the on-disk name for the episode's assembled audio.
func (e Episode) AudioFilename() string {
	return e.ID + ".mp3"
}

// HasAudio reports whether the assembled audio file exists under
// episodesDir. Script and audio artifacts share the episode id as their
// basename, so a filename probe is sufficient.
func (e Episode) HasAudio(episodesDir string) bool {
	info, err := os.Stat(filepath.Join(episodesDir, e.AudioFilename()))
	return err == nil && info.Mode().IsRegular()
}

// EnclosureURL joins the public base URL with the audio filename.
func (e Episode) EnclosureURL(base string) string {
	return strings.TrimRight(base, "/") + "/" + e.AudioFilename()
}
