// Package inbox reads candidate drops. Collectors run on their own
// schedules and leave JSON files in a shared directory; each file holds an
// array of candidates from one collection pass. The pipeline consumes
// every file present at the start of a run.
package inbox

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/zrn-ns/curacast/internal/candidate"
	"github.com/zrn-ns/curacast/internal/logging"
)

// Drop is the parsed contents of one inbox file.
type Drop struct {
	Path       string
	Candidates []candidate.Candidate
}

// Inbox scans a directory of collector drops.
type Inbox struct {
	dir    string
	logger *slog.Logger
}

// New returns an inbox over dir.
func New(dir string, logger *slog.Logger) *Inbox {
	return &Inbox{dir: dir, logger: logging.NewComponentLogger(logger, "inbox")}
}

// Scan reads every .json file in the inbox, oldest filename first. A
// malformed file is logged and skipped; one broken collector must not
// block the others. Candidates missing an id get one derived from their
// URL, and duplicates across files collapse to the first occurrence.
func (i *Inbox) Scan() ([]candidate.Candidate, []Drop, error) {
	entries, err := os.ReadDir(i.dir)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var (
		drops []Drop
		pool  []candidate.Candidate
		seen  = map[string]bool{}
	)
	for _, name := range names {
		path := filepath.Join(i.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			i.logger.Warn("inbox file unreadable, skipping", logging.String("path", path), logging.Error(err))
			continue
		}

		var batch []candidate.Candidate
		if err := json.Unmarshal(data, &batch); err != nil {
			i.logger.Warn("inbox file malformed, skipping", logging.String("path", path), logging.Error(err))
			continue
		}

		drop := Drop{Path: path}
		for _, c := range batch {
			if strings.TrimSpace(c.URL) == "" {
				continue
			}
			c.EnsureID()
			drop.Candidates = append(drop.Candidates, c)
			if seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			pool = append(pool, c)
		}
		drops = append(drops, drop)
	}

	i.logger.Info("inbox scanned",
		logging.Int("files", len(drops)),
		logging.Int("candidates", len(pool)),
	)
	return pool, drops, nil
}

// Remove deletes consumed drop files. Called only after a run completes,
// so a crash mid-run leaves the drops in place for the next attempt.
func (i *Inbox) Remove(drops []Drop) {
	for _, drop := range drops {
		if err := os.Remove(drop.Path); err != nil {
			i.logger.Warn("failed to remove consumed drop", logging.String("path", drop.Path), logging.Error(err))
		}
	}
}
