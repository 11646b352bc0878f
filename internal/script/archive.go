package script

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zrn-ns/curacast/internal/candidate"
	"github.com/zrn-ns/curacast/internal/fileutil"
)

// Archive persists generated scripts as markdown files named after the
// episode they belong to.
type Archive struct {
	dir string
}

// NewArchive returns an archive rooted at dir. The directory must already
// exist; config.EnsureDirectories creates it at startup.
func NewArchive(dir string) *Archive {
	return &Archive{dir: dir}
}

// Save writes the script with a front section listing the covered articles
// and returns the file path.
func (a *Archive) Save(episodeID, text string, articles []candidate.Enriched, generatedAt time.Time) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "# Episode %s\n\n", episodeID)
	fmt.Fprintf(&b, "Generated: %s\n\n", generatedAt.Format(time.RFC3339))
	b.WriteString("## Articles\n\n")
	for _, art := range articles {
		fmt.Fprintf(&b, "- [%s](%s)\n", art.Candidate.Title, art.Candidate.URL)
	}
	b.WriteString("\n## Script\n\n")
	b.WriteString(text)
	b.WriteString("\n")

	path := filepath.Join(a.dir, episodeID+".md")
	if err := fileutil.WriteFileAtomic(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("save script: %w", err)
	}
	return path, nil
}

// Load returns the raw archived file for an episode.
func (a *Archive) Load(episodeID string) (string, error) {
	data, err := os.ReadFile(filepath.Join(a.dir, episodeID+".md"))
	if err != nil {
		return "", fmt.Errorf("load script: %w", err)
	}
	return string(data), nil
}
