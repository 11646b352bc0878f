package script

import (
	"context"

	"github.com/zrn-ns/curacast/internal/candidate"
)

// Generator produces the full episode script from enriched articles.
// The returned text is plain prose ready for chunking and synthesis.
type Generator interface {
	Generate(ctx context.Context, articles []candidate.Enriched) (string, error)
}
