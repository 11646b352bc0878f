package selection

import (
	"context"

	"github.com/zrn-ns/curacast/internal/candidate"
)

// Selector picks up to count candidates from the pool in priority order.
// Implementations never mutate the pool. Returning fewer than count
// selections, or none at all, is a valid outcome.
type Selector interface {
	Select(ctx context.Context, pool []candidate.Candidate, count int) (candidate.Selection, error)
}
