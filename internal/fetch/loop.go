package fetch

import (
	"context"
	"log/slog"

	"github.com/zrn-ns/curacast/internal/candidate"
	"github.com/zrn-ns/curacast/internal/logging"
	"github.com/zrn-ns/curacast/internal/runbatch"
)

// FailureRecorder receives fetch failures for cooldown bookkeeping.
type FailureRecorder interface {
	MarkURLFailed(url string, cause error) error
}

// Loop fetches candidate bodies in priority order until the quota is met.
type Loop struct {
	extractor Extractor
	recorder  FailureRecorder
	batchSize int
	logger    *slog.Logger
}

// NewLoop builds a quota fetch loop. batchSize bounds concurrent fetches.
func NewLoop(extractor Extractor, recorder FailureRecorder, batchSize int, logger *slog.Logger) *Loop {
	if batchSize < 1 {
		batchSize = 3
	}
	return &Loop{
		extractor: extractor,
		recorder:  recorder,
		batchSize: batchSize,
		logger:    logging.NewComponentLogger(logger, "fetch"),
	}
}

// FetchUntil processes candidates in priority order, in concurrent batches,
// and returns the first target successfully enriched candidates in their
// original relative order. Once the quota is met no further batches are
// dispatched; untouched candidates stay eligible for future runs. Zero
// successes is a valid outcome, not an error.
func (l *Loop) FetchUntil(ctx context.Context, candidates []candidate.Candidate, target int) []candidate.Enriched {
	if target < 1 || len(candidates) == 0 {
		return nil
	}

	var enriched []candidate.Enriched
	for start := 0; start < len(candidates) && len(enriched) < target; start += l.batchSize {
		end := start + l.batchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		batch := candidates[start:end]

		// Workers fold failures into the outcome; an individual fetch
		// error must never abort the batch.
		outcomes, err := runbatch.Run(ctx, batch, l.batchSize, func(ctx context.Context, _ int, c candidate.Candidate) (candidate.FetchOutcome, error) {
			return l.fetchOne(ctx, c), nil
		})
		if err != nil {
			// Only context cancellation reaches here.
			l.logger.Warn("fetch batch interrupted", logging.Error(err))
			break
		}

		for i, outcome := range outcomes {
			if !outcome.Success {
				continue
			}
			enriched = append(enriched, candidate.Enriched{Candidate: batch[i], Body: outcome.Body})
		}
	}

	if len(enriched) > target {
		enriched = enriched[:target]
	}
	l.logger.Info("quota fetch finished",
		logging.Int("target", target),
		logging.Int("fetched", len(enriched)),
	)
	return enriched
}

func (l *Loop) fetchOne(ctx context.Context, c candidate.Candidate) candidate.FetchOutcome {
	body, err := l.extractor.Extract(ctx, c.URL)
	if err != nil {
		l.logger.Warn("body fetch failed",
			logging.String("url", c.URL),
			logging.String("candidate_id", c.ID),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "url is excluded until the cooldown window passes"),
		)
		if l.recorder != nil {
			if recordErr := l.recorder.MarkURLFailed(c.URL, err); recordErr != nil {
				l.logger.Error("failed to record url failure", logging.Error(recordErr))
			}
		}
		return candidate.FetchOutcome{CandidateID: c.ID, FailReason: err.Error()}
	}
	return candidate.FetchOutcome{CandidateID: c.ID, Success: true, Body: body}
}
