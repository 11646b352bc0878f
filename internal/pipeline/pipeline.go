package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zrn-ns/curacast/internal/assemble"
	"github.com/zrn-ns/curacast/internal/candidate"
	"github.com/zrn-ns/curacast/internal/config"
	"github.com/zrn-ns/curacast/internal/episode"
	"github.com/zrn-ns/curacast/internal/feed"
	"github.com/zrn-ns/curacast/internal/history"
	"github.com/zrn-ns/curacast/internal/inbox"
	"github.com/zrn-ns/curacast/internal/logging"
	"github.com/zrn-ns/curacast/internal/notifications"
	"github.com/zrn-ns/curacast/internal/script"
	"github.com/zrn-ns/curacast/internal/selection"
	"github.com/zrn-ns/curacast/internal/services"
	"github.com/zrn-ns/curacast/internal/store"
	"github.com/zrn-ns/curacast/internal/textchunk"
)

// Run outcome statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Result is the structured outcome of one run. Zero articles with a
// success status is the normal quiet-day case, not an error.
type Result struct {
	Status            string
	ArticlesProcessed int
	EpisodeID         string
	Message           string
}

// Fetcher retrieves enriched bodies until the quota is met.
type Fetcher interface {
	FetchUntil(ctx context.Context, candidates []candidate.Candidate, target int) []candidate.Enriched
}

// Synthesizer converts script chunks into ordered audio segments.
type Synthesizer interface {
	SynthesizeAll(ctx context.Context, chunks []textchunk.Chunk) ([][]byte, error)
}

// Assembler merges segments into the final episode file.
type Assembler interface {
	Assemble(ctx context.Context, segments [][]byte, req assemble.Request) (assemble.Result, error)
}

// Dependencies carries everything a run needs. History may be nil.
type Dependencies struct {
	Config      *config.Config
	Store       *store.Store
	Inbox       *inbox.Inbox
	Selector    selection.Selector
	Fetcher     Fetcher
	Generator   script.Generator
	Archive     *script.Archive
	Synthesizer Synthesizer
	Assembler   Assembler
	Feed        *feed.State
	History     *history.Store
	Notifier    notifications.Service
	Logger      *slog.Logger
	Clock       func() time.Time
}

// Pipeline executes runs.
type Pipeline struct {
	deps   Dependencies
	logger *slog.Logger
	now    func() time.Time
}

// New validates the dependency set and returns a pipeline.
func New(deps Dependencies) (*Pipeline, error) {
	switch {
	case deps.Config == nil:
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "config is required", nil)
	case deps.Store == nil, deps.Inbox == nil, deps.Selector == nil, deps.Fetcher == nil,
		deps.Generator == nil, deps.Archive == nil, deps.Synthesizer == nil,
		deps.Assembler == nil, deps.Feed == nil:
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "missing pipeline dependency", nil)
	}
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewService(config.Notifications{})
	}
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		deps:   deps,
		logger: logging.NewComponentLogger(deps.Logger, "pipeline"),
		now:    now,
	}, nil
}

// Run executes one full pipeline pass. The returned error is non-nil
// exactly when Result.Status is failed.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	started := p.now()
	log := p.logger.With(logging.String(logging.FieldRunID, runID))

	if p.deps.History != nil {
		if err := p.deps.History.BeginRun(ctx, runID, started); err != nil {
			log.Warn("failed to record run start", logging.Error(err))
		}
	}

	result, err := p.run(ctx, log, runID)

	if p.deps.History != nil {
		status := history.StatusSuccess
		if result.Status == StatusFailed {
			status = history.StatusFailed
		}
		if histErr := p.deps.History.FinishRun(ctx, runID, status, result.ArticlesProcessed, result.EpisodeID, result.Message, p.now()); histErr != nil {
			log.Warn("failed to record run finish", logging.Error(histErr))
		}
	}
	return result, err
}

func (p *Pipeline) run(ctx context.Context, log *slog.Logger, runID string) (Result, error) {
	cfg := p.deps.Config

	pool, drops, err := p.deps.Inbox.Scan()
	if err != nil {
		return p.fail(ctx, log, services.Wrap(services.ErrConfiguration, "pipeline", "inbox", "scan inbox", err))
	}

	if notifyErr := p.deps.Notifier.NotifyRunStarted(ctx, len(pool)); notifyErr != nil {
		log.Warn("run-started notification failed", logging.Error(notifyErr))
	}

	eligible := p.filterEligible(log, pool)
	if len(eligible) == 0 {
		p.deps.Inbox.Remove(drops)
		return p.skip(ctx, log, "no eligible candidates")
	}

	target := cfg.Pipeline.TargetArticleCount
	overSelect := int(math.Ceil(float64(target) * cfg.Pipeline.OverSelectMultiplier))
	sel, err := p.deps.Selector.Select(ctx, eligible, overSelect)
	if err != nil {
		return p.fail(ctx, log, err)
	}
	if len(sel.Selected) == 0 {
		p.deps.Inbox.Remove(drops)
		return p.skip(ctx, log, "selector chose no articles")
	}
	log.Info("articles selected",
		logging.Int("eligible", len(eligible)),
		logging.Int("selected", len(sel.Selected)),
		logging.Int("target", target),
	)

	enriched := p.deps.Fetcher.FetchUntil(ctx, sel.Selected, target)
	if len(enriched) == 0 {
		p.deps.Inbox.Remove(drops)
		return p.skip(ctx, log, "no usable article bodies")
	}
	if len(enriched) < target {
		log.Warn("quota not met, proceeding with fewer articles",
			logging.Int("fetched", len(enriched)),
			logging.Int("target", target),
		)
	}

	now := p.now()
	episodeID := episode.NewID(now)
	ctx = services.WithEpisodeID(ctx, episodeID)
	log = log.With(logging.String(logging.FieldEpisodeID, episodeID))

	text, err := p.deps.Generator.Generate(ctx, enriched)
	if err != nil {
		return p.fail(ctx, log, err)
	}
	scriptPath, err := p.deps.Archive.Save(episodeID, text, enriched, now)
	if err != nil {
		return p.fail(ctx, log, services.Wrap(services.ErrConfiguration, "pipeline", "archive", "persist script", err))
	}
	log.Info("script archived", logging.String("path", scriptPath))

	chunks := textchunk.Split(text, cfg.Synthesis.MaxChunkChars)
	segments, err := p.deps.Synthesizer.SynthesizeAll(ctx, chunks)
	if err != nil {
		return p.fail(ctx, log, err)
	}

	ep := episode.Episode{
		ID:          episodeID,
		Title:       fmt.Sprintf("%s %s", cfg.Feed.Title, now.Format("2006-01-02")),
		Description: episodeDescription(cfg.Feed.ItemDescription, enriched),
		PublishedAt: now,
	}
	for _, article := range enriched {
		ep.Articles = append(ep.Articles, episode.ArticleSummary{
			CandidateID: article.Candidate.ID,
			URL:         article.Candidate.URL,
			Title:       article.Candidate.Title,
		})
	}

	assembled, err := p.deps.Assembler.Assemble(ctx, segments, assemble.Request{
		OutputPath:  filepath.Join(cfg.Paths.EpisodesDir, ep.AudioFilename()),
		ArtworkPath: cfg.Paths.ArtworkPath,
		Tags: assemble.Tags{
			Title:  ep.Title,
			Artist: cfg.Feed.Author,
			Album:  cfg.Feed.Title,
		},
	})
	if err != nil {
		return p.fail(ctx, log, err)
	}
	ep.AudioPath = assembled.Path
	ep.SizeBytes = assembled.SizeBytes
	ep.DurationSeconds = int(math.Round(assembled.DurationSeconds))

	if err := p.deps.Feed.Publish(feed.Item{
		GUID:            ep.ID,
		Title:           ep.Title,
		Description:     ep.Description,
		Link:            ep.EnclosureURL(cfg.Feed.EnclosureBase),
		PubDate:         now,
		EnclosureURL:    ep.EnclosureURL(cfg.Feed.EnclosureBase),
		EnclosureLength: ep.SizeBytes,
		EnclosureType:   "audio/mpeg",
		DurationSeconds: ep.DurationSeconds,
	}); err != nil {
		return p.fail(ctx, log, services.Wrap(services.ErrConfiguration, "pipeline", "publish", "update feed", err))
	}

	for _, article := range enriched {
		if err := p.deps.Store.MarkProcessed(article.Candidate, ep.ID); err != nil {
			return p.fail(ctx, log, services.Wrap(services.ErrConfiguration, "pipeline", "ledger", "mark candidate processed", err))
		}
	}
	p.deps.Inbox.Remove(drops)

	if p.deps.History != nil {
		if err := p.deps.History.RecordEpisode(ctx, runID, ep); err != nil {
			log.Warn("failed to record episode history", logging.Error(err))
		}
	}
	if notifyErr := p.deps.Notifier.NotifyEpisodePublished(ctx, ep); notifyErr != nil {
		log.Warn("publish notification failed", logging.Error(notifyErr))
	}

	log.Info("run complete",
		logging.Int("articles", len(enriched)),
		logging.String("audio", ep.AudioPath),
	)
	return Result{
		Status:            StatusSuccess,
		ArticlesProcessed: len(enriched),
		EpisodeID:         ep.ID,
		Message:           fmt.Sprintf("published episode %s", ep.ID),
	}, nil
}

// filterEligible drops already-processed candidates and URLs still inside
// their failure cooldown window.
func (p *Pipeline) filterEligible(log *slog.Logger, pool []candidate.Candidate) []candidate.Candidate {
	cfg := p.deps.Config
	eligible := make([]candidate.Candidate, 0, len(pool))
	var processed, cooled int
	for _, c := range pool {
		switch {
		case p.deps.Store.IsProcessed(c.ID):
			processed++
		case p.deps.Store.IsURLFailed(c.URL, cfg.Pipeline.FailedURLRetainDays):
			cooled++
		default:
			eligible = append(eligible, c)
		}
	}
	log.Info("candidates filtered",
		logging.Int("pool", len(pool)),
		logging.Int("already_processed", processed),
		logging.Int("in_cooldown", cooled),
		logging.Int("eligible", len(eligible)),
	)
	return eligible
}

func (p *Pipeline) skip(ctx context.Context, log *slog.Logger, reason string) (Result, error) {
	log.Info("run finished without episode", logging.String("reason", reason))
	if err := p.deps.Notifier.NotifyRunSkipped(ctx, reason); err != nil {
		log.Warn("skip notification failed", logging.Error(err))
	}
	return Result{Status: StatusSuccess, Message: reason}, nil
}

func (p *Pipeline) fail(ctx context.Context, log *slog.Logger, err error) (Result, error) {
	log.Error("run failed", logging.Error(err))
	if notifyErr := p.deps.Notifier.NotifyRunFailed(ctx, err); notifyErr != nil {
		log.Warn("failure notification failed", logging.Error(notifyErr))
	}
	return Result{Status: StatusFailed, Message: services.Details(err).Message}, err
}

func episodeDescription(lead string, articles []candidate.Enriched) string {
	var b strings.Builder
	if lead = strings.TrimSpace(lead); lead != "" {
		b.WriteString(lead)
		b.WriteString("\n\n")
	}
	for _, article := range articles {
		fmt.Fprintf(&b, "- %s (%s)\n", article.Candidate.Title, article.Candidate.URL)
	}
	return strings.TrimSpace(b.String())
}
