package pipeline_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zrn-ns/curacast/internal/assemble"
	"github.com/zrn-ns/curacast/internal/candidate"
	"github.com/zrn-ns/curacast/internal/config"
	"github.com/zrn-ns/curacast/internal/feed"
	"github.com/zrn-ns/curacast/internal/fetch"
	"github.com/zrn-ns/curacast/internal/inbox"
	"github.com/zrn-ns/curacast/internal/logging"
	"github.com/zrn-ns/curacast/internal/pipeline"
	"github.com/zrn-ns/curacast/internal/script"
	"github.com/zrn-ns/curacast/internal/store"
	"github.com/zrn-ns/curacast/internal/synth"
	"github.com/zrn-ns/curacast/internal/testsupport"
)

// stubSelector returns a fixed priority-ordered subset and records the
// pool it was offered.
type stubSelector struct {
	pick     []string // candidate URLs in priority order
	lastPool []candidate.Candidate
}

func (s *stubSelector) Select(_ context.Context, pool []candidate.Candidate, count int) (candidate.Selection, error) {
	s.lastPool = pool
	sel := candidate.Selection{Reasons: map[string]string{}, Priorities: map[string]int{}}
	byURL := map[string]candidate.Candidate{}
	for _, c := range pool {
		byURL[c.URL] = c
	}
	for _, url := range s.pick {
		c, ok := byURL[url]
		if !ok || len(sel.Selected) >= count {
			continue
		}
		sel.Selected = append(sel.Selected, c)
		sel.Priorities[c.ID] = len(sel.Selected)
	}
	return sel, nil
}

type stubExtractor struct {
	fail map[string]bool
}

func (s *stubExtractor) Extract(_ context.Context, url string) (string, error) {
	if s.fail[url] {
		return "", errors.New("fetch refused")
	}
	return "Full body text for " + url + ". " + strings.Repeat("More detail. ", 30), nil
}

type stubGenerator struct{}

func (stubGenerator) Generate(_ context.Context, articles []candidate.Enriched) (string, error) {
	var b strings.Builder
	b.WriteString("Welcome to today's episode.\n\n")
	for _, a := range articles {
		fmt.Fprintf(&b, "Our next story: %s. %s\n\n", a.Candidate.Title, strings.Repeat("Commentary. ", 20))
	}
	b.WriteString("That's all for today.")
	return b.String(), nil
}

type stubSpeaker struct{}

func (stubSpeaker) Speak(_ context.Context, text string) ([]byte, error) {
	return []byte("audio[" + text[:10] + "]"), nil
}

func newStubAssembler(t *testing.T) *assemble.Assembler {
	t.Helper()
	a := assemble.New("ffmpeg", "ffprobe", logging.NewNop())
	a.WithCommandRunner(func(_ context.Context, _ string, args ...string) error {
		output := args[len(args)-1]
		return os.WriteFile(output, []byte("merged-audio"), 0o644)
	})
	a.WithDurationProber(func(_ context.Context, _, _ string) (float64, error) {
		return 321, nil
	})
	return a
}

func writeCandidateDrop(t *testing.T, cfg *config.Config, urls []string) {
	t.Helper()
	batch := make([]candidate.Candidate, 0, len(urls))
	for i, url := range urls {
		batch = append(batch, candidate.Candidate{
			URL:    url,
			Title:  fmt.Sprintf("Story %d", i+1),
			Source: "test",
		})
	}
	data, err := json.Marshal(batch)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.Paths.InboxDir, "drop.json"), data, 0o644); err != nil {
		t.Fatal(err)
	}
}

type fixture struct {
	cfg      *config.Config
	store    *store.Store
	selector *stubSelector
	pipe     *pipeline.Pipeline
}

func newFixture(t *testing.T, cfg *config.Config, selector *stubSelector, failURLs map[string]bool) *fixture {
	t.Helper()
	logger := logging.NewNop()

	ledger, err := store.Open(cfg.Paths.LedgerPath)
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}

	loop := fetch.NewLoop(&stubExtractor{fail: failURLs}, ledger, cfg.Pipeline.FetchBatchSize, logger)
	feedState := feed.Load(cfg.Paths.FeedPath, feed.Channel{Title: cfg.Feed.Title, Link: cfg.Feed.Link, Description: cfg.Feed.Description}, logger)

	pipe, err := pipeline.New(pipeline.Dependencies{
		Config:      cfg,
		Store:       ledger,
		Inbox:       inbox.New(cfg.Paths.InboxDir, logger),
		Selector:    selector,
		Fetcher:     loop,
		Generator:   stubGenerator{},
		Archive:     script.NewArchive(cfg.Paths.ScriptsDir),
		Synthesizer: synth.NewSynthesizer(stubSpeaker{}, cfg.Synthesis.Concurrency, logger),
		Assembler:   newStubAssembler(t),
		Feed:        feedState,
		Logger:      logger,
		Clock:       func() time.Time { return time.Date(2026, 3, 14, 7, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("pipeline.New: %v", err)
	}
	return &fixture{cfg: cfg, store: ledger, selector: selector, pipe: pipe}
}

func TestRunPublishesEpisodeSkippingFailedFetch(t *testing.T) {
	urls := []string{
		"https://news.test/1",
		"https://news.test/2",
		"https://news.test/3",
		"https://news.test/4",
		"https://news.test/5",
	}
	cfg := testsupport.NewConfig(t, testsupport.WithTargetCount(3))
	selector := &stubSelector{pick: urls[:4]}
	fx := newFixture(t, cfg, selector, map[string]bool{"https://news.test/2": true})
	writeCandidateDrop(t, cfg, urls)

	result, err := fx.pipe.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v (%+v)", err, result)
	}
	if result.Status != pipeline.StatusSuccess || result.ArticlesProcessed != 3 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.EpisodeID == "" {
		t.Fatal("missing episode id")
	}

	// Priority 2 failed to fetch, so the set is priorities 1, 3, 4.
	for _, url := range []string{urls[0], urls[2], urls[3]} {
		if !fx.store.IsProcessed(candidate.IDForURL(url)) {
			t.Fatalf("candidate %s not marked processed", url)
		}
	}
	if fx.store.IsProcessed(candidate.IDForURL(urls[1])) {
		t.Fatal("failed candidate must not be marked processed")
	}
	if !fx.store.IsURLFailed(urls[1], cfg.Pipeline.FailedURLRetainDays) {
		t.Fatal("failed candidate missing from cooldown")
	}

	// Artifacts: audio file, script archive, feed entry, drained inbox.
	audioPath := filepath.Join(cfg.Paths.EpisodesDir, result.EpisodeID+".mp3")
	if _, err := os.Stat(audioPath); err != nil {
		t.Fatalf("episode audio missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Paths.ScriptsDir, result.EpisodeID+".md")); err != nil {
		t.Fatalf("script archive missing: %v", err)
	}
	items := feed.Load(cfg.Paths.FeedPath, feed.Channel{Title: cfg.Feed.Title}, logging.NewNop()).Items()
	if len(items) != 1 || items[0].GUID != result.EpisodeID {
		t.Fatalf("feed not updated: %+v", items)
	}
	if items[0].DurationSeconds != 321 {
		t.Fatalf("feed duration = %d", items[0].DurationSeconds)
	}
	entries, _ := os.ReadDir(cfg.Paths.InboxDir)
	if len(entries) != 0 {
		t.Fatalf("inbox not drained: %d entries left", len(entries))
	}
}

func TestSecondRunSeesOnlyGenuinelyNewCandidates(t *testing.T) {
	urls := []string{
		"https://news.test/1",
		"https://news.test/2",
		"https://news.test/3",
		"https://news.test/4",
		"https://news.test/5",
	}
	cfg := testsupport.NewConfig(t, testsupport.WithTargetCount(3))
	selector := &stubSelector{pick: urls[:4]}
	fx := newFixture(t, cfg, selector, map[string]bool{"https://news.test/2": true})

	writeCandidateDrop(t, cfg, urls)
	if _, err := fx.pipe.Run(context.Background()); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// Same candidate set arrives again; the selector now picks nothing.
	selector.pick = nil
	writeCandidateDrop(t, cfg, urls)
	result, err := fx.pipe.Run(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if result.Status != pipeline.StatusSuccess || result.ArticlesProcessed != 0 {
		t.Fatalf("expected quiet success, got %+v", result)
	}

	// Three published, one in cooldown: only the never-touched candidate
	// remains eligible.
	if len(selector.lastPool) != 1 || selector.lastPool[0].URL != urls[4] {
		t.Fatalf("unexpected eligible pool: %+v", selector.lastPool)
	}
}

func TestRunWithEmptyInboxIsQuietSuccess(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	fx := newFixture(t, cfg, &stubSelector{}, nil)

	result, err := fx.pipe.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if result.Status != pipeline.StatusSuccess || result.ArticlesProcessed != 0 || result.EpisodeID != "" {
		t.Fatalf("expected quiet success, got %+v", result)
	}
}

func TestRunFailsWhenSynthesisFails(t *testing.T) {
	urls := []string{"https://news.test/1", "https://news.test/2", "https://news.test/3"}
	cfg := testsupport.NewConfig(t, testsupport.WithTargetCount(3))
	selector := &stubSelector{pick: urls}
	fx := newFixture(t, cfg, selector, nil)

	// Rebuild the pipeline with a failing speaker.
	logger := logging.NewNop()
	failingSynth := synth.NewSynthesizer(failingSpeaker{}, 2, logger)
	pipe, err := pipeline.New(pipeline.Dependencies{
		Config:      cfg,
		Store:       fx.store,
		Inbox:       inbox.New(cfg.Paths.InboxDir, logger),
		Selector:    selector,
		Fetcher:     fetch.NewLoop(&stubExtractor{}, fx.store, cfg.Pipeline.FetchBatchSize, logger),
		Generator:   stubGenerator{},
		Archive:     script.NewArchive(cfg.Paths.ScriptsDir),
		Synthesizer: failingSynth,
		Assembler:   newStubAssembler(t),
		Feed:        feed.Load(cfg.Paths.FeedPath, feed.Channel{Title: cfg.Feed.Title}, logger),
		Logger:      logger,
	})
	if err != nil {
		t.Fatal(err)
	}
	writeCandidateDrop(t, cfg, urls)

	result, err := pipe.Run(context.Background())
	if err == nil {
		t.Fatal("expected run failure")
	}
	if result.Status != pipeline.StatusFailed || result.Message == "" {
		t.Fatalf("unexpected result: %+v", result)
	}
	// Nothing may be published or marked processed on a failed run.
	if items := feed.Load(cfg.Paths.FeedPath, feed.Channel{Title: cfg.Feed.Title}, logging.NewNop()).Items(); len(items) != 0 {
		t.Fatal("feed must stay empty after failed run")
	}
	for _, url := range urls {
		if fx.store.IsProcessed(candidate.IDForURL(url)) {
			t.Fatalf("candidate %s wrongly marked processed", url)
		}
	}
	// The inbox drop survives for the next attempt.
	entries, _ := os.ReadDir(cfg.Paths.InboxDir)
	if len(entries) != 1 {
		t.Fatalf("inbox drop should survive failure, found %d entries", len(entries))
	}
}

type failingSpeaker struct{}

func (failingSpeaker) Speak(context.Context, string) ([]byte, error) {
	return nil, errors.New("voice service down")
}
