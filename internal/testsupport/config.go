// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"github.com/zrn-ns/curacast/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields, applies any provided options, and creates the
// directory tree.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = base
	cfg.Paths.EpisodesDir = filepath.Join(base, "episodes")
	cfg.Paths.ScriptsDir = filepath.Join(base, "scripts")
	cfg.Paths.InboxDir = filepath.Join(base, "inbox")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.LedgerPath = filepath.Join(base, "ledger.json")
	cfg.Paths.FeedPath = filepath.Join(base, "feed.xml")
	cfg.Feed.Title = "Test Digest"
	cfg.Feed.Link = "https://podcast.test"
	cfg.Feed.Description = "test feed"
	cfg.Feed.Author = "curacast"
	cfg.Feed.EnclosureBase = "https://podcast.test/episodes"
	cfg.LLM.APIKey = "test"
	cfg.Synthesis.APIKey = "test"

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// WithTargetCount overrides the per-run article quota.
func WithTargetCount(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Pipeline.TargetArticleCount = n
	}
}

// WithMaxChunkChars overrides the synthesis chunk limit.
func WithMaxChunkChars(n int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Synthesis.MaxChunkChars = n
	}
}
