package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/zrn-ns/curacast/internal/assemble"
	"github.com/zrn-ns/curacast/internal/feed"
	"github.com/zrn-ns/curacast/internal/fetch"
	"github.com/zrn-ns/curacast/internal/history"
	"github.com/zrn-ns/curacast/internal/inbox"
	"github.com/zrn-ns/curacast/internal/llm"
	"github.com/zrn-ns/curacast/internal/notifications"
	"github.com/zrn-ns/curacast/internal/pipeline"
	"github.com/zrn-ns/curacast/internal/runlock"
	"github.com/zrn-ns/curacast/internal/script"
	"github.com/zrn-ns/curacast/internal/selection"
	"github.com/zrn-ns/curacast/internal/store"
	"github.com/zrn-ns/curacast/internal/synth"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Execute one full pipeline run",
		Long:  "Scans the inbox, selects and fetches articles, generates and synthesizes the script, assembles the episode, and publishes it to the feed. Designed for cron.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			lock, err := runlock.Acquire(filepath.Join(cfg.Paths.DataDir, "run.lock"), logger)
			if errors.Is(err, runlock.ErrAlreadyRunning) {
				fmt.Fprintln(cmd.OutOrStdout(), "Another run is already in progress; exiting.")
				return nil
			}
			if err != nil {
				return err
			}
			defer lock.Release()

			ledger, err := store.Open(cfg.Paths.LedgerPath)
			if err != nil {
				return fmt.Errorf("open ledger: %w", err)
			}

			hist, err := history.Open(filepath.Join(cfg.Paths.DataDir, "history.db"))
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer hist.Close()

			chatter := llm.NewClient(cfg.LLM, logger)
			extractor := fetch.NewHTTPExtractor(time.Duration(cfg.Pipeline.FetchTimeoutSeconds) * time.Second)

			pipe, err := pipeline.New(pipeline.Dependencies{
				Config:      cfg,
				Store:       ledger,
				Inbox:       inbox.New(cfg.Paths.InboxDir, logger),
				Selector:    selection.NewLLMSelector(chatter, logger),
				Fetcher:     fetch.NewLoop(extractor, ledger, cfg.Pipeline.FetchBatchSize, logger),
				Generator:   script.NewLLMGenerator(chatter, logger),
				Archive:     script.NewArchive(cfg.Paths.ScriptsDir),
				Synthesizer: synth.NewSynthesizer(synth.NewHTTPSpeaker(cfg.Synthesis), cfg.Synthesis.Concurrency, logger),
				Assembler:   assemble.New(cfg.FFmpegBinary(), cfg.FFprobeBinary(), logger),
				Feed: feed.Load(cfg.Paths.FeedPath, feed.Channel{
					Title:       cfg.Feed.Title,
					Link:        cfg.Feed.Link,
					Description: cfg.Feed.Description,
					Language:    cfg.Feed.Language,
					Author:      cfg.Feed.Author,
					ArtworkURL:  cfg.Feed.ArtworkURL,
				}, logger),
				History:  hist,
				Notifier: notifications.NewService(cfg.Notifications),
				Logger:   logger,
			})
			if err != nil {
				return err
			}

			result, runErr := pipe.Run(cmd.Context())
			out := cmd.OutOrStdout()
			switch {
			case runErr != nil:
				fmt.Fprintf(out, "Run failed: %s\n", result.Message)
				return runErr
			case result.EpisodeID != "":
				fmt.Fprintf(out, "Published episode %s (%d articles)\n", result.EpisodeID, result.ArticlesProcessed)
			default:
				fmt.Fprintf(out, "Run complete, no episode produced: %s\n", result.Message)
			}
			return nil
		},
	}
}
