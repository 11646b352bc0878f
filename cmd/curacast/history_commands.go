package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/zrn-ns/curacast/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs and published episodes",
	}
	historyCmd.AddCommand(newHistoryRunsCommand(ctx))
	historyCmd.AddCommand(newHistoryEpisodesCommand(ctx))
	return historyCmd
}

func (c *commandContext) openHistory() (*history.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return history.Open(filepath.Join(cfg.Paths.DataDir, "history.db"))
}

func newHistoryRunsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent pipeline runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer hist.Close()

			runs, err := hist.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded yet.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				duration := ""
				if !run.FinishedAt.IsZero() {
					duration = run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String()
				}
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04"),
					run.Status,
					fmt.Sprintf("%d", run.ArticlesProcessed),
					run.EpisodeID,
					duration,
					run.Message,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatTable(
				[]string{"Started", "Status", "Articles", "Episode", "Duration", "Message"},
				rows,
				[]colAlign{colLeft, colLeft, colRight, colLeft, colRight, colLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")
	return cmd
}

func newHistoryEpisodesCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "episodes",
		Short: "List published episodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			hist, err := ctx.openHistory()
			if err != nil {
				return err
			}
			defer hist.Close()

			episodes, err := hist.RecentEpisodes(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(episodes) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No episodes published yet.")
				return nil
			}

			rows := make([][]string, 0, len(episodes))
			for _, ep := range episodes {
				audio := "missing"
				if ep.HasAudio(cfg.Paths.EpisodesDir) {
					audio = "yes"
				}
				rows = append(rows, []string{
					ep.ID,
					ep.PublishedAt.Local().Format("2006-01-02 15:04"),
					fmt.Sprintf("%d", len(ep.Articles)),
					formatDuration(ep.DurationSeconds),
					formatSize(ep.SizeBytes),
					audio,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatTable(
				[]string{"Episode", "Published", "Articles", "Duration", "Size", "Audio"},
				rows,
				[]colAlign{colLeft, colLeft, colRight, colRight, colRight, colLeft},
			))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of episodes to show")
	return cmd
}

func formatDuration(seconds int) string {
	if seconds <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func formatSize(bytes int64) string {
	switch {
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(bytes)/(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(bytes)/(1<<10))
	case bytes > 0:
		return fmt.Sprintf("%d B", bytes)
	default:
		return "-"
	}
}
