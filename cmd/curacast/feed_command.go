package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zrn-ns/curacast/internal/feed"
)

func newFeedCommand(ctx *commandContext) *cobra.Command {
	feedCmd := &cobra.Command{
		Use:   "feed",
		Short: "Inspect the published RSS feed",
	}
	feedCmd.AddCommand(newFeedShowCommand(ctx))
	return feedCmd
}

func newFeedShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List the items in the persisted feed document",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			state := feed.Load(cfg.Paths.FeedPath, feed.Channel{Title: cfg.Feed.Title}, logger)
			items := state.Items()
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Feed is empty.")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, item := range items {
				rows = append(rows, []string{
					item.GUID,
					item.PubDate.Local().Format("2006-01-02 15:04"),
					item.Title,
					formatDuration(item.DurationSeconds),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatTable(
				[]string{"GUID", "Published", "Title", "Duration"},
				rows,
				[]colAlign{colLeft, colLeft, colLeft, colRight},
			))
			return nil
		},
	}
}
