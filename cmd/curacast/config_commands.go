package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zrn-ns/curacast/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if err != nil && !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit the file to set the LLM and synthesis API keys before running curacast.")
			return nil
		},
	}

	cmd.Flags().StringVar(&targetPath, "path", "", "Target path for the sample config")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing config file")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "data dir:          %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "episodes dir:      %s\n", cfg.Paths.EpisodesDir)
			fmt.Fprintf(out, "scripts dir:       %s\n", cfg.Paths.ScriptsDir)
			fmt.Fprintf(out, "inbox dir:         %s\n", cfg.Paths.InboxDir)
			fmt.Fprintf(out, "ledger:            %s\n", cfg.Paths.LedgerPath)
			fmt.Fprintf(out, "feed:              %s\n", cfg.Paths.FeedPath)
			fmt.Fprintf(out, "target articles:   %d\n", cfg.Pipeline.TargetArticleCount)
			fmt.Fprintf(out, "fetch batch size:  %d\n", cfg.Pipeline.FetchBatchSize)
			fmt.Fprintf(out, "llm model:         %s\n", cfg.LLM.Model)
			fmt.Fprintf(out, "synthesis model:   %s (%s)\n", cfg.Synthesis.Model, cfg.Synthesis.Voice)
			fmt.Fprintf(out, "feed title:        %s\n", cfg.Feed.Title)
			fmt.Fprintf(out, "enclosure base:    %s\n", cfg.Feed.EnclosureBase)
			return nil
		},
	}
}
