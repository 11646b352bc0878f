package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validatePipeline(); err != nil {
		return err
	}
	if err := c.validateSynthesis(); err != nil {
		return err
	}
	if err := c.validateFeed(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.LedgerPath == "" {
		return errors.New("paths.ledger_path must be set")
	}
	if c.Paths.FeedPath == "" {
		return errors.New("paths.feed_path must be set")
	}
	if c.Paths.EpisodesDir == "" {
		return errors.New("paths.episodes_dir must be set")
	}
	if c.Paths.ScriptsDir == "" {
		return errors.New("paths.scripts_dir must be set")
	}
	return nil
}

func (c *Config) validatePipeline() error {
	if c.Pipeline.TargetArticleCount < 1 {
		return errors.New("pipeline.target_article_count must be at least 1")
	}
	if c.Pipeline.OverSelectMultiplier < 1 {
		return errors.New("pipeline.over_select_multiplier must be at least 1")
	}
	if c.Pipeline.FetchBatchSize < 1 {
		return errors.New("pipeline.fetch_batch_size must be at least 1")
	}
	if c.Pipeline.FetchTimeoutSeconds < 1 {
		return errors.New("pipeline.fetch_timeout_seconds must be at least 1")
	}
	if c.Pipeline.FailedURLRetainDays < 1 {
		return errors.New("pipeline.failed_url_retention_days must be at least 1")
	}
	return nil
}

func (c *Config) validateSynthesis() error {
	if c.Synthesis.MaxChunkChars < 1 {
		return errors.New("synthesis.max_chunk_chars must be at least 1")
	}
	if c.Synthesis.Concurrency < 1 {
		return errors.New("synthesis.concurrency must be at least 1")
	}
	return nil
}

func (c *Config) validateFeed() error {
	if c.Feed.Title == "" {
		return errors.New("feed.title must be set")
	}
	if c.Feed.EnclosureBase == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/curacast/config.toml"
		}
		return fmt.Errorf("feed.enclosure_base_url is required. Edit %s (create with 'curacast config init')", defaultPath)
	}
	return nil
}
