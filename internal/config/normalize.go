package config

import "strings"

// normalize expands path fields and trims string settings in place.
func (c *Config) normalize() error {
	pathFields := []*string{
		&c.Paths.DataDir,
		&c.Paths.EpisodesDir,
		&c.Paths.ScriptsDir,
		&c.Paths.InboxDir,
		&c.Paths.LogDir,
		&c.Paths.LedgerPath,
		&c.Paths.FeedPath,
		&c.Paths.ArtworkPath,
	}
	for _, field := range pathFields {
		trimmed := strings.TrimSpace(*field)
		if trimmed == "" {
			*field = ""
			continue
		}
		expanded, err := expandPath(trimmed)
		if err != nil {
			return err
		}
		*field = expanded
	}

	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	c.Synthesis.APIKey = strings.TrimSpace(c.Synthesis.APIKey)
	c.Synthesis.BaseURL = strings.TrimRight(strings.TrimSpace(c.Synthesis.BaseURL), "/")
	c.Synthesis.Model = strings.TrimSpace(c.Synthesis.Model)
	c.Synthesis.Voice = strings.TrimSpace(c.Synthesis.Voice)
	c.Feed.Title = strings.TrimSpace(c.Feed.Title)
	c.Feed.Link = strings.TrimSpace(c.Feed.Link)
	c.Feed.EnclosureBase = strings.TrimRight(strings.TrimSpace(c.Feed.EnclosureBase), "/")
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}
