package config

const (
	defaultDataDir              = "~/.local/share/curacast"
	defaultEpisodesDir          = "~/.local/share/curacast/episodes"
	defaultScriptsDir           = "~/.local/share/curacast/scripts"
	defaultInboxDir             = "~/.local/share/curacast/inbox"
	defaultLogDir               = "~/.local/share/curacast/logs"
	defaultLedgerPath           = "~/.local/share/curacast/processed.json"
	defaultFeedPath             = "~/.local/share/curacast/feed.xml"
	defaultTargetArticleCount   = 3
	defaultOverSelectMultiplier = 1.5
	defaultFetchBatchSize       = 3
	defaultFetchTimeoutSeconds  = 15
	defaultFailedURLRetainDays  = 7
	defaultProcessedRetainDays  = 90
	defaultLLMBaseURL           = "https://api.openai.com/v1"
	defaultLLMModel             = "gpt-4o-mini"
	defaultLLMTimeoutSeconds    = 120
	defaultSynthBaseURL         = "https://api.openai.com/v1"
	defaultSynthModel           = "tts-1"
	defaultSynthVoice           = "alloy"
	defaultSynthMaxChunkChars   = 4000
	defaultSynthConcurrency     = 3
	defaultSynthTimeoutSeconds  = 120
	defaultFeedTitle            = "Curacast"
	defaultFeedLanguage         = "en-us"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:     defaultDataDir,
			EpisodesDir: defaultEpisodesDir,
			ScriptsDir:  defaultScriptsDir,
			InboxDir:    defaultInboxDir,
			LogDir:      defaultLogDir,
			LedgerPath:  defaultLedgerPath,
			FeedPath:    defaultFeedPath,
		},
		Pipeline: Pipeline{
			TargetArticleCount:   defaultTargetArticleCount,
			OverSelectMultiplier: defaultOverSelectMultiplier,
			FetchBatchSize:       defaultFetchBatchSize,
			FetchTimeoutSeconds:  defaultFetchTimeoutSeconds,
			FailedURLRetainDays:  defaultFailedURLRetainDays,
			ProcessedRetainDays:  defaultProcessedRetainDays,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Synthesis: Synthesis{
			BaseURL:        defaultSynthBaseURL,
			Model:          defaultSynthModel,
			Voice:          defaultSynthVoice,
			MaxChunkChars:  defaultSynthMaxChunkChars,
			Concurrency:    defaultSynthConcurrency,
			TimeoutSeconds: defaultSynthTimeoutSeconds,
		},
		Feed: Feed{
			Title:    defaultFeedTitle,
			Language: defaultFeedLanguage,
		},
		Notifications: Notifications{
			RequestTimeout: 10,
			RunStarted:     true,
			Published:      true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
