package config

const (
	defaultBind              = "127.0.0.1:7099"
	defaultStateDir          = "~/.local/share/marquee"
	defaultLogDir            = "~/.local/share/marquee/logs"
	defaultTMDBBaseURL       = "https://api.themoviedb.org/3"
	defaultTMDBLanguage      = "en-US"
	defaultTMDBRegion        = "US"
	defaultTMDBImageBaseURL  = "https://image.tmdb.org/t/p/w500"
	defaultLLMBaseURL        = "https://openrouter.ai/api/v1/chat/completions"
	defaultLLMModel          = "google/gemini-3-flash-preview"
	defaultLLMReferer        = "https://github.com/marquee-app/marquee"
	defaultLLMTitle          = "Marquee Curator"
	defaultLLMTemperature    = 0.8
	defaultLLMTimeoutSeconds = 45
	defaultLineupSize        = 7
	defaultAlternativesMin   = 3
	defaultAlternativesMax   = 6
	defaultBanListPromptCap  = 30
	defaultPreviousTitlesCap = 50
	defaultRatingThreshold   = 6.3
	defaultPopularityMin     = 25
	defaultMomentumMin       = 4
	defaultHistoryLimit      = 40
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Server: Server{
			Bind:     defaultBind,
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		TMDB: TMDB{
			BaseURL:      defaultTMDBBaseURL,
			Language:     defaultTMDBLanguage,
			Region:       defaultTMDBRegion,
			ImageBaseURL: defaultTMDBImageBaseURL,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			Referer:        defaultLLMReferer,
			Title:          defaultLLMTitle,
			Temperature:    defaultLLMTemperature,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Curator: Curator{
			LineupSize:        defaultLineupSize,
			AlternativesMin:   defaultAlternativesMin,
			AlternativesMax:   defaultAlternativesMax,
			BanListPromptCap:  defaultBanListPromptCap,
			PreviousTitlesCap: defaultPreviousTitlesCap,
			RatingThreshold:   defaultRatingThreshold,
			PopularityMin:     defaultPopularityMin,
			MomentumMin:       defaultMomentumMin,
		},
		History: History{
			Enabled:     true,
			RecentLimit: defaultHistoryLimit,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
