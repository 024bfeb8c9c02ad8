package config

import (
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTMDB()
	c.normalizeLLM()
	c.normalizeCurator()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Server.StateDir, err = expandPath(c.Server.StateDir); err != nil {
		return err
	}
	if c.Server.LogDir, err = expandPath(c.Server.LogDir); err != nil {
		return err
	}
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)

	if c.History.Path, err = expandPath(c.History.Path); err != nil {
		return err
	}
	if c.History.Path == "" && c.Server.StateDir != "" {
		c.History.Path = filepath.Join(c.Server.StateDir, "history.db")
	}
	if c.History.RecentLimit <= 0 {
		c.History.RecentLimit = defaultHistoryLimit
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	c.TMDB.APIKey = strings.TrimSpace(c.TMDB.APIKey)
	if env := strings.TrimSpace(os.Getenv("TMDB_API_KEY")); env != "" {
		c.TMDB.APIKey = env
	}
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	if strings.TrimSpace(c.TMDB.Language) == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
	if strings.TrimSpace(c.TMDB.Region) == "" {
		c.TMDB.Region = defaultTMDBRegion
	}
	if strings.TrimSpace(c.TMDB.ImageBaseURL) == "" {
		c.TMDB.ImageBaseURL = defaultTMDBImageBaseURL
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	if env := strings.TrimSpace(os.Getenv("LLM_API_KEY")); env != "" {
		c.LLM.APIKey = env
	}
	c.LLM.BaseURL = strings.TrimSpace(c.LLM.BaseURL)
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.LLM.Temperature < 0 {
		c.LLM.Temperature = 0
	}
}

func (c *Config) normalizeCurator() {
	if c.Curator.LineupSize <= 0 {
		c.Curator.LineupSize = defaultLineupSize
	}
	if c.Curator.AlternativesMin <= 0 {
		c.Curator.AlternativesMin = defaultAlternativesMin
	}
	if c.Curator.AlternativesMax <= 0 {
		c.Curator.AlternativesMax = defaultAlternativesMax
	}
	if c.Curator.AlternativesMax > c.Curator.LineupSize-1 {
		c.Curator.AlternativesMax = c.Curator.LineupSize - 1
	}
	if c.Curator.BanListPromptCap <= 0 {
		c.Curator.BanListPromptCap = defaultBanListPromptCap
	}
	if c.Curator.PreviousTitlesCap <= 0 {
		c.Curator.PreviousTitlesCap = defaultPreviousTitlesCap
	}
	if c.Curator.RatingThreshold <= 0 {
		c.Curator.RatingThreshold = defaultRatingThreshold
	}
	if c.Curator.PopularityMin <= 0 {
		c.Curator.PopularityMin = defaultPopularityMin
	}
	if c.Curator.MomentumMin <= 0 {
		c.Curator.MomentumMin = defaultMomentumMin
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
