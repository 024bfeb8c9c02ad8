package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateCurator(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Bind == "" {
		return errors.New("server.bind must be set")
	}
	if c.Server.StateDir == "" {
		return errors.New("server.state_dir must be set")
	}
	return nil
}

func (c *Config) validateLLM() error {
	// The API key itself is checked at session start so read-only surfaces
	// (curator listing, search passthrough) work without one.
	if c.LLM.BaseURL == "" {
		return errors.New("llm.base_url must be set")
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model must be set")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateCurator() error {
	if c.Curator.LineupSize < 2 {
		return errors.New("curator.lineup_size must be at least 2")
	}
	if c.Curator.AlternativesMin > c.Curator.AlternativesMax {
		return fmt.Errorf(
			"curator.alternatives_min (%d) must not exceed curator.alternatives_max (%d)",
			c.Curator.AlternativesMin, c.Curator.AlternativesMax,
		)
	}
	if c.Curator.AlternativesMax > c.Curator.LineupSize-1 {
		return fmt.Errorf(
			"curator.alternatives_max (%d) must fit the lineup size (%d)",
			c.Curator.AlternativesMax, c.Curator.LineupSize,
		)
	}
	if c.Curator.RatingThreshold < 0 || c.Curator.RatingThreshold > 10 {
		return errors.New("curator.rating_threshold must be between 0 and 10")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
