package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeProvider()
	c.normalizePlanner()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	if strings.TrimSpace(c.Paths.FFmpegBin) == "" {
		c.Paths.FFmpegBin = defaultFFmpegBin
	}
	if strings.TrimSpace(c.Paths.FFprobeBin) == "" {
		c.Paths.FFprobeBin = defaultFFprobeBin
	}
	return nil
}

func (c *Config) normalizeProvider() {
	if c.Provider.APIKey == "" {
		if value, ok := os.LookupEnv("MINIMAX_API_KEY"); ok {
			c.Provider.APIKey = value
		}
	}
	c.Provider.BaseURL = strings.TrimSpace(c.Provider.BaseURL)
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = defaultProviderBaseURL
	}
	if c.Provider.PollInterval <= 0 {
		c.Provider.PollInterval = defaultProviderPoll
	}
	if c.Provider.MaxWaitSeconds <= 0 {
		c.Provider.MaxWaitSeconds = defaultProviderMaxWait
	}
	if c.Provider.TransientRetries <= 0 {
		c.Provider.TransientRetries = defaultTransientRetries
	}
}

func (c *Config) normalizePlanner() {
	if c.Planner.APIKey == "" {
		if value, ok := os.LookupEnv("OPENROUTER_API_KEY"); ok {
			c.Planner.APIKey = value
		}
	}
	c.Planner.BaseURL = strings.TrimSpace(c.Planner.BaseURL)
	if c.Planner.BaseURL == "" {
		c.Planner.BaseURL = defaultPlannerBaseURL
	}
	if c.Planner.TimeoutSeconds <= 0 {
		c.Planner.TimeoutSeconds = defaultPlannerTimeout
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
