package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateProvider(); err != nil {
		return err
	}
	if err := c.validateProjects(); err != nil {
		return err
	}
	if err := c.validateArtifacts(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateProvider() error {
	if c.Provider.APIKey == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/storyreel/config.toml"
		}
		return fmt.Errorf("provider.api_key is required. Set MINIMAX_API_KEY env var or edit %s (create with 'storyreel config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateProjects() error {
	if c.Projects.MaxTargetSeconds <= 0 {
		return errors.New("projects.max_target_seconds must be positive")
	}
	if c.Projects.DurationTolerance <= 0 {
		return errors.New("projects.duration_tolerance_seconds must be positive")
	}
	return nil
}

func (c *Config) validateArtifacts() error {
	if !c.Artifacts.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Artifacts.Endpoint) == "" {
		return errors.New("artifacts.endpoint must be set when artifacts.enabled is true")
	}
	if strings.TrimSpace(c.Artifacts.Bucket) == "" {
		return errors.New("artifacts.bucket must be set when artifacts.enabled is true")
	}
	if strings.TrimSpace(c.Artifacts.AccessKey) == "" || strings.TrimSpace(c.Artifacts.SecretKey) == "" {
		return errors.New("artifacts.access_key and artifacts.secret_key must be set when artifacts.enabled is true")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
		"provider.request_timeout":      c.Provider.RequestTimeout,
		"provider.poll_interval":        c.Provider.PollInterval,
		"provider.max_wait_seconds":     c.Provider.MaxWaitSeconds,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
