package testsupport

import (
	"path/filepath"
	"testing"

	"storyreel/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Provider.APIKey = "test"
	cfg.Paths.DataDir = filepath.Join(base, "projects")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Paths.APIBind = "127.0.0.1:0"

	for _, opt := range opts {
		opt(&cfg)
	}

	return &cfg
}

// WithProviderKey sets the provider API key on the test config.
func WithProviderKey(key string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Provider.APIKey = key
	}
}

// WithAutoApprovePrompts enables the prompt auto-approval gate.
func WithAutoApprovePrompts() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Projects.AutoApprovePrompts = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
