package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"storyreel/internal/config"
	"storyreel/internal/services/planner"
)

// CheckDirectoryAccess verifies that the directory exists and is readable and
// writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckProviderKey verifies that the generation provider is configured.
func CheckProviderKey(cfg *config.Config) Result {
	const name = "Provider API key"
	if strings.TrimSpace(cfg.Provider.APIKey) == "" {
		return Result{Name: name, Detail: "api key missing"}
	}
	return Result{Name: name, Passed: true, Detail: "configured"}
}

// CheckPlanner verifies that the planner API is reachable and the key is
// valid. It uses a 30-second timeout and a single attempt.
func CheckPlanner(ctx context.Context, cfg *config.Config) Result {
	const name = "Planner LLM"

	checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client := planner.NewClient(planner.Config{
		APIKey:  cfg.Planner.APIKey,
		BaseURL: cfg.Planner.BaseURL,
		Model:   cfg.Planner.Model,
	}, planner.WithRetryMaxAttempts(1))

	if err := client.HealthCheck(checkCtx); err != nil {
		return Result{Name: name, Detail: summarizePlannerError(err)}
	}
	return Result{Name: name, Passed: true, Detail: "API reachable"}
}

func summarizePlannerError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "health check timed out (planner API unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "health check timed out (planner API unreachable)"
	}
	return err.Error()
}
