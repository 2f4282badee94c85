package main

import (
	"context"
	"fmt"
	"os"

	"storyreel/internal/config"
	"storyreel/internal/daemonrun"
)

func main() {
	cfg, _, _, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "ensure directories: %v\n", err)
		os.Exit(1)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{}); err != nil {
		fmt.Fprintf(os.Stderr, "storyreeld: %v\n", err)
		os.Exit(1)
	}
}
