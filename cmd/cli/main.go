// cmd/cli/main.go
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"

	"music-board/internal/config"
	"music-board/internal/logger"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		log.Fatal("Failed to load config", "err", err)
	}

	root := logger.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	r := NewRunner(RunnerOpts{Config: cfg, Logger: root})

	if err := r.App().Run(context.Background(), os.Args); err != nil {
		root.Fatal("Command failed", "err", err)
	}
}
