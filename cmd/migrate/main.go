package main

import (
	"fmt"
	"os"

	"github.com/carewallet/carewallet/internal/config"
	"github.com/carewallet/carewallet/internal/infra"
	"github.com/carewallet/carewallet/internal/logging"
)

// usage: migrate [up|down]
func main() {
	direction := "up"
	if len(os.Args) > 1 {
		direction = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.IsDev())

	if cfg.DatabaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	if err := infra.Migrate(cfg.DatabaseURL, direction); err != nil {
		logger.Error("migrate", "direction", direction, "error", err)
		os.Exit(1)
	}
	logger.Info("migrations complete", "direction", direction)
}
