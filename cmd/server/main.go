package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"repo-popularity/internal/config"
	"repo-popularity/internal/logger"
	"repo-popularity/internal/server"

	"github.com/gin-gonic/gin"
)

// @title Repository Popularity API
// @version 1.0
// @description Tracks GitHub repositories and classifies them as popular or not popular

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer JWT

func main() {
	if err := run(); err != nil {
		logger.New(&config.LogConfig{}).Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(&cfg.Log)

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv, err := server.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return srv.Serve(ctx, true)
}
