package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"kalavedi/config"
	"kalavedi/connection"
	"kalavedi/logger"
)

func main() {
	cfg, loadedEnv, err := config.Load(".env")
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zl, err := logger.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zl.Sync()

	if !loadedEnv {
		zl.Warn("no .env file found; using the process environment")
	}
	if err := config.LogConfig(zl, cfg); err != nil {
		zl.Warn("failed to log config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := connection.StartServer(ctx, cfg, zl); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}
