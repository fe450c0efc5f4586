package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"cloudy/config"
	"cloudy/internal/infrastructure/db/postgres"
)

func main() {
	direction := flag.String("direction", "up", "migration direction: up, down or status")
	timeout := flag.Duration("timeout", time.Minute, "overall migration timeout")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize zap logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err = config.LoadDotEnv(".env"); err != nil {
		logger.Fatal("error loading .env file", zap.Error(err))
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config error", zap.Error(err))
	}
	dsn, err := cfg.DBDSN()
	if err != nil {
		logger.Fatal("DB config error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err = postgres.Migrate(ctx, dsn, *direction); err != nil {
		logger.Fatal("migration failed", zap.String("direction", *direction), zap.Error(err))
	}
	logger.Info("migration finished", zap.String("direction", *direction))
}
