package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"cloudy/config"
	"cloudy/internal"
)

func main() {
	ctx := context.Background()

	// logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("cannot initialize zap logger: %v", err)
	}

	// config
	if err = config.LoadDotEnv(".env"); err != nil {
		logger.Fatal("error loading .env file", zap.Error(err))
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config error", zap.Error(err))
	}
	if err = cfg.Validate(); err != nil {
		logger.Fatal("invalid config", zap.Error(err))
	}

	app, err := internal.NewApp(ctx, logger, cfg)
	if err != nil {
		logger.Fatal("init app failed", zap.Error(err))
	}
	defer app.Close()

	app.InitControllers()

	if err = app.Run(ctx); err != nil {
		app.Logger().Sugar().Errorf("cloudy stopped with error: %v", err)
		os.Exit(1)
	}
}
