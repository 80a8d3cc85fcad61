package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/diegood/peoplix/adapter/cli"
	_ "github.com/diegood/peoplix/adapter/cli/schedule" // register schedule commands
	"github.com/diegood/peoplix/internal/app"
	"github.com/diegood/peoplix/pkg/config"
	"github.com/diegood/peoplix/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("failed to load config, using defaults", "error", err)
		cfg = &config.Config{AppEnv: "development"}
	}
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			// In development, allow the CLI to run without a database.
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()
		cli.SetApp(cli.NewApp(
			container.RecomputeTaskHandler,
			container.PreviewPlacementHandler,
			container.GetTaskScheduleHandler,
			container.Metrics,
		))
	}

	cli.Execute()
}
