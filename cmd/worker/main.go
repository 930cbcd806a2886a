package main

import (
	"context"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/vcscsvcscs/nutrifast/internal/app"
	"github.com/vcscsvcscs/nutrifast/internal/config"
	"github.com/vcscsvcscs/nutrifast/internal/tasks"
	"go.uber.org/zap"
)

// worker consumes background tasks published by the API when
// tasks.mode is amqp
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	logger, err := app.NewLogger(cfg.Logging, cfg.Server.Environment)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("component", "worker"))

	if cfg.Tasks.Mode != "amqp" {
		logger.Fatal("the worker requires tasks.mode=amqp", zap.String("mode", cfg.Tasks.Mode))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize application", zap.Error(err))
	}
	defer application.Close()

	worker := tasks.NewWorker(cfg.Tasks.AMQP.URL, cfg.Tasks.Queue, application.Registry, application.TaskStore, logger)

	logger.Info("Starting worker", zap.String("queue", cfg.Tasks.Queue))
	if err := worker.Run(ctx); err != nil {
		logger.Error("Worker stopped with error", zap.Error(err))
	}
	logger.Info("Worker exited")
}
