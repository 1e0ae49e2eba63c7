package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/officecorner/officecorner-backend-go/internal/config"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/email"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jobs"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Worker exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New("officecorner-worker", cfg.App.Env, cfg.App.LogLevel)
	slog.SetDefault(logger)

	mailer, err := email.NewEmailService(cfg.SMTP)
	if err != nil {
		return fmt.Errorf("init email: %w", err)
	}
	if cfg.SMTP.Host == "" {
		slog.Warn("SMTP_HOST is empty, emails will be skipped")
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		Logger:   logger,
		Handlers: jobs.NewHandlers(mailer, cfg.App.FrontendURL),
	})
	if err != nil {
		return fmt.Errorf("init worker: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return worker.Run(ctx)
}
