package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hibiken/asynq"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/email"
)

// Handlers processes email tasks.
type Handlers struct {
	mailer   email.EmailService
	loginURL string
}

func NewHandlers(mailer email.EmailService, frontendURL string) *Handlers {
	return &Handlers{
		mailer:   mailer,
		loginURL: strings.TrimRight(frontendURL, "/") + "/login",
	}
}

func (h *Handlers) HandleSendOTP(ctx context.Context, t *asynq.Task) error {
	var payload SendOTPPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode otp payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := h.mailer.SendOTP(payload.To, payload.Name, payload.Code, payload.ExpiresIn); err != nil {
		return fmt.Errorf("send otp email: %w", err)
	}
	return nil
}

func (h *Handlers) HandleAccountDecision(ctx context.Context, t *asynq.Task) error {
	var payload AccountDecisionPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("decode account decision payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := h.mailer.SendAccountDecision(payload.To, payload.Name, payload.Approved, h.loginURL); err != nil {
		return fmt.Errorf("send account decision email: %w", err)
	}
	return nil
}

// Mux registers every task type on a fresh asynq mux.
func (h *Handlers) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskTypeSendOTP, h.HandleSendOTP)
	mux.HandleFunc(TaskTypeSendAccountDecision, h.HandleAccountDecision)
	return mux
}

// Worker wraps the asynq server.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *slog.Logger
}

type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Concurrency int
	Logger      *slog.Logger
	Handlers    *Handlers
}

func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.Handlers == nil {
		return nil, errors.New("worker: handlers are required")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
		},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			retried, _ := asynq.GetRetryCount(ctx)
			maxRetry, _ := asynq.GetMaxRetry(ctx)
			logger.Error("task failed",
				slog.String("type", task.Type()),
				slog.Int("retry", retried),
				slog.Int("max_retry", maxRetry),
				slog.Any("error", err),
			)
		}),
	})

	return &Worker{server: srv, mux: cfg.Handlers.Mux(), logger: logger}, nil
}

// Run processes jobs until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.server.Start(w.mux); err != nil {
		return err
	}
	w.logger.Info("worker started")

	<-ctx.Done()
	w.logger.Info("stopping worker")
	w.server.Shutdown()
	return nil
}
