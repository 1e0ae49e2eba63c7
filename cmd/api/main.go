package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/officecorner/officecorner-backend-go/internal/config"
	appHTTP "github.com/officecorner/officecorner-backend-go/internal/handler/http"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/cron"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/database"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jobs"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/logging"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/oauth"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/otp"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/realtime"
	"github.com/officecorner/officecorner-backend-go/internal/repository/postgresql"
	attendanceService "github.com/officecorner/officecorner-backend-go/internal/service/attendance"
	serviceAuth "github.com/officecorner/officecorner-backend-go/internal/service/auth"
	employeeService "github.com/officecorner/officecorner-backend-go/internal/service/employee"
	eventService "github.com/officecorner/officecorner-backend-go/internal/service/event"
	notificationService "github.com/officecorner/officecorner-backend-go/internal/service/notification"
	payrollService "github.com/officecorner/officecorner-backend-go/internal/service/payroll"
	taskService "github.com/officecorner/officecorner-backend-go/internal/service/task"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
)

const (
	refreshTokenRetention = 7 * 24 * time.Hour
	shutdownTimeout       = 15 * time.Second
)

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.New("officecorner-api", cfg.App.Env, cfg.App.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	queue := jobs.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer queue.Close()

	txManager := postgresql.NewTxManager(db)
	userRepo := postgresql.NewUserRepository(db)
	JWTRepository := postgresql.NewJWTRepository(db)
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	taskRepo := postgresql.NewTaskRepository(db)
	eventRepo := postgresql.NewEventRepository(db)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration, cfg.JWT.RefreshExpiration, cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("init jwt: %w", err)
	}
	GoogleService := oauth.NewGoogleService(cfg.OAuth2Google.ClientID, cfg.OAuth2Google.ClientSecret, cfg.OAuth2Google.RedirectURL, cfg.OAuth2Google.Scopes)
	otpStore := otp.NewStore(rdb, otp.Options{
		TTL:            cfg.OTP.TTL,
		ResendCooldown: cfg.OTP.ResendCooldown,
		MaxAttempts:    cfg.OTP.MaxAttempts,
	})
	hub := realtime.NewHub()

	notifSvc := notificationService.NewNotificationService(hub, queue)
	authSvc := serviceAuth.NewAuthService(txManager, userRepo, JWTRepository, JWTService, otpStore, GoogleService, queue)
	employeeSvc := employeeService.NewEmployeeService(txManager, userRepo, notifSvc)
	attendanceSvc := attendanceService.NewAttendanceService(txManager, attendanceRepo, userRepo, payrollRepo, attendanceService.Policy{
		WorkdayStart: cfg.Attendance.WorkdayStart,
		LateGrace:    cfg.Attendance.LateGrace,
		Location:     cfg.Attendance.Location,
	})
	payrollSvc := payrollService.NewPayrollService(payrollRepo, attendanceRepo, userRepo)
	taskSvc := taskService.NewTaskService(txManager, taskRepo, userRepo)
	eventSvc := eventService.NewEventService(txManager, eventRepo)

	router := appHTTP.NewRouter(appHTTP.RouterConfig{
		Logger:         logger,
		AllowedOrigins: cfg.App.AllowedOrigins,
		Production:     cfg.IsProduction(),
		HealthChecks: map[string]appHTTP.HealthCheck{
			"postgres": db.Ping,
			"redis": func(ctx context.Context) error {
				return rdb.Ping(ctx).Err()
			},
		},
	}, JWTService, appHTTP.Handlers{
		Auth:         appHTTP.NewAuthHandler(JWTService, authSvc, GoogleService, cfg.App.FrontendURL, cfg.IsProduction()),
		Notification: appHTTP.NewNotificationHandler(notifSvc, JWTService, cfg.App.AllowedOrigins),
		Employee:     appHTTP.NewEmployeeHandler(employeeSvc),
		Attendance:   appHTTP.NewAttendanceHandler(attendanceSvc),
		Payroll:      appHTTP.NewPayrollHandler(payrollSvc),
		Task:         appHTTP.NewTaskHandler(taskSvc),
		Event:        appHTTP.NewEventHandler(eventSvc),
	})

	scheduler := cron.NewScheduler(logger)
	cron.NewMaintenanceJobs(JWTRepository, attendanceRepo, cfg.Attendance.Location, refreshTokenRetention).Register(scheduler)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		scheduler.Start(gctx)
		scheduler.Wait()
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Shutdown does not wait for hijacked WebSocket connections and
		// would wait for SSE streams forever, so end both first.
		slog.Info("Closing realtime connections", "subscribers", hub.TotalSubscribers())
		hub.Close()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
