package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/httprate"
	"github.com/go-chi/jwtauth/v5"
	"github.com/officecorner/officecorner-backend-go/internal/domain/user"
	"github.com/officecorner/officecorner-backend-go/internal/handler/http/middleware"
	"github.com/officecorner/officecorner-backend-go/internal/handler/http/response"
	"github.com/officecorner/officecorner-backend-go/internal/pkg/jwt"
	"github.com/unrolled/secure"
)

// HealthCheck pings one backing service.
type HealthCheck func(ctx context.Context) error

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	Production     bool

	// AuthRateLimit is requests per minute per IP on the public auth routes.
	AuthRateLimit int

	HealthChecks map[string]HealthCheck
}

type Handlers struct {
	Auth         AuthHandler
	Notification NotificationHandler
	Employee     EmployeeHandler
	Attendance   AttendanceHandler
	Payroll      PayrollHandler
	Task         TaskHandler
	Event        EventHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	if cfg.AuthRateLimit <= 0 {
		cfg.AuthRateLimit = 20
	}

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        cfg.Production,
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
		IsDevelopment:      !cfg.Production,
	})

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(chiMiddleware.RealIP)

	if cfg.Logger != nil {
		r.Use(httplog.RequestLogger(cfg.Logger, &httplog.Options{
			Level:  slog.LevelInfo,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(secureMiddleware.Handler)
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Get("/healthz", healthz(cfg.HealthChecks))

	authLimiter := httprate.Limit(cfg.AuthRateLimit, time.Minute,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			response.TooManyRequests(w, "Too many requests, please try again later")
		}),
	)

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authLimiter)
				r.Post("/signup", h.Auth.Signup)
				r.Post("/verify-otp", h.Auth.VerifyOTP)
				r.Post("/resend-otp", h.Auth.ResendOTP)
				r.Post("/login", h.Auth.Login)
				r.Get("/login/google", h.Auth.LoginWithGoogle)
				r.Get("/oauth/callback/google", h.Auth.OAuthCallbackGoogle)
			})
			r.Post("/refresh", h.Auth.RefreshToken)
			r.Post("/logout", h.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired)
				r.Get("/me", h.Auth.Me)
			})
		})

		// Browsers cannot set headers on a WebSocket or EventSource, so
		// these authenticate with the socket token in the query string.
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/ws", h.Notification.WebSocket)
			r.Get("/stream", h.Notification.Stream)

			r.Group(func(r chi.Router) {
				r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
				r.Use(middleware.AuthRequired)
				r.Get("/token", h.Notification.GetSocketToken)
			})
		})

		// Requires an approved account
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(middleware.RequireApproved)

			r.Route("/employees", func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.With(middleware.RequirePermission(user.PermissionEmployeeViewAll)).Get("/", h.Employee.ListEmployees)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEmployeeApprove))
					r.Post("/{id}/approve", h.Employee.ApproveEmployee)
					r.Post("/{id}/reject", h.Employee.RejectEmployee)
				})
			})

			r.Route("/attendance", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/clock-in", h.Attendance.ClockIn)
				r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/clock-out", h.Attendance.ClockOut)
				r.With(middleware.RequirePermission(user.PermissionAttendanceViewOwn)).Get("/my", h.Attendance.GetMyAttendance)

				r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/", h.Attendance.ListAttendance)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceManage))
					r.Post("/", h.Attendance.CreateAttendance)
					r.Delete("/{id}", h.Attendance.DeleteAttendance)
				})
			})

			r.Route("/payroll", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionPayrollViewOwn))
				r.Get("/settings", h.Payroll.GetSettings)
				r.With(middleware.RequirePermission(user.PermissionPayrollManage)).Put("/settings", h.Payroll.UpdateSettings)
				r.Get("/summary", h.Payroll.GetSummary)
				r.Get("/report.csv", h.Payroll.ExportReport)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionTaskViewAssigned))
				r.Get("/", h.Task.ListTasks)
				r.Get("/{id}", h.Task.GetTask)
				r.Put("/{id}", h.Task.UpdateTask)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionTaskManage))
					r.Post("/", h.Task.CreateTask)
					r.Delete("/{id}", h.Task.DeleteTask)
				})
			})

			r.Route("/events", func(r chi.Router) {
				r.Get("/", h.Event.ListEvents)
				r.Get("/{id}", h.Event.GetEvent)
				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionEventCreate))
					r.Post("/", h.Event.CreateEvent)
					r.Put("/{id}", h.Event.UpdateEvent)
					r.Delete("/{id}", h.Event.DeleteEvent)
				})
			})
		})
	})

	return r
}

func healthz(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := make(map[string]string, len(checks))
		healthy := true
		for name, check := range checks {
			if err := check(ctx); err != nil {
				slog.Warn("Health check failed", "component", name, "error", err)
				status[name] = "down"
				healthy = false
				continue
			}
			status[name] = "up"
		}

		if !healthy {
			response.ServiceUnavailable(w, "Service unavailable", status)
			return
		}
		response.Success(w, status)
	}
}
