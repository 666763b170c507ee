package http

import (
	"io"
	"log/slog"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"

	"github.com/cmlabs-hris/hris-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/jwt"
)

type RouterConfig struct {
	Logger         *slog.Logger
	AllowedOrigins []string
}

type Handlers struct {
	Auth       AuthHandler
	Employee   EmployeeHandler
	Attendance AttendanceHandler
	Leave      LeaveHandler
	Events     EventsHandler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {

		r.Post("/auth/login", h.Auth.Login)

		// The stream authenticates with its own short-lived token.
		r.Get("/events", h.Events.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Post("/auth/sse-token", h.Auth.SSEToken)

			r.Route("/employees", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionViewOwnProfile)).Get("/me", h.Employee.GetMe)
				r.Get("/{id}/location", h.Employee.GetAssignedLocation)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAttendanceViewOwn))
				r.Get("/today", h.Attendance.GetTodayStatus)
				r.Get("/my", h.Attendance.GetMyAttendance)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAttendanceCreate))
					r.Post("/check-in", h.Attendance.CheckIn)
					r.Post("/check-out", h.Attendance.CheckOut)
				})
			})

			r.Route("/leave/applications", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionLeaveViewOwn))
				r.Get("/", h.Leave.List)
				r.Get("/{id}", h.Leave.Get)

				// The leave gate decides per application; these only keep
				// plain employees off the mutation routes.
				r.With(middleware.RequirePermission(user.PermissionLeaveApprove)).Post("/{id}/approve", h.Leave.Approve)
				r.With(middleware.RequirePermission(user.PermissionLeaveApprove)).Post("/{id}/reject", h.Leave.Reject)
				r.With(middleware.RequirePermission(user.PermissionLeaveModify)).Post("/{id}/modify", h.Leave.Modify)
				r.With(middleware.RequirePermission(user.PermissionLeaveRevoke)).Post("/{id}/revoke", h.Leave.Revoke)
			})
		})
	})
	return r
}

// NewLogger builds the ECS-formatted JSON logger shared by the server and request logging.
func NewLogger(w io.Writer, level slog.Level, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(env != "development")
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-attendance"),
		slog.String("env", env),
	)
}
