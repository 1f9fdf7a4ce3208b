package server

import (
	"net/http"
	"time"

	"katrina-one-backend/internal/config"
	"katrina-one-backend/internal/domain"
	"katrina-one-backend/internal/handler"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"log/slog"
)

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config,
	logger *slog.Logger,
	health handler.HealthHandler,
	auth handler.AuthHandler,
	reports handler.ShiftReportHandler,
	summaries handler.ShiftSummaryHandler,
	schedule handler.ScheduleHandler,
	checklists handler.ChecklistHandler,
	salaries handler.SalaryHandler,
	violations handler.ViolationHandler,
	revenue handler.RevenueHandler,
	expenses handler.ExpenseHandler,
	finance handler.FinanceReportHandler,
	payments handler.PaymentHandler,
	events handler.EventHandler,
	fcm handler.FCMHandler,
	notifications handler.NotificationHandler,
	activityLogs handler.ActivityLogHandler,
	docs handler.DocsHandler,
	home handler.HomeHandler,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(httprate.LimitByIP(200, 1*time.Minute))

	health.RegisterRoutes(r)
	auth.RegisterRoutes(r)
	home.RegisterRoutes(r)
	docs.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(pr chi.Router) {
		pr.Use(AuthMiddleware(cfg.JWTSecret))
		// staff-level (server/manager/admin)
		pr.Group(func(sr chi.Router) {
			sr.Use(RequireRole(domain.RoleAdmin, domain.RoleManager, domain.RoleServer))
			reports.RegisterRoutes(sr)
			summaries.RegisterRoutes(sr)
			schedule.RegisterStaffRoutes(sr)
			checklists.RegisterStaffRoutes(sr)
			violations.RegisterStaffRoutes(sr)
			payments.RegisterRoutes(sr)
			events.RegisterStaffRoutes(sr)
			fcm.RegisterRoutes(sr)
			notifications.RegisterRoutes(sr)
		})
		// manager-level (manager/admin)
		pr.Group(func(mr chi.Router) {
			mr.Use(RequireRole(domain.RoleAdmin, domain.RoleManager))
			schedule.RegisterManagerRoutes(mr)
			checklists.RegisterManagerRoutes(mr)
			salaries.RegisterRoutes(mr)
			violations.RegisterManagerRoutes(mr)
			revenue.RegisterRoutes(mr)
			expenses.RegisterRoutes(mr)
			finance.RegisterRoutes(mr)
			events.RegisterManagerRoutes(mr)
			activityLogs.RegisterRoutes(mr)
		})
	})

	return r
}
