// Package handler wires the HTTP surface: routing, authentication
// middleware, request decoding and error mapping.
package handler

import (
	"net/http"
	"time"

	"github.com/miniledger/easyexp-go/internal/infra/observability"
	"github.com/miniledger/easyexp-go/internal/port"
	"github.com/miniledger/easyexp-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// Services bundles the application services the router dispatches to.
type Services struct {
	Auth    *service.AuthService
	Expense *service.ExpenseService
	Config  *service.ConfigService
	Stats   *service.StatsService
	Export  *service.ExportService
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(svcs Services, store port.Pinger, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler(store, logger))
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API ---
	r.Route("/api", func(r chi.Router) {

		// Public auth endpoints. Logout is public too: tokens are
		// stateless, so there is nothing server-side to authorize.
		r.Post("/auth/register", authRegisterHandler(svcs.Auth, logger))
		r.Post("/auth/login", authLoginHandler(svcs.Auth, logger))
		r.Post("/auth/logout", authLogoutHandler(svcs.Auth, logger))

		// Everything below requires a valid token
		r.Group(func(r chi.Router) {
			r.Use(JWTAuthMiddleware(svcs.Auth, logger))

			r.Post("/auth/change-password", authChangePasswordHandler(svcs.Auth, logger))

			r.Get("/config", getConfigHandler(svcs.Config, logger))
			r.Put("/config", updateConfigHandler(svcs.Config, logger))

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", listExpensesHandler(svcs.Expense, logger))
				r.Post("/", createExpenseHandler(svcs.Expense, logger))

				// fixed paths before the id wildcard
				r.Get("/stats", statsHandler(svcs.Stats, logger))
				r.Get("/export", exportExpensesHandler(svcs.Export, logger))

				r.Get("/{id}", getExpenseHandler(svcs.Expense, logger))
				r.Put("/{id}", updateExpenseHandler(svcs.Expense, logger))
				r.Delete("/{id}", deleteExpenseHandler(svcs.Expense, logger))
			})
		})
	})

	return r
}

// ============================================================
// Operational handlers
// ============================================================

func healthzHandler(store port.Pinger, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		status := "healthy"
		code := http.StatusOK
		var latency int64

		if store != nil {
			start := time.Now()
			if err := store.Ping(ctx); err != nil {
				logger.Error("healthz: storage ping failed", zap.Error(err))
				status = "unhealthy"
				code = http.StatusServiceUnavailable
			}
			latency = time.Since(start).Milliseconds()
		}

		writeJSON(w, code, map[string]any{
			"status":     status,
			"latency_ms": latency,
			"checked_at": time.Now().Format(time.RFC3339),
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}
