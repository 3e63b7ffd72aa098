package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lift-alumni/liftfund/internal/audit"
	"github.com/lift-alumni/liftfund/internal/auth"
	"github.com/lift-alumni/liftfund/internal/ledger"
	"github.com/lift-alumni/liftfund/internal/observability"
	"github.com/lift-alumni/liftfund/internal/rbac"
	"github.com/lift-alumni/liftfund/internal/settings"
	"github.com/lift-alumni/liftfund/internal/shared"
	"github.com/lift-alumni/liftfund/internal/users"
	"github.com/lift-alumni/liftfund/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger          *slog.Logger
	Config          *Config
	SessionManager  *shared.SessionManager
	Pool            *pgxpool.Pool
	RBACMiddleware  rbac.Middleware
	Metrics         *observability.Metrics
	AuthHandler     *auth.Handler
	LedgerHandler   *ledger.Handler
	SettingsHandler *settings.Handler
	AuditHandler    *audit.Handler
	UsersHandler    *users.Handler
	JobsHandler     *jobs.Handler
}

// NewRouter constructs the chi.Router serving the JSON API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if params.Pool != nil {
			if err := params.Pool.Ping(req.Context()); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		if params.AuthHandler != nil {
			params.AuthHandler.MountRoutes(r)
		}
		if params.LedgerHandler != nil {
			params.LedgerHandler.MountRoutes(r)
		}
		if params.SettingsHandler != nil {
			r.Route("/settings", func(r chi.Router) {
				params.SettingsHandler.MountRoutes(r)
			})
		}
		if params.AuditHandler != nil {
			r.Route("/audit", func(r chi.Router) {
				r.Use(params.RBACMiddleware.RequireAny(rbac.RoleAdmin, rbac.RoleTreasurer))
				params.AuditHandler.MountRoutes(r)
			})
		}
		if params.UsersHandler != nil {
			params.UsersHandler.MountRoutes(r)
		}
		if params.JobsHandler != nil {
			r.Route("/jobs", func(r chi.Router) {
				r.Use(params.RBACMiddleware.RequireAny(rbac.RoleAdmin))
				params.JobsHandler.MountRoutes(r)
			})
		}
	})

	return r
}
