// Package httptransport assembles the HTTP surface: shared middleware,
// health and metrics endpoints, and the authenticated and admin route
// groups.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"presence/pkg/platform/httputil"
	"presence/pkg/platform/middleware/admin"
	"presence/pkg/platform/middleware/auth"
	"presence/pkg/platform/middleware/metadata"
	"presence/pkg/platform/middleware/request"
	"presence/pkg/platform/middleware/requesttime"
)

const requestTimeout = 30 * time.Second

// RouteRegistrar registers a module's routes on a group.
type RouteRegistrar interface {
	Register(r chi.Router)
	RegisterAdmin(r chi.Router)
}

// Dependencies are what the router needs from main.
type Dependencies struct {
	Logger     *slog.Logger
	Observer   request.Observer
	Gatherer   prometheus.Gatherer
	Tokens     auth.JWTValidator
	AdminToken string
	Modules    []RouteRegistrar
	// Clock overrides the request time; nil uses time.Now.
	Clock func() time.Time
	// Ready reports dependency health for /healthz; nil means always ready.
	Ready func(ctx context.Context) error
}

// NewRouter wires every endpoint.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recover(deps.Logger))
	r.Use(request.RequestID)
	r.Use(metadata.ClientMetadata)
	if deps.Clock != nil {
		r.Use(requesttime.WithClock(deps.Clock))
	} else {
		r.Use(requesttime.Middleware)
	}
	r.Use(request.Logger(deps.Logger, deps.Observer))
	r.Use(chimiddleware.Timeout(requestTimeout))

	r.Get("/healthz", healthz(deps.Ready))
	if deps.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(auth.RequireAuth(deps.Tokens, deps.Logger))
		for _, m := range deps.Modules {
			m.Register(api)
		}
	})
	r.Route("/admin", func(adm chi.Router) {
		adm.Use(admin.RequireAdminToken(deps.AdminToken, deps.Logger))
		for _, m := range deps.Modules {
			m.RegisterAdmin(adm)
		}
	})
	return r
}

func healthz(ready func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
