// Package httpapi assembles the HTTP surface. Handlers stay thin and delegate
// to domain services; this router only decides which middleware guards which
// route group.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	identityhandler "seaplan/internal/identity/handler"
	planhandler "seaplan/internal/plan/handler"
	zonehandler "seaplan/internal/zone/handler"
	id "seaplan/pkg/domain"
	"seaplan/pkg/platform/middleware/auth"
	request "seaplan/pkg/platform/middleware/request"
)

// Handlers groups the per-domain HTTP handlers the router mounts.
type Handlers struct {
	Identity *identityhandler.Handler
	Plan     *planhandler.Handler
	Zone     *zonehandler.Handler
}

// NewRouter wires all endpoints with their middleware chains.
//
// Route map:
//
//	POST   /auth/login                              public
//	GET    /restricted-zones[/{id}]                 public
//	POST   /navigation-plans                        requester
//	GET    /navigation-plans                        requester, reviewer
//	DELETE /navigation-plans/{id}                   requester
//	PATCH  /navigation-plans/{id}/accepted          reviewer
//	PATCH  /navigation-plans/{id}/rejected          reviewer
//	POST/PUT/DELETE /restricted-zones[/{id}]        reviewer
//	PUT    /users/{id}/credits                      administrator
//	GET    /users/me                                any authenticated role
func NewRouter(h Handlers, validator auth.TokenValidator, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Metadata)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	h.Identity.Register(r)
	h.Zone.Register(r)

	requireAuth := auth.RequireAuth(validator, logger)

	r.Group(func(g chi.Router) {
		g.Use(requireAuth)
		h.Identity.RegisterAuthenticated(g)
	})
	r.Group(func(g chi.Router) {
		g.Use(requireAuth, auth.RequireRole(id.RoleRequester))
		h.Plan.RegisterRequester(g)
	})
	r.Group(func(g chi.Router) {
		g.Use(requireAuth, auth.RequireRole(id.RoleRequester, id.RoleReviewer))
		h.Plan.RegisterShared(g)
	})
	r.Group(func(g chi.Router) {
		g.Use(requireAuth, auth.RequireRole(id.RoleReviewer))
		h.Plan.RegisterReviewer(g)
		h.Zone.RegisterProtected(g)
	})
	r.Group(func(g chi.Router) {
		g.Use(requireAuth, auth.RequireRole(id.RoleAdministrator))
		h.Identity.RegisterAdmin(g)
	})

	return r
}
