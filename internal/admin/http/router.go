package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/forkful/menuboard/internal/admin/obs"
	"github.com/forkful/menuboard/internal/admin/rbac"
	"github.com/forkful/menuboard/internal/admin/service"
	"github.com/forkful/menuboard/internal/admin/store"
	"github.com/forkful/menuboard/pkg/httpx"
	"github.com/forkful/menuboard/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store  store.Store
	access *rbac.Access
	roles  *rbac.Model

	AuthService      *service.AuthService
	AuditService     *service.AuditService
	UserAdminService *service.UserAdminService

	// ExposeResetTokens returns password reset tokens in API responses
	// instead of delivering them out of band. Development only.
	ExposeResetTokens bool
}

func NewRouter(
	buildVersion string,
	st store.Store,
	access *rbac.Access,
	roles *rbac.Model,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		access:       access,
		roles:        roles,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		obs.Instrument,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerAudit()
	r.registerContent()
	r.registerSystem()
}

// ServeHTTP implements http.Handler and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:       r.AuthService,
		ExposeResetTokens: r.ExposeResetTokens,
	}

	// Login is the brute-force target; strict limit keyed by IP.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.Login),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/logout",
		httpx.Chain(http.HandlerFunc(h.Logout),
			Authn(r.AuthService),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.Refresh),
			Authn(r.AuthService),
			RequireActor,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(http.HandlerFunc(h.Me),
			Authn(r.AuthService),
			RequireActor,
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// The reset flow is unauthenticated by nature; keep it strictly limited.
	r.Mux.Handle("POST /v1/auth/password/forgot",
		httpx.Chain(http.HandlerFunc(h.RequestPasswordReset),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/password/reset",
		httpx.Chain(http.HandlerFunc(h.ResetPassword),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/password/change",
		httpx.Chain(http.HandlerFunc(h.ChangePassword),
			Authn(r.AuthService),
			RequireActor,
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserAdminService: r.UserAdminService}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			Authn(r.AuthService),
			Authz(r.access),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /admin/users", secured(h.List))
	r.Mux.Handle("POST /admin/users/invite", secured(h.Invite))
	r.Mux.Handle("DELETE /admin/users/{id}", secured(h.Remove))
	r.Mux.Handle("PUT /admin/users/{id}/role", secured(h.UpdateRole))

	// Invitation acceptance is a public signup endpoint.
	r.Mux.Handle("POST /v1/invitations/accept",
		httpx.Chain(http.HandlerFunc(h.AcceptInvite),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerAudit() {
	h := &AuditHandler{AuditService: r.AuditService}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			Authn(r.AuthService),
			Authz(r.access),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		)
	}

	r.Mux.Handle("GET /admin/audit", secured(h.Logs))
	r.Mux.Handle("GET /admin/audit/entity/{type}/{id}", secured(h.EntityHistory))
	r.Mux.Handle("GET /admin/audit/activity/{actorId}", secured(h.UserActivity))
	r.Mux.Handle("GET /admin/audit/report", secured(h.Report))
	r.Mux.Handle("POST /admin/audit/rollback/{entryId}", secured(h.Rollback))
}

func (r *Router) registerContent() {
	h := &ContentHandler{
		Store:        r.store,
		AuditService: r.AuditService,
	}

	secured := func(fn http.HandlerFunc) http.Handler {
		return httpx.Chain(fn,
			Authn(r.AuthService),
			Authz(r.access),
			httpx.RateLimitByIP(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("GET /admin/content", secured(h.List))
	r.Mux.Handle("POST /admin/content", secured(h.Create))
	r.Mux.Handle("GET /admin/content/{id}/history", secured(h.GetWithHistory))
	r.Mux.Handle("PATCH /admin/content/{id}", secured(h.Update))
	r.Mux.Handle("DELETE /admin/content/{id}", secured(h.Delete))
	r.Mux.Handle("POST /admin/content/bulk", secured(h.BulkUpdate))
	r.Mux.Handle("POST /admin/content/reorder", secured(h.Reorder))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.store))
	r.Mux.Handle("GET /metrics", obs.Handler())
}
