package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/forkful/menuboard/internal/admin/domain"
	"github.com/forkful/menuboard/internal/admin/rbac"
	"github.com/forkful/menuboard/internal/admin/service"
	"github.com/forkful/menuboard/pkg/adminsdk"
)

type ctxKey struct{ name string }

var (
	ctxKeyActor = ctxKey{"actor"}
	ctxKeyToken = ctxKey{"token"}
)

// ActorFromContext returns the authenticated actor, if any.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(ctxKeyActor).(domain.Actor)
	return actor, ok
}

// TokenFromContext returns the raw bearer token the actor presented.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(ctxKeyToken).(string)
	return token
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// Authn resolves a bearer token to an actor and stashes both on the request
// context. Requests without a valid session pass through unauthenticated;
// Authz or RequireActor decide whether that is acceptable.
func Authn(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			actor, err := auth.ValidateSession(r.Context(), token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeyActor, actor)
			ctx = context.WithValue(ctx, ctxKeyToken, token)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireActor rejects unauthenticated requests with 401.
func RequireActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ActorFromContext(r.Context()); !ok {
			adminsdk.ErrUnauthorized.WriteError(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Authz enforces the route-rule table. Anonymous requests to protected paths
// get 401, authenticated but unauthorized ones get 403.
func Authz(access *rbac.Access) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := ActorFromContext(r.Context())

			var actorPtr *domain.Actor
			if ok {
				actorPtr = &actor
			}

			if !access.CanAccess(actorPtr, r.URL.Path, r.Method) {
				if !ok {
					adminsdk.ErrUnauthorized.WriteError(w)
					return
				}
				adminsdk.ErrForbidden.WriteError(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientMeta(r *http.Request) (ip, userAgent string) {
	ip = r.Header.Get("X-Forwarded-For")
	if i := strings.Index(ip, ","); i >= 0 {
		ip = ip[:i]
	}
	ip = strings.TrimSpace(ip)
	if ip == "" {
		ip = r.Header.Get("X-Real-IP")
	}
	if ip == "" {
		ip = r.RemoteAddr
		if i := strings.LastIndex(ip, ":"); i >= 0 {
			ip = ip[:i]
		}
	}
	return ip, r.UserAgent()
}
