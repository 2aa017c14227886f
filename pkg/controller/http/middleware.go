package http

import (
	"context"
	"net/http"

	"github.com/leakwatch/leakwatch/pkg/app"
	"github.com/leakwatch/leakwatch/pkg/utils/logging"
)

// SessionCookieName holds the dashboard instance ID of a client
const SessionCookieName = "leakwatch_instance"

type ctxInstanceKey struct{}

// sessionMiddleware binds the request to its dashboard instance, creating one for new or
// expired sessions
func sessionMiddleware(registry *app.Registry, secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(SessionCookieName); err == nil {
				id = c.Value
			}

			inst, created := registry.GetOrCreate(id)
			if created {
				setSessionCookie(w, inst.ID, secure)
			}

			ctx := context.WithValue(r.Context(), ctxInstanceKey{}, inst)
			ctx = logging.With(ctx, logging.From(ctx).With("instance_id", inst.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func instanceFrom(ctx context.Context) *app.Instance {
	inst, _ := ctx.Value(ctxInstanceKey{}).(*app.Instance)
	return inst
}

func setSessionCookie(w http.ResponseWriter, id string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
