package middleware

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/taskhive/taskauth"
)

// IdentityFromContext returns the identity attached by [Guard], if any.
func IdentityFromContext(r *http.Request) (*taskauth.Identity, bool) {
	return taskauth.IdentityFromContext(r.Context())
}

// Guard returns middleware enforcing the account guard on every wrapped
// route. Rejections carry a JSON body with the coarse error message only.
func Guard(engine *taskauth.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := taskauth.WithClientIP(r.Context(), clientIP(r))
			identity, err := engine.Authenticate(ctx, r.Header.Get("Authorization"))
			if err != nil {
				writeError(w, taskauth.StatusForError(err), taskauth.MessageForError(err, engine.ProductionMode()))
				return
			}

			next.ServeHTTP(w, r.WithContext(taskauth.ContextWithIdentity(ctx, identity)))
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
