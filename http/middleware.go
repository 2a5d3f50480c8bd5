package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sagarc03/drivedav"
)

// DefaultRealm is used in the Basic challenge when none is configured.
const DefaultRealm = "WebDAV"

// exposedHeaders lets browser clients read the capability headers.
const exposedHeaders = "Allow, DAV, MS-Author-Via, Content-Length, Content-Type, Last-Modified"

type identityKey struct{}

type scopeKey struct{}

// IdentityFromContext returns the authenticated identity, or "" for
// anonymous requests.
func IdentityFromContext(ctx context.Context) string {
	id, _ := ctx.Value(identityKey{}).(string)
	return id
}

func withIdentity(ctx context.Context, identity string) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

func scopeFromContext(ctx context.Context) string {
	scope, _ := ctx.Value(scopeKey{}).(string)
	return scope
}

func withScope(ctx context.Context, scope string) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// DAVHeaders advertises the server's WebDAV capabilities on every response.
func DAVHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Allow", allowedMethods)
		h.Set("DAV", "1, 2")
		h.Set("MS-Author-Via", "DAV")
		h.Set("Access-Control-Expose-Headers", exposedHeaders)
		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware rejects requests the authenticator does not accept with a
// 401 Basic challenge. Pass nil to serve every request anonymously.
func AuthMiddleware(authenticator drivedav.Authenticator, realm string) func(http.Handler) http.Handler {
	if authenticator == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}
	if realm == "" {
		realm = DefaultRealm
	}
	challenge := fmt.Sprintf("Basic realm=%q", realm)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, ok := authenticator.Authenticate(r)
			if !ok {
				slog.Debug("authentication failed", "method", r.Method, "path", r.URL.Path)
				w.Header().Set("WWW-Authenticate", challenge)
				HandleError(w, drivedav.ErrUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), identity)))
		})
	}
}
