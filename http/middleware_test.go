package http_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sagarc03/drivedav"
	davhttp "github.com/sagarc03/drivedav/http"
	"github.com/stretchr/testify/assert"
)

func identityEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(davhttp.IdentityFromContext(r.Context())))
	})
}

func TestAuthMiddleware_PublicAccess(t *testing.T) {
	wrapped := davhttp.AuthMiddleware(nil, "")(identityEcho())

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test.txt", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestAuthMiddleware_MissingCredentials(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})
	wrapped := davhttp.AuthMiddleware(staticAuthenticator{"alice", "secret"}, "")(handler)

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/test.txt", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Basic realm="WebDAV"`, rec.Header().Get("WWW-Authenticate"))
	assert.Contains(t, rec.Body.String(), "unauthorized")
}

func TestAuthMiddleware_StoresIdentity(t *testing.T) {
	wrapped := davhttp.AuthMiddleware(staticAuthenticator{"alice", "secret"}, "")(identityEcho())

	req := httptest.NewRequest(http.MethodGet, "/test.txt", nil)
	req.SetBasicAuth("alice", "secret")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())
}

func TestAuthMiddleware_BasicAuthenticator(t *testing.T) {
	hash, err := drivedav.HashSecret("hunter2")
	assert.NoError(t, err)

	auth := drivedav.NewBasicAuthenticator(staticStore{"bob": hash})
	wrapped := davhttp.AuthMiddleware(auth, "files")(identityEcho())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("bob", "hunter2")
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	assert.Equal(t, "bob", rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.SetBasicAuth("bob", "hunter3")
	rec = httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, `Basic realm="files"`, rec.Header().Get("WWW-Authenticate"))
}

func TestDAVHeaders(t *testing.T) {
	wrapped := davhttp.DAVHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "1, 2", rec.Header().Get("DAV"))
	assert.Equal(t, "DAV", rec.Header().Get("MS-Author-Via"))
	assert.Equal(t, "OPTIONS, GET, HEAD, PUT, DELETE, PROPFIND, MKCOL, COPY, MOVE", rec.Header().Get("Allow"))
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Expose-Headers"))
}

type staticStore map[string]string

func (s staticStore) Lookup(user string) (string, error) {
	secret, ok := s[user]
	if !ok {
		return "", drivedav.ErrNotFound
	}
	return secret, nil
}
