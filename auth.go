package drivedav

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator identifies the caller of a request.
type Authenticator interface {
	// Authenticate returns the caller's identity, or false when the request
	// carries no acceptable credentials.
	Authenticate(r *http.Request) (identity string, ok bool)
}

// CredentialStore looks up the secret registered for a user name.
type CredentialStore interface {
	// Lookup returns the secret for user, or ErrNotFound.
	// A secret is either a bcrypt hash or a plain password.
	Lookup(user string) (string, error)
}

// timingHash is compared against when the user is unknown.
const timingHash = "$2a$10$7EqJtq98hPqEX7fNZaFWoOhi5BWX4Z3iZ5fq6gL7o3F3cXsFoyWUm"

// BasicAuthenticator checks HTTP Basic credentials against a CredentialStore.
type BasicAuthenticator struct {
	store CredentialStore
}

func NewBasicAuthenticator(store CredentialStore) *BasicAuthenticator {
	return &BasicAuthenticator{store: store}
}

func (a *BasicAuthenticator) Authenticate(r *http.Request) (string, bool) {
	user, password, ok := r.BasicAuth()
	if !ok || user == "" {
		return "", false
	}

	secret, err := a.store.Lookup(user)
	if err != nil {
		// Burn comparable time so unknown users are not distinguishable.
		_ = VerifySecret(timingHash, password)
		return "", false
	}

	if !VerifySecret(secret, password) {
		return "", false
	}
	return user, true
}

// VerifySecret compares password with a stored secret. Secrets starting with
// a bcrypt prefix ($2a$, $2b$, $2y$) are treated as hashes; anything else is
// compared in constant time.
func VerifySecret(secret, password string) bool {
	if IsHashedSecret(secret) {
		return bcrypt.CompareHashAndPassword([]byte(secret), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(password)) == 1
}

// IsHashedSecret reports whether secret is a bcrypt hash.
func IsHashedSecret(secret string) bool {
	return strings.HasPrefix(secret, "$2a$") ||
		strings.HasPrefix(secret, "$2b$") ||
		strings.HasPrefix(secret, "$2y$")
}

// HashSecret returns a bcrypt hash of password suitable for a CredentialStore.
func HashSecret(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
