// Package userbackend provides drivedav.CredentialStore implementations.
package userbackend

import "fmt"

// MapCredentialStore retrieves secrets from an in-memory map.
// Suitable for configuration file-based user lists.
type MapCredentialStore struct {
	secrets map[string]string
}

// NewMapCredentialStore creates a new map-based store with the given user name to secret mapping.
func NewMapCredentialStore(secrets map[string]string) *MapCredentialStore {
	return &MapCredentialStore{secrets: secrets}
}

// Lookup retrieves the secret for the given user name from the map.
func (s *MapCredentialStore) Lookup(user string) (string, error) {
	secret, found := s.secrets[user]
	if !found {
		return "", fmt.Errorf("lookup %q: %w", user, ErrUserNotFound)
	}
	return secret, nil
}

// Len returns the number of users.
func (s *MapCredentialStore) Len() int {
	return len(s.secrets)
}
