package userbackend

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// User is a user name and its secret. The secret is either a bcrypt hash
// (as produced by `drivedav hash-password`) or a plain password.
type User struct {
	Username string `json:"username" yaml:"username" mapstructure:"username"`
	Password string `json:"password" yaml:"password" mapstructure:"password"`
}

// LoadUsersFromFile loads users from a JSON or YAML file, chosen by the
// file extension (.yaml/.yml for YAML, anything else JSON).
// The file should contain a list of users:
//
//	[
//	  {"username": "alice", "password": "$2a$10$..."},
//	  {"username": "bob", "password": "plain-secret"}
//	]
//
// Returns a map of user name to secret.
func LoadUsersFromFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // Path is from trusted config file
	if err != nil {
		return nil, fmt.Errorf("read users file: %w", err)
	}

	var users []User
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &users)
	default:
		err = json.Unmarshal(data, &users)
	}
	if err != nil {
		return nil, fmt.Errorf("parse users file: %w", err)
	}

	secrets := make(map[string]string, len(users))
	for _, u := range users {
		if u.Username != "" && u.Password != "" {
			secrets[u.Username] = u.Password
		}
	}

	return secrets, nil
}
