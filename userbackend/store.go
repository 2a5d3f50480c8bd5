package userbackend

// UsersConfig holds configuration for loading users.
type UsersConfig struct {
	Inline []User `mapstructure:"inline"` // Inline users from config
	File   string `mapstructure:"file"`   // Path to a JSON or YAML file of users
}

// NewCredentialStore creates a store from the given configuration.
// It loads users from both inline config and file (if specified),
// merging them into a single store. File users take precedence over inline
// users if there are duplicates.
func NewCredentialStore(cfg UsersConfig) (*MapCredentialStore, error) {
	secrets := make(map[string]string)

	for _, u := range cfg.Inline {
		if u.Username != "" && u.Password != "" {
			secrets[u.Username] = u.Password
		}
	}

	if cfg.File != "" {
		fileSecrets, err := LoadUsersFromFile(cfg.File)
		if err != nil {
			return nil, err
		}
		for k, v := range fileSecrets {
			secrets[k] = v
		}
	}

	return NewMapCredentialStore(secrets), nil
}
