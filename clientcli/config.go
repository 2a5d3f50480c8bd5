package clientcli

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the default server endpoint URL.
const DefaultEndpoint = "http://localhost:5708"

// Profile holds configuration for a single server profile.
type Profile struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Default  bool   `yaml:"default,omitempty"`
}

// ConfigFile is the on-disk list of profiles.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

func (c *ConfigFile) index(name string) int {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return i
		}
	}
	return -1
}

func profileNotFound(name string) error {
	return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// GetProfile returns the named profile, or the default one when name is
// empty.
func (c *ConfigFile) GetProfile(name string) (*Profile, error) {
	if name == "" {
		return c.GetDefaultProfile()
	}
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}
	if i := c.index(name); i >= 0 {
		return &c.Profiles[i], nil
	}
	return nil, profileNotFound(name)
}

// GetDefaultProfile returns the profile marked default, falling back to
// the first one.
func (c *ConfigFile) GetDefaultProfile() (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}
	for i := range c.Profiles {
		if c.Profiles[i].Default {
			return &c.Profiles[i], nil
		}
	}
	return &c.Profiles[0], nil
}

// AddProfile appends p, or fails with ErrProfileExists.
func (c *ConfigFile) AddProfile(p Profile) error {
	if c.index(p.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
	}
	c.Profiles = append(c.Profiles, p)
	return nil
}

// UpdateProfile replaces the profile named p.Name.
func (c *ConfigFile) UpdateProfile(p Profile) error {
	i := c.index(p.Name)
	if i < 0 {
		return profileNotFound(p.Name)
	}
	c.Profiles[i] = p
	return nil
}

// RemoveProfile deletes the named profile.
func (c *ConfigFile) RemoveProfile(name string) error {
	i := c.index(name)
	if i < 0 {
		return profileNotFound(name)
	}
	c.Profiles = slices.Delete(c.Profiles, i, i+1)
	return nil
}

// SetDefault marks name as the only default profile.
func (c *ConfigFile) SetDefault(name string) error {
	i := c.index(name)
	if i < 0 {
		return profileNotFound(name)
	}
	for j := range c.Profiles {
		c.Profiles[j].Default = j == i
	}
	return nil
}

// ProfileNames lists profile names in file order.
func (c *ConfigFile) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for _, p := range c.Profiles {
		names = append(names, p.Name)
	}
	return names
}

// Save writes the file with 0600 permissions, creating its directory. The
// new content replaces the old file atomically.
func (c *ConfigFile) Save(path string) error {
	path = filepath.Clean(path)
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// LoadConfigFile reads and parses the profile file at path.
func LoadConfigFile(path string) (*ConfigFile, error) {
	data, err := os.ReadFile(filepath.Clean(path)) //#nosec G304 -- user-chosen config path
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &cfg, nil
}

// DefaultConfigPath is ~/.drivedav/config.yaml, or "" without a home
// directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".drivedav", "config.yaml")
}

// Config holds resolved client configuration for a single server.
// This is what the Client uses after profile resolution.
type Config struct {
	Endpoint string
	Username string
	Password string
}

// Validate checks that the endpoint, when set, is an absolute http(s) URL.
// Use WithDefaults() to get a config with default values applied.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return nil
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %s", ErrInvalidEndpoint, c.Endpoint)
	}
	return nil
}

// WithDefaults returns a copy of the config with default values applied.
// If Endpoint is empty, it defaults to DefaultEndpoint.
func (c *Config) WithDefaults() *Config {
	cfg := *c
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	return &cfg
}

// ValidateWithAuth checks if required fields including credentials are set.
func (c *Config) ValidateWithAuth() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Username == "" {
		return ErrUsernameRequired
	}
	if c.Password == "" {
		return ErrPasswordRequired
	}
	return nil
}

// ConfigFromProfile creates a Config from a Profile.
func ConfigFromProfile(p *Profile) *Config {
	if p == nil {
		return &Config{}
	}
	return &Config{
		Endpoint: p.Endpoint,
		Username: p.Username,
		Password: p.Password,
	}
}

// ConfigFromEnv loads config from environment variables.
func ConfigFromEnv() *Config {
	return &Config{
		Endpoint: os.Getenv("DRIVEDAV_ENDPOINT"),
		Username: os.Getenv("DRIVEDAV_USERNAME"),
		Password: os.Getenv("DRIVEDAV_PASSWORD"),
	}
}

// ProfileFromEnv returns the profile name from DRIVEDAV_PROFILE environment variable.
func ProfileFromEnv() string {
	return os.Getenv("DRIVEDAV_PROFILE")
}

// ConfigPathFromEnv returns the config file path from DRIVEDAV_CLI_CONFIG
// environment variable. The server reads DRIVEDAV_CONFIG-style keys of its
// own, so the client uses a distinct name.
func ConfigPathFromEnv() string {
	return os.Getenv("DRIVEDAV_CLI_CONFIG")
}

// MergeConfig merges multiple configs, with later configs taking precedence.
// Empty strings in later configs do not override non-empty values in earlier configs.
func MergeConfig(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		if cfg.Endpoint != "" {
			result.Endpoint = cfg.Endpoint
		}
		if cfg.Username != "" {
			result.Username = cfg.Username
		}
		if cfg.Password != "" {
			result.Password = cfg.Password
		}
	}
	return result
}
