package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	davhttp "github.com/sagarc03/drivedav/http"
	"github.com/sagarc03/drivedav/storage"
	"github.com/sagarc03/drivedav/userbackend"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for drivedav.
type Config struct {
	Env     string             `mapstructure:"env" validate:"omitempty,oneof=dev development prod production"`
	Server  ServerConfig       `mapstructure:"server"`
	Service ServiceConfig      `mapstructure:"service"`
	Storage storage.Config     `mapstructure:"storage"`
	Auth    AuthConfig         `mapstructure:"auth"`
	CORS    davhttp.CORSConfig `mapstructure:"cors"`
	Log     LogConfig          `mapstructure:"log"`
}

// IsProd reports whether the config selects production logging.
func (c *Config) IsProd() bool {
	return c.Env == "prod" || c.Env == "production"
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	MetricsPort     int           `mapstructure:"metrics_port" validate:"min=0,max=65535"` // 0 disables metrics
	MaxUploadSize   int64         `mapstructure:"max_upload_size" validate:"min=0"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" validate:"min=0"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" validate:"min=0"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" validate:"min=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"min=0"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	CleanupTimeout int `mapstructure:"cleanup_timeout" validate:"min=1"` // seconds
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Enabled     bool                    `mapstructure:"enabled"`
	PerUserRoot bool                    `mapstructure:"per_user_root"`
	Realm       string                  `mapstructure:"realm"`
	Users       userbackend.UsersConfig `mapstructure:"users"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"port":         "server.port",
	"metrics-port": "server.metrics_port",
	"storage-type": "storage.type",
	"storage-path": "storage.path",
	"storage-dsn":  "storage.dsn",
	"log-level":    "log.level",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
// Every key gets a default so AutomaticEnv can populate it.
func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "dev")

	v.SetDefault("server.port", 5708)
	v.SetDefault("server.metrics_port", 0)
	v.SetDefault("server.max_upload_size", 0) // 0 means no limit
	v.SetDefault("server.read_timeout", 0)    // uploads can be large
	v.SetDefault("server.write_timeout", 0)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 30*time.Second)

	v.SetDefault("service.cleanup_timeout", 30) // seconds

	v.SetDefault("storage.type", storage.TypeFilesystem)
	v.SetDefault("storage.path", "./data")
	v.SetDefault("storage.dsn", "drivedav.db")
	v.SetDefault("storage.table", "drivedav_entries")
	v.SetDefault("storage.badger.dir", "./drivedav.badger")
	v.SetDefault("storage.badger.in_memory", false)
	v.SetDefault("storage.s3.bucket", "")
	v.SetDefault("storage.s3.region", "")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key_id", "")
	v.SetDefault("storage.s3.secret_access_key", "")
	v.SetDefault("storage.s3.key_prefix", "")

	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.per_user_root", false)
	v.SetDefault("auth.realm", davhttp.DefaultRealm)
	v.SetDefault("auth.users.file", "")

	v.SetDefault("cors.enabled", true)
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{
		"OPTIONS", "GET", "HEAD", "PUT", "DELETE", "PROPFIND", "MKCOL", "COPY", "MOVE",
	})
	v.SetDefault("cors.allowed_headers", []string{
		"Authorization", "Content-Type", "Depth", "Destination", "Overwrite",
	})
	v.SetDefault("cors.exposed_headers", []string{})
	v.SetDefault("cors.allow_credentials", false)
	v.SetDefault("cors.max_age", 300)

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("DRIVEDAV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Platforms that inject PORT (containers, PaaS) work without renaming it.
	_ = v.BindEnv("server.port", "DRIVEDAV_SERVER_PORT", "PORT")

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
