package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/drivedav/clientcli"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	endpoint   string
	username   string
	password   string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:     "drivedav-cli",
	Version: version,
	Short:   "Client for drivedav WebDAV servers",
	Long: `drivedav-cli - Client for drivedav WebDAV servers

Connection settings are resolved from, in order of precedence:
  1. flags (--endpoint, --username, --password)
  2. environment (DRIVEDAV_ENDPOINT, DRIVEDAV_USERNAME, DRIVEDAV_PASSWORD)
  3. the selected profile (--profile or DRIVEDAV_PROFILE, else the default)

Profiles are managed with 'drivedav-cli configure'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.drivedav/config.yaml, env: DRIVEDAV_CLI_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: DRIVEDAV_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:5708, env: DRIVEDAV_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&username, "username", "u", "", "username (env: DRIVEDAV_USERNAME)")
	rootCmd.PersistentFlags().StringVar(&password, "password", "", "password (env: DRIVEDAV_PASSWORD)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(copyCmd)
	rootCmd.AddCommand(moveCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		var exitErr *exitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		_ = getFormatter().FormatError(os.Stderr, err)
		os.Exit(1)
	}
}

// exitError is returned when the failure has already been reported and
// only the exit code is left to set.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// getConfigPath returns the config file path from flag, env, or default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges config from the profile, env vars, and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	// 1. Load from the profile
	profileName := profile
	if profileName == "" {
		profileName = clientcli.ProfileFromEnv()
	}

	configPath := getConfigPath()
	if configPath != "" {
		file, err := clientcli.LoadConfigFile(configPath)
		switch {
		case err == nil:
			p, profileErr := file.GetProfile(profileName)
			switch {
			case profileErr == nil:
				configs = append(configs, clientcli.ConfigFromProfile(p))
			case profileName != "" || !errors.Is(profileErr, clientcli.ErrNoProfiles):
				return nil, profileErr
			}
		case profileName != "" || cfgFile != "":
			// Only error if the user explicitly asked for a file or profile
			return nil, err
		}
	}

	// 2. Load from environment variables
	configs = append(configs, clientcli.ConfigFromEnv())

	// 3. Load from flags
	configs = append(configs, &clientcli.Config{
		Endpoint: endpoint,
		Username: username,
		Password: password,
	})

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates and returns a configured client.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}
