package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/drivedav/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "drivedav",
	Short:   "WebDAV file server",
	Long: `drivedav serves a file tree over WebDAV.

The tree lives on the local filesystem, in memory, in SQLite or
PostgreSQL, in an embedded BadgerDB, or in an S3 bucket.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return err
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file path, repeatable; later files override earlier ones (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("storage-type", "", "storage backend: filesystem, memory, sqlite, postgres, badger, s3 (default: filesystem, env: DRIVEDAV_STORAGE_TYPE)")
	rootCmd.PersistentFlags().String("storage-path", "", "filesystem storage root (default: ./data, env: DRIVEDAV_STORAGE_PATH)")
	rootCmd.PersistentFlags().String("storage-dsn", "", "sqlite/postgres connection string (default: drivedav.db, env: DRIVEDAV_STORAGE_DSN)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (default: info, env: DRIVEDAV_LOG_LEVEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
