package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/config"
)

var removeCmd = &cobra.Command{
	Use:   "remove [flags] <path1> [path2] ...",
	Short: "Remove files or collections from storage",
	Long: `Remove entries from the configured storage.

Collections are removed together with everything beneath them, the same
way a WebDAV DELETE behaves. The root cannot be removed.

Examples:
  # Remove a single file
  drivedav remove myfile.txt

  # Remove multiple entries
  drivedav remove file1.txt images/

  # Remove quietly (suppress per-entry output)
  drivedav remove -q file.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRemove,
}

var removeQuiet bool

func init() {
	removeCmd.Flags().BoolVarP(&removeQuiet, "quiet", "q", false, "suppress per-entry output")
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	gateway, cleanup, err := openGateway(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	removed := 0
	for _, arg := range args {
		p, resolveErr := drivedav.ResolvePath(arg)
		if resolveErr != nil {
			return fmt.Errorf("remove %s: %w", arg, resolveErr)
		}

		n, deleteErr := gateway.Delete(ctx, p)
		if deleteErr != nil {
			return fmt.Errorf("remove %s: %w", arg, deleteErr)
		}

		removed += n
		if !removeQuiet {
			slog.Info("removed", "path", p, "entries", n)
		}
	}

	slog.Info("remove complete", "entries", removed)
	return nil
}
