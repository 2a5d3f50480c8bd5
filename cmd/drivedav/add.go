package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/config"
)

var addCmd = &cobra.Command{
	Use:   "add [flags] <file1> [file2] ...",
	Short: "Import local files into storage",
	Long: `Import files from local paths into the configured storage.

Files go through the same checks as a WebDAV PUT: missing parent
collections are created and a file cannot replace a collection.

Examples:
  # Add a single file
  drivedav add /path/to/file.txt

  # Add with a destination collection
  drivedav add --dest images/ /path/to/photo.jpg

  # Add a directory recursively
  drivedav add -r /path/to/assets

  # Skip existing files
  drivedav add --no-clobber /path/to/file.txt`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addDest      string
	addRecursive bool
	addNoClobber bool
	addQuiet     bool
)

func init() {
	addCmd.Flags().StringVarP(&addDest, "dest", "d", "", "destination collection in storage")
	addCmd.Flags().BoolVarP(&addRecursive, "recursive", "r", false, "recursively add directories")
	addCmd.Flags().BoolVarP(&addNoClobber, "no-clobber", "n", false, "skip existing files instead of overwriting")
	addCmd.Flags().BoolVarP(&addQuiet, "quiet", "q", false, "suppress per-file output")
	rootCmd.AddCommand(addCmd)
}

// fileEntry represents a file to be added with its source and destination paths.
type fileEntry struct {
	sourcePath string
	destPath   string
}

func runAdd(cmd *cobra.Command, args []string) error {
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

	// Collect files from all arguments
	var files []fileEntry
	for _, arg := range args {
		entries, collectErr := collectFiles(arg, addRecursive, addDest)
		if collectErr != nil {
			return fmt.Errorf("collect files from %s: %w", arg, collectErr)
		}
		files = append(files, entries...)
	}

	if len(files) == 0 {
		slog.Info("no files to add")
		return nil
	}

	added := 0
	skipped := 0

	for _, entry := range files {
		if addNoClobber {
			_, statErr := gateway.Stat(ctx, entry.destPath)
			if statErr == nil {
				skipped++
				if !addQuiet {
					slog.Info("skipped (exists)", "path", entry.destPath)
				}
				continue
			}
			if !errors.Is(statErr, drivedav.ErrNotFound) {
				return fmt.Errorf("stat %s: %w", entry.destPath, statErr)
			}
		}

		f, openErr := os.Open(entry.sourcePath)
		if openErr != nil {
			return fmt.Errorf("open %s: %w", entry.sourcePath, openErr)
		}

		created, putErr := gateway.Put(ctx, entry.destPath, f)
		_ = f.Close()

		if putErr != nil {
			return fmt.Errorf("add %s: %w", entry.destPath, putErr)
		}

		added++
		if !addQuiet {
			slog.Info("added", "path", entry.destPath, "created", created)
		}
	}

	slog.Info("add complete", "added", added, "skipped", skipped)
	return nil
}

// collectFiles gathers files from a path, optionally recursively.
func collectFiles(path string, recursive bool, destPrefix string) ([]fileEntry, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	dest, err := drivedav.ResolvePath(destPrefix)
	if err != nil {
		return nil, fmt.Errorf("destination %q: %w", destPrefix, err)
	}

	if !info.IsDir() {
		destPath, err := localDest(dest, filepath.Base(path))
		if err != nil {
			return nil, err
		}
		return []fileEntry{{sourcePath: path, destPath: destPath}}, nil
	}

	if !recursive {
		return nil, fmt.Errorf("%s is a directory (use -r to add recursively)", path)
	}

	var entries []fileEntry
	walkErr := filepath.WalkDir(path, func(walkPath string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if d.IsDir() {
			return nil
		}

		relPath, relErr := filepath.Rel(path, walkPath)
		if relErr != nil {
			return relErr
		}

		destPath, resolveErr := localDest(dest, filepath.ToSlash(relPath))
		if resolveErr != nil {
			return fmt.Errorf("%s: %w", walkPath, resolveErr)
		}

		entries = append(entries, fileEntry{
			sourcePath: walkPath,
			destPath:   destPath,
		})
		return nil
	})

	if walkErr != nil {
		return nil, walkErr
	}

	return entries, nil
}

// localDest joins a slash-separated local relative path onto dest. Local
// names are taken literally, so each segment only has to be a valid name.
func localDest(dest, rel string) (string, error) {
	for _, seg := range strings.Split(rel, "/") {
		if !drivedav.IsValidName(seg) {
			return "", fmt.Errorf("%w: invalid name %q", drivedav.ErrInvalidInput, seg)
		}
	}
	return drivedav.JoinPath(dest, rel), nil
}
