package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/table"
	"github.com/spf13/cobra"

	"github.com/sagarc03/drivedav"
	"github.com/sagarc03/drivedav/config"
)

var lsCmd = &cobra.Command{
	Use:   "ls [flags] [path]",
	Short: "List the contents of a collection",
	Long: `List an entry and its members the same way a PROPFIND does.

Examples:
  # List the root
  drivedav ls

  # List a whole tree
  drivedav ls --depth infinity docs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

var lsDepth string

func init() {
	lsCmd.Flags().StringVar(&lsDepth, "depth", "1", "listing depth: 0, 1 or infinity")
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	depth, err := drivedav.ParseDepth(lsDepth, drivedav.DepthOne)
	if err != nil {
		return err
	}

	var target string
	if len(args) == 1 {
		target, err = drivedav.ResolvePath(args[0])
		if err != nil {
			return err
		}
	}

	ctx := cmd.Context()

	gateway, cleanup, err := openGateway(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := gateway.Propfind(ctx, target, depth)
	if err != nil {
		return fmt.Errorf("list %q: %w", target, err)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Kind", "Size", "Modified", "Path"})
	for _, e := range entries {
		name := "/" + e.Path
		size := strconv.FormatInt(e.Size, 10)
		if e.IsCollection() {
			if e.Path != "" {
				name += "/"
			}
			size = "-"
		}
		t.AppendRow(table.Row{e.Kind, size, e.ModTime.Format(time.RFC3339), name})
	}
	t.Render()
	return nil
}
