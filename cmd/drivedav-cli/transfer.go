package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/drivedav/clientcli"
)

var transferOverwrite bool

var copyCmd = &cobra.Command{
	Use:     "copy <source> <destination>",
	Aliases: []string{"cp"},
	Short:   "Copy a file or collection on the server",
	Long: `Copy a file or a whole collection with COPY.

The destination must not exist unless --overwrite is given.

Examples:
  drivedav-cli copy docs/a.txt docs/b.txt
  drivedav-cli copy --overwrite site/ backup/site`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd.Context(), args, (*clientcli.Client).Copy)
	},
}

var moveCmd = &cobra.Command{
	Use:     "move <source> <destination>",
	Aliases: []string{"mv"},
	Short:   "Move a file or collection on the server",
	Long: `Move a file or a whole collection with MOVE.

The destination must not exist unless --overwrite is given.

Examples:
  drivedav-cli move drafts/post.md posts/post.md
  drivedav-cli move --overwrite new/ current`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransfer(cmd.Context(), args, (*clientcli.Client).Move)
	},
}

func init() {
	for _, c := range []*cobra.Command{copyCmd, moveCmd} {
		c.Flags().BoolVar(&transferOverwrite, "overwrite", false, "replace an existing destination")
	}
}

func runTransfer(ctx context.Context, args []string, fn func(*clientcli.Client, context.Context, clientcli.TransferOptions) (*clientcli.TransferResult, error)) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := fn(client, ctx, clientcli.TransferOptions{
		Source:      args[0],
		Destination: args[1],
		Overwrite:   transferOverwrite,
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatTransfer(os.Stdout, result)
}
