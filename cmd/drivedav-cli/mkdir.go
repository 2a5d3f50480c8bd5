package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/drivedav/clientcli"
)

var mkdirParents bool

var mkdirCmd = &cobra.Command{
	Use:   "mkdir <remote-path>",
	Short: "Create a collection",
	Long: `Create a collection with MKCOL.

Without --parents the parent must exist and the collection must not.

Examples:
  drivedav-cli mkdir docs
  drivedav-cli mkdir --parents docs/2024/reports`,
	Args: cobra.ExactArgs(1),
	RunE: runMkdir,
}

func init() {
	mkdirCmd.Flags().BoolVar(&mkdirParents, "parents", false, "create missing parents, no error if the collection exists")
}

func runMkdir(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	if err := client.Mkdir(cmd.Context(), clientcli.MkdirOptions{
		Path:    args[0],
		Parents: mkdirParents,
	}); err != nil {
		return err
	}

	return getFormatter().FormatMkdir(os.Stdout, clientcli.NormalizeLocalToRemotePath(args[0]))
}
