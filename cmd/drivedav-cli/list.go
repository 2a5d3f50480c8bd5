package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/drivedav/clientcli"
)

var listRecursive bool

var listCmd = &cobra.Command{
	Use:     "list [remote-path]",
	Aliases: []string{"ls"},
	Short:   "List the members of a collection",
	Long: `List the members of a collection with PROPFIND.

Examples:
  drivedav-cli list
  drivedav-cli list images/
  drivedav-cli list -r docs`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listRecursive, "recursive", "r", false, "list the whole subtree")
}

func runList(cmd *cobra.Command, args []string) error {
	remotePath := ""
	if len(args) > 0 {
		remotePath = args[0]
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, err := client.List(cmd.Context(), clientcli.ListOptions{
		Path:      remotePath,
		Recursive: listRecursive,
	})
	if err != nil {
		return err
	}

	return getFormatter().FormatList(os.Stdout, result)
}
