package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/drivedav/clientcli"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <remote-path> [remote-path...]",
	Aliases: []string{"rm"},
	Short:   "Delete files or collections from the server",
	Long: `Delete one or more entries from the server.

A collection is deleted together with everything beneath it.

Examples:
  drivedav-cli delete docs/file.txt
  drivedav-cli delete old/a.txt old/b.txt
  drivedav-cli delete -q tmp/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Delete(cmd.Context(), clientcli.DeleteOptions{Paths: args})
	if err != nil {
		return err
	}

	if err := getFormatter().FormatDelete(os.Stdout, results); err != nil {
		return err
	}

	// Return error if any deletes failed
	if clientcli.HasDeleteErrors(results) {
		return &exitError{code: 1}
	}

	return nil
}
