package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/drivedav/clientcli"
)

var uploadRecursive bool

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> [remote-path]",
	Short: "Upload files to the server",
	Long: `Upload files to the server with PUT.

Missing parent collections are created by the server. A remote path
ending in "/" receives the local file name. Without a remote path the
file is uploaded to the root under its own name.

Examples:
  drivedav-cli upload ./file.txt docs/file.txt
  drivedav-cli upload ./photo.jpg images/
  drivedav-cli upload -r ./site/ www/`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload directory recursively")
}

func runUpload(cmd *cobra.Command, args []string) error {
	localPath := args[0]
	remotePath := ""
	if len(args) > 1 {
		remotePath = args[1]
	}
	if remotePath == "" && uploadRecursive {
		remotePath = clientcli.NormalizeLocalToRemotePath(localPath)
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	results, err := client.Upload(cmd.Context(), clientcli.UploadOptions{
		LocalPath:  localPath,
		RemotePath: remotePath,
		Recursive:  uploadRecursive,
	})
	if err != nil {
		return err
	}

	if err := getFormatter().FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	for i := range results {
		if results[i].Err != nil {
			return &exitError{code: 1}
		}
	}
	return nil
}
