package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/drivedav/clientcli"
)

var (
	downloadOutput string
	downloadStdout bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <remote-path> [local-path]",
	Short: "Download a file from the server",
	Long: `Download a file from the server with GET.

Collections cannot be downloaded; use 'list' to see their members.

Examples:
  drivedav-cli download docs/file.txt
  drivedav-cli download docs/file.txt ./local-file.txt
  drivedav-cli download --stdout config.json | jq .
  drivedav-cli download -o ./output.txt docs/file.txt`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
}

func runDownload(cmd *cobra.Command, args []string) error {
	remotePath := args[0]

	// Determine local path
	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	result, reader, err := client.Download(cmd.Context(), clientcli.DownloadOptions{
		RemotePath: remotePath,
		LocalPath:  localPath,
	})
	if err != nil {
		return err
	}

	// If stdout, write content to stdout
	if reader != nil {
		defer func() { _ = reader.Close() }()
		written, err := io.Copy(os.Stdout, reader)
		if err != nil {
			return err
		}
		result.Size = written
		// Don't print metadata when writing to stdout (unless JSON mode)
		if jsonOutput {
			return getFormatter().FormatDownload(os.Stderr, result)
		}
		return nil
	}

	return getFormatter().FormatDownload(os.Stdout, result)
}
