package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketgate/clientcli"
)

var (
	uploadRecursive   bool
	uploadOverwrite   bool
	uploadFileName    string
	uploadContentType string
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path> <remote-dir>",
	Short: "Upload files through the gateway",
	Long: `Upload files into a bucket directory.

The remote directory must be one of the bucket's allowed paths. Without
--name the server generates a unique file name. Existing objects are only
replaced with --overwrite.

Examples:
  bucketgate-cli upload ./avatar.png images/avatars
  bucketgate-cli upload -b media --name logo.png ./logo.png images
  bucketgate-cli upload -r --overwrite ./site/ site`,
	Args: cobra.ExactArgs(2),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().BoolVarP(&uploadRecursive, "recursive", "r", false, "upload directory recursively, keeping file names")
	uploadCmd.Flags().BoolVar(&uploadOverwrite, "overwrite", false, "replace existing objects")
	uploadCmd.Flags().StringVarP(&uploadFileName, "name", "n", "", "remote file name (single file only)")
	uploadCmd.Flags().StringVar(&uploadContentType, "content-type", "", "override content-type")
}

func runUpload(cmd *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	formatter := getFormatter()

	results, err := client.Upload(cmd.Context(), clientcli.UploadOptions{
		LocalPath:   args[0],
		Path:        args[1],
		FileName:    uploadFileName,
		ContentType: uploadContentType,
		Overwrite:   uploadOverwrite,
		Recursive:   uploadRecursive,
	})
	if err != nil {
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	if err := formatter.FormatUpload(os.Stdout, results); err != nil {
		return err
	}

	for i := range results {
		if results[i].Err != nil {
			return results[i].Err
		}
	}

	return nil
}
