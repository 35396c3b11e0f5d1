package main

import (
	"os"

	"github.com/spf13/cobra"
)

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "List buckets available to your identity",
	Long: `List the buckets whose identity whitelist contains your identity.

Credentials are never returned by the server.`,
	Args: cobra.NoArgs,
	RunE: runBuckets,
}

func runBuckets(cmd *cobra.Command, _ []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	formatter := getFormatter()

	buckets, err := client.ListBuckets(cmd.Context())
	if err != nil {
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	return formatter.FormatBuckets(os.Stdout, buckets)
}
