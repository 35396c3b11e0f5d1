package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketgate/bucket"
	"github.com/sagarc03/bucketgate/config"
)

var bucketsStrict bool

var bucketsCmd = &cobra.Command{
	Use:   "buckets",
	Short: "Validate bucket declarations",
	Long: `Resolve every BUCKET_*_PROVIDER declaration and report whether it is usable.

Credentials are never printed.

Examples:
  bucketgate buckets
  bucketgate buckets --env-file .env.production --strict`,
	Args: cobra.NoArgs,
	RunE: runBuckets,
}

func init() {
	bucketsCmd.Flags().BoolVar(&bucketsStrict, "strict", false, "exit with an error if any bucket is invalid")
	rootCmd.AddCommand(bucketsCmd)
}

func runBuckets(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	ns, err := bucket.LoadNamespace(cfg.EnvFile)
	if err != nil {
		return fmt.Errorf("load bucket declarations: %w", err)
	}

	registry := bucket.NewRegistry(bucket.NewResolver(ns), cfg.DefaultBucket)
	statuses := registry.Statuses()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "NAME\tPROVIDER\tTARGET\tSTATUS")

	invalid := 0
	for _, s := range statuses {
		name := s.Name
		if name == registry.Default() {
			name += " (default)"
		}

		if !s.Valid() {
			invalid++
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, "-", "-", "invalid: "+s.Err.Error())
			continue
		}

		target := s.Config.BucketName
		if s.Config.BindingName != "" {
			target = "binding " + s.Config.BindingName
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", name, s.Config.Provider, target, "ok")
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(statuses) == 0 {
		fmt.Println("No buckets declared. Set BUCKET_<name>_PROVIDER to declare one.")
	}

	if bucketsStrict && invalid > 0 {
		return fmt.Errorf("%d of %d buckets invalid: %s", invalid, len(statuses), strings.Join(invalidNames(statuses), ", "))
	}
	return nil
}

func invalidNames(statuses []bucket.Status) []string {
	return lo.FilterMap(statuses, func(s bucket.Status, _ int) (string, bool) {
		return s.Name, !s.Valid()
	})
}
