package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketgate/config"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Version: version,
	Use:     "bucketgate",
	Short:   "Authenticated upload gateway for R2 and S3 buckets",
	Long: `Bucketgate accepts multipart uploads from trusted callers and stores
them in Cloudflare R2 or S3-compatible buckets declared through BUCKET_*
environment variables.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configFiles, _ := cmd.Flags().GetStringSlice("config")

		cfg, err := config.Load(configFiles, cmd.Flags())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		setupLogging(cfg)
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringSlice("config", nil, "config file paths, later files override earlier ones (default: ./config.yaml)")
	rootCmd.PersistentFlags().String("env-file", "", "dotenv file with BUCKET_* declarations (env: ENV_FILE)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (env: LOG_LEVEL)")
	rootCmd.PersistentFlags().String("default-bucket", "", "bucket used when a request names none (env: DEFAULT_BUCKET_CONFIG_NAME)")
	rootCmd.PersistentFlags().String("token-file", "", "JSON file with access tokens (env: AUTH_TOKEN_FILE)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
