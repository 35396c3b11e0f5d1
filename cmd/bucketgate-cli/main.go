package main

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"github.com/sagarc03/bucketgate/clientcli"
)

var (
	version = "dev"

	cfgFile    string
	profile    string
	endpoint   string
	token      string
	identity   string
	bucketName string
	jsonOutput bool
	quiet      bool
)

var rootCmd = &cobra.Command{
	Use:     "bucketgate-cli",
	Version: version,
	Short:   "Client for the bucketgate upload gateway",
	Long: `bucketgate-cli uploads files through a bucketgate server and lists the
buckets your identity may use.

Settings are resolved from a profile (~/.bucketgate/config.yaml), then
BUCKETGATE_* environment variables, then flags.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: ~/.bucketgate/config.yaml, env: BUCKETGATE_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "profile name (env: BUCKETGATE_PROFILE)")
	rootCmd.PersistentFlags().StringVarP(&endpoint, "endpoint", "e", "", "server URL (default: http://localhost:8787, env: BUCKETGATE_ENDPOINT)")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "access token (env: BUCKETGATE_TOKEN)")
	rootCmd.PersistentFlags().StringVarP(&identity, "identity", "u", "", "caller identity sent in the identity header (env: BUCKETGATE_IDENTITY)")
	rootCmd.PersistentFlags().StringVarP(&bucketName, "bucket", "b", "", "bucket name (env: BUCKETGATE_BUCKET)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")

	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(bucketsCmd)
	rootCmd.AddCommand(configureCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// getConfigPath returns the profile file path from the flag, the environment or the default.
func getConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if p := clientcli.ConfigPathFromEnv(); p != "" {
		return p
	}
	return clientcli.DefaultConfigPath()
}

// buildConfig merges the profile, env vars and flags (flags take precedence).
func buildConfig() (*clientcli.Config, error) {
	var configs []*clientcli.Config

	profileName := profile
	if profileName == "" {
		profileName = clientcli.ProfileFromEnv()
	}

	profiles, err := clientcli.LoadProfiles(getConfigPath())
	if err != nil {
		return nil, err
	}

	// Without an explicit profile, missing or ambiguous profiles fall back to env and flags
	p, err := profiles.Get(profileName)
	switch {
	case err == nil:
		configs = append(configs, p.Config())
	case profileName != "":
		return nil, err
	case !errors.Is(err, clientcli.ErrNoProfiles) && !errors.Is(err, clientcli.ErrNoCurrentProfile):
		return nil, err
	}

	configs = append(configs, clientcli.ConfigFromEnv(), &clientcli.Config{
		Endpoint: endpoint,
		Token:    token,
		Identity: identity,
		Bucket:   bucketName,
	})

	return clientcli.MergeConfig(configs...), nil
}

// getFormatter returns the appropriate formatter based on flags.
func getFormatter() clientcli.Formatter {
	return clientcli.NewFormatter(jsonOutput, quiet)
}

// getClient creates a client that requires a token.
func getClient() (*clientcli.Client, error) {
	cfg, err := buildConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.ValidateWithAuth(); err != nil {
		return nil, err
	}

	return clientcli.New(cfg)
}
