package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sagarc03/bucketgate/clientcli"
)

var configureCmd = &cobra.Command{
	Use:   "configure <name>",
	Short: "Create or update a gateway profile",
	Long: `Create or update the named profile in ~/.bucketgate/config.yaml.

Values passed with --endpoint, --token, --identity, --bucket and
--identity-header are saved as given. Anything else is prompted for, with the
saved value as the default; a blank token keeps the saved token.

The first profile becomes current. Before saving, the token and identity are
checked against the gateway's bucket listing.`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigure,
}

var configureUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Make a profile current",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigureUse,
}

var configureShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show the headers a profile sends",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigureShow,
}

var configureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List profiles",
	Args:  cobra.NoArgs,
	RunE:  runConfigureList,
}

var configureRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a profile",
	Args:    cobra.ExactArgs(1),
	RunE:    runConfigureRemove,
}

var (
	identityHeader string
	noPrompt       bool
	skipCheck      bool
	showSecrets    bool
)

var errCancelled = errors.New("cancelled")

func init() {
	configureCmd.Flags().StringVar(&identityHeader, "identity-header", "", "header carrying the identity (default: X-User-Id)")
	configureCmd.Flags().BoolVar(&noPrompt, "no-prompt", false, "never prompt; keep saved values for unset flags")
	configureCmd.Flags().BoolVar(&skipCheck, "skip-check", false, "save without contacting the gateway")
	configureShowCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print the token unmasked")
	configureListCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print tokens unmasked")

	configureCmd.AddCommand(configureUseCmd, configureShowCmd, configureListCmd, configureRemoveCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	name := args[0]
	path := getConfigPath()

	profiles, err := clientcli.LoadProfiles(path)
	if err != nil {
		return err
	}
	saved, existed := profiles.Entries[name]

	p, err := fillProfile(cmd.Flags(), saved)
	if errors.Is(err, errCancelled) {
		fmt.Println("Cancelled.")
		return nil
	}
	if err != nil {
		return err
	}

	if err := profiles.Set(name, p); err != nil {
		return err
	}

	if !skipCheck {
		n, checkErr := checkGateway(p)
		switch {
		case errors.Is(checkErr, clientcli.ErrUnauthorized):
			return fmt.Errorf("gateway rejected the token: %w", checkErr)
		case checkErr != nil:
			fmt.Fprintf(os.Stderr, "Warning: could not reach %s: %v\n", p.Endpoint, checkErr)
		case p.Identity == "":
			fmt.Println("Token accepted. No identity set, uploads to whitelisted buckets will be refused.")
		default:
			fmt.Printf("Token accepted. %d bucket(s) allow %s.\n", n, p.Identity)
		}
	}

	if err := profiles.Save(path); err != nil {
		return err
	}

	verb := "added"
	if existed {
		verb = "updated"
	}
	fmt.Printf("Profile '%s' %s", name, verb)
	if profiles.Current == name {
		fmt.Print(" (current)")
	}
	fmt.Println(".")
	return nil
}

// fillProfile takes each field from its flag when set, otherwise from a prompt
// defaulting to the saved value.
func fillProfile(flags *pflag.FlagSet, saved clientcli.Profile) (clientcli.Profile, error) {
	p := saved

	tokenLabel := "Token"
	if saved.Token != "" {
		tokenLabel = "Token (blank keeps saved)"
	}

	fields := []struct {
		flag   string
		value  *string
		prompt promptui.Prompt
	}{
		{"endpoint", &p.Endpoint, promptui.Prompt{
			Label:    "Endpoint URL",
			Default:  lo.CoalesceOrEmpty(saved.Endpoint, clientcli.DefaultEndpoint),
			Validate: validateEndpoint,
		}},
		{"token", &p.Token, promptui.Prompt{Label: tokenLabel, Mask: '*'}},
		{"identity-header", &p.IdentityHeader, promptui.Prompt{
			Label:   "Identity header",
			Default: lo.CoalesceOrEmpty(saved.IdentityHeader, clientcli.DefaultIdentityHeader),
			Validate: func(s string) error {
				if !clientcli.ValidHeaderName(strings.TrimSpace(s)) {
					return clientcli.ErrInvalidIdentityHeader
				}
				return nil
			},
		}},
		{"identity", &p.Identity, promptui.Prompt{Label: "Identity (optional)", Default: saved.Identity}},
		{"bucket", &p.Bucket, promptui.Prompt{Label: "Default bucket (optional)", Default: saved.Bucket}},
	}

	for _, f := range fields {
		if fl := flags.Lookup(f.flag); fl != nil && fl.Changed {
			*f.value = strings.TrimSpace(fl.Value.String())
			continue
		}
		if noPrompt {
			continue
		}

		v, err := f.prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
			return p, errCancelled
		}
		if err != nil {
			return p, err
		}
		if v = strings.TrimSpace(v); v != "" || f.flag != "token" {
			*f.value = v
		}
	}

	p.Endpoint = strings.TrimSuffix(p.Endpoint, "/")
	if p.IdentityHeader == clientcli.DefaultIdentityHeader {
		p.IdentityHeader = ""
	}
	return p, nil
}

func validateEndpoint(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("URL must start with http:// or https://")
	}
	return nil
}

// checkGateway lists the buckets visible to the profile, which exercises both
// the token and the identity header.
func checkGateway(p clientcli.Profile) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := clientcli.New(p.Config(), clientcli.WithTimeout(5*time.Second))
	if err != nil {
		return 0, err
	}
	buckets, err := client.ListBuckets(ctx)
	return len(buckets), err
}

func runConfigureUse(_ *cobra.Command, args []string) error {
	return updateProfiles(func(ps *clientcli.Profiles) error {
		if err := ps.Use(args[0]); err != nil {
			return err
		}
		fmt.Printf("Now using profile '%s'.\n", args[0])
		return nil
	})
}

func runConfigureRemove(_ *cobra.Command, args []string) error {
	return updateProfiles(func(ps *clientcli.Profiles) error {
		if err := ps.Remove(args[0]); err != nil {
			return err
		}
		fmt.Printf("Profile '%s' removed.\n", args[0])
		return nil
	})
}

func updateProfiles(fn func(*clientcli.Profiles) error) error {
	path := getConfigPath()
	profiles, err := clientcli.LoadProfiles(path)
	if err != nil {
		return err
	}
	if err := fn(profiles); err != nil {
		return err
	}
	return profiles.Save(path)
}

func runConfigureShow(_ *cobra.Command, args []string) error {
	profiles, err := clientcli.LoadProfiles(getConfigPath())
	if err != nil {
		return err
	}

	p, err := profiles.Get(lo.FirstOrEmpty(args))
	if err != nil {
		return err
	}
	return getFormatter().FormatProfileShow(os.Stdout, p, showSecrets)
}

func runConfigureList(_ *cobra.Command, _ []string) error {
	profiles, err := clientcli.LoadProfiles(getConfigPath())
	if err != nil {
		return err
	}
	return getFormatter().FormatProfileList(os.Stdout, profiles.List(), showSecrets)
}
