package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/drivedav/clientcli"
)

const pingTimeout = 5 * time.Second

var showSecrets bool

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Manage server profiles",
	Long: `Manage the server profiles kept in ~/.drivedav/config.yaml.

A profile stores an endpoint and optional Basic auth credentials. Select one
with --profile or DRIVEDAV_PROFILE; otherwise the default profile is used.`,
}

func init() {
	configureCmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List profiles, marking the default with *",
			Args:  cobra.NoArgs,
			RunE:  runConfigureList,
		},
		&cobra.Command{
			Use:   "add <name>",
			Short: "Add or update a profile interactively",
			Long: `Prompt for an endpoint, a username and a password, then check them with
a PROPFIND on the server root before saving. Leave the username empty for
servers that run without authentication.`,
			Args: cobra.ExactArgs(1),
			RunE: runConfigureAdd,
		},
		&cobra.Command{
			Use:     "remove <name>",
			Aliases: []string{"rm"},
			Short:   "Remove a profile",
			Args:    cobra.ExactArgs(1),
			RunE:    runConfigureRemove,
		},
		&cobra.Command{
			Use:   "set-default <name>",
			Short: "Make a profile the default",
			Args:  cobra.ExactArgs(1),
			RunE:  runConfigureSetDefault,
		},
		&cobra.Command{
			Use:   "show [name]",
			Short: "Show a profile (the default when no name is given)",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runConfigureShow,
		},
		&cobra.Command{
			Use:   "test [name]",
			Short: "Check that a profile can reach its server",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runConfigureTest,
		},
	)

	configureCmd.PersistentFlags().BoolVar(&showSecrets, "show-secrets", false, "print passwords instead of masking them")
}

// loadProfiles reads the client config file. A missing file yields an
// empty config when allowMissing is set.
func loadProfiles(allowMissing bool) (*clientcli.ConfigFile, error) {
	cfg, err := clientcli.LoadConfigFile(getConfigPath())
	switch {
	case err == nil:
		return cfg, nil
	case allowMissing && errors.Is(err, os.ErrNotExist):
		return &clientcli.ConfigFile{}, nil
	default:
		return nil, fmt.Errorf("load config: %w", err)
	}
}

func saveProfiles(cfg *clientcli.ConfigFile) error {
	if err := cfg.Save(getConfigPath()); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func argOrEmpty(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func runConfigureList(cmd *cobra.Command, _ []string) error {
	cfg, err := loadProfiles(true)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	def, err := cfg.GetDefaultProfile()
	if errors.Is(err, clientcli.ErrNoProfiles) {
		_, _ = fmt.Fprintln(out, "No profiles configured. Run 'drivedav-cli configure add <name>' to create one.")
		return nil
	}
	if err != nil {
		return err
	}

	return getFormatter().FormatProfileList(out, cfg.Profiles, def.Name, showSecrets)
}

func runConfigureAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	out := cmd.OutOrStdout()

	cfg, err := loadProfiles(true)
	if err != nil {
		return err
	}

	existing, _ := cfg.GetProfile(name)
	if existing != nil && !confirm(fmt.Sprintf("Profile '%s' exists. Replace it", name)) {
		_, _ = fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	p, err := promptProfile(name, existing)
	if err != nil {
		return handlePromptError(out, err)
	}
	p.Default = len(cfg.Profiles) == 0 || (existing != nil && existing.Default) || confirm("Make this the default profile")

	_, _ = fmt.Fprint(out, "Checking server... ")
	if pingErr := pingProfile(cmd.Context(), p); pingErr != nil {
		_, _ = fmt.Fprintf(out, "failed: %v\n", pingErr)
		if !confirm("Save the profile anyway") {
			_, _ = fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	} else {
		_, _ = fmt.Fprintln(out, "ok")
	}

	if existing != nil {
		err = cfg.UpdateProfile(p)
	} else {
		err = cfg.AddProfile(p)
	}
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	if p.Default {
		if err := cfg.SetDefault(name); err != nil {
			return err
		}
	}
	if err := saveProfiles(cfg); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Saved profile '%s'", name)
	if p.Default {
		_, _ = fmt.Fprint(out, " (default)")
	}
	_, _ = fmt.Fprintln(out)
	return nil
}

// promptProfile asks for the connection settings of a profile. Values of
// prev, when present, are offered as defaults.
func promptProfile(name string, prev *clientcli.Profile) (clientcli.Profile, error) {
	p := clientcli.Profile{Name: name, Endpoint: clientcli.DefaultEndpoint}
	if prev != nil {
		p.Endpoint, p.Username = prev.Endpoint, prev.Username
	}

	endpointURL, err := (&promptui.Prompt{
		Label:   "Endpoint URL",
		Default: p.Endpoint,
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("endpoint URL is required")
			}
			return (&clientcli.Config{Endpoint: input}).Validate()
		},
	}).Run()
	if err != nil {
		return p, err
	}
	p.Endpoint = strings.TrimSuffix(strings.TrimSpace(endpointURL), "/")

	user, err := (&promptui.Prompt{Label: "Username (empty for anonymous)", Default: p.Username}).Run()
	if err != nil {
		return p, err
	}
	p.Username = strings.TrimSpace(user)

	if p.Username == "" {
		return p, nil
	}
	p.Password, err = (&promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(input string) error {
			if input == "" {
				return clientcli.ErrPasswordRequired
			}
			return nil
		},
	}).Run()
	return p, err
}

func runConfigureRemove(cmd *cobra.Command, args []string) error {
	name := args[0]
	cfg, err := loadProfiles(false)
	if err != nil {
		return err
	}
	if _, err := cfg.GetProfile(name); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !confirm(fmt.Sprintf("Remove profile '%s'", name)) {
		_, _ = fmt.Fprintln(out, "Cancelled.")
		return nil
	}

	if err := cfg.RemoveProfile(name); err != nil {
		return err
	}
	if err := saveProfiles(cfg); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(out, "Removed profile '%s'\n", name)
	return nil
}

func runConfigureSetDefault(cmd *cobra.Command, args []string) error {
	cfg, err := loadProfiles(false)
	if err != nil {
		return err
	}
	if err := cfg.SetDefault(args[0]); err != nil {
		return err
	}
	if err := saveProfiles(cfg); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Default profile is now '%s'\n", args[0])
	return nil
}

func runConfigureShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadProfiles(false)
	if err != nil {
		return err
	}

	name := argOrEmpty(args)
	p, err := cfg.GetProfile(name)
	if err != nil {
		return err
	}

	// GetProfile("") resolves to the default.
	return getFormatter().FormatProfileShow(cmd.OutOrStdout(), *p, p.Default || name == "", showSecrets)
}

func runConfigureTest(cmd *cobra.Command, args []string) error {
	cfg, err := loadProfiles(false)
	if err != nil {
		return err
	}

	p, err := cfg.GetProfile(argOrEmpty(args))
	if err != nil {
		return err
	}

	if err := pingProfile(cmd.Context(), *p); err != nil {
		return fmt.Errorf("profile %s: %w", p.Name, err)
	}
	if !quiet {
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s: %s reachable\n", p.Name, p.Endpoint)
	}
	return nil
}

// pingProfile issues a depth-0 PROPFIND on the server root with the
// profile's credentials.
func pingProfile(ctx context.Context, p clientcli.Profile) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	client, err := clientcli.New(clientcli.ConfigFromProfile(&p), clientcli.WithTimeout(pingTimeout))
	if err != nil {
		return err
	}
	return client.Ping(ctx)
}

func confirm(label string) bool {
	_, err := (&promptui.Prompt{Label: label, IsConfirm: true}).Run()
	return err == nil
}

// handlePromptError turns an aborted prompt into a clean exit.
func handlePromptError(out io.Writer, err error) error {
	switch {
	case errors.Is(err, promptui.ErrInterrupt):
		_, _ = fmt.Fprintln(out, "\nCancelled.")
		return &exitError{code: 130}
	case errors.Is(err, promptui.ErrAbort):
		_, _ = fmt.Fprintln(out, "Cancelled.")
		return nil
	default:
		return err
	}
}
