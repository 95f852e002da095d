package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/minios-linux/xctranslate/config"
	"github.com/minios-linux/xctranslate/i18n"
	"github.com/minios-linux/xctranslate/settings"
)

// ---------------------------------------------------------------------------
// auth (manage the stored API key)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: i18n.T("Manage the stored OpenAI API key"),
		Long: `Manage the OpenAI API key stored in the user data directory.

The stored key is used when neither --api-key nor XCTRANSLATE_API_KEY /
OPENAI_API_KEY is set.

Subcommands:
  login    Store an API key (and optional base URL)
  logout   Remove the stored key
  list     Show the stored key and environment overrides`,
	}

	cmd.AddCommand(
		newAuthLoginCmd(),
		newAuthLogoutCmd(),
		newAuthListCmd(),
	)

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var baseURL string

	cmd := &cobra.Command{
		Use:   "login",
		Short: i18n.T("Store an OpenAI API key"),
		Long: `Store an OpenAI API key. The key is read from standard input.

Use --base-url to point xctranslate at an OpenAI-compatible server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return authLogin(os.Stdin, baseURL)
		},
	}

	cmd.Flags().StringVar(&baseURL, "base-url", "", "OpenAI-compatible API base URL to store with the key")

	return cmd
}

func authLogin(in io.Reader, baseURL string) error {
	printHeader(i18n.T("OpenAI API Key Setup"))
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "  %s %s\n\n", i18n.T("Get your API key from:"), color.GreenString("https://platform.openai.com/api-keys"))

	existing := settings.GetAPIKey(settings.ProviderOpenAI)
	if existing != "" {
		fmt.Fprintf(os.Stderr, "  %s %s\n", i18n.T("Current key:"), color.YellowString("%s", settings.MaskKey(existing)))
		fmt.Fprintf(os.Stderr, "  %s ", i18n.T("Enter new key to replace, or press Enter to keep:"))
	} else {
		fmt.Fprintf(os.Stderr, "  %s ", i18n.T("Enter API key:"))
	}

	key, err := readLine(in)
	if err != nil {
		return err
	}
	if key == "" {
		if existing != "" {
			if baseURL != "" {
				if err := settings.SetAPIKey(settings.ProviderOpenAI, existing, baseURL); err != nil {
					return fmt.Errorf("saving credentials: %w", err)
				}
				logSuccess(i18n.T("Base URL updated: %s"), baseURL)
				return nil
			}
			logInfo("%s", i18n.T("Keeping existing key"))
			return nil
		}
		return errors.New(i18n.T("no API key provided"))
	}

	if err := settings.SetAPIKey(settings.ProviderOpenAI, key, baseURL); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}
	logSuccess(i18n.T("API key saved to %s"), settings.FilePath())
	fmt.Fprintf(os.Stderr, "\n  %s xctranslate translate\n\n", i18n.T("You can now use:"))
	return nil
}

// readLine reads one trimmed line from in.
func readLine(in io.Reader) (string, error) {
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		return "", errors.New(i18n.T("no input received"))
	}
	return strings.TrimSpace(scanner.Text()), nil
}

func newAuthLogoutCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "logout",
		Short: i18n.T("Remove the stored API key"),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if all {
				if err := settings.RemoveAll(); err != nil {
					return err
				}
				logSuccess("%s", i18n.T("All stored credentials removed"))
				return nil
			}
			if settings.GetAPIKey(settings.ProviderOpenAI) == "" {
				logInfo("%s", i18n.T("No API key stored"))
				return nil
			}
			if err := settings.Remove(settings.ProviderOpenAI); err != nil {
				return err
			}
			logSuccess("%s", i18n.T("API key removed"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Remove the credentials file entirely")

	return cmd
}

func newAuthListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   i18n.T("Show stored credentials and status"),
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printHeader(i18n.T("Stored Credentials"))

			store := settings.Load()
			if len(store) == 0 {
				fmt.Fprintf(os.Stderr, "  %-14s %s\n", settings.ProviderOpenAI, color.RedString("%s", i18n.T("not configured")))
			}
			for _, id := range store.Providers() {
				info := store[id]
				fmt.Fprintf(os.Stderr, "  %-14s %s (%s)\n", id, color.GreenString("%s", i18n.T("configured")), settings.MaskKey(info.Key))
				if info.BaseURL != "" {
					fmt.Fprintf(os.Stderr, "  %-14s %s %s\n", "", i18n.T("endpoint:"), info.BaseURL)
				}
			}
			fmt.Fprintf(os.Stderr, "  %-14s %s\n", i18n.T("file:"), settings.FilePath())

			fmt.Fprintf(os.Stderr, "\n  %s\n", color.YellowString("%s", i18n.T("Environment Variables")))
			for _, name := range []string{config.EnvPrefix + "_API_KEY", "OPENAI_API_KEY"} {
				if v := os.Getenv(name); v != "" {
					fmt.Fprintf(os.Stderr, "  %-20s %s %s\n", name, color.GreenString("%s", settings.MaskKey(v)), i18n.T("(overrides stored key)"))
				} else {
					fmt.Fprintf(os.Stderr, "  %-20s %s\n", name, color.RedString("%s", i18n.T("not set")))
				}
			}
			fmt.Fprintln(os.Stderr)
		},
	}
}
