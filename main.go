// xctranslate translates Xcode String Catalogs (.xcstrings) with OpenAI chat models.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/minios-linux/xctranslate/config"
	"github.com/minios-linux/xctranslate/i18n"
	"github.com/minios-linux/xctranslate/logging"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.BlueString("[INFO]"), fmt.Sprintf(format, args...))
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.GreenString("[OK]"), fmt.Sprintf(format, args...))
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.YellowString("[WARN]"), fmt.Sprintf(format, args...))
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "%s %s\n", color.RedString("[ERROR]"), fmt.Sprintf(format, args...))
}

// printHeader writes a section title followed by a rule.
func printHeader(title string) {
	fmt.Fprintf(os.Stderr, "\n%s\n", color.New(color.FgBlue, color.Bold).Sprint(title))
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 60))
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir  string
	logLevel string
	logJSON  bool

	// logger receives diagnostics from the translation packages.
	logger = zerolog.Nop()
)

// stderrIsTerminal reports whether interactive output (progress bars,
// colors) should be drawn.
func stderrIsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// setupLogger builds the global logger. The --log-level flag wins over
// XCTRANSLATE_LOG_LEVEL, which may also come from the project .env file.
func setupLogger(cmd *cobra.Command) error {
	level, err := resolveLogLevel(logLevel, cmd.Flags().Changed("log-level"))
	if err != nil {
		return err
	}
	l, err := logging.New(level, logJSON, os.Stderr)
	if err != nil {
		return err
	}
	logger = l
	return nil
}

// resolveLogLevel returns the --log-level value when it was given, else
// XCTRANSLATE_LOG_LEVEL from the environment or the project .env file.
// It runs before the project configuration is loaded.
func resolveLogLevel(flag string, flagSet bool) (string, error) {
	if flagSet {
		return flag, nil
	}
	if _, err := config.LoadDotEnv(rootDir); err != nil {
		return "", err
	}
	if env, err := config.LoadEnv(); err == nil && env.LogLevel != "" {
		return env.LogLevel, nil
	}
	return flag, nil
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "xctranslate",
		Short: i18n.T("Translate Xcode String Catalogs with OpenAI"),
		Long: `xctranslate: machine translation for Xcode String Catalogs (.xcstrings).

Each untranslated string is sent to an OpenAI chat model on its own, with
the developer comment as context, and written back with state "translated".
Failed requests are retried a bounded number of times; strings that still
fail are reported and left untouched.

Commands:
  translate   Translate catalogs
  status      Show per-language translation progress
  models      List supported models
  auth        Manage the stored OpenAI API key

Configuration (later sources win):
  .xctranslate.yaml   project file in --root
  .env                project environment file
  XCTRANSLATE_*       environment (OPENAI_API_KEY is also accepted)
  flags`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if os.Getenv("NO_COLOR") != "" || !stderrIsTerminal() {
				color.NoColor = true
			}
			return setupLogger(cmd)
		},
	}

	// Global persistent flags, inherited by all subcommands
	root.PersistentFlags().StringVar(&rootDir, "root", ".", "Project root directory")
	root.PersistentFlags().StringVar(&logLevel, "log-level", logging.DefaultLevel, "Log level: trace, debug, info, warn, error")
	root.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write logs as JSON lines")

	_ = root.RegisterFlagCompletionFunc("log-level", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"trace", "debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newTranslateCmd(),
		newStatusCmd(),
		newModelsCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	i18n.Init("")
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version (display version information)
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: i18n.T("Show version information"),
		Long:  `Display version, commit hash, and build date.`,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("xctranslate version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}
