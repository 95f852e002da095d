package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/minios-linux/xctranslate/catalog"
	"github.com/minios-linux/xctranslate/config"
	"github.com/minios-linux/xctranslate/i18n"
	"github.com/minios-linux/xctranslate/langmeta"
	"github.com/minios-linux/xctranslate/lockfile"
	"github.com/minios-linux/xctranslate/openai"
	"github.com/minios-linux/xctranslate/settings"
	"github.com/minios-linux/xctranslate/translate"
)

// ---------------------------------------------------------------------------
// translate (translate catalogs with OpenAI)
// ---------------------------------------------------------------------------

type translateArgs struct {
	langs                  string
	apiKey, model, baseURL string
	timeout                time.Duration
	retries                int
	proxy                  string
	overwrite, dryRun      bool
	verify, noLock         bool
	noValidate             bool
}

func newTranslateCmd() *cobra.Command {
	var a translateArgs

	cmd := &cobra.Command{
		Use:   "translate [catalog.xcstrings...]",
		Short: i18n.T("Translate String Catalogs using OpenAI"),
		Long: `Translate Xcode String Catalogs using an OpenAI chat model.

Without arguments, the catalogs listed in .xctranslate.yaml are used, or
every .xcstrings file under --root. Without --lang, every language already
present in a catalog is filled in.

Examples:
  # Fill in missing translations of all catalogs in the project
  xctranslate translate

  # Add German and Brazilian Portuguese to one catalog
  xctranslate translate App/Localizable.xcstrings --lang de,pt-BR

  # Use a cheaper model and more attempts per string
  xctranslate translate --model gpt-4o-mini --retries 5

  # Show what would be translated without calling the API
  xctranslate translate --dry-run`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runTranslate(ctx, args, a)
		},
	}

	cmd.Flags().StringVar(&a.langs, "lang", "", "Target languages (comma-separated, default: languages in the catalog)")

	cmd.Flags().StringVar(&a.model, "model", "", "Model name (default: gpt-4o)")
	cmd.Flags().StringVar(&a.apiKey, "api-key", "", "OpenAI API key (or XCTRANSLATE_API_KEY / OPENAI_API_KEY)")
	cmd.Flags().StringVar(&a.baseURL, "base-url", "", "Custom OpenAI-compatible API base URL")

	cmd.Flags().BoolVar(&a.overwrite, "overwrite", false, "Re-translate strings that already have a translation")
	cmd.Flags().BoolVar(&a.dryRun, "dry-run", false, "Show what would be translated without calling the API")
	cmd.Flags().BoolVar(&a.verify, "verify", false, "Warn when a translation is detected as another language")
	cmd.Flags().BoolVar(&a.noLock, "no-lock", false, "Do not read or update "+lockfile.LockFileName)
	cmd.Flags().BoolVar(&a.noValidate, "no-validate", false, "Skip schema validation of catalogs")

	cmd.Flags().DurationVar(&a.timeout, "timeout", 0, "Request timeout (0 = config, default 60s)")
	cmd.Flags().IntVar(&a.retries, "retries", 0, "Maximum attempts per string (0 = config, default 3)")
	cmd.Flags().StringVar(&a.proxy, "proxy", "", "HTTP/HTTPS proxy URL")

	_ = cmd.RegisterFlagCompletionFunc("model", completeModels)
	_ = cmd.RegisterFlagCompletionFunc("lang", completeLanguages)

	return cmd
}

func completeModels(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, m := range openai.SupportedModels() {
		out = append(out, string(m))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

func completeLanguages(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var out []string
	for _, code := range langmeta.Codes() {
		out = append(out, fmt.Sprintf("%s\t%s", code, code.Name()))
	}
	return out, cobra.ShellCompDirectiveNoFileComp
}

// applyTranslateArgs layers command-line flags over the loaded configuration.
func applyTranslateArgs(cfg *config.Config, a translateArgs) {
	if a.model != "" {
		cfg.Model = openai.Model(a.model)
	}
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	if a.timeout > 0 {
		cfg.Timeout = a.timeout
	}
	if a.retries > 0 {
		cfg.Retries = a.retries
	}
	if a.proxy != "" {
		cfg.Proxy = a.proxy
	}
	if a.verify {
		cfg.Verify = true
	}
	if a.noLock {
		cfg.Lock = false
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = settings.GetBaseURL(settings.ProviderOpenAI)
	}
}

// parseLanguages parses a --lang value and rejects unknown codes.
func parseLanguages(raw string) ([]langmeta.Language, error) {
	langs := langmeta.ParseList(raw)
	for _, l := range langs {
		if !l.Valid() {
			return nil, fmt.Errorf("unknown language code %q", l)
		}
	}
	return langs, nil
}

func runTranslate(ctx context.Context, paths []string, a translateArgs) error {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return err
	}
	applyTranslateArgs(cfg, a)
	if err := cfg.Validate(); err != nil {
		return err
	}
	langs, err := parseLanguages(a.langs)
	if err != nil {
		return err
	}

	apiKey := settings.ResolveAPIKey(settings.ProviderOpenAI, a.apiKey, cfg.APIKey)
	if apiKey == "" && !a.dryRun {
		return errors.New(i18n.T("no OpenAI API key: use --api-key, set XCTRANSLATE_API_KEY or run 'xctranslate auth login'"))
	}

	targets, err := cfg.Targets(paths, langs)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf(i18n.T("no %s catalogs found in %s"), catalog.Extension, cfg.Root)
	}

	var lock *lockfile.LockFile
	if cfg.Lock {
		if lock, err = lockfile.Load(cfg.Root); err != nil {
			return err
		}
	}

	svc := translate.NewOpenAITranslator(translate.Config{
		Token:   apiKey,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
		Retries: cfg.Retries,
		BaseURL: cfg.BaseURL,
		Proxy:   cfg.Proxy,
	}, translate.WithLogger(logger))

	if a.dryRun {
		logInfo("%s", i18n.T("Dry run: nothing will be sent or written"))
	} else {
		logInfo(i18n.T("Model: %s, up to %d attempts per string"), svc.Model(), svc.Retries())
	}
	if cfg.DotEnv != "" {
		logger.Debug().Str("path", cfg.DotEnv).Msg("loaded environment file")
	}

	var (
		total          translate.CatalogStats
		failedCatalogs int
	)
	for _, t := range targets {
		stats, err := translateTarget(ctx, svc, t, cfg, lock, a)
		total.Add(stats)
		if err != nil {
			if ctx.Err() != nil {
				saveLock(lock, a.dryRun)
				return fmt.Errorf("%s: %w", i18n.T("interrupted"), ctx.Err())
			}
			logError("%s: %v", t.Rel, err)
			failedCatalogs++
		}
	}
	saveLock(lock, a.dryRun)

	printTranslateSummary(total, a.dryRun)
	if failedCatalogs > 0 {
		return fmt.Errorf(i18n.N("%d catalog could not be processed", "%d catalogs could not be processed", failedCatalogs), failedCatalogs)
	}
	if total.Failed > 0 {
		return fmt.Errorf(i18n.N("%d string could not be translated", "%d strings could not be translated", total.Failed), total.Failed)
	}
	return nil
}

// translateTarget translates one catalog and saves it when something
// changed, also when the run was interrupted halfway.
func translateTarget(ctx context.Context, svc translate.Service, t config.Target, cfg *config.Config, lock *lockfile.LockFile, a translateArgs) (translate.CatalogStats, error) {
	printHeader(t.Rel)

	cat, err := catalog.Load(t.Path, catalog.LoadOptions{Validate: !a.noValidate})
	if err != nil {
		return translate.CatalogStats{}, err
	}

	progress := newProgress(!a.dryRun && !logJSON && stderrIsTerminal())
	stats, runErr := translate.TranslateCatalog(ctx, svc, cat, translate.CatalogOptions{
		Languages:   t.Languages,
		Overwrite:   a.overwrite,
		DryRun:      a.dryRun,
		Lock:        lock,
		CatalogPath: t.Rel,
		Verify:      cfg.Verify,
		Logger:      logger.With().Str("catalog", t.Rel).Logger(),
		OnProgress:  progress.update,
	})
	progress.finish()

	if a.dryRun {
		logInfo(i18n.T("%d of %d strings would be translated"), stats.Pending, stats.Total)
		return stats, runErr
	}
	if stats.Changed() {
		if err := cat.Save(t.Path); err != nil {
			return stats, err
		}
	}
	if runErr == nil {
		logSuccess(i18n.T("%d translated, %d reused, %d up to date, %d failed"),
			stats.Translated, stats.Cached, stats.Skipped, stats.Failed)
	}
	return stats, runErr
}

func saveLock(lock *lockfile.LockFile, dryRun bool) {
	if lock == nil || dryRun {
		return
	}
	if err := lock.Save(); err != nil {
		logWarning(i18n.T("Could not save %s: %v"), lockfile.LockFileName, err)
	}
}

func printTranslateSummary(s translate.CatalogStats, dryRun bool) {
	printHeader(i18n.T("Summary"))
	if dryRun {
		fmt.Fprintf(os.Stderr, "  %-14s %d\n", i18n.T("Pending:"), s.Pending)
		fmt.Fprintf(os.Stderr, "  %-14s %d\n", i18n.T("Up to date:"), s.Skipped)
		fmt.Fprintln(os.Stderr)
		return
	}
	fmt.Fprintf(os.Stderr, "  %-14s %d\n", i18n.T("Translated:"), s.Translated+s.Cached)
	fmt.Fprintf(os.Stderr, "  %-14s %d\n", i18n.T("Up to date:"), s.Skipped)
	if s.Failed > 0 {
		fmt.Fprintf(os.Stderr, "  %-14s %s\n", i18n.T("Failed:"), colorCount(s.Failed))
	} else {
		fmt.Fprintf(os.Stderr, "  %-14s %d\n", i18n.T("Failed:"), 0)
	}
	fmt.Fprintln(os.Stderr)
}

// ---------------------------------------------------------------------------
// Progress bar
// ---------------------------------------------------------------------------

// progress draws one bar per language while a catalog is translated.
type progress struct {
	enabled bool
	lang    langmeta.Language
	bar     *pb.ProgressBar
}

func newProgress(enabled bool) *progress {
	return &progress{enabled: enabled}
}

func (p *progress) update(lang langmeta.Language, done, total int) {
	if !p.enabled {
		return
	}
	if p.bar == nil || p.lang != lang {
		p.finish()
		p.lang = lang
		p.bar = pb.Default.New(total).
			SetWriter(os.Stderr).
			Set("prefix", fmt.Sprintf("%-8s", lang)).
			Start()
	}
	p.bar.SetCurrent(int64(done))
}

func (p *progress) finish() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}
