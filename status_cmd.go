package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/minios-linux/xctranslate/catalog"
	"github.com/minios-linux/xctranslate/config"
	"github.com/minios-linux/xctranslate/i18n"
	"github.com/minios-linux/xctranslate/langmeta"
	"github.com/minios-linux/xctranslate/lockfile"
)

// ---------------------------------------------------------------------------
// status (read-only: catalogs + translation progress)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var langs string

	cmd := &cobra.Command{
		Use:   "status [catalog.xcstrings...]",
		Short: i18n.T("Show translation progress of String Catalogs"),
		Long: `Show per-language translation progress of Xcode String Catalogs.

Catalogs are resolved the same way as for translate. Nothing is modified.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(args, langs)
		},
	}

	cmd.Flags().StringVar(&langs, "lang", "", "Languages to show (comma-separated, default: languages in the catalog)")
	_ = cmd.RegisterFlagCompletionFunc("lang", completeLanguages)

	return cmd
}

func runStatus(paths []string, rawLangs string) error {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return err
	}
	langs, err := parseLanguages(rawLangs)
	if err != nil {
		return err
	}
	targets, err := cfg.Targets(paths, langs)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		logInfo(i18n.T("No %s catalogs found in %s"), catalog.Extension, cfg.Root)
		return nil
	}

	for _, t := range targets {
		cat, err := catalog.Load(t.Path, catalog.LoadOptions{Validate: true})
		if err != nil {
			logError("%v", err)
			continue
		}
		showCatalogStats(t, cat)
	}

	if cfg.Lock {
		lock, err := lockfile.Load(cfg.Root)
		if err != nil {
			logWarning("%v", err)
		} else {
			fmt.Fprintf(os.Stderr, "%s %s\n\n", color.New(color.Bold).Sprint(lockfile.LockFileName+":"), lock.Summary())
		}
	}
	return nil
}

func showCatalogStats(t config.Target, cat *catalog.Catalog) {
	printHeader(t.Rel)

	source := langmeta.Parse(cat.SourceLanguage)
	units := len(cat.Units())
	fmt.Fprintf(os.Stderr, "  %-10s %s (%s)\n", i18n.T("Source:"), source, source.Name())
	fmt.Fprintf(os.Stderr, "  %-10s %s\n", i18n.T("Strings:"),
		fmt.Sprintf(i18n.N("%d key", "%d keys", len(cat.Strings)), len(cat.Strings))+", "+
			fmt.Sprintf(i18n.N("%d unit", "%d units", units), units))

	langs := t.Languages
	if len(langs) == 0 {
		for _, l := range cat.Languages() {
			langs = append(langs, langmeta.Language(l))
		}
	}
	if len(langs) == 0 {
		fmt.Fprintf(os.Stderr, "\n  %s\n\n", i18n.T("No target languages yet. Use translate --lang to add some."))
		return
	}

	width := langColumnWidth(langs)
	fmt.Fprintln(os.Stderr)
	for _, lang := range langs {
		total, translated := cat.Stats(string(lang))
		p := percent(translated, total)
		fmt.Fprintf(os.Stderr, "  %s  %-22s %6s  %s\n",
			langCell(lang, width),
			truncate(lang.Name(), 22),
			fmt.Sprintf("%d/%d", translated, total),
			progressBar(p, 20))
	}
	fmt.Fprintln(os.Stderr)
}

// ---------------------------------------------------------------------------
// Table helpers
// ---------------------------------------------------------------------------

func percent(done, total int) int {
	if total <= 0 {
		return 100
	}
	return done * 100 / total
}

// progressBar renders a bar of width cells followed by the percentage,
// colored red below 50%, yellow below 100% and green when complete.
func progressBar(p, width int) string {
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	filled := p * width / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)

	c := color.New(color.FgGreen)
	switch {
	case p < 50:
		c = color.New(color.FgRed)
	case p < 100:
		c = color.New(color.FgYellow)
	}
	return fmt.Sprintf("%s %3d%%", c.Sprint(bar), p)
}

// colorCount highlights a non-zero failure count.
func colorCount(n int) string {
	return color.RedString("%d", n)
}

// langColumnWidth returns the width of the longest language code.
func langColumnWidth(langs []langmeta.Language) int {
	width := 0
	for _, l := range langs {
		if n := runewidth.StringWidth(string(l)); n > width {
			width = n
		}
	}
	return width
}

// langCell renders a flag followed by the language code padded to width.
// Languages without a flag get two blank cells in its place.
func langCell(lang langmeta.Language, width int) string {
	flag := langmeta.Resolve(lang).Flag
	if flag == "" {
		flag = "  "
	}
	return flag + " " + runewidth.FillRight(string(lang), width)
}

func truncate(s string, width int) string {
	return runewidth.Truncate(s, width, "…")
}
