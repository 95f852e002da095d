package translate

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/minios-linux/xctranslate/catalog"
	"github.com/minios-linux/xctranslate/langmeta"
	"github.com/minios-linux/xctranslate/lockfile"
)

// DefaultCacheSize is the number of translations memoized per run.
const DefaultCacheSize = 1024

// ---------------------------------------------------------------------------
// Catalog options
// ---------------------------------------------------------------------------

// CatalogOptions controls TranslateCatalog.
type CatalogOptions struct {
	// Languages are the target languages. Empty means every non-source
	// language already present in the catalog.
	Languages []langmeta.Language
	// Overwrite re-translates units that already have a translation.
	Overwrite bool
	// DryRun selects units without calling the service or touching the catalog.
	DryRun bool
	// Lock, when set, re-translates units whose source changed since their
	// last machine translation and records checksums of new ones.
	Lock *lockfile.LockFile
	// CatalogPath names the catalog in the lock file.
	CatalogPath string
	// Verify runs language detection on results and warns on mismatches.
	Verify bool
	// CacheSize bounds the translation memo (default DefaultCacheSize).
	CacheSize int
	// Logger receives per-unit diagnostics.
	Logger zerolog.Logger
	// OnProgress is called after each unit of a language is processed.
	OnProgress func(lang langmeta.Language, done, total int)
}

func (o *CatalogOptions) effectiveCacheSize() int {
	if o.CacheSize > 0 {
		return o.CacheSize
	}
	return DefaultCacheSize
}

// CatalogStats summarizes a TranslateCatalog run, counted per unit and
// language.
type CatalogStats struct {
	// Total is the number of units considered.
	Total int
	// Pending is the number of units selected for translation.
	Pending int
	// Translated were translated by the service.
	Translated int
	// Cached reused a translation made earlier in the run.
	Cached int
	// Skipped already had an up-to-date translation.
	Skipped int
	// Failed exhausted their attempts and were left untouched.
	Failed int
}

// Add accumulates o into s.
func (s *CatalogStats) Add(o CatalogStats) {
	s.Total += o.Total
	s.Pending += o.Pending
	s.Translated += o.Translated
	s.Cached += o.Cached
	s.Skipped += o.Skipped
	s.Failed += o.Failed
}

// Changed reports whether the run modified the catalog.
func (s CatalogStats) Changed() bool {
	return s.Translated+s.Cached > 0
}

type memoKey struct {
	lang    langmeta.Language
	comment string
	text    string
}

// ---------------------------------------------------------------------------
// Catalog runner
// ---------------------------------------------------------------------------

// TranslateCatalog translates the untranslated units of cat into each
// target language, one string at a time, storing results with state
// "translated". A unit that fails is logged, counted and skipped; only
// context cancellation stops the run early. The catalog is modified in
// place and not saved.
func TranslateCatalog(ctx context.Context, svc Service, cat *catalog.Catalog, opts CatalogOptions) (CatalogStats, error) {
	var stats CatalogStats

	memo, err := lru.New[memoKey, string](opts.effectiveCacheSize())
	if err != nil {
		return stats, fmt.Errorf("creating translation cache: %w", err)
	}

	langs := opts.Languages
	if len(langs) == 0 {
		for _, l := range cat.Languages() {
			langs = append(langs, langmeta.Language(l))
		}
	}

	units := cat.Units()
	for _, lang := range langs {
		if string(lang) == cat.SourceLanguage {
			continue
		}
		langStats, err := translateLanguage(ctx, svc, cat, units, lang, memo, opts)
		stats.Add(langStats)
		if err != nil {
			return stats, err
		}
	}
	return stats, nil
}

func translateLanguage(ctx context.Context, svc Service, cat *catalog.Catalog, units []catalog.Unit, lang langmeta.Language, memo *lru.Cache[memoKey, string], opts CatalogOptions) (CatalogStats, error) {
	var stats CatalogStats
	target := lockfile.TargetKey(opts.CatalogPath, string(lang))
	log := opts.Logger.With().Str("lang", string(lang)).Logger()

	pending := collectUnits(cat, units, lang, target, opts)
	stats.Total = len(units)
	stats.Pending = len(pending)
	stats.Skipped = stats.Total - stats.Pending

	if opts.Lock != nil && !opts.DryRun {
		ids := make([]string, len(units))
		for i, u := range units {
			ids[i] = u.ID()
		}
		opts.Lock.Clean(target, ids)
	}

	if opts.DryRun || len(pending) == 0 {
		return stats, nil
	}

	log.Info().Int("pending", len(pending)).Int("total", len(units)).Msg("translating")

	for i, u := range pending {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		key := memoKey{lang: lang, comment: u.Comment, text: u.Source}
		if value, ok := memo.Get(key); ok {
			cat.SetTranslation(string(lang), u, value)
			recordUnit(opts.Lock, target, u)
			stats.Cached++
		} else {
			value, err := svc.Translate(ctx, u.Source, lang, u.Comment)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return stats, ctxErr
				}
				log.Error().Err(err).Str("key", u.ID()).Msg("translation failed, skipping")
				stats.Failed++
			} else {
				checkTranslation(log, u, lang, value, opts.Verify)
				memo.Add(key, value)
				cat.SetTranslation(string(lang), u, value)
				recordUnit(opts.Lock, target, u)
				stats.Translated++
			}
		}

		if opts.OnProgress != nil {
			opts.OnProgress(lang, i+1, len(pending))
		}
	}
	return stats, nil
}

// collectUnits returns the units of lang that need translating: missing
// ones, all of them with Overwrite, and, with a lock file, those whose
// source changed since they were last machine-translated. Units with an
// empty source are never selected.
func collectUnits(cat *catalog.Catalog, units []catalog.Unit, lang langmeta.Language, target string, opts CatalogOptions) []catalog.Unit {
	var pending []catalog.Unit
	for _, u := range units {
		if u.Source == "" {
			continue
		}
		switch {
		case opts.Overwrite, !cat.IsTranslated(string(lang), u):
			pending = append(pending, u)
		case opts.Lock != nil && opts.Lock.Known(target, u.ID()) &&
			opts.Lock.IsChanged(target, u.ID(), lockfile.UnitContent(u.Source, u.Comment)):
			pending = append(pending, u)
		}
	}
	return pending
}

func recordUnit(lock *lockfile.LockFile, target string, u catalog.Unit) {
	if lock == nil {
		return
	}
	lock.Update(target, u.ID(), lockfile.UnitContent(u.Source, u.Comment))
}

// checkTranslation logs suspicious results. Nothing is rejected.
func checkTranslation(log zerolog.Logger, u catalog.Unit, lang langmeta.Language, value string, verify bool) {
	if missing := MissingPlaceholders(u.Source, value); len(missing) > 0 {
		log.Warn().
			Str("key", u.ID()).
			Strs("missing", missing).
			Str("translation", preview(value, 60)).
			Msg("placeholders missing from translation")
	}
	if !verify {
		return
	}
	if detected := langmeta.Detect(value); detected != "" && detected != lang.Base() {
		log.Warn().
			Str("key", u.ID()).
			Str("detected", string(detected)).
			Str("translation", preview(value, 60)).
			Msg("translation does not look like the target language")
	}
}
