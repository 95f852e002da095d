package config

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/minios-linux/xctranslate/catalog"
	"github.com/minios-linux/xctranslate/langmeta"
	"github.com/minios-linux/xctranslate/openai"
)

// Defaults.
const (
	DefaultTimeout = 60 * time.Second
	DefaultRetries = 3
)

// Config is the merged configuration of one run. Sources are applied in
// this order, later ones winning: defaults, .xctranslate.yaml, .env,
// environment, command-line flags (applied by the caller).
type Config struct {
	// Root is the absolute project root.
	Root string

	APIKey  string
	Model   openai.Model
	BaseURL string
	Timeout time.Duration
	Retries int
	Proxy   string

	// Languages is the default target language list.
	Languages []langmeta.Language
	// Catalogs are the project file catalogs, paths relative to Root.
	Catalogs []CatalogTarget
	// Lock enables xctranslate.lock.
	Lock bool
	// Verify enables language detection on translations.
	Verify bool

	// DotEnv is the .env file that was loaded, if any.
	DotEnv string
}

// Defaults returns the built-in configuration.
func Defaults(root string) *Config {
	return &Config{
		Root:    root,
		Model:   openai.DefaultModel,
		Timeout: DefaultTimeout,
		Retries: DefaultRetries,
		Lock:    true,
	}
}

// Load builds the configuration for the project at root from every source
// except flags. The result is not validated.
func Load(root string) (*Config, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	cfg := Defaults(absRoot)

	pf, err := LoadProjectFile(absRoot)
	if err != nil {
		return nil, err
	}
	cfg.applyProjectFile(pf)

	cfg.DotEnv, err = LoadDotEnv(absRoot)
	if err != nil {
		return nil, err
	}
	env, err := LoadEnv()
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(env)

	return cfg, nil
}

func (c *Config) applyProjectFile(pf *ProjectFile) {
	if pf == nil {
		return
	}
	if pf.Model != "" {
		c.Model = openai.Model(pf.Model)
	}
	if pf.BaseURL != "" {
		c.BaseURL = pf.BaseURL
	}
	if pf.Timeout > 0 {
		c.Timeout = time.Duration(pf.Timeout) * time.Second
	}
	if pf.Retries > 0 {
		c.Retries = pf.Retries
	}
	for _, code := range pf.Languages {
		c.Languages = append(c.Languages, langmeta.Parse(code))
	}
	c.Catalogs = pf.Catalogs
	c.Lock = pf.LockEnabled()
	c.Verify = pf.Verify
}

func (c *Config) applyEnv(env *Env) {
	if env.APIKey != "" {
		c.APIKey = env.APIKey
	}
	if env.Model != "" {
		c.Model = openai.Model(env.Model)
	}
	if env.BaseURL != "" {
		c.BaseURL = env.BaseURL
	}
	if env.Timeout > 0 {
		c.Timeout = time.Duration(env.Timeout) * time.Second
	}
	if env.Retries > 0 {
		c.Retries = env.Retries
	}
	if env.Proxy != "" {
		c.Proxy = env.Proxy
	}
}

// Validate checks the merged configuration. With a custom base URL any
// model name is accepted. The API key is not checked here: dry runs and
// the status command do not need one.
func (c *Config) Validate() error {
	if c.Retries < 1 {
		return fmt.Errorf("retries must be >= 1, got %d", c.Retries)
	}
	if c.Timeout < time.Second {
		return fmt.Errorf("timeout must be at least 1s, got %s", c.Timeout)
	}
	if strings.TrimSpace(c.BaseURL) == "" {
		model, err := openai.ParseModel(string(c.Model))
		if err != nil {
			return err
		}
		c.Model = model
	} else if c.Model == "" {
		return fmt.Errorf("a model is required with a custom base URL")
	}
	for _, lang := range c.Languages {
		if !lang.Valid() {
			return fmt.Errorf("unknown language code %q", lang)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Resolving catalogs
// ---------------------------------------------------------------------------

// Target is one catalog to process with its target languages.
type Target struct {
	// Path is the absolute catalog path.
	Path string
	// Rel is the path relative to the project root, used in the lock file.
	Rel string
	// Languages are the target languages. Empty means the languages
	// already present in the catalog.
	Languages []langmeta.Language
}

// Targets resolves the catalogs to process. Explicit paths (relative to
// the working directory or absolute) win over the project file, which wins
// over scanning the project root. langs, when non-empty, overrides every
// configured language list.
func (c *Config) Targets(paths []string, langs []langmeta.Language) ([]Target, error) {
	var targets []Target
	switch {
	case len(paths) > 0:
		for _, p := range paths {
			abs, err := filepath.Abs(p)
			if err != nil {
				return nil, err
			}
			targets = append(targets, c.newTarget(abs, c.Languages))
		}
	case len(c.Catalogs) > 0:
		for _, ct := range c.Catalogs {
			var ls []langmeta.Language
			for _, code := range ct.Languages {
				ls = append(ls, langmeta.Parse(code))
			}
			targets = append(targets, c.newTarget(filepath.Join(c.Root, ct.Path), ls))
		}
	default:
		found, err := catalog.FindCatalogs(c.Root)
		if err != nil {
			return nil, fmt.Errorf("searching catalogs in %s: %w", c.Root, err)
		}
		for _, p := range found {
			targets = append(targets, c.newTarget(p, c.Languages))
		}
	}

	if len(langs) > 0 {
		for i := range targets {
			targets[i].Languages = langs
		}
	}
	sort.SliceStable(targets, func(i, j int) bool { return targets[i].Rel < targets[j].Rel })
	return targets, nil
}

func (c *Config) newTarget(abs string, langs []langmeta.Language) Target {
	rel, err := filepath.Rel(c.Root, abs)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = abs
	}
	return Target{Path: abs, Rel: filepath.ToSlash(rel), Languages: langs}
}
