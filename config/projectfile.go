// Package config: .xctranslate.yaml project file, .env and environment
// variables, layered into one Config.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/minios-linux/xctranslate/catalog"
	"github.com/minios-linux/xctranslate/langmeta"
)

// ---------------------------------------------------------------------------
// YAML schema
// ---------------------------------------------------------------------------

// ProjectFile is the top-level .xctranslate.yaml structure.
type ProjectFile struct {
	// Model is the chat model identifier.
	Model string `yaml:"model,omitempty"`
	// BaseURL points at an OpenAI-compatible endpoint.
	BaseURL string `yaml:"base_url,omitempty"`
	// Timeout is the per-request timeout in seconds.
	Timeout int `yaml:"timeout,omitempty"`
	// Retries is the number of attempts per string.
	Retries int `yaml:"retries,omitempty"`
	// Languages is the default language list for all catalogs.
	Languages []string `yaml:"languages,omitempty"`
	// Catalogs lists the catalogs to translate. When empty, every
	// .xcstrings file under the project root is used.
	Catalogs []CatalogTarget `yaml:"catalogs,omitempty"`
	// Lock enables xctranslate.lock (default true).
	Lock *bool `yaml:"lock,omitempty"`
	// Verify enables language detection on translations.
	Verify bool `yaml:"verify,omitempty"`
}

// CatalogTarget is one catalog entry of the project file.
type CatalogTarget struct {
	// Path is relative to the project root.
	Path string `yaml:"path"`
	// Languages overrides the global language list for this catalog.
	Languages []string `yaml:"languages,omitempty"`
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// ProjectFileName is the project file name.
const ProjectFileName = ".xctranslate.yaml"

// LoadProjectFile loads and validates .xctranslate.yaml from the given
// directory. Returns nil if no project file exists.
func LoadProjectFile(rootDir string) (*ProjectFile, error) {
	path := filepath.Join(rootDir, ProjectFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var pf ProjectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if pf.Timeout < 0 {
		return nil, fmt.Errorf("%s: timeout must not be negative", path)
	}
	if pf.Retries < 0 {
		return nil, fmt.Errorf("%s: retries must not be negative", path)
	}
	if err := checkLanguages(pf.Languages); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	for i := range pf.Catalogs {
		t := &pf.Catalogs[i]
		t.Path = strings.TrimSpace(t.Path)
		if t.Path == "" {
			return nil, fmt.Errorf("%s: catalog #%d has no path", path, i+1)
		}
		if filepath.Ext(t.Path) != catalog.Extension {
			return nil, fmt.Errorf("%s: catalog %q is not a %s file", path, t.Path, catalog.Extension)
		}
		if err := checkLanguages(t.Languages); err != nil {
			return nil, fmt.Errorf("%s: catalog %q: %w", path, t.Path, err)
		}
		if len(t.Languages) == 0 {
			t.Languages = pf.Languages
		}
	}

	return &pf, nil
}

// LockEnabled reports whether the lock file should be used.
func (pf *ProjectFile) LockEnabled() bool {
	return pf == nil || pf.Lock == nil || *pf.Lock
}

func checkLanguages(codes []string) error {
	for _, code := range codes {
		if !langmeta.Parse(code).Valid() {
			return fmt.Errorf("unknown language code %q", code)
		}
	}
	return nil
}
