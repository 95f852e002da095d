// Package catalog reads and writes Xcode String Catalogs (.xcstrings) and
// exposes their translatable units: the plain strings plus the plural and
// device variations of the source-language localization.
package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extension is the file extension of String Catalogs.
const Extension = ".xcstrings"

// String unit states written by Xcode.
const (
	StateNew         = "new"
	StateTranslated  = "translated"
	StateNeedsReview = "needs_review"
	StateStale       = "stale"
)

// Catalog is the top-level .xcstrings document. On every level, keys the
// types do not model are kept in Extra and written back by Marshal.
type Catalog struct {
	SourceLanguage string            `json:"sourceLanguage"`
	Strings        map[string]*Entry `json:"strings"`
	Version        string            `json:"version,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Entry is one catalog key with its per-language localizations.
type Entry struct {
	Comment         string                   `json:"comment,omitempty"`
	ExtractionState string                   `json:"extractionState,omitempty"`
	Localizations   map[string]*Localization `json:"localizations,omitempty"`
	ShouldTranslate *bool                    `json:"shouldTranslate,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Translatable reports whether the entry takes part in translation.
func (e *Entry) Translatable() bool {
	return e.ShouldTranslate == nil || *e.ShouldTranslate
}

// Localization holds either a string unit or variations for one language.
type Localization struct {
	StringUnit    *StringUnit                `json:"stringUnit,omitempty"`
	Substitutions map[string]json.RawMessage `json:"substitutions,omitempty"`
	Variations    *Variations                `json:"variations,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// Variations groups plural and device variants.
type Variations struct {
	Device map[string]*Localization `json:"device,omitempty"`
	Plural map[string]*Localization `json:"plural,omitempty"`

	Extra map[string]json.RawMessage `json:"-"`
}

// StringUnit is a single localized value.
type StringUnit struct {
	State string `json:"state,omitempty"`
	Value string `json:"value"`

	Extra map[string]json.RawMessage `json:"-"`
}

// New returns an empty catalog for the given source language.
func New(sourceLanguage string) *Catalog {
	return &Catalog{
		SourceLanguage: sourceLanguage,
		Strings:        make(map[string]*Entry),
		Version:        "1.0",
	}
}

// Parse decodes catalog JSON. The data is not checked against the schema;
// see Validate.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if c.Strings == nil {
		c.Strings = make(map[string]*Entry)
	}
	for key, e := range c.Strings {
		if e == nil {
			c.Strings[key] = &Entry{}
		}
	}
	return &c, nil
}

// LoadOptions controls Load.
type LoadOptions struct {
	// Validate checks the file against the String Catalog schema before
	// decoding it.
	Validate bool
}

// Load reads a catalog from disk.
func Load(path string, opts LoadOptions) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	if opts.Validate {
		if err := Validate(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Marshal encodes the catalog the way Xcode writes it: two-space indent,
// " : " key separators, sorted keys, no HTML escaping.
func (c *Catalog) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("marshaling catalog: %w", err)
	}
	return xcodeSeparators(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

// Save writes the catalog to path, replacing the file atomically.
func (c *Catalog) Save(path string) error {
	data, err := c.Marshal()
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".xcstrings-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// xcodeSeparators rewrites `"key": value` into `"key" : value` outside of
// string literals.
func xcodeSeparators(data []byte) []byte {
	out := make([]byte, 0, len(data)+len(data)/16)
	inString, escaped := false, false
	for _, b := range data {
		if inString {
			out = append(out, b)
			switch {
			case escaped:
				escaped = false
			case b == '\\':
				escaped = true
			case b == '"':
				inString = false
			}
			continue
		}
		switch b {
		case '"':
			inString = true
			out = append(out, b)
		case ':':
			out = append(out, ' ', ':')
		default:
			out = append(out, b)
		}
	}
	return out
}

// Keys returns entry keys in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.Strings))
	for k := range c.Strings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Languages returns the sorted non-source languages that have at least
// one localization.
func (c *Catalog) Languages() []string {
	seen := make(map[string]bool)
	for _, e := range c.Strings {
		for lang := range e.Localizations {
			if lang != c.SourceLanguage {
				seen[lang] = true
			}
		}
	}
	langs := make([]string, 0, len(seen))
	for lang := range seen {
		langs = append(langs, lang)
	}
	sort.Strings(langs)
	return langs
}

// Stats returns the number of translatable units and how many of them
// already carry a usable translation for lang.
func (c *Catalog) Stats(lang string) (total, translated int) {
	for _, u := range c.Units() {
		total++
		if c.IsTranslated(lang, u) {
			translated++
		}
	}
	return total, translated
}

// FindCatalogs returns all .xcstrings files under root, skipping hidden
// directories and build output.
func FindCatalogs(root string) ([]string, error) {
	var found []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || name == "build" || name == "DerivedData" || name == "Pods") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), Extension) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}
	sort.Strings(found)
	return found, nil
}
