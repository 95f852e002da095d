package catalog

import (
	"sort"
	"strings"
)

// Variation kinds, used as path components of a Unit.
const (
	VariationDevice = "device"
	VariationPlural = "plural"
)

// Unit is one translatable string: an entry's plain value or one leaf of
// its source-language variation tree.
type Unit struct {
	// Key is the catalog entry key.
	Key string
	// Path holds (kind, name) pairs leading to a variation leaf,
	// e.g. ["plural", "one"]. Empty for plain strings.
	Path []string
	// Source is the source-language text.
	Source string
	// Comment is the entry's developer comment.
	Comment string
}

// ID identifies the unit within its catalog ("key" or "key|plural.one").
func (u Unit) ID() string {
	if len(u.Path) == 0 {
		return u.Key
	}
	var b strings.Builder
	b.WriteString(u.Key)
	b.WriteByte('|')
	for i := 0; i+1 < len(u.Path); i += 2 {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(u.Path[i])
		b.WriteByte('.')
		b.WriteString(u.Path[i+1])
	}
	return b.String()
}

// Units returns the translatable units of all entries in key order.
// Entries marked shouldTranslate=false and empty keys are skipped.
func (c *Catalog) Units() []Unit {
	var units []Unit
	for _, key := range c.Keys() {
		e := c.Strings[key]
		if key == "" || !e.Translatable() {
			continue
		}
		units = append(units, c.EntryUnits(key)...)
	}
	return units
}

// EntryUnits returns the translatable units of one entry.
func (c *Catalog) EntryUnits(key string) []Unit {
	e, ok := c.Strings[key]
	if !ok {
		return nil
	}
	src := e.Localizations[c.SourceLanguage]
	if src == nil || (src.StringUnit == nil && src.Variations == nil) {
		return []Unit{{Key: key, Source: key, Comment: e.Comment}}
	}
	var units []Unit
	collectUnits(src, nil, func(path []string, value string) {
		units = append(units, Unit{Key: key, Path: path, Source: value, Comment: e.Comment})
	})
	return units
}

func collectUnits(loc *Localization, path []string, emit func([]string, string)) {
	if loc == nil {
		return
	}
	if loc.Variations != nil {
		walkVariations(VariationDevice, loc.Variations.Device, path, emit)
		walkVariations(VariationPlural, loc.Variations.Plural, path, emit)
		return
	}
	if loc.StringUnit != nil {
		emit(path, loc.StringUnit.Value)
	}
}

func walkVariations(kind string, m map[string]*Localization, path []string, emit func([]string, string)) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		next := make([]string, len(path), len(path)+2)
		copy(next, path)
		collectUnits(m[name], append(next, kind, name), emit)
	}
}

// Translation returns the string unit stored for lang at the unit's position.
func (c *Catalog) Translation(lang string, u Unit) (*StringUnit, bool) {
	e, ok := c.Strings[u.Key]
	if !ok {
		return nil, false
	}
	loc := e.Localizations[lang]
	for i := 0; loc != nil && i+1 < len(u.Path); i += 2 {
		if loc.Variations == nil {
			return nil, false
		}
		loc = variationMap(loc.Variations, u.Path[i])[u.Path[i+1]]
	}
	if loc == nil || loc.StringUnit == nil {
		return nil, false
	}
	return loc.StringUnit, true
}

// IsTranslated reports whether lang has a usable value for the unit.
// Values marked new or needs_review are not considered translated.
func (c *Catalog) IsTranslated(lang string, u Unit) bool {
	su, ok := c.Translation(lang, u)
	if !ok || su.Value == "" {
		return false
	}
	return su.State != StateNew && su.State != StateNeedsReview
}

// SetTranslation stores value for lang at the unit's position with state
// "translated", creating localizations and variation maps as needed.
func (c *Catalog) SetTranslation(lang string, u Unit, value string) {
	e, ok := c.Strings[u.Key]
	if !ok {
		e = &Entry{}
		c.Strings[u.Key] = e
	}
	if e.Localizations == nil {
		e.Localizations = make(map[string]*Localization)
	}
	loc := e.Localizations[lang]
	if loc == nil {
		loc = &Localization{}
		e.Localizations[lang] = loc
	}
	for i := 0; i+1 < len(u.Path); i += 2 {
		if loc.Variations == nil {
			loc.Variations = &Variations{}
			loc.StringUnit = nil
		}
		m := variationMap(loc.Variations, u.Path[i])
		if m == nil {
			m = make(map[string]*Localization)
			setVariationMap(loc.Variations, u.Path[i], m)
		}
		next := m[u.Path[i+1]]
		if next == nil {
			next = &Localization{}
			m[u.Path[i+1]] = next
		}
		loc = next
	}
	loc.StringUnit = &StringUnit{State: StateTranslated, Value: value}
}

func variationMap(v *Variations, kind string) map[string]*Localization {
	switch kind {
	case VariationDevice:
		return v.Device
	case VariationPlural:
		return v.Plural
	}
	return nil
}

func setVariationMap(v *Variations, kind string, m map[string]*Localization) {
	switch kind {
	case VariationDevice:
		v.Device = m
	case VariationPlural:
		v.Plural = m
	}
}
