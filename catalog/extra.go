package catalog

import (
	"bytes"
	"encoding/json"
)

// Keys modeled by each catalog type. Anything else is kept in Extra and
// written back unchanged.
var (
	catalogFields      = []string{"sourceLanguage", "strings", "version"}
	entryFields        = []string{"comment", "extractionState", "localizations", "shouldTranslate"}
	localizationFields = []string{"stringUnit", "substitutions", "variations"}
	variationsFields   = []string{"device", "plural"}
	stringUnitFields   = []string{"state", "value"}
)

// unknownFields returns the members of the JSON object in data whose names
// are not listed in known, or nil when there are none.
func unknownFields(data []byte, known []string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, name := range known {
		delete(all, name)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

// encodeWithExtra encodes v and merges extra into the resulting object.
// Modeled fields win over extra members of the same name. Keys come out
// sorted either way: struct fields are declared alphabetically.
func encodeWithExtra(v any, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := encodeJSON(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}
	var merged map[string]json.RawMessage
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for name, raw := range extra {
		if _, ok := merged[name]; !ok {
			merged[name] = raw
		}
	}
	return encodeJSON(merged)
}

// encodeJSON is json.Marshal without HTML escaping, matching Xcode output.
func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// ---------------------------------------------------------------------------
// JSON methods
// ---------------------------------------------------------------------------

func (c *Catalog) UnmarshalJSON(data []byte) error {
	type plain Catalog
	if err := json.Unmarshal(data, (*plain)(c)); err != nil {
		return err
	}
	extra, err := unknownFields(data, catalogFields)
	c.Extra = extra
	return err
}

func (c Catalog) MarshalJSON() ([]byte, error) {
	type plain Catalog
	return encodeWithExtra(plain(c), c.Extra)
}

func (e *Entry) UnmarshalJSON(data []byte) error {
	type plain Entry
	if err := json.Unmarshal(data, (*plain)(e)); err != nil {
		return err
	}
	extra, err := unknownFields(data, entryFields)
	e.Extra = extra
	return err
}

func (e Entry) MarshalJSON() ([]byte, error) {
	type plain Entry
	return encodeWithExtra(plain(e), e.Extra)
}

func (l *Localization) UnmarshalJSON(data []byte) error {
	type plain Localization
	if err := json.Unmarshal(data, (*plain)(l)); err != nil {
		return err
	}
	extra, err := unknownFields(data, localizationFields)
	l.Extra = extra
	return err
}

func (l Localization) MarshalJSON() ([]byte, error) {
	type plain Localization
	return encodeWithExtra(plain(l), l.Extra)
}

func (v *Variations) UnmarshalJSON(data []byte) error {
	type plain Variations
	if err := json.Unmarshal(data, (*plain)(v)); err != nil {
		return err
	}
	extra, err := unknownFields(data, variationsFields)
	v.Extra = extra
	return err
}

func (v Variations) MarshalJSON() ([]byte, error) {
	type plain Variations
	return encodeWithExtra(plain(v), v.Extra)
}

func (s *StringUnit) UnmarshalJSON(data []byte) error {
	type plain StringUnit
	if err := json.Unmarshal(data, (*plain)(s)); err != nil {
		return err
	}
	extra, err := unknownFields(data, stringUnitFields)
	s.Extra = extra
	return err
}

func (s StringUnit) MarshalJSON() ([]byte, error) {
	type plain StringUnit
	return encodeWithExtra(plain(s), s.Extra)
}
