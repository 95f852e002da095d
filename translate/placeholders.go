package translate

import (
	"regexp"
	"sort"
)

// placeholderPattern matches printf-style format specifiers as used by
// Foundation (%@, %lld, %1$@, %.2f) and @argN tokens.
var placeholderPattern = regexp.MustCompile(`%%|%(?:\d+\$)?[-+#0']*(?:\d+|\*)?(?:\.(?:\d+|\*))?(?:hh|ll|h|l|q|L|z|t|j)?[@dDiuUxXoOfFeEgGaAcCsSp]|@arg\d+`)

// Placeholders returns the placeholder tokens of s in order of appearance.
// Escaped percent signs are not placeholders.
func Placeholders(s string) []string {
	var out []string
	for _, m := range placeholderPattern.FindAllString(s, -1) {
		if m == "%%" {
			continue
		}
		out = append(out, m)
	}
	return out
}

// MissingPlaceholders returns the placeholders of source that occur fewer
// times in translated, sorted. Reordering is allowed.
func MissingPlaceholders(source, translated string) []string {
	want := make(map[string]int)
	for _, p := range Placeholders(source) {
		want[p]++
	}
	if len(want) == 0 {
		return nil
	}
	for _, p := range Placeholders(translated) {
		want[p]--
	}
	var missing []string
	for p, n := range want {
		if n > 0 {
			missing = append(missing, p)
		}
	}
	sort.Strings(missing)
	return missing
}
