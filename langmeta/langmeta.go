// Package langmeta provides the language registry used by catalogs, the
// translator prompt and the CLI tables: ISO 639-1 codes with English and
// native names plus emoji flags.
package langmeta

import (
	"sort"
	"strings"
)

// Language is an ISO 639-1 code, optionally followed by a region
// ("fr", "pt-BR", "zh-Hans"). It is only used as a lookup and formatting key.
type Language string

// Meta describes language display metadata.
type Meta struct {
	Name   string
	Native string
	Flag   string
}

// Registry contains canonical language metadata.
// Locale variants are resolved in Resolve() via normalization and base fallback.
var Registry = map[Language]Meta{
	"af":      {Name: "Afrikaans", Native: "Afrikaans", Flag: "🇿🇦"},
	"ar":      {Name: "Arabic", Native: "العربية", Flag: "🇸🇦"},
	"az":      {Name: "Azerbaijani", Native: "Azərbaycanca", Flag: "🇦🇿"},
	"be":      {Name: "Belarusian", Native: "Беларуская", Flag: "🇧🇾"},
	"bg":      {Name: "Bulgarian", Native: "Български", Flag: "🇧🇬"},
	"bn":      {Name: "Bengali", Native: "বাংলা", Flag: "🇧🇩"},
	"ca":      {Name: "Catalan", Native: "Català", Flag: "🇪🇸"},
	"cs":      {Name: "Czech", Native: "Čeština", Flag: "🇨🇿"},
	"cy":      {Name: "Welsh", Native: "Cymraeg", Flag: "🇬🇧"},
	"da":      {Name: "Danish", Native: "Dansk", Flag: "🇩🇰"},
	"de":      {Name: "German", Native: "Deutsch", Flag: "🇩🇪"},
	"el":      {Name: "Greek", Native: "Ελληνικά", Flag: "🇬🇷"},
	"en":      {Name: "English", Native: "English", Flag: "🇺🇸"},
	"en-AU":   {Name: "English (Australia)", Native: "English (Australia)", Flag: "🇦🇺"},
	"en-GB":   {Name: "English (UK)", Native: "English (UK)", Flag: "🇬🇧"},
	"es":      {Name: "Spanish", Native: "Español", Flag: "🇪🇸"},
	"es-MX":   {Name: "Spanish (Mexico)", Native: "Español (México)", Flag: "🇲🇽"},
	"et":      {Name: "Estonian", Native: "Eesti", Flag: "🇪🇪"},
	"eu":      {Name: "Basque", Native: "Euskara", Flag: "🇪🇸"},
	"fa":      {Name: "Persian", Native: "فارسی", Flag: "🇮🇷"},
	"fi":      {Name: "Finnish", Native: "Suomi", Flag: "🇫🇮"},
	"fr":      {Name: "French", Native: "Français", Flag: "🇫🇷"},
	"fr-CA":   {Name: "French (Canada)", Native: "Français (Canada)", Flag: "🇨🇦"},
	"ga":      {Name: "Irish", Native: "Gaeilge", Flag: "🇮🇪"},
	"gl":      {Name: "Galician", Native: "Galego", Flag: "🇪🇸"},
	"gu":      {Name: "Gujarati", Native: "ગુજરાતી", Flag: "🇮🇳"},
	"he":      {Name: "Hebrew", Native: "עברית", Flag: "🇮🇱"},
	"hi":      {Name: "Hindi", Native: "हिन्दी", Flag: "🇮🇳"},
	"hr":      {Name: "Croatian", Native: "Hrvatski", Flag: "🇭🇷"},
	"hu":      {Name: "Hungarian", Native: "Magyar", Flag: "🇭🇺"},
	"hy":      {Name: "Armenian", Native: "Հայերեն", Flag: "🇦🇲"},
	"id":      {Name: "Indonesian", Native: "Bahasa Indonesia", Flag: "🇮🇩"},
	"is":      {Name: "Icelandic", Native: "Íslenska", Flag: "🇮🇸"},
	"it":      {Name: "Italian", Native: "Italiano", Flag: "🇮🇹"},
	"ja":      {Name: "Japanese", Native: "日本語", Flag: "🇯🇵"},
	"ka":      {Name: "Georgian", Native: "ქართული", Flag: "🇬🇪"},
	"kk":      {Name: "Kazakh", Native: "Қазақ тілі", Flag: "🇰🇿"},
	"km":      {Name: "Khmer", Native: "ខ្មែរ", Flag: "🇰🇭"},
	"ko":      {Name: "Korean", Native: "한국어", Flag: "🇰🇷"},
	"lt":      {Name: "Lithuanian", Native: "Lietuvių", Flag: "🇱🇹"},
	"lv":      {Name: "Latvian", Native: "Latviešu", Flag: "🇱🇻"},
	"mk":      {Name: "Macedonian", Native: "Македонски", Flag: "🇲🇰"},
	"ml":      {Name: "Malayalam", Native: "മലയാളം", Flag: "🇮🇳"},
	"mn":      {Name: "Mongolian", Native: "Монгол", Flag: "🇲🇳"},
	"mr":      {Name: "Marathi", Native: "मराठी", Flag: "🇮🇳"},
	"ms":      {Name: "Malay", Native: "Bahasa Melayu", Flag: "🇲🇾"},
	"nb":      {Name: "Norwegian Bokmål", Native: "Norsk bokmål", Flag: "🇳🇴"},
	"nl":      {Name: "Dutch", Native: "Nederlands", Flag: "🇳🇱"},
	"pa":      {Name: "Punjabi", Native: "ਪੰਜਾਬੀ", Flag: "🇮🇳"},
	"pl":      {Name: "Polish", Native: "Polski", Flag: "🇵🇱"},
	"pt":      {Name: "Portuguese", Native: "Português", Flag: "🇵🇹"},
	"pt-BR":   {Name: "Portuguese (Brazil)", Native: "Português (Brasil)", Flag: "🇧🇷"},
	"pt-PT":   {Name: "Portuguese (Portugal)", Native: "Português (Portugal)", Flag: "🇵🇹"},
	"ro":      {Name: "Romanian", Native: "Română", Flag: "🇷🇴"},
	"ru":      {Name: "Russian", Native: "Русский", Flag: "🇷🇺"},
	"sk":      {Name: "Slovak", Native: "Slovenčina", Flag: "🇸🇰"},
	"sl":      {Name: "Slovenian", Native: "Slovenščina", Flag: "🇸🇮"},
	"sq":      {Name: "Albanian", Native: "Shqip", Flag: "🇦🇱"},
	"sr":      {Name: "Serbian", Native: "Српски", Flag: "🇷🇸"},
	"sv":      {Name: "Swedish", Native: "Svenska", Flag: "🇸🇪"},
	"sw":      {Name: "Swahili", Native: "Kiswahili", Flag: "🇹🇿"},
	"ta":      {Name: "Tamil", Native: "தமிழ்", Flag: "🇮🇳"},
	"te":      {Name: "Telugu", Native: "తెలుగు", Flag: "🇮🇳"},
	"th":      {Name: "Thai", Native: "ไทย", Flag: "🇹🇭"},
	"tr":      {Name: "Turkish", Native: "Türkçe", Flag: "🇹🇷"},
	"uk":      {Name: "Ukrainian", Native: "Українська", Flag: "🇺🇦"},
	"ur":      {Name: "Urdu", Native: "اردو", Flag: "🇵🇰"},
	"uz":      {Name: "Uzbek", Native: "O'zbek", Flag: "🇺🇿"},
	"vi":      {Name: "Vietnamese", Native: "Tiếng Việt", Flag: "🇻🇳"},
	"zh":      {Name: "Chinese", Native: "中文", Flag: "🇨🇳"},
	"zh-Hans": {Name: "Chinese (Simplified)", Native: "简体中文", Flag: "🇨🇳"},
	"zh-Hant": {Name: "Chinese (Traditional)", Native: "繁體中文", Flag: "🇹🇼"},
	"zh-HK":   {Name: "Chinese (Hong Kong)", Native: "繁體中文（香港）", Flag: "🇭🇰"},
}

// canonicalize turns "pt_br" into "pt-BR" and "zh-hans" into "zh-Hans".
func canonicalize(lang string) Language {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		switch len(parts[1]) {
		case 4: // script subtag
			parts[1] = strings.ToUpper(parts[1][:1]) + strings.ToLower(parts[1][1:])
		default:
			parts[1] = strings.ToUpper(parts[1])
		}
	}
	return Language(strings.Join(parts, "-"))
}

// Parse normalizes a user-supplied language code.
func Parse(raw string) Language {
	return canonicalize(raw)
}

// Base returns the ISO 639-1 part of the code ("pt" for "pt-BR").
func (l Language) Base() Language {
	code := canonicalize(string(l))
	if i := strings.IndexByte(string(code), '-'); i >= 0 {
		return code[:i]
	}
	return code
}

// Valid reports whether the code, or its base language, is known.
func (l Language) Valid() bool {
	code := canonicalize(string(l))
	if code == "" {
		return false
	}
	if _, ok := Registry[code]; ok {
		return true
	}
	_, ok := Registry[code.Base()]
	return ok
}

// Name returns the English display name, or the code itself when unknown.
func (l Language) Name() string {
	return Resolve(l).Name
}

func (l Language) String() string {
	return string(l)
}

// Resolve returns best-effort language metadata for language codes,
// supporting variants like pt_BR, pt-BR, and locale fallbacks.
func Resolve(lang Language) Meta {
	if m, ok := Registry[lang]; ok {
		return m
	}
	normalized := canonicalize(string(lang))
	if m, ok := Registry[normalized]; ok {
		return m
	}
	if base := normalized.Base(); base != normalized {
		if m, ok := Registry[base]; ok {
			m.Name = m.Name + " (" + string(normalized[len(base)+1:]) + ")"
			return m
		}
	}
	return Meta{Name: string(lang), Native: string(lang)}
}

// ParseList splits a comma-separated list ("de, fr,pt_BR") into codes,
// dropping blanks and duplicates while keeping the input order.
func ParseList(raw string) []Language {
	var out []Language
	seen := make(map[Language]bool)
	for _, part := range strings.Split(raw, ",") {
		code := canonicalize(part)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		out = append(out, code)
	}
	return out
}

// Codes returns all registry codes, sorted.
func Codes() []Language {
	codes := make([]Language, 0, len(Registry))
	for code := range Registry {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}
