package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fatih/color"

	"github.com/minios-linux/xctranslate/catalog"
	"github.com/minios-linux/xctranslate/config"
	"github.com/minios-linux/xctranslate/langmeta"
	"github.com/minios-linux/xctranslate/lockfile"
	"github.com/minios-linux/xctranslate/openai"
	"github.com/minios-linux/xctranslate/settings"
)

func disableColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

// isolate points every configuration source at empty temporary locations.
func isolate(t *testing.T) string {
	t.Helper()
	for _, name := range []string{
		"XCTRANSLATE_API_KEY", "XCTRANSLATE_MODEL", "XCTRANSLATE_BASE_URL",
		"XCTRANSLATE_TIMEOUT", "XCTRANSLATE_RETRIES", "XCTRANSLATE_PROXY",
		"XCTRANSLATE_LOG_LEVEL", "OPENAI_API_KEY",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dir := t.TempDir()
	prev := rootDir
	rootDir = dir
	t.Cleanup(func() { rootDir = prev })
	return dir
}

func TestProgressBar(t *testing.T) {
	disableColor(t)

	tests := []struct {
		name    string
		percent int
		width   int
		want    string
	}{
		{"clamps below zero", -10, 4, "░░░░   0%"},
		{"mid range", 50, 4, "██░░  50%"},
		{"complete", 100, 4, "████ 100%"},
		{"clamps above hundred", 120, 4, "████ 100%"},
	}
	for _, tc := range tests {
		if got := progressBar(tc.percent, tc.width); got != tc.want {
			t.Errorf("%s: progressBar() = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestPercent(t *testing.T) {
	if got := percent(1, 3); got != 33 {
		t.Errorf("percent(1, 3) = %d", got)
	}
	if got := percent(0, 0); got != 100 {
		t.Errorf("percent(0, 0) = %d, want 100", got)
	}
}

func TestLangHelpers(t *testing.T) {
	langs := []langmeta.Language{"en", "pt-BR", "zh-Hant"}
	if got := langColumnWidth(langs); got != len("zh-Hant") {
		t.Fatalf("langColumnWidth() = %d, want %d", got, len("zh-Hant"))
	}

	cell := langCell("de", 5)
	if !strings.Contains(cell, "🇩🇪") || !strings.HasSuffix(cell, "de   ") {
		t.Errorf("langCell(de) = %q, want flag and padded code", cell)
	}
	if got := langCell("xx", 3); got != "   xx " {
		t.Errorf("langCell(xx) = %q", got)
	}

	if got := truncate("Portuguese (Brazil)", 10); got != "Portugues…" {
		t.Errorf("truncate() = %q", got)
	}
}

func TestModelLine(t *testing.T) {
	disableColor(t)
	if got := modelLine(openai.DefaultModel); got != "gpt-4o (default)" {
		t.Errorf("modelLine(default) = %q", got)
	}
	if got := modelLine(openai.O3Mini); got != "o3-mini" {
		t.Errorf("modelLine(o3-mini) = %q", got)
	}
}

func TestParseLanguages(t *testing.T) {
	got, err := parseLanguages("de, pt_BR,de")
	if err != nil {
		t.Fatal(err)
	}
	if want := []langmeta.Language{"de", "pt-BR"}; !reflect.DeepEqual(got, want) {
		t.Errorf("parseLanguages = %v, want %v", got, want)
	}
	if _, err := parseLanguages("de,xx"); err == nil {
		t.Error("expected error for unknown language")
	}
	if got, err := parseLanguages(""); err != nil || got != nil {
		t.Errorf("parseLanguages(\"\") = %v, %v", got, err)
	}
}

func TestApplyTranslateArgs(t *testing.T) {
	isolate(t)

	cfg := config.Defaults("/project")
	applyTranslateArgs(cfg, translateArgs{
		model:   "gpt-4o-mini",
		timeout: 10 * time.Second,
		retries: 5,
		proxy:   "http://proxy:3128",
		verify:  true,
		noLock:  true,
	})
	if cfg.Model != openai.GPT4oMini || cfg.Timeout != 10*time.Second || cfg.Retries != 5 {
		t.Errorf("cfg = %q %s %d", cfg.Model, cfg.Timeout, cfg.Retries)
	}
	if cfg.Proxy != "http://proxy:3128" || !cfg.Verify || cfg.Lock {
		t.Errorf("Proxy/Verify/Lock = %q/%v/%v", cfg.Proxy, cfg.Verify, cfg.Lock)
	}

	// Zero flag values keep the configuration.
	cfg = config.Defaults("/project")
	cfg.Retries = 7
	applyTranslateArgs(cfg, translateArgs{})
	if cfg.Retries != 7 || cfg.Timeout != config.DefaultTimeout || !cfg.Lock {
		t.Errorf("cfg changed by empty flags: %+v", cfg)
	}
}

func TestApplyTranslateArgsStoredBaseURL(t *testing.T) {
	isolate(t)
	if err := settings.SetAPIKey(settings.ProviderOpenAI, "sk-stored-0001", "http://localhost:11434/v1"); err != nil {
		t.Fatal(err)
	}

	cfg := config.Defaults("/project")
	applyTranslateArgs(cfg, translateArgs{})
	if cfg.BaseURL != "http://localhost:11434/v1" {
		t.Errorf("BaseURL = %q, want stored URL", cfg.BaseURL)
	}

	cfg = config.Defaults("/project")
	applyTranslateArgs(cfg, translateArgs{baseURL: "http://other/v1"})
	if cfg.BaseURL != "http://other/v1" {
		t.Errorf("flag should win, BaseURL = %q", cfg.BaseURL)
	}
}

func TestAuthLogin(t *testing.T) {
	isolate(t)

	if err := authLogin(strings.NewReader("\n"), ""); err == nil {
		t.Fatal("expected error for empty key without a stored one")
	}

	if err := authLogin(strings.NewReader("  sk-test-123456789 \n"), ""); err != nil {
		t.Fatalf("authLogin: %v", err)
	}
	if got := settings.GetAPIKey(settings.ProviderOpenAI); got != "sk-test-123456789" {
		t.Fatalf("stored key = %q", got)
	}

	// Empty input keeps the key and may update the endpoint.
	if err := authLogin(strings.NewReader("\n"), "http://localhost:8080/v1"); err != nil {
		t.Fatalf("authLogin keep: %v", err)
	}
	if settings.GetAPIKey(settings.ProviderOpenAI) != "sk-test-123456789" ||
		settings.GetBaseURL(settings.ProviderOpenAI) != "http://localhost:8080/v1" {
		t.Fatalf("credentials = %+v", settings.Get(settings.ProviderOpenAI))
	}

	if err := authLogin(strings.NewReader(""), ""); err == nil {
		t.Fatal("expected error when no input is received")
	}
}

const cliCatalog = `{
  "sourceLanguage" : "en",
  "strings" : {
    "Cancel" : {
      "comment" : "Button title"
    },
    "Done" : {
      "localizations" : {
        "de" : { "stringUnit" : { "state" : "translated", "value" : "Fertig" } }
      }
    }
  },
  "version" : "1.0"
}`

func writeCatalog(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "App", "Localizable.xcstrings")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(cliCatalog), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunTranslateDryRun(t *testing.T) {
	dir := isolate(t)
	path := writeCatalog(t, dir)

	if err := runTranslate(context.Background(), nil, translateArgs{dryRun: true, langs: "de,fr"}); err != nil {
		t.Fatalf("runTranslate: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != cliCatalog {
		t.Error("dry run modified the catalog")
	}
	if _, err := os.Stat(filepath.Join(dir, lockfile.LockFileName)); !os.IsNotExist(err) {
		t.Errorf("dry run wrote the lock file, stat err=%v", err)
	}
}

func TestRunTranslateNoValidate(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "App", "Localizable.xcstrings")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	// Decodes fine, but the string unit lacks the value the schema requires.
	data := `{"sourceLanguage":"en","strings":{"a":{"localizations":{"en":{"stringUnit":{"state":"translated"}}}}}}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	err := runTranslate(context.Background(), nil, translateArgs{dryRun: true, langs: "de"})
	if err == nil || !strings.Contains(err.Error(), "catalog") {
		t.Fatalf("runTranslate = %v, want catalog validation failure", err)
	}
	if err := runTranslate(context.Background(), nil, translateArgs{dryRun: true, langs: "de", noValidate: true}); err != nil {
		t.Fatalf("runTranslate with noValidate: %v", err)
	}
}

func TestRunTranslateRequiresAPIKey(t *testing.T) {
	dir := isolate(t)
	writeCatalog(t, dir)

	err := runTranslate(context.Background(), nil, translateArgs{langs: "de"})
	if err == nil || !strings.Contains(err.Error(), "API key") {
		t.Fatalf("runTranslate = %v, want missing API key error", err)
	}
}

func TestRunTranslateNoCatalogs(t *testing.T) {
	isolate(t)
	if err := runTranslate(context.Background(), nil, translateArgs{apiKey: "sk-test"}); err == nil {
		t.Fatal("expected error when no catalogs exist")
	}
}

func TestRunTranslateAgainstServer(t *testing.T) {
	dir := isolate(t)
	path := writeCatalog(t, dir)

	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		var q openai.ChatQuery
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			t.Errorf("decode: %v", err)
		}
		text := q.Messages[len(q.Messages)-1].Content
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": "DE:" + text},
				"finish_reason": "stop",
			}},
		})
	}))
	defer srv.Close()

	err := runTranslate(context.Background(), nil, translateArgs{
		apiKey:  "sk-test",
		baseURL: srv.URL,
		langs:   "de",
		retries: 1,
	})
	if err != nil {
		t.Fatalf("runTranslate: %v", err)
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("requests = %d, want 1 (Done is already translated)", n)
	}

	cat, err := catalog.Load(path, catalog.LoadOptions{})
	if err != nil {
		t.Fatal(err)
	}
	u := cat.EntryUnits("Cancel")[0]
	su, ok := cat.Translation("de", u)
	if !ok || su.Value != "DE:Cancel" || su.State != catalog.StateTranslated {
		t.Fatalf("Cancel/de = %+v, %v", su, ok)
	}

	lock, err := lockfile.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	target := lockfile.TargetKey("App/Localizable.xcstrings", "de")
	if !lock.Known(target, "Cancel") {
		t.Errorf("lock does not record Cancel: %s", lock.Summary())
	}

	// A second run has nothing left to do.
	if err := runTranslate(context.Background(), nil, translateArgs{apiKey: "sk-test", baseURL: srv.URL, langs: "de"}); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("requests after second run = %d, want 1", n)
	}
}

func TestRunTranslateReportsFailures(t *testing.T) {
	dir := isolate(t)
	path := writeCatalog(t, dir)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	err := runTranslate(context.Background(), nil, translateArgs{
		apiKey: "sk-test", baseURL: srv.URL, langs: "de", retries: 2,
	})
	if err == nil || !strings.Contains(err.Error(), "1 string") {
		t.Fatalf("runTranslate = %v, want one failed string", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != cliCatalog {
		t.Error("catalog changed although nothing was translated")
	}
}

func TestRunStatus(t *testing.T) {
	dir := isolate(t)
	writeCatalog(t, dir)
	if err := runStatus(nil, ""); err != nil {
		t.Fatalf("runStatus: %v", err)
	}
	if err := runStatus(nil, "xx"); err == nil {
		t.Fatal("expected error for unknown language")
	}
}

func TestResolveLogLevel(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, config.DotEnvFileName), []byte("XCTRANSLATE_LOG_LEVEL=debug\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := resolveLogLevel("info", false)
	if err != nil {
		t.Fatalf("resolveLogLevel: %v", err)
	}
	if got != "debug" {
		t.Errorf("level from .env = %q, want debug", got)
	}

	got, err = resolveLogLevel("warn", true)
	if err != nil {
		t.Fatalf("resolveLogLevel: %v", err)
	}
	if got != "warn" {
		t.Errorf("level with flag = %q, want warn", got)
	}
}
