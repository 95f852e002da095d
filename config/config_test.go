package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/minios-linux/xctranslate/langmeta"
	"github.com/minios-linux/xctranslate/openai"
)

// clearEnv unsets every variable Load reads, restoring them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"XCTRANSLATE_API_KEY", "XCTRANSLATE_MODEL", "XCTRANSLATE_BASE_URL",
		"XCTRANSLATE_TIMEOUT", "XCTRANSLATE_RETRIES", "XCTRANSLATE_PROXY",
		"XCTRANSLATE_LOG_LEVEL", "OPENAI_API_KEY",
	} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != openai.DefaultModel || cfg.Timeout != DefaultTimeout || cfg.Retries != DefaultRetries {
		t.Errorf("defaults = %q %s %d", cfg.Model, cfg.Timeout, cfg.Retries)
	}
	if !cfg.Lock || cfg.Verify {
		t.Errorf("Lock/Verify = %v/%v", cfg.Lock, cfg.Verify)
	}
	if cfg.DotEnv != "" {
		t.Errorf("DotEnv = %q, want empty", cfg.DotEnv)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadProjectFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectFileName), `
model: gpt-4o-mini
timeout: 30
retries: 5
languages: [de, pt_BR]
lock: false
verify: true
catalogs:
  - path: App/Localizable.xcstrings
  - path: Widget/Localizable.xcstrings
    languages: [ja]
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != openai.GPT4oMini || cfg.Timeout != 30*time.Second || cfg.Retries != 5 {
		t.Errorf("cfg = %q %s %d", cfg.Model, cfg.Timeout, cfg.Retries)
	}
	if want := []langmeta.Language{"de", "pt-BR"}; !reflect.DeepEqual(cfg.Languages, want) {
		t.Errorf("Languages = %v, want %v", cfg.Languages, want)
	}
	if cfg.Lock || !cfg.Verify {
		t.Errorf("Lock/Verify = %v/%v", cfg.Lock, cfg.Verify)
	}
	if len(cfg.Catalogs) != 2 {
		t.Fatalf("Catalogs = %v", cfg.Catalogs)
	}
	if !reflect.DeepEqual(cfg.Catalogs[0].Languages, []string{"de", "pt_BR"}) {
		t.Errorf("catalog did not inherit languages: %v", cfg.Catalogs[0].Languages)
	}
	if !reflect.DeepEqual(cfg.Catalogs[1].Languages, []string{"ja"}) {
		t.Errorf("catalog override lost: %v", cfg.Catalogs[1].Languages)
	}
}

func TestLoadProjectFileErrors(t *testing.T) {
	tests := map[string]string{
		"bad yaml":         "languages: [de",
		"unknown language": "languages: [xx]",
		"no path":          "catalogs:\n  - languages: [de]\n",
		"wrong extension":  "catalogs:\n  - path: App/Localizable.strings\n",
		"negative retries": "retries: -1\n",
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, ProjectFileName), content)
			if _, err := LoadProjectFile(dir); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadProjectFileMissing(t *testing.T) {
	pf, err := LoadProjectFile(t.TempDir())
	if err != nil || pf != nil {
		t.Fatalf("LoadProjectFile = %v, %v; want nil, nil", pf, err)
	}
	if !pf.LockEnabled() {
		t.Errorf("lock should default to enabled")
	}
}

func TestLoadEnvOverridesProjectFile(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ProjectFileName), "model: gpt-4\nretries: 2\n")
	t.Setenv("XCTRANSLATE_MODEL", "o3-mini")
	t.Setenv("XCTRANSLATE_TIMEOUT", "15")
	t.Setenv("XCTRANSLATE_BASE_URL", "http://localhost:8080/v1")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != openai.O3Mini || cfg.Timeout != 15*time.Second || cfg.Retries != 2 {
		t.Errorf("cfg = %q %s %d", cfg.Model, cfg.Timeout, cfg.Retries)
	}
	if cfg.BaseURL != "http://localhost:8080/v1" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
}

func TestLoadEnvLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("XCTRANSLATE_LOG_LEVEL", "debug")

	env, err := LoadEnv()
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if env.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", env.LogLevel)
	}
}

func TestLoadAPIKeySources(t *testing.T) {
	t.Run("openai fallback", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-openai")
		cfg, err := Load(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		if cfg.APIKey != "sk-openai" {
			t.Errorf("APIKey = %q", cfg.APIKey)
		}
	})

	t.Run("prefixed wins", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("OPENAI_API_KEY", "sk-openai")
		t.Setenv("XCTRANSLATE_API_KEY", "sk-xc")
		cfg, err := Load(t.TempDir())
		if err != nil {
			t.Fatal(err)
		}
		if cfg.APIKey != "sk-xc" {
			t.Errorf("APIKey = %q", cfg.APIKey)
		}
	})

	t.Run("dotenv does not override environment", func(t *testing.T) {
		clearEnv(t)
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, DotEnvFileName), "XCTRANSLATE_API_KEY=sk-dotenv\nXCTRANSLATE_RETRIES=7\n")
		t.Setenv("XCTRANSLATE_RETRIES", "4")

		cfg, err := Load(dir)
		if err != nil {
			t.Fatal(err)
		}
		if cfg.APIKey != "sk-dotenv" || cfg.Retries != 4 {
			t.Errorf("APIKey/Retries = %q/%d", cfg.APIKey, cfg.Retries)
		}
		if cfg.DotEnv != filepath.Join(dir, DotEnvFileName) {
			t.Errorf("DotEnv = %q", cfg.DotEnv)
		}
	})
}

func TestLoadEnvInvalid(t *testing.T) {
	clearEnv(t)
	t.Setenv("XCTRANSLATE_RETRIES", "many")
	if _, err := LoadEnv(); err == nil {
		t.Fatal("expected error for non-numeric retries")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"zero retries", func(c *Config) { c.Retries = 0 }, "retries"},
		{"short timeout", func(c *Config) { c.Timeout = 500 * time.Millisecond }, "timeout"},
		{"unknown model", func(c *Config) { c.Model = "llama3" }, "unsupported model"},
		{"custom endpoint model", func(c *Config) { c.Model = "llama3"; c.BaseURL = "http://localhost:11434/v1" }, ""},
		{"custom endpoint without model", func(c *Config) { c.Model = ""; c.BaseURL = "http://localhost:11434/v1" }, "model is required"},
		{"unknown language", func(c *Config) { c.Languages = []langmeta.Language{"fr", "xx"} }, "xx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults("/tmp")
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizesModel(t *testing.T) {
	cfg := Defaults("/tmp")
	cfg.Model = "GPT-4o-Mini"
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	if cfg.Model != openai.GPT4oMini {
		t.Errorf("Model = %q", cfg.Model)
	}
}

func TestTargets(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "App", "Localizable.xcstrings"), "{}")
	writeFile(t, filepath.Join(root, "Widget", "Localizable.xcstrings"), "{}")

	cfg := Defaults(root)
	cfg.Languages = []langmeta.Language{"de"}

	t.Run("scan", func(t *testing.T) {
		targets, err := cfg.Targets(nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(targets) != 2 || targets[0].Rel != "App/Localizable.xcstrings" || targets[1].Rel != "Widget/Localizable.xcstrings" {
			t.Fatalf("targets = %+v", targets)
		}
		if !reflect.DeepEqual(targets[0].Languages, []langmeta.Language{"de"}) {
			t.Errorf("Languages = %v", targets[0].Languages)
		}
	})

	t.Run("project file", func(t *testing.T) {
		c := *cfg
		c.Catalogs = []CatalogTarget{{Path: "Widget/Localizable.xcstrings", Languages: []string{"ja"}}}
		targets, err := c.Targets(nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(targets) != 1 || targets[0].Path != filepath.Join(root, "Widget", "Localizable.xcstrings") {
			t.Fatalf("targets = %+v", targets)
		}
		if !reflect.DeepEqual(targets[0].Languages, []langmeta.Language{"ja"}) {
			t.Errorf("Languages = %v", targets[0].Languages)
		}
	})

	t.Run("explicit paths and languages", func(t *testing.T) {
		path := filepath.Join(root, "App", "Localizable.xcstrings")
		targets, err := cfg.Targets([]string{path}, []langmeta.Language{"fr", "es"})
		if err != nil {
			t.Fatal(err)
		}
		if len(targets) != 1 || targets[0].Rel != "App/Localizable.xcstrings" {
			t.Fatalf("targets = %+v", targets)
		}
		if !reflect.DeepEqual(targets[0].Languages, []langmeta.Language{"fr", "es"}) {
			t.Errorf("Languages = %v", targets[0].Languages)
		}
	})
}
