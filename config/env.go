package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable read by Env.
const EnvPrefix = "XCTRANSLATE"

// DotEnvFileName is loaded from the project root when present.
const DotEnvFileName = ".env"

// Env holds settings read from XCTRANSLATE_* environment variables.
// Zero values mean "not set".
type Env struct {
	APIKey   string `split_words:"true"`
	Model    string
	BaseURL  string `split_words:"true"`
	Timeout  int    // seconds
	Retries  int
	Proxy    string
	LogLevel string `split_words:"true"`
}

type openAIEnv struct {
	APIKey string `envconfig:"OPENAI_API_KEY"`
}

// LoadDotEnv loads rootDir/.env into the process environment. Variables
// that are already set keep their value. A missing file is not an error.
func LoadDotEnv(rootDir string) (string, error) {
	path := filepath.Join(rootDir, DotEnvFileName)
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("loading %s: %w", path, err)
	}
	return path, nil
}

// LoadEnv reads XCTRANSLATE_* variables. OPENAI_API_KEY is used when
// XCTRANSLATE_API_KEY is not set.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if env.APIKey == "" {
		var oa openAIEnv
		if err := envconfig.Process("", &oa); err != nil {
			return nil, fmt.Errorf("reading environment: %w", err)
		}
		env.APIKey = oa.APIKey
	}
	return &env, nil
}
