package openai

import (
	"fmt"
	"strings"
)

// Model is a chat model identifier accepted by the chat completions API.
type Model string

const (
	GPT4o      Model = "gpt-4o"
	GPT4oMini  Model = "gpt-4o-mini"
	GPT4Turbo  Model = "gpt-4-turbo"
	GPT4       Model = "gpt-4"
	GPT35Turbo Model = "gpt-3.5-turbo"
	O1Mini     Model = "o1-mini"
	O3Mini     Model = "o3-mini"
)

// DefaultModel is used when no model is configured.
const DefaultModel = GPT4o

// SupportedModels lists the models the translator is known to work with,
// in the order shown by `xctranslate models`.
func SupportedModels() []Model {
	return []Model{GPT4o, GPT4oMini, GPT4Turbo, GPT4, GPT35Turbo, O1Mini, O3Mini}
}

// ParseModel resolves a model name (case-insensitive) against SupportedModels.
func ParseModel(name string) (Model, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return DefaultModel, nil
	}
	for _, m := range SupportedModels() {
		if string(m) == normalized {
			return m, nil
		}
	}
	return "", fmt.Errorf("unsupported model %q (supported: %s)", name, joinModels(SupportedModels()))
}

func joinModels(models []Model) string {
	names := make([]string, len(models))
	for i, m := range models {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
