package translate

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/minios-linux/xctranslate/langmeta"
	"github.com/minios-linux/xctranslate/openai"
)

// DefaultRetries is the attempt bound used when Config.Retries is unset.
const DefaultRetries = 3

// ChatClient sends chat completion requests. *openai.Client implements it.
type ChatClient interface {
	Chats(ctx context.Context, query openai.ChatQuery) (*openai.ChatResult, error)
}

// Config configures an OpenAITranslator.
type Config struct {
	// Token is the OpenAI API key.
	Token string
	// Model is the chat model identifier.
	Model openai.Model
	// Timeout bounds each request. A timeout consumes one attempt.
	Timeout time.Duration
	// Retries is the maximum number of attempts per string (minimum 1).
	Retries int
	// BaseURL overrides the API endpoint (OpenAI-compatible servers).
	BaseURL string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
}

// Option customizes an OpenAITranslator.
type Option func(*OpenAITranslator)

// WithLogger sets the logger used for per-attempt diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *OpenAITranslator) {
		t.logger = logger
	}
}

// OpenAITranslator is a Service backed by a chat completions model.
// It holds no per-call state and may be shared between goroutines.
type OpenAITranslator struct {
	client  ChatClient
	model   openai.Model
	retries int
	logger  zerolog.Logger
}

// NewOpenAITranslator builds a translator talking to the OpenAI API.
func NewOpenAITranslator(cfg Config, opts ...Option) *OpenAITranslator {
	client := openai.NewClient(openai.Config{
		Token:   cfg.Token,
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Proxy:   cfg.Proxy,
	})
	return NewOpenAITranslatorWithClient(client, cfg.Model, cfg.Retries, opts...)
}

// NewOpenAITranslatorWithClient builds a translator on top of an existing
// chat client. retries below 1 are treated as 1.
func NewOpenAITranslatorWithClient(client ChatClient, model openai.Model, retries int, opts ...Option) *OpenAITranslator {
	if model == "" {
		model = openai.DefaultModel
	}
	if retries < 1 {
		retries = 1
	}
	t := &OpenAITranslator{
		client:  client,
		model:   model,
		retries: retries,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Model returns the model identifier requests are sent with.
func (t *OpenAITranslator) Model() openai.Model {
	return t.model
}

// Retries returns the attempt bound.
func (t *OpenAITranslator) Retries() int {
	return t.retries
}

// Translate implements Service.
//
// At least one request is always sent. Every failed attempt, whether the
// client failed or the reply had no content, is retried immediately with
// the identical request until the attempt bound is reached. Only the last
// failure is returned.
func (t *OpenAITranslator) Translate(ctx context.Context, text string, target langmeta.Language, comment string) (string, error) {
	if text == "" {
		return "", nil
	}

	query := chatQuery(t.model, text, target, comment)

	var lastErr error
	attempt := 0
	for {
		attempt++
		result, err := t.client.Chats(ctx, query)
		if err != nil {
			lastErr = &BackendError{Attempt: attempt, Err: err}
		} else if content := firstContent(result); content == "" {
			lastErr = ErrNoTranslationReturned
		} else {
			t.logger.Debug().
				Str("lang", string(target)).
				Int("attempt", attempt).
				Str("text", preview(text, 40)).
				Msg("translated")
			return content, nil
		}

		t.logger.Warn().
			Err(lastErr).
			Str("lang", string(target)).
			Int("attempt", attempt).
			Int("retries", t.retries).
			Str("text", preview(text, 40)).
			Msg("translation attempt failed")

		if attempt >= t.retries {
			break
		}
	}

	if lastErr == nil {
		return "", ErrUnknown
	}
	return "", lastErr
}

func firstContent(result *openai.ChatResult) string {
	if result == nil || len(result.Choices) == 0 {
		return ""
	}
	return result.Choices[0].Message.Content
}

// preview shortens text for log output, folding newlines.
func preview(text string, maxLen int) string {
	s := strings.ReplaceAll(text, "\n", " ")
	if r := []rune(s); len(r) > maxLen {
		return string(r[:maxLen]) + "..."
	}
	return s
}
