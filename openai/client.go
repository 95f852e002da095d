// Package openai is a small client for the OpenAI chat completions API,
// covering what the catalog translator needs: role-tagged messages, penalty
// parameters and the response format selector.
package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultBaseURL is the public OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// MinPenalty is the most negative value the API accepts for
// frequency_penalty and presence_penalty.
const MinPenalty = -2.0

// Role tags a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatMessage is one role-tagged message segment.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat selects plain text or structured output.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ResponseFormatText requests plain text output.
var ResponseFormatText = &ResponseFormat{Type: "text"}

// ChatQuery is the request body of POST /chat/completions.
type ChatQuery struct {
	Model            Model           `json:"model"`
	Messages         []ChatMessage   `json:"messages"`
	FrequencyPenalty float64         `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64         `json:"presence_penalty,omitempty"`
	ResponseFormat   *ResponseFormat `json:"response_format,omitempty"`
}

// ChatChoice is one completion candidate.
type ChatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResult is the response body of POST /chat/completions.
// A null message content decodes as "".
type ChatResult struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []ChatChoice `json:"choices"`
	Usage   Usage        `json:"usage"`
}

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Message    string
	Type       string
	Code       string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("openai: status %d", e.StatusCode)
	}
	return fmt.Sprintf("openai: status %d: %s", e.StatusCode, e.Message)
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    any    `json:"code"`
	} `json:"error"`
}

// Config configures a Client.
type Config struct {
	// Token is the API key sent as a bearer token.
	Token string
	// BaseURL defaults to DefaultBaseURL.
	BaseURL string
	// Timeout bounds each request.
	Timeout time.Duration
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
}

// Client talks to a chat completions endpoint. It is safe for reuse across
// sequential and concurrent calls. It never retries on its own.
type Client struct {
	http *resty.Client
}

// NewClient builds a client from cfg.
func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/chat/completions")

	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(0)
	if cfg.Timeout > 0 {
		c.SetTimeout(cfg.Timeout)
	}
	if cfg.Token != "" {
		c.SetAuthToken(cfg.Token)
	}
	if cfg.Proxy != "" {
		c.SetProxy(cfg.Proxy)
	}
	return &Client{http: c}
}

// Chats sends one chat completion request.
func (c *Client) Chats(ctx context.Context, query ChatQuery) (*ChatResult, error) {
	var result ChatResult
	var apiErr errorResponse

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(query).
		SetResult(&result).
		SetError(&apiErr).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("send chat request: %w", err)
	}
	if resp.IsError() {
		e := &APIError{
			StatusCode: resp.StatusCode(),
			Message:    strings.TrimSpace(apiErr.Error.Message),
			Type:       apiErr.Error.Type,
		}
		if apiErr.Error.Code != nil {
			e.Code = fmt.Sprint(apiErr.Error.Code)
		}
		if e.Message == "" {
			e.Message = truncate(strings.TrimSpace(resp.String()), 500)
		}
		return nil, e
	}
	return &result, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
