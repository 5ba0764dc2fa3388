// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm provides the text-generation capability consumed by agent
// stages: a single Client contract, a typed failure taxonomy, bounded
// retry with backoff, and backends for Anthropic, OpenAI, and Ollama.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

// Message is one prior turn in a generation conversation.
type Message struct {
	// Role is "user" or "assistant".
	Role string

	// Content is the turn's text.
	Content string
}

// Request carries one generation call: a role-specific system instruction,
// optional prior turns, and the prompt itself.
type Request struct {
	System      string
	History     []Message
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Client generates text for a prompt and history. Implementations own the
// timeout and retry policy; callers treat a returned error as fatal.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// ErrorKind classifies a generation failure.
type ErrorKind string

const (
	// KindUnavailable covers rate limits and provider-side outages
	// (HTTP 429, 5xx). Retryable.
	KindUnavailable ErrorKind = "unavailable"

	// KindAuthFailed covers rejected credentials (HTTP 401, 403).
	// Never retried.
	KindAuthFailed ErrorKind = "auth_failed"

	// KindTransportFailed covers network errors and undecodable
	// responses. Retryable.
	KindTransportFailed ErrorKind = "transport_failed"
)

// Error is the typed failure surfaced by every backend.
type Error struct {
	Kind     ErrorKind
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: generation %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the failure kind of err, or "" when err is not a
// generation failure.
func KindOf(err error) ErrorKind {
	var ge *Error
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return ""
}

// kindForStatus maps an HTTP status code to a failure kind.
func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return KindAuthFailed
	default:
		return KindUnavailable
	}
}

const (
	defaultMaxTokens   = 2000
	defaultTemperature = 0.7
	defaultTimeout     = 120 * time.Second
)

// New builds a Client from configuration, wrapped with the retry policy.
// Unknown providers are a configuration error.
func New(cfg types.LLMConfig) (Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("llm: model is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := &http.Client{Timeout: timeout}

	var backend Client
	switch cfg.Provider {
	case types.ProviderAnthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("llm: anthropic api key is required")
		}
		backend = &AnthropicClient{APIKey: cfg.APIKey, Model: cfg.Model, Client: httpClient}
	case types.ProviderOpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("llm: openai api key is required")
		}
		backend = &OpenAIClient{APIKey: cfg.APIKey, Model: cfg.Model, BaseURL: cfg.BaseURL}
	case types.ProviderOllama:
		backend = &OllamaClient{Model: cfg.Model, BaseURL: cfg.BaseURL, Client: httpClient}
	default:
		return nil, fmt.Errorf("llm: unsupported provider %q", cfg.Provider)
	}

	return &Retrying{Backend: backend, MaxRetries: cfg.MaxRetries}, nil
}

// fillDefaults applies request defaults shared by all backends.
func fillDefaults(req Request) Request {
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}
	if req.Temperature <= 0 {
		req.Temperature = defaultTemperature
	}
	return req
}
