// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-pipeline/pkg/types"
)

// stubAnthropic redirects the Anthropic endpoint to a local test server.
func stubAnthropic(t *testing.T, handler http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(handler)
	old := anthropicAPIURL
	anthropicAPIURL = srv.URL
	t.Cleanup(func() {
		anthropicAPIURL = old
		srv.Close()
	})
}

func TestAnthropicComplete(t *testing.T) {
	var captured anthropicRequest
	var headers http.Header

	stubAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		json.NewEncoder(w).Encode(anthropicResponse{Content: []anthropicContent{
			{Type: "text", Text: "first block "},
			{Type: "thinking", Text: "ignored"},
			{Type: "text", Text: "second block"},
		}})
	})

	client := &AnthropicClient{APIKey: "sk-test", Model: "claude-sonnet-4-5"}
	text, err := client.Complete(context.Background(), Request{
		System:  "system instruction",
		History: []Message{{Role: "assistant", Content: "prior draft"}},
		Prompt:  "revise it",
	})
	require.NoError(t, err)
	assert.Equal(t, "first block second block", text, "text blocks concatenated, others skipped")

	assert.Equal(t, "sk-test", headers.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", headers.Get("anthropic-version"))

	assert.Equal(t, "claude-sonnet-4-5", captured.Model)
	assert.Equal(t, "system instruction", captured.System)
	assert.Equal(t, defaultMaxTokens, captured.MaxTokens, "defaults applied to an empty request")
	require.Len(t, captured.Messages, 2)
	assert.Equal(t, anthropicMessage{Role: "assistant", Content: "prior draft"}, captured.Messages[0])
	assert.Equal(t, anthropicMessage{Role: "user", Content: "revise it"}, captured.Messages[1])
}

func TestAnthropicErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		wantKind ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, KindAuthFailed},
		{"forbidden", http.StatusForbidden, KindAuthFailed},
		{"rate limited", http.StatusTooManyRequests, KindUnavailable},
		{"server error", http.StatusInternalServerError, KindUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stubAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			})

			client := &AnthropicClient{APIKey: "sk-test", Model: "claude-sonnet-4-5"}
			_, err := client.Complete(context.Background(), Request{Prompt: "hi"})
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, KindOf(err))
		})
	}
}

func TestAnthropicMalformedResponse(t *testing.T) {
	stubAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	})

	client := &AnthropicClient{APIKey: "sk-test", Model: "claude-sonnet-4-5"}
	_, err := client.Complete(context.Background(), Request{Prompt: "hi"})
	require.Error(t, err)
	assert.Equal(t, KindTransportFailed, KindOf(err))
}

func TestAnthropicEmptyContent(t *testing.T) {
	stubAnthropic(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(anthropicResponse{})
	})

	client := &AnthropicClient{APIKey: "sk-test", Model: "claude-sonnet-4-5"}
	_, err := client.Complete(context.Background(), Request{Prompt: "hi"})
	require.Error(t, err)
	assert.Equal(t, KindTransportFailed, KindOf(err))
}

func TestNewClientValidation(t *testing.T) {
	_, err := New(types.LLMConfig{Provider: types.ProviderAnthropic, Model: "claude-sonnet-4-5"})
	assert.Error(t, err, "anthropic requires an api key")

	_, err = New(types.LLMConfig{Provider: types.ProviderOpenAI, Model: "gpt-4o"})
	assert.Error(t, err, "openai requires an api key")

	_, err = New(types.LLMConfig{Provider: types.ProviderAnthropic, APIKey: "sk-test"})
	assert.Error(t, err, "model is required")

	_, err = New(types.LLMConfig{Provider: "teleporter", APIKey: "sk-test", Model: "model"})
	assert.Error(t, err, "unknown provider rejected")

	c, err := New(types.LLMConfig{Provider: types.ProviderOllama, Model: "llama3.1"})
	require.NoError(t, err, "ollama needs no api key")
	assert.IsType(t, &Retrying{}, c, "backends come wrapped in the retry policy")
}
