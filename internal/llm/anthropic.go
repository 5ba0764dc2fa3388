// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// anthropicAPIURL is the Claude Messages API endpoint. Package-level var
// for test substitution.
var anthropicAPIURL = "https://api.anthropic.com/v1/messages"

// AnthropicClient calls the Claude Messages API.
type AnthropicClient struct {
	APIKey string
	Model  string
	Client *http.Client
}

// anthropicRequest is the request body for the Claude Messages API.
type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature,omitempty"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

// anthropicMessage is a single message in the conversation.
type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the response body from the Claude Messages API.
type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
}

// anthropicContent is a content block in the response.
type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends one messages request and returns the concatenated text blocks.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	req = fillDefaults(req)

	body := anthropicRequest{
		Model:       c.Model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		System:      req.System,
	}
	for _, m := range req.History {
		body.Messages = append(body.Messages, anthropicMessage{Role: m.Role, Content: m.Content})
	}
	body.Messages = append(body.Messages, anthropicMessage{Role: "user", Content: req.Prompt})

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, anthropicAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", &Error{Kind: KindTransportFailed, Provider: "anthropic", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &Error{
			Kind:     kindForStatus(resp.StatusCode),
			Provider: "anthropic",
			Err:      fmt.Errorf("API returned %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var aResp anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&aResp); err != nil {
		return "", &Error{Kind: KindTransportFailed, Provider: "anthropic", Err: fmt.Errorf("decoding response: %w", err)}
	}

	var b strings.Builder
	for _, block := range aResp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		return "", &Error{Kind: KindTransportFailed, Provider: "anthropic", Err: fmt.Errorf("no text content in response")}
	}
	return b.String(), nil
}
