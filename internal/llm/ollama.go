// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultOllamaURL = "http://localhost:11434"

// OllamaClient calls a local Ollama server's chat endpoint. No credentials
// are required, so auth failures cannot occur on this backend.
type OllamaClient struct {
	Model   string
	BaseURL string
	Client  *http.Client
}

type ollamaRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  ollamaOptions   `json:"options"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Message ollamaMessage `json:"message"`
}

// Complete sends one non-streaming chat request.
func (c *OllamaClient) Complete(ctx context.Context, req Request) (string, error) {
	req = fillDefaults(req)

	base := c.BaseURL
	if base == "" {
		base = defaultOllamaURL
	}

	body := ollamaRequest{
		Model:   c.Model,
		Stream:  false,
		Options: ollamaOptions{Temperature: req.Temperature, NumPredict: req.MaxTokens},
	}
	if req.System != "" {
		body.Messages = append(body.Messages, ollamaMessage{Role: "system", Content: req.System})
	}
	for _, m := range req.History {
		body.Messages = append(body.Messages, ollamaMessage{Role: m.Role, Content: m.Content})
	}
	body.Messages = append(body.Messages, ollamaMessage{Role: "user", Content: req.Prompt})

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/api/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return "", &Error{Kind: KindTransportFailed, Provider: "ollama", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", &Error{
			Kind:     KindUnavailable,
			Provider: "ollama",
			Err:      fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody)),
		}
	}

	var oResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&oResp); err != nil {
		return "", &Error{Kind: KindTransportFailed, Provider: "ollama", Err: fmt.Errorf("decoding response: %w", err)}
	}
	if oResp.Message.Content == "" {
		return "", &Error{Kind: KindTransportFailed, Provider: "ollama", Err: fmt.Errorf("empty response message")}
	}
	return oResp.Message.Content, nil
}
