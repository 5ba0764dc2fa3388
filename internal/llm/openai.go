// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient calls the OpenAI chat completions API through the official SDK.
type OpenAIClient struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Complete sends one chat completion request.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	req = fillDefaults(req)

	opts := []option.RequestOption{option.WithAPIKey(c.APIKey)}
	if c.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(c.BaseURL))
	}
	client := openai.NewClient(opts...)

	var msgs []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		msgs = append(msgs, openai.SystemMessage(req.System))
	}
	for _, m := range req.History {
		switch m.Role {
		case "assistant":
			msgs = append(msgs, openai.ChatCompletionMessageParamOfAssistant(m.Content))
		default:
			msgs = append(msgs, openai.UserMessage(m.Content))
		}
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	resp, err := client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(c.Model),
		Messages:            msgs,
		MaxCompletionTokens: openai.Int(int64(req.MaxTokens)),
		Temperature:         openai.Float(req.Temperature),
	})
	if err != nil {
		return "", c.classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindTransportFailed, Provider: "openai", Err: fmt.Errorf("empty choices")}
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps SDK errors onto the shared failure taxonomy.
func (c *OpenAIClient) classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return &Error{Kind: kindForStatus(apiErr.StatusCode), Provider: "openai", Err: err}
	}
	return &Error{Kind: KindTransportFailed, Provider: "openai", Err: err}
}
