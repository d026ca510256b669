// Package bedrock invokes Anthropic models hosted on Amazon Bedrock through
// the InvokeModel messages API.
package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"rag-chatbot/internal/domain"
)

const (
	DefaultModelID   = "anthropic.claude-3-sonnet-20240229-v1:0"
	anthropicVersion = "bedrock-2023-05-31"
)

// bedrockAPI is the minimal Bedrock Runtime interface required by Client.
type bedrockAPI interface {
	InvokeModel(ctx context.Context, in *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

type messagesRequest struct {
	AnthropicVersion string               `json:"anthropic_version"`
	MaxTokens        int                  `json:"max_tokens"`
	Messages         []domain.ChatMessage `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Client generates completions for a single-prompt conversation.
type Client struct {
	api       bedrockAPI
	modelID   string
	maxTokens int
}

// New creates a Client. An empty modelID selects DefaultModelID.
func New(api bedrockAPI, modelID string, maxTokens int) (*Client, error) {
	if api == nil {
		return nil, errors.New("bedrock: api must not be nil")
	}
	if maxTokens <= 0 {
		return nil, errors.New("bedrock: max tokens must be positive")
	}
	modelID = strings.TrimSpace(modelID)
	if modelID == "" {
		modelID = DefaultModelID
	}
	return &Client{api: api, modelID: modelID, maxTokens: maxTokens}, nil
}

// Generate sends prompt as the only user message and returns the first text
// block of the completion.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        c.maxTokens,
		Messages:         []domain.ChatMessage{{Role: domain.RoleUser, Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("bedrock: marshal request: %w", err)
	}

	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
		Body:        body,
	})
	if err != nil {
		return "", fmt.Errorf("bedrock: invoke model %s: %w", c.modelID, err)
	}
	if out == nil {
		return "", errors.New("bedrock: empty invoke output")
	}

	var payload messagesResponse
	if err := json.Unmarshal(out.Body, &payload); err != nil {
		return "", fmt.Errorf("bedrock: decode response: %w", err)
	}
	if len(payload.Content) == 0 {
		return "", errors.New("bedrock: no content in response")
	}
	return payload.Content[0].Text, nil
}
