package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/comigor/tenant-console/internal/config"
	"github.com/comigor/tenant-console/internal/logger"
	"github.com/sashabaranov/go-openai"
)

const defaultSystemPrompt = "You author business rules for a multi-tenant identity platform. " +
	"Reply only with a JSON object of the form {\"name\": string, \"description\": string}. " +
	"The name is a short CamelCase identifier; the description states the rule in one sentence."

// LLMClient is the minimal subset of openai.Client used by OpenAICreator.
type LLMClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// NewClient creates a new OpenAI client
func NewClient(cfg config.LLMConfig) *openai.Client {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	return openai.NewClientWithConfig(config)
}

// OpenAICreator authors rules with a chat-completion model instead of the REST endpoint.
type OpenAICreator struct {
	client       LLMClient
	model        string
	systemPrompt string
}

func NewOpenAICreator(client LLMClient, cfg config.LLMConfig) *OpenAICreator {
	prompt := cfg.SystemPrompt
	if prompt == "" {
		prompt = defaultSystemPrompt
	}
	return &OpenAICreator{client: client, model: cfg.Model, systemPrompt: prompt}
}

func (c *OpenAICreator) Create(ctx context.Context, r Request) (Reply, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Tenant %s: %s", r.TenantID, r.Prompt)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	})
	if err != nil {
		return Reply{}, err
	}
	if len(resp.Choices) == 0 {
		return Reply{}, errors.New("model returned no choices")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	logger.L.Debug("rule model responded", "model", c.model, "content", content)

	reply, err := decodeReply([]byte(content))
	if err != nil {
		return Reply{}, fmt.Errorf("decode model output: %w", err)
	}
	// the model answers with the rule itself rather than the endpoint envelope
	if reply.Data == nil {
		var data RuleData
		if err := json.Unmarshal([]byte(content), &data); err != nil {
			return Reply{}, fmt.Errorf("decode model output: %w", err)
		}
		reply.Data = &data
	}
	return reply, nil
}
