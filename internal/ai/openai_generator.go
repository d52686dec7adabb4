package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"casedesk/internal/model"
)

type OpenAIConfig struct {
	BaseURL      string
	APIKey       string
	Model        string
	SystemPrompt string
	// AssistantSender is the chat sender whose messages map to the
	// assistant role.
	AssistantSender string
}

// OpenAIGenerator talks to any OpenAI-compatible chat completions endpoint.
type OpenAIGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
}

func NewOpenAIGenerator(cfg OpenAIConfig) (*OpenAIGenerator, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, errors.New("llm model is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.BaseURL = strings.TrimRight(base, "/")
	}
	if cfg.AssistantSender == "" {
		cfg.AssistantSender = "AI"
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, history []model.ChatMessage) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:    g.cfg.Model,
		Messages: g.buildMessages(history),
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (g *OpenAIGenerator) buildMessages(history []model.ChatMessage) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	if prompt := strings.TrimSpace(g.cfg.SystemPrompt); prompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: prompt,
		})
	}
	for _, m := range history {
		if strings.EqualFold(m.Sender, g.cfg.AssistantSender) {
			messages = append(messages, openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: m.Content,
			})
			continue
		}
		content := m.Content
		if !strings.EqualFold(m.Sender, "User") {
			content = fmt.Sprintf("[%s] %s", m.Sender, m.Content)
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: content,
		})
	}
	return messages
}
