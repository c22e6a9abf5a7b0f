package discord

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/girlyearning/nyx/internal/session"
)

// AIClient wraps the OpenAI chat API. Persona settings (system prompt,
// temperature) vary per call, so they travel in the Prompt rather than
// on the client.
type AIClient struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// Prompt carries the persona settings for one completion call.
type Prompt struct {
	System      string
	Temperature float32
	MaxTokens   int // 0 means the client default
	History     []session.Turn
	Message     string // final user message, appended after History
}

// NewAIClient creates an OpenAI-backed client, or nil when no API key
// is configured. Callers treat a nil client as "AI unavailable" and
// fall back to canned behavior.
func NewAIClient(apiKey, model string, maxTokens int) *AIClient {
	if apiKey == "" {
		return nil
	}
	return &AIClient{
		client:    openai.NewClient(apiKey),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Generate runs one chat completion and returns the trimmed reply text.
func (a *AIClient) Generate(ctx context.Context, p Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(p.History)+2)
	if p.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: p.System,
		})
	}
	for _, turn := range p.History {
		role := openai.ChatMessageRoleUser
		if turn.Role == session.RoleBot {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Text,
		})
	}
	if p.Message != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleUser,
			Content: p.Message,
		})
	}

	maxTokens := p.MaxTokens
	if maxTokens == 0 {
		maxTokens = a.maxTokens
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: p.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("ChatCompletion error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
