package llm

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// Groq is a chat-completion client for the Groq API, which speaks the
// OpenAI-compatible protocol. The same client works against any endpoint
// implementing that protocol by changing the base URL.
type Groq struct {
	client *openai.Client
	model  string
}

// NewGroq creates a Groq client for the given model. baseURL overrides the
// OpenAI default endpoint; pass the Groq endpoint in production.
func NewGroq(apiKey, baseURL, model string) *Groq {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Groq{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// ChatCompletion sends the messages to the model and returns the content of
// the first choice. A single failed call is returned as-is; no retry.
func (g *Groq) ChatCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    g.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
