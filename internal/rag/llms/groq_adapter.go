package llms

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/meguminnnnnnnnn/go-openai"

	"medibot/internal/llm"
	"medibot/internal/rag/interfaces"
	"medibot/internal/rag/schema"
)

// GroqAdapter adapts the Groq chat client to the generic LLM interface.
// It converts the structured prompt into chat messages and normalizes the
// raw model reply into a schema.Output, so the answer extractor never has to
// inspect the wire shape itself.
type GroqAdapter struct {
	client *llm.Groq
}

// NewGroqAdapter creates a new adapter.
func NewGroqAdapter(client *llm.Groq) *GroqAdapter {
	return &GroqAdapter{client: client}
}

// Generate sends the prompt to the model and returns its normalized output.
func (a *GroqAdapter) Generate(ctx context.Context, prompt schema.Prompt) (*schema.Output, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(prompt))
	for _, msg := range prompt {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    string(msg.Role),
			Content: msg.Content,
		})
	}

	raw, err := a.client.ChatCompletion(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("groq client failed to generate content: %w", err)
	}

	return Normalize(raw), nil
}

// Normalize converts a raw model reply into the tagged Output variant.
// A reply that is a JSON object becomes Fields with stringified values;
// anything else is carried as plain text.
func Normalize(raw string) *schema.Output {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "{") {
		var obj map[string]interface{}
		if err := json.Unmarshal([]byte(trimmed), &obj); err == nil {
			fields := make(map[string]string, len(obj))
			for k, v := range obj {
				switch val := v.(type) {
				case string:
					fields[k] = val
				case nil:
					fields[k] = ""
				default:
					fields[k] = fmt.Sprintf("%v", val)
				}
			}
			return &schema.Output{Fields: fields}
		}
	}
	return &schema.Output{Text: raw}
}

// compile-time check to ensure GroqAdapter implements the LLM interface
var _ interfaces.LLM = (*GroqAdapter)(nil)
