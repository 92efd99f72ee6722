package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"medibot/internal/rag/interfaces"
	"medibot/internal/rag/schema"
	"medibot/pkg/logger"
)

// systemTemplate is the fixed grounding instruction. Retrieved passages are
// interpolated where %s appears, in rank order.
const systemTemplate = `You are a medical assistant for question-answering tasks. ` +
	`Use only the following pieces of retrieved context to answer the question. ` +
	`If the answer is not contained in the context, say that you don't know. ` +
	`Keep the answer concise.

Context:
%s`

// TokenCounter reports the number of model tokens in a piece of text.
type TokenCounter func(text string) int

// NewTiktokenCounter returns a TokenCounter backed by the cl100k_base encoding.
func NewTiktokenCounter() (TokenCounter, error) {
	tke, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, fmt.Errorf("failed to get tiktoken encoding: %w", err)
	}
	return func(text string) int {
		return len(tke.Encode(text, nil, nil))
	}, nil
}

// QAPipeline generates an answer for a query from the retrieved documents:
// it assembles the prompt, calls the LLM and extracts the final answer.
type QAPipeline struct {
	llm          interfaces.LLM
	countTokens  TokenCounter
	contextLimit int
	timeout      time.Duration
	log          *logger.Logger
}

// NewQAPipeline creates a new QAPipeline. contextLimit is the token budget
// for the retrieved context inside the prompt; passages past the budget are
// dropped lowest-ranked first. timeout bounds the generation call.
func NewQAPipeline(
	llm interfaces.LLM,
	countTokens TokenCounter,
	contextLimit int,
	timeout time.Duration,
	log *logger.Logger,
) *QAPipeline {
	return &QAPipeline{
		llm:          llm,
		countTokens:  countTokens,
		contextLimit: contextLimit,
		timeout:      timeout,
		log:          log,
	}
}

// Run builds a prompt from the query and documents, calls the LLM and returns
// the extracted answer. The answer is never empty: when the model produces
// nothing usable, the query is echoed back in a fallback phrase instead.
func (p *QAPipeline) Run(ctx context.Context, query string, documents []*schema.Document) (string, error) {
	p.log.Info(fmt.Sprintf("Building prompt for query with %d documents", len(documents)))
	prompt := p.buildPrompt(query, documents)

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.log.Info("Sending prompt to LLM to generate answer...")
	output, err := p.llm.Generate(ctx, prompt)
	if err != nil {
		p.log.Error(fmt.Sprintf("LLM failed to generate answer: %v", err))
		return "", &GenerationError{Err: err}
	}

	answer := ExtractAnswer(output, query)
	p.log.Info("Successfully generated answer from LLM.")
	return answer, nil
}

// buildPrompt constructs the two-turn prompt: a system turn carrying the
// grounding instruction with the retrieved context interpolated, and a user
// turn carrying the query. Passages are added in rank order until the token
// budget is exhausted; the remainder is dropped.
func (p *QAPipeline) buildPrompt(query string, documents []*schema.Document) schema.Prompt {
	var sb strings.Builder
	used := 0
	kept := 0

	for i, doc := range documents {
		block := fmt.Sprintf("---\nContext %d:\n%s\n", i+1, doc.Text)
		cost := p.countTokens(block)
		if p.contextLimit > 0 && used+cost > p.contextLimit {
			p.log.Warn(fmt.Sprintf("Context budget exhausted, dropping %d of %d passages", len(documents)-kept, len(documents)))
			break
		}
		sb.WriteString(block)
		used += cost
		kept++
	}

	return schema.Prompt{
		{Role: schema.RoleSystem, Content: fmt.Sprintf(systemTemplate, sb.String())},
		{Role: schema.RoleUser, Content: query},
	}
}

// ExtractAnswer normalizes a generation output into the final answer string.
// Structured outputs are probed in fixed priority order: answer, then
// response, then output; the first present non-empty value wins. A plain
// output is used as-is. If nothing usable remains, a fallback echoing the
// original query is substituted so the caller never receives an empty answer.
func ExtractAnswer(output *schema.Output, query string) string {
	var answer string
	if output != nil {
		if output.Fields != nil {
			for _, key := range []string{"answer", "response", "output"} {
				if v := output.Fields[key]; v != "" {
					answer = v
					break
				}
			}
		} else {
			answer = output.Text
		}
	}

	if answer == "" {
		return fmt.Sprintf("(No answer generated) You asked: %s", query)
	}
	return answer
}
