package capability

import (
	"context"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/pkg/errors"
)

const defaultMaxTokens = 8192

// AnthropicClient calls the Anthropic Messages API. Credentials come from the
// environment (ANTHROPIC_API_KEY) via the SDK's default option chain.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicClient builds a client for the given model id.
func NewAnthropicClient(model string) *AnthropicClient {
	return &AnthropicClient{
		client:    anthropic.NewClient(),
		model:     model,
		maxTokens: defaultMaxTokens,
	}
}

func (c *AnthropicClient) Model() string { return c.model }

// Invoke sends a single user message, optionally under a system prompt, and
// concatenates the text blocks of the reply.
func (c *AnthropicClient) Invoke(ctx context.Context, systemContext, prompt string) (*Invocation, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if systemContext != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemContext}}
	}

	started := time.Now()
	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, errors.Wrap(ErrTimeout, err.Error())
		}
		return nil, errors.Wrap(err, "anthropic message call failed")
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyResponse
	}

	return &Invocation{
		Text: text,
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
		Model:    c.model,
		Duration: time.Since(started),
	}, nil
}
