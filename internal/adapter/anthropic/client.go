package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultMaxTokens caps the length of a completion.
const DefaultMaxTokens = 512

const systemPrompt = "You are a natural hazard analyst. You receive counts of active natural " +
	"events from NASA EONET grouped by category and region, or a single event's title and " +
	"category. Reply with a brief plain-text assessment of notable patterns and likely " +
	"impacts. Do not invent events or numbers that are not in the input."

// Client implements summarize.Summarizer using the Anthropic Messages API.
type Client struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// NewClient creates an Anthropic-backed summarizer. Extra request options
// (base URL, retries) are passed through to the SDK.
func NewClient(apiKey, model string, opts ...option.RequestOption) *Client {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Client{
		client:    sdk.NewClient(opts...),
		model:     model,
		maxTokens: DefaultMaxTokens,
	}
}

// Summarize sends payload as a single user message and returns the
// concatenated text blocks of the reply.
func (c *Client) Summarize(ctx context.Context, payload string) (string, error) {
	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []sdk.TextBlockParam{{Text: systemPrompt}},
		Messages:  []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(payload))},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic: create message: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type != "text" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(block.Text)
	}
	if b.Len() == 0 {
		return "", errors.New("anthropic: response contained no text")
	}
	return b.String(), nil
}
