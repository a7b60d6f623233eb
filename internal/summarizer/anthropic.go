package summarizer

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/ryosukesatoh/newsletter-digest/internal/extractor"
)

// AnthropicSummarizer uses the Anthropic Messages API to cluster and
// summarize newsletter items into the configured categories.
type AnthropicSummarizer struct {
	client         *anthropic.Client
	model          string
	maxTokens      int
	temperature    float64
	categories     []string
	maxPerCategory int
}

func NewAnthropicSummarizer(apiKey, model string, maxTokens int, temperature float64, categories []string, maxPerCategory int) *AnthropicSummarizer {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicSummarizer{
		client:         &client,
		model:          model,
		maxTokens:      maxTokens,
		temperature:    temperature,
		categories:     categories,
		maxPerCategory: maxPerCategory,
	}
}

func (s *AnthropicSummarizer) Summarize(ctx context.Context, items []extractor.Item) (*Digest, error) {
	if len(items) == 0 {
		return emptyDigest(s.categories), nil
	}

	prompt := buildPrompt(formatItems(items), s.categories, s.maxPerCategory)

	resp, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(s.model),
		MaxTokens:   int64(s.maxTokens),
		Temperature: anthropic.Float(s.temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("summarizer: anthropic API error: %w", err)
	}
	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("summarizer: empty reply from anthropic")
	}

	return parseReply(resp.Content[0].Text, s.categories)
}
