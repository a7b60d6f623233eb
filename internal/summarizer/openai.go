package summarizer

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/ryosukesatoh/newsletter-digest/internal/extractor"
)

// OpenAISummarizer is the OpenAI-backed alternative; it shares the prompt
// and reply parsing with the Anthropic backend.
type OpenAISummarizer struct {
	client         *openai.Client
	model          string
	maxTokens      int
	temperature    float64
	categories     []string
	maxPerCategory int
}

func NewOpenAISummarizer(apiKey, model string, maxTokens int, temperature float64, categories []string, maxPerCategory int) *OpenAISummarizer {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAISummarizer{
		client:         &client,
		model:          model,
		maxTokens:      maxTokens,
		temperature:    temperature,
		categories:     categories,
		maxPerCategory: maxPerCategory,
	}
}

func (s *OpenAISummarizer) Summarize(ctx context.Context, items []extractor.Item) (*Digest, error) {
	if len(items) == 0 {
		return emptyDigest(s.categories), nil
	}

	prompt := buildPrompt(formatItems(items), s.categories, s.maxPerCategory)

	resp, err := s.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(s.model),
		MaxTokens:   openai.Int(int64(s.maxTokens)),
		Temperature: openai.Float(s.temperature),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("summarizer: openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("summarizer: empty reply from openai")
	}

	return parseReply(resp.Choices[0].Message.Content, s.categories)
}
