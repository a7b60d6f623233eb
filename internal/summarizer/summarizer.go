package summarizer

import (
	"fmt"

	"github.com/ryosukesatoh/newsletter-digest/internal/config"
)

// New creates a summarizer backend based on the configuration.
func New(cfg *config.Config) (Summarizer, error) {
	sc := cfg.Summarizer
	dc := cfg.Digest
	switch sc.Type {
	case "anthropic":
		return NewAnthropicSummarizer(sc.APIKey, sc.Model, sc.MaxTokens, sc.Temperature, dc.Categories, dc.MaxPerCategory), nil
	case "openai":
		return NewOpenAISummarizer(sc.APIKey, sc.Model, sc.MaxTokens, sc.Temperature, dc.Categories, dc.MaxPerCategory), nil
	default:
		return nil, ErrUnsupportedSummarizerType
	}
}

// ErrUnsupportedSummarizerType is returned when an unsupported summarizer type is specified
var ErrUnsupportedSummarizerType = fmt.Errorf("unsupported summarizer type")
