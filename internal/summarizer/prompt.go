package summarizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/ryosukesatoh/newsletter-digest/internal/extractor"
)

const (
	// Per-item bounds on what goes into the prompt.
	maxContentChars = 2000
	maxPromptLinks  = 10
)

// formatItems serializes extracted items into numbered textual blocks for
// the prompt, in input order.
func formatItems(items []extractor.Item) string {
	var sb strings.Builder
	for i, item := range items {
		fmt.Fprintf(&sb, "=== Newsletter %d ===\n", i+1)
		fmt.Fprintf(&sb, "Source: %s\n", item.Source)
		fmt.Fprintf(&sb, "Title: %s\n", item.Title)
		fmt.Fprintf(&sb, "\nContent:\n%s\n", truncate(item.Content, maxContentChars))

		links := item.Links
		if len(links) > maxPromptLinks {
			links = links[:maxPromptLinks]
		}
		if len(links) > 0 {
			sb.WriteString("\nLinks:\n")
			for _, l := range links {
				fmt.Fprintf(&sb, "- %s: %s\n", l.Text, l.URL)
			}
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// buildPrompt assembles the single curation prompt: category list, fixed
// instructions, JSON output schema, and the serialized newsletter blocks.
func buildPrompt(newslettersText string, categories []string, maxPerCategory int) string {
	return fmt.Sprintf(`You are an AI newsletter digest curator. Your task is to read multiple AI newsletters and create a consolidated daily digest.

CATEGORIES: %s

INSTRUCTIONS:
1. Read through all the newsletters below
2. Extract the most important and interesting items
3. Categorize each item into one of the categories above
4. Summarize each item in 1-2 concise sentences
5. Include up to %d items per category
6. Prioritize:
   - Novel research and breakthrough papers
   - Significant product launches and tools
   - Important industry news and updates
7. For each item, include:
   - Brief summary (1-2 sentences)
   - Source newsletter name
   - Relevant link (if available)

OUTPUT FORMAT (JSON):
{
  "Category Name": [
    {
      "title": "Item headline",
      "summary": "1-2 sentence summary",
      "source": "Newsletter name",
      "link": "URL (if available)"
    }
  ]
}

NEWSLETTERS:
%s

Please provide the digest in valid JSON format only, no additional text.`,
		strings.Join(categories, ", "), maxPerCategory, newslettersText)
}

// parseReply recovers the digest from a free-form model reply: the substring
// between the first { and the last } is parsed as JSON, tolerating prose the
// model may have added around it. Categories the model omitted default to
// empty; entries under unknown keys are dropped.
func parseReply(raw string, categories []string) (*Digest, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil, &MalformedReplyError{Raw: raw, Err: errors.New("no JSON object in reply")}
	}

	var parsed map[string][]Entry
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil, &MalformedReplyError{Raw: raw, Err: err}
	}

	d := emptyDigest(categories)
	for _, c := range categories {
		if entries, ok := parsed[c]; ok && entries != nil {
			d.Entries[c] = entries
		}
	}
	return d, nil
}
