package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ryosukesatoh/newsletter-digest/internal/render"
	"github.com/ryosukesatoh/newsletter-digest/internal/retry"
)

// Discord caps message content at 2000 characters.
const discordMessageLimit = 2000

type discordPayload struct {
	Content string `json:"content"`
}

// DiscordPublisher posts the text digest to a Discord channel via webhook,
// split into messages under the content limit.
type DiscordPublisher struct {
	webhookURL  string
	client      *http.Client
	retryConfig retry.Config
}

func NewDiscordPublisher(webhookURL string) *DiscordPublisher {
	return &DiscordPublisher{
		webhookURL:  webhookURL,
		client:      &http.Client{Timeout: 30 * time.Second},
		retryConfig: retry.DefaultConfig(),
	}
}

func (d *DiscordPublisher) Publish(ctx context.Context, digest *render.RenderedDigest) error {
	full := "**" + digest.Subject + "**\n" + digest.Text
	chunks := chunkLines(full, discordMessageLimit)

	for i, chunk := range chunks {
		err := retry.WithBackoff(ctx, d.retryConfig, func(ctx context.Context) error {
			return d.send(ctx, chunk)
		})
		if err != nil {
			return fmt.Errorf("discord: failed to send message %d of %d: %w", i+1, len(chunks), err)
		}

		// Delay between messages to avoid rate limits.
		if i < len(chunks)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(500 * time.Millisecond):
			}
		}
	}
	return nil
}

// chunkLines splits s into chunks of at most limit characters, breaking on
// line boundaries. A single line longer than the limit is hard-cut.
func chunkLines(s string, limit int) []string {
	var chunks []string
	var cur strings.Builder

	for _, line := range strings.Split(s, "\n") {
		if len(line) > limit {
			line = line[:limit]
		}
		if cur.Len() > 0 && cur.Len()+len(line)+1 > limit {
			chunks = append(chunks, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	if cur.Len() > 0 {
		chunks = append(chunks, cur.String())
	}
	return chunks
}

func (d *DiscordPublisher) send(ctx context.Context, content string) error {
	body, err := json.Marshal(discordPayload{Content: content})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
