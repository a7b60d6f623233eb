package publisher

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ryosukesatoh/newsletter-digest/internal/render"
	"github.com/ryosukesatoh/newsletter-digest/internal/retry"
)

func sampleRendered() *render.RenderedDigest {
	return &render.RenderedDigest{
		Subject: "AI Daily Digest — January 15, 2025",
		Text:    "AI DAILY DIGEST\n\n1. Test Entry\n   Summary text.",
		HTML:    "<html><body><h1>AI DAILY DIGEST</h1></body></html>",
	}
}

func TestStdoutPublisher(t *testing.T) {
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Failed to create pipe: %v", err)
	}
	os.Stdout = w

	p := NewStdoutPublisher()
	pubErr := p.Publish(context.Background(), sampleRendered())

	w.Close()
	os.Stdout = old

	out, _ := io.ReadAll(r)
	if pubErr != nil {
		t.Fatalf("Publish returned error: %v", pubErr)
	}

	for _, want := range []string{
		"DIGEST PREVIEW",
		"Subject: AI Daily Digest — January 15, 2025",
		"1. Test Entry",
	} {
		if !strings.Contains(string(out), want) {
			t.Errorf("Expected output to contain %q", want)
		}
	}
}

func TestChunkLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		limit int
		want  []string
	}{
		{"empty", "", 10, nil},
		{"single chunk", "a\nb\nc", 10, []string{"a\nb\nc"}},
		{"splits on line boundary", "aaaa\nbbbb\ncccc", 9, []string{"aaaa\nbbbb", "cccc"}},
		{"hard cut long line", "aaaaaaaaaa", 4, []string{"aaaa"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := chunkLines(tt.input, tt.limit)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %d chunks, got %d: %q", len(tt.want), len(got), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Chunk %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestChunkLinesRespectsLimit(t *testing.T) {
	long := strings.Repeat("line of text\n", 500)
	for _, chunk := range chunkLines(long, discordMessageLimit) {
		if len(chunk) > discordMessageLimit {
			t.Errorf("Chunk exceeds limit: %d > %d", len(chunk), discordMessageLimit)
		}
	}
}

func TestDiscordPublish(t *testing.T) {
	var payloads []discordPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p discordPayload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			t.Errorf("Failed to decode payload: %v", err)
		}
		payloads = append(payloads, p)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	p := NewDiscordPublisher(srv.URL)
	if err := p.Publish(context.Background(), sampleRendered()); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	if len(payloads) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(payloads))
	}
	if !strings.HasPrefix(payloads[0].Content, "**AI Daily Digest") {
		t.Errorf("Expected bold subject prefix, got %q", payloads[0].Content)
	}
	if !strings.Contains(payloads[0].Content, "1. Test Entry") {
		t.Errorf("Expected digest text in payload, got %q", payloads[0].Content)
	}
}

func TestDiscordPublishBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	p := &DiscordPublisher{
		webhookURL:  srv.URL,
		client:      &http.Client{Timeout: 5 * time.Second},
		retryConfig: retry.Config{MaxRetries: 1, BaseDelay: time.Millisecond},
	}

	err := p.Publish(context.Background(), sampleRendered())
	if err == nil {
		t.Fatal("Expected error for 400 response")
	}
	if !strings.Contains(err.Error(), "unexpected status 400") {
		t.Errorf("Expected status in error, got %v", err)
	}
}

func TestDiscordPublishChunksLongDigest(t *testing.T) {
	var count int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count++
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	digest := &render.RenderedDigest{
		Subject: "Long Digest",
		Text:    strings.Repeat("a line of digest text\n", 200),
	}

	p := NewDiscordPublisher(srv.URL)
	if err := p.Publish(context.Background(), digest); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if count < 2 {
		t.Errorf("Expected digest split across multiple messages, got %d", count)
	}
}

func TestBuildRawMessage(t *testing.T) {
	raw := buildRawMessage("digest@example.com", "me@example.com", sampleRendered())

	decoded, err := base64.URLEncoding.DecodeString(raw)
	if err != nil {
		t.Fatalf("Raw message is not valid base64url: %v", err)
	}
	msg := string(decoded)

	for _, want := range []string{
		"From: digest@example.com\r\n",
		"To: me@example.com\r\n",
		"MIME-Version: 1.0\r\n",
		"Content-Type: multipart/alternative;",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"Content-Type: text/html; charset=\"UTF-8\"",
		"AI DAILY DIGEST",
		"<h1>AI DAILY DIGEST</h1>",
		"--" + altBoundary + "--",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("Expected raw message to contain %q", want)
		}
	}

	// Non-ASCII subject is Q-encoded.
	if !strings.Contains(msg, "=?utf-8?q?") {
		t.Errorf("Expected Q-encoded subject header in:\n%s", msg)
	}
}
