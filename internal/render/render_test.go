package render

import (
	"strings"
	"testing"
	"time"

	"github.com/ryosukesatoh/newsletter-digest/internal/summarizer"
)

func sampleDigest() *summarizer.Digest {
	return &summarizer.Digest{
		Categories: []string{"Papers", "News", "Tools", "Industry Updates"},
		Entries: map[string][]summarizer.Entry{
			"Papers": {
				{
					Title:   "Scaling Laws Revisited",
					Summary: "A careful re-examination of scaling behavior.",
					Source:  "AI Weekly",
					Link:    "https://example.com/paper",
				},
			},
			"News": {
				{
					Title:   "Model Launch",
					Summary: "A new model was released.",
					Source:  "The Batch",
				},
			},
			"Tools":            {},
			"Industry Updates": {},
		},
	}
}

var renderTime = time.Date(2025, 1, 15, 8, 30, 0, 0, time.UTC)

func TestRenderSubject(t *testing.T) {
	rd := Render(sampleDigest(), 3, renderTime)
	want := "AI Daily Digest — January 15, 2025"
	if rd.Subject != want {
		t.Errorf("Expected subject %q, got %q", want, rd.Subject)
	}
}

func TestRenderIdempotent(t *testing.T) {
	d := sampleDigest()
	first := Render(d, 3, renderTime)
	second := Render(d, 3, renderTime)

	if first.Text != second.Text {
		t.Error("Expected identical text output for identical inputs")
	}
	if first.HTML != second.HTML {
		t.Error("Expected identical HTML output for identical inputs")
	}
	if first.Subject != second.Subject {
		t.Error("Expected identical subject for identical inputs")
	}
}

func TestRenderText(t *testing.T) {
	rd := Render(sampleDigest(), 3, renderTime)

	for _, want := range []string{
		"AI DAILY DIGEST",
		"Processed 3 newsletters",
		"📄 PAPERS",
		"1. Scaling Laws Revisited",
		"A careful re-examination of scaling behavior.",
		"Source: AI Weekly | https://example.com/paper",
		"Source: The Batch",
		"Generated on 2025-01-15 08:30:00",
	} {
		if !strings.Contains(rd.Text, want) {
			t.Errorf("Expected text output to contain %q", want)
		}
	}

	// Entry without a link gets no trailing separator.
	if strings.Contains(rd.Text, "Source: The Batch |") {
		t.Error("Expected no link separator for entry without link")
	}
}

func TestRenderSkipsEmptyCategories(t *testing.T) {
	rd := Render(sampleDigest(), 3, renderTime)

	if strings.Contains(rd.Text, "TOOLS") {
		t.Error("Expected empty category to be skipped in text output")
	}
	if strings.Contains(rd.HTML, "TOOLS") {
		t.Error("Expected empty category to be skipped in HTML output")
	}
}

func TestRenderHTML(t *testing.T) {
	rd := Render(sampleDigest(), 3, renderTime)

	for _, want := range []string{
		"AI DAILY DIGEST",
		"<strong>Scaling Laws Revisited</strong>",
		`<a href="https://example.com/paper"`,
		"Generated on 2025-01-15 08:30:00",
	} {
		if !strings.Contains(rd.HTML, want) {
			t.Errorf("Expected HTML output to contain %q", want)
		}
	}
}

func TestRenderHTMLEscapes(t *testing.T) {
	d := &summarizer.Digest{
		Categories: []string{"News"},
		Entries: map[string][]summarizer.Entry{
			"News": {{Title: "<script>alert(1)</script>", Summary: "a & b", Source: "S"}},
		},
	}

	rd := Render(d, 1, renderTime)
	if strings.Contains(rd.HTML, "<script>alert(1)</script>") {
		t.Error("Expected entry title to be HTML-escaped")
	}
	if !strings.Contains(rd.HTML, "&lt;script&gt;") {
		t.Error("Expected escaped title in HTML output")
	}
}

func TestRenderIconFallback(t *testing.T) {
	d := &summarizer.Digest{
		Categories: []string{"Opinion"},
		Entries: map[string][]summarizer.Entry{
			"Opinion": {{Title: "T", Summary: "S", Source: "Src"}},
		},
	}

	rd := Render(d, 1, renderTime)
	if !strings.Contains(rd.Text, "• OPINION") {
		t.Errorf("Expected generic bullet icon for unknown category, got %q", rd.Text)
	}
}

func TestRenderAllEmpty(t *testing.T) {
	d := &summarizer.Digest{
		Categories: []string{"Papers", "News"},
		Entries: map[string][]summarizer.Entry{
			"Papers": {},
			"News":   {},
		},
	}

	rd := Render(d, 0, renderTime)
	if !strings.Contains(rd.Text, "Processed 0 newsletters") {
		t.Error("Expected header even with no entries")
	}
	if strings.Contains(rd.Text, "PAPERS") || strings.Contains(rd.Text, "NEWS") {
		t.Error("Expected no category sections when all are empty")
	}
}
