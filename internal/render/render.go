// Package render turns a categorized digest into the subject, plain-text and
// HTML documents handed to the delivery publishers.
package render

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/ryosukesatoh/newsletter-digest/internal/summarizer"
)

// RenderedDigest is the final digest document in both delivery formats.
type RenderedDigest struct {
	Subject string
	Text    string
	HTML    string
}

// Category icon table. Read-only after initialization; categories without an
// entry fall back to a plain bullet.
var categoryIcons = map[string]string{
	"Papers":           "📄",
	"News":             "📰",
	"Tools":            "🛠️",
	"Industry Updates": "📊",
}

const (
	defaultIcon = "•"
	ruleWidth   = 60
)

func icon(category string) string {
	if ic, ok := categoryIcons[category]; ok {
		return ic
	}
	return defaultIcon
}

// Render produces the digest documents. It is a pure function of its inputs:
// rendering the same digest with the same timestamp twice yields
// byte-identical output. Categories with no entries are skipped.
func Render(d *summarizer.Digest, totalMessages int, now time.Time) *RenderedDigest {
	return &RenderedDigest{
		Subject: fmt.Sprintf("AI Daily Digest — %s", now.Format("January 2, 2006")),
		Text:    renderText(d, totalMessages, now),
		HTML:    renderHTML(d, totalMessages, now),
	}
}

func renderText(d *summarizer.Digest, totalMessages int, now time.Time) string {
	rule := strings.Repeat("=", ruleWidth)

	var b strings.Builder
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "   AI DAILY DIGEST — %s\n", now.Format("January 2, 2006"))
	fmt.Fprintf(&b, "   Processed %d newsletters\n", totalMessages)
	b.WriteString(rule + "\n")

	for _, category := range d.Categories {
		entries := d.Entries[category]
		if len(entries) == 0 {
			continue
		}

		fmt.Fprintf(&b, "\n%s %s\n", icon(category), strings.ToUpper(category))
		b.WriteString(strings.Repeat("-", ruleWidth) + "\n")

		for i, e := range entries {
			fmt.Fprintf(&b, "\n%d. %s\n", i+1, e.Title)
			fmt.Fprintf(&b, "   %s\n", e.Summary)
			if e.Link != "" {
				fmt.Fprintf(&b, "   Source: %s | %s\n", e.Source, e.Link)
			} else {
				fmt.Fprintf(&b, "   Source: %s\n", e.Source)
			}
		}
	}

	b.WriteString("\n" + rule + "\n")
	fmt.Fprintf(&b, "Generated on %s\n", now.Format("2006-01-02 15:04:05"))
	return b.String()
}

func renderHTML(d *summarizer.Digest, totalMessages int, now time.Time) string {
	var b strings.Builder
	b.WriteString(`<html><body style="font-family: Arial, sans-serif; max-width: 800px; margin: 0 auto;">`)
	b.WriteString(`<div style="border-bottom: 3px solid #333; padding: 20px 0; margin-bottom: 30px;">`)
	b.WriteString(`<h1 style="margin: 0; color: #333;">AI DAILY DIGEST</h1>`)
	fmt.Fprintf(&b, `<p style="color: #666; margin: 10px 0 0 0;">%s &bull; Processed %d newsletters</p>`,
		now.Format("January 2, 2006"), totalMessages)
	b.WriteString(`</div>`)

	for _, category := range d.Categories {
		entries := d.Entries[category]
		if len(entries) == 0 {
			continue
		}

		fmt.Fprintf(&b, `<h2 style="color: #2c5282; margin-top: 30px;">%s %s</h2>`,
			icon(category), html.EscapeString(strings.ToUpper(category)))
		b.WriteString(`<ol style="line-height: 1.8;">`)

		for _, e := range entries {
			b.WriteString(`<li style="margin-bottom: 20px;">`)
			fmt.Fprintf(&b, `<strong>%s</strong><br>`, html.EscapeString(e.Title))
			fmt.Fprintf(&b, `<span style="color: #444;">%s</span><br>`, html.EscapeString(e.Summary))
			b.WriteString(`<span style="color: #666; font-size: 0.9em;">`)
			fmt.Fprintf(&b, `Source: %s`, html.EscapeString(e.Source))
			if e.Link != "" {
				fmt.Fprintf(&b, ` | <a href="%s" style="color: #2c5282;">Link</a>`, html.EscapeString(e.Link))
			}
			b.WriteString(`</span></li>`)
		}
		b.WriteString(`</ol>`)
	}

	b.WriteString(`<div style="border-top: 2px solid #eee; margin-top: 40px; padding-top: 20px; color: #999; font-size: 0.9em;">`)
	fmt.Fprintf(&b, `<p>Generated on %s</p>`, now.Format("2006-01-02 15:04:05"))
	b.WriteString(`</div></body></html>`)
	return b.String()
}
