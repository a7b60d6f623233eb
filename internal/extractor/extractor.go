// Package extractor turns one raw newsletter message into normalized plain
// text, a filtered link list, and a readable sender label.
package extractor

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/ryosukesatoh/newsletter-digest/internal/mail"
)

// Link is a hyperlink judged to point at substantive content.
type Link struct {
	URL  string
	Text string
}

// Item is the normalized representation of a single newsletter message.
type Item struct {
	Title   string
	Content string
	Links   []Link
	Source  string
}

// Emails have no meaningful page URL; readability only uses it to resolve
// relative links.
var docURL = &url.URL{Scheme: "https", Host: "newsletter.invalid"}

// Extract produces an Item from a raw message, preferring the HTML body over
// plain text. Malformed markup degrades to a basic extraction rather than
// failing; the returned error is non-nil only when even the fallback cannot
// parse the body.
func Extract(msg mail.Message) (Item, error) {
	switch {
	case msg.BodyHTML != "":
		return extractFromHTML(msg)
	case msg.BodyText != "":
		return extractFromText(msg), nil
	default:
		return Item{
			Title:  titleOrDefault("", msg.Subject),
			Source: senderLabel(msg.From),
		}, nil
	}
}

func extractFromHTML(msg mail.Message) (Item, error) {
	article, err := readability.FromReader(strings.NewReader(msg.BodyHTML), docURL)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return basicHTMLExtract(msg)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(article.Content))
	if err != nil {
		return basicHTMLExtract(msg)
	}

	return Item{
		Title:   titleOrDefault(article.Title, msg.Subject),
		Content: normalizeWhitespace(blockText(doc.Selection)),
		Links:   contentLinks(doc),
		Source:  senderLabel(msg.From),
	}, nil
}

// basicHTMLExtract is the fallback when readability extraction yields
// nothing: strip script/style/head from the full document and take the
// remaining text, with links drawn from the whole document.
func basicHTMLExtract(msg mail.Message) (Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(msg.BodyHTML))
	if err != nil {
		return Item{}, fmt.Errorf("extractor: failed to parse HTML body: %w", err)
	}
	doc.Find("script, style, head").Remove()

	return Item{
		Title:   titleOrDefault("", msg.Subject),
		Content: normalizeWhitespace(blockText(doc.Selection)),
		Links:   contentLinks(doc),
		Source:  senderLabel(msg.From),
	}, nil
}

var (
	tripleNewlines = regexp.MustCompile(`\n\s*\n\s*\n+`)
	urlPattern     = regexp.MustCompile("https?://[^\\s<>\"{}\\\\|^`\\[\\]]+")
)

func extractFromText(msg mail.Message) Item {
	content := tripleNewlines.ReplaceAllString(msg.BodyText, "\n\n")

	var links []Link
	for _, u := range urlPattern.FindAllString(content, -1) {
		links = append(links, Link{URL: u, Text: u})
	}

	return Item{
		Title:   titleOrDefault("", msg.Subject),
		Content: content,
		Links:   links,
		Source:  senderLabel(msg.From),
	}
}

// Block-level elements that end a structurally distinct region; a blank line
// is inserted after each to preserve paragraph breaks.
var paragraphTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"ul": true, "ol": true, "table": true, "blockquote": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// blockText renders parsed HTML as plain text: one trimmed text run per
// line, blank lines between paragraph-level blocks.
func blockText(sel *goquery.Selection) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte('\n')
			}
			return
		case html.ElementNode:
			if n.Data == "script" || n.Data == "style" {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && paragraphTags[n.Data] {
			b.WriteByte('\n')
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return b.String()
}

var (
	blankLineRuns = regexp.MustCompile(`\n\s*\n`)
	spaceRuns     = regexp.MustCompile(` +`)
)

// normalizeWhitespace collapses runs of blank lines to a single blank line
// and runs of spaces to one space.
func normalizeWhitespace(s string) string {
	s = spaceRuns.ReplaceAllString(s, " ")
	s = blankLineRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

func contentLinks(doc *goquery.Document) []Link {
	var links []Link
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		text := strings.TrimSpace(a.Text())
		if !isContentLink(href, text) {
			return
		}
		if text == "" {
			text = href
		}
		links = append(links, Link{URL: href, Text: text})
	})
	return links
}

// Substrings that mark a link as newsletter boilerplate rather than content.
// Read-only after initialization.
var boilerplateKeywords = []string{
	"unsubscribe",
	"manage preferences",
	"update profile",
	"view in browser",
	"privacy policy",
	"terms of service",
	"contact us",
	"twitter.com",
	"facebook.com",
	"linkedin.com",
	"instagram.com",
}

// isContentLink reports whether a (url, text) pair points at substantive
// material: a well-formed http(s) URL with no boilerplate keyword in either
// the URL or the anchor text.
func isContentLink(url, text string) bool {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return false
	}
	urlLower := strings.ToLower(url)
	textLower := strings.ToLower(text)
	for _, kw := range boilerplateKeywords {
		if strings.Contains(urlLower, kw) || strings.Contains(textLower, kw) {
			return false
		}
	}
	return true
}

var (
	senderNameRegex = regexp.MustCompile(`^(.+?)\s*<`)
	senderAddrRegex = regexp.MustCompile(`<(.+?)>`)
)

// extractSenderName turns a From header into a readable label: the display
// name when one is present (quotes stripped), the bracketed address
// otherwise, or the header unchanged.
func extractSenderName(from string) string {
	if m := senderNameRegex.FindStringSubmatch(from); m != nil {
		return strings.Trim(strings.TrimSpace(m[1]), `"'`)
	}
	if m := senderAddrRegex.FindStringSubmatch(from); m != nil {
		return m[1]
	}
	return from
}

func senderLabel(from string) string {
	if from == "" {
		return "Unknown"
	}
	return extractSenderName(from)
}

func titleOrDefault(title, subject string) string {
	if title != "" {
		return title
	}
	if subject != "" {
		return subject
	}
	return "Untitled"
}
