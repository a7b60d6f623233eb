package publisher

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/ryosukesatoh/newsletter-digest/internal/render"
)

// GmailPublisher sends the digest as a multipart/alternative email through
// the Gmail API.
type GmailPublisher struct {
	srv  *gmail.Service
	from string
	to   string
}

func NewGmailPublisher(ctx context.Context, clientID, clientSecret, refreshToken, from, to string) (*GmailPublisher, error) {
	conf := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	httpClient := conf.Client(ctx, &oauth2.Token{RefreshToken: refreshToken})

	srv, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("gmail: failed to create service: %w", err)
	}

	return &GmailPublisher{srv: srv, from: from, to: to}, nil
}

func (p *GmailPublisher) Publish(ctx context.Context, digest *render.RenderedDigest) error {
	raw := buildRawMessage(p.from, p.to, digest)

	_, err := p.srv.Users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail: failed to send digest to %s: %w", p.to, err)
	}
	return nil
}

const altBoundary = "=_digest_alternative_boundary"

// buildRawMessage assembles a multipart/alternative MIME message carrying
// both the text and HTML bodies, base64url-encoded the way the Gmail API
// expects raw messages.
func buildRawMessage(from, to string, digest *render.RenderedDigest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", digest.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", altBoundary)

	fmt.Fprintf(&b, "--%s\r\n", altBoundary)
	b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(digest.Text)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", altBoundary)
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(digest.HTML)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--", altBoundary)

	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}
