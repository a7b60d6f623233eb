package publisher

import (
	"context"
	"fmt"
	"strings"

	"github.com/ryosukesatoh/newsletter-digest/internal/render"
)

// StdoutPublisher prints the digest to stdout. Used as the preview-mode
// sink: the digest is surfaced to the operator instead of transmitted.
type StdoutPublisher struct{}

func NewStdoutPublisher() *StdoutPublisher {
	return &StdoutPublisher{}
}

func (p *StdoutPublisher) Publish(_ context.Context, digest *render.RenderedDigest) error {
	rule := strings.Repeat("=", 70)

	fmt.Println(rule)
	fmt.Println("DIGEST PREVIEW")
	fmt.Println(rule)
	fmt.Printf("Subject: %s\n", digest.Subject)
	fmt.Println(rule)
	fmt.Println(digest.Text)
	fmt.Println(rule)
	return nil
}
