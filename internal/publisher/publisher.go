package publisher

import (
	"context"

	"github.com/ryosukesatoh/newsletter-digest/internal/render"
)

// Publisher delivers a rendered digest to some output destination.
type Publisher interface {
	Publish(ctx context.Context, digest *render.RenderedDigest) error
}
