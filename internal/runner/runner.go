package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ryosukesatoh/newsletter-digest/internal/extractor"
	"github.com/ryosukesatoh/newsletter-digest/internal/mail"
	"github.com/ryosukesatoh/newsletter-digest/internal/publisher"
	"github.com/ryosukesatoh/newsletter-digest/internal/render"
	"github.com/ryosukesatoh/newsletter-digest/internal/report"
	"github.com/ryosukesatoh/newsletter-digest/internal/summarizer"
)

// Mailer is the narrow mail-provider contract the pipeline depends on.
type Mailer interface {
	FetchUnread(ctx context.Context, hours int) ([]mail.Message, error)
	MarkProcessed(ctx context.Context, ids []string) error
}

// Runner orchestrates the fetch -> extract -> summarize -> render -> deliver
// pipeline.
type Runner struct {
	mailer        Mailer
	summarizer    summarizer.Summarizer
	publishers    []publisher.Publisher
	reporter      report.Reporter
	hours         int
	markProcessed bool
}

func New(m Mailer, s summarizer.Summarizer, pubs []publisher.Publisher, rep report.Reporter, hours int, markProcessed bool) *Runner {
	return &Runner{
		mailer:        m,
		summarizer:    s,
		publishers:    pubs,
		reporter:      rep,
		hours:         hours,
		markProcessed: markProcessed,
	}
}

// Run executes the full pipeline once. A run is stateless: nothing is
// persisted between runs.
func (r *Runner) Run(ctx context.Context) error {
	r.reporter.Infof("Fetching newsletters from the last %d hours...", r.hours)
	msgs, err := r.mailer.FetchUnread(ctx, r.hours)
	if err != nil {
		return fmt.Errorf("runner: fetch failed: %w", err)
	}
	if len(msgs) == 0 {
		r.reporter.Infof("No newsletters to process")
		return nil
	}
	r.reporter.Infof("Found %d newsletters to process", len(msgs))

	// Per-message extraction failures are warnings; one bad message must not
	// abort the batch.
	var items []extractor.Item
	for _, msg := range msgs {
		item, err := extractor.Extract(msg)
		if err != nil {
			r.reporter.Warnf("Failed to extract content from %q: %v", msg.Subject, err)
			continue
		}
		r.reporter.Debugf("Extracted: %s", item.Title)
		items = append(items, item)
	}
	if len(items) == 0 {
		r.reporter.Infof("No content extracted, nothing to digest")
		return nil
	}

	r.reporter.Infof("Summarizing %d newsletter items...", len(items))
	digest, err := r.summarizer.Summarize(ctx, items)
	if err != nil {
		var malformed *summarizer.MalformedReplyError
		if errors.As(err, &malformed) {
			r.reporter.Errorf("Model reply was not valid JSON: %.500s", malformed.Raw)
		}
		return fmt.Errorf("runner: summarize failed: %w", err)
	}
	r.reporter.Infof("Digest contains %d items across %d categories", digest.Total(), len(digest.Categories))

	rendered := render.Render(digest, len(msgs), time.Now())

	// A delivery failure is fatal; the rendered digest is not retried.
	for _, pub := range r.publishers {
		if err := pub.Publish(ctx, rendered); err != nil {
			return fmt.Errorf("runner: publish via %T failed: %w", pub, err)
		}
	}

	if r.markProcessed {
		ids := make([]string, len(msgs))
		for i, m := range msgs {
			ids[i] = m.ID
		}
		if err := r.mailer.MarkProcessed(ctx, ids); err != nil {
			r.reporter.Warnf("Failed to mark newsletters as read: %v", err)
		} else {
			r.reporter.Infof("Marked %d newsletters as read", len(ids))
		}
	}

	r.reporter.Infof("Pipeline completed successfully")
	return nil
}
