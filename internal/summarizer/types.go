package summarizer

import (
	"context"
	"fmt"

	"github.com/ryosukesatoh/newsletter-digest/internal/extractor"
)

// Entry is one summarized digest item. Link is optional.
type Entry struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Source  string `json:"source"`
	Link    string `json:"link,omitempty"`
}

// Digest maps each configured category, in configured order, to its entries.
// Every configured category is present in Entries even when empty.
type Digest struct {
	Categories []string
	Entries    map[string][]Entry
}

// Total returns the number of entries across all categories.
func (d *Digest) Total() int {
	n := 0
	for _, entries := range d.Entries {
		n += len(entries)
	}
	return n
}

// Summarizer categorizes and summarizes extracted newsletter items.
type Summarizer interface {
	Summarize(ctx context.Context, items []extractor.Item) (*Digest, error)
}

// MalformedReplyError means the model reply contained no parseable JSON.
// Raw carries the full reply text so callers can log it.
type MalformedReplyError struct {
	Raw string
	Err error
}

func (e *MalformedReplyError) Error() string {
	return fmt.Sprintf("summarizer: malformed model reply: %v", e.Err)
}

func (e *MalformedReplyError) Unwrap() error { return e.Err }

func emptyDigest(categories []string) *Digest {
	d := &Digest{
		Categories: categories,
		Entries:    make(map[string][]Entry, len(categories)),
	}
	for _, c := range categories {
		d.Entries[c] = []Entry{}
	}
	return d
}
