// Package index holds the durable chapter index and the extracted chapter
// content table, and the rules used to merge newly discovered chapters into
// them.
package index

import (
	"errors"
	"fmt"
)

// UnknownDate is stored when a listing carries no recognisable date.
const UnknownDate = "Unknown"

// ErrCorrupt is returned when a persisted document breaks an index invariant.
var ErrCorrupt = errors.New("index: corrupt document")

// Stub is the metadata discovered for one chapter on the listing page.
type Stub struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	ReleaseDate string `json:"release_date"`
	Slug        string `json:"slug"`

	Paid bool `json:"-"`
}

// HasDate reports whether the stub carries a real release date.
func (s Stub) HasDate() bool {
	return s.ReleaseDate != "" && s.ReleaseDate != UnknownDate
}

// Index is the persisted chapter metadata and reading order.
type Index struct {
	Metadata      map[string]Stub `json:"metadata"`
	Order         []string        `json:"order"`
	CoverImageURL string          `json:"cover_image_url,omitempty"`
}

// New returns an empty index.
func New() *Index {
	return &Index{
		Metadata: map[string]Stub{},
		Order:    []string{},
	}
}

// Clone returns a deep copy.
func (ix *Index) Clone() *Index {
	out := New()
	out.CoverImageURL = ix.CoverImageURL
	for k, v := range ix.Metadata {
		out.Metadata[k] = v
	}
	out.Order = append(out.Order, ix.Order...)

	return out
}

// Has reports whether slug is known.
func (ix *Index) Has(slug string) bool {
	_, ok := ix.Metadata[slug]
	return ok
}

// Validate checks that every ordered slug has metadata and that order holds
// no duplicates.
func (ix *Index) Validate() error {
	seen := make(map[string]bool, len(ix.Order))
	for i, slug := range ix.Order {
		if seen[slug] {
			return fmt.Errorf("%w: duplicate slug %q at position %d", ErrCorrupt, slug, i)
		}
		seen[slug] = true

		if !ix.Has(slug) {
			return fmt.Errorf("%w: slug %q at position %d has no metadata", ErrCorrupt, slug, i)
		}
	}

	return nil
}

// Content is the extracted body of one chapter.
type Content struct {
	Content    string `json:"content"`
	Title      string `json:"title"`
	SourceSlug string `json:"source_slug,omitempty"`
}

// Contents maps slug to extracted content.
type Contents map[string]Content

// Satisfied reports whether slug already holds usable content. A title that
// merely echoes the slug is a placeholder and does not count.
func (c Contents) Satisfied(slug string) bool {
	ch, ok := c[slug]
	if !ok {
		return false
	}

	return ch.Title != slug
}
