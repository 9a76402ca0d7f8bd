// Package epub lays the harvested chapters out as a book and writes it as
// an EPUB 3 file.
package epub

import (
	"fmt"
	"html"
	"strings"

	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/index"
	"github.com/brogergvhs/noveld/internal/providers"
)

// Document is one chapter page of the book.
type Document struct {
	ID          string
	Slug        string
	FileName    string
	Title       string
	ReleaseDate string
	Body        string
}

// Assemble walks the chapter order and returns the book's documents in
// reading order. The split page is expanded into its chapters; the
// release date always comes from the listed page. Chapters without
// content are left out.
func Assemble(ix *index.Index, contents index.Contents, site providers.Site) []Document {
	var docs []Document
	seen := map[string]int{}

	for _, slug := range ix.Order {
		meta := ix.Metadata[slug]

		date := meta.ReleaseDate
		if date == "" {
			date = index.UnknownDate
		}

		for _, target := range site.Expand(slug) {
			c, ok := contents[target]
			if !ok {
				continue
			}

			title := firstNonEmpty(c.Title, meta.Title, target)

			name := chapters.DocumentName(target)
			if n := seen[name]; n > 0 {
				name = fmt.Sprintf("%s_%d.xhtml", strings.TrimSuffix(name, ".xhtml"), n+1)
			}
			seen[chapters.DocumentName(target)]++

			docs = append(docs, Document{
				ID:          "ch_" + strings.TrimSuffix(name, ".xhtml"),
				Slug:        target,
				FileName:    name,
				Title:       title,
				ReleaseDate: date,
				Body: fmt.Sprintf(`<h1>%s</h1><div class="date">Released: %s</div>%s`,
					html.EscapeString(title), html.EscapeString(date), c.Content),
			})
		}
	}

	return docs
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}

	return ""
}
