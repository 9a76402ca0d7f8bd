package fetcher

import (
	"strings"

	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/extract"
	"github.com/brogergvhs/noveld/internal/index"
	"github.com/brogergvhs/noveld/internal/providers"
)

// BuildQueue walks the chapter order and returns the pages that still need
// fetching. A page is done when its content exists under a real title; the
// split page is done once both of its chapters exist. force queues every
// selected page.
func BuildQueue(ix *index.Index, contents index.Contents, site providers.Site, sel chapters.Selection, force bool) []extract.Job {
	var jobs []extract.Job

	for pos, slug := range ix.Order {
		if !sel.Includes(pos) {
			continue
		}
		if !force && satisfied(contents, site.PlanFor(slug)) {
			continue
		}

		st := ix.Metadata[slug]
		jobs = append(jobs, extract.Job{URL: st.URL, Slug: slug, TitleHint: st.Title})
	}

	return jobs
}

func satisfied(contents index.Contents, plan providers.Plan) bool {
	if plan.Kind == providers.Split {
		for _, s := range plan.Rule.Slugs() {
			if _, ok := contents[s]; !ok {
				return false
			}
		}
		return true
	}

	return contents.Satisfied(plan.Slug)
}

// SyncTitles copies better listing titles into stored content: a listing
// title with a subtitle replaces a content title without one, and any
// listing title replaces a content title that is just the slug. The
// prologue keeps its own heading. It returns the slugs it changed.
func SyncTitles(ix *index.Index, contents index.Contents, site providers.Site) []string {
	var changed []string

	for _, slug := range ix.Order {
		if slug == site.PrologueSlug {
			continue
		}

		c, ok := contents[slug]
		if !ok {
			continue
		}

		meta := ix.Metadata[slug].Title
		if !titleUpgrade(c.Title, meta, slug) {
			continue
		}

		c.Title = meta
		contents[slug] = c
		changed = append(changed, slug)
	}

	return changed
}

func titleUpgrade(current, meta, slug string) bool {
	if meta == "" || meta == current {
		return false
	}
	if strings.Contains(meta, ":") && !strings.Contains(current, ":") {
		return true
	}

	return current == slug
}
