package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/brogergvhs/noveld/internal/index"
	"github.com/brogergvhs/noveld/internal/providers"
)

const (
	blockSelector = "p, h1, h2, h3, h4, h5, h6"

	// title candidates are only looked for near the top of the page
	titleScanBlocks = 10
	minTitleLength  = 8
)

var (
	reChapterSlug = regexp.MustCompile(`^chapter-(\d+)$`)

	genericTitle = `Chapter \d+|Author['’]s Q&A \(\d+\)|Author['’]s Tidbit \(\d+\)`

	quoteStripper = strings.NewReplacer(`"`, "", "'", "")
)

// Parse turns the rendered chapter page into content records. It is pure:
// everything it needs is in its arguments.
func Parse(site providers.Site, job Job, page string) ([]Record, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", job.Slug, err)
	}

	container := doc.Find(site.ReaderContainer).First()
	if container.Length() == 0 {
		return nil, ErrReaderMissing
	}

	plan := site.PlanFor(job.Slug)

	var blocks []*goquery.Selection
	container.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		blocks = append(blocks, s)
	})

	title := inferTitle(site, job, blocks)

	var kept []*goquery.Selection
	for _, b := range blocks {
		if keepBlock(site, plan, blockText(b.Get(0))) {
			kept = append(kept, b)
		}
	}

	for _, b := range kept {
		cleanTextNodes(b.Get(0))
	}

	if plan.Kind == providers.Split {
		return splitRecords(plan, kept)
	}

	if len(kept) > 0 && duplicatesTitle(blockText(kept[0].Get(0)), title) {
		kept = kept[1:]
	}

	content, err := render(kept)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", job.Slug, err)
	}

	return []Record{{
		Slug:    job.Slug,
		Content: index.Content{Content: content, Title: title},
	}}, nil
}

func keepBlock(site providers.Site, plan providers.Plan, text string) bool {
	if text == "" {
		return false
	}
	if site.IsAd(text) {
		return plan.Kind == providers.Split && plan.Rule.Protects(text)
	}

	return true
}

// titleMatcher builds the heading pattern for slug: "Prologue" for the
// prologue, "Chapter N" for chapter-N, the generic set otherwise.
func titleMatcher(site providers.Site, slug string) (*regexp.Regexp, bool) {
	pattern := genericTitle
	prologue := slug == site.PrologueSlug

	switch {
	case prologue:
		pattern = "Prologue"
	case reChapterSlug.MatchString(slug):
		pattern = "Chapter " + reChapterSlug.FindStringSubmatch(slug)[1]
	}

	return regexp.MustCompile(`(?i)^(?:` + pattern + `)(?:[:\s-].*)?$`), prologue
}

// inferTitle looks at the raw blocks, before ads are filtered, because the
// heading line sometimes shares a block with promotional text.
func inferTitle(site providers.Site, job Job, blocks []*goquery.Selection) string {
	re, prologue := titleMatcher(site, job.Slug)

	for i, b := range blocks {
		if i == titleScanBlocks {
			break
		}

		for _, line := range blockLines(b.Get(0)) {
			if !re.MatchString(line) {
				continue
			}

			candidate := cutAd(site, line)
			if prologue || utf8.RuneCountInString(candidate) >= minTitleLength {
				return candidate
			}
		}
	}

	if job.TitleHint != "" {
		return job.TitleHint
	}

	return job.Slug
}

// cutAd drops the first ad marker in line and everything after it.
func cutAd(site providers.Site, line string) string {
	for _, m := range site.AdMarkers {
		if before, _, found := strings.Cut(line, m); found {
			line = before
		}
	}

	return strings.TrimSpace(line)
}

func normalizeHeading(s string) string {
	return strings.ToLower(strings.TrimSpace(quoteStripper.Replace(CleanQuotes(s))))
}

func duplicatesTitle(block, title string) bool {
	b, t := normalizeHeading(block), normalizeHeading(title)
	return b != "" && (b == t || strings.Contains(t, b))
}

func splitRecords(plan providers.Plan, blocks []*goquery.Selection) ([]Record, error) {
	rule := plan.Rule
	firstMarker, secondMarker := rule.FirstMarker(), rule.SecondMarker()

	titles := [2]string{rule.First.DefaultTitle(), rule.Second.DefaultTitle()}
	var buckets [2][]*goquery.Selection
	cur := 0

	for _, b := range blocks {
		marker := false

		for _, line := range blockLines(b.Get(0)) {
			if m := firstMarker.FindString(line); m != "" {
				titles[0] = strings.TrimSpace(m)
				marker = true
			}
			if m := secondMarker.FindString(line); m != "" {
				cur = 1
				titles[1] = strings.TrimSpace(m)
				marker = true
			}
		}

		if !marker {
			buckets[cur] = append(buckets[cur], b)
		}
	}

	parts := [2]providers.Part{rule.First, rule.Second}
	out := make([]Record, 0, 2)

	for i, part := range parts {
		content, err := render(buckets[i])
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", part.Slug, err)
		}

		out = append(out, Record{
			Slug: part.Slug,
			Content: index.Content{
				Content:    content,
				Title:      titles[i],
				SourceSlug: plan.Slug,
			},
		})
	}

	return out, nil
}

func render(blocks []*goquery.Selection) (string, error) {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		h, err := goquery.OuterHtml(b)
		if err != nil {
			return "", err
		}
		parts = append(parts, h)
	}

	return Typeset(strings.Join(parts, "\n")), nil
}

// textNodes returns the trimmed, non-empty text nodes under n in document
// order.
func textNodes(n *html.Node) []string {
	var out []string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				out = append(out, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return out
}

func blockText(n *html.Node) string {
	return strings.Join(textNodes(n), " ")
}

func blockLines(n *html.Node) []string {
	var out []string
	for _, t := range textNodes(n) {
		for _, l := range strings.Split(t, "\n") {
			if l = strings.TrimSpace(l); l != "" {
				out = append(out, l)
			}
		}
	}

	return out
}

func cleanTextNodes(n *html.Node) {
	if n.Type == html.TextNode {
		n.Data = CleanQuotes(n.Data)
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		cleanTextNodes(c)
	}
}
