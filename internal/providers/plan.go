package providers

import (
	"fmt"
	"regexp"
	"strings"
)

// Part is one logical chapter hosted by a split page.
type Part struct {
	Slug   string
	Number int
}

// DefaultTitle is used when the page carries no marker line for the part.
func (p Part) DefaultTitle() string {
	return fmt.Sprintf("Chapter %d", p.Number)
}

// SplitRule describes a page hosting two chapters. Blocks belong to First
// until a marker of Second (or an "Afterword" line when Afterword is set)
// is seen.
type SplitRule struct {
	First     Part
	Second    Part
	Afterword bool
}

// Slugs returns the synthetic slugs in reading order.
func (r SplitRule) Slugs() []string {
	return []string{r.First.Slug, r.Second.Slug}
}

// FirstMarker matches a line naming the first chapter.
func (r SplitRule) FirstMarker() *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?i)Chapter %d(?:[:\s\-].*)?$`, r.First.Number))
}

// SecondMarker matches a line opening the second chapter.
func (r SplitRule) SecondMarker() *regexp.Regexp {
	alts := []string{fmt.Sprintf(`Chapter %d(?:[:\s\-].*)?`, r.Second.Number)}
	if r.Afterword {
		alts = append(alts, `^Afterword(?:[:\s.\-].*)?`)
	}

	return regexp.MustCompile(`(?i)(` + strings.Join(alts, "|") + `)$`)
}

// Protects reports whether block text names a split boundary and must
// survive ad filtering.
func (r SplitRule) Protects(text string) bool {
	if strings.Contains(text, r.First.DefaultTitle()) || strings.Contains(text, r.Second.DefaultTitle()) {
		return true
	}

	return r.Afterword && strings.Contains(text, "Afterword")
}

// PlanKind tags how a page is extracted.
type PlanKind int

const (
	Normal PlanKind = iota
	Split
)

// Plan is the extraction variant for one slug.
type Plan struct {
	Kind PlanKind
	Slug string
	Rule SplitRule
}

// PlanFor resolves the extraction variant for slug. It is the only place
// split pages are recognised.
func (s Site) PlanFor(slug string) Plan {
	if rule, ok := s.SplitPages[slug]; ok {
		return Plan{Kind: Split, Slug: slug, Rule: rule}
	}

	return Plan{Kind: Normal, Slug: slug}
}

// Expand maps an order slug to the content slugs it produces.
func (s Site) Expand(slug string) []string {
	if p := s.PlanFor(slug); p.Kind == Split {
		return p.Rule.Slugs()
	}

	return []string{slug}
}
