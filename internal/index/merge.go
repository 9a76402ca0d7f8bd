package index

import (
	"slices"
	"strings"
)

// Outcome is the effect of merging one stub.
type Outcome int

const (
	Ignored Outcome = iota
	Added
	Upgraded
	Known
)

func (o Outcome) String() string {
	switch o {
	case Added:
		return "added"
	case Upgraded:
		return "upgraded"
	case Known:
		return "known"
	default:
		return "ignored"
	}
}

// ShouldUpgradeTitle reports whether candidate is a better title than
// stored: it introduces a colon subtitle the stored title lacks, or it is
// more than five characters longer and contains the stored title.
func ShouldUpgradeTitle(stored, candidate string) bool {
	if strings.Contains(candidate, ":") && !strings.Contains(stored, ":") {
		return true
	}

	return len(candidate) > len(stored)+5 && strings.Contains(candidate, stored)
}

// MergeStub applies one discovered stub to an existing entry. It returns the
// entry to store and whether anything changed.
func MergeStub(existing, found Stub) (Stub, bool) {
	if !ShouldUpgradeTitle(existing.Title, found.Title) {
		return existing, false
	}

	existing.Title = found.Title
	if found.HasDate() {
		existing.ReleaseDate = found.ReleaseDate
	}

	return existing, true
}

// Accumulator threads crawl state through the pagination loop. Slugs that
// were known before the crawl started are never reordered; new slugs are
// collected in the order the site lists them (newest first) and appended
// reversed by Index.
type Accumulator struct {
	base     *Index
	fresh    []string
	freshSet map[string]bool
	upgraded []string
	cover    string
}

func NewAccumulator(existing *Index) *Accumulator {
	if existing == nil {
		existing = New()
	}

	return &Accumulator{
		base:     existing.Clone(),
		freshSet: map[string]bool{},
		cover:    existing.CoverImageURL,
	}
}

// Add merges one stub. Paid stubs and stubs without a slug are ignored.
func (a *Accumulator) Add(st Stub) Outcome {
	if st.Paid || st.Slug == "" {
		return Ignored
	}
	if st.ReleaseDate == "" {
		st.ReleaseDate = UnknownDate
	}

	old, ok := a.base.Metadata[st.Slug]
	if !ok {
		a.base.Metadata[st.Slug] = st
		a.fresh = append(a.fresh, st.Slug)
		a.freshSet[st.Slug] = true
		return Added
	}

	merged, changed := MergeStub(old, st)
	if !changed {
		return Known
	}

	a.base.Metadata[st.Slug] = merged
	if !slices.Contains(a.upgraded, st.Slug) {
		a.upgraded = append(a.upgraded, st.Slug)
	}

	return Upgraded
}

// IsNew reports whether slug was first discovered during this crawl.
func (a *Accumulator) IsNew(slug string) bool {
	return a.freshSet[slug]
}

// SetCover records the cover URL. Empty values keep the previous one.
func (a *Accumulator) SetCover(u string) {
	if u != "" {
		a.cover = u
	}
}

func (a *Accumulator) Fresh() []string {
	return slices.Clone(a.fresh)
}

func (a *Accumulator) Upgraded() []string {
	return slices.Clone(a.upgraded)
}

// Index returns the merged index with new slugs appended oldest first.
func (a *Accumulator) Index() *Index {
	out := a.base.Clone()
	out.CoverImageURL = a.cover

	fresh := slices.Clone(a.fresh)
	slices.Reverse(fresh)
	out.Order = append(out.Order, fresh...)

	return out
}
