package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stub(slug, title string) Stub {
	return Stub{Slug: slug, URL: "https://example.com/series/x/" + slug, Title: title, ReleaseDate: UnknownDate}
}

func TestShouldUpgradeTitle(t *testing.T) {
	tests := []struct {
		name      string
		stored    string
		candidate string
		want      bool
	}{
		{"adds subtitle", "Chapter 5", "Chapter 5: The Gate", true},
		{"both have subtitle", "Chapter 5: Gate", "Chapter 5: The Gate", false},
		{"much longer superset", "Author's Q&A", "Author's Q&A (12) extra", true},
		{"only slightly longer", "Chapter 5", "Chapter 5 (2)", false},
		{"longer but unrelated", "Chapter 5", "Something completely different", false},
		{"identical", "Chapter 5: The Gate", "Chapter 5: The Gate", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldUpgradeTitle(tt.stored, tt.candidate))
		})
	}
}

func TestMergeStubIsIdempotent(t *testing.T) {
	old := stub("chapter-5", "Chapter 5")
	found := stub("chapter-5", "Chapter 5: The Gate")
	found.ReleaseDate = "3 days ago"

	once, changed := MergeStub(old, found)
	require.True(t, changed)
	assert.Equal(t, "Chapter 5: The Gate", once.Title)
	assert.Equal(t, "3 days ago", once.ReleaseDate)

	twice, changed := MergeStub(once, found)
	assert.False(t, changed)
	assert.Equal(t, once, twice)
}

func TestMergeStubKeepsDateWhenUnknown(t *testing.T) {
	old := stub("chapter-5", "Chapter 5")
	old.ReleaseDate = "01/02/2024"

	merged, changed := MergeStub(old, stub("chapter-5", "Chapter 5: The Gate"))
	require.True(t, changed)
	assert.Equal(t, "01/02/2024", merged.ReleaseDate)
}

func TestAccumulatorAppendsNewestFirstReversed(t *testing.T) {
	existing := New()
	existing.Metadata["chapter-1"] = stub("chapter-1", "Chapter 1")
	existing.Metadata["chapter-2"] = stub("chapter-2", "Chapter 2")
	existing.Order = []string{"chapter-1", "chapter-2"}

	acc := NewAccumulator(existing)

	// the listing shows newest first
	assert.Equal(t, Added, acc.Add(stub("chapter-4", "Chapter 4")))
	assert.Equal(t, Added, acc.Add(stub("chapter-3", "Chapter 3")))
	assert.Equal(t, Known, acc.Add(stub("chapter-2", "Chapter 2")))
	assert.Equal(t, Known, acc.Add(stub("chapter-3", "Chapter 3")))

	ix := acc.Index()
	assert.Equal(t, []string{"chapter-1", "chapter-2", "chapter-3", "chapter-4"}, ix.Order)
	require.NoError(t, ix.Validate())

	// the input index is untouched
	assert.Equal(t, []string{"chapter-1", "chapter-2"}, existing.Order)
}

func TestAccumulatorExcludesPaid(t *testing.T) {
	acc := NewAccumulator(nil)

	paid := stub("chapter-9", "Chapter 9")
	paid.Paid = true

	assert.Equal(t, Ignored, acc.Add(paid))
	assert.Equal(t, Ignored, acc.Add(stub("", "no slug")))

	ix := acc.Index()
	assert.NotContains(t, ix.Metadata, "chapter-9")
	assert.Empty(t, ix.Order)
}

func TestAccumulatorIsIdempotentAcrossRuns(t *testing.T) {
	listing := []Stub{
		stub("chapter-3", "Chapter 3: Dawn"),
		stub("chapter-2", "Chapter 2"),
		stub("chapter-1", "Chapter 1"),
	}

	run := func(ix *Index) *Index {
		acc := NewAccumulator(ix)
		for _, st := range listing {
			acc.Add(st)
		}
		return acc.Index()
	}

	first := run(New())
	second := run(first)

	assert.Equal(t, first, second)
	assert.Equal(t, []string{"chapter-1", "chapter-2", "chapter-3"}, second.Order)
}

func TestAccumulatorUpgradeKeepsPosition(t *testing.T) {
	existing := New()
	existing.Metadata["chapter-1"] = stub("chapter-1", "Chapter 1")
	existing.Metadata["chapter-2"] = stub("chapter-2", "Chapter 2")
	existing.Order = []string{"chapter-1", "chapter-2"}

	acc := NewAccumulator(existing)
	assert.Equal(t, Upgraded, acc.Add(stub("chapter-1", "Chapter 1: Beginnings")))
	assert.Equal(t, Known, acc.Add(stub("chapter-1", "Chapter 1: Beginnings")))

	ix := acc.Index()
	assert.Equal(t, []string{"chapter-1", "chapter-2"}, ix.Order)
	assert.Equal(t, "Chapter 1: Beginnings", ix.Metadata["chapter-1"].Title)
	assert.Equal(t, []string{"chapter-1"}, acc.Upgraded())
	assert.False(t, acc.IsNew("chapter-1"))
}

func TestAccumulatorCover(t *testing.T) {
	existing := New()
	existing.CoverImageURL = "https://cdn.example.com/old.webp"

	acc := NewAccumulator(existing)
	acc.SetCover("")
	assert.Equal(t, "https://cdn.example.com/old.webp", acc.Index().CoverImageURL)

	acc.SetCover("https://cdn.example.com/new.webp")
	assert.Equal(t, "https://cdn.example.com/new.webp", acc.Index().CoverImageURL)
}
