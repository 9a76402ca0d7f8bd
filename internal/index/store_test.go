package index

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreMissingFilesAreEmpty(t *testing.T) {
	s := NewStore(t.TempDir())

	ix, err := s.LoadIndex()
	require.NoError(t, err)
	assert.Empty(t, ix.Order)
	assert.NotNil(t, ix.Metadata)

	c, err := s.LoadContents()
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Empty(t, c)
}

func TestStoreRoundTrip(t *testing.T) {
	s := NewStore(t.TempDir())

	ix := New()
	ix.Metadata["chapter-1"] = stub("chapter-1", "Chapter 1: “Quotes” & <Tags>")
	ix.Order = []string{"chapter-1"}
	ix.CoverImageURL = "https://cdn.example.com/cover.webp"
	require.NoError(t, s.SaveIndex(ix))

	got, err := s.LoadIndex()
	require.NoError(t, err)
	assert.Equal(t, ix, got)

	raw, err := os.ReadFile(s.MetadataPath())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "<Tags>", "documents stay human readable")
	assert.Contains(t, string(raw), `"release_date": "Unknown"`)

	c := Contents{
		"chapter-807": {Content: "<p>a</p>", Title: "Chapter 807", SourceSlug: "chapter-807-808"},
		"chapter-1":   {Content: "<p>b</p>", Title: "Chapter 1"},
	}
	require.NoError(t, s.SaveContents(c))

	gotC, err := s.LoadContents()
	require.NoError(t, err)
	assert.Equal(t, c, gotC)

	raw, err = os.ReadFile(s.ChaptersPath())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(raw), "source_slug"))
}

func TestStoreRejectsCorruptIndex(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	doc := `{"metadata": {}, "order": ["chapter-1"]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFile), []byte(doc), 0644))

	_, err := s.LoadIndex()
	assert.ErrorIs(t, err, ErrCorrupt)

	require.NoError(t, os.WriteFile(filepath.Join(dir, MetadataFile), []byte("{not json"), 0644))
	_, err = s.LoadIndex()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestValidateDuplicates(t *testing.T) {
	ix := New()
	ix.Metadata["chapter-1"] = stub("chapter-1", "Chapter 1")
	ix.Order = []string{"chapter-1", "chapter-1"}

	assert.ErrorIs(t, ix.Validate(), ErrCorrupt)
}

func TestContentsSatisfied(t *testing.T) {
	c := Contents{
		"chapter-1": {Title: "chapter-1"},
		"chapter-2": {Title: "Chapter 2: Rain"},
	}

	assert.False(t, c.Satisfied("chapter-1"))
	assert.True(t, c.Satisfied("chapter-2"))
	assert.False(t, c.Satisfied("chapter-3"))
}

func TestStoreState(t *testing.T) {
	s := NewStore(t.TempDir())

	st, err := s.State()
	require.NoError(t, err)
	assert.Zero(t, st.Indexed)
	assert.True(t, st.Synced.IsZero())

	ix := New()
	ix.Metadata["chapter-1"] = stub("chapter-1", "Chapter 1")
	ix.Metadata["chapter-2"] = stub("chapter-2", "Chapter 2")
	ix.Order = []string{"chapter-1", "chapter-2"}
	require.NoError(t, s.SaveIndex(ix))
	require.NoError(t, s.SaveContents(Contents{"chapter-1": {Title: "Chapter 1"}}))

	st, err = s.State()
	require.NoError(t, err)
	assert.Equal(t, 2, st.Indexed)
	assert.Equal(t, 1, st.Stored)
	assert.False(t, st.Synced.IsZero())
}
