package chapters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSelection(t *testing.T) {
	all, err := ParseSelection(nil, "")
	require.NoError(t, err)
	assert.True(t, all.All())
	assert.True(t, all.Includes(123))

	sel, err := ParseSelection([]string{"0", "4,6"}, "10-12")
	require.NoError(t, err)
	assert.False(t, sel.All())
	assert.Equal(t, []int{0, 4, 6, 10, 11, 12}, sel.Positions(100))
	assert.Equal(t, []int{0, 4}, sel.Positions(5))
	assert.Equal(t, 12, sel.Max())
	assert.Equal(t, -1, all.Max())
	assert.True(t, sel.Includes(11))
	assert.False(t, sel.Includes(5))

	for _, bad := range []string{"x", "-1"} {
		_, err := ParseSelection([]string{bad}, "")
		assert.Error(t, err, bad)
	}
	for _, bad := range []string{"5", "5-2", "a-b", "1-2-3"} {
		_, err := ParseSelection(nil, bad)
		assert.Error(t, err, bad)
	}
}

func TestParseSelectionHugeRange(t *testing.T) {
	sel, err := ParseSelection(nil, "0-2000000000")
	require.NoError(t, err)

	assert.Empty(t, sel.set)
	assert.True(t, sel.Includes(1999999999))
	assert.False(t, sel.Includes(2000000001))
	assert.Equal(t, 2000000000, sel.Max())
	assert.Len(t, sel.Positions(3), 3)
}

func TestDocumentName(t *testing.T) {
	assert.Equal(t, "chapter-807.xhtml", DocumentName("chapter-807"))
	assert.Equal(t, "author_s_q_a_1.xhtml", DocumentName("author's q&a_1"))
}

func TestBookFileName(t *testing.T) {
	assert.Equal(t, "A_Regressors_Tale_of_Cultivation.epub", BookFileName("A Regressor's Tale of Cultivation"))
	assert.Equal(t, "book.epub", BookFileName("???"))
}
