package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypesetItalicizesAndSmartens(t *testing.T) {
	got := Typeset(`<p>He said &#39;I&#39;ll go.&#39;</p>`)
	assert.Equal(t, "<p>He said <em>‘I’ll go.’</em></p>", got)
}

func TestTypesetPunctuation(t *testing.T) {
	got := Typeset(`<p class="note">It was &#34;strange&#34; -- she thought...</p>`)
	assert.Equal(t, `<p class="note">It was “strange” — she thought…</p>`, got)
}

func TestTypesetKeepsMarkupAndEscapes(t *testing.T) {
	got := Typeset("<p>Tom &amp; Jerry &lt;3</p>\n<h2>Part <strong>two</strong></h2>")
	assert.Equal(t, "<p>Tom &amp; Jerry &lt;3</p>\n<h2>Part <strong>two</strong></h2>", got)
}

func TestTypesetQuoteSpansDoNotCrossTags(t *testing.T) {
	got := Typeset("<p>'open <b>bold</b> close'</p>")
	assert.NotContains(t, got, "<em>")
}

func TestTypesetQuoteDirectionAcrossInlineTags(t *testing.T) {
	got := Typeset(`<p>"Hello <i>world</i>"</p>`)
	assert.Equal(t, "<p>“Hello <i>world</i>”</p>", got)

	got = Typeset(`<p>He said <b>"no"</b> and left.</p>`)
	assert.Equal(t, "<p>He said <b>“no”</b> and left.</p>", got)
}

func TestTypesetLeavesSymbolsAndFractions(t *testing.T) {
	for _, in := range []string{
		"<p>Options (a), (b) and (c) were open.</p>",
		"<p>Marks (R) and (TM) stay, as does (r).</p>",
		"<p>He ate 1/2 of it on 3/14/2024.</p>",
	} {
		assert.Equal(t, in, Typeset(in))
	}
}
