package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanQuotes(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"‘‘Hello’’", `"Hello"`},
		{"‘'mixed'’", `"mixed"`},
		{"’'x", `"x`},
		{"''twice''", `"twice"`},
		{"“curly”", `"curly"`},
		{"it’s ‘fine’", "it's 'fine'"},
		{"‘’", `"`},
		{"'''", `"'`},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CleanQuotes(tt.in), tt.in)
	}
}

func TestCleanQuotesIdempotent(t *testing.T) {
	inputs := []string{
		"‘‘Hello’’ she said, ‘it’s ’'odd'’’",
		"'''''", "‘’‘", "“’‘”", "don't ‘stop’ ''now''",
	}

	for _, in := range inputs {
		once := CleanQuotes(in)
		assert.Equal(t, once, CleanQuotes(once), in)
	}
}

func TestItalicize(t *testing.T) {
	assert.Contains(t, Italicize(`He said 'I'll go.'`), `<em>'I'll go.'</em>`)

	tests := []struct {
		in, want string
	}{
		{"'Stop!' he said", "<em>'Stop!'</em> he said"},
		{"it's Tom's 'book', not mine", "it's Tom's <em>'book'</em>, not mine"},
		{"'unclosed quote", "'unclosed quote"},
		{"'a'b", "'a'b"},
		{"'' empty", "'' empty"},
		{"x'y' z", "x'y' z"},
		{"'one' and 'two'", "<em>'one'</em> and <em>'two'</em>"},
		{"'Don't,' he said", "<em>'Don't,'</em> he said"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Italicize(tt.in), tt.in)
	}
}
