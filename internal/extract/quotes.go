package extract

import (
	"strings"
	"unicode"
)

func isSingleQuote(r rune) bool {
	return r == '\'' || r == '‘' || r == '’'
}

// CleanQuotes normalizes quote artifacts in one text node: any two adjacent
// single-quote characters (straight or curly, in any mix) become a straight
// double quote, curly doubles become straight doubles and the remaining
// curly singles become apostrophes. Applying it twice equals applying it
// once.
func CleanQuotes(s string) string {
	if !strings.ContainsAny(s, "'‘’“”") {
		return s
	}

	rs := []rune(s)
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(rs); i++ {
		r := rs[i]
		switch {
		case isSingleQuote(r) && i+1 < len(rs) && isSingleQuote(rs[i+1]):
			b.WriteByte('"')
			i++
		case r == '“' || r == '”':
			b.WriteByte('"')
		case r == '‘' || r == '’':
			b.WriteByte('\'')
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

type span struct {
	text string
	em   bool
}

// quoteSpans splits plain text into runs, marking single-quoted spans.
// A span opens with a quote at the start of the text or after whitespace
// and closes with a quote followed by whitespace, one of .,;:!? or the end
// of the text. A quote between two word characters inside the span is an
// apostrophe.
func quoteSpans(s string) []span {
	if !strings.ContainsRune(s, '\'') {
		return []span{{text: s}}
	}

	rs := []rune(s)
	var out []span
	last := 0

	for i := 0; i < len(rs); i++ {
		if rs[i] != '\'' || (i > 0 && !unicode.IsSpace(rs[i-1])) {
			continue
		}

		end := closingQuote(rs, i)
		if end < 0 {
			continue
		}

		if i > last {
			out = append(out, span{text: string(rs[last:i])})
		}
		out = append(out, span{text: string(rs[i : end+1]), em: true})

		last = end + 1
		i = end
	}

	if last < len(rs) {
		out = append(out, span{text: string(rs[last:])})
	}

	return out
}

func closingQuote(rs []rune, open int) int {
	for j := open + 1; j < len(rs); j++ {
		switch {
		case rs[j] == '<':
			return -1
		case rs[j] != '\'':
			continue
		case j == open+1:
			return -1
		case closesQuote(rs, j):
			return j
		case j+1 < len(rs) && isWordRune(rs[j-1]) && isWordRune(rs[j+1]):
			continue
		default:
			return -1
		}
	}

	return -1
}

func closesQuote(rs []rune, j int) bool {
	if j+1 == len(rs) {
		return true
	}

	next := rs[j+1]
	return unicode.IsSpace(next) || strings.ContainsRune(".,;:!?", next)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Italicize wraps single-quoted spans of plain text, quotes included, in
// <em>. The input is not HTML-escaped.
func Italicize(s string) string {
	var b strings.Builder
	for _, sp := range quoteSpans(s) {
		if sp.em {
			b.WriteString("<em>" + sp.text + "</em>")
			continue
		}
		b.WriteString(sp.text)
	}

	return b.String()
}
