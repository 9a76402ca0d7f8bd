package extract

import (
	"bytes"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	mdhtml "github.com/gomarkdown/markdown/html"
	"golang.org/x/net/html"
)

const smartFlags = mdhtml.Smartypants | mdhtml.SmartypantsDashes

// guard is inserted where the renderer would apply a conversion beyond
// quotes, dashes and ellipses, and removed afterwards.
const guard = "\x1f"

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

	// the smartypants renderer emits named entities; stored content and the
	// EPUB documents carry the characters instead
	smartEntities = strings.NewReplacer(
		"&lsquo;", "‘", "&rsquo;", "’",
		"&ldquo;", "“", "&rdquo;", "”",
		"&laquo;", "«", "&raquo;", "»",
		"&ndash;", "–", "&mdash;", "—",
		"&hellip;", "…",
		guard, "",
	)

	// (c) (r) (tm) symbols and n/m fractions
	reSymbolParen = regexp.MustCompile(`(?i)\([crt]`)
	reNumberSlash = regexp.MustCompile(`[0-9][/⁄]`)
)

// Typeset italicizes single-quoted spans and applies smart punctuation to
// the text of an HTML fragment. Tags pass through untouched; quote
// direction is decided with the text before a tag as context.
func Typeset(fragment string) string {
	t := &typesetter{sp: mdhtml.NewSmartypantsRenderer(smartFlags)}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(fragment))

	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.WriteString(t.text(string(z.Text())))
		default:
			b.Write(z.Raw())
		}
	}
}

type typesetter struct {
	sp *mdhtml.SPRenderer

	// last rune of the text seen so far, 0 at the start
	prev rune
}

func (t *typesetter) text(text string) string {
	var b strings.Builder
	for _, s := range quoteSpans(text) {
		if s.em {
			b.WriteString("<em>")
		}
		b.WriteString(t.smarten(s.text))
		if s.em {
			b.WriteString("</em>")
		}
	}

	return b.String()
}

// smarten runs the renderer over text with one leading byte standing in
// for the preceding rune, then drops that byte again.
func (t *typesetter) smarten(text string) string {
	if text == "" {
		return ""
	}

	src := protect(textEscaper.Replace(text))
	lead := contextByte(t.prev)
	if lead != 0 {
		src = string(lead) + src
	}

	var buf bytes.Buffer
	t.sp.Process(&buf, []byte(src))

	out := buf.String()
	if lead != 0 {
		out = out[1:]
	}
	t.prev, _ = utf8.DecodeLastRuneInString(text)

	return smartEntities.Replace(out)
}

// contextByte maps r to an ASCII byte of the same class (space,
// punctuation, word) that the renderer leaves alone.
func contextByte(r rune) byte {
	switch {
	case r == 0:
		return 0
	case unicode.IsSpace(r):
		return ' '
	case unicode.IsPunct(r) || unicode.IsSymbol(r):
		return '!'
	default:
		return 'x'
	}
}

func protect(s string) string {
	s = reSymbolParen.ReplaceAllStringFunc(s, func(m string) string {
		return "(" + guard + m[1:]
	})

	return reNumberSlash.ReplaceAllStringFunc(s, func(m string) string {
		return m[:1] + guard + m[1:]
	})
}
