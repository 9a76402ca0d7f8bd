// Package chapters holds the small naming and selection helpers shared by
// the harvest pipeline.
package chapters

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reUnsafeSlug  = regexp.MustCompile(`[^a-zA-Z0-9-]`)
	reUnderscores = regexp.MustCompile(`_+`)
)

// DocumentName is the file name of a chapter document inside the book.
func DocumentName(slug string) string {
	return reUnsafeSlug.ReplaceAllString(slug, "_") + ".xhtml"
}

func sanitize(s string) string {
	repl := []string{
		"•", "_",
		"—", "_",
		"–", "_",
		"/", "_",
		"\\", "_",
		":", "_",
		" ", "_",
		"'", "",
		"’", "",
		"(", "",
		")", "",
	}
	for i := 0; i < len(repl); i += 2 {
		s = strings.ReplaceAll(s, repl[i], repl[i+1])
	}

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			clean = append(clean, r)
		}
	}

	return strings.Trim(reUnderscores.ReplaceAllString(string(clean), "_"), "_")
}

// BookFileName derives the default output name from the book title,
// e.g. "A Regressor's Tale of Cultivation" -> "A_Regressors_Tale_of_Cultivation.epub".
func BookFileName(title string) string {
	name := sanitize(title)
	if name == "" {
		name = "book"
	}

	return name + ".epub"
}
