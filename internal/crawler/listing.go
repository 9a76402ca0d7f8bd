package crawler

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/brogergvhs/noveld/internal/providers"
)

var reReleaseDate = regexp.MustCompile(`(?i)\d{1,2}/\d{1,2}/\d{4}|\d+\s+days?\s+ago|yesterday|today`)

// Link is one rendered chapter anchor as read from the listing.
type Link struct {
	Href string `json:"href"`
	Text string `json:"text"`
}

// ParseListing reads the title and release date out of a chapter link's
// visible text. The first line is the title; the first later line that
// looks like a date is the release date. When the date sits on the third
// line, the second line is a subtitle unless it is a status badge.
// A missing date is returned as "".
func ParseListing(site providers.Site, text string) (title, date string) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return "", ""
	}

	title = lines[0]
	for i := 1; i < len(lines); i++ {
		if !reReleaseDate.MatchString(lines[i]) {
			continue
		}

		date = lines[i]
		if i == 2 && !site.IsBadge(lines[1]) {
			title = mergeSubtitle(title, lines[1])
		}
		break
	}

	return title, date
}

func mergeSubtitle(title, sub string) string {
	switch {
	case strings.Contains(sub, title):
		return sub
	case strings.Contains(title, sub):
		return title
	case !strings.Contains(title, ":") && !strings.HasSuffix(title, sub):
		return title + ": " + sub
	default:
		return title
	}
}

func splitLines(text string) []string {
	var out []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}

	return out
}

// CoverURL resolves the cover image src. Next.js image proxy URLs are
// unwrapped to the original image.
func CoverURL(site providers.Site, src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}

	abs := site.Absolute(src)
	u, err := url.Parse(abs)
	if err != nil || !strings.Contains(u.Path, "/_next/image") {
		return abs
	}

	if inner := u.Query().Get("url"); inner != "" {
		return site.Absolute(inner)
	}

	return abs
}
