// Package providers describes the single source site the harvester works
// against: where the listing lives, which selectors the rendered pages use,
// which text is promotional noise, and which pages need special handling.
package providers

import (
	"net/url"
	"strings"
)

// Book carries the descriptive metadata written into the EPUB package.
type Book struct {
	// Identifier overrides the identifier derived from Source.
	Identifier string
	// Source is the canonical series URL.
	Source string

	Title       string
	Language    string
	Author      string
	Description string
}

// Site is the static description of the source site.
type Site struct {
	BaseURL    string
	SeriesSlug string

	// PrologueSlug is the slug whose heading is "Prologue" instead of
	// "Chapter N".
	PrologueSlug string

	OverlayButton  string // selector of the consent/interstitial button
	OverlayPattern string // text pattern of the affirmative label

	CoverWait string
	CoverSlot string

	ChaptersTab        string
	ChaptersTabPattern string
	ChapterPanel       string

	ReaderContainer string

	AdMarkers    []string
	PaidMarkers  []string
	StatusBadges []string

	SplitPages map[string]SplitRule

	Book Book
}

// SeriesURL returns the absolute listing page URL.
func (s Site) SeriesURL() string {
	return strings.TrimRight(s.BaseURL, "/") + "/series/" + s.SeriesSlug
}

// ChapterLinkSelector matches chapter links rendered in the chapter panel.
func (s Site) ChapterLinkSelector() string {
	return s.ChapterPanel + ` a[href*="/series/` + s.SeriesSlug + `/"]`
}

// Absolute resolves href against the site base URL.
func (s Site) Absolute(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return s.BaseURL
	}

	u, err := url.Parse(href)
	if err == nil && u.IsAbs() {
		return u.String()
	}

	b, err := url.Parse(s.BaseURL)
	if err != nil || u == nil {
		return strings.TrimRight(s.BaseURL, "/") + "/" + strings.TrimLeft(href, "/")
	}

	return b.ResolveReference(u).String()
}

// SlugOf returns the trailing path segment of href, ignoring query and
// fragment. An href ending in "/" has an empty slug.
func SlugOf(href string) string {
	if i := strings.IndexAny(href, "?#"); i >= 0 {
		href = href[:i]
	}
	if i := strings.LastIndex(href, "/"); i >= 0 {
		return href[i+1:]
	}

	return href
}

// IsAd reports whether text contains a promotional marker, ignoring case.
func (s Site) IsAd(text string) bool {
	lt := strings.ToLower(text)
	for _, m := range s.AdMarkers {
		if strings.Contains(lt, strings.ToLower(m)) {
			return true
		}
	}

	return false
}

// IsPaid reports whether link text carries a paid/locked marker.
func (s Site) IsPaid(text string) bool {
	for _, m := range s.PaidMarkers {
		if strings.Contains(text, m) {
			return true
		}
	}

	return false
}

// IsBadge reports whether a listing line is a status badge rather than a
// subtitle.
func (s Site) IsBadge(line string) bool {
	for _, b := range s.StatusBadges {
		if strings.Contains(line, b) {
			return true
		}
	}

	return false
}

const rtocDescription = `On the way to a company workshop, we fell into a world of immortal cultivators while still in the car.

Those with spiritual roots and unique abilities were all called to join cultivation sects, living prosperously.

But I, having neither spiritual roots nor special abilities, lived as an ordinary mortal for 50 years, accepting my fate until my death.

That’s what I thought.

Until I regressed.`

// WeTriedTLS is the site the harvester is built for.
func WeTriedTLS() Site {
	s := Site{
		BaseURL:      "https://wetriedtls.com",
		SeriesSlug:   "a-regressors-tale-of-cultivation",
		PrologueSlug: "chapter-0",

		OverlayButton:  "button",
		OverlayPattern: `(?i)I understand`,

		CoverWait: "img.rounded",
		CoverSlot: `div.lg\:col-span-3 div > img.rounded`,

		ChaptersTab:        "button, a, span",
		ChaptersTabPattern: `(?i)Chapters list`,
		ChapterPanel:       `div[role="tabpanel"][id*="-content-chapters_list"]`,

		ReaderContainer: "#reader-container",

		AdMarkers: []string{
			"Discord", "Ko-fi", "Patreon", "Want more chapters", "Next chapter",
			"Previous chapter", "Consider supporting", "buymeacoffee",
			"TranslatingNovice", "Z0Rel", "BlueMangoAde",
		},
		PaidMarkers:  []string{"Paid", "Locked"},
		StatusBadges: []string{"Spoiler", "Paid", "Locked", "New"},

		SplitPages: map[string]SplitRule{
			"chapter-807-808": {
				First:     Part{Slug: "chapter-807", Number: 807},
				Second:    Part{Slug: "chapter-808", Number: 808},
				Afterword: true,
			},
		},

		Book: Book{
			Title:       "A Regressor's Tale of Cultivation",
			Language:    "en",
			Author:      "엄청난 (Tremendous)",
			Description: rtocDescription,
		},
	}
	s.Book.Source = s.SeriesURL()

	return s
}
