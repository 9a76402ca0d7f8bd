package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/brogergvhs/noveld/internal/providers"
)

func TestParseListing(t *testing.T) {
	site := providers.WeTriedTLS()

	tests := []struct {
		name  string
		text  string
		title string
		date  string
	}{
		{"plain", "Chapter 12\n3 days ago", "Chapter 12", "3 days ago"},
		{"subtitle", "Chapter 12\nThe Gate\n01/02/2024", "Chapter 12: The Gate", "01/02/2024"},
		{"badge", "Chapter 12\nNew\nyesterday", "Chapter 12", "yesterday"},
		{"subtitle contains title", "Author's Q&A\nAuthor's Q&A (1)\nToday", "Author's Q&A (1)", "Today"},
		{"title contains subtitle", "Chapter 5: Dawn\nDawn\n1 day ago", "Chapter 5: Dawn", "1 day ago"},
		{"title already has colon", "Chapter 5: Dawn\nDusk\n1 day ago", "Chapter 5: Dawn", "1 day ago"},
		{"no date", "  Chapter 7  \n\n", "Chapter 7", ""},
		{"date far down", "Chapter 7\nA\nB\n12/12/2023", "Chapter 7", "12/12/2023"},
		{"empty", " \n ", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, date := ParseListing(site, tt.text)
			assert.Equal(t, tt.title, title)
			assert.Equal(t, tt.date, date)
		})
	}
}

func TestCoverURL(t *testing.T) {
	site := providers.WeTriedTLS()

	assert.Equal(t, "https://media.example.com/c.webp",
		CoverURL(site, "/_next/image?url=https%3A%2F%2Fmedia.example.com%2Fc.webp&w=640&q=75"))
	assert.Equal(t, "https://wetriedtls.com/static/c.webp", CoverURL(site, "/static/c.webp"))
	assert.Equal(t, "", CoverURL(site, " "))
}
