package providers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugOf(t *testing.T) {
	cases := map[string]string{
		"/series/a-regressors-tale-of-cultivation/chapter-12":        "chapter-12",
		"https://wetriedtls.com/series/x/chapter-3?ref=list#top":     "chapter-3",
		"/series/a-regressors-tale-of-cultivation/":                  "",
		"chapter-9":                                                  "chapter-9",
		"/series/a-regressors-tale-of-cultivation/authors-qa-1?x=/y": "authors-qa-1",
	}

	for in, want := range cases {
		assert.Equal(t, want, SlugOf(in), in)
	}
}

func TestAbsolute(t *testing.T) {
	s := WeTriedTLS()

	assert.Equal(t, "https://wetriedtls.com/series/a/chapter-1", s.Absolute("/series/a/chapter-1"))
	assert.Equal(t, "https://cdn.example.com/x.webp", s.Absolute("https://cdn.example.com/x.webp"))
}

func TestIsAdIgnoresCase(t *testing.T) {
	s := WeTriedTLS()

	assert.True(t, s.IsAd("Join our DISCORD for updates"))
	assert.True(t, s.IsAd("support us on ko-fi"))
	assert.False(t, s.IsAd("The elder closed his eyes."))
}

func TestPlanFor(t *testing.T) {
	s := WeTriedTLS()

	p := s.PlanFor("chapter-807-808")
	assert.Equal(t, Split, p.Kind)
	assert.Equal(t, []string{"chapter-807", "chapter-808"}, p.Rule.Slugs())

	assert.Equal(t, Normal, s.PlanFor("chapter-807").Kind)
	assert.Equal(t, []string{"chapter-5"}, s.Expand("chapter-5"))
	assert.Equal(t, []string{"chapter-807", "chapter-808"}, s.Expand("chapter-807-808"))
}

func TestSplitMarkers(t *testing.T) {
	rule := WeTriedTLS().SplitPages["chapter-807-808"]

	first := rule.FirstMarker()
	assert.True(t, first.MatchString("Chapter 807: The Gate"))
	assert.True(t, first.MatchString("Chapter 807"))
	assert.False(t, first.MatchString("Chapter 8070"))

	second := rule.SecondMarker()
	assert.True(t, second.MatchString("Chapter 808 - Return"))
	assert.True(t, second.MatchString("Afterword"))
	assert.True(t, second.MatchString("Afterword: thanks for reading"))
	assert.False(t, second.MatchString("He wrote an Afterword later."))

	assert.True(t, rule.Protects("Join Discord! Chapter 808 starts here"))
	assert.False(t, rule.Protects("Join Discord!"))
}
