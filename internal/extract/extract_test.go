package extract

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/noveld/internal/browser"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/ui"
)

// scriptedBrowser hands out pages whose behaviour is decided per attempt.
type scriptedBrowser struct {
	mu       sync.Mutex
	attempts []attemptScript
	opened   int
	closed   int
	timeouts []time.Duration
}

type attemptScript struct {
	navigateErr error
	waitErr     error
	html        string
}

func (b *scriptedBrowser) NewPage(context.Context) (browser.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s := b.attempts[len(b.attempts)-1]
	if b.opened < len(b.attempts) {
		s = b.attempts[b.opened]
	}
	b.opened++

	return &scriptedPage{b: b, script: s}, nil
}

func (b *scriptedBrowser) Close() error { return nil }

type scriptedPage struct {
	b      *scriptedBrowser
	script attemptScript
}

func (p *scriptedPage) Navigate(_ context.Context, _ string, timeout time.Duration) error {
	p.b.mu.Lock()
	p.b.timeouts = append(p.b.timeouts, timeout)
	p.b.mu.Unlock()
	return p.script.navigateErr
}

func (p *scriptedPage) WaitSelector(context.Context, string, time.Duration) error {
	return p.script.waitErr
}

func (p *scriptedPage) TextVisible(context.Context, string, string) (bool, error) { return false, nil }
func (p *scriptedPage) ClickText(context.Context, string, string) (bool, error)   { return false, nil }

func (p *scriptedPage) Attribute(context.Context, string, string) (string, bool, error) {
	return "", false, nil
}

func (p *scriptedPage) Evaluate(context.Context, string, any) error { return nil }

func (p *scriptedPage) OuterHTML(context.Context, string) (string, error) {
	return p.script.html, nil
}

func (p *scriptedPage) Close() error {
	p.b.mu.Lock()
	p.b.closed++
	p.b.mu.Unlock()
	return nil
}

func testExtractor(b browser.Browser) *Extractor {
	e := New(providers.WeTriedTLS(), b, ui.NewNopLogger(), 3)
	e.retryDelay = 0
	return e
}

func TestExtractRetriesWithLongerTimeout(t *testing.T) {
	b := &scriptedBrowser{attempts: []attemptScript{
		{navigateErr: fmt.Errorf("%w: navigation", browser.ErrTimeout)},
		{waitErr: browser.ErrTimeout},
		{html: readerPage("<p>Chapter 2: Roots</p>", "<p>Body.</p>")},
	}}

	recs, err := testExtractor(b).Extract(context.Background(), Job{URL: "https://x/chapter-2", Slug: "chapter-2"})
	require.NoError(t, err)
	require.Len(t, recs, 1)

	assert.Equal(t, "Chapter 2: Roots", recs[0].Content.Title)
	assert.Equal(t, 3, b.opened)
	assert.Equal(t, 3, b.closed)
	assert.Equal(t, []time.Duration{30 * time.Second, 40 * time.Second, 50 * time.Second}, b.timeouts)
}

func TestExtractGivesUp(t *testing.T) {
	b := &scriptedBrowser{attempts: []attemptScript{
		{html: "<html><body><p>blocked</p></body></html>"},
	}}

	_, err := testExtractor(b).Extract(context.Background(), Job{URL: "https://x/chapter-2", Slug: "chapter-2"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrReaderMissing))
	assert.Equal(t, 3, b.opened)
}

func TestExtractStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b := &scriptedBrowser{attempts: []attemptScript{{navigateErr: errors.New("boom")}}}

	_, err := testExtractor(b).Extract(ctx, Job{URL: "https://x/chapter-2", Slug: "chapter-2"})
	require.Error(t, err)
	assert.LessOrEqual(t, b.opened, 1)
}
