// Package extract turns a rendered chapter page into clean, typeset
// content records.
package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/brogergvhs/noveld/internal/browser"
	"github.com/brogergvhs/noveld/internal/index"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/ui"
)

// ErrReaderMissing means the page rendered without a reader container.
var ErrReaderMissing = errors.New("extract: reader container missing")

const DefaultAttempts = 3

// Job is one chapter page to fetch.
type Job struct {
	URL       string
	Slug      string
	TitleHint string
}

// Record is one extracted chapter. The split page yields two.
type Record struct {
	Slug    string
	Content index.Content
}

type Extractor struct {
	site     providers.Site
	browser  browser.Browser
	log      *ui.Logger
	attempts int

	navTimeout time.Duration
	navStep    time.Duration
	readerWait time.Duration
	retryDelay time.Duration
}

func New(site providers.Site, b browser.Browser, log *ui.Logger, attempts int) *Extractor {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if log == nil {
		log = ui.NewNopLogger()
	}

	return &Extractor{
		site:       site,
		browser:    b,
		log:        log,
		attempts:   attempts,
		navTimeout: 30 * time.Second,
		navStep:    10 * time.Second,
		readerWait: 10 * time.Second,
		retryDelay: 500 * time.Millisecond,
	}
}

// Extract fetches and parses one chapter. Every attempt runs in a fresh
// tab with a longer navigation timeout than the one before.
func (e *Extractor) Extract(ctx context.Context, job Job) ([]Record, error) {
	attempt := 0

	records, err := retry.DoWithData(
		func() ([]Record, error) {
			n := attempt
			attempt++

			if n == 0 {
				e.log.Debugf("Generating %s", job.Slug)
			} else {
				e.log.Infof("Retrying %s (attempt %d)", job.Slug, n+1)
			}

			return e.attempt(ctx, job, n)
		},
		retry.Context(ctx),
		retry.Attempts(uint(e.attempts)),
		retry.Delay(e.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			switch {
			case errors.Is(err, browser.ErrTimeout):
				e.log.Warnf("Timeout on chapter %s, attempt %d", job.Slug, n+1)
			case errors.Is(err, ErrReaderMissing):
				e.log.Warnf("No reader on chapter %s, attempt %d", job.Slug, n+1)
			default:
				e.log.Warnf("Error on chapter %s: %v", job.Slug, err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("extract %s after %d attempt(s): %w", job.Slug, attempt, err)
	}

	return records, nil
}

func (e *Extractor) attempt(ctx context.Context, job Job, n int) ([]Record, error) {
	page, err := e.browser.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer page.Close()

	timeout := e.navTimeout + time.Duration(n)*e.navStep
	if err := page.Navigate(ctx, job.URL, timeout); err != nil {
		return nil, fmt.Errorf("navigate %s: %w", job.URL, err)
	}

	if _, err := browser.DismissOverlay(ctx, page, e.site.OverlayButton, e.site.OverlayPattern, false); err != nil {
		e.log.Debugf("Overlay on %s: %v", job.Slug, err)
	}

	if err := page.WaitSelector(ctx, e.site.ReaderContainer, e.readerWait); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReaderMissing, err)
	}

	doc, err := page.OuterHTML(ctx, "html")
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", job.URL, err)
	}

	return Parse(e.site, job, doc)
}
