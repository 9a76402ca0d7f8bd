// Package browser drives a headless Chrome through chromedp. Callers depend
// on the Browser and Page interfaces so the crawl and extraction logic can
// run against scripted pages in tests.
package browser

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrTimeout is returned when a navigation or wait exceeds its own
	// timeout while the caller's context is still alive.
	ErrTimeout = errors.New("browser: timeout")

	ErrClosed = errors.New("browser: closed")
)

// Page is one isolated tab.
type Page interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	WaitSelector(ctx context.Context, selector string, timeout time.Duration) error

	// TextVisible reports whether an element matching selector whose
	// rendered text matches pattern is visible. Patterns use Go regexp
	// syntax; a leading (?i) is honoured.
	TextVisible(ctx context.Context, selector, pattern string) (bool, error)
	// ClickText clicks the first visible element TextVisible would find.
	// It returns false when there is none.
	ClickText(ctx context.Context, selector, pattern string) (bool, error)

	Attribute(ctx context.Context, selector, name string) (string, bool, error)
	Evaluate(ctx context.Context, script string, out any) error
	OuterHTML(ctx context.Context, selector string) (string, error)

	Close() error
}

// Browser hands out pages that share one browsing session.
type Browser interface {
	NewPage(ctx context.Context) (Page, error)
	Close() error
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// WaitText polls until the text element reaches the wanted visibility or
// timeout elapses.
func WaitText(ctx context.Context, p Page, selector, pattern string, visible bool, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		ok, err := p.TextVisible(ctx, selector, pattern)
		if err != nil {
			return err
		}
		if ok == visible {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrTimeout
		}
		if err := Sleep(ctx, 250*time.Millisecond); err != nil {
			return err
		}
	}
}

// DismissOverlay clicks the consent/interstitial button. With wait set it
// blocks until the button shows (or times out), clicks it and waits for it
// to go away; otherwise it only clicks a button that is already visible.
// It is best-effort: the returned bool tells whether a click happened and
// errors are left to the caller to log.
func DismissOverlay(ctx context.Context, p Page, selector, pattern string, wait bool) (bool, error) {
	if wait {
		if err := WaitText(ctx, p, selector, pattern, true, 5*time.Second); err != nil {
			return false, err
		}
	}

	clicked, err := p.ClickText(ctx, selector, pattern)
	if err != nil || !clicked {
		return false, err
	}

	if wait {
		if err := WaitText(ctx, p, selector, pattern, false, 5*time.Second); err != nil {
			return true, err
		}
	}

	return true, nil
}
