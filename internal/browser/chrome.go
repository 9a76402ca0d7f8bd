package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const defaultActionTimeout = 15 * time.Second

type Options struct {
	Headless  bool
	UserAgent string
	// Cookie is sent as a Cookie header by every tab.
	Cookie string
	Logf   func(format string, args ...any)
}

// Chrome is a running headless Chrome whose tabs share one browser context.
type Chrome struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	headers     network.Headers
}

func Launch(ctx context.Context, opts Options) (*Chrome, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("blink-settings", "imagesEnabled=false"),
		chromedp.WindowSize(1366, 900),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	// the browser outlives individual requests; only Close stops it
	base := context.WithoutCancel(ctx)
	allocCtx, allocCancel := chromedp.NewExecAllocator(base, allocOpts...)

	logf := opts.Logf
	if logf == nil {
		logf = func(string, ...any) {}
	}
	bctx, cancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(logf))

	// start the browser process
	if err := chromedp.Run(bctx); err != nil {
		cancel()
		allocCancel()
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	c := &Chrome{ctx: bctx, cancel: cancel, allocCancel: allocCancel}
	if opts.Cookie != "" {
		c.headers = network.Headers{"Cookie": opts.Cookie}
	}

	return c, nil
}

func (c *Chrome) NewPage(ctx context.Context) (Page, error) {
	if c.ctx.Err() != nil {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var setup []chromedp.Action
	if len(c.headers) > 0 {
		setup = append(setup, network.Enable(), network.SetExtraHTTPHeaders(c.headers))
	}

	tctx, cancel := chromedp.NewContext(c.ctx)
	if err := chromedp.Run(tctx, setup...); err != nil {
		cancel()
		return nil, fmt.Errorf("open tab: %w", err)
	}

	return &tab{ctx: tctx, cancel: cancel}, nil
}

func (c *Chrome) Close() error {
	c.cancel()
	c.allocCancel()
	return nil
}

type tab struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// run executes actions on the tab, bounded by timeout and by the caller's
// ctx. Cancelling the derived context aborts the actions without closing
// the tab.
func (t *tab) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	rctx, cancel := context.WithTimeout(t.ctx, timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(rctx, actions...)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(rctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return err
}

func (t *tab) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	return t.run(ctx, timeout, chromedp.Navigate(url))
}

func (t *tab) WaitSelector(ctx context.Context, selector string, timeout time.Duration) error {
	return t.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
}

func (t *tab) TextVisible(ctx context.Context, selector, pattern string) (bool, error) {
	return t.findText(ctx, selector, pattern, false)
}

func (t *tab) ClickText(ctx context.Context, selector, pattern string) (bool, error) {
	return t.findText(ctx, selector, pattern, true)
}

func (t *tab) findText(ctx context.Context, selector, pattern string, click bool) (bool, error) {
	script, err := textScript(selector, pattern, click)
	if err != nil {
		return false, err
	}

	var found bool
	if err := t.run(ctx, defaultActionTimeout, chromedp.Evaluate(script, &found)); err != nil {
		return false, err
	}

	return found, nil
}

func (t *tab) Attribute(ctx context.Context, selector, name string) (string, bool, error) {
	sel, _ := json.Marshal(selector)
	attr, _ := json.Marshal(name)

	script := fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	if (!el) return {value: "", ok: false};
	const v = el.getAttribute(%s);
	return v === null ? {value: "", ok: false} : {value: v, ok: true};
})()`, sel, attr)

	var res struct {
		Value string `json:"value"`
		OK    bool   `json:"ok"`
	}
	if err := t.run(ctx, defaultActionTimeout, chromedp.Evaluate(script, &res)); err != nil {
		return "", false, err
	}

	return res.Value, res.OK, nil
}

func (t *tab) Evaluate(ctx context.Context, script string, out any) error {
	return t.run(ctx, defaultActionTimeout, chromedp.Evaluate(script, out))
}

func (t *tab) OuterHTML(ctx context.Context, selector string) (string, error) {
	var html string
	if err := t.run(ctx, defaultActionTimeout, chromedp.OuterHTML(selector, &html, chromedp.ByQuery)); err != nil {
		return "", err
	}

	return html, nil
}

func (t *tab) Close() error {
	t.cancel()
	return nil
}

// textScript builds the in-page lookup used by TextVisible and ClickText.
func textScript(selector, pattern string, click bool) (string, error) {
	source, flags := jsRegexp(pattern)

	sel, err := json.Marshal(selector)
	if err != nil {
		return "", err
	}
	src, err := json.Marshal(source)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`(() => {
	const re = new RegExp(%s, %q);
	for (const el of document.querySelectorAll(%s)) {
		const text = (el.innerText || el.textContent || "").trim();
		if (!re.test(text)) continue;
		const rect = el.getBoundingClientRect();
		const style = window.getComputedStyle(el);
		if (rect.width === 0 || rect.height === 0 || style.visibility === "hidden" || style.display === "none") continue;
		if (%t) el.click();
		return true;
	}
	return false;
})()`, src, flags, sel, click), nil
}

// jsRegexp converts a Go pattern with an optional leading (?i) into a
// JavaScript source/flags pair.
func jsRegexp(pattern string) (string, string) {
	if rest, ok := strings.CutPrefix(pattern, "(?i)"); ok {
		return rest, "i"
	}

	return pattern, ""
}
