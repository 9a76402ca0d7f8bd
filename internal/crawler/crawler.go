// Package crawler walks the paginated chapter listing of the series page and
// merges what it finds into the chapter index.
package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/brogergvhs/noveld/internal/browser"
	"github.com/brogergvhs/noveld/internal/index"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/ui"
)

// ErrNoChapters means a crawl finished with an empty index.
var ErrNoChapters = errors.New("crawler: no chapters found")

const (
	DefaultMaxPages      = 40
	DefaultSettleRetries = 5

	listingTimeout = 30 * time.Second
	coverWait      = 10 * time.Second
	tabWait        = 20 * time.Second
	settleDelay    = time.Second
	stallDelay     = 2 * time.Second
)

// StopReason tells why pagination ended.
type StopReason string

const (
	StopCaughtUp    StopReason = "all chapters on page already known"
	StopEmptyPage   StopReason = "empty page"
	StopNoNext      StopReason = "no next page control"
	StopClickFailed StopReason = "pagination click failed"
	StopMaxPages    StopReason = "page limit reached"
	StopCancelled   StopReason = "cancelled"
)

type Report struct {
	Pages    int
	Links    int
	New      []string
	Upgraded []string
	Cover    string
	Stop     StopReason
}

type Crawler struct {
	site          providers.Site
	log           *ui.Logger
	maxPages      int
	settleRetries int

	sleep func(ctx context.Context, d time.Duration) error
}

func New(site providers.Site, log *ui.Logger, maxPages int) *Crawler {
	if maxPages <= 0 {
		maxPages = DefaultMaxPages
	}
	if log == nil {
		log = ui.NewNopLogger()
	}

	return &Crawler{
		site:          site,
		log:           log,
		maxPages:      maxPages,
		settleRetries: DefaultSettleRetries,
		sleep:         browser.Sleep,
	}
}

// pageResult is what one listing page contributed.
type pageResult struct {
	first    string // first listed slug, paid or not
	valid    int
	allKnown bool
}

// Sync loads the series page, walks the listing newest first and returns
// the existing index merged with everything found. existing is not
// modified. Only a listing page that cannot be loaded is an error;
// everything else degrades to warnings and an early stop.
func (c *Crawler) Sync(ctx context.Context, page browser.Page, existing *index.Index, force bool) (*index.Index, Report, error) {
	var rep Report
	acc := index.NewAccumulator(existing)

	listing := c.site.SeriesURL()
	if err := page.Navigate(ctx, listing, listingTimeout); err != nil {
		return nil, rep, fmt.Errorf("load listing %s: %w", listing, err)
	}

	c.dismissOverlay(ctx, page, true)

	rep.Cover = c.readCover(ctx, page)
	acc.SetCover(rep.Cover)

	c.openChapterList(ctx, page)

	prevFirst := ""
	rep.Stop = StopMaxPages

	for num := 1; num <= c.maxPages; num++ {
		if ctx.Err() != nil {
			rep.Stop = StopCancelled
			break
		}

		res, err := c.settle(ctx, page, acc, prevFirst, num)
		if err != nil {
			if ctx.Err() != nil {
				rep.Stop = StopCancelled
				break
			}
			c.log.Warnf("Reading listing page %d failed: %v", num, err)
			rep.Stop = StopEmptyPage
			break
		}

		rep.Pages++
		rep.Links += res.valid
		prevFirst = res.first

		if res.valid > 0 {
			c.log.Infof("Found %d chapter links on page %d", res.valid, num)
		}

		if res.valid > 0 && res.allKnown && !force {
			rep.Stop = StopCaughtUp
			break
		}
		if res.valid == 0 {
			if num > 1 {
				rep.Stop = StopEmptyPage
				break
			}
			c.log.Warnf("No chapters found on page 1. The page might still be loading or blocked.")
		}

		if num == c.maxPages {
			break
		}

		moved, err := c.advance(ctx, page, num+1)
		if err != nil {
			c.log.Warnf("Could not go to page %d: %v", num+1, err)
			c.dismissOverlay(ctx, page, true)
			rep.Stop = StopClickFailed
			break
		}
		if !moved {
			rep.Stop = StopNoNext
			break
		}
	}

	rep.New = acc.Fresh()
	rep.Upgraded = acc.Upgraded()

	c.log.Debugf("Listing crawl stopped after %d page(s): %s", rep.Pages, rep.Stop)

	return acc.Index(), rep, nil
}

type pageState int

const (
	loading pageState = iota
	stalled
	settled
)

// settle reads the current page until its content differs from the
// previous page or the retry budget runs out, then merges it.
func (c *Crawler) settle(ctx context.Context, page browser.Page, acc *index.Accumulator, prevFirst string, num int) (pageResult, error) {
	var (
		links   []Link
		retries int
		err     error
	)

	for state := loading; state != settled; {
		links, err = c.links(ctx, page)
		if err != nil {
			return pageResult{}, err
		}

		first := c.firstSlug(links)
		if prevFirst != "" && first == prevFirst && retries < c.settleRetries {
			state = stalled
			retries++
			c.log.Debugf("Page %d has not changed yet, waiting (%d/%d)", num, retries, c.settleRetries)
			if err := c.sleep(ctx, stallDelay); err != nil {
				return pageResult{}, err
			}
			continue
		}

		state = settled
	}

	return c.merge(acc, links), nil
}

func (c *Crawler) merge(acc *index.Accumulator, links []Link) pageResult {
	res := pageResult{first: c.firstSlug(links), allKnown: true}

	for _, l := range links {
		slug := providers.SlugOf(l.Href)
		if !c.validSlug(slug) || c.site.IsPaid(l.Text) {
			continue
		}

		title, date := ParseListing(c.site, l.Text)
		if title == "" {
			title = slug
		}

		out := acc.Add(index.Stub{
			URL:         c.site.Absolute(l.Href),
			Title:       title,
			ReleaseDate: date,
			Slug:        slug,
		})
		if out == index.Upgraded {
			c.log.Debugf("Updated title for %s: %q", slug, title)
		}

		res.valid++
		if acc.IsNew(slug) {
			res.allKnown = false
		}
	}

	return res
}

func (c *Crawler) validSlug(slug string) bool {
	return slug != "" && slug != c.site.SeriesSlug
}

func (c *Crawler) firstSlug(links []Link) string {
	for _, l := range links {
		if slug := providers.SlugOf(l.Href); c.validSlug(slug) {
			return slug
		}
	}

	return ""
}

func (c *Crawler) links(ctx context.Context, page browser.Page) ([]Link, error) {
	sel, err := json.Marshal(c.site.ChapterLinkSelector())
	if err != nil {
		return nil, err
	}

	script := fmt.Sprintf(`Array.from(document.querySelectorAll(%s)).map(a => ({
	href: a.getAttribute("href") || "",
	text: a.innerText || a.textContent || ""
}))`, sel)

	var links []Link
	if err := page.Evaluate(ctx, script, &links); err != nil {
		return nil, fmt.Errorf("read chapter links: %w", err)
	}

	return links, nil
}

func (c *Crawler) advance(ctx context.Context, page browser.Page, next int) (bool, error) {
	ok, err := page.ClickText(ctx, "li a, li button, button", fmt.Sprintf(`^%d$`, next))
	if err != nil {
		return false, err
	}

	if !ok {
		ok, err = page.ClickText(ctx, "li a, li button, button, a", `(?i)^>$|Next`)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, c.sleep(ctx, settleDelay)
}

func (c *Crawler) readCover(ctx context.Context, page browser.Page) string {
	if err := page.WaitSelector(ctx, c.site.CoverWait, coverWait); err != nil {
		c.log.Debugf("Cover image did not show up: %v", err)
	}

	src, ok, err := page.Attribute(ctx, c.site.CoverSlot, "src")
	if err != nil || !ok || src == "" {
		c.log.Warnf("Cover image not found on the series page")
		return ""
	}

	cover := CoverURL(c.site, src)
	c.log.Debugf("Cover image: %s", cover)

	return cover
}

func (c *Crawler) openChapterList(ctx context.Context, page browser.Page) {
	clicked, err := page.ClickText(ctx, c.site.ChaptersTab, c.site.ChaptersTabPattern)
	if err != nil || !clicked {
		c.log.Warnf("Could not open the chapters list tab (err=%v)", err)
		return
	}

	if err := page.WaitSelector(ctx, c.site.ChapterLinkSelector(), tabWait); err != nil {
		c.log.Warnf("Chapter links did not load: %v", err)
		return
	}

	_ = c.sleep(ctx, settleDelay)
}

func (c *Crawler) dismissOverlay(ctx context.Context, page browser.Page, wait bool) {
	clicked, err := browser.DismissOverlay(ctx, page, c.site.OverlayButton, c.site.OverlayPattern, wait)
	if err != nil {
		c.log.Debugf("Overlay: %v", err)
		return
	}
	if clicked {
		c.log.Debugf("Dismissed overlay")
	}
}

