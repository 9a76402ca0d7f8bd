package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brogergvhs/noveld/internal/browser"
	"github.com/brogergvhs/noveld/internal/chapters"
	"github.com/brogergvhs/noveld/internal/config"
	"github.com/brogergvhs/noveld/internal/crawler"
	"github.com/brogergvhs/noveld/internal/epub"
	"github.com/brogergvhs/noveld/internal/extract"
	"github.com/brogergvhs/noveld/internal/fetcher"
	"github.com/brogergvhs/noveld/internal/index"
	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/ui"
	"github.com/brogergvhs/noveld/internal/util"

	"github.com/spf13/cobra"
)

var (
	// selection
	flagForce  bool
	flagRange  string
	flagDryRun bool

	// runtime
	flagWorkers  int
	flagMaxPages int
	flagAttempts int
	flagDataDir  string
	flagOutput   string
	flagHeadful  bool

	// headers/auth
	flagCookie     string
	flagCookieFile string
	flagUserAgent  string
)

func init() {
	harvestCmd := &cobra.Command{
		Use:   "harvest [positions...]",
		Short: "Sync the chapter index, fetch missing chapters and build the EPUB. Uses the defaults from the selected config, overwritten by CLI flags",
		RunE:  runHarvest,
	}

	// selection
	harvestCmd.Flags().BoolVar(&flagForce, "force", false, "rescan the whole listing and refetch every selected chapter")
	harvestCmd.Flags().StringVar(&flagRange, "range", "", "restrict fetching to a range of 0-based positions (e.g. 800-810)")
	harvestCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "sync the index and show what would be fetched, don’t fetch")

	// runtime
	harvestCmd.Flags().IntVar(&flagWorkers, "workers", 0, "parallel chapter pages (default 10)")
	harvestCmd.Flags().IntVar(&flagMaxPages, "max-pages", 0, "listing pages to scan at most (default 40)")
	harvestCmd.Flags().IntVar(&flagAttempts, "attempts", 0, "attempts per chapter page (default 3)")
	harvestCmd.Flags().StringVar(&flagDataDir, "data-dir", "", "folder holding metadata.json, chapters.json and the cover")
	harvestCmd.Flags().StringVar(&flagOutput, "output", "", "EPUB file, or folder to write it into")
	harvestCmd.Flags().BoolVar(&flagHeadful, "headful", false, "show the browser window")

	// headers/auth
	harvestCmd.Flags().StringVar(&flagCookie, "cookie", "", "cookie string sent with every request, e.g. \"key=value; other=123\"")
	harvestCmd.Flags().StringVar(&flagCookieFile, "cookie-file", "", "path to a text file with cookies (one header line)")
	harvestCmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "override User-Agent")

	rootCmd.AddCommand(harvestCmd)
}

func runHarvest(cmd *cobra.Command, args []string) error {
	cfg, usedPath, err := config.LoadMerged(config.Options{
		IgnoreConfig: flagIgnoreConfig,
		Debug:        flagDebug,
		DataDir:      flagDataDir,
		Output:       flagOutput,
		Workers:      flagWorkers,
		MaxPages:     flagMaxPages,
		Attempts:     flagAttempts,
		Headful:      flagHeadful,
		Cookie:       flagCookie,
		CookieFile:   flagCookieFile,
		UserAgent:    flagUserAgent,
	})
	if err != nil {
		return err
	}

	sel, err := chapters.ParseSelection(args, flagRange)
	if err != nil {
		return err
	}

	logSvc := ui.NewLogger(cfg.Debug)
	defer logSvc.Sync()

	if usedPath != "" {
		fmt.Printf("Config file: %s\n", usedPath)
	}
	fmt.Println("Full config:")
	cfg.Print()
	fmt.Println()

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("cannot create data folder: %w", err)
	}

	site := providers.WeTriedTLS()
	store := index.NewStore(cfg.DataDir)
	stats := &ui.Stats{}
	start := time.Now()

	ctx, stop := util.SetupInterruptHandler(cmd.Context(), cfg.DataDir)
	defer stop()

	existing, err := store.LoadIndex()
	if err != nil {
		return err
	}

	ua := util.PickUserAgent(cfg.UserAgent)
	chrome, err := browser.Launch(ctx, browser.Options{
		Headless:  cfg.Headless,
		UserAgent: ua,
		Cookie:    util.CookieHeader(cfg.Cookie, cfg.CookieFile),
		Logf:      logSvc.Debugf,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = chrome.Close()
	}()

	ix, err := syncIndex(ctx, chrome, site, store, existing, cfg, logSvc, stats)
	if err != nil {
		return err
	}

	contents, err := store.LoadContents()
	if err != nil {
		return err
	}

	if synced := fetcher.SyncTitles(ix, contents, site); len(synced) > 0 {
		stats.TitlesSynced.Add(int64(len(synced)))
		if err := store.SaveContents(contents); err != nil {
			logSvc.Errorf("Saving synced titles failed: %v", err)
		} else {
			logSvc.Infof("Updated %d stored chapter titles from the index", len(synced))
		}
	}

	if m := sel.Max(); m >= len(ix.Order) {
		logSvc.Warnf("Position %d is past the last chapter (%d)", m, len(ix.Order)-1)
	}

	jobs := fetcher.BuildQueue(ix, contents, site, sel, flagForce)

	if flagDryRun {
		fmt.Printf("Dry-run: %d of %d chapters pending.\n\n", len(jobs), len(ix.Order))
		for i, j := range jobs {
			fmt.Printf("%3d) %s  [%s]\n    %s\n", i+1, j.TitleHint, j.Slug, j.URL)
		}
		return nil
	}

	if len(jobs) > 0 {
		contents = fetchChapters(ctx, chrome, site, store, contents, jobs, cfg, logSvc, stats)
	} else {
		logSvc.Infof("All chapters already fetched")
	}

	coverPath := ensureCover(ctx, ix, cfg, ua, logSvc)

	docs := epub.Assemble(ix, contents, site)
	if len(docs) == 0 {
		return errors.New("no chapter content to write")
	}

	out := outputPath(cfg.Output, site.Book.Title)
	n, err := epub.NewWriter(site.Book, coverPath, logSvc).Write(out, docs)
	if err != nil {
		return fmt.Errorf("write epub: %w", err)
	}
	stats.BookChapters.Store(int64(len(docs)))
	stats.BookBytes.Store(n)

	fmt.Println()
	fmt.Println("Harvest Summary:")
	fmt.Printf("Pages scanned:  %d\n", stats.PagesScanned.Load())
	fmt.Printf("New chapters:   %d\n", stats.NewChapters.Load())
	fmt.Printf("Titles updated: %d\n", stats.TitleUpgrades.Load()+stats.TitlesSynced.Load())
	fmt.Printf("Fetched:        %d\n", stats.Fetched.Load())
	fmt.Printf("Failed:         %d\n", stats.Failed.Load())
	fmt.Printf("Book:           %s (%d chapters, %s)\n", out, stats.BookChapters.Load(), util.Human(stats.BookBytes.Load()))
	fmt.Printf("Time:           %s\n", time.Since(start).Round(time.Second))
	fmt.Println("\nAll done.")

	return nil
}

func syncIndex(ctx context.Context, b browser.Browser, site providers.Site, store *index.Store, existing *index.Index, cfg *config.Config, log *ui.Logger, stats *ui.Stats) (*index.Index, error) {
	page, err := b.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = page.Close()
	}()

	log.Infof("Syncing chapter index from %s", site.SeriesURL())

	ix, rep, err := crawler.New(site, log.With("series", site.SeriesSlug), cfg.MaxPages).Sync(ctx, page, existing, flagForce)
	if err != nil {
		return nil, err
	}

	stats.PagesScanned.Add(int64(rep.Pages))
	stats.NewChapters.Add(int64(len(rep.New)))
	stats.TitleUpgrades.Add(int64(len(rep.Upgraded)))

	if len(ix.Order) == 0 {
		return nil, crawler.ErrNoChapters
	}

	if err := store.SaveIndex(ix); err != nil {
		return nil, fmt.Errorf("save index: %w", err)
	}

	log.Infof("Index has %d chapters (%d new, %d titles upgraded)", len(ix.Order), len(rep.New), len(rep.Upgraded))
	return ix, nil
}

func fetchChapters(ctx context.Context, b browser.Browser, site providers.Site, store *index.Store, contents index.Contents, jobs []extract.Job, cfg *config.Config, log *ui.Logger, stats *ui.Stats) index.Contents {
	log.Infof("Fetching %d chapters with %d workers", len(jobs), cfg.Workers)

	pm := ui.NewProgressManager()
	defer pm.Close()

	pool := fetcher.NewPool(extract.New(site, b, log, cfg.Attempts), store, contents, log, cfg.Workers)
	pool.Progress = pm
	pool.Stats = stats

	res := pool.Run(ctx, jobs)
	pm.Close()

	if res.Cancelled {
		log.Warnf("Interrupted: %d chapters were not started", len(jobs)-len(res.Fetched)-len(res.Failed))
	}
	if len(res.Failed) > 0 {
		log.Warnf("Failed chapters: %s", strings.Join(res.Failed, ", "))
	}
	if res.SaveErrors > 0 {
		log.Errorf("%d saves of %s failed", res.SaveErrors, store.ChaptersPath())
	}

	return pool.Contents()
}

// ensureCover returns the local cover path, downloading it first when the
// index knows a cover URL. Failures only cost the cover.
func ensureCover(ctx context.Context, ix *index.Index, cfg *config.Config, ua string, log *ui.Logger) string {
	if ix.CoverImageURL == "" {
		return util.FindCover(cfg.DataDir)
	}

	client, err := util.NewHTTPClient(util.HTTPClientOptions{
		Timeout:     30 * time.Second,
		UserAgent:   ua,
		Cookie:      cfg.Cookie,
		CookieFile:  cfg.CookieFile,
		DebugLogger: log,
	})
	if err != nil {
		log.Warnf("Cover client: %v", err)
		return util.FindCover(cfg.DataDir)
	}

	path, err := util.DownloadCover(ctx, client, ix.CoverImageURL, cfg.DataDir, flagForce)
	if err != nil {
		log.Warnf("Could not download cover: %v", err)
		return util.FindCover(cfg.DataDir)
	}

	log.Debugf("Cover at %s", path)
	return path
}

func outputPath(output, title string) string {
	if strings.EqualFold(filepath.Ext(output), ".epub") {
		return output
	}
	return filepath.Join(output, chapters.BookFileName(title))
}
