// Package fetcher decides which chapters still need fetching and runs the
// extraction for them on a bounded pool of workers.
package fetcher

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/brogergvhs/noveld/internal/extract"
	"github.com/brogergvhs/noveld/internal/index"
	"github.com/brogergvhs/noveld/internal/ui"
)

const DefaultWorkers = 10

type Extractor interface {
	Extract(ctx context.Context, job extract.Job) ([]extract.Record, error)
}

// ContentSaver persists the whole content table.
type ContentSaver interface {
	SaveContents(index.Contents) error
}

type Pool struct {
	ext     Extractor
	store   ContentSaver
	log     *ui.Logger
	workers int

	Progress *ui.MPBProgressManager
	Stats    *ui.Stats

	mu       sync.Mutex
	contents index.Contents
}

type Result struct {
	Fetched    []string
	Failed     []string
	SaveErrors int
	Cancelled  bool
}

func NewPool(ext Extractor, store ContentSaver, contents index.Contents, log *ui.Logger, workers int) *Pool {
	if workers < 1 {
		workers = DefaultWorkers
	}
	if contents == nil {
		contents = index.Contents{}
	}
	if log == nil {
		log = ui.NewNopLogger()
	}

	return &Pool{
		ext:      ext,
		store:    store,
		log:      log,
		workers:  workers,
		contents: contents,
	}
}

// Contents returns the content table. Do not call it while Run is active.
func (p *Pool) Contents() index.Contents {
	return p.contents
}

// Run extracts every job and saves the content table after each success.
// Cancelling ctx stops handing out jobs; jobs already started run to
// completion.
func (p *Pool) Run(ctx context.Context, jobs []extract.Job) Result {
	var res Result
	if len(jobs) == 0 {
		return res
	}

	workers := min(p.workers, len(jobs))
	sem := semaphore.NewWeighted(int64(workers))

	var ph *ui.ProgressHandle
	if p.Progress != nil {
		ph = p.Progress.Register("Chapters", len(jobs))
	}

	var resMu sync.Mutex
	queue := make(chan extract.Job)
	var wg sync.WaitGroup

	// started work is not aborted by cancellation
	workCtx := context.WithoutCancel(ctx)

	worker := func() {
		defer wg.Done()
		for job := range queue {
			if err := sem.Acquire(ctx, 1); err != nil {
				return
			}

			ok, saveErr := p.process(workCtx, job)
			sem.Release(1)

			resMu.Lock()
			if ok {
				res.Fetched = append(res.Fetched, job.Slug)
			} else {
				res.Failed = append(res.Failed, job.Slug)
			}
			if saveErr {
				res.SaveErrors++
			}
			resMu.Unlock()

			if ph != nil {
				ph.Done(ok)
			}
		}
	}

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go worker()
	}

feed:
	for _, job := range jobs {
		if ctx.Err() != nil {
			res.Cancelled = true
			break
		}

		select {
		case <-ctx.Done():
			res.Cancelled = true
			break feed
		case queue <- job:
		}
	}

	close(queue)
	wg.Wait()

	if ph != nil {
		ph.MarkDone()
	}

	return res
}

func (p *Pool) process(ctx context.Context, job extract.Job) (ok, saveErr bool) {
	recs, err := p.ext.Extract(ctx, job)
	if err != nil {
		p.log.Errorf("Failed to generate %s: %v", job.Slug, err)
		if p.Stats != nil {
			p.Stats.Failed.Add(1)
		}
		return false, false
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for _, r := range recs {
		p.contents[r.Slug] = r.Content
	}

	if p.Stats != nil {
		p.Stats.Fetched.Add(int64(len(recs)))
	}

	if err := p.store.SaveContents(p.contents); err != nil {
		p.log.Errorf("Saving chapters after %s: %v", job.Slug, err)
		return true, true
	}

	p.log.Debugf("Saved %s", job.Slug)

	return true, false
}
