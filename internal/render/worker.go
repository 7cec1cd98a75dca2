package render

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/folio/internal/reflow"
)

// Worker prerenders the pages of a book job.
type Worker struct {
	renderer      *Renderer
	log           *slog.Logger
	maxConcurrent int
}

func NewWorker(renderer *Renderer, log *slog.Logger, maxConcurrent int) *Worker {
	return &Worker{
		renderer:      renderer,
		log:           log,
		maxConcurrent: max(maxConcurrent, 1),
	}
}

// Process renders every page of the job's book with bounded concurrency.
// Pages that fail are recorded on the job; the others still land in the
// render cache.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "book", job.Book)
	job.SetStatus(StatusRendering, "rendering")

	total := job.TotalPages()
	type pageResult struct {
		page  int
		stats reflow.Stats
		err   error
	}
	results := make(chan pageResult, total)
	sem := make(chan struct{}, w.maxConcurrent)

	for n := range total {
		sem <- struct{}{}
		go func(n int) {
			defer func() { <-sem }()
			if err := ctx.Err(); err != nil {
				results <- pageResult{page: n, err: err}
				return
			}
			res, err := w.renderer.Render(ctx, job.Book, n)
			if err != nil {
				results <- pageResult{page: n, err: err}
				return
			}
			results <- pageResult{page: n, stats: res.Stats}
		}(n)
	}

	rendered := 0
	for range total {
		r := <-results
		if r.err != nil {
			log.Error("page render failed", "page", r.page, "error", r.err)
			job.AddError(fmt.Sprintf("page %d: %s", r.page, r.err))
			continue
		}
		rendered++
		job.AddPage(r.stats)
	}

	log.Info("prerender complete", "rendered", rendered, "total", total)

	switch {
	case rendered == total:
		job.SetStatus(StatusCompleted, "done")
	case rendered > 0:
		job.SetStatus(StatusPartial, "done")
	default:
		job.SetStatus(StatusFailed, "rendering")
	}
}
