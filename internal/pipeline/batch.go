package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// runBatches dispatches tasks to the external backend in fixed-size
// batches of concurrent workers. Batch starts are paced through a token
// bucket refilling once per interval, the backpressure mechanism against
// provider rate limits. A canceled context stops new batches from being
// dispatched; workers already in flight are allowed to drain.
func runBatches(ctx context.Context, log *slog.Logger, tasks []vlmTask, batchSize int, interval time.Duration, process func(context.Context, vlmTask) error) (success, failed int) {
	if batchSize <= 0 {
		batchSize = 1
	}
	every := rate.Inf
	if interval > 0 {
		every = rate.Every(interval)
	}
	limiter := rate.NewLimiter(every, 1)

	batches := (len(tasks) + batchSize - 1) / batchSize
	for start := 0; start < len(tasks); start += batchSize {
		if err := limiter.Wait(ctx); err != nil {
			log.Warn("pipeline.batch.interrupted",
				"dispatched", start,
				"remaining", len(tasks)-start,
			)
			failed += len(tasks) - start
			break
		}

		end := min(start+batchSize, len(tasks))
		batch := tasks[start:end]
		log.Info("pipeline.batch.start",
			"batch", start/batchSize+1,
			"batches", batches,
			"size", len(batch),
		)

		errs := make([]error, len(batch))
		var wg sync.WaitGroup
		for i := range batch {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				// Detached from the interrupt signal so an in-flight
				// request drains instead of aborting mid-write; the HTTP
				// client timeout still bounds it.
				errs[i] = process(context.WithoutCancel(ctx), batch[i])
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				failed++
			} else {
				success++
			}
		}
	}
	return success, failed
}
