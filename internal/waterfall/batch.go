package waterfall

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// BatchOptions tunes batch resolution.
type BatchOptions struct {
	// Concurrency is the number of requests in flight per chunk. Default: 3.
	Concurrency int
	// Pacing is the pause between chunks, to avoid provider throttling.
	// Default: 250ms.
	Pacing time.Duration
}

func (o BatchOptions) withDefaults() BatchOptions {
	if o.Concurrency <= 0 {
		o.Concurrency = 3
	}
	if o.Pacing <= 0 {
		o.Pacing = 250 * time.Millisecond
	}
	return o
}

// ResolveBatch runs the waterfall over a list of requests in chunks of
// opts.Concurrency, waiting for each chunk before starting the next. The
// returned slice is index-aligned with reqs. A failing request is logged
// and yields an empty outcome; it never aborts its siblings.
func ResolveBatch(ctx context.Context, exec *Executor, reqs []Request, opts BatchOptions) ([]*Outcome, error) {
	if len(reqs) == 0 {
		return nil, eris.New("waterfall: empty request batch")
	}
	opts = opts.withDefaults()

	batchID := uuid.NewString()
	log := zap.L().With(zap.String("batch_id", batchID))
	log.Info("resolving batch",
		zap.Int("requests", len(reqs)),
		zap.Int("concurrency", opts.Concurrency),
	)

	results := make([]*Outcome, len(reqs))

	for start := 0; start < len(reqs); start += opts.Concurrency {
		end := min(start+opts.Concurrency, len(reqs))

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				outcome, err := exec.Resolve(gctx, reqs[i])
				if err != nil {
					log.Warn("resolution failed",
						zap.String("person", reqs[i].PersonName),
						zap.Error(err),
					)
					outcome = newOutcome()
				}
				results[i] = outcome
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, eris.Wrap(err, "waterfall: batch chunk")
		}

		if end < len(reqs) {
			if err := sleep(ctx, opts.Pacing); err != nil {
				return nil, eris.Wrap(err, "waterfall: batch cancelled")
			}
		}
	}

	resolved := 0
	for _, o := range results {
		if o.Resolved() {
			resolved++
		}
	}
	log.Info("batch complete",
		zap.Int("resolved", resolved),
		zap.Int("total", len(results)),
	)
	return results, nil
}
