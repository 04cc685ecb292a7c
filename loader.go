package sketch

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/gogpu/sketch/internal/parallel"
)

// LoaderOption configures a Loader.
type LoaderOption func(*loaderOptions)

type loaderOptions struct {
	workers int
}

// WithWorkers sets the number of goroutines that build geometry.
// Zero or less uses GOMAXPROCS.
func WithWorkers(n int) LoaderOption {
	return func(o *loaderOptions) {
		o.workers = n
	}
}

// LoadStats summarizes a Load call.
type LoadStats struct {
	// Created strokes got geometry.
	Created int
	// Skipped strokes use a brush missing from the catalog and stay
	// NotCreated.
	Skipped int
	// Rejected strokes had no control points and were not added.
	Rejected int
	// Failed strokes were added to the ledger but their geometry could not
	// be built.
	Failed   int
	Duration time.Duration
}

// Loader adds stored strokes to a ledger and builds their geometry in
// parallel.
type Loader struct {
	pointer *Pointer
	ledger  *Ledger
	pool    *parallel.WorkerPool
}

// NewLoader returns a loader that builds through p and records into l.
// Close releases its goroutines.
func NewLoader(p *Pointer, l *Ledger, opts ...LoaderOption) *Loader {
	var o loaderOptions
	for _, opt := range opts {
		opt(&o)
	}
	return &Loader{
		pointer: p,
		ledger:  l,
		pool:    parallel.NewWorkerPool(o.workers),
	}
}

// Close stops the loader's workers.
func (ld *Loader) Close() { ld.pool.Close() }

// Load adds strokes to the ledger in head-timestamp order and recreates the
// NotCreated ones. Cancellation is checked between strokes; strokes not
// reached stay NotCreated in the ledger.
//
// The returned error joins the per-stroke build failures and ctx's error.
// Empty strokes are counted as rejected and do not make Load fail.
func (ld *Loader) Load(ctx context.Context, strokes []*Stroke) (LoadStats, error) {
	start := time.Now()
	var stats LoadStats

	ordered := slices.Clone(strokes)
	slices.SortStableFunc(ordered, func(a, b *Stroke) int {
		return cmp.Compare(a.HeadTimestampMs(), b.HeadTimestampMs())
	})

	pending := ordered[:0]
	for _, s := range ordered {
		if err := ld.ledger.Add(s); err != nil {
			if errors.Is(err, ErrEmptyStroke) {
				stats.Rejected++
				continue
			}
			return stats, err
		}
		if s.Type == NotCreated {
			pending = append(pending, s)
		}
	}

	var created, skipped, failed atomic.Int64
	err := ld.pool.ForEach(ctx, len(pending), func(_ context.Context, i int) error {
		s := pending[i]
		if err := ld.pointer.RecreateLineFromMemory(s); err != nil {
			failed.Add(1)
			return fmt.Errorf("load stroke %s: %w", s.GUID, err)
		}
		if s.Type == NotCreated {
			skipped.Add(1)
		} else {
			created.Add(1)
		}
		return nil
	})

	stats.Created = int(created.Load())
	stats.Skipped = int(skipped.Load())
	stats.Failed = int(failed.Load())
	stats.Duration = time.Since(start)
	Logger().Info("sketch: load finished",
		"created", stats.Created, "skipped", stats.Skipped,
		"rejected", stats.Rejected, "failed", stats.Failed,
		"duration", stats.Duration)
	return stats, err
}
