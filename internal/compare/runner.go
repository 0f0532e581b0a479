package compare

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"rgcompare/internal/library"
	"rgcompare/internal/logger"
	"rgcompare/internal/probe"
	"rgcompare/internal/replaygain"
)

// Outcome is the probe result for one matched pair.
type Outcome struct {
	Pair   library.Pair
	First  replaygain.Tags
	Second replaygain.Tags
	Err    error
}

// Runner probes matched pairs on a fixed pool of workers.
type Runner struct {
	Prober     probe.Prober
	Workers    int
	Logger     *logger.Logger
	OnProgress func() // called once per finished pair
}

// NewRunner creates a Runner. workers <= 0 uses the number of CPUs.
func NewRunner(p probe.Prober, workers int, log *logger.Logger) *Runner {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Runner{
		Prober:  p,
		Workers: workers,
		Logger:  log,
	}
}

// Run probes both files of every pair. Outcomes are returned in the order of
// pairs regardless of which worker finished first. Pairs that were not
// started before ctx was cancelled carry ctx's error.
func (r *Runner) Run(ctx context.Context, pairs []library.Pair) []Outcome {
	outcomes := make([]Outcome, len(pairs))
	if len(pairs) == 0 {
		return outcomes
	}

	workers := r.Workers
	if workers > len(pairs) {
		workers = len(pairs)
	}

	r.Logger.Debug("Probing %d pairs with %d workers using %s", len(pairs), workers, r.Prober.Name())

	jobs := make(chan int)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for idx := range jobs {
				outcomes[idx] = r.probePair(ctx, pairs[idx])
				if r.OnProgress != nil {
					r.OnProgress()
				}
			}
		}()
	}

	next := 0
dispatch:
	for ; next < len(pairs); next++ {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for idx := next; idx < len(pairs); idx++ {
		outcomes[idx] = Outcome{Pair: pairs[idx], Err: fmt.Errorf("not probed: %w", ctx.Err())}
	}

	return outcomes
}

func (r *Runner) probePair(ctx context.Context, pair library.Pair) Outcome {
	out := Outcome{Pair: pair}

	first, err := r.Prober.Probe(ctx, pair.First)
	if err != nil {
		out.Err = err
		return out
	}
	second, err := r.Prober.Probe(ctx, pair.Second)
	if err != nil {
		out.Err = err
		return out
	}

	out.First, out.Second = first, second
	return out
}
