/*
loader.go - Last-request-wins fetch coordination

PURPOSE:
  The fact fetch is the engine's one asynchronous boundary. The user can
  switch leave type or date range while a fetch is in flight; the stale
  result must never overwrite the newer report. An explicit generation
  counter plus context cancellation makes that rule checkable instead of
  relying on ad hoc flags.

GUARANTEES:
  - A new Request supersedes any in-flight fetch: its context is cancelled
    and its result, if it still arrives, is discarded.
  - Only the newest generation ever reaches Reports() or Errors().
  - No delivered report mixes two policies: each fetch carries its own
    (policy, range) and builds its own report.

DELIVERY:
  Reports() and Errors() are capacity-1 channels. An unconsumed stale value
  is dropped when a fresher one lands, so a slow consumer always observes
  the latest state.
*/
package engine

import (
	"context"
	"sync"
)

// =============================================================================
// LOADER
// =============================================================================

// Loader serializes fact fetches for a single selection screen.
// Safe for concurrent use.
type Loader struct {
	builder Builder

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc

	reports chan *EligibilityReport
	errs    chan error
}

// NewLoader creates a loader over the given fact source.
func NewLoader(facts FactSource) *Loader {
	return &Loader{
		builder: Builder{Facts: facts},
		reports: make(chan *EligibilityReport, 1),
		errs:    make(chan error, 1),
	}
}

// Reports delivers freshly built reports, newest only.
func (l *Loader) Reports() <-chan *EligibilityReport { return l.reports }

// Errors delivers fetch failures for the newest generation only.
// Cancellation of a superseded fetch is not reported.
func (l *Loader) Errors() <-chan error { return l.errs }

// Request starts a fetch for (policy, from, to), superseding any fetch still
// in flight. The superseded fetch is cancelled and its result discarded.
func (l *Loader) Request(ctx context.Context, policy PolicyDescriptor, from, to Date) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	if l.cancel != nil {
		l.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.mu.Unlock()

	go l.fetch(fetchCtx, gen, policy, from, to)
}

// Close cancels any in-flight fetch. Pending results are discarded.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++ // orphan any fetch that already passed cancellation
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

func (l *Loader) fetch(ctx context.Context, gen uint64, policy PolicyDescriptor, from, to Date) {
	report, err := l.builder.Build(ctx, policy, from, to)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return // superseded while fetching
	}
	if err != nil {
		if ctx.Err() != nil {
			return // cancelled, not a failure worth surfacing
		}
		deliver(l.errs, err)
		return
	}
	deliver(l.reports, report)
}

// deliver replaces any unconsumed value with the fresher one.
func deliver[T any](ch chan T, v T) {
	select {
	case <-ch:
	default:
	}
	ch <- v
}
