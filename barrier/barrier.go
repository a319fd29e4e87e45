// Package barrier collects independent completion-only pipelines and runs
// them as one batch.
//
// Pipelines with unrelated payload types are registered as suppliers of
// Mono[Void] (see [mono.Mono.Then]) and run concurrently; Run blocks until
// every one of them has settled and reports how many succeeded, together
// with the accumulated failures.
package barrier

import (
	"log/slog"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"github.com/b97tsk/mono"
)

// A Supplier builds a fresh completion-only pipeline each time it is
// called. Suppliers are called once per [Barrier.Run], so a Barrier can be
// run repeatedly; each run gets new pipeline instances.
type Supplier func() *mono.Mono[mono.Void]

type entry struct {
	name string
	make Supplier
}

// A Barrier is a registry of named pipelines to run together.
//
// Register and Run are safe for concurrent use, though the usual pattern
// is to register everything up front and run once.
type Barrier struct {
	mu      sync.Mutex
	entries []entry
	limit   int
	logger  *slog.Logger
}

// New returns an empty [Barrier] logging through slog.Default.
func New() *Barrier {
	return &Barrier{}
}

// SetLogger directs the per-pipeline settlement log lines to l.
func (b *Barrier) SetLogger(l *slog.Logger) {
	b.mu.Lock()
	b.logger = l
	b.mu.Unlock()
}

// SetLimit bounds how many registered pipelines Run waits on at the same
// time. Zero or negative means no bound.
func (b *Barrier) SetLimit(n int) {
	b.mu.Lock()
	b.limit = n
	b.mu.Unlock()
}

// Register adds a named pipeline supplier to the batch.
func (b *Barrier) Register(name string, f Supplier) {
	if f == nil {
		panic("barrier(Register): nil supplier")
	}
	b.mu.Lock()
	b.entries = append(b.entries, entry{name: name, make: f})
	b.mu.Unlock()
}

// Run builds every registered pipeline, runs them all, and blocks until
// each has settled. It returns the number of pipelines that completed
// successfully and the failures of the rest, combined into one error.
// Every settlement is logged exactly once.
func (b *Barrier) Run() (int, error) {
	b.mu.Lock()
	entries := make([]entry, len(b.entries))
	copy(entries, b.entries)
	limit := b.limit
	logger := b.logger
	b.mu.Unlock()

	if logger == nil {
		logger = slog.Default()
	}

	var (
		mu   sync.Mutex
		errs *multierror.Error
		done int
	)

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for _, e := range entries {
		e := e
		g.Go(func() error {
			_, err := e.make().Block()
			if err != nil {
				logger.Warn("pipeline failed", "name", e.name, "error", err)
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
				return nil
			}
			logger.Info("pipeline completed", "name", e.name)
			mu.Lock()
			done++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return done, errs.ErrorOrNil()
}
