package mono

import (
	"sync"

	"github.com/eapache/queue"
)

// A Scheduler decides which goroutine runs a dispatched pipeline.
// Schedule must return promptly; it hands f off for execution and must not
// wait for f to finish (except for [Immediate], which is explicitly
// inline).
//
// A Scheduler is the only resource shared between independent pipelines;
// implementations must be safe for concurrent use.
type Scheduler interface {
	Schedule(f func())
}

type immediate struct{}

func (immediate) Schedule(f func()) { f() }

// Immediate returns the [Scheduler] that runs pipelines inline on the
// goroutine that starts them. It makes pipelines synchronous and
// deterministic, which is what tests usually want.
func Immediate() Scheduler {
	return immediate{}
}

// A Pool is a [Scheduler] backed by a fixed number of worker goroutines
// draining a FIFO queue. Pipelines are picked up in dispatch order; with a
// single worker they also run one at a time, in dispatch order.
//
// Workers are started on first use and run for the life of the process.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	tasks   *queue.Queue
	size    int
	started bool
}

// NewPool returns a [Pool] with n workers. NewPool panics if n is not
// positive.
func NewPool(n int) *Pool {
	if n < 1 {
		panic("mono(Pool): non-positive size")
	}
	p := &Pool{tasks: queue.New(), size: n}
	p.cond = sync.NewCond(&p.mu)
	return p
}

// Schedule enqueues f for a worker. It never blocks on the execution of f.
//
// Schedule is safe for concurrent use.
func (p *Pool) Schedule(f func()) {
	p.mu.Lock()
	if !p.started {
		p.started = true
		for i := 0; i < p.size; i++ {
			go p.worker()
		}
	}
	p.tasks.Add(f)
	p.mu.Unlock()
	p.cond.Signal()
}

func (p *Pool) worker() {
	p.mu.Lock()
	for {
		for p.tasks.Length() == 0 {
			p.cond.Wait()
		}
		f := p.tasks.Remove().(func())
		p.mu.Unlock()

		f()

		p.mu.Lock()
	}
}

var single = sync.OnceValue(func() *Pool { return NewPool(1) })

// Single returns the shared process-wide single-worker [Pool]. Every
// pipeline dispatched to it runs on the same background goroutine, one
// after another. It is created on first use and never torn down.
func Single() Scheduler {
	return single()
}
