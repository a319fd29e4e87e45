package mono

// A handoff is a one-shot completion cell: written exactly once, readable
// any number of times afterwards. It is the synchronization point between
// the worker that settles a pipeline and the goroutines blocked on it,
// and it is what makes a settled [Mono] return its cached outcome without
// re-execution.
type handoff struct {
	done  chan struct{}
	value any
	err   error
}

func newHandoff() handoff {
	return handoff{done: make(chan struct{})}
}

// complete publishes the outcome and releases every waiter.
// The caller must guarantee it is called at most once.
func (h *handoff) complete(v any, err error) {
	h.value, h.err = v, err
	close(h.done)
}

// wait blocks until complete has been called, then returns the outcome.
func (h *handoff) wait() (any, error) {
	<-h.done
	return h.value, h.err
}

// settled reports whether complete has been called, without blocking.
func (h *handoff) settled() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}
