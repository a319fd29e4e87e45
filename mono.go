package mono

import (
	"slices"
	"sync"
)

// Void is the payload type of a [Mono] that only signals completion.
type Void = struct{}

const (
	stepTransform = iota
	stepPeek
	stepRecover
)

// A step is one stage of a pipeline, applied to the type-erased result of
// the stages before it. Keeping stages in a flat list, rather than nesting
// closures, bounds the stack depth of a run regardless of chain length.
type step struct {
	kind      int
	transform func(v any) (any, error)
	peek      func(v any)
	resume    func(cause error) (any, error)
}

// A Mono is a deferred computation of a single value of type T, together
// with a chain of stages to apply to that value and the [Scheduler] the
// whole pipeline runs on.
//
// A Mono is cold: constructing one, or deriving one with an operator, runs
// nothing. Work begins when a terminal operation — [Mono.Start],
// [Mono.Subscribe], [Mono.Block] or [Mono.BlockOptional] — is called.
// Each Mono dispatches its underlying computation at most once; the result
// is cached and later terminal calls observe it without re-execution.
//
// Operators return new Monos and never modify their receiver, so a Mono can
// be used as a prefix for several derived pipelines. Note that each derived
// Mono is its own instance with its own single execution.
type Mono[T any] struct {
	compute func() (any, error)
	steps   []step
	sched   Scheduler
	state   *execState
}

// execState is the mutable half of a Mono: the once guarding dispatch and
// the handoff cell the result is published through.
type execState struct {
	once sync.Once
	cell handoff
}

func newMono[T any](compute func() (any, error), steps []step, sched Scheduler) *Mono[T] {
	return &Mono[T]{
		compute: compute,
		steps:   steps,
		sched:   sched,
		state:   &execState{cell: newHandoff()},
	}
}

// derive extends the step chain of m by one. Clipping the step slice forces
// append to reallocate, so sibling pipelines derived from the same prefix
// never share backing storage.
func (m *Mono[T]) derive(s step) ([]step, Scheduler) {
	return append(slices.Clip(m.steps), s), m.sched
}

// FromFunc returns a [Mono] that, when started, obtains its value by
// calling f. f is not called until the Mono is started, and is called at
// most once per Mono. A panic in f is recovered and surfaces as a
// compute-stage failure.
func FromFunc[T any](f func() (T, error)) *Mono[T] {
	return newMono[T](func() (any, error) {
		v, err := f()
		if err != nil {
			return nil, err
		}
		return v, nil
	}, nil, nil)
}

// Just returns a [Mono] that completes with v.
func Just[T any](v T) *Mono[T] {
	return FromFunc(func() (T, error) { return v, nil })
}

// Error returns a [Mono] that fails with err.
func Error[T any](err error) *Mono[T] {
	if err == nil {
		panic("mono(Error): nil error")
	}
	var zero T
	return FromFunc(func() (T, error) { return zero, err })
}

// SubscribeOn returns a [Mono] whose entire pipeline — the computation and
// every attached stage — runs on s instead of on the goroutine that starts
// it. SubscribeOn declares where work happens; it does not begin the work.
// If declared more than once, the last declaration before the terminal
// operation wins.
func (m *Mono[T]) SubscribeOn(s Scheduler) *Mono[T] {
	if s == nil {
		panic("mono(SubscribeOn): nil scheduler")
	}
	return &Mono[T]{
		compute: m.compute,
		steps:   m.steps,
		sched:   s,
		state:   &execState{cell: newHandoff()},
	}
}

// Map returns a [Mono] that applies f to the value of m once m succeeds.
// If m fails, f is never called and the failure propagates unchanged.
// A panic in f surfaces as a transform-stage failure.
func Map[T, U any](m *Mono[T], f func(T) U) *Mono[U] {
	return MapE(m, func(v T) (U, error) { return f(v), nil })
}

// MapE is [Map] for transforms that can fail. An error returned by f
// surfaces as a transform-stage failure.
func MapE[T, U any](m *Mono[T], f func(T) (U, error)) *Mono[U] {
	steps, sched := m.derive(step{kind: stepTransform, transform: func(v any) (any, error) {
		u, err := f(v.(T))
		if err != nil {
			return nil, err
		}
		return u, nil
	}})
	return newMono[U](m.compute, steps, sched)
}

// DoOnSuccess returns a [Mono] that calls f with the upstream value, for
// its side effect, and passes the value through unaltered. f is skipped
// when the upstream fails. A panic in f surfaces as a transform-stage
// failure.
func (m *Mono[T]) DoOnSuccess(f func(T)) *Mono[T] {
	steps, sched := m.derive(step{kind: stepPeek, peek: func(v any) { f(v.(T)) }})
	return newMono[T](m.compute, steps, sched)
}

// OnErrorResume returns a [Mono] that, when the upstream fails, calls h
// with the failure and continues with the Mono h returns. When the
// upstream succeeds, h is never called.
//
// The fallback pipeline is driven inline on the worker already running
// this pipeline; a SubscribeOn declared on it has no effect. The fallback
// keeps its at-most-once guarantee: if it has already been started, its
// cached outcome is used instead of a second execution. If h panics,
// returns nil, or returns a Mono that itself fails, the pipeline fails
// with a recover-stage error and is not retried.
func (m *Mono[T]) OnErrorResume(h func(error) *Mono[T]) *Mono[T] {
	steps, sched := m.derive(step{kind: stepRecover, resume: func(cause error) (any, error) {
		next := h(cause)
		if next == nil {
			return nil, errNilResume
		}
		return next.driveCached()
	}})
	return newMono[T](m.compute, steps, sched)
}

// Then returns a [Mono] that discards the value of m and only signals
// completion. A failure of m is forwarded unchanged. Then lets pipelines
// with unrelated payload types be collected and sequenced uniformly.
func (m *Mono[T]) Then() *Mono[Void] {
	steps, sched := m.derive(step{kind: stepTransform, transform: func(any) (any, error) {
		return Void{}, nil
	}})
	return newMono[Void](m.compute, steps, sched)
}

// drive runs the computation and every attached stage, in attachment
// order, on the calling goroutine. It is the single driver loop behind
// every terminal operation.
func (m *Mono[T]) drive() (any, error) {
	var v any
	err := protect(func() (e error) {
		v, e = m.compute()
		return e
	})
	if err != nil {
		err = &StageError{Stage: StageCompute, Err: err}
	}

	for _, s := range m.steps {
		switch s.kind {
		case stepTransform:
			if err != nil {
				continue
			}
			var u any
			terr := protect(func() (e error) {
				u, e = s.transform(v)
				return e
			})
			if terr != nil {
				v, err = nil, &StageError{Stage: StageTransform, Err: terr}
				continue
			}
			v = u
		case stepPeek:
			if err != nil {
				continue
			}
			if perr := protect(func() error { s.peek(v); return nil }); perr != nil {
				v, err = nil, &StageError{Stage: StageTransform, Err: perr}
			}
		case stepRecover:
			if err == nil {
				continue
			}
			cause := err
			var u any
			rerr := protect(func() (e error) {
				u, e = s.resume(cause)
				return e
			})
			if rerr != nil {
				v, err = nil, &StageError{Stage: StageRecover, Err: rerr}
				continue
			}
			v, err = u, nil
		}
	}

	if err != nil {
		return nil, err
	}
	return v, nil
}

// driveCached runs the pipeline on the calling goroutine, claiming the
// single execution of m through its own state. If m has already been
// started, driveCached waits for and returns the cached outcome instead
// of executing anything.
func (m *Mono[T]) driveCached() (any, error) {
	m.state.once.Do(func() {
		v, err := m.drive()
		m.state.cell.complete(v, err)
	})
	return m.state.cell.wait()
}

// start claims the single execution of m and schedules the driver loop.
// When deliver is non-nil it is called with the outcome on the pipeline's
// scheduler: right after the driver loop if this call claimed the
// execution, otherwise on a separate dispatch once the cached result is
// available.
func (m *Mono[T]) start(deliver func(v any, err error)) {
	sched := m.sched
	if sched == nil {
		sched = Immediate()
	}

	claimed := false
	m.state.once.Do(func() {
		claimed = true
		cell := &m.state.cell
		sched.Schedule(func() {
			v, err := m.drive()
			cell.complete(v, err)
			if deliver != nil {
				deliver(v, err)
			}
		})
	})
	if !claimed && deliver != nil {
		sched.Schedule(func() {
			deliver(m.state.cell.wait())
		})
	}
}

// Start dispatches the pipeline without waiting for it. Calling Start on a
// Mono that has already been started has no effect.
func (m *Mono[T]) Start() {
	m.start(nil)
}

// Subscribe dispatches the pipeline and delivers its outcome to exactly
// one of the two callbacks, on the pipeline's scheduler. Either callback
// may be nil. Subscribe never blocks the calling goroutine (beyond what
// [Immediate] makes inline by definition); on a pipeline that was already
// started, the cached result is delivered through the scheduler once it
// is available.
func (m *Mono[T]) Subscribe(onValue func(T), onError func(error)) {
	m.start(func(v any, err error) {
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		if onValue != nil {
			onValue(v.(T))
		}
	})
}

// Block dispatches the pipeline if needed and waits for it to settle,
// returning the value or the failure. Calling Block again returns the
// cached outcome without re-executing anything.
func (m *Mono[T]) Block() (T, error) {
	m.Start()
	v, err := m.state.cell.wait()
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Settled reports whether the pipeline has completed or failed, without
// blocking.
func (m *Mono[T]) Settled() bool {
	return m.state.cell.settled()
}

// BlockOptional is [Mono.Block] with the failure reduced to absence:
// it reports the value and true on success, the zero value and false on
// failure.
func (m *Mono[T]) BlockOptional() (T, bool) {
	v, err := m.Block()
	return v, err == nil
}
