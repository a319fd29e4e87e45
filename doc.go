// Package mono is a small library for composing single-value asynchronous
// pipelines.
//
// A [Mono] is a deferred computation of one value. It is built from a
// function with [FromFunc], pointed at a background worker with
// [Mono.SubscribeOn], and extended with stages: [Map] transforms the value,
// [Mono.DoOnSuccess] observes it, [Mono.OnErrorResume] substitutes a
// fallback pipeline for a failure, and [Mono.Then] reduces the pipeline to
// a bare completion signal.
//
// # Cold Semantics
//
// Nothing runs at construction time. Every operator returns a new
// descriptor; the computation is dispatched only when a terminal operation
// is called: [Mono.Start] (fire and forget), [Mono.Subscribe] (callbacks),
// or [Mono.Block]/[Mono.BlockOptional] (wait on the calling goroutine).
// Each Mono runs its computation at most once. After it settles, terminal
// operations observe the cached outcome.
//
// # Failure Propagation
//
// A failure at any stage short-circuits the stages after it: Map and
// DoOnSuccess are skipped until an OnErrorResume intercepts the failure,
// and without one the failure reaches the terminal operation. Failures are
// tagged with the [Stage] that produced them; panics in user code are
// recovered into failures rather than killing the worker.
//
// # Schedulers
//
// Where a pipeline runs is pluggable. [Immediate] runs it inline, [Single]
// is a shared one-worker pool, and [NewPool] builds a pool of any size.
// Stages of one pipeline always run sequentially on one worker, in
// attachment order; there is no fan-out within a chain.
package mono
