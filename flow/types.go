// Package flow is the user-facing entry point of bloem, a push-based dataflow
// graph engine. Values are emitted at a Source, pass through Transforms, and
// are consumed at Sinks; every link carries an (error, data) tuple.
//
// This package re-exports the core primitives and adds ready-made sources and
// sinks. The combinators live in the transform, filter, aggregate, flowerrors
// and combine subpackages:
//
//	loop := flow.NewLoop()
//	src := flow.FromSlice([]int{1, 2, 3, 4, 5}, flow.WithScheduler(loop))
//	src.Connect(transform.Map(flow.Pure(func(n int) int { return n * 2 }))).
//		Connect(aggregate.Reduce(flow.Pure2(func(sum, n int) int { return sum + n }), 0)).
//		Into(flow.ForEach(func(sum int) { fmt.Println(sum) }))
//	loop.Drain() // 2, 6, 12, 20, 30
package flow

import (
	"github.com/go-logr/logr"

	"github.com/lguimbarda/bloem/flow/core"
)

// Type aliases for the core primitives.
// These allow users to build graphs without importing core directly.
type (
	// Node is an attachable, sendable graph vertex handle.
	Node = core.Node

	// Source is the entry point of a graph.
	Source = core.Source

	// Transform processes each tuple with a continuation-passing Handler.
	Transform = core.Transform

	// BoundedTransform is a Transform with a FIFO queue and an active window.
	BoundedTransform = core.BoundedTransform

	// Sink is a terminal consumer.
	Sink = core.Sink

	// Tuple is the (error, data) payload of a link.
	Tuple = core.Tuple

	// Handler is the uniform (error, data, next) processing function.
	Handler = core.Handler

	// Next delivers a handler's result downstream.
	Next = core.Next

	// Option configures a node.
	Option = core.Option

	// Hooks observes attachment and delivery.
	Hooks = core.Hooks

	// Loop is the cooperative deferred-task queue.
	Loop = core.Loop

	// Func is a one-argument user function in normalized form.
	Func[A, R any] = core.Func[A, R]

	// Func2 is a two-argument user function in normalized form.
	Func2[A, B, R any] = core.Func2[A, B, R]

	// Step is the (state, output) result of a ReduceMap function.
	Step[S, R any] = core.Step[S, R]
)

// Node constructors - wrappers around core functions.

// NewSource creates a Source with no subscribers.
func NewSource(opts ...Option) *Source {
	return core.NewSource(opts...)
}

// Produce creates a Source fed by a blocking producer that runs off loop.
func Produce(loop *Loop, produce func(emit Next), opts ...Option) *Source {
	return core.Produce(loop, produce, opts...)
}

// NewTransform creates a Transform around handler.
func NewTransform(handler Handler, opts ...Option) *Transform {
	return core.NewTransform(handler, opts...)
}

// NewBounded creates a BoundedTransform with the given window size.
func NewBounded(limit int, handler Handler, opts ...Option) *BoundedTransform {
	return core.NewBounded(limit, handler, opts...)
}

// NewSequential creates a BoundedTransform with a window of one.
func NewSequential(handler Handler, opts ...Option) *BoundedTransform {
	return core.NewSequential(handler, opts...)
}

// NewSink creates a Sink.
func NewSink(fn func(err error, data any), opts ...Option) *Sink {
	return core.NewSink(fn, opts...)
}

// NewLoop creates an empty Loop.
func NewLoop(opts ...core.LoopOption) *Loop {
	return core.NewLoop(opts...)
}

// Connect attaches target downstream of upstream.
func Connect(upstream, target Node) Node {
	return core.Connect(upstream, target)
}

// Merge fans several nodes into one identity Transform.
func Merge(nodes ...Node) *Transform {
	return core.Merge(nodes...)
}

// Identity creates a pass-through Transform.
func Identity(opts ...Option) *Transform {
	return core.Identity(opts...)
}

// Options.

// WithName sets the node name.
func WithName(name string) Option {
	return core.WithName(name)
}

// WithScheduler sets the scheduler for deferred sends.
func WithScheduler(s core.Scheduler) Option {
	return core.WithScheduler(s)
}

// WithHooks attaches observation hooks.
func WithHooks(hooks Hooks) Option {
	return core.WithHooks(hooks)
}

// WithLogger sets the node logger.
func WithLogger(logger logr.Logger) Option {
	return core.WithLogger(logger)
}

// WithLoopLogger sets the logger a Loop reports drain start and finish to, at V(1).
func WithLoopLogger(logger logr.Logger) core.LoopOption {
	return core.WithLoopLogger(logger)
}

// Adapter constructors.

// Sync wraps a synchronous function returning a result and an error.
func Sync[A, R any](fn func(A) (R, error)) Func[A, R] {
	return core.Sync(fn)
}

// Pure wraps a synchronous function that cannot fail.
func Pure[A, R any](fn func(A) R) Func[A, R] {
	return core.Pure(fn)
}

// Async wraps a continuation-style function.
func Async[A, R any](fn func(A, func(err error, r R))) Func[A, R] {
	return core.Async(fn)
}

// Sync2 wraps a synchronous two-argument function.
func Sync2[A, B, R any](fn func(A, B) (R, error)) Func2[A, B, R] {
	return core.Sync2(fn)
}

// Pure2 wraps a synchronous two-argument function that cannot fail.
func Pure2[A, B, R any](fn func(A, B) R) Func2[A, B, R] {
	return core.Pure2(fn)
}

// Async2 wraps a continuation-style two-argument function.
func Async2[A, B, R any](fn func(A, B, func(err error, r R))) Func2[A, B, R] {
	return core.Async2(fn)
}

// Spread wraps a synchronous function returning (state, output, error).
func Spread[A, B, S, R any](fn func(A, B) (S, R, error)) Func2[A, B, Step[S, R]] {
	return core.Spread(fn)
}

// AsyncSpread wraps a continuation-style function completing with (err, state, output).
func AsyncSpread[A, B, S, R any](fn func(A, B, func(err error, s S, r R))) Func2[A, B, Step[S, R]] {
	return core.AsyncSpread(fn)
}
