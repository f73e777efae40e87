package flow

import (
	"iter"

	"github.com/lguimbarda/bloem/flow/core"
)

// FromSlice creates a generator that emits each element of items, one
// scheduler tick apart, once the scheduler is drained. Nodes attached before
// the first tick see every element.
//
// The generator is a Source wired to a Transform that re-arms the Source with
// the next index before emitting the current element, so each element is a
// separate deferred send.
func FromSlice[T any](items []T, opts ...Option) Node {
	return Generate(func(i int) (T, bool) {
		if i >= len(items) {
			var zero T
			return zero, false
		}
		return items[i], true
	}, opts...)
}

// Range creates a generator that emits the integers in [start, end).
func Range(start, end int, opts ...Option) Node {
	return Generate(func(i int) (int, bool) {
		n := start + i
		return n, n < end
	}, append([]Option{WithName("range")}, opts...)...)
}

// Generate creates a generator that emits fn(0), fn(1), ... until fn reports
// false. Each emission is scheduled on its own tick.
func Generate[T any](fn func(i int) (T, bool), opts ...Option) Node {
	src := core.NewSource(append([]Option{WithName("generate")}, opts...)...)
	emit := core.NewTransform(func(err error, data any, next Next) {
		i, isIndex := data.(int)
		if err != nil || !isIndex {
			next(err, data)
			return
		}
		v, ok := fn(i)
		if !ok {
			return
		}
		src.Send(i + 1)
		next(nil, v)
	}, WithName(src.Name()+".emit"))

	src.Send(0)
	return src.Connect(emit)
}

// FromIter creates a generator that pulls one element from seq per scheduler
// tick. The iterator is stopped once it is exhausted; a generator whose
// scheduler is never drained to the end keeps the pull iterator alive.
func FromIter[T any](seq iter.Seq[T], opts ...Option) Node {
	pull, stop := iter.Pull(seq)
	src := core.NewSource(append([]Option{WithName("fromIter")}, opts...)...)
	emit := core.NewTransform(func(_ error, _ any, next Next) {
		v, ok := pull()
		if !ok {
			stop()
			return
		}
		src.Send(nil)
		next(nil, v)
	}, WithName(src.Name()+".emit"))

	src.Send(nil)
	return src.Connect(emit)
}

// FromChannel creates a Source that emits every value received from ch. The
// receives run off the loop and each value is emitted from the loop, so
// emissions stay on the loop's goroutine. The Source stops when ch is closed.
func FromChannel[T any](ch <-chan T, loop *Loop, opts ...Option) *Source {
	return core.Produce(loop, func(emit Next) {
		for v := range ch {
			emit(nil, v)
		}
	}, append([]Option{WithName("fromChannel")}, opts...)...)
}

// Once creates a Source that emits a single value on the next tick.
func Once(data any, opts ...Option) *Source {
	src := core.NewSource(append([]Option{WithName("once")}, opts...)...)
	src.Send(data)
	return src
}

// Fail creates a Source that emits a single error on the next tick.
func Fail(err error, opts ...Option) *Source {
	src := core.NewSource(append([]Option{WithName("fail")}, opts...)...)
	src.Raise(err)
	return src
}
