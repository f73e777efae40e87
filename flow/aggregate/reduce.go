// Package aggregate provides stateful combinators that fold data into running
// state. The folds are BoundedTransforms with a window of one, so the state is
// touched by exactly one in-flight call at a time even when the fold function
// completes asynchronously. Batch and Window run no user function and are
// plain Transforms.
package aggregate

import (
	"github.com/lguimbarda/bloem/flow/core"
)

// Numeric is a constraint for numeric types that support arithmetic operations.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Reduce creates a sequential node that folds each value into an accumulator
// starting at init and emits the updated accumulator after every value.
// Errors, including ones returned by fn, pass through and leave the
// accumulator unchanged.
func Reduce[Acc, In any](fn core.Func2[Acc, In, Acc], init Acc, opts ...core.Option) *core.BoundedTransform {
	state := init
	opts = append([]core.Option{core.WithName("reduce")}, opts...)
	return core.NewSequential(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		in, err := core.As[In](data)
		if err != nil {
			next(err, nil)
			return
		}
		fn.Call(state, in, func(err error, update Acc) {
			if err != nil {
				next(err, nil)
				return
			}
			state = update
			next(nil, state)
		})
	}, opts...)
}

// ReduceMap creates a sequential node that threads state through fn and
// emits the Out half of each step. The State half replaces the stored state.
// Errors pass through and leave the state unchanged.
func ReduceMap[S, In, Out any](fn core.Func2[S, In, core.Step[S, Out]], init S, opts ...core.Option) *core.BoundedTransform {
	state := init
	opts = append([]core.Option{core.WithName("reduceMap")}, opts...)
	return core.NewSequential(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		in, err := core.As[In](data)
		if err != nil {
			next(err, nil)
			return
		}
		fn.Call(state, in, func(err error, step core.Step[S, Out]) {
			if err != nil {
				next(err, nil)
				return
			}
			state = step.State
			next(nil, step.Out)
		})
	}, opts...)
}

// Count creates a sequential node that emits the running number of data
// values it has seen.
func Count(opts ...core.Option) *core.BoundedTransform {
	return Reduce(core.Pure2(func(n int, _ any) int { return n + 1 }), 0,
		append([]core.Option{core.WithName("count")}, opts...)...)
}

// Sum creates a sequential node that emits the running sum.
func Sum[T Numeric](opts ...core.Option) *core.BoundedTransform {
	return Reduce(core.Pure2(func(acc, v T) T { return acc + v }), 0,
		append([]core.Option{core.WithName("sum")}, opts...)...)
}

// Average creates a sequential node that emits the running mean as a float64.
func Average[T Numeric](opts ...core.Option) *core.BoundedTransform {
	type mean struct {
		sum float64
		n   int
	}
	return ReduceMap(core.Pure2(func(m mean, v T) core.Step[mean, float64] {
		m.sum += float64(v)
		m.n++
		return core.Step[mean, float64]{State: m, Out: m.sum / float64(m.n)}
	}), mean{}, append([]core.Option{core.WithName("average")}, opts...)...)
}

// Min creates a sequential node that emits the smallest value seen so far,
// as ordered by less.
func Min[T any](less func(a, b T) bool, opts ...core.Option) *core.BoundedTransform {
	return extreme(func(cur, v T) bool { return less(v, cur) },
		append([]core.Option{core.WithName("min")}, opts...))
}

// Max creates a sequential node that emits the largest value seen so far,
// as ordered by less.
func Max[T any](less func(a, b T) bool, opts ...core.Option) *core.BoundedTransform {
	return extreme(func(cur, v T) bool { return less(cur, v) },
		append([]core.Option{core.WithName("max")}, opts...))
}

func extreme[T any](replace func(cur, v T) bool, opts []core.Option) *core.BoundedTransform {
	type best struct {
		v   T
		set bool
	}
	return ReduceMap(core.Pure2(func(b best, v T) core.Step[best, T] {
		if !b.set || replace(b.v, v) {
			b = best{v: v, set: true}
		}
		return core.Step[best, T]{State: b, Out: b.v}
	}), best{}, opts...)
}
