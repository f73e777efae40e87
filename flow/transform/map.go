// Package transform provides one-to-one and one-to-many combinators.
package transform

import (
	"github.com/lguimbarda/bloem/flow/core"
)

// Map creates a Transform that applies fn to the data of each tuple and
// forwards the result. Tuples carrying an error pass through unchanged and fn
// is not called.
func Map[In, Out any](fn core.Func[In, Out], opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("map")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		in, err := core.As[In](data)
		if err != nil {
			next(err, nil)
			return
		}
		fn.Call(in, func(err error, out Out) {
			if err != nil {
				next(err, nil)
				return
			}
			next(nil, out)
		})
	}, opts...)
}

// FlatMap creates a Transform that turns the data of each tuple into a node
// and forwards every tuple that node emits. fn typically returns a fresh
// Source (for example from flow.FromSlice) that emits on a later tick.
// Errors pass through unchanged.
func FlatMap[In any](fn core.Func[In, core.Node], opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("flatMap")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		in, err := core.As[In](data)
		if err != nil {
			next(err, nil)
			return
		}
		fn.Call(in, func(err error, inner core.Node) {
			if err != nil {
				next(err, nil)
				return
			}
			if inner == nil {
				return
			}
			inner.Connect(core.NewTransform(func(err error, data any, _ core.Next) {
				next(err, data)
			}, core.WithName("flatMap.inner")))
		})
	}, opts...)
}

// Expand creates a Transform that maps each tuple to a slice and forwards the
// elements synchronously, in order. An empty slice drops the tuple.
func Expand[In, Out any](fn core.Func[In, []Out], opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("expand")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		in, err := core.As[In](data)
		if err != nil {
			next(err, nil)
			return
		}
		fn.Call(in, func(err error, outs []Out) {
			if err != nil {
				next(err, nil)
				return
			}
			for _, out := range outs {
				next(nil, out)
			}
		})
	}, opts...)
}
