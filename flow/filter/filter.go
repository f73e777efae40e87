// Package filter provides combinators that decide per tuple whether, and
// where, data continues downstream.
package filter

import (
	"github.com/lguimbarda/bloem/flow/core"
)

// predicate builds the handler shared by Filter and Reject. Errors pass
// through; data continues when fn's result equals keep.
func predicate[T any](fn core.Func[T, bool], keep bool) core.Handler {
	return func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		v, err := core.As[T](data)
		if err != nil {
			next(err, nil)
			return
		}
		fn.Call(v, func(err error, flag bool) {
			if err != nil {
				next(err, nil)
				return
			}
			if flag == keep {
				next(nil, data)
			}
		})
	}
}

// Filter creates a Transform that forwards data for which fn reports true
// and drops the rest. Errors, including ones returned by fn, pass through.
func Filter[T any](fn core.Func[T, bool], opts ...core.Option) *core.Transform {
	return core.NewTransform(predicate(fn, true), append([]core.Option{core.WithName("filter")}, opts...)...)
}

// Reject is the inverse of Filter: data for which fn reports true is dropped.
func Reject[T any](fn core.Func[T, bool], opts ...core.Option) *core.Transform {
	return core.NewTransform(predicate(fn, false), append([]core.Option{core.WithName("reject")}, opts...)...)
}

// When creates a Transform that routes each value through then when cond
// reports true and through otherwise when it reports false. A zero otherwise
// drops values that fail cond. Errors pass through.
func When[In, Out any](cond core.Func[In, bool], then, otherwise core.Func[In, Out], opts ...core.Option) *core.Transform {
	if then.IsZero() {
		panic("bloem: When requires a then function")
	}
	opts = append([]core.Option{core.WithName("when")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		v, err := core.As[In](data)
		if err != nil {
			next(err, nil)
			return
		}
		cond.Call(v, func(err error, ok bool) {
			if err != nil {
				next(err, nil)
				return
			}
			branch := then
			if !ok {
				if otherwise.IsZero() {
					return
				}
				branch = otherwise
			}
			branch.Call(v, func(err error, out Out) {
				if err != nil {
					next(err, nil)
					return
				}
				next(nil, out)
			})
		})
	}, opts...)
}

// MapWhere creates a Transform that filters and maps in one step: fn returns
// the mapped value and whether to keep it.
func MapWhere[In, Out any](fn func(In) (Out, bool), opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("mapWhere")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		v, err := core.As[In](data)
		if err != nil {
			next(err, nil)
			return
		}
		if out, ok := fn(v); ok {
			next(nil, out)
		}
	}, opts...)
}

// Errors creates a Transform that drops error tuples and forwards only data.
func Errors(opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("dropErrors")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err == nil {
			next(nil, data)
		}
	}, opts...)
}
