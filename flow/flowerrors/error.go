// Package flowerrors provides combinators that act on the error slot of
// tuples: recovering errors into data, observing them, rewriting them and
// retrying the work that produced them.
package flowerrors

import (
	"github.com/lguimbarda/bloem/flow/core"
)

// Rescue creates a Transform that turns error tuples back into data. Each
// error is passed to fn and fn's result is forwarded; an error returned by fn
// propagates instead. A zero fn forwards the error value itself as data.
// Data tuples are forwarded only when passData is true.
func Rescue[Out any](fn core.Func[error, Out], passData bool, opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("rescue")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err == nil {
			if passData {
				next(nil, data)
			}
			return
		}
		if fn.IsZero() {
			next(nil, err)
			return
		}
		fn.Call(err, func(err error, out Out) {
			if err != nil {
				next(err, nil)
				return
			}
			next(nil, out)
		})
	}, opts...)
}

// OnError creates a Transform that calls handler for every error tuple and
// forwards every tuple unchanged.
func OnError(handler func(error), opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("onError")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			handler(err)
		}
		next(err, data)
	}, opts...)
}

// CatchError creates a Transform that handles the errors matching predicate
// with handler: a returned value replaces the error, a returned error replaces
// the original one. Errors that do not match and data pass through.
func CatchError[T any](predicate func(error) bool, handler func(error) (T, error), opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("catchError")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err == nil || !predicate(err) {
			next(err, data)
			return
		}
		v, herr := handler(err)
		if herr != nil {
			next(herr, nil)
			return
		}
		next(nil, v)
	}, opts...)
}

// FilterErrors creates a Transform that drops the errors matching predicate.
// Other errors and all data pass through.
func FilterErrors(predicate func(error) bool, opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("filterErrors")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil && predicate(err) {
			return
		}
		next(err, data)
	}, opts...)
}

// MapErrors creates a Transform that rewrites every error with mapper. A nil
// result drops the tuple. Data passes through.
func MapErrors(mapper func(error) error, opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("mapErrors")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err == nil {
			next(nil, data)
			return
		}
		if mapped := mapper(err); mapped != nil {
			next(mapped, data)
		}
	}, opts...)
}

// ErrorsOnly creates a Transform that forwards error tuples and drops data.
func ErrorsOnly(opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("errorsOnly")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, data)
		}
	}, opts...)
}

// Materialized carries either a value or an error as data.
type Materialized[T any] struct {
	Value   T
	Err     error
	IsValue bool
}

// Materialize creates a Transform that wraps every tuple in a Materialized
// value so downstream nodes can treat errors as data.
func Materialize[T any](opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("materialize")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			next(nil, Materialized[T]{Err: err})
			return
		}
		v, err := core.As[T](data)
		if err != nil {
			next(nil, Materialized[T]{Err: err})
			return
		}
		next(nil, Materialized[T]{Value: v, IsValue: true})
	}, opts...)
}

// Dematerialize creates a Transform that unwraps Materialized values back into
// data or error tuples.
func Dematerialize[T any](opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("dematerialize")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		m, err := core.As[Materialized[T]](data)
		if err != nil {
			next(err, nil)
			return
		}
		if !m.IsValue {
			next(m.Err, nil)
			return
		}
		next(nil, m.Value)
	}, opts...)
}
