package filter

import (
	"github.com/lguimbarda/bloem/flow/core"
)

// counted builds a handler that decides on the data index alone. Errors pass
// through and do not advance the index.
func counted(keep func(i int) bool) core.Handler {
	i := 0
	return func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		ok := keep(i)
		i++
		if ok {
			next(nil, data)
		}
	}
}

// Take creates a Transform that forwards only the first n data values.
// Later values are dropped; there is no completion signal to send.
// If n <= 0 every value is dropped.
func Take(n int, opts ...core.Option) *core.Transform {
	return core.NewTransform(counted(func(i int) bool { return i < n }),
		append([]core.Option{core.WithName("take")}, opts...)...)
}

// Skip creates a Transform that drops the first n data values and forwards
// the rest. If n <= 0 every value is forwarded.
func Skip(n int, opts ...core.Option) *core.Transform {
	return core.NewTransform(counted(func(i int) bool { return i >= n }),
		append([]core.Option{core.WithName("skip")}, opts...)...)
}

// First creates a Transform that forwards only the first data value.
func First(opts ...core.Option) *core.Transform {
	return Take(1, append([]core.Option{core.WithName("first")}, opts...)...)
}

// Nth creates a Transform that forwards only the nth (0-indexed) data value.
func Nth(n int, opts ...core.Option) *core.Transform {
	return core.NewTransform(counted(func(i int) bool { return i == n }),
		append([]core.Option{core.WithName("nth")}, opts...)...)
}

// EveryNth creates a Transform that forwards every nth data value, starting
// with the first. It panics if n < 1.
func EveryNth(n int, opts ...core.Option) *core.Transform {
	if n < 1 {
		panic("bloem: EveryNth requires n >= 1")
	}
	return core.NewTransform(counted(func(i int) bool { return i%n == 0 }),
		append([]core.Option{core.WithName("everyNth")}, opts...)...)
}

// TakeWhile creates a Transform that forwards data while predicate holds.
// Once it fails, that value and every later one are dropped.
// Errors pass through and do not affect the predicate.
func TakeWhile[T any](predicate func(T) bool, opts ...core.Option) *core.Transform {
	taking := true
	opts = append([]core.Option{core.WithName("takeWhile")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		if !taking {
			return
		}
		v, err := core.As[T](data)
		if err != nil {
			next(err, nil)
			return
		}
		if taking = predicate(v); taking {
			next(nil, data)
		}
	}, opts...)
}

// SkipWhile creates a Transform that drops data while predicate holds. Once it
// fails, that value and every later one are forwarded.
func SkipWhile[T any](predicate func(T) bool, opts ...core.Option) *core.Transform {
	skipping := true
	opts = append([]core.Option{core.WithName("skipWhile")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		if skipping {
			v, err := core.As[T](data)
			if err != nil {
				next(err, nil)
				return
			}
			if skipping = predicate(v); skipping {
				return
			}
		}
		next(nil, data)
	}, opts...)
}
