package transform

import (
	"github.com/lguimbarda/bloem/flow/core"
)

// Indexed pairs a value with its position in the data stream.
type Indexed[T any] struct {
	Index int
	Value T
}

// WithIndex creates a Transform that wraps each value with its zero-based
// index. Errors pass through and do not consume an index.
func WithIndex[T any](opts ...core.Option) *core.Transform {
	index := 0
	return Map(core.Pure(func(v T) Indexed[T] {
		out := Indexed[T]{Index: index, Value: v}
		index++
		return out
	}), append([]core.Option{core.WithName("withIndex")}, opts...)...)
}

// Pairwise creates a Transform that emits each value paired with the previous
// one. The first value is consumed without emitting.
func Pairwise[T any](opts ...core.Option) *core.Transform {
	var prev T
	hasPrev := false
	opts = append([]core.Option{core.WithName("pairwise")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		v, err := core.As[T](data)
		if err != nil {
			next(err, nil)
			return
		}
		if !hasPrev {
			prev, hasPrev = v, true
			return
		}
		pair := [2]T{prev, v}
		prev = v
		next(nil, pair)
	}, opts...)
}

// Distinct creates a Transform that drops values it has already forwarded.
// The set of seen values grows without bound.
func Distinct[T comparable](opts ...core.Option) *core.Transform {
	seen := make(map[T]struct{})
	opts = append([]core.Option{core.WithName("distinct")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		v, err := core.As[T](data)
		if err != nil {
			next(err, nil)
			return
		}
		if _, ok := seen[v]; ok {
			return
		}
		seen[v] = struct{}{}
		next(nil, v)
	}, opts...)
}

// DistinctBy creates a Transform that drops values whose key, as returned by
// keyFn, has already been forwarded.
func DistinctBy[T any, K comparable](keyFn func(T) K, opts ...core.Option) *core.Transform {
	seen := make(map[K]struct{})
	opts = append([]core.Option{core.WithName("distinctBy")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		v, err := core.As[T](data)
		if err != nil {
			next(err, nil)
			return
		}
		key := keyFn(v)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		next(nil, v)
	}, opts...)
}

// IgnoreElements creates a Transform that drops every data tuple and forwards
// errors.
func IgnoreElements(opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("ignoreElements")}, opts...)
	return core.NewTransform(func(err error, _ any, next core.Next) {
		if err != nil {
			next(err, nil)
		}
	}, opts...)
}

// StartWith creates a Transform that emits values ahead of the first tuple it
// receives, then forwards every tuple unchanged. Nothing is emitted until a
// tuple arrives.
func StartWith[T any](values []T, opts ...core.Option) *core.Transform {
	started := false
	opts = append([]core.Option{core.WithName("startWith")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if !started {
			started = true
			for _, v := range values {
				next(nil, v)
			}
		}
		next(err, data)
	}, opts...)
}
