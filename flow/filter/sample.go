package filter

import (
	"github.com/lguimbarda/bloem/flow/core"
)

// DistinctUntilChanged creates a Transform that forwards a value only when it
// differs from the previous data value.
func DistinctUntilChanged[T comparable](opts ...core.Option) *core.Transform {
	return DistinctUntilChangedBy(func(v T) T { return v },
		append([]core.Option{core.WithName("distinctUntilChanged")}, opts...)...)
}

// DistinctUntilChangedBy creates a Transform that forwards a value only when
// the key derived from it differs from the key of the previous data value.
func DistinctUntilChangedBy[T any, K comparable](keyFn func(T) K, opts ...core.Option) *core.Transform {
	var lastKey K
	first := true
	opts = append([]core.Option{core.WithName("distinctUntilChangedBy")}, opts...)
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
		if first || key != lastKey {
			first = false
			lastKey = key
			next(nil, data)
		}
	}, opts...)
}
