// Package combine provides combinators that join several nodes into one or
// split one node into several.
package combine

import (
	"github.com/lguimbarda/bloem/flow/core"
)

// Merge connects every node to one identity Transform and returns it. Tuples
// are forwarded in the order they arrive from any input.
func Merge(nodes ...core.Node) *core.Transform {
	return join(nodes, core.WithName("merge"))
}

// join connects each node to a fresh identity Transform.
func join(nodes []core.Node, opts ...core.Option) *core.Transform {
	out := core.Identity(opts...)
	for _, n := range nodes {
		n.Connect(out)
	}
	return out
}

// Pair holds one value from each side of a Zip.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Zip pairs the i-th data value of a with the i-th data value of b. Values
// wait in a per-side queue until the other side catches up. Errors from
// either side pass through immediately.
func Zip[A, B any](a, b core.Node, opts ...core.Option) *core.Transform {
	return ZipWith(a, b, func(x A, y B) Pair[A, B] { return Pair[A, B]{First: x, Second: y} },
		append([]core.Option{core.WithName("zip")}, opts...)...)
}

// ZipWith is Zip with a combiner function in place of Pair.
func ZipWith[A, B, C any](a, b core.Node, combiner func(A, B) C, opts ...core.Option) *core.Transform {
	var left []A
	var right []B

	return join([]core.Node{
		a.Connect(core.NewTransform(func(err error, data any, next core.Next) {
			if err != nil {
				next(err, nil)
				return
			}
			v, err := core.As[A](data)
			if err != nil {
				next(err, nil)
				return
			}
			if len(right) == 0 {
				left = append(left, v)
				return
			}
			w := right[0]
			right = right[1:]
			next(nil, combiner(v, w))
		}, core.WithName("zipWith.left"))),
		b.Connect(core.NewTransform(func(err error, data any, next core.Next) {
			if err != nil {
				next(err, nil)
				return
			}
			w, err := core.As[B](data)
			if err != nil {
				next(err, nil)
				return
			}
			if len(left) == 0 {
				right = append(right, w)
				return
			}
			v := left[0]
			left = left[1:]
			next(nil, combiner(v, w))
		}, core.WithName("zipWith.right"))),
	}, append([]core.Option{core.WithName("zipWith")}, opts...)...)
}

// CombineLatest emits a slice with the latest data value of every input each
// time any input emits, once all of them have emitted at least once.
func CombineLatest[T any](nodes []core.Node, opts ...core.Option) *core.Transform {
	latest := make([]T, len(nodes))
	seen := make([]bool, len(nodes))
	missing := len(nodes)

	inputs := make([]core.Node, len(nodes))
	for i, n := range nodes {
		inputs[i] = n.Connect(core.NewTransform(func(err error, data any, next core.Next) {
			if err != nil {
				next(err, nil)
				return
			}
			v, err := core.As[T](data)
			if err != nil {
				next(err, nil)
				return
			}
			latest[i] = v
			if !seen[i] {
				seen[i] = true
				missing--
			}
			if missing == 0 {
				out := make([]T, len(latest))
				copy(out, latest)
				next(nil, out)
			}
		}, core.WithName("combineLatest.input")))
	}
	return join(inputs, append([]core.Option{core.WithName("combineLatest")}, opts...)...)
}

// WithLatestFrom pairs each data value of source with the latest data value
// of other. Source values that arrive before other has emitted are dropped.
// Errors from source pass through; errors from other are dropped.
func WithLatestFrom[T, U any](source, other core.Node, opts ...core.Option) *core.Transform {
	var latest U
	has := false

	other.Into(core.NewSink(func(err error, data any) {
		if err != nil {
			return
		}
		if v, err := core.As[U](data); err == nil {
			latest, has = v, true
		}
	}, core.WithName("withLatestFrom.other")))

	return join([]core.Node{
		source.Connect(core.NewTransform(func(err error, data any, next core.Next) {
			if err != nil {
				next(err, nil)
				return
			}
			v, err := core.As[T](data)
			if err != nil {
				next(err, nil)
				return
			}
			if has {
				next(nil, Pair[T, U]{First: v, Second: latest})
			}
		}, core.WithName("withLatestFrom.source"))),
	}, append([]core.Option{core.WithName("withLatestFrom")}, opts...)...)
}

// Race forwards the tuples of whichever input delivers first and ignores the
// other inputs from then on.
func Race(nodes []core.Node, opts ...core.Option) *core.Transform {
	winner := -1
	inputs := make([]core.Node, len(nodes))
	for i, n := range nodes {
		inputs[i] = n.Connect(core.NewTransform(func(err error, data any, next core.Next) {
			if winner == -1 {
				winner = i
			}
			if winner == i {
				next(err, data)
			}
		}, core.WithName("race.input")))
	}
	return join(inputs, append([]core.Option{core.WithName("race")}, opts...)...)
}
