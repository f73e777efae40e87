package combine

import (
	"fmt"

	"github.com/lguimbarda/bloem/flow/core"
)

// Fan connects every target to upstream, in order, and returns the attached
// handles. Each tuple reaches the targets in the order given here.
func Fan(upstream core.Node, targets ...core.Node) []core.Node {
	out := make([]core.Node, len(targets))
	for i, t := range targets {
		out[i] = upstream.Connect(t)
	}
	return out
}

// Tee attaches two identity Transforms to upstream and returns them.
func Tee(upstream core.Node, opts ...core.Option) (core.Node, core.Node) {
	outs := Fan(upstream,
		core.Identity(append([]core.Option{core.WithName("tee.0")}, opts...)...),
		core.Identity(append([]core.Option{core.WithName("tee.1")}, opts...)...),
	)
	return outs[0], outs[1]
}

// routed is a value tagged with the index of the output it is meant for.
type routed struct {
	to   int
	data any
}

// FanOutWith splits upstream into n outputs. router picks the output for each
// value; values routed outside [0, n) are dropped. Error tuples go to every
// output. It panics if n < 1.
func FanOutWith[T any](upstream core.Node, n int, router func(T) int, opts ...core.Option) []core.Node {
	if n < 1 {
		panic(fmt.Sprintf("bloem: fan-out needs at least one output, got %d", n))
	}

	route := upstream.Connect(core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		v, err := core.As[T](data)
		if err != nil {
			next(err, nil)
			return
		}
		if i := router(v); i >= 0 && i < n {
			next(nil, routed{to: i, data: data})
		}
	}, append([]core.Option{core.WithName("fanOut")}, opts...)...))

	outs := make([]core.Node, n)
	for i := range outs {
		outs[i] = route.Connect(core.NewTransform(func(err error, data any, next core.Next) {
			if err != nil {
				next(err, nil)
				return
			}
			if r := data.(routed); r.to == i {
				next(nil, r.data)
			}
		}, core.WithName(fmt.Sprintf("fanOut.%d", i))))
	}
	return outs
}

// Partition splits upstream in two: values for which predicate holds go to
// matched, the rest to unmatched. Errors go to both.
func Partition[T any](upstream core.Node, predicate func(T) bool, opts ...core.Option) (matched, unmatched core.Node) {
	outs := FanOutWith(upstream, 2, func(v T) int {
		if predicate(v) {
			return 0
		}
		return 1
	}, append([]core.Option{core.WithName("partition")}, opts...)...)
	return outs[0], outs[1]
}

// RoundRobin splits upstream into n outputs that receive data values in
// turn. Errors go to every output.
func RoundRobin(upstream core.Node, n int, opts ...core.Option) []core.Node {
	next := 0
	return FanOutWith(upstream, n, func(any) int {
		i := next
		next = (next + 1) % n
		return i
	}, append([]core.Option{core.WithName("roundRobin")}, opts...)...)
}

// Broadcast creates a Transform that calls every handler with each data value
// and then forwards the tuple unchanged. Handlers run in order, on the
// delivering goroutine.
func Broadcast[T any](handlers []func(T), opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("broadcast")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err == nil {
			v, terr := core.As[T](data)
			if terr != nil {
				next(terr, nil)
				return
			}
			for _, h := range handlers {
				h(v)
			}
		}
		next(err, data)
	}, opts...)
}
