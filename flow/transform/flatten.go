package transform

import (
	"github.com/lguimbarda/bloem/flow/core"
)

// Producer derives a finite run of values from one input. It passes each value
// to emit and calls done exactly once when it has finished, with a non-nil
// error if it failed. emit and done must be called on the goroutine that
// drives the graph, either before the Producer returns or from tasks it
// schedules on the loop. Values emitted after done are dropped.
//
// Unlike the Node returned to FlatMap, a Producer reports its own completion,
// which is what ConcatMap, ExhaustMap and a bounded MergeMap wait for.
type Producer[In, Out any] func(in In, emit func(Out), done func(error))

// start runs p on in. It drops emissions after done and ignores repeated
// done calls.
func start[In, Out any](p Producer[In, Out], in In, emit func(Out), done func(error)) {
	finished := false
	p(in, func(v Out) {
		if !finished {
			emit(v)
		}
	}, func(err error) {
		if finished {
			return
		}
		finished = true
		done(err)
	})
}

// innerDone marks the completion of one ConcatMap run on its way from the
// sequential stage to the output stage.
type innerDone struct{}

// ConcatMap creates a node that runs p on each value, one input at a time:
// the next input starts only after the previous run called done, so outputs
// keep input order. Inputs wait in a sequential queue. A run's error is
// forwarded and the next input proceeds. Incoming errors pass through in
// order with the data around them.
//
// The returned handle receives tuples at the queue and emits from the output
// stage, so it can be spliced into a chain with Connect.
func ConcatMap[In, Out any](p Producer[In, Out], opts ...core.Option) core.Node {
	out := core.NewTransform(func(err error, data any, next core.Next) {
		if _, ok := data.(innerDone); ok {
			if err != nil {
				next(err, nil)
			}
			return
		}
		next(err, data)
	}, core.WithName("concatMap.out"))

	opts = append([]core.Option{core.WithName("concatMap")}, opts...)
	seq := core.NewSequential(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		in, err := core.As[In](data)
		if err != nil {
			next(err, nil)
			return
		}
		start(p, in, func(v Out) {
			out.OnData(nil, v)
		}, func(err error) {
			next(err, innerDone{})
		})
	}, opts...)

	return seq.Connect(out)
}

// SwitchMap creates a Transform that runs p on each value and forwards only
// the output of the most recent run. Starting a run silences every earlier
// one; their later emissions and errors are dropped.
func SwitchMap[In, Out any](p Producer[In, Out], opts ...core.Option) *core.Transform {
	generation := 0
	opts = append([]core.Option{core.WithName("switchMap")}, opts...)
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
		generation++
		current := generation
		start(p, in, func(v Out) {
			if current == generation {
				next(nil, v)
			}
		}, func(err error) {
			if err != nil && current == generation {
				next(err, nil)
			}
		})
	}, opts...)
}

// ExhaustMap creates a Transform that runs p on a value only when no earlier
// run is still active. Values arriving during a run are dropped. Incoming
// errors always pass through.
func ExhaustMap[In, Out any](p Producer[In, Out], opts ...core.Option) *core.Transform {
	active := false
	opts = append([]core.Option{core.WithName("exhaustMap")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		if active {
			return
		}
		in, err := core.As[In](data)
		if err != nil {
			next(err, nil)
			return
		}
		active = true
		start(p, in, func(v Out) {
			next(nil, v)
		}, func(err error) {
			active = false
			if err != nil {
				next(err, nil)
			}
		})
	}, opts...)
}

// MergeMap creates a Transform that runs p on each value and forwards the
// output of every run as it is emitted, interleaved. At most concurrency runs
// are active at once; later values wait in arrival order. If concurrency <= 0
// the number of active runs is unbounded. Incoming errors pass through at
// once.
func MergeMap[In, Out any](p Producer[In, Out], concurrency int, opts ...core.Option) *core.Transform {
	type work struct {
		in   In
		next core.Next
	}
	var (
		pending []work
		active  int
		pumping bool
	)

	// pump starts waiting runs while there is room. Runs that finish while
	// it is starting others only free their slot; the loop picks up the
	// next one.
	var pump func()
	pump = func() {
		if pumping {
			return
		}
		pumping = true
		for len(pending) > 0 && (concurrency <= 0 || active < concurrency) {
			w := pending[0]
			pending[0] = work{}
			pending = pending[1:]
			active++
			start(p, w.in, func(v Out) {
				w.next(nil, v)
			}, func(err error) {
				if err != nil {
					w.next(err, nil)
				}
				active--
				pump()
			})
		}
		pumping = false
	}

	opts = append([]core.Option{core.WithName("mergeMap")}, opts...)
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
		pending = append(pending, work{in: in, next: next})
		pump()
	}, opts...)
}
