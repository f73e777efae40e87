// Package parallel runs user functions on worker goroutines. Each value is
// handed to a goroutine through Loop.Go and a weighted semaphore caps how many
// calls run at once; results re-enter the graph on the loop's goroutine.
package parallel

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/lguimbarda/bloem/flow/core"
)

// pool runs calls off the loop, at most n at a time.
type pool struct {
	loop *core.Loop
	sem  *semaphore.Weighted
}

func newPool(loop *core.Loop, n int) *pool {
	if n <= 0 {
		n = 1
	}
	return &pool{loop: loop, sem: semaphore.NewWeighted(int64(n))}
}

// run calls fn with v on a worker and delivers the outcome to done on the
// loop. Panics in fn become core.ErrPanic errors.
func run[In, Out any](p *pool, fn core.Func[In, Out], v In, done func(error, Out)) {
	p.loop.Go(func() func() {
		// Acquire cannot fail with a background context.
		_ = p.sem.Acquire(context.Background(), 1)
		defer p.sem.Release(1)

		var (
			outErr error
			out    Out
		)
		fn.Call(v, func(err error, r Out) { outErr, out = err, r })
		return func() { done(outErr, out) }
	})
}

// Map creates a Transform that applies fn to each value on up to n worker
// goroutines. Results are emitted as they complete, so order is not kept.
// If n <= 0 one worker is used. Incoming errors pass through at once.
func Map[In, Out any](loop *core.Loop, n int, fn func(In) (Out, error), opts ...core.Option) *core.Transform {
	p := newPool(loop, n)
	call := core.Sync(fn)
	opts = append([]core.Option{core.WithName("parallelMap"), core.WithScheduler(loop)}, opts...)
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
		run(p, call, v, func(err error, out Out) {
			if err != nil {
				next(err, nil)
				return
			}
			next(nil, out)
		})
	}, opts...)
}

// FlatMap is Map for functions producing several values per input. The values
// of one input are emitted together.
func FlatMap[In, Out any](loop *core.Loop, n int, fn func(In) ([]Out, error), opts ...core.Option) *core.Transform {
	p := newPool(loop, n)
	call := core.Sync(fn)
	opts = append([]core.Option{core.WithName("parallelFlatMap"), core.WithScheduler(loop)}, opts...)
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
		run(p, call, v, func(err error, outs []Out) {
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

// Ordered is Map that emits results in arrival order. A finished result
// waits until every earlier tuple, errors included, has been emitted.
func Ordered[In, Out any](loop *core.Loop, n int, fn func(In) (Out, error), opts ...core.Option) *core.Transform {
	p := newPool(loop, n)
	call := core.Sync(fn)
	opts = append([]core.Option{core.WithName("parallelOrdered"), core.WithScheduler(loop)}, opts...)

	var (
		seq     int
		emitted int
		ready   = make(map[int]core.Tuple)
	)
	return core.NewTransform(func(err error, data any, next core.Next) {
		i := seq
		seq++

		finish := func(err error, data any) {
			ready[i] = core.Tuple{Err: err, Data: data}
			for {
				t, ok := ready[emitted]
				if !ok {
					return
				}
				delete(ready, emitted)
				emitted++
				next(t.Err, t.Data)
			}
		}

		if err != nil {
			finish(err, nil)
			return
		}
		v, err := core.As[In](data)
		if err != nil {
			finish(err, nil)
			return
		}
		run(p, call, v, func(err error, out Out) {
			if err != nil {
				finish(err, nil)
				return
			}
			finish(nil, out)
		})
	}, opts...)
}
