// Package timing provides time-based nodes. Waiting always happens off the
// loop through Loop.Go, so a delayed tuple re-enters the graph on the loop's
// goroutine once its timer fires.
package timing

import (
	"context"
	"time"

	"github.com/lguimbarda/bloem/flow/core"
)

// Interval creates a Source that emits 0, 1, 2, ... once per d until ctx is
// done. The first value is emitted after the first interval.
func Interval(ctx context.Context, loop *core.Loop, d time.Duration, opts ...core.Option) *core.Source {
	opts = append([]core.Option{core.WithName("interval")}, opts...)
	return core.Produce(loop, func(emit core.Next) {
		ticker := time.NewTicker(d)
		defer ticker.Stop()

		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				emit(nil, i)
			}
		}
	}, opts...)
}

// Timer creates a Source that emits value once after d, unless ctx is done
// first.
func Timer[T any](ctx context.Context, loop *core.Loop, d time.Duration, value T, opts ...core.Option) *core.Source {
	opts = append([]core.Option{core.WithName("timer")}, opts...)
	return core.Produce(loop, func(emit core.Next) {
		t := time.NewTimer(d)
		defer t.Stop()

		select {
		case <-ctx.Done():
		case <-t.C:
			emit(nil, value)
		}
	}, opts...)
}

// Delay creates a sequential Transform that holds each data value for d
// before forwarding it. Values keep their order, so delays accumulate when
// values arrive faster than d. Errors are forwarded without delay once they
// reach the head of the queue.
func Delay[T any](loop *core.Loop, d time.Duration, opts ...core.Option) *core.BoundedTransform {
	return DelayWhen(loop, func(T) time.Duration { return d },
		append([]core.Option{core.WithName("delay")}, opts...)...)
}

// DelayWhen is Delay with a per-value duration computed by delayFn.
func DelayWhen[T any](loop *core.Loop, delayFn func(T) time.Duration, opts ...core.Option) *core.BoundedTransform {
	opts = append([]core.Option{core.WithName("delayWhen"), core.WithScheduler(loop)}, opts...)
	return core.NewSequential(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		v, err := core.As[T](data)
		if err != nil {
			next(err, nil)
			return
		}
		delay := delayFn(v)
		if delay <= 0 {
			next(nil, data)
			return
		}
		loop.Go(func() func() {
			time.Sleep(delay)
			return func() { next(nil, data) }
		})
	}, opts...)
}

// Timestamped wraps a value with the time it passed through Stamped.
type Timestamped[T any] struct {
	Value     T
	Timestamp time.Time
}

// Stamped creates a Transform that wraps each T value in a Timestamped.
func Stamped[T any](opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("stamped")}, opts...)
	return stamp(func(v T, now time.Time) Timestamped[T] {
		return Timestamped[T]{Value: v, Timestamp: now}
	}, opts)
}

// TimeInterval wraps a value with the time since the previous value.
type TimeInterval[T any] struct {
	Value    T
	Interval time.Duration
}

// Elapsed creates a Transform that wraps each T value with the duration since
// the previous value, or since the node was created for the first one.
func Elapsed[T any](opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("elapsed")}, opts...)
	last := time.Now()
	return stamp(func(v T, now time.Time) TimeInterval[T] {
		interval := now.Sub(last)
		last = now
		return TimeInterval[T]{Value: v, Interval: interval}
	}, opts)
}

func stamp[T, R any](wrap func(T, time.Time) R, opts []core.Option) *core.Transform {
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
		next(nil, wrap(v, time.Now()))
	}, opts...)
}
