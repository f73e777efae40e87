package flow

import (
	"sync"

	"go.uber.org/multierr"

	"github.com/lguimbarda/bloem/flow/core"
)

// ForEach creates a Sink that calls fn with every data value. Error tuples are
// ignored. A data value that is not a T panics with a *core.TypeError, like
// any other panic raised inside a Sink.
func ForEach[T any](fn func(T), opts ...Option) *Sink {
	return core.NewSink(func(err error, data any) {
		if err != nil {
			return
		}
		v, terr := core.As[T](data)
		if terr != nil {
			panic(terr)
		}
		fn(v)
	}, append([]Option{WithName("forEach")}, opts...)...)
}

// ForEachTuple creates a Sink that calls fn with every tuple, errors included.
func ForEachTuple(fn func(err error, data any), opts ...Option) *Sink {
	return core.NewSink(fn, append([]Option{WithName("forEachTuple")}, opts...)...)
}

// Collector records every tuple delivered to its Sink. It is safe to read
// from another goroutine while the graph is running.
type Collector[T any] struct {
	Sink *Sink

	mu     sync.Mutex
	tuples []Tuple
}

// Collect creates a Collector whose Sink records tuples in arrival order.
func Collect[T any](opts ...Option) *Collector[T] {
	c := &Collector[T]{}
	c.Sink = core.NewSink(func(err error, data any) {
		c.mu.Lock()
		c.tuples = append(c.tuples, Tuple{Err: err, Data: data})
		c.mu.Unlock()
	}, append([]Option{WithName("collect")}, opts...)...)
	return c
}

// Tuples returns a copy of every recorded tuple.
func (c *Collector[T]) Tuples() []Tuple {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Tuple, len(c.tuples))
	copy(out, c.tuples)
	return out
}

// Values returns the data of every error-free tuple. Values that are not a T
// are recorded as a *core.TypeError in Err instead.
func (c *Collector[T]) Values() []T {
	var out []T
	for _, t := range c.Tuples() {
		if t.Err != nil {
			continue
		}
		if v, err := core.As[T](t.Data); err == nil {
			out = append(out, v)
		}
	}
	return out
}

// Errors returns the error of every error tuple, in arrival order.
func (c *Collector[T]) Errors() []error {
	var out []error
	for _, t := range c.Tuples() {
		if t.Err != nil {
			out = append(out, t.Err)
		}
	}
	return out
}

// Err combines every recorded error, including type mismatches, into a
// single error. It returns nil when nothing failed.
func (c *Collector[T]) Err() error {
	var err error
	for _, t := range c.Tuples() {
		if t.Err != nil {
			err = multierr.Append(err, t.Err)
			continue
		}
		if _, terr := core.As[T](t.Data); terr != nil {
			err = multierr.Append(err, terr)
		}
	}
	return err
}

// Len returns the number of recorded tuples.
func (c *Collector[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tuples)
}
