package core

import "fmt"

// BoundedTransform is a Transform with a FIFO queue and a window of at most
// limit active tuples. With limit 1 it processes and forwards tuples in strict
// arrival order with exactly one handler call in flight, which is what keeps
// running state in folds consistent when handlers complete asynchronously.
//
// For limit > 1 the node keeps the selection rule it has always had: each
// drain step hands the handler the tuple at index min(limit-1, len(queue)-1),
// i.e. the newest tuple inside the window, and every completion removes the
// queue head. This is not a bounded worker pool and ordering is not
// guaranteed; do not rely on it without pinning the behavior with tests.
type BoundedTransform struct {
	*vertex
	handle
	*window
}

// window is the queue state shared by every handle onto one BoundedTransform.
type window struct {
	handler Handler
	limit   int
	queue   []Tuple
}

// NewBounded creates a BoundedTransform. It panics if limit is less than 1.
func NewBounded(limit int, handler Handler, opts ...Option) *BoundedTransform {
	if limit < 1 {
		panic(fmt.Sprintf("bloem: bounded transform limit must be positive, got %d", limit))
	}
	if handler == nil {
		panic("bloem: nil handler")
	}
	b := &BoundedTransform{
		vertex: newVertex(KindBounded, opts),
		window: &window{handler: handler, limit: limit},
	}
	b.entry = b
	return b
}

// NewSequential creates a BoundedTransform with limit 1.
func NewSequential(handler Handler, opts ...Option) *BoundedTransform {
	return NewBounded(1, handler, opts...)
}

// Limit returns the size of the active window.
func (b *BoundedTransform) Limit() int { return b.limit }

// QueueLen returns the number of tuples queued, including the ones in flight.
func (b *BoundedTransform) QueueLen() int { return len(b.queue) }

// OnData queues the tuple and starts draining if it landed inside the window.
func (b *BoundedTransform) OnData(err error, data any) {
	b.hooks.invokeDeliver(b.info(), err, data)
	b.queue = append(b.queue, Tuple{Err: err, Data: data})
	b.queued()

	if len(b.queue) <= b.limit {
		b.drain()
	}
}

// drain runs the handler on the selected tuple until the queue is empty or a
// handler returns without completing. A continuation called before its
// handler returns only forwards and pops; the loop below picks the next tuple,
// so a long run of synchronous completions does not grow the stack. A
// continuation called later restarts draining itself.
func (b *BoundedTransform) drain() {
	for {
		i := min(b.limit-1, len(b.queue)-1)
		t := b.queue[i]

		running, completed := true, false
		b.handler(t.Err, t.Data, func(err error, data any) {
			b.fanout(err, data)

			// With limit > 1 more completions than queued tuples can arrive.
			if len(b.queue) > 0 {
				b.queue[0] = Tuple{}
				b.queue = b.queue[1:]
			}
			b.queued()

			if running {
				completed = true
				return
			}
			if len(b.queue) >= 1 {
				b.drain()
			}
		})
		running = false

		if !completed || len(b.queue) == 0 {
			return
		}
	}
}

func (b *BoundedTransform) queued() {
	depth := len(b.queue)
	b.hooks.invokeQueue(b.info(), depth)
	if depth > b.limit {
		b.logger.V(2).Info("tuple waiting outside window", "depth", depth, "limit", b.limit)
	}
}

// Connect attaches target downstream of the BoundedTransform.
func (b *BoundedTransform) Connect(target Node) Node {
	return Connect(b, target)
}

// Into attaches a terminal sink and returns it.
func (b *BoundedTransform) Into(sink *Sink) *Sink {
	return Into(b, sink)
}

func (b *BoundedTransform) node() *vertex { return b.vertex }

func (b *BoundedTransform) rebind(entry Node) Node {
	c := *b
	c.entry = entry
	return &c
}

func (b *BoundedTransform) inject(err error, data any, deferred bool) {
	if deferred {
		b.cfg.Scheduler.Schedule(func() { b.OnData(err, data) })
		return
	}
	b.OnData(err, data)
}
