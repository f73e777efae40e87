package core

// Source is the entry point of a graph. It has no upstream of its own and
// emits tuples to its subscribers either synchronously or one scheduler tick
// later. A Source never fails: with no subscribers a tuple is dropped.
type Source struct {
	*vertex
	handle
}

// NewSource creates a Source with no subscribers.
func NewSource(opts ...Option) *Source {
	s := &Source{vertex: newVertex(KindSource, opts)}
	s.entry = s
	return s
}

// OnData forwards a tuple delivered by an upstream node to the Source's own
// subscribers. This is what lets a Source be attached as a target.
func (s *Source) OnData(err error, data any) {
	s.hooks.invokeDeliver(s.info(), err, data)
	s.fanout(err, data)
}

// Connect attaches target downstream of the Source. See the package-level
// Connect for the full protocol.
func (s *Source) Connect(target Node) Node {
	return Connect(s, target)
}

// Into attaches a terminal sink and returns it.
func (s *Source) Into(sink *Sink) *Sink {
	return Into(s, sink)
}

func (s *Source) node() *vertex { return s.vertex }

func (s *Source) rebind(entry Node) Node {
	c := *s
	c.entry = entry
	return &c
}

func (s *Source) inject(err error, data any, deferred bool) {
	if deferred {
		s.cfg.Scheduler.Schedule(func() { s.fanout(err, data) })
		return
	}
	s.fanout(err, data)
}

// Produce creates a Source fed by produce, which runs off the loop through
// Loop.Go. Every emit call schedules one tuple for emission on the loop, so
// produce may block on I/O without touching the graph. emit must not be called
// after produce returns.
//
// The producer starts immediately; attach subscribers before running loop.
func Produce(loop *Loop, produce func(emit Next), opts ...Option) *Source {
	src := NewSource(append([]Option{WithName("produce"), WithScheduler(loop)}, opts...)...)
	loop.Go(func() func() {
		produce(func(err error, data any) {
			loop.Schedule(func() { src.SendAndRaiseSync(err, data) })
		})
		return nil
	})
	return src
}
