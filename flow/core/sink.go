package core

// Sink is a terminal consumer. It has no subscribers and propagates nothing.
// A panic inside its function is not recovered anywhere in the graph.
type Sink struct {
	*vertex
	fn func(err error, data any)
}

// NewSink creates a Sink that calls fn for every delivered tuple.
func NewSink(fn func(err error, data any), opts ...Option) *Sink {
	if fn == nil {
		panic("bloem: nil sink function")
	}
	return &Sink{
		vertex: newVertex(KindSink, opts),
		fn:     fn,
	}
}

// OnData calls the sink function directly.
func (s *Sink) OnData(err error, data any) {
	s.hooks.invokeDeliver(s.info(), err, data)
	s.fn(err, data)
}
