package core

// Transform processes each tuple with a Handler and forwards whatever the
// handler passes to its continuation. It keeps no queue: every invocation is
// independent, and a panicking handler is not recovered here.
type Transform struct {
	*vertex
	handle
	handler Handler
}

// NewTransform creates a Transform around handler.
func NewTransform(handler Handler, opts ...Option) *Transform {
	if handler == nil {
		panic("bloem: nil handler")
	}
	t := &Transform{
		vertex:  newVertex(KindTransform, opts),
		handler: handler,
	}
	t.entry = t
	return t
}

// OnData invokes the handler with a continuation that fans out synchronously
// to every current subscriber.
func (t *Transform) OnData(err error, data any) {
	t.hooks.invokeDeliver(t.info(), err, data)
	t.handler(err, data, t.fanout)
}

// Connect attaches target downstream of the Transform.
func (t *Transform) Connect(target Node) Node {
	return Connect(t, target)
}

// Into attaches a terminal sink and returns it.
func (t *Transform) Into(sink *Sink) *Sink {
	return Into(t, sink)
}

func (t *Transform) node() *vertex { return t.vertex }

func (t *Transform) rebind(entry Node) Node {
	c := *t
	c.entry = entry
	return &c
}

// inject feeds the Transform itself. It is reached only through a handle whose
// entry point is the Transform, i.e. one that was never attached downstream of
// another node.
func (t *Transform) inject(err error, data any, deferred bool) {
	if deferred {
		t.cfg.Scheduler.Schedule(func() { t.OnData(err, data) })
		return
	}
	t.OnData(err, data)
}
