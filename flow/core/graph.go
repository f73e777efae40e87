package core

// Connect attaches target downstream of upstream and returns a new handle onto
// target whose entry point is upstream's entry point.
//
// The receiver registered as upstream's subscriber is target.Entry(): the
// target itself when it was never attached, or the entry point of the chain it
// heads when target is a handle returned by an earlier Connect. The second case
// lets a pre-built chain be spliced in as a unit:
//
//	chain := parse.Connect(validate) // chain.Entry() == parse
//	src.Connect(chain)               // src -> parse -> validate
//
// Attachment never copies node state. Factories such as transform.Map return a
// fresh node on every call, so reusing one handler definition at several graph
// positions means calling the factory again.
func Connect(upstream, target Node) Node {
	upstream.node().subscribe(target.Entry())
	return target.rebind(upstream.Entry())
}

// Into attaches sink downstream of upstream and returns the sink.
func Into(upstream Node, sink *Sink) *Sink {
	upstream.node().subscribe(sink)
	return sink
}

// Identity creates a Transform that forwards every tuple unchanged.
func Identity(opts ...Option) *Transform {
	opts = append([]Option{WithName("identity")}, opts...)
	return NewTransform(func(err error, data any, next Next) {
		next(err, data)
	}, opts...)
}

// Merge creates one identity Transform and attaches every node to it. The
// returned Transform is the fan-in point; its own send operations inject at
// the merge point rather than at any of the merged sources.
func Merge(nodes ...Node) *Transform {
	merged := Identity(WithName("merge"))
	for _, n := range nodes {
		n.Connect(merged)
	}
	return merged
}
