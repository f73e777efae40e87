package flow

import (
	"github.com/lguimbarda/bloem/flow/core"
)

// Chain connects nodes left to right and returns the handle onto the last
// one. Sending on the returned handle drives the first node. With no nodes it
// returns an identity Transform.
func Chain(nodes ...Node) Node {
	if len(nodes) == 0 {
		return core.Identity()
	}
	out := nodes[0]
	for _, n := range nodes[1:] {
		out = out.Connect(n)
	}
	return out
}

// Pipe connects src to each node in turn and finally to sink. It returns the
// sink so the call reads like Into.
func Pipe(src Node, sink *Sink, nodes ...Node) *Sink {
	return Chain(append([]Node{src}, nodes...)...).Into(sink)
}

// Through builds a reusable segment: it connects a fresh identity Transform to
// the nodes and returns the segment's head for attaching upstream and its tail
// for attaching downstream.
//
//	head, tail := flow.Through(transform.Map(double), filter.Filter(even))
//	src.Connect(head)
//	tail.Into(sink)
func Through(nodes ...Node) (head, tail Node) {
	head = core.Identity(WithName("through"))
	tail = Chain(append([]Node{head}, nodes...)...)
	return head, tail
}
