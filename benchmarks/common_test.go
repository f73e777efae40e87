// Package benchmarks compares bloem graphs against popular Go stream and
// slice processing libraries.
package benchmarks

import (
	"github.com/lguimbarda/bloem/flow"
	"github.com/lguimbarda/bloem/flow/aggregate"
	"github.com/lguimbarda/bloem/flow/filter"
	"github.com/lguimbarda/bloem/flow/transform"
)

// Test data sizes
const (
	SmallSize  = 100
	MediumSize = 1_000
	LargeSize  = 10_000
)

// generateInts creates a slice of integers for benchmarking.
func generateInts(n int) []int {
	data := make([]int, n)
	for i := range data {
		data[i] = i
	}
	return data
}

func square(x int) int {
	return x * x
}

func isEven(x int) bool {
	return x%2 == 0
}

func add(a, b int) int {
	return a + b
}

// last is a Sink that keeps the most recent value it received.
type last struct {
	value int
	sink  *flow.Sink
}

func newLast() *last {
	l := &last{}
	l.sink = flow.ForEach(func(v int) { l.value = v })
	return l
}

// sendAll pushes data into node synchronously, one SendSync per value.
func sendAll(node flow.Node, data []int) {
	for _, v := range data {
		node.SendSync(v)
	}
}

// mapFilterReduce builds square -> isEven -> running sum downstream of src
// and returns the Sink that receives the sums.
func mapFilterReduce(src flow.Node) *last {
	out := newLast()
	src.Connect(transform.Map(flow.Pure(square))).
		Connect(filter.Filter(flow.Pure(isEven))).
		Connect(aggregate.Reduce(flow.Pure2(add), 0)).
		Into(out.sink)
	return out
}
