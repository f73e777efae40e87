package flow_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lguimbarda/bloem/flow"
	"github.com/lguimbarda/bloem/flow/aggregate"
	"github.com/lguimbarda/bloem/flow/transform"
)

func double() *flow.Transform {
	return transform.Map(flow.Pure(func(n int) int { return n * 2 }))
}

func TestPipeline_MapThenRunningSum(t *testing.T) {
	loop := flow.NewLoop()
	out := flow.Collect[int]()

	flow.FromSlice([]int{1, 2, 3, 4, 5}, flow.WithScheduler(loop)).
		Connect(double()).
		Connect(aggregate.Reduce(flow.Pure2(func(acc, n int) int { return acc + n }), 0)).
		Into(out.Sink)
	loop.Drain()

	if got := out.Values(); !reflect.DeepEqual(got, []int{2, 6, 12, 20, 30}) {
		t.Errorf("got %v, want [2 6 12 20 30]", got)
	}
}

func TestChain(t *testing.T) {
	out := flow.Collect[int]()
	chain := flow.Chain(flow.NewSource(), double(), double())
	chain.Into(out.Sink)

	// The handle returned by Chain drives the first node.
	chain.SendSync(3)

	if got := out.Values(); !reflect.DeepEqual(got, []int{12}) {
		t.Errorf("got %v, want [12]", got)
	}
}

func TestChain_Empty(t *testing.T) {
	out := flow.Collect[int]()
	chain := flow.Chain()
	chain.Into(out.Sink)
	chain.SendSync(7)

	if got := out.Values(); !reflect.DeepEqual(got, []int{7}) {
		t.Errorf("got %v, want [7]", got)
	}
}

func TestPipe(t *testing.T) {
	src := flow.NewSource()
	out := flow.Collect[int]()
	flow.Pipe(src, out.Sink, double(), double(), double())

	src.SendSync(1)
	boom := errors.New("boom")
	src.RaiseSync(boom)

	if got := out.Values(); !reflect.DeepEqual(got, []int{8}) {
		t.Errorf("got %v, want [8]", got)
	}
	if got := out.Errors(); !reflect.DeepEqual(got, []error{boom}) {
		t.Errorf("errors = %v, want [boom]", got)
	}
}

func TestThrough(t *testing.T) {
	head, tail := flow.Through(double(), transform.Map(flow.Pure(func(n int) int { return n + 1 })))

	a, b := flow.NewSource(), flow.NewSource()
	a.Connect(head)
	b.Connect(head)
	out := flow.Collect[int]()
	tail.Into(out.Sink)

	a.SendSync(1)
	b.SendSync(10)

	if got := out.Values(); !reflect.DeepEqual(got, []int{3, 21}) {
		t.Errorf("got %v, want [3 21]", got)
	}
}
