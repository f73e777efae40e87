package combine_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lguimbarda/bloem/flow"
	"github.com/lguimbarda/bloem/flow/combine"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name    string
		streams [][]int
		want    []int
	}{
		{name: "two streams", streams: [][]int{{1, 2}, {10, 20}}, want: []int{1, 10, 2, 20}},
		{name: "uneven streams", streams: [][]int{{1}, {10, 20, 30}}, want: []int{1, 10, 20, 30}},
		{name: "single stream", streams: [][]int{{1, 2, 3}}, want: []int{1, 2, 3}},
		{name: "no streams", streams: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop := flow.NewLoop()
			var nodes []flow.Node
			for _, s := range tt.streams {
				nodes = append(nodes, flow.FromSlice(s, flow.WithScheduler(loop)))
			}
			out := flow.Collect[int]()
			combine.Merge(nodes...).Into(out.Sink)
			loop.Drain()

			// Generators interleave one element per tick in creation order.
			if got := out.Values(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestZip(t *testing.T) {
	a, b := flow.NewSource(), flow.NewSource()
	out := flow.Collect[combine.Pair[int, string]]()
	combine.Zip[int, string](a, b).Into(out.Sink)

	a.SendSync(1)
	a.SendSync(2)
	b.SendSync("one")
	b.SendSync("two")
	b.SendSync("three") // waits for a third left value

	want := []combine.Pair[int, string]{{First: 1, Second: "one"}, {First: 2, Second: "two"}}
	if got := out.Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	a.SendSync(3)
	if got := out.Values(); len(got) != 3 || got[2] != (combine.Pair[int, string]{First: 3, Second: "three"}) {
		t.Errorf("got %v, want a third pair {3 three}", got)
	}
}

func TestZipWith_ErrorsPassThrough(t *testing.T) {
	boom := errors.New("boom")
	a, b := flow.NewSource(), flow.NewSource()
	out := flow.Collect[int]()
	combine.ZipWith(a, b, func(x, y int) int { return x + y }).Into(out.Sink)

	a.SendSync(1)
	b.RaiseSync(boom)
	b.SendSync(2)

	want := []flow.Tuple{{Err: boom}, {Data: 3}}
	if got := out.Tuples(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCombineLatest(t *testing.T) {
	a, b := flow.NewSource(), flow.NewSource()
	out := flow.Collect[[]int]()
	combine.CombineLatest[int]([]flow.Node{a, b}).Into(out.Sink)

	a.SendSync(1) // b has not emitted yet
	b.SendSync(10)
	a.SendSync(2)
	b.SendSync(20)

	want := [][]int{{1, 10}, {2, 10}, {2, 20}}
	if got := out.Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestWithLatestFrom(t *testing.T) {
	src, other := flow.NewSource(), flow.NewSource()
	out := flow.Collect[combine.Pair[string, int]]()
	combine.WithLatestFrom[string, int](src, other).Into(out.Sink)

	src.SendSync("dropped")
	other.SendSync(1)
	other.SendSync(2)
	src.SendSync("a")
	other.SendSync(3)
	src.SendSync("b")

	want := []combine.Pair[string, int]{{First: "a", Second: 2}, {First: "b", Second: 3}}
	if got := out.Values(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRace(t *testing.T) {
	a, b := flow.NewSource(), flow.NewSource()
	out := flow.Collect[string]()
	combine.Race([]flow.Node{a, b}).Into(out.Sink)

	b.SendSync("b1")
	a.SendSync("a1")
	b.SendSync("b2")

	if got := out.Values(); !reflect.DeepEqual(got, []string{"b1", "b2"}) {
		t.Errorf("got %v, want [b1 b2]", got)
	}
}
