package flow_test

import (
	"errors"
	"maps"
	"reflect"
	"slices"
	"testing"

	"github.com/lguimbarda/bloem/flow"
)

func TestFromSlice(t *testing.T) {
	tests := []struct {
		name  string
		input []int
		want  []int
	}{
		{name: "empty", input: []int{}, want: nil},
		{name: "single", input: []int{42}, want: []int{42}},
		{name: "several", input: []int{1, 2, 3, 4, 5}, want: []int{1, 2, 3, 4, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop := flow.NewLoop()
			out := flow.Collect[int]()
			flow.FromSlice(tt.input, flow.WithScheduler(loop)).Into(out.Sink)

			if out.Len() != 0 {
				t.Fatal("generator emitted before the loop was drained")
			}
			loop.Drain()

			if got := out.Values(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromSlice_OneElementPerTick(t *testing.T) {
	loop := flow.NewLoop()
	out := flow.Collect[string]()
	flow.FromSlice([]string{"a", "b", "c"}, flow.WithScheduler(loop)).Into(out.Sink)

	for i := 1; i <= 3; i++ {
		if !loop.Step() {
			t.Fatalf("loop empty before element %d", i)
		}
		if out.Len() != i {
			t.Fatalf("after %d ticks got %d values, want %d", i, out.Len(), i)
		}
	}
	// The final tick finds the slice exhausted.
	loop.Drain()
	if out.Len() != 3 {
		t.Errorf("got %d values, want 3", out.Len())
	}
}

func TestFromSlice_SeveralSubscribers(t *testing.T) {
	loop := flow.NewLoop()
	gen := flow.FromSlice([]int{1, 2}, flow.WithScheduler(loop))
	a, b := flow.Collect[int](), flow.Collect[int]()
	gen.Into(a.Sink)
	gen.Into(b.Sink)
	loop.Drain()

	if !reflect.DeepEqual(a.Values(), []int{1, 2}) || !reflect.DeepEqual(b.Values(), []int{1, 2}) {
		t.Errorf("a = %v, b = %v, want both [1 2]", a.Values(), b.Values())
	}
}

func TestRange(t *testing.T) {
	tests := []struct {
		start, end int
		want       []int
	}{
		{0, 3, []int{0, 1, 2}},
		{5, 8, []int{5, 6, 7}},
		{3, 3, nil},
		{4, 1, nil},
	}
	for _, tt := range tests {
		loop := flow.NewLoop()
		out := flow.Collect[int]()
		flow.Range(tt.start, tt.end, flow.WithScheduler(loop)).Into(out.Sink)
		loop.Drain()
		if got := out.Values(); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Range(%d, %d) = %v, want %v", tt.start, tt.end, got, tt.want)
		}
	}
}

func TestGenerate(t *testing.T) {
	loop := flow.NewLoop()
	out := flow.Collect[int]()
	flow.Generate(func(i int) (int, bool) {
		return i * i, i < 4
	}, flow.WithScheduler(loop)).Into(out.Sink)
	loop.Drain()

	if got := out.Values(); !reflect.DeepEqual(got, []int{0, 1, 4, 9}) {
		t.Errorf("got %v, want [0 1 4 9]", got)
	}
}

func TestGenerate_ForwardsForeignTuples(t *testing.T) {
	loop := flow.NewLoop()
	out := flow.Collect[any]()
	gen := flow.Generate(func(int) (int, bool) { return 0, false }, flow.WithScheduler(loop))
	gen.Into(out.Sink)

	boom := errors.New("boom")
	gen.RaiseSync(boom)
	gen.SendSync("not an index")
	loop.Drain()

	want := []flow.Tuple{{Err: boom}, {Data: "not an index"}}
	if !reflect.DeepEqual(out.Tuples(), want) {
		t.Errorf("got %+v, want %+v", out.Tuples(), want)
	}
}

func TestFromIter(t *testing.T) {
	loop := flow.NewLoop()
	out := flow.Collect[string]()
	m := map[string]int{"a": 1, "b": 2, "c": 3}
	flow.FromIter(slices.Values(slices.Sorted(maps.Keys(m))), flow.WithScheduler(loop)).Into(out.Sink)
	loop.Drain()

	if got := out.Values(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Errorf("got %v, want [a b c]", got)
	}
}

func TestFromIter_RunsIteratorToCompletion(t *testing.T) {
	loop := flow.NewLoop()
	out := flow.Collect[int]()
	stopped := false
	seq := func(yield func(int) bool) {
		defer func() { stopped = true }()
		for i := 0; i < 2; i++ {
			if !yield(i) {
				return
			}
		}
	}
	flow.FromIter(seq, flow.WithScheduler(loop)).Into(out.Sink)
	loop.Drain()

	if !stopped {
		t.Error("iterator was not run to completion")
	}
	if got := out.Values(); !reflect.DeepEqual(got, []int{0, 1}) {
		t.Errorf("got %v, want [0 1]", got)
	}
}

func TestFromChannel(t *testing.T) {
	loop := flow.NewLoop()
	ch := make(chan int)
	out := flow.Collect[int]()
	flow.FromChannel(ch, loop).Into(out.Sink)

	go func() {
		defer close(ch)
		for i := 1; i <= 3; i++ {
			ch <- i
		}
	}()
	loop.Drain()

	if got := out.Values(); !reflect.DeepEqual(got, []int{1, 2, 3}) {
		t.Errorf("got %v, want [1 2 3]", got)
	}
}

func TestOnce(t *testing.T) {
	loop := flow.NewLoop()
	out := flow.Collect[string]()
	flow.Once("hello", flow.WithScheduler(loop)).Into(out.Sink)
	loop.Drain()

	if got := out.Values(); !reflect.DeepEqual(got, []string{"hello"}) {
		t.Errorf("got %v, want [hello]", got)
	}
}

func TestFail(t *testing.T) {
	loop := flow.NewLoop()
	boom := errors.New("boom")
	out := flow.Collect[int]()
	flow.Fail(boom, flow.WithScheduler(loop)).Into(out.Sink)
	loop.Drain()

	if !errors.Is(out.Err(), boom) {
		t.Errorf("Err() = %v, want %v", out.Err(), boom)
	}
	if len(out.Values()) != 0 {
		t.Errorf("Values() = %v, want none", out.Values())
	}
}
