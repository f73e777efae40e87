package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestTransform_IdentityLaw(t *testing.T) {
	boom := errors.New("boom")
	var rec recorder
	src := NewSource()
	src.Connect(Identity()).Into(rec.sink())

	in := []Tuple{{Data: 1}, {Err: boom}, {Data: "two"}, {Data: nil}}
	for _, tup := range in {
		src.SendAndRaiseSync(tup.Err, tup.Data)
	}

	if !reflect.DeepEqual(rec.tuples, in) {
		t.Errorf("got %+v, want %+v", rec.tuples, in)
	}
}

func TestTransform_Drop(t *testing.T) {
	var rec recorder
	src := NewSource()
	src.Connect(NewTransform(func(err error, data any, next Next) {
		if data.(int)%2 == 0 {
			return
		}
		next(err, data)
	})).Into(rec.sink())

	for i := 1; i <= 5; i++ {
		src.SendSync(i)
	}

	want := []any{1, 3, 5}
	if !reflect.DeepEqual(rec.data(), want) {
		t.Errorf("got %v, want %v", rec.data(), want)
	}
}

func TestTransform_HandlerReceivesBothSlots(t *testing.T) {
	boom := errors.New("boom")
	var gotErr error
	var gotData any
	src := NewSource()
	src.Connect(NewTransform(func(err error, data any, next Next) {
		gotErr, gotData = err, data
	}))

	src.SendAndRaiseSync(boom, 7)

	if gotErr != boom || gotData != 7 {
		t.Errorf("handler got (%v, %v), want (boom, 7)", gotErr, gotData)
	}
}

func TestTransform_PanicNotRecovered(t *testing.T) {
	src := NewSource()
	src.Connect(NewTransform(func(error, any, Next) {
		panic("handler failure")
	}))

	defer func() {
		if r := recover(); r != "handler failure" {
			t.Errorf("recovered %v, want handler failure", r)
		}
	}()
	src.SendSync(1)
	t.Fatal("panic did not propagate")
}

func TestTransform_NilHandlerPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("NewTransform(nil) did not panic")
		}
	}()
	NewTransform(nil)
}

func TestConnect_HandleReinjectsAtSource(t *testing.T) {
	var rec recorder
	src := NewSource(WithName("src"))

	tail := src.Connect(Identity()).Connect(Identity())
	tail.Into(rec.sink())

	if tail.Entry() != Node(src) {
		t.Fatalf("tail.Entry() = %v, want the source", tail.Entry().Name())
	}

	tail.SendSync(1)
	tail.RaiseSync(errors.New("e"))

	if len(rec.tuples) != 2 {
		t.Fatalf("got %d tuples, want 2", len(rec.tuples))
	}
	if rec.tuples[0].Data != 1 || rec.tuples[1].Err == nil {
		t.Errorf("unexpected tuples %+v", rec.tuples)
	}
}

func TestConnect_ReturnsNewHandleOntoSameVertex(t *testing.T) {
	src := NewSource()
	m := Identity()

	h := src.Connect(m)

	if h == Node(m) {
		t.Fatal("Connect returned the template handle itself")
	}
	if h.ID() != m.ID() {
		t.Errorf("handle ID %v differs from template %v", h.ID(), m.ID())
	}
	if m.Entry() != Node(m) {
		t.Error("attaching must not change the template handle's entry point")
	}
	if src.Subscribers() != 1 {
		t.Errorf("src.Subscribers() = %d, want 1", src.Subscribers())
	}
}

func TestConnect_SplicesPrebuiltChain(t *testing.T) {
	var trace []string
	step := func(name string) *Transform {
		return NewTransform(func(err error, data any, next Next) {
			trace = append(trace, name)
			next(err, data)
		}, WithName(name))
	}

	first := step("first")
	chain := first.Connect(step("second"))
	if chain.Entry() != Node(first) {
		t.Fatalf("chain.Entry() = %s, want first", chain.Entry().Name())
	}

	src := NewSource()
	spliced := src.Connect(chain)
	var rec recorder
	spliced.Into(rec.sink())

	src.SendSync("x")

	if !reflect.DeepEqual(trace, []string{"first", "second"}) {
		t.Errorf("trace = %v, want [first second]", trace)
	}
	if spliced.Entry() != Node(src) {
		t.Errorf("spliced.Entry() = %s, want the source", spliced.Entry().Name())
	}
	if len(rec.tuples) != 1 {
		t.Errorf("got %d tuples at sink, want 1", len(rec.tuples))
	}
}

func TestTransform_UnattachedSendFeedsItself(t *testing.T) {
	loop := NewLoop()
	var rec recorder
	m := NewTransform(func(err error, data any, next Next) {
		next(err, data.(int)+1)
	}, WithScheduler(loop))
	m.Into(rec.sink())

	m.SendSync(1)
	m.Send(10)
	if len(rec.tuples) != 1 {
		t.Fatalf("got %d tuples before drain, want 1", len(rec.tuples))
	}
	loop.Drain()

	want := []any{2, 11}
	if !reflect.DeepEqual(rec.data(), want) {
		t.Errorf("got %v, want %v", rec.data(), want)
	}
}

func TestMerge(t *testing.T) {
	var rec recorder
	a := NewSource(WithName("a"))
	b := NewSource(WithName("b"))
	merged := Merge(a, b)
	merged.Into(rec.sink())

	a.SendSync("a1")
	b.SendSync("b1")
	a.RaiseSync(errors.New("a-err"))

	if len(rec.tuples) != 3 {
		t.Fatalf("got %d tuples, want 3", len(rec.tuples))
	}
	if !reflect.DeepEqual(rec.data(), []any{"a1", "b1"}) {
		t.Errorf("got %v, want [a1 b1]", rec.data())
	}
	if merged.Entry() != Node(merged) {
		t.Error("merge point should be its own entry point")
	}
	if merged.Name() != "merge" {
		t.Errorf("Name() = %q, want merge", merged.Name())
	}
}

func TestSink_Kind(t *testing.T) {
	s := NewSink(func(error, any) {}, WithName("out"))
	if s.Kind() != KindSink || s.Name() != "out" {
		t.Errorf("got kind %v name %q", s.Kind(), s.Name())
	}
}
