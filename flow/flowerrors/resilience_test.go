package flowerrors_test

import (
	"errors"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/lguimbarda/bloem/flow"
	"github.com/lguimbarda/bloem/flow/flowerrors"
	"github.com/lguimbarda/bloem/flow/transform"
)

var errTransient = errors.New("transient")

// flaky fails the first failures calls and then doubles its input.
func flaky(failures int) (flow.Func[int, int], *int) {
	calls := 0
	return flow.Sync(func(v int) (int, error) {
		calls++
		if calls <= failures {
			return 0, errTransient
		}
		return v * 2, nil
	}), &calls
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		failures   int
		wantValues []int
		wantCalls  int
	}{
		{name: "succeeds first time", maxRetries: 2, failures: 0, wantValues: []int{2}, wantCalls: 1},
		{name: "succeeds after retries", maxRetries: 2, failures: 2, wantValues: []int{2}, wantCalls: 3},
		{name: "exhausts retries", maxRetries: 2, failures: 5, wantValues: nil, wantCalls: 3},
		{name: "negative retries means one attempt", maxRetries: -1, failures: 1, wantValues: nil, wantCalls: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, calls := flaky(tt.failures)
			src := flow.NewSource()
			out := flow.Collect[int]()
			src.Connect(flowerrors.Retry(tt.maxRetries, op)).Into(out.Sink)
			src.SendSync(1)

			if got := out.Values(); !reflect.DeepEqual(got, tt.wantValues) {
				t.Errorf("values = %v, want %v", got, tt.wantValues)
			}
			if *calls != tt.wantCalls {
				t.Errorf("op called %d times, want %d", *calls, tt.wantCalls)
			}
			if tt.wantValues == nil {
				err := out.Err()
				if !errors.Is(err, flowerrors.ErrMaxRetries) || !errors.Is(err, errTransient) {
					t.Errorf("Err() = %v, want ErrMaxRetries wrapping the last failure", err)
				}
			}
		})
	}
}

func TestRetry_ErrorTuplesSkipOperation(t *testing.T) {
	op, calls := flaky(0)
	src := flow.NewSource()
	out := flow.Collect[int]()
	src.Connect(flowerrors.Retry(3, op)).Into(out.Sink)
	src.RaiseSync(errTransient)

	if *calls != 0 {
		t.Errorf("op called %d times for an error tuple", *calls)
	}
	if got := out.Errors(); !reflect.DeepEqual(got, []error{errTransient}) {
		t.Errorf("errors = %v, want [transient]", got)
	}
}

func TestRetryWhen(t *testing.T) {
	permanent := errors.New("permanent")
	calls := 0
	op := flow.Sync(func(int) (int, error) {
		calls++
		return 0, permanent
	})
	src := flow.NewSource()
	out := flow.Collect[int]()
	src.Connect(flowerrors.RetryWhen(5, func(err error, _ int) bool {
		return errors.Is(err, errTransient)
	}, op)).Into(out.Sink)
	src.SendSync(1)

	if calls != 1 {
		t.Errorf("op called %d times, want 1", calls)
	}
	if got := out.Errors(); len(got) != 1 || got[0] != permanent {
		t.Errorf("errors = %v, want the unwrapped permanent error", got)
	}
}

func TestRetryWithBackoff(t *testing.T) {
	tests := []struct {
		name     string
		strategy flowerrors.BackoffStrategy
		failures int
		wantMin  time.Duration
	}{
		{
			name:     "constant backoff",
			strategy: flowerrors.ConstantBackoff(10 * time.Millisecond),
			failures: 2,
			wantMin:  20 * time.Millisecond,
		},
		{
			name:     "linear backoff",
			strategy: flowerrors.LinearBackoff(5 * time.Millisecond),
			failures: 2,
			wantMin:  15 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loop := flow.NewLoop()
			op, _ := flaky(tt.failures)
			out := flow.Collect[int]()
			flow.FromSlice([]int{1}, flow.WithScheduler(loop)).
				Connect(flowerrors.RetryWithBackoff(loop, 3, tt.strategy, op)).
				Into(out.Sink)

			start := time.Now()
			loop.Drain()
			elapsed := time.Since(start)

			if got := out.Values(); !reflect.DeepEqual(got, []int{2}) {
				t.Errorf("values = %v, want [2]", got)
			}
			if elapsed < tt.wantMin {
				t.Errorf("elapsed %v, want at least %v", elapsed, tt.wantMin)
			}
		})
	}
}

func TestBackoffStrategies(t *testing.T) {
	exp := flowerrors.ExponentialBackoff(10*time.Millisecond, 50*time.Millisecond)
	want := []time.Duration{10, 20, 40, 50, 50}
	for attempt, w := range want {
		if got := exp(attempt); got != w*time.Millisecond {
			t.Errorf("ExponentialBackoff attempt %d = %v, want %v", attempt, got, w*time.Millisecond)
		}
	}

	lin := flowerrors.LinearBackoff(time.Second)
	if got := lin(2); got != 3*time.Second {
		t.Errorf("LinearBackoff(2) = %v, want 3s", got)
	}
}

func TestCircuitBreaker(t *testing.T) {
	fail := true
	cb := flowerrors.NewCircuitBreaker(func(v int) (int, error) {
		if fail {
			return 0, errTransient
		}
		return v, nil
	}, 2, 20*time.Millisecond, 1)

	src := flow.NewSource()
	out := flow.Collect[int]()
	src.Connect(flowerrors.WithCircuitBreaker(cb)).Into(out.Sink)

	src.SendSync(1)
	src.SendSync(2)
	if cb.State() != flowerrors.CircuitOpen {
		t.Fatalf("state = %v after two failures, want open", cb.State())
	}

	fail = false
	src.SendSync(3)
	errs := out.Errors()
	if len(errs) != 3 || !errors.Is(errs[2], flowerrors.ErrCircuitOpen) {
		t.Fatalf("errors = %v, want the third to be ErrCircuitOpen", errs)
	}

	time.Sleep(30 * time.Millisecond)
	src.SendSync(4)
	if cb.State() != flowerrors.CircuitClosed {
		t.Errorf("state = %v after a half-open success, want closed", cb.State())
	}
	if got := out.Values(); !reflect.DeepEqual(got, []int{4}) {
		t.Errorf("values = %v, want [4]", got)
	}
}

func TestFallback(t *testing.T) {
	src := flow.NewSource()
	out := flow.Collect[int]()
	src.Connect(flowerrors.Fallback(func(last int, _ error) int { return last * 10 })).Into(out.Sink)

	src.RaiseSync(errTransient) // no good value yet
	src.SendSync(2)
	src.RaiseSync(errTransient)

	want := []flow.Tuple{{Err: errTransient}, {Data: 2}, {Data: 20}}
	if got := out.Tuples(); !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestFallbackValue(t *testing.T) {
	src := flow.NewSource()
	out := flow.Collect[int]()
	src.Connect(flowerrors.FallbackValue(-1)).Into(out.Sink)

	src.SendSync(5)
	src.RaiseSync(errTransient)

	if got := out.Values(); !reflect.DeepEqual(got, []int{5, -1}) {
		t.Errorf("got %v, want [5 -1]", got)
	}
}

func TestRecoverPanic(t *testing.T) {
	boom := flow.Pure(func(string) string { panic("boom") })
	src := flow.NewSource()
	out := flow.Collect[string]()
	src.Connect(transform.Map(boom)).
		Connect(flowerrors.RecoverPanic(func(v any) (string, error) { return fmt.Sprint("recovered ", v), nil })).
		Into(out.Sink)

	src.SendSync("x")
	src.RaiseSync(errTransient)

	if got := out.Values(); !reflect.DeepEqual(got, []string{"recovered boom"}) {
		t.Errorf("values = %v, want [recovered boom]", got)
	}
	if got := out.Errors(); !reflect.DeepEqual(got, []error{errTransient}) {
		t.Errorf("errors = %v, want [transient]", got)
	}
}
