package flowerrors

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/lguimbarda/bloem/flow/core"
	"github.com/lguimbarda/bloem/flow/transform"
)

// ErrMaxRetries is wrapped around the last error once every retry failed.
var ErrMaxRetries = errors.New("max retries exceeded")

// ErrCircuitOpen is returned when a circuit breaker is in the open state.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Retry creates a Transform that calls op for each value and retries it up to
// maxRetries more times while it fails. The final failure is forwarded wrapped
// in ErrMaxRetries. Error tuples pass through without calling op.
func Retry[T, R any](maxRetries int, op core.Func[T, R], opts ...core.Option) *core.Transform {
	return RetryWhen(maxRetries, func(error, int) bool { return true }, op,
		append([]core.Option{core.WithName("retry")}, opts...)...)
}

// RetryWhen is Retry with a predicate that receives the error and the
// zero-based attempt number and decides whether to try again. When the
// predicate declines, the error is forwarded unwrapped.
func RetryWhen[T, R any](maxRetries int, shouldRetry func(err error, attempt int) bool, op core.Func[T, R], opts ...core.Option) *core.Transform {
	return retry(maxRetries, shouldRetry, op, func(_ int, again func()) { again() },
		append([]core.Option{core.WithName("retryWhen")}, opts...))
}

// BackoffStrategy defines how to calculate delay between retries.
type BackoffStrategy func(attempt int) time.Duration

// ConstantBackoff returns a BackoffStrategy that always waits the same duration.
func ConstantBackoff(delay time.Duration) BackoffStrategy {
	return func(int) time.Duration {
		return delay
	}
}

// LinearBackoff returns a BackoffStrategy that increases delay linearly.
func LinearBackoff(initialDelay time.Duration) BackoffStrategy {
	return func(attempt int) time.Duration {
		return initialDelay * time.Duration(attempt+1)
	}
}

// ExponentialBackoff returns a BackoffStrategy that doubles delay each attempt.
// The delay is capped at maxDelay if provided (use 0 for no cap).
func ExponentialBackoff(initialDelay, maxDelay time.Duration) BackoffStrategy {
	return func(attempt int) time.Duration {
		delay := time.Duration(float64(initialDelay) * math.Pow(2, float64(attempt)))
		if maxDelay > 0 && delay > maxDelay {
			return maxDelay
		}
		return delay
	}
}

// RetryWithBackoff is Retry with a delay between attempts. The delay is spent
// off the loop through Loop.Go, so other tasks keep running while a value
// waits for its next attempt.
func RetryWithBackoff[T, R any](loop *core.Loop, maxRetries int, backoff BackoffStrategy, op core.Func[T, R], opts ...core.Option) *core.Transform {
	wait := func(attempt int, again func()) {
		delay := backoff(attempt)
		loop.Go(func() func() {
			time.Sleep(delay)
			return again
		})
	}
	return retry(maxRetries, func(error, int) bool { return true }, op, wait,
		append([]core.Option{core.WithName("retryWithBackoff")}, opts...))
}

func retry[T, R any](maxRetries int, shouldRetry func(error, int) bool, op core.Func[T, R], wait func(attempt int, again func()), opts []core.Option) *core.Transform {
	maxRetries = max(maxRetries, 0)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			next(err, nil)
			return
		}
		v, err := core.As[T](data)
		if err != nil {
			next(err, nil)
			return
		}

		var attempt func(n int)
		attempt = func(n int) {
			op.Call(v, func(err error, r R) {
				switch {
				case err == nil:
					next(nil, r)
				case !shouldRetry(err, n):
					next(err, nil)
				case n >= maxRetries:
					next(fmt.Errorf("%w: %w", ErrMaxRetries, err), nil)
				default:
					wait(n, func() { attempt(n + 1) })
				}
			})
		}
		attempt(0)
	}, opts...)
}

// CircuitState represents the state of a circuit breaker.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker wraps an operation with circuit breaker pattern.
//   - failureThreshold: number of failures before opening the circuit
//   - resetTimeout: duration to wait before trying half-open state
//   - halfOpenSuccesses: number of successes in half-open before fully closing
type CircuitBreaker[T, R any] struct {
	operation         func(T) (R, error)
	failureThreshold  int
	resetTimeout      time.Duration
	halfOpenSuccesses int
	now               func() time.Time

	mu          sync.RWMutex
	state       CircuitState
	failures    int
	successes   int
	lastFailure time.Time
}

// NewCircuitBreaker creates a new circuit breaker with the given configuration.
// Non-positive settings fall back to 5 failures, 30 seconds and 1 success.
func NewCircuitBreaker[T, R any](
	operation func(T) (R, error),
	failureThreshold int,
	resetTimeout time.Duration,
	halfOpenSuccesses int,
) *CircuitBreaker[T, R] {
	if failureThreshold <= 0 {
		failureThreshold = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	if halfOpenSuccesses <= 0 {
		halfOpenSuccesses = 1
	}

	return &CircuitBreaker[T, R]{
		operation:         operation,
		failureThreshold:  failureThreshold,
		resetTimeout:      resetTimeout,
		halfOpenSuccesses: halfOpenSuccesses,
		now:               time.Now,
		state:             CircuitClosed,
	}
}

// Execute runs the operation through the circuit breaker.
func (cb *CircuitBreaker[T, R]) Execute(value T) (R, error) {
	cb.mu.Lock()
	if cb.state == CircuitOpen && cb.now().Sub(cb.lastFailure) >= cb.resetTimeout {
		cb.state = CircuitHalfOpen
		cb.successes = 0
	}
	if cb.state == CircuitOpen {
		cb.mu.Unlock()
		var zero R
		return zero, ErrCircuitOpen
	}
	cb.mu.Unlock()

	result, err := cb.operation(value)

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failures++
		cb.lastFailure = cb.now()
		if cb.state == CircuitHalfOpen || cb.failures >= cb.failureThreshold {
			cb.state = CircuitOpen
		}
		return result, err
	}

	if cb.state == CircuitHalfOpen {
		cb.successes++
		if cb.successes >= cb.halfOpenSuccesses {
			cb.state = CircuitClosed
			cb.failures = 0
		}
	} else {
		cb.failures = 0
	}
	return result, nil
}

// State returns the current circuit state.
func (cb *CircuitBreaker[T, R]) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}

// WithCircuitBreaker creates a Transform that runs each value through cb.
// While the circuit is open every value becomes an ErrCircuitOpen tuple.
func WithCircuitBreaker[T, R any](cb *CircuitBreaker[T, R], opts ...core.Option) *core.Transform {
	return transform.Map(core.Sync(cb.Execute), append([]core.Option{core.WithName("circuitBreaker")}, opts...)...)
}

// Fallback creates a Transform that replaces each error with a value computed
// from the last good value and the error. Errors that arrive before any good
// value pass through.
func Fallback[T any](fallbackFn func(last T, err error) T, opts ...core.Option) *core.Transform {
	var last T
	hasLast := false
	opts = append([]core.Option{core.WithName("fallback")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		if err != nil {
			if !hasLast {
				next(err, nil)
				return
			}
			next(nil, fallbackFn(last, err))
			return
		}
		v, err := core.As[T](data)
		if err != nil {
			next(err, nil)
			return
		}
		last, hasLast = v, true
		next(nil, v)
	}, opts...)
}

// FallbackValue creates a Transform that replaces every error with value.
func FallbackValue[T any](value T, opts ...core.Option) *core.Transform {
	return Rescue(core.Pure(func(error) T { return value }), true,
		append([]core.Option{core.WithName("fallbackValue")}, opts...)...)
}

// Recover creates a Transform that maps each error through recoverFn, which
// may produce a replacement value or a new error. Data passes through.
func Recover[T any](recoverFn func(error) (T, error), opts ...core.Option) *core.Transform {
	return Rescue(core.Sync(recoverFn), true, append([]core.Option{core.WithName("recover")}, opts...)...)
}

// RecoverPanic is Recover restricted to errors produced by a recovered panic.
// Other errors pass through.
func RecoverPanic[T any](recoverFn func(panicValue any) (T, error), opts ...core.Option) *core.Transform {
	return Recover(func(err error) (T, error) {
		var panicErr core.ErrPanic
		if errors.As(err, &panicErr) {
			return recoverFn(panicErr.Value)
		}
		var zero T
		return zero, err
	}, append([]core.Option{core.WithName("recoverPanic")}, opts...)...)
}
