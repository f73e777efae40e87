package flowerrors

import (
	"sync"
	"sync/atomic"

	"github.com/lguimbarda/bloem/flow/core"
)

// The observers in this file watch the error tuples a node emits through its
// OnEmit hook. They do not modify the data flow; for that use the Transforms
// in error.go and resilience.go. Pass the returned Option to the node to
// observe.

// ErrorCounter counts errors that match a predicate.
type ErrorCounter struct {
	predicate func(error) bool
	count     atomic.Int64
}

// Count returns the number of errors counted.
func (c *ErrorCounter) Count() int64 {
	return c.count.Load()
}

// WithErrorCounter returns an Option that counts the errors a node emits,
// and the counter. If predicate is nil, all errors are counted.
func WithErrorCounter(predicate func(error) bool) (core.Option, *ErrorCounter) {
	if predicate == nil {
		predicate = func(error) bool { return true }
	}
	counter := &ErrorCounter{predicate: predicate}
	return core.WithHooks(core.Hooks{
		OnEmit: func(_ core.NodeInfo, t core.Tuple) {
			if t.Err != nil && counter.predicate(t.Err) {
				counter.count.Add(1)
			}
		},
	}), counter
}

// ErrorCollector collects errors for later inspection.
type ErrorCollector struct {
	mu        sync.Mutex
	errors    []error
	predicate func(error) bool
	maxErrors int // 0 = unlimited
}

// ErrorCollectorOption configures an ErrorCollector.
type ErrorCollectorOption func(*ErrorCollector)

// WithPredicate filters which errors to collect.
func WithPredicate(predicate func(error) bool) ErrorCollectorOption {
	return func(c *ErrorCollector) {
		c.predicate = predicate
	}
}

// WithMaxErrors limits the number of errors to collect.
func WithMaxErrors(max int) ErrorCollectorOption {
	return func(c *ErrorCollector) {
		c.maxErrors = max
	}
}

// Errors returns a copy of all collected errors.
func (c *ErrorCollector) Errors() []error {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]error, len(c.errors))
	copy(result, c.errors)
	return result
}

// Count returns the number of collected errors.
func (c *ErrorCollector) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.errors)
}

// WithErrorCollector returns an Option that records the errors a node emits,
// and the collector.
func WithErrorCollector(opts ...ErrorCollectorOption) (core.Option, *ErrorCollector) {
	collector := &ErrorCollector{
		predicate: func(error) bool { return true },
	}
	for _, opt := range opts {
		opt(collector)
	}

	return core.WithHooks(core.Hooks{
		OnEmit: func(_ core.NodeInfo, t core.Tuple) {
			if t.Err == nil || !collector.predicate(t.Err) {
				return
			}
			collector.mu.Lock()
			defer collector.mu.Unlock()
			if collector.maxErrors > 0 && len(collector.errors) >= collector.maxErrors {
				return
			}
			collector.errors = append(collector.errors, t.Err)
		},
	}), collector
}

// OnErrorDo returns an Option that calls handler for every error a node emits.
func OnErrorDo(handler func(error)) core.Option {
	return core.WithHooks(core.Hooks{
		OnEmit: func(_ core.NodeInfo, t core.Tuple) {
			if t.Err != nil {
				handler(t.Err)
			}
		},
	})
}

// CircuitBreakerMonitor trips once a node emits threshold consecutive errors.
// For a breaker that also stops calling the operation, see CircuitBreaker in
// resilience.go.
type CircuitBreakerMonitor struct {
	threshold      int
	failureCount   atomic.Int64
	isOpen         atomic.Bool
	onThresholdHit func()
}

// IsOpen returns true if the circuit breaker has tripped.
func (cb *CircuitBreakerMonitor) IsOpen() bool {
	return cb.isOpen.Load()
}

// FailureCount returns the current failure count.
func (cb *CircuitBreakerMonitor) FailureCount() int64 {
	return cb.failureCount.Load()
}

// Reset resets the circuit breaker to closed state.
func (cb *CircuitBreakerMonitor) Reset() {
	cb.failureCount.Store(0)
	cb.isOpen.Store(false)
}

// WithCircuitBreakerMonitor returns an Option that feeds a node's emissions to
// a new monitor, and the monitor. Any data emission resets the failure count.
func WithCircuitBreakerMonitor(threshold int, onThresholdHit func()) (core.Option, *CircuitBreakerMonitor) {
	cb := &CircuitBreakerMonitor{
		threshold:      threshold,
		onThresholdHit: onThresholdHit,
	}

	return core.WithHooks(core.Hooks{
		OnEmit: func(_ core.NodeInfo, t core.Tuple) {
			if t.Err == nil {
				cb.failureCount.Store(0)
				return
			}
			if cb.isOpen.Load() {
				return
			}
			count := cb.failureCount.Add(1)
			if int(count) >= cb.threshold {
				cb.isOpen.Store(true)
				if cb.onThresholdHit != nil {
					cb.onThresholdHit()
				}
			}
		},
	}), cb
}
