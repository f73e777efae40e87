// Package observe provides observers for running graphs: OpenTelemetry
// metrics and logr logging delivered through node hooks, live counters,
// and pass-through Transforms that meter the data flowing through them.
package observe

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lguimbarda/bloem/flow/core"
)

// LiveMetrics holds real-time metrics that can be read concurrently.
type LiveMetrics struct {
	totalItems   atomic.Int64
	valueCount   atomic.Int64
	errorCount   atomic.Int64
	startTime    atomic.Int64 // Unix nano
	lastItemTime atomic.Int64 // Unix nano
}

// TotalItems returns the total number of tuples seen.
func (m *LiveMetrics) TotalItems() int64 { return m.totalItems.Load() }

// ValueCount returns the number of data tuples.
func (m *LiveMetrics) ValueCount() int64 { return m.valueCount.Load() }

// ErrorCount returns the number of error tuples.
func (m *LiveMetrics) ErrorCount() int64 { return m.errorCount.Load() }

// StartTime returns when the first tuple was seen.
func (m *LiveMetrics) StartTime() time.Time {
	return time.Unix(0, m.startTime.Load())
}

// LastItemTime returns when the last tuple was seen.
func (m *LiveMetrics) LastItemTime() time.Time {
	return time.Unix(0, m.lastItemTime.Load())
}

// Duration returns how long the node has been emitting.
func (m *LiveMetrics) Duration() time.Duration {
	start := m.startTime.Load()
	if start == 0 {
		return 0
	}
	return time.Since(time.Unix(0, start))
}

// ItemsPerSecond returns the current throughput.
func (m *LiveMetrics) ItemsPerSecond() float64 {
	duration := m.Duration().Seconds()
	if duration <= 0 {
		return 0
	}
	return float64(m.TotalItems()) / duration
}

func (m *LiveMetrics) record(t core.Tuple) {
	now := time.Now().UnixNano()
	m.startTime.CompareAndSwap(0, now)
	m.lastItemTime.Store(now)
	m.totalItems.Add(1)
	if t.Err != nil {
		m.errorCount.Add(1)
	} else {
		m.valueCount.Add(1)
	}
}

// WithLiveMetrics returns an Option that updates metrics with every tuple
// the node emits.
func WithLiveMetrics(metrics *LiveMetrics) core.Option {
	return core.WithHooks(core.Hooks{
		OnEmit: func(_ core.NodeInfo, t core.Tuple) { metrics.record(t) },
	})
}

// Spy creates a Transform that shows every tuple to inspector and forwards it
// unchanged.
func Spy(inspector func(t core.Tuple), opts ...core.Option) *core.Transform {
	opts = append([]core.Option{core.WithName("spy")}, opts...)
	return core.NewTransform(func(err error, data any, next core.Next) {
		inspector(core.Tuple{Err: err, Data: data})
		next(err, data)
	}, opts...)
}

// RateMeter tracks the rate of items per second over a sliding window.
type RateMeter struct {
	mu         sync.Mutex
	window     time.Duration
	counts     []int64
	times      []time.Time
	totalCount int64
}

// NewRateMeter creates a new rate meter with the specified window size.
func NewRateMeter(window time.Duration) *RateMeter {
	return &RateMeter{
		window: window,
	}
}

// Add records count new items.
func (r *RateMeter) Add(count int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	r.counts = append(r.counts, count)
	r.times = append(r.times, now)
	r.totalCount += count

	cutoff := now.Add(-r.window)
	for len(r.times) > 0 && r.times[0].Before(cutoff) {
		r.totalCount -= r.counts[0]
		r.counts = r.counts[1:]
		r.times = r.times[1:]
	}
}

// Rate returns the current rate per second.
func (r *RateMeter) Rate() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.times) == 0 {
		return 0
	}
	duration := time.Since(r.times[0]).Seconds()
	if duration <= 0 {
		return 0
	}
	return float64(r.totalCount) / duration
}

// TotalCount returns the total count within the window.
func (r *RateMeter) TotalCount() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalCount
}

// MeterRate creates a Transform that adds every data tuple to meter and
// forwards all tuples unchanged.
func MeterRate(meter *RateMeter, opts ...core.Option) *core.Transform {
	return Spy(func(t core.Tuple) {
		if t.Err == nil {
			meter.Add(1)
		}
	}, append([]core.Option{core.WithName("meterRate")}, opts...)...)
}

// Histogram tracks the distribution of values.
type Histogram[T comparable] struct {
	mu     sync.RWMutex
	counts map[T]int64
	total  int64
}

// NewHistogram creates a new histogram.
func NewHistogram[T comparable]() *Histogram[T] {
	return &Histogram[T]{
		counts: make(map[T]int64),
	}
}

// Add records a value.
func (h *Histogram[T]) Add(value T) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts[value]++
	h.total++
}

// Count returns the count for a specific value.
func (h *Histogram[T]) Count(value T) int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.counts[value]
}

// Total returns the total count.
func (h *Histogram[T]) Total() int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.total
}

// Counts returns a copy of all counts.
func (h *Histogram[T]) Counts() map[T]int64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return maps.Clone(h.counts)
}

// MeterHistogram creates a Transform that adds every data value of type T to
// histogram and forwards all tuples unchanged.
func MeterHistogram[T comparable](histogram *Histogram[T], opts ...core.Option) *core.Transform {
	return Spy(func(t core.Tuple) {
		if t.Err != nil {
			return
		}
		if v, err := core.As[T](t.Data); err == nil {
			histogram.Add(v)
		}
	}, append([]core.Option{core.WithName("meterHistogram")}, opts...)...)
}
