package observe

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lguimbarda/bloem/flow/core"
)

// Instrument names recorded by Metrics.
const (
	MetricDelivered  = "bloem.tuples.delivered"
	MetricEmitted    = "bloem.tuples.emitted"
	MetricErrors     = "bloem.errors.emitted"
	MetricQueueDepth = "bloem.queue.depth"
)

// Metrics returns Hooks that record node traffic on meter: tuples delivered,
// tuples emitted, error tuples emitted and the queue depth of bounded nodes.
// Every measurement carries the node.name and node.kind attributes.
//
// Pass the result to core.WithHooks on each node to instrument; the
// instruments are shared, so one Hooks value can serve a whole graph.
func Metrics(meter metric.Meter) (core.Hooks, error) {
	delivered, err := meter.Int64Counter(MetricDelivered,
		metric.WithDescription("Tuples delivered to a node"),
		metric.WithUnit("{tuple}"))
	if err != nil {
		return core.Hooks{}, err
	}
	emitted, err := meter.Int64Counter(MetricEmitted,
		metric.WithDescription("Tuples fanned out by a node"),
		metric.WithUnit("{tuple}"))
	if err != nil {
		return core.Hooks{}, err
	}
	errs, err := meter.Int64Counter(MetricErrors,
		metric.WithDescription("Error tuples fanned out by a node"),
		metric.WithUnit("{tuple}"))
	if err != nil {
		return core.Hooks{}, err
	}
	depth, err := meter.Int64Histogram(MetricQueueDepth,
		metric.WithDescription("Queue length of a bounded node after each change"),
		metric.WithUnit("{tuple}"))
	if err != nil {
		return core.Hooks{}, err
	}

	ctx := context.Background()
	return core.Hooks{
		OnDeliver: func(n core.NodeInfo, _ core.Tuple) {
			delivered.Add(ctx, 1, nodeAttrs(n))
		},
		OnEmit: func(n core.NodeInfo, t core.Tuple) {
			attrs := nodeAttrs(n)
			emitted.Add(ctx, 1, attrs)
			if t.Err != nil {
				errs.Add(ctx, 1, attrs)
			}
		},
		OnQueue: func(n core.NodeInfo, d int) {
			depth.Record(ctx, int64(d), nodeAttrs(n))
		},
	}, nil
}

func nodeAttrs(n core.NodeInfo) metric.MeasurementOption {
	return metric.WithAttributes(
		attribute.String("node.name", n.Name),
		attribute.String("node.kind", n.Kind.String()),
	)
}
