package observe

import (
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/lguimbarda/bloem/flow/core"
)

// This file provides convenience Options that attach small observers to a
// node through its hooks. Observers see the tuples the node emits.
//
// Usage pattern:
//
//	opt, counter := observe.WithCounter()
//	node := transform.Map(fn, opt)
//	// ... run the graph ...
//	fmt.Println(counter.Values(), counter.Errors())

// WithValueHook returns an Option that calls callback with every data value
// the node emits. Values that are not a T are skipped.
func WithValueHook[T any](callback func(T)) core.Option {
	return core.WithHooks(core.Hooks{
		OnEmit: func(_ core.NodeInfo, t core.Tuple) {
			if t.Err != nil {
				return
			}
			if v, err := core.As[T](t.Data); err == nil {
				callback(v)
			}
		},
	})
}

// WithErrorHook returns an Option that calls callback with every error the
// node emits.
func WithErrorHook(callback func(error)) core.Option {
	return core.WithHooks(core.Hooks{
		OnEmit: func(_ core.NodeInfo, t core.Tuple) {
			if t.Err != nil {
				callback(t.Err)
			}
		},
	})
}

// Counter tracks emitted data and error tuples.
type Counter struct {
	values atomic.Int64
	errors atomic.Int64
}

// Values returns the count of data tuples.
func (c *Counter) Values() int64 { return c.values.Load() }

// Errors returns the count of error tuples.
func (c *Counter) Errors() int64 { return c.errors.Load() }

// Total returns the total count.
func (c *Counter) Total() int64 { return c.values.Load() + c.errors.Load() }

// Hooks returns the hooks that feed the counter, for use with core.WithHooks
// or inside a larger Hooks composition.
func (c *Counter) Hooks() core.Hooks {
	return core.Hooks{
		OnEmit: func(_ core.NodeInfo, t core.Tuple) {
			if t.Err != nil {
				c.errors.Add(1)
			} else {
				c.values.Add(1)
			}
		},
	}
}

// WithCounter returns an Option that counts the tuples a node emits, and
// the counter. The same Option may be given to several nodes to count their
// combined traffic.
func WithCounter() (core.Option, *Counter) {
	c := &Counter{}
	return core.WithHooks(c.Hooks()), c
}

// Logging returns Hooks that log attachments at V(1) and every delivered
// and emitted tuple at V(2). Errors emitted by a node are logged with
// logger.Error regardless of verbosity.
func Logging(logger logr.Logger) core.Hooks {
	return core.Hooks{
		OnAttach: func(up, down core.NodeInfo) {
			logger.V(1).Info("attached", "upstream", up.Name, "downstream", down.Name)
		},
		OnDeliver: func(n core.NodeInfo, t core.Tuple) {
			logger.V(2).Info("delivered", "node", n.Name, "id", n.ID.String(), "error", t.Err, "data", t.Data)
		},
		OnEmit: func(n core.NodeInfo, t core.Tuple) {
			if t.Err != nil {
				logger.Error(t.Err, "emitted error", "node", n.Name, "id", n.ID.String())
				return
			}
			logger.V(2).Info("emitted", "node", n.Name, "id", n.ID.String(), "data", t.Data)
		},
		OnQueue: func(n core.NodeInfo, depth int) {
			logger.V(2).Info("queue changed", "node", n.Name, "depth", depth)
		},
	}
}

// WithLogging returns an Option that attaches Logging(logger) to a node.
func WithLogging(logger logr.Logger) core.Option {
	return core.WithHooks(Logging(logger))
}
