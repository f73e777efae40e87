package core

import (
	"github.com/google/uuid"
)

// NodeInfo identifies a node in hook callbacks.
type NodeInfo struct {
	ID   uuid.UUID
	Name string
	Kind Kind
}

// Hooks holds observation callbacks for a node.
// All fields are optional - nil means no observation for that event.
// Hooks are invoked synchronously on the delivering goroutine, so they
// should be fast to avoid stalling propagation.
type Hooks struct {
	OnAttach  func(upstream, downstream NodeInfo) // Node registered a subscriber
	OnDeliver func(node NodeInfo, t Tuple)        // Tuple received by the node
	OnEmit    func(node NodeInfo, t Tuple)        // Tuple fanned out to subscribers
	OnQueue   func(node NodeInfo, depth int)      // Bounded queue length changed
}

// hookInvoker caches which callbacks exist to avoid repeated nil checks on
// the delivery path.
type hookInvoker struct {
	hookSets   []*Hooks
	hasAttach  bool
	hasDeliver bool
	hasEmit    bool
	hasQueue   bool
}

func newHookInvoker(hookSets []*Hooks) hookInvoker {
	invoker := hookInvoker{hookSets: hookSets}
	for _, h := range hookSets {
		if h.OnAttach != nil {
			invoker.hasAttach = true
		}
		if h.OnDeliver != nil {
			invoker.hasDeliver = true
		}
		if h.OnEmit != nil {
			invoker.hasEmit = true
		}
		if h.OnQueue != nil {
			invoker.hasQueue = true
		}
	}
	return invoker
}

func (h *hookInvoker) invokeAttach(upstream, downstream NodeInfo) {
	if !h.hasAttach {
		return
	}
	for _, hooks := range h.hookSets {
		if hooks.OnAttach != nil {
			hooks.OnAttach(upstream, downstream)
		}
	}
}

func (h *hookInvoker) invokeDeliver(node NodeInfo, err error, data any) {
	if !h.hasDeliver {
		return
	}
	t := Tuple{Err: err, Data: data}
	for _, hooks := range h.hookSets {
		if hooks.OnDeliver != nil {
			hooks.OnDeliver(node, t)
		}
	}
}

func (h *hookInvoker) invokeEmit(node NodeInfo, err error, data any) {
	if !h.hasEmit {
		return
	}
	t := Tuple{Err: err, Data: data}
	for _, hooks := range h.hookSets {
		if hooks.OnEmit != nil {
			hooks.OnEmit(node, t)
		}
	}
}

func (h *hookInvoker) invokeQueue(node NodeInfo, depth int) {
	if !h.hasQueue {
		return
	}
	for _, hooks := range h.hookSets {
		if hooks.OnQueue != nil {
			hooks.OnQueue(node, depth)
		}
	}
}

// NewSafeHooks wraps each callback in hooks with panic recovery.
// Use this when hooks are user-provided and a panicking observer must not
// interrupt propagation. If panicHandler is nil, panics are silently recovered.
func NewSafeHooks(hooks Hooks, panicHandler func(any)) Hooks {
	if panicHandler == nil {
		panicHandler = func(any) {}
	}
	guard := func() {
		if r := recover(); r != nil {
			panicHandler(r)
		}
	}

	var safe Hooks
	if hooks.OnAttach != nil {
		original := hooks.OnAttach
		safe.OnAttach = func(upstream, downstream NodeInfo) {
			defer guard()
			original(upstream, downstream)
		}
	}
	if hooks.OnDeliver != nil {
		original := hooks.OnDeliver
		safe.OnDeliver = func(node NodeInfo, t Tuple) {
			defer guard()
			original(node, t)
		}
	}
	if hooks.OnEmit != nil {
		original := hooks.OnEmit
		safe.OnEmit = func(node NodeInfo, t Tuple) {
			defer guard()
			original(node, t)
		}
	}
	if hooks.OnQueue != nil {
		original := hooks.OnQueue
		safe.OnQueue = func(node NodeInfo, depth int) {
			defer guard()
			original(node, depth)
		}
	}
	return safe
}

// WithSafeHooks is a convenience option that wraps hooks with panic recovery
// before attaching them.
func WithSafeHooks(hooks Hooks, panicHandler func(any)) Option {
	return WithHooks(NewSafeHooks(hooks, panicHandler))
}
