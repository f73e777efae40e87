// Package core defines the primitives of a push-based dataflow graph:
// Sources that emit (error, data) tuples, Transforms and BoundedTransforms
// that process them with an explicit continuation, and Sinks that consume
// them. It also provides the attachment protocol that wires nodes together,
// the adapter that normalizes synchronous and continuation-style user
// functions, and the cooperative Loop used for deferred emission.
//
// The combinator packages (transform, filter, aggregate, flowerrors,
// combine) are thin factories over these primitives.
package core

import (
	"github.com/go-logr/logr"
	"github.com/google/uuid"
)

// Kind enumerates the closed set of node variants.
type Kind int

const (
	KindSource Kind = iota
	KindTransform
	KindBounded
	KindSink
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindTransform:
		return "transform"
	case KindBounded:
		return "bounded"
	case KindSink:
		return "sink"
	default:
		return "unknown"
	}
}

// Next delivers a tuple produced by a handler to every subscriber of the node
// that invoked the handler.
type Next func(err error, data any)

// Handler processes one tuple. It decides per invocation whether to call next:
// zero calls drop the tuple; calling next more than once is a contract
// violation that the node does not guard against.
type Handler func(err error, data any, next Next)

// Receiver accepts tuples. Every Node and every *Sink is a Receiver; the set
// is closed.
type Receiver interface {
	OnData(err error, data any)

	info() NodeInfo
}

// Node is an attachable, sendable graph vertex: *Source, *Transform or
// *BoundedTransform.
//
// A Node value is a handle. Connect returns a new handle onto the target's
// vertex that remembers the upstream entry point, so the send operations of a
// handle obtained deep in a chain still drive the Source the chain started
// from. Handles share the vertex state (subscribers, queue, handler closure).
//
// The send operations return nothing; chain nodes through Connect instead.
type Node interface {
	Receiver

	ID() uuid.UUID
	Name() string
	Kind() Kind

	// Entry returns the node that receives tuples injected through this
	// handle. It is the handle itself for a node that was never attached.
	Entry() Node

	// Subscribers returns the number of registered downstream receivers.
	Subscribers() int

	Connect(target Node) Node
	Into(sink *Sink) *Sink

	Send(data any)
	SendSync(data any)
	Raise(err error)
	RaiseSync(err error)
	SendAndRaise(err error, data any)
	SendAndRaiseSync(err error, data any)

	node() *vertex
	rebind(entry Node) Node
	inject(err error, data any, deferred bool)
}

// vertex is the state shared by every handle onto one node.
type vertex struct {
	id          uuid.UUID
	kind        Kind
	cfg         NodeConfig
	hooks       hookInvoker
	logger      logr.Logger
	subscribers []Receiver
}

func newVertex(kind Kind, opts []Option) *vertex {
	cfg := applyOptions(kind, opts...)
	v := &vertex{
		id:    uuid.New(),
		kind:  kind,
		cfg:   cfg,
		hooks: newHookInvoker(cfg.Hooks),
	}
	v.logger = cfg.Logger.WithValues("node", cfg.Name, "kind", kind.String(), "id", v.id.String())
	return v
}

func (v *vertex) info() NodeInfo {
	return NodeInfo{ID: v.id, Name: v.cfg.Name, Kind: v.kind}
}

// ID returns the node's unique identifier.
func (v *vertex) ID() uuid.UUID { return v.id }

// Name returns the node's configured name.
func (v *vertex) Name() string { return v.cfg.Name }

// Kind returns the node variant.
func (v *vertex) Kind() Kind { return v.kind }

// Subscribers returns the number of registered downstream receivers.
func (v *vertex) Subscribers() int { return len(v.subscribers) }

func (v *vertex) subscribe(r Receiver) {
	v.subscribers = append(v.subscribers, r)
	v.hooks.invokeAttach(v.info(), r.info())
	v.logger.V(1).Info("attached subscriber", "subscriber", r.info().Name, "subscribers", len(v.subscribers))
}

// fanout delivers a tuple to every subscriber in registration order. Each
// delivery completes, transitively, before the next one starts. Subscribers
// added during fan-out are not visited for this tuple.
func (v *vertex) fanout(err error, data any) {
	v.hooks.invokeEmit(v.info(), err, data)
	for _, s := range v.subscribers {
		s.OnData(err, data)
	}
}

// handle carries the entry point of a Node handle and implements the send
// family by delegating to it.
type handle struct {
	entry Node
}

// Entry returns the node that receives tuples injected through this handle.
func (h handle) Entry() Node { return h.entry }

// Send schedules (nil, data) for deferred delivery at the entry point.
func (h handle) Send(data any) { h.entry.inject(nil, data, true) }

// SendSync delivers (nil, data) at the entry point before returning.
func (h handle) SendSync(data any) { h.entry.inject(nil, data, false) }

// Raise schedules (err, nil) for deferred delivery at the entry point.
func (h handle) Raise(err error) { h.entry.inject(err, nil, true) }

// RaiseSync delivers (err, nil) at the entry point before returning.
func (h handle) RaiseSync(err error) { h.entry.inject(err, nil, false) }

// SendAndRaise schedules (err, data) for deferred delivery at the entry point.
func (h handle) SendAndRaise(err error, data any) { h.entry.inject(err, data, true) }

// SendAndRaiseSync delivers (err, data) at the entry point before returning.
func (h handle) SendAndRaiseSync(err error, data any) { h.entry.inject(err, data, false) }
