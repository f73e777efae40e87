package core

import (
	"github.com/go-logr/logr"
)

// NodeConfig holds configuration shared by every node kind.
type NodeConfig struct {
	Name      string
	Logger    logr.Logger
	Scheduler Scheduler
	Hooks     []*Hooks
}

// Option is a functional option for configuring nodes.
type Option func(*NodeConfig)

// WithName sets the node name reported to hooks and logs.
func WithName(name string) Option {
	return func(c *NodeConfig) {
		c.Name = name
	}
}

// WithLogger sets the logger used for attachment and queue diagnostics.
func WithLogger(logger logr.Logger) Option {
	return func(c *NodeConfig) {
		c.Logger = logger
	}
}

// WithScheduler sets the scheduler used by the deferred send operations
// (Send, Raise, SendAndRaise). Nodes without this option use DefaultLoop.
func WithScheduler(s Scheduler) Option {
	return func(c *NodeConfig) {
		c.Scheduler = s
	}
}

// WithHooks attaches observation hooks to the node. Multiple calls compose in
// FIFO order - hooks from earlier calls are invoked first.
func WithHooks(hooks Hooks) Option {
	return func(c *NodeConfig) {
		c.Hooks = append(c.Hooks, &hooks)
	}
}

func defaultConfig(kind Kind) NodeConfig {
	return NodeConfig{
		Name:   kind.String(),
		Logger: logr.Discard(),
	}
}

// applyOptions applies functional options on top of the defaults for kind.
func applyOptions(kind Kind, opts ...Option) NodeConfig {
	cfg := defaultConfig(kind)
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.Scheduler == nil {
		cfg.Scheduler = DefaultLoop
	}
	return cfg
}
