package core

import (
	"context"
	"sync"

	"github.com/go-logr/logr"
)

// Scheduler queues tasks for deferred execution. Tasks scheduled on the same
// Scheduler run in FIFO order, one at a time.
type Scheduler interface {
	Schedule(task func())
}

// DefaultLoop is the scheduler used by nodes created without WithScheduler.
var DefaultLoop = NewLoop()

// LoopOption is a functional option for configuring a Loop.
type LoopOption func(*Loop)

// WithLoopLogger sets the logger used by the loop.
func WithLoopLogger(logger logr.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// Loop is a cooperative deferred-task queue: the "next tick" of the graph.
//
// Tasks run on whichever goroutine calls Step, Drain or Run, and never
// concurrently with each other. Graph nodes are not synchronized, so every
// delivery must happen on that goroutine. Schedule and Go may be called from
// any goroutine; that is how blocking work re-enters the graph.
type Loop struct {
	mu      sync.Mutex
	tasks   []func()
	pending int // Go calls whose continuation has not been scheduled yet
	wake    chan struct{}
	logger  logr.Logger
}

// NewLoop creates an empty Loop.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		wake:   make(chan struct{}, 1),
		logger: logr.Discard(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Schedule appends task to the queue.
func (l *Loop) Schedule(task func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, task)
	l.mu.Unlock()
	l.notify()
}

// Go runs work on a new goroutine and schedules the continuation it returns
// back onto the loop. A nil continuation is ignored. Drain waits for every
// outstanding Go call.
//
// work must not touch graph nodes; the continuation may.
func (l *Loop) Go(work func() func()) {
	l.mu.Lock()
	l.pending++
	l.mu.Unlock()

	go func() {
		cont := work()

		l.mu.Lock()
		l.pending--
		if cont != nil {
			l.tasks = append(l.tasks, cont)
		}
		l.mu.Unlock()
		l.notify()
	}()
}

// Len returns the number of queued tasks.
func (l *Loop) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.tasks)
}

// Step runs the oldest queued task. It returns false when the queue is empty.
func (l *Loop) Step() bool {
	task, ok := l.pop()
	if !ok {
		return false
	}
	task()
	return true
}

// Drain runs tasks until the queue is empty and no Go work is outstanding.
// Tasks scheduled while draining are run as well.
func (l *Loop) Drain() {
	l.logger.V(1).Info("draining loop")
	var ran int
	for {
		if l.Step() {
			ran++
			continue
		}
		if !l.busy() {
			break
		}
		<-l.wake
	}
	l.logger.V(1).Info("loop drained", "tasks", ran)
}

// Run serves tasks until ctx is done, blocking while the queue is empty.
// It returns the context's error.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if l.Step() {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

func (l *Loop) pop() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.tasks) == 0 {
		return nil, false
	}
	task := l.tasks[0]
	l.tasks[0] = nil
	l.tasks = l.tasks[1:]
	return task, true
}

// busy reports whether Go work is outstanding or a task arrived since the
// last pop.
func (l *Loop) busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending > 0 || len(l.tasks) > 0
}

func (l *Loop) notify() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}
