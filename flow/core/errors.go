package core

import (
	"fmt"
	"runtime"
	"strings"
)

// internalPrefix marks frames that belong to this module. They are removed
// from captured stacks so that a recovered panic points at user code.
const internalPrefix = "github.com/lguimbarda/bloem/flow/"

// ErrPanic wraps a recovered panic value as an error.
// It is produced when a synchronous user function wrapped by Sync, Pure,
// Sync2, Pure2 or Spread panics. The panic becomes a propagated error instead
// of unwinding through the graph.
type ErrPanic struct {
	Value any
	Stack string // Cleaned stack trace
}

func (e ErrPanic) Error() string {
	if e.Stack != "" {
		return fmt.Sprintf("panic: %v\n%s", e.Value, e.Stack)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e ErrPanic) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// NewPanicError creates an ErrPanic from a recovered value with a cleaned stack trace.
// It must be called from the deferred function that recovered the panic.
func NewPanicError(recovered any) ErrPanic {
	return ErrPanic{
		Value: recovered,
		Stack: cleanStack(captureStack(4)), // skip: runtime.Callers, captureStack, NewPanicError, defer func
	}
}

// captureStack returns the current stack trace as a string.
func captureStack(skip int) string {
	const maxFrames = 32
	var pcs [maxFrames]uintptr
	n := runtime.Callers(skip, pcs[:])
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder

	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}

	return sb.String()
}

// cleanStack removes frames of this module from a stack trace, keeping user
// code and the standard library.
func cleanStack(stack string) string {
	lines := strings.Split(stack, "\n")
	var result []string
	var skipNext bool

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !strings.HasPrefix(line, "\t") {
			if strings.Contains(line, internalPrefix) {
				skipNext = true
				continue
			}
			skipNext = false
		} else if skipNext {
			continue
		}

		result = append(result, line)
	}

	return strings.Join(result, "\n")
}

// TypeError reports a data slot whose dynamic type does not match the type a
// typed combinator expects.
type TypeError struct {
	Want string
	Got  any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("bloem: expected data of type %s, got %T", e.Want, e.Got)
}

// As converts the data slot of a tuple to T. A nil data slot yields the zero
// value of T. Any other value that is not a T yields a *TypeError.
func As[T any](data any) (T, error) {
	var zero T
	if data == nil {
		return zero, nil
	}
	v, ok := data.(T)
	if !ok {
		return zero, &TypeError{Want: fmt.Sprintf("%T", &zero)[1:], Got: data}
	}
	return v, nil
}
