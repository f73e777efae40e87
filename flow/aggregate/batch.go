package aggregate

import (
	"fmt"

	"github.com/lguimbarda/bloem/flow/core"
)

// Batch creates a Transform that collects data values into slices of
// size and emits each slice when it is full. Graphs have no completion
// signal, so a trailing partial batch stays buffered. Errors pass through
// without flushing the current batch. It panics if size < 1.
func Batch[T any](size int, opts ...core.Option) *core.Transform {
	if size < 1 {
		panic(fmt.Sprintf("bloem: batch size must be positive, got %d", size))
	}
	return Window[T](size, size, append([]core.Option{core.WithName("batch")}, opts...)...)
}

// Window creates a Transform that emits sliding windows of size data
// values, advancing by step values between windows. Window(3, 1) on
// [1 2 3 4 5] emits [1 2 3], [2 3 4] and [3 4 5]. When step > size the values
// between windows are skipped. It panics if size or step is less than 1.
func Window[T any](size, step int, opts ...core.Option) *core.Transform {
	if size < 1 || step < 1 {
		panic(fmt.Sprintf("bloem: window size and step must be positive, got %d and %d", size, step))
	}

	window := make([]T, 0, size)
	skip := 0
	opts = append([]core.Option{core.WithName("window")}, opts...)
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
		if skip > 0 {
			skip--
			return
		}

		window = append(window, v)
		if len(window) < size {
			return
		}

		out := make([]T, size)
		copy(out, window)
		if step >= size {
			window = window[:0]
			skip = step - size
		} else {
			window = append(window[:0], window[step:]...)
		}
		next(nil, out)
	}, opts...)
}
