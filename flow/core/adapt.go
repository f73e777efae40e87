package core

// Func is a user function of one argument normalized to continuation style.
//
// A Func is built either from a synchronous function (Sync, Pure), which is
// called and whose returned error or panic is turned into a propagated error,
// or from a continuation-style function (Async), which is called unmodified and
// completes whenever it invokes its continuation. The choice is fixed when the
// Func is built and applies to every call.
type Func[A, R any] struct {
	sync  func(A) (R, error)
	async func(A, func(error, R))
}

// Sync wraps a synchronous function. A non-nil error or a panic becomes
// next(err, zero); otherwise next(nil, result).
func Sync[A, R any](fn func(A) (R, error)) Func[A, R] {
	return Func[A, R]{sync: fn}
}

// Pure wraps a synchronous function that cannot return an error. A panic is
// still converted into an ErrPanic.
func Pure[A, R any](fn func(A) R) Func[A, R] {
	return Func[A, R]{sync: func(a A) (R, error) { return fn(a), nil }}
}

// Async wraps a function that completes by calling its continuation, possibly
// later from a scheduled task. It must call the continuation at most once.
// Panics are not recovered.
func Async[A, R any](fn func(A, func(err error, r R))) Func[A, R] {
	return Func[A, R]{async: fn}
}

// IsZero reports whether f was never built.
func (f Func[A, R]) IsZero() bool {
	return f.sync == nil && f.async == nil
}

// IsAsync reports whether f uses the continuation-style calling convention.
func (f Func[A, R]) IsAsync() bool {
	return f.async != nil
}

// Call invokes f with a and delivers its outcome to next.
func (f Func[A, R]) Call(a A, next func(err error, r R)) {
	if f.async != nil {
		f.async(a, next)
		return
	}
	r, err := guard(func() (R, error) { return f.sync(a) })
	if err != nil {
		var zero R
		next(err, zero)
		return
	}
	next(nil, r)
}

// Func2 is a user function of two arguments normalized to continuation style.
// It is the two-argument form of Func, used by folds that receive the running
// state alongside each input.
type Func2[A, B, R any] struct {
	sync  func(A, B) (R, error)
	async func(A, B, func(error, R))
}

// Sync2 wraps a synchronous two-argument function.
func Sync2[A, B, R any](fn func(A, B) (R, error)) Func2[A, B, R] {
	return Func2[A, B, R]{sync: fn}
}

// Pure2 wraps a synchronous two-argument function that cannot return an error.
func Pure2[A, B, R any](fn func(A, B) R) Func2[A, B, R] {
	return Func2[A, B, R]{sync: func(a A, b B) (R, error) { return fn(a, b), nil }}
}

// Async2 wraps a continuation-style two-argument function.
func Async2[A, B, R any](fn func(A, B, func(err error, r R))) Func2[A, B, R] {
	return Func2[A, B, R]{async: fn}
}

// IsZero reports whether f was never built.
func (f Func2[A, B, R]) IsZero() bool {
	return f.sync == nil && f.async == nil
}

// IsAsync reports whether f uses the continuation-style calling convention.
func (f Func2[A, B, R]) IsAsync() bool {
	return f.async != nil
}

// Call invokes f with a and b and delivers its outcome to next.
func (f Func2[A, B, R]) Call(a A, b B, next func(err error, r R)) {
	if f.async != nil {
		f.async(a, b, next)
		return
	}
	r, err := guard(func() (R, error) { return f.sync(a, b) })
	if err != nil {
		var zero R
		next(err, zero)
		return
	}
	next(nil, r)
}

// Step is a two-slot result: the updated state of a fold and the value it
// emits for the current input.
type Step[S, R any] struct {
	State S
	Out   R
}

// Spread wraps a synchronous function with two results into a Func2 whose
// result is a Step.
func Spread[A, B, S, R any](fn func(A, B) (S, R, error)) Func2[A, B, Step[S, R]] {
	return Sync2(func(a A, b B) (Step[S, R], error) {
		s, r, err := fn(a, b)
		return Step[S, R]{State: s, Out: r}, err
	})
}

// AsyncSpread wraps a continuation-style function whose continuation takes two
// results into a Func2 whose result is a Step.
func AsyncSpread[A, B, S, R any](fn func(A, B, func(err error, s S, r R))) Func2[A, B, Step[S, R]] {
	return Async2(func(a A, b B, next func(error, Step[S, R])) {
		fn(a, b, func(err error, s S, r R) {
			next(err, Step[S, R]{State: s, Out: r})
		})
	})
}

// guard calls fn, converting a panic into an ErrPanic. The continuation is
// never called from inside guard, so panics raised downstream are not
// attributed to the user function.
func guard[R any](fn func() (R, error)) (r R, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			var zero R
			r, err = zero, NewPanicError(rec)
		}
	}()
	return fn()
}
