package core

// Tuple is the payload carried along every link of a graph: an error slot and
// a data slot, in error-first order.
//
// Under normal propagation exactly one of Err and Data is set. Error-recovery
// combinators may move an error value into the data slot so that a downstream
// handler expecting data can inspect it.
type Tuple struct {
	Err  error
	Data any
}

// Ok creates a Tuple carrying data.
func Ok(data any) Tuple {
	return Tuple{Data: data}
}

// Fail creates a Tuple carrying an error.
func Fail(err error) Tuple {
	return Tuple{Err: err}
}

// IsError reports whether the error slot is set.
func (t Tuple) IsError() bool {
	return t.Err != nil
}
