package probe

import (
	"fmt"
	"runtime/debug"
)

// PanicError carries the value passed to panic.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	if err, ok := e.Value.(error); ok {
		return err.Error()
	}
	return fmt.Sprint(e.Value)
}

func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// absorb runs fn and turns a panic into an ErrCodePanic error. Fatal runtime
// errors and runtime.Goexit are not recoverable and pass through.
func absorb[T any](target string, fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v = zero
			err = errPanic(target, r, debug.Stack())
		}
	}()
	return fn()
}

func errPanic(target string, value any, stack []byte) *Error {
	return newError(
		ErrCodePanic,
		"recovered panic",
		&PanicError{Value: value},
	).WithTarget(target).WithStack(stack)
}
