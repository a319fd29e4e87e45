package mono

import (
	"fmt"
	"runtime/debug"
)

// A panicError carries a panic recovered from user code in a pipeline,
// together with the stack captured at the point of the panic.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", e.value, e.stack)
}

// Unwrap exposes the panic value when it is an error, so errors.Is and
// errors.As reach it.
func (e *panicError) Unwrap() error {
	if err, ok := e.value.(error); ok {
		return err
	}
	return nil
}

// protect calls f, converting a panic into an error that carries the
// captured stack. Pipeline stages run inside protect so that a panicking
// computation fails its pipeline instead of killing the worker.
func protect(f func() error) (err error) {
	ok := false
	defer func() {
		if ok {
			return
		}
		v := recover()
		if v == nil {
			panic("mono: pipelines do not support runtime.Goexit()")
		}
		err = &panicError{value: v, stack: debug.Stack()}
	}()
	err = f()
	ok = true
	return err
}
