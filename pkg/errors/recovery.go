// Panic recovery utilities. Model fitting on degenerate repetitions can panic
// deep inside numerical code; these helpers convert such panics into errors so
// a single repetition failure never takes down the whole search.

package errors

import (
	"fmt"
	"runtime/debug"
)

// PanicError is an error created from a recovered panic.
type PanicError struct {
	// PanicValue is the original value passed to panic()
	PanicValue interface{}

	// StackTrace contains the stack trace at the time of panic
	StackTrace string

	// Operation identifies where the panic was recovered
	Operation string
}

// Error implements the error interface for PanicError.
func (e *PanicError) Error() string {
	return fmt.Sprintf("panic in %s: %v", e.Operation, e.PanicValue)
}

// Unwrap returns nil as PanicError doesn't wrap another error by default.
func (e *PanicError) Unwrap() error {
	return nil
}

// String provides detailed information including stack trace.
func (e *PanicError) String() string {
	return fmt.Sprintf("panic in %s: %v\nStack trace:\n%s",
		e.Operation, e.PanicValue, e.StackTrace)
}

// NewPanicError creates a new PanicError with the given operation context and panic value.
func NewPanicError(operation string, panicValue interface{}) *PanicError {
	return &PanicError{
		PanicValue: panicValue,
		StackTrace: string(debug.Stack()),
		Operation:  operation,
	}
}

// Recover converts a panic into an error. Use with defer and a pointer to the
// function's named error return:
//
//	func SomeMethod() (err error) {
//	    defer errors.Recover(&err, "SomeMethod")
//	    // ...
//	    return nil
//	}
func Recover(err *error, operation string) {
	if r := recover(); r != nil {
		panicErr := NewPanicError(operation, r)

		if *err != nil {
			*err = fmt.Errorf("panic in %s: %v (original error: %w)",
				operation, r, *err)
		} else {
			*err = panicErr
		}
	}
}

// SafeExecute runs fn and converts any panic into an error.
func SafeExecute(operation string, fn func() error) (err error) {
	defer Recover(&err, operation)
	return fn()
}
