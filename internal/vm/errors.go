package vm

import "fmt"

// vmError wraps a dispatch-loop failure: wrong arity, a non-callable call
// target, an unbound global, or a pc run off the end of the code array
// (spec.md §7). In the C original these are fatal to the current
// invocation and surface as a sentinel "error" symbol value returned up
// to the caller (VM_ASSERT's VM_RETURN(error_sym)); returning a Go error
// from Run is the idiomatic equivalent — the caller still gets a single
// distinguished outcome to check, without threading a sentinel value
// through the operand stack.
type vmError struct {
	msg string
}

func (e *vmError) Error() string { return e.msg }

func errorf(format string, args ...any) error {
	return &vmError{msg: fmt.Sprintf(format, args...)}
}
