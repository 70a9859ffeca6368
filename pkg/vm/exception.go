package vm

import (
	"fmt"

	"github.com/jcbreger/rjvm/pkg/heap"
)

// JavaException wraps a thrown Java-level exception object so it can
// travel as a Go error value while a handler search is in progress
// (§4.5.3). It is never surfaced to bytecode directly; the interpreter
// either catches it locally (clearing the stack, pushing Object back, and
// resuming at handler_pc) or lets it propagate to the caller frame.
type JavaException struct {
	Class  *Class
	Object *heap.Object
}

func (e *JavaException) Error() string {
	msg := ""
	if e.Object != nil && len(e.Object.Slots) > 0 {
		msg = e.Object.Slots[0].String()
	}
	return fmt.Sprintf("%s: %s", e.Class.Name, msg)
}

// InternalError represents an interpreter-internal failure (§7): a bug,
// an unsupported feature, or a validation failure. These are never
// catchable by bytecode and always terminate execution.
type InternalError struct {
	Kind    string
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func internalError(kind, format string, args ...interface{}) *InternalError {
	return &InternalError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

const (
	ErrClassLoading      = "ClassLoadingError"
	ErrValidation        = "ValidationException"
	ErrNotImplemented    = "NotImplemented"
	ErrMethodNotFound    = "MethodNotFound"
	ErrFieldNotFound     = "FieldNotFound"
	ErrStackOverflow     = "StackOverflow"
)
