package vm

import (
	"github.com/jcbreger/rjvm/pkg/classfile"
	"github.com/jcbreger/rjvm/pkg/value"
)

// execThrow implements athrow (§4.5.3): pop the thrown reference, promoting
// a null reference to a freshly materialized NullPointerException, and
// hand it back as a *JavaException for the dispatch loop's handler search.
func (vm *Vm) execThrow(frame *CallFrame) error {
	thrown := frame.Pop()
	if thrown.IsNull() {
		return vm.nullPointer(frame)
	}
	obj, err := vm.derefInstance(thrown)
	if err != nil {
		return err
	}
	cls := vm.classByID(obj.ClassID)
	if cls == nil {
		return internalError(ErrValidation, "athrow: thrown object has no installed class (id=%d)", obj.ClassID)
	}
	return &JavaException{Class: cls, Object: obj}
}

// handleException searches frame's exception table for a handler covering
// opcodePC when err is a catchable JavaException (§4.5.3). A match clears
// the operand stack, pushes the exception object, and resumes execution at
// the handler's pc; handled reports whether that happened. fatal is
// non-nil only for an error internal to the search itself (a handler names
// a catch class that fails to resolve), distinct from "no handler found"
// which is reported via handled=false, fatal=nil so the caller re-raises the
// original error.
func (vm *Vm) handleException(frame *CallFrame, opcodePC int, err error) (handled bool, fatal error) {
	exc, ok := err.(*JavaException)
	if !ok {
		return false, nil
	}

	for _, entry := range frame.Code.ExceptionTable {
		if opcodePC < int(entry.StartPC) || opcodePC >= int(entry.EndPC) {
			continue
		}
		if entry.CatchType != 0 {
			catchName, nameErr := classfile.GetClassName(frame.Class.File.ConstantPool, entry.CatchType)
			if nameErr != nil {
				return false, internalError(ErrValidation, "exception table: %v", nameErr)
			}
			catchCls, resolveErr := vm.Manager.GetOrResolve(catchName)
			if resolveErr != nil {
				return false, internalError(ErrClassLoading, "resolving catch type %s: %v", catchName, resolveErr)
			}
			if !exc.Class.IsAssignableTo(catchCls) {
				continue
			}
		}
		frame.ClearStack()
		frame.Push(value.ObjectValue(exc.Object))
		frame.PC = int(entry.HandlerPC)
		return true, nil
	}
	return false, nil
}
