package vm

import (
	"github.com/jcbreger/rjvm/pkg/classfile"
	"github.com/jcbreger/rjvm/pkg/heap"
	"github.com/jcbreger/rjvm/pkg/value"
)

// execObject handles object/array creation, field access, array length,
// and the two type-test opcodes (instanceof/checkcast).
func (vm *Vm) execObject(frame *CallFrame, opcode byte) (bool, error) {
	switch opcode {
	case OpNew:
		return true, vm.execNew(frame)
	case OpNewarray:
		atype := int(frame.ReadU8())
		length := frame.Pop().Int()
		if length < 0 {
			return true, vm.throwBuiltin(frame, "java/lang/NegativeArraySizeException", "")
		}
		obj := vm.allocArray(primitiveElementType(atype), int(length))
		frame.Push(value.ObjectValue(obj))
	case OpAnewarray:
		index := frame.ReadU16()
		className, err := classfile.GetClassName(frame.Class.File.ConstantPool, index)
		if err != nil {
			return true, err
		}
		length := frame.Pop().Int()
		if length < 0 {
			return true, vm.throwBuiltin(frame, "java/lang/NegativeArraySizeException", "")
		}
		obj := vm.allocArray(heap.ElementType{ClassName: className}, int(length))
		frame.Push(value.ObjectValue(obj))
	case OpArraylength:
		arr, err := vm.derefArray(frame.Pop())
		if err != nil {
			return true, err
		}
		frame.Push(value.IntValue(int32(arr.Length)))

	case OpGetfield:
		return true, vm.execGetfield(frame)
	case OpPutfield:
		return true, vm.execPutfield(frame)
	case OpGetstatic:
		return true, vm.execGetstatic(frame)
	case OpPutstatic:
		return true, vm.execPutstatic(frame)

	case OpInstanceof:
		index := frame.ReadU16()
		className, err := classfile.GetClassName(frame.Class.File.ConstantPool, index)
		if err != nil {
			return true, err
		}
		v := frame.Pop()
		frame.Push(value.IntValue(boolToInt(vm.valueIsInstanceOf(v, className))))

	case OpCheckcast:
		index := frame.ReadU16()
		className, err := classfile.GetClassName(frame.Class.File.ConstantPool, index)
		if err != nil {
			return true, err
		}
		v := frame.Peek(0)
		if !v.IsNull() && !vm.valueIsInstanceOf(v, className) {
			return true, vm.throwBuiltin(frame, "java/lang/ClassCastException", className)
		}

	default:
		return false, nil
	}
	return true, nil
}

func boolToInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}

// execNew resolves the class constant, allocates and pushes a fresh
// zero-initialized instance. Constructor invocation is a separate
// subsequent invokespecial per javac's own codegen convention; `new` never
// runs <init>.
func (vm *Vm) execNew(frame *CallFrame) error {
	index := frame.ReadU16()
	className, err := classfile.GetClassName(frame.Class.File.ConstantPool, index)
	if err != nil {
		return err
	}
	cls, err := vm.Manager.GetOrResolve(className)
	if err != nil {
		return vm.classNotFoundException(className, err)
	}
	obj := vm.allocInstance(cls)
	frame.Push(value.ObjectValue(obj))
	return nil
}

func (vm *Vm) execGetfield(frame *CallFrame) error {
	index := frame.ReadU16()
	fref, err := classfile.ResolveFieldref(frame.Class.File.ConstantPool, index)
	if err != nil {
		return err
	}
	obj, err := vm.derefInstance(frame.Pop())
	if err != nil {
		return err
	}
	cls, err := vm.Manager.GetOrResolve(fref.ClassName)
	if err != nil {
		return err
	}
	slot, ok := cls.FieldIndex[fref.FieldName]
	if !ok {
		return internalError(ErrFieldNotFound, "%s.%s", fref.ClassName, fref.FieldName)
	}
	frame.Push(obj.Slots[slot])
	return nil
}

func (vm *Vm) execPutfield(frame *CallFrame) error {
	index := frame.ReadU16()
	fref, err := classfile.ResolveFieldref(frame.Class.File.ConstantPool, index)
	if err != nil {
		return err
	}
	val := frame.Pop()
	obj, err := vm.derefInstance(frame.Pop())
	if err != nil {
		return err
	}
	cls, err := vm.Manager.GetOrResolve(fref.ClassName)
	if err != nil {
		return err
	}
	slot, ok := cls.FieldIndex[fref.FieldName]
	if !ok {
		return internalError(ErrFieldNotFound, "%s.%s", fref.ClassName, fref.FieldName)
	}
	obj.Slots[slot] = val
	return nil
}

func (vm *Vm) execGetstatic(frame *CallFrame) error {
	index := frame.ReadU16()
	fref, err := classfile.ResolveFieldref(frame.Class.File.ConstantPool, index)
	if err != nil {
		return err
	}
	cls, err := vm.Manager.GetOrResolve(fref.ClassName)
	if err != nil {
		return vm.classNotFoundException(fref.ClassName, err)
	}
	frame.Push(vm.staticField(cls, fref.FieldName))
	return nil
}

func (vm *Vm) execPutstatic(frame *CallFrame) error {
	index := frame.ReadU16()
	fref, err := classfile.ResolveFieldref(frame.Class.File.ConstantPool, index)
	if err != nil {
		return err
	}
	val := frame.Pop()
	cls, err := vm.Manager.GetOrResolve(fref.ClassName)
	if err != nil {
		return vm.classNotFoundException(fref.ClassName, err)
	}
	vm.setStaticField(cls, fref.FieldName, val)
	return nil
}

// valueIsInstanceOf implements instanceof/checkcast's type test: Null is
// never an instance of anything (callers special-case null separately for
// checkcast, where null always passes). Array values are never reported as
// an instance of any class, including their own array type, so checkcast of
// a non-null array always throws.
func (vm *Vm) valueIsInstanceOf(v value.Value, className string) bool {
	if v.IsNull() {
		return false
	}
	h, ok := v.Handle()
	if !ok {
		return false
	}
	obj, ok := h.(*heap.Object)
	if !ok {
		return false
	}
	if obj.Kind == heap.KindArray {
		return false
	}
	target, err := vm.Manager.GetOrResolve(className)
	if err != nil {
		return false
	}
	cls := vm.classByID(obj.ClassID)
	if cls == nil {
		return false
	}
	return cls.IsAssignableTo(target)
}
