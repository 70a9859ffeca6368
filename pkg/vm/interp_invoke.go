package vm

import (
	"github.com/jcbreger/rjvm/pkg/classfile"
	"github.com/jcbreger/rjvm/pkg/heap"
	"github.com/jcbreger/rjvm/pkg/native"
	"github.com/jcbreger/rjvm/pkg/value"
)

// execInvoke handles the four invocation opcodes (§4.5.2). Library
// classes whose own bytecode is out of scope (§1 "the standard-library
// classes written in the source language itself") are never installed as
// user classes; any method ref that the native registry already has an
// entry for is dispatched there directly, before the ordinary
// class-manager-based resolution and virtual-dispatch steps run.
func (vm *Vm) execInvoke(frame *CallFrame, opcode byte) (bool, error) {
	var isInterface, isStatic bool
	switch opcode {
	case OpInvokevirtual:
	case OpInvokespecial:
	case OpInvokestatic:
		isStatic = true
	case OpInvokeinterface:
		isInterface = true
	default:
		return false, nil
	}

	index := frame.ReadU16()
	if isInterface {
		frame.ReadU8() // count, historical; unused
		frame.ReadU8() // reserved zero byte
	}

	var ref *classfile.MethodRefInfo
	var err error
	if isInterface {
		ref, err = classfile.ResolveInterfaceMethodref(frame.Class.File.ConstantPool, index)
	} else {
		ref, err = classfile.ResolveMethodref(frame.Class.File.ConstantPool, index)
	}
	if err != nil {
		return true, err
	}

	arity := countParams(ref.Descriptor)

	if fn, ok := vm.Natives.Lookup(ref.ClassName, ref.MethodName, ref.Descriptor); ok {
		return true, vm.callNative(frame, fn, isStatic, arity, ref.Descriptor)
	}

	if !isStatic && ref.MethodName == "clone" && ref.Descriptor == "()Ljava/lang/Object;" {
		if receiver := frame.Peek(arity); !receiver.IsNull() {
			if h, ok := receiver.Handle(); ok {
				if arr, ok := h.(*heap.Object); ok && arr.Kind == heap.KindArray {
					frame.TruncateStack(frame.StackLen() - arity - 1)
					frame.Push(value.ObjectValue(arr.Clone()))
					return true, nil
				}
			}
		}
	}

	return true, vm.invokeResolved(frame, ref, opcode, arity)
}

// invokeResolved performs the class-manager-based resolution, static
// selection, virtual-dispatch override, argument marshaling, and the
// actual nested invocation for a method ref with no native registration.
func (vm *Vm) invokeResolved(frame *CallFrame, ref *classfile.MethodRefInfo, opcode byte, arity int) error {
	declCls, err := vm.Manager.GetOrResolve(ref.ClassName)
	if err != nil {
		return vm.classNotFoundException(ref.ClassName, err)
	}

	var staticCls *Class
	var method *classfile.MethodInfo
	switch opcode {
	case OpInvokespecial, OpInvokestatic:
		method = declCls.File.FindMethod(ref.MethodName, ref.Descriptor)
		staticCls = declCls
	default: // invokevirtual, invokeinterface
		staticCls, method = declCls.FindMethod(ref.MethodName, ref.Descriptor)
		if method == nil {
			staticCls, method = declCls.FindInterfaceMethod(ref.MethodName, ref.Descriptor)
		}
	}
	if method == nil {
		return internalError(ErrMethodNotFound, "%s.%s%s", ref.ClassName, ref.MethodName, ref.Descriptor)
	}

	isStatic := opcode == OpInvokestatic
	depth := arity
	if !isStatic {
		depth = arity + 1
	}
	if frame.StackLen() < depth {
		return internalError(ErrValidation, "operand stack underflow invoking %s.%s", ref.ClassName, ref.MethodName)
	}

	targetCls, targetMethod := staticCls, method
	if !isStatic && opcode != OpInvokespecial {
		receiver := frame.Peek(arity)
		if receiver.IsNull() {
			return vm.nullPointer(frame)
		}
		h, _ := receiver.Handle()
		obj, ok := h.(*heap.Object)
		if !ok || obj.Kind != heap.KindInstance {
			return internalError(ErrValidation, "invokevirtual/invokeinterface receiver is not an instance")
		}
		runtimeCls := vm.classByID(obj.ClassID)
		if runtimeCls != nil {
			if cls, m := runtimeCls.FindMethod(ref.MethodName, ref.Descriptor); m != nil {
				targetCls, targetMethod = cls, m
			}
		}
	} else if !isStatic {
		if frame.Peek(arity).IsNull() {
			return vm.nullPointer(frame)
		}
	}

	params := make([]value.Value, depth)
	for i := depth - 1; i >= 0; i-- {
		params[i] = frame.Pop()
	}

	result, err := vm.invokeMethod(targetCls, targetMethod, params)
	if err != nil {
		return err
	}
	if !isVoidReturn(targetMethod.Descriptor) {
		frame.Push(result)
	}
	return nil
}

// callNative pops the receiver (if any) and arguments for a
// natively-registered method and pushes its result.
func (vm *Vm) callNative(frame *CallFrame, fn native.Func, isStatic bool, arity int, descriptor string) error {
	args := make([]value.Value, arity)
	for i := arity - 1; i >= 0; i-- {
		args[i] = frame.Pop()
	}
	var receiver value.Value
	if !isStatic {
		receiver = frame.Pop()
	}
	result, hasReturn, err := fn(receiver, args)
	if err != nil {
		return internalError(ErrValidation, "native call failed: %v", err)
	}
	if hasReturn {
		frame.Push(result)
	}
	return nil
}

// countParams counts the number of formal parameters in a method
// descriptor like "(ILjava/lang/String;D)V" — each parameter pops exactly
// one operand-stack slot in this representation regardless of its JVMS
// category (unlike locals, which still reserve two slots for Long/Double).
func countParams(descriptor string) int {
	count := 0
	i := 1 // skip '('
	for i < len(descriptor) && descriptor[i] != ')' {
		switch descriptor[i] {
		case 'L':
			for i < len(descriptor) && descriptor[i] != ';' {
				i++
			}
		case '[':
			for i < len(descriptor) && descriptor[i] == '[' {
				i++
			}
			continue
		}
		i++
		count++
	}
	return count
}

func isVoidReturn(descriptor string) bool {
	for i := len(descriptor) - 1; i >= 0; i-- {
		if descriptor[i] == ')' {
			return descriptor[i+1] == 'V'
		}
	}
	return true
}
