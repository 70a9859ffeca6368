package vm

import (
	"github.com/jcbreger/rjvm/pkg/classfile"
	"github.com/jcbreger/rjvm/pkg/value"
)

// execConst handles the constant-push family: aconst_null, iconst_*,
// lconst_*, fconst_*, dconst_*, bipush, sipush and the three ldc forms.
// ok reports whether opcode was recognized here.
func (vm *Vm) execConst(frame *CallFrame, opcode byte) (bool, error) {
	switch opcode {
	case OpAconstNull:
		frame.Push(value.NullValue())
	case OpIconstM1:
		frame.Push(value.IntValue(-1))
	case OpIconst0:
		frame.Push(value.IntValue(0))
	case OpIconst1:
		frame.Push(value.IntValue(1))
	case OpIconst2:
		frame.Push(value.IntValue(2))
	case OpIconst3:
		frame.Push(value.IntValue(3))
	case OpIconst4:
		frame.Push(value.IntValue(4))
	case OpIconst5:
		frame.Push(value.IntValue(5))
	case OpLconst0:
		frame.Push(value.LongValue(0))
	case OpLconst1:
		frame.Push(value.LongValue(1))
	case OpFconst0:
		frame.Push(value.FloatValue(0))
	case OpFconst1:
		frame.Push(value.FloatValue(1))
	case OpFconst2:
		frame.Push(value.FloatValue(2))
	case OpDconst0:
		frame.Push(value.DoubleValue(0))
	case OpDconst1:
		frame.Push(value.DoubleValue(1))
	case OpBipush:
		frame.Push(value.IntValue(int32(frame.ReadI8())))
	case OpSipush:
		frame.Push(value.IntValue(int32(frame.ReadI16())))
	case OpLdc:
		return true, vm.execLdc(frame, uint16(frame.ReadU8()))
	case OpLdcW:
		return true, vm.execLdc(frame, frame.ReadU16())
	case OpLdc2W:
		return true, vm.execLdc(frame, frame.ReadU16())
	default:
		return false, nil
	}
	return true, nil
}

// execLdc resolves a constant-pool entry used by ldc/ldc_w/ldc2_w and
// pushes the corresponding Value.
func (vm *Vm) execLdc(frame *CallFrame, index uint16) error {
	pool := frame.Class.File.ConstantPool
	if int(index) >= len(pool) || pool[index] == nil {
		return internalError(ErrValidation, "ldc: invalid constant pool index %d", index)
	}
	switch c := pool[index].(type) {
	case *classfile.ConstantInteger:
		frame.Push(value.IntValue(c.Value))
	case *classfile.ConstantFloat:
		frame.Push(value.FloatValue(c.Value))
	case *classfile.ConstantLong:
		frame.Push(value.LongValue(c.Value))
	case *classfile.ConstantDouble:
		frame.Push(value.DoubleValue(c.Value))
	case *classfile.ConstantString:
		s, err := classfile.GetUtf8(pool, c.StringIndex)
		if err != nil {
			return err
		}
		frame.Push(value.ObjectValue(&JString{S: s}))
	case *classfile.ConstantClass:
		name, err := classfile.GetUtf8(pool, c.NameIndex)
		if err != nil {
			return err
		}
		cls, err := vm.Manager.GetOrResolve(name)
		if err != nil {
			return vm.classNotFoundException(name, err)
		}
		frame.Push(value.ObjectValue(&ClassRef{Class: cls}))
	default:
		return internalError(ErrValidation, "ldc: unsupported constant kind at index %d", index)
	}
	return nil
}
