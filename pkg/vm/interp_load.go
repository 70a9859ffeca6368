package vm

import "github.com/jcbreger/rjvm/pkg/value"

// execLoad handles the load-from-locals family (iload/lload/fload/dload/
// aload and their _0.._3 shorthands) plus the array element load family
// (iaload/laload/faload/daload/aaload/baload/caload/saload).
func (vm *Vm) execLoad(frame *CallFrame, opcode byte) (bool, error) {
	switch opcode {
	case OpIload:
		frame.Push(value.IntValue(frame.GetLocal(int(frame.ReadU8())).Int()))
	case OpIload0, OpIload1, OpIload2, OpIload3:
		frame.Push(value.IntValue(frame.GetLocal(int(opcode - OpIload0)).Int()))
	case OpLload:
		frame.Push(value.LongValue(frame.GetLocal(int(frame.ReadU8())).Long()))
	case OpLload0, OpLload1, OpLload2, OpLload3:
		frame.Push(value.LongValue(frame.GetLocal(int(opcode - OpLload0)).Long()))
	case OpFload:
		frame.Push(value.FloatValue(frame.GetLocal(int(frame.ReadU8())).Float()))
	case OpFload0, OpFload1, OpFload2, OpFload3:
		frame.Push(value.FloatValue(frame.GetLocal(int(opcode - OpFload0)).Float()))
	case OpDload:
		frame.Push(value.DoubleValue(frame.GetLocal(int(frame.ReadU8())).Double()))
	case OpDload0, OpDload1, OpDload2, OpDload3:
		frame.Push(value.DoubleValue(frame.GetLocal(int(opcode - OpDload0)).Double()))
	case OpAload:
		frame.Push(frame.GetLocal(int(frame.ReadU8())))
	case OpAload0, OpAload1, OpAload2, OpAload3:
		frame.Push(frame.GetLocal(int(opcode - OpAload0)))

	case OpIaload, OpLaload, OpFaload, OpDaload, OpAaload, OpBaload, OpCaload, OpSaload:
		return true, vm.execArrayLoad(frame)

	default:
		return false, nil
	}
	return true, nil
}

// execArrayLoad implements every *aload array-element-read opcode: pop
// index then arrayref, bounds- and null-check, push the element.
func (vm *Vm) execArrayLoad(frame *CallFrame) error {
	index := frame.Pop().Int()
	arr, err := vm.derefArray(frame.Pop())
	if err != nil {
		return err
	}
	if index < 0 || int(index) >= arr.Length {
		return vm.throwBuiltin(frame, "java/lang/ArrayIndexOutOfBoundsException", indexMessage(index, arr.Length))
	}
	frame.Push(arr.Slots[index])
	return nil
}
