package vm

// execStore handles the store-to-locals family (istore/lstore/fstore/
// dstore/astore and their _0.._3 shorthands) plus the array store family
// (iastore/lastore/fastore/dastore/aastore/bastore/castore/sastore).
func (vm *Vm) execStore(frame *CallFrame, opcode byte) (bool, error) {
	switch opcode {
	case OpIstore:
		frame.SetLocal(int(frame.ReadU8()), frame.Pop())
	case OpIstore0, OpIstore1, OpIstore2, OpIstore3:
		frame.SetLocal(int(opcode-OpIstore0), frame.Pop())
	case OpLstore:
		frame.SetLocal(int(frame.ReadU8()), frame.Pop())
	case OpLstore0, OpLstore1, OpLstore2, OpLstore3:
		frame.SetLocal(int(opcode-OpLstore0), frame.Pop())
	case OpFstore:
		frame.SetLocal(int(frame.ReadU8()), frame.Pop())
	case OpFstore0, OpFstore1, OpFstore2, OpFstore3:
		frame.SetLocal(int(opcode-OpFstore0), frame.Pop())
	case OpDstore:
		frame.SetLocal(int(frame.ReadU8()), frame.Pop())
	case OpDstore0, OpDstore1, OpDstore2, OpDstore3:
		frame.SetLocal(int(opcode-OpDstore0), frame.Pop())
	case OpAstore:
		frame.SetLocal(int(frame.ReadU8()), frame.Pop())
	case OpAstore0, OpAstore1, OpAstore2, OpAstore3:
		frame.SetLocal(int(opcode-OpAstore0), frame.Pop())

	case OpIastore, OpLastore, OpFastore, OpDastore, OpAastore, OpBastore, OpCastore, OpSastore:
		return true, vm.execArrayStore(frame)

	default:
		return false, nil
	}
	return true, nil
}

// execArrayStore implements every *astore array-element-write opcode: pop
// value, index, then arrayref, bounds- and null-check, store the element.
func (vm *Vm) execArrayStore(frame *CallFrame) error {
	val := frame.Pop()
	index := frame.Pop().Int()
	arr, err := vm.derefArray(frame.Pop())
	if err != nil {
		return err
	}
	if index < 0 || int(index) >= arr.Length {
		return vm.throwBuiltin(frame, "java/lang/ArrayIndexOutOfBoundsException", indexMessage(index, arr.Length))
	}
	arr.Slots[index] = val
	return nil
}
