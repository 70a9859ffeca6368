package vm

// execStack handles pop/pop2/dup family/swap. The *2 forms treat a
// Long/Double as occupying the one operand-stack "category 2" slot it
// actually holds, matching the single-slot-wide convention in pkg/value;
// unlike the JVMS's two-category-1-slots model, pop2/dup2/etc. here always
// operate on exactly two Values regardless of width, since every Value
// already occupies exactly one stack slot in this representation.
func (vm *Vm) execStack(frame *CallFrame, opcode byte) (bool, error) {
	switch opcode {
	case OpPop:
		frame.Pop()

	case OpPop2:
		frame.Pop()
		frame.Pop()

	case OpDup:
		v := frame.Pop()
		frame.Push(v)
		frame.Push(v)

	case OpDupX1:
		v1 := frame.Pop()
		v2 := frame.Pop()
		frame.Push(v1)
		frame.Push(v2)
		frame.Push(v1)

	case OpDupX2:
		v1 := frame.Pop()
		v2 := frame.Pop()
		v3 := frame.Pop()
		frame.Push(v1)
		frame.Push(v3)
		frame.Push(v2)
		frame.Push(v1)

	case OpDup2:
		v1 := frame.Pop()
		v2 := frame.Pop()
		frame.Push(v2)
		frame.Push(v1)
		frame.Push(v2)
		frame.Push(v1)

	case OpDup2X1:
		v1 := frame.Pop()
		v2 := frame.Pop()
		v3 := frame.Pop()
		frame.Push(v2)
		frame.Push(v1)
		frame.Push(v3)
		frame.Push(v2)
		frame.Push(v1)

	case OpDup2X2:
		v1 := frame.Pop()
		v2 := frame.Pop()
		v3 := frame.Pop()
		v4 := frame.Pop()
		frame.Push(v2)
		frame.Push(v1)
		frame.Push(v4)
		frame.Push(v3)
		frame.Push(v2)
		frame.Push(v1)

	case OpSwap:
		v1 := frame.Pop()
		v2 := frame.Pop()
		frame.Push(v1)
		frame.Push(v2)

	default:
		return false, nil
	}
	return true, nil
}
