package vm

import "github.com/jcbreger/rjvm/pkg/value"

// controlResult reports what the dispatch loop should do after an
// instruction in the control family: returned is false in the common case
// (keep dispatching); when it is true, returnVal carries the method's return
// value (ignored for void returns).
type controlResult struct {
	returned   bool
	returnVal  value.Value
}

// execControl handles unconditional/conditional branches and every return
// opcode. pc has already been advanced past the opcode byte itself by the
// caller before this is invoked, matching the "advance pc before execute"
// rule so that the branch target below overwrites it correctly.
func (vm *Vm) execControl(frame *CallFrame, opcode byte, opcodePC int) (bool, controlResult, error) {
	branch := func(cond bool) {
		offset := frame.ReadI16()
		if cond {
			frame.PC = opcodePC + int(offset)
		}
	}

	switch opcode {
	case OpIfeq:
		branch(frame.Pop().Int() == 0)
	case OpIfne:
		branch(frame.Pop().Int() != 0)
	case OpIflt:
		branch(frame.Pop().Int() < 0)
	case OpIfge:
		branch(frame.Pop().Int() >= 0)
	case OpIfgt:
		branch(frame.Pop().Int() > 0)
	case OpIfle:
		branch(frame.Pop().Int() <= 0)

	case OpIfIcmpeq:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		branch(a == b)
	case OpIfIcmpne:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		branch(a != b)
	case OpIfIcmplt:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		branch(a < b)
	case OpIfIcmpge:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		branch(a >= b)
	case OpIfIcmpgt:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		branch(a > b)
	case OpIfIcmple:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		branch(a <= b)

	case OpIfAcmpeq:
		b, a := frame.Pop(), frame.Pop()
		branch(sameReference(a, b))
	case OpIfAcmpne:
		b, a := frame.Pop(), frame.Pop()
		branch(!sameReference(a, b))

	case OpIfnull:
		branch(frame.Pop().IsNull())
	case OpIfnonnull:
		branch(!frame.Pop().IsNull())

	case OpGoto:
		offset := frame.ReadI16()
		frame.PC = opcodePC + int(offset)

	case OpIreturn, OpFreturn, OpAreturn:
		return true, controlResult{returned: true, returnVal: frame.Pop()}, nil
	case OpLreturn, OpDreturn:
		return true, controlResult{returned: true, returnVal: frame.Pop()}, nil
	case OpReturn:
		return true, controlResult{returned: true, returnVal: value.Value{}}, nil

	case OpMonitorenter, OpMonitorexit:
		// No-op: §5 — single-threaded execution, no real monitors.
		frame.Pop()

	case OpNop:
		// nothing

	default:
		return false, controlResult{}, nil
	}
	return true, controlResult{}, nil
}

// sameReference implements if_acmpeq/if_acmpne: two Null values are equal;
// two Object values are equal iff they carry the same handle; Null never
// equals a non-null Object.
func sameReference(a, b value.Value) bool {
	if a.IsNull() && b.IsNull() {
		return true
	}
	if a.IsNull() != b.IsNull() {
		return false
	}
	ha, _ := a.Handle()
	hb, _ := b.Handle()
	return ha == hb
}
