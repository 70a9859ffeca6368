package vm

import (
	"fmt"

	"github.com/jcbreger/rjvm/pkg/classfile"
	"github.com/jcbreger/rjvm/pkg/heap"
	"github.com/jcbreger/rjvm/pkg/value"
)

// CallFrame is one activation of a method: its locals, operand stack,
// program counter and a borrow of the method's bytecode (§3 "CallFrame").
type CallFrame struct {
	Class  *Class
	Method *classfile.MethodInfo
	Code   *classfile.CodeAttribute

	Locals       []value.Value
	OperandStack []value.Value
	sp           int
	PC           int
}

// NewCallFrame allocates a frame sized per the method's Code attribute.
// Locals start Uninitialized (the zero value.Value); callers populate the
// leading locals with inbound arguments (including, for instance methods,
// the receiver at index 0) immediately after construction.
func NewCallFrame(cls *Class, method *classfile.MethodInfo) *CallFrame {
	code := method.Code
	return &CallFrame{
		Class:        cls,
		Method:       method,
		Code:         code,
		Locals:       make([]value.Value, code.MaxLocals),
		OperandStack: make([]value.Value, code.MaxStack),
		sp:           0,
		PC:           0,
	}
}

// Push pushes a value onto the operand stack. Long/Double occupy a single
// operand-stack slot (unlike locals, which reserve two).
func (f *CallFrame) Push(v value.Value) {
	if f.sp >= len(f.OperandStack) {
		panic(fmt.Sprintf("operand stack overflow: sp=%d max=%d", f.sp, len(f.OperandStack)))
	}
	f.OperandStack[f.sp] = v
	f.sp++
}

// Pop pops and returns the top operand-stack value.
func (f *CallFrame) Pop() value.Value {
	if f.sp <= 0 {
		panic("operand stack underflow")
	}
	f.sp--
	return f.OperandStack[f.sp]
}

// Peek returns the value depth slots from the top without popping
// (depth=0 is the top); used to inspect the receiver before the call's
// argument-popping step.
func (f *CallFrame) Peek(depth int) value.Value {
	idx := f.sp - 1 - depth
	if idx < 0 || idx >= f.sp {
		panic(fmt.Sprintf("operand stack peek out of range: depth=%d sp=%d", depth, f.sp))
	}
	return f.OperandStack[idx]
}

// StackLen returns the current operand-stack depth.
func (f *CallFrame) StackLen() int { return f.sp }

// TruncateStack drops the operand stack back to the given depth, used
// after popping a method call's receiver and arguments as a single step.
func (f *CallFrame) TruncateStack(depth int) { f.sp = depth }

// ClearStack empties the operand stack (used when a handler is entered:
// §4.5.3 "clear the operand stack, push the thrown object").
func (f *CallFrame) ClearStack() { f.sp = 0 }

// GetLocal returns the value at the given local-variable slot.
func (f *CallFrame) GetLocal(index int) value.Value {
	if index < 0 || index >= len(f.Locals) {
		panic(fmt.Sprintf("local index out of range: index=%d max=%d", index, len(f.Locals)))
	}
	return f.Locals[index]
}

// SetLocal stores v at the given local-variable slot. For Long/Double
// values it additionally overwrites slot index+1 with Uninitialized, per
// the double-slot-locals convention.
func (f *CallFrame) SetLocal(index int, v value.Value) {
	if index < 0 || index >= len(f.Locals) {
		panic(fmt.Sprintf("local index out of range: index=%d max=%d", index, len(f.Locals)))
	}
	f.Locals[index] = v
	if v.IsWide() && index+1 < len(f.Locals) {
		f.Locals[index+1] = value.UninitializedValue()
	}
}

// ReadU8 reads a uint8 operand at pc and advances pc past it.
func (f *CallFrame) ReadU8() uint8 {
	v := f.Code.Code[f.PC]
	f.PC++
	return v
}

// ReadI8 reads a signed int8 operand at pc and advances pc past it.
func (f *CallFrame) ReadI8() int8 {
	return int8(f.ReadU8())
}

// ReadU16 reads a big-endian uint16 operand and advances pc by 2.
func (f *CallFrame) ReadU16() uint16 {
	v := uint16(f.Code.Code[f.PC])<<8 | uint16(f.Code.Code[f.PC+1])
	f.PC += 2
	return v
}

// ReadI16 reads a big-endian int16 operand and advances pc by 2.
func (f *CallFrame) ReadI16() int16 {
	return int16(f.ReadU16())
}

// LiveValues implements heap.RootSource: every operand-stack slot in use
// plus every local slot (Uninitialized/Int/Long/Float/Double values are
// harmless to include — the GC simply finds no object handle in them).
func (f *CallFrame) LiveValues() []value.Value {
	live := make([]value.Value, 0, f.sp+len(f.Locals))
	live = append(live, f.OperandStack[:f.sp]...)
	live = append(live, f.Locals...)
	return live
}

var _ heap.RootSource = (*CallFrame)(nil)
