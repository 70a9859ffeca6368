package vm

import (
	"testing"

	"github.com/jcbreger/rjvm/pkg/value"
)

func TestExecStackDupFamily(t *testing.T) {
	vm := &Vm{}
	cases := []struct {
		name   string
		opcode byte
		push   []int32
		want   []int32
	}{
		{"dup", OpDup, []int32{1}, []int32{1, 1}},
		{"dup_x1", OpDupX1, []int32{1, 2}, []int32{2, 1, 2}},
		{"dup_x2", OpDupX2, []int32{1, 2, 3}, []int32{3, 1, 2, 3}},
		{"dup2", OpDup2, []int32{1, 2}, []int32{1, 2, 1, 2}},
		{"dup2_x1", OpDup2X1, []int32{1, 2, 3}, []int32{2, 3, 1, 2, 3}},
		{"dup2_x2", OpDup2X2, []int32{1, 2, 3, 4}, []int32{3, 4, 1, 2, 3, 4}},
		{"swap", OpSwap, []int32{1, 2}, []int32{2, 1}},
		{"pop", OpPop, []int32{1, 2}, []int32{1}},
		{"pop2", OpPop2, []int32{1, 2, 3}, []int32{1}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			frame := newTestFrame()
			for _, n := range c.push {
				frame.Push(value.IntValue(n))
			}
			handled, err := vm.execStack(frame, c.opcode)
			if !handled || err != nil {
				t.Fatalf("execStack(%s) = (%v, %v)", c.name, handled, err)
			}
			if frame.StackLen() != len(c.want) {
				t.Fatalf("%s: stack depth = %d, want %d", c.name, frame.StackLen(), len(c.want))
			}
			got := make([]int32, frame.StackLen())
			for i := range got {
				got[i] = frame.OperandStack[i].Int()
			}
			for i := range got {
				if got[i] != c.want[i] {
					t.Errorf("%s: stack = %v, want %v", c.name, got, c.want)
					break
				}
			}
		})
	}
}
