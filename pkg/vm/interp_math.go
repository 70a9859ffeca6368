package vm

import (
	"math"

	"github.com/jcbreger/rjvm/pkg/value"
)

// execMath handles integer/long/float/double arithmetic, bitwise and
// shift operators, iinc, the widening/narrowing conversions, and the
// lcmp/fcmpg/fcmpl/dcmpg/dcmpl comparisons (§4.5.1).
func (vm *Vm) execMath(frame *CallFrame, opcode byte) (bool, error) {
	switch opcode {
	case OpIadd:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		frame.Push(value.IntValue(a + b))
	case OpIsub:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		frame.Push(value.IntValue(a - b))
	case OpImul:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		frame.Push(value.IntValue(a * b))
	case OpIdiv:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		if b == 0 {
			return true, vm.throwBuiltin(frame, "java/lang/ArithmeticException", "/ by zero")
		}
		frame.Push(value.IntValue(a / b))
	case OpIrem:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		if b == 0 {
			return true, vm.throwBuiltin(frame, "java/lang/ArithmeticException", "/ by zero")
		}
		frame.Push(value.IntValue(a % b))
	case OpIneg:
		frame.Push(value.IntValue(-frame.Pop().Int()))
	case OpIand:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		frame.Push(value.IntValue(a & b))
	case OpIor:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		frame.Push(value.IntValue(a | b))
	case OpIxor:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		frame.Push(value.IntValue(a ^ b))
	case OpIshl:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		frame.Push(value.IntValue(a << (uint32(b) & 0x1F)))
	case OpIshr:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		frame.Push(value.IntValue(a >> (uint32(b) & 0x1F)))
	case OpIushr:
		b, a := frame.Pop().Int(), frame.Pop().Int()
		frame.Push(value.IntValue(int32(uint32(a) >> (uint32(b) & 0x1F))))

	case OpLadd:
		b, a := frame.Pop().Long(), frame.Pop().Long()
		frame.Push(value.LongValue(a + b))
	case OpLsub:
		b, a := frame.Pop().Long(), frame.Pop().Long()
		frame.Push(value.LongValue(a - b))
	case OpLmul:
		b, a := frame.Pop().Long(), frame.Pop().Long()
		frame.Push(value.LongValue(a * b))
	case OpLdiv:
		b, a := frame.Pop().Long(), frame.Pop().Long()
		if b == 0 {
			return true, vm.throwBuiltin(frame, "java/lang/ArithmeticException", "/ by zero")
		}
		frame.Push(value.LongValue(a / b))
	case OpLrem:
		b, a := frame.Pop().Long(), frame.Pop().Long()
		if b == 0 {
			return true, vm.throwBuiltin(frame, "java/lang/ArithmeticException", "/ by zero")
		}
		frame.Push(value.LongValue(a % b))
	case OpLneg:
		frame.Push(value.LongValue(-frame.Pop().Long()))
	case OpLand:
		b, a := frame.Pop().Long(), frame.Pop().Long()
		frame.Push(value.LongValue(a & b))
	case OpLor:
		b, a := frame.Pop().Long(), frame.Pop().Long()
		frame.Push(value.LongValue(a | b))
	case OpLxor:
		b, a := frame.Pop().Long(), frame.Pop().Long()
		frame.Push(value.LongValue(a ^ b))
	case OpLshl:
		// Shift count is an int, the shifted value a long (JVMS §lshl).
		b, a := frame.Pop().Int(), frame.Pop().Long()
		frame.Push(value.LongValue(a << (uint64(b) & 0x3F)))
	case OpLshr:
		b, a := frame.Pop().Int(), frame.Pop().Long()
		frame.Push(value.LongValue(a >> (uint64(b) & 0x3F)))
	case OpLushr:
		b, a := frame.Pop().Int(), frame.Pop().Long()
		frame.Push(value.LongValue(int64(uint64(a) >> (uint64(b) & 0x3F))))

	case OpFadd:
		b, a := frame.Pop().Float(), frame.Pop().Float()
		frame.Push(value.FloatValue(a + b))
	case OpFsub:
		b, a := frame.Pop().Float(), frame.Pop().Float()
		frame.Push(value.FloatValue(a - b))
	case OpFmul:
		b, a := frame.Pop().Float(), frame.Pop().Float()
		frame.Push(value.FloatValue(a * b))
	case OpFdiv:
		b, a := frame.Pop().Float(), frame.Pop().Float()
		frame.Push(value.FloatValue(floatDiv(a, b)))
	case OpFrem:
		b, a := frame.Pop().Float(), frame.Pop().Float()
		if isNaNDivision(float64(a), float64(b)) {
			frame.Push(value.FloatValue(float32(math.NaN())))
		} else {
			frame.Push(value.FloatValue(float32(math.Mod(float64(a), float64(b)))))
		}
	case OpFneg:
		frame.Push(value.FloatValue(-frame.Pop().Float()))

	case OpDadd:
		b, a := frame.Pop().Double(), frame.Pop().Double()
		frame.Push(value.DoubleValue(a + b))
	case OpDsub:
		b, a := frame.Pop().Double(), frame.Pop().Double()
		frame.Push(value.DoubleValue(a - b))
	case OpDmul:
		b, a := frame.Pop().Double(), frame.Pop().Double()
		frame.Push(value.DoubleValue(a * b))
	case OpDdiv:
		b, a := frame.Pop().Double(), frame.Pop().Double()
		if isNaNDivision(a, b) {
			frame.Push(value.DoubleValue(math.NaN()))
		} else {
			frame.Push(value.DoubleValue(a / b))
		}
	case OpDrem:
		b, a := frame.Pop().Double(), frame.Pop().Double()
		if isNaNDivision(a, b) {
			frame.Push(value.DoubleValue(math.NaN()))
		} else {
			frame.Push(value.DoubleValue(math.Mod(a, b)))
		}
	case OpDneg:
		frame.Push(value.DoubleValue(-frame.Pop().Double()))

	case OpIinc:
		index := int(frame.ReadU8())
		delta := int32(frame.ReadI8())
		frame.SetLocal(index, value.IntValue(frame.GetLocal(index).Int()+delta))

	case OpI2l:
		frame.Push(value.LongValue(int64(frame.Pop().Int())))
	case OpI2f:
		frame.Push(value.FloatValue(float32(frame.Pop().Int())))
	case OpI2d:
		frame.Push(value.DoubleValue(float64(frame.Pop().Int())))
	case OpI2b:
		frame.Push(value.IntValue(int32(int8(frame.Pop().Int()))))
	case OpI2c:
		frame.Push(value.IntValue(int32(uint16(frame.Pop().Int()))))
	case OpI2s:
		frame.Push(value.IntValue(int32(int16(frame.Pop().Int()))))

	case OpL2i:
		frame.Push(value.IntValue(int32(frame.Pop().Long())))
	case OpL2f:
		frame.Push(value.FloatValue(float32(frame.Pop().Long())))
	case OpL2d:
		frame.Push(value.DoubleValue(float64(frame.Pop().Long())))

	case OpF2i:
		frame.Push(value.IntValue(float32ToInt32(frame.Pop().Float())))
	case OpF2l:
		frame.Push(value.LongValue(float64ToInt64(float64(frame.Pop().Float()))))
	case OpF2d:
		frame.Push(value.DoubleValue(float64(frame.Pop().Float())))

	case OpD2i:
		frame.Push(value.IntValue(float64ToInt32(frame.Pop().Double())))
	case OpD2l:
		frame.Push(value.LongValue(float64ToInt64(frame.Pop().Double())))
	case OpD2f:
		frame.Push(value.FloatValue(float32(frame.Pop().Double())))

	case OpLcmp:
		b, a := frame.Pop().Long(), frame.Pop().Long()
		frame.Push(value.IntValue(compareOrdered(a, b)))
	case OpFcmpg:
		b, a := frame.Pop().Float(), frame.Pop().Float()
		frame.Push(value.IntValue(compareNaN(float64(a), float64(b), 1)))
	case OpFcmpl:
		b, a := frame.Pop().Float(), frame.Pop().Float()
		frame.Push(value.IntValue(compareNaN(float64(a), float64(b), -1)))
	case OpDcmpg:
		b, a := frame.Pop().Double(), frame.Pop().Double()
		frame.Push(value.IntValue(compareNaN(a, b, 1)))
	case OpDcmpl:
		b, a := frame.Pop().Double(), frame.Pop().Double()
		frame.Push(value.IntValue(compareNaN(a, b, -1)))

	default:
		return false, nil
	}
	return true, nil
}

// isNaNDivision implements the refinement in §4.5.1: division/remainder
// yields NaN not only when either operand is already NaN but also when
// both operands are infinite, or both are zero of any sign.
func isNaNDivision(a, b float64) bool {
	return math.IsNaN(a) || math.IsNaN(b) ||
		(math.IsInf(a, 0) && math.IsInf(b, 0)) ||
		((a == 0 || a == -0.0) && (b == 0 || b == -0.0))
}

func floatDiv(a, b float32) float32 {
	if isNaNDivision(float64(a), float64(b)) {
		return float32(math.NaN())
	}
	return a / b
}

// compareOrdered implements lcmp: no NaN case exists for integral types.
func compareOrdered(a, b int64) int32 {
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// compareNaN implements the fcmpg/fcmpl/dcmpg/dcmpl family: nanResult is
// +1 for the g variants (NaN treated as greater) and -1 for the l variants
// (NaN treated as less).
func compareNaN(a, b float64, nanResult int32) int32 {
	if math.IsNaN(a) || math.IsNaN(b) {
		return nanResult
	}
	switch {
	case a > b:
		return 1
	case a < b:
		return -1
	default:
		return 0
	}
}

// float32ToInt32 implements the f2i conversion rule: NaN maps to 0,
// out-of-range values saturate to MinInt32/MaxInt32 (JVMS §2.8.3).
func float32ToInt32(f float32) int32 {
	return float64ToInt32(float64(f))
}

func float64ToInt32(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	default:
		return int32(f)
	}
}

func float64ToInt64(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	default:
		return int64(f)
	}
}
