// Package value defines the tagged Value variant shared by the operand
// stack, the locals table, object fields and array elements.
package value

import "fmt"

// Tag discriminates the variant held by a Value.
type Tag int

const (
	// Uninitialized is the zero value of Tag and of Value: the initial
	// state of a local slot. It must never appear on the operand stack.
	Uninitialized Tag = iota
	Int
	Long
	Float
	Double
	Object
	Null
)

func (t Tag) String() string {
	switch t {
	case Uninitialized:
		return "uninitialized"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	case Object:
		return "object"
	case Null:
		return "null"
	default:
		return fmt.Sprintf("tag(%d)", int(t))
	}
}

// Value is a single JVM value: an int/short/char/byte/boolean (all widened
// to 32 bits), a long, a float, a double, an object reference (an opaque
// handle into the heap) or null. The zero Value is Uninitialized.
type Value struct {
	tag    Tag
	i      int32
	l      int64
	f      float32
	d      float64
	object interface{}
}

// Handle is the interface heap object references satisfy; kept as an
// unconstrained interface here so pkg/value has no dependency on pkg/heap
// (the heap package depends on value, not the reverse).
type Handle = interface{}

func IntValue(i int32) Value       { return Value{tag: Int, i: i} }
func LongValue(l int64) Value      { return Value{tag: Long, l: l} }
func FloatValue(f float32) Value   { return Value{tag: Float, f: f} }
func DoubleValue(d float64) Value  { return Value{tag: Double, d: d} }
func ObjectValue(h Handle) Value   { return Value{tag: Object, object: h} }
func NullValue() Value             { return Value{tag: Null} }
func UninitializedValue() Value    { return Value{tag: Uninitialized} }

func (v Value) Tag() Tag { return v.tag }

func (v Value) Int() int32 {
	if v.tag != Int {
		panic(fmt.Sprintf("value: Int() called on a %s value", v.tag))
	}
	return v.i
}

func (v Value) Long() int64 {
	if v.tag != Long {
		panic(fmt.Sprintf("value: Long() called on a %s value", v.tag))
	}
	return v.l
}

func (v Value) Float() float32 {
	if v.tag != Float {
		panic(fmt.Sprintf("value: Float() called on a %s value", v.tag))
	}
	return v.f
}

func (v Value) Double() float64 {
	if v.tag != Double {
		panic(fmt.Sprintf("value: Double() called on a %s value", v.tag))
	}
	return v.d
}

// Handle returns the object handle; ok is false unless Tag() == Object.
func (v Value) Handle() (Handle, bool) {
	if v.tag != Object {
		return nil, false
	}
	return v.object, true
}

// IsNull reports whether this is the distinguished polymorphic null value.
func (v Value) IsNull() bool { return v.tag == Null }

// IsReference reports whether the value can occupy a reference-typed slot
// (an Object handle or Null).
func (v Value) IsReference() bool { return v.tag == Object || v.tag == Null }

// IsWide reports whether this value occupies two local-variable slots
// (Long and Double do; everything else occupies one).
func (v Value) IsWide() bool { return v.tag == Long || v.tag == Double }

func (v Value) String() string {
	switch v.tag {
	case Uninitialized:
		return "<uninitialized>"
	case Int:
		return fmt.Sprintf("%d", v.i)
	case Long:
		return fmt.Sprintf("%dL", v.l)
	case Float:
		return fmt.Sprintf("%gf", v.f)
	case Double:
		return fmt.Sprintf("%g", v.d)
	case Object:
		return fmt.Sprintf("%v", v.object)
	case Null:
		return "null"
	default:
		return "<invalid value>"
	}
}

// ZeroFor returns the default value for a field/array/local of the given
// descriptor's first byte ('I','J','F','D','Z','B','C','S' for primitives,
// 'L' or '[' for references).
func ZeroFor(descriptorFirstByte byte) Value {
	switch descriptorFirstByte {
	case 'J':
		return LongValue(0)
	case 'F':
		return FloatValue(0)
	case 'D':
		return DoubleValue(0)
	case 'L', '[':
		return NullValue()
	default:
		return IntValue(0)
	}
}
