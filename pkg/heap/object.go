// Package heap implements the object memory model: a uniform instance/array
// object kind allocated on a single heap, with a mark-and-sweep collector.
package heap

import "github.com/jcbreger/rjvm/pkg/value"

// Kind distinguishes the two shapes an Object can take.
type Kind int

const (
	KindInstance Kind = iota
	KindArray
)

// ElementType describes an array's element type: a primitive base type or a
// reference type named by its internal class name (not a class id). An
// array of arrays is recorded as a reference type whose ClassName is the
// inner array's descriptor.
type ElementType struct {
	Primitive byte   // descriptor byte: 'I','J','F','D','B','C','S','Z', or 0 if not primitive
	ClassName string // set when this is an array of object references
	IsArray   bool   // array-of-arrays marker; no allocation path in this module sets it
}

func (e ElementType) IsReference() bool {
	return e.Primitive == 0
}

// zeroValue returns the type-appropriate zero Value for this element type.
func (e ElementType) zeroValue() value.Value {
	if e.IsReference() {
		return value.NullValue()
	}
	switch e.Primitive {
	case 'J':
		return value.LongValue(0)
	case 'F':
		return value.FloatValue(0)
	case 'D':
		return value.DoubleValue(0)
	default: // I, B, C, S, Z all widen to int on the stack
		return value.IntValue(0)
	}
}

// Object is a heap-allocated instance or array. Its address (the pointer
// identity of the *Object itself) is the object's identity and is stable
// for its lifetime; there is no moving GC.
type Object struct {
	Kind Kind

	// Instance fields.
	ClassID int32

	// Array fields.
	ElementType ElementType
	Length      int

	Slots []value.Value

	marked bool
}

// NewInstance allocates an instance with slotCount fields, each at its
// declared zero value. fieldZero supplies the zero value for field index i
// (the class manager knows each field's descriptor; the heap does not).
func NewInstance(classID int32, fieldZero func(i int) value.Value, slotCount int) *Object {
	slots := make([]value.Value, slotCount)
	for i := range slots {
		if fieldZero != nil {
			slots[i] = fieldZero(i)
		} else {
			slots[i] = value.NullValue()
		}
	}
	return &Object{Kind: KindInstance, ClassID: classID, Slots: slots}
}

// NewArray allocates an array of length elements, each at elemType's zero
// value.
func NewArray(elemType ElementType, length int) *Object {
	slots := make([]value.Value, length)
	zero := elemType.zeroValue()
	for i := range slots {
		slots[i] = zero
	}
	return &Object{Kind: KindArray, ElementType: elemType, Length: length, Slots: slots}
}

// Clone returns a shallow copy of an array object (used by Object.clone()
// on array receivers, which short-circuit class-based dispatch since
// arrays have no installed class).
func (o *Object) Clone() *Object {
	slots := make([]value.Value, len(o.Slots))
	copy(slots, o.Slots)
	return &Object{Kind: o.Kind, ClassID: o.ClassID, ElementType: o.ElementType, Length: o.Length, Slots: slots}
}

// References returns this object's slots, the values a tracer visits for
// further object references (for both kinds; a tracer still checks each
// Value's tag before following it).
func (o *Object) References() []value.Value {
	return o.Slots
}
