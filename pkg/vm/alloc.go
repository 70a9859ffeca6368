package vm

import (
	"github.com/jcbreger/rjvm/pkg/heap"
	"github.com/jcbreger/rjvm/pkg/value"
)

// allocInstance allocates a new Instance object for cls, with every field
// slot at its descriptor's zero value, then registers it with the heap
// (triggering a collection first if the heap is at its threshold — GC
// roots are gathered from the currently running call stack).
func (vm *Vm) allocInstance(cls *Class) *heap.Object {
	obj := heap.NewInstance(cls.ID, func(i int) value.Value {
		return value.ZeroFor(cls.Fields[i].Descriptor[0])
	}, len(cls.Fields))
	vm.Heap.Allocate(obj, vm.gcRoots()...)
	return obj
}

// allocArray allocates a new Array object of the given element type and
// length.
func (vm *Vm) allocArray(elemType heap.ElementType, length int) *heap.Object {
	obj := heap.NewArray(elemType, length)
	vm.Heap.Allocate(obj, vm.gcRoots()...)
	return obj
}

// primitiveElementType maps a newarray atype code (JVMS §6.5) to an
// ElementType.
func primitiveElementType(atype int) heap.ElementType {
	switch atype {
	case ArrayTypeBoolean:
		return heap.ElementType{Primitive: 'Z'}
	case ArrayTypeChar:
		return heap.ElementType{Primitive: 'C'}
	case ArrayTypeFloat:
		return heap.ElementType{Primitive: 'F'}
	case ArrayTypeDouble:
		return heap.ElementType{Primitive: 'D'}
	case ArrayTypeByte:
		return heap.ElementType{Primitive: 'B'}
	case ArrayTypeShort:
		return heap.ElementType{Primitive: 'S'}
	case ArrayTypeInt:
		return heap.ElementType{Primitive: 'I'}
	case ArrayTypeLong:
		return heap.ElementType{Primitive: 'J'}
	default:
		return heap.ElementType{Primitive: 'I'}
	}
}
