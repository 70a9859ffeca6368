package vm

import (
	"github.com/jcbreger/rjvm/pkg/heap"
	"github.com/jcbreger/rjvm/pkg/value"
)

// staticsTable is the process-wide mapping from class id to a synthetic
// Instance object holding that class's static fields (§3 "Static instance
// table"), created lazily on first access or when <clinit> runs.
type staticsTable struct {
	byClassID map[int32]*heap.Object
}

func newStaticsTable() *staticsTable {
	return &staticsTable{byClassID: make(map[int32]*heap.Object)}
}

// LiveValues implements heap.RootSource: every AbstractObject value held
// by the static table is itself a GC root (§4.4).
func (s *staticsTable) LiveValues() []value.Value {
	live := make([]value.Value, 0, len(s.byClassID))
	for _, obj := range s.byClassID {
		live = append(live, value.ObjectValue(obj))
	}
	return live
}

// ensureStatics returns (creating if absent) the static-field-holding object for
// cls, with every declared static field at its descriptor's zero value.
func (vm *Vm) ensureStatics(cls *Class) *heap.Object {
	if obj, ok := vm.Statics.byClassID[cls.ID]; ok {
		return obj
	}
	names := make([]string, 0, len(cls.StaticIndex))
	for name := range cls.StaticIndex {
		names = append(names, name)
	}
	slots := make([]value.Value, len(names))
	index := make(map[string]int, len(names))
	for i, name := range names {
		index[name] = i
		slots[i] = value.ZeroFor(cls.StaticIndex[name].Descriptor[0])
	}
	obj := &heap.Object{Kind: heap.KindInstance, ClassID: cls.ID, Slots: slots}
	vm.Statics.byClassID[cls.ID] = obj
	vm.staticSlotIndex[cls.ID] = index
	return obj
}

// staticField finds the class in cls's superclass chain that actually
// declares name and returns its current value.
func (vm *Vm) staticField(cls *Class, name string) value.Value {
	owner := vm.findStaticOwner(cls, name)
	if owner == nil {
		return value.NullValue()
	}
	obj := vm.ensureStatics(owner)
	return obj.Slots[vm.staticSlotIndex[owner.ID][name]]
}

func (vm *Vm) setStaticField(cls *Class, name string, v value.Value) {
	owner := vm.findStaticOwner(cls, name)
	if owner == nil {
		return
	}
	obj := vm.ensureStatics(owner)
	obj.Slots[vm.staticSlotIndex[owner.ID][name]] = v
}

func (vm *Vm) findStaticOwner(cls *Class, name string) *Class {
	for cur := cls; cur != nil; cur = cur.Superclass {
		if _, ok := cur.StaticIndex[name]; ok {
			return cur
		}
	}
	return nil
}
