package vm

import (
	"testing"

	"github.com/jcbreger/rjvm/pkg/value"
)

// TestGCCollectsThroughRealVMRoots drives heap.Collect with the Vm's own
// root sources (the call stack plus the static-instance table) rather than
// a fake RootSource, confirming the two are wired together correctly.
func TestGCCollectsThroughRealVMRoots(t *testing.T) {
	machine := New(newTestClasspathWithObject(), nil, 0)
	cls, err := machine.Manager.GetOrResolve("java/lang/ArithmeticException")
	if err != nil {
		t.Fatalf("GetOrResolve: %v", err)
	}

	reachable := machine.allocInstance(cls)
	garbage := machine.allocInstance(cls)
	_ = garbage

	frame := newTestFrame()
	frame.Push(value.ObjectValue(reachable))
	if err := machine.CallStack.Push(frame); err != nil {
		t.Fatalf("CallStack.Push: %v", err)
	}
	defer machine.CallStack.Pop()

	machine.Heap.Collect(machine.gcRoots()...)

	if got := machine.Heap.Live(); got != 1 {
		t.Errorf("Heap.Live() after collecting = %d, want 1 (only the reachable instance)", got)
	}
}

// TestGCKeepsStaticFields verifies the static-instance table is itself a
// GC root: an object stashed only in a static field must survive a
// collection with no other reference to it.
func TestGCKeepsStaticFields(t *testing.T) {
	b := newClassBuilder()
	data := b.buildWithFields("Holder", "java/lang/Object",
		[]fieldDef{{name: "instance", descriptor: "Ljava/lang/Object;", accessFlags: 0x0008}},
		nil)
	cp := newTestClasspathWithObject()
	cp.PushEntry(memEntry{"Holder": data})
	machine := New(cp, nil, 0)

	holderCls, err := machine.Manager.GetOrResolve("Holder")
	if err != nil {
		t.Fatalf("GetOrResolve(Holder): %v", err)
	}
	objCls, err := machine.Manager.GetOrResolve("java/lang/ArithmeticException")
	if err != nil {
		t.Fatalf("GetOrResolve: %v", err)
	}
	stashed := machine.allocInstance(objCls)
	machine.setStaticField(holderCls, "instance", value.ObjectValue(stashed))

	machine.Heap.Collect(machine.gcRoots()...)

	if got := machine.Heap.Live(); got != 1 {
		t.Errorf("Heap.Live() after collecting = %d, want 1 (the statics-held instance)", got)
	}
}
