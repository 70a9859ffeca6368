package heap

import (
	"testing"

	"github.com/jcbreger/rjvm/pkg/value"
)

// fakeRoot is a minimal RootSource for tests that don't need a real
// CallFrame or static table.
type fakeRoot struct {
	values []value.Value
}

func (f fakeRoot) LiveValues() []value.Value { return f.values }

func TestCollectSweepsUnreachable(t *testing.T) {
	h := NewHeap(4)

	kept := h.Allocate(NewArray(ElementType{Primitive: 'I'}, 1))
	h.Allocate(NewArray(ElementType{Primitive: 'I'}, 1)) // garbage

	root := fakeRoot{values: []value.Value{value.ObjectValue(kept)}}
	h.Collect(root)

	if got := h.Live(); got != 1 {
		t.Fatalf("Live() after Collect = %d, want 1", got)
	}
}

func TestCollectFollowsTransitiveReferences(t *testing.T) {
	h := NewHeap(4)

	child := NewArray(ElementType{Primitive: 'I'}, 1)
	h.Allocate(child)

	parent := NewInstance(0, func(int) value.Value { return value.NullValue() }, 1)
	parent.Slots[0] = value.ObjectValue(child)
	h.Allocate(parent)

	h.Allocate(NewArray(ElementType{Primitive: 'I'}, 1)) // unreachable garbage

	root := fakeRoot{values: []value.Value{value.ObjectValue(parent)}}
	h.Collect(root)

	if got := h.Live(); got != 2 {
		t.Fatalf("Live() after Collect = %d, want 2 (parent + child)", got)
	}
}

func TestAllocateTriggersCollectionAtThreshold(t *testing.T) {
	h := NewHeap(2)
	kept := h.Allocate(NewArray(ElementType{Primitive: 'I'}, 1))
	root := fakeRoot{values: []value.Value{value.ObjectValue(kept)}}

	h.Allocate(NewArray(ElementType{Primitive: 'I'}, 1), root) // garbage; brings the heap to the threshold
	h.Allocate(NewArray(ElementType{Primitive: 'I'}, 1), root) // triggers a collect first

	if got := h.Live(); got != 2 {
		t.Errorf("Live() = %d, want 2 (kept + newest), expected threshold-triggered collection to have run", got)
	}
}

func TestThresholdGrowsWithLiveSetAndFloorsAtMinimum(t *testing.T) {
	h := NewHeap(4)
	var kept []*Object
	var liveValues []value.Value
	for i := 0; i < 6; i++ {
		obj := NewArray(ElementType{Primitive: 'I'}, 1)
		kept = append(kept, obj)
		liveValues = append(liveValues, value.ObjectValue(obj))
	}
	root := fakeRoot{values: liveValues}
	for _, obj := range kept {
		h.Allocate(obj, root)
	}
	h.Collect(root)

	if got := h.Live(); got != 6 {
		t.Fatalf("Live() = %d, want 6", got)
	}
	if h.threshold != 12 {
		t.Errorf("threshold = %d, want 12 (2x live set)", h.threshold)
	}

	h.Collect()
	if h.threshold != 4 {
		t.Errorf("threshold after collecting everything = %d, want 4 (the minimum)", h.threshold)
	}
}
