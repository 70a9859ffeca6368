package heap

import "github.com/jcbreger/rjvm/pkg/value"

// RootSource is implemented by anything that can enumerate the object
// references it is currently holding live — a CallFrame (its operand stack
// and locals) or the static-instance table.
type RootSource interface {
	LiveValues() []value.Value
}

// Heap owns every allocated Object and runs a mark-and-sweep collector over
// it. It is not safe for concurrent use; the interpreter is the only
// mutator and the GC never runs concurrently with dispatch (see design
// notes on the concurrency model).
type Heap struct {
	objects      []*Object
	minThreshold int
	threshold    int
}

// defaultMinThreshold is small enough that the GC-liveness end-to-end
// scenario (allocate N objects, keep every 10th) exercises a real
// collection well before N grows large.
const defaultMinThreshold = 64

// NewHeap constructs an empty heap. minThreshold overrides the default
// floor for the live-object count that triggers a collection; pass 0 to
// use defaultMinThreshold.
func NewHeap(minThreshold int) *Heap {
	if minThreshold <= 0 {
		minThreshold = defaultMinThreshold
	}
	return &Heap{minThreshold: minThreshold, threshold: minThreshold}
}

// Allocate registers obj with the heap and triggers a collection first if
// the live count already meets the threshold.
func (h *Heap) Allocate(obj *Object, roots ...RootSource) *Object {
	if len(h.objects) >= h.threshold {
		h.Collect(roots...)
	}
	h.objects = append(h.objects, obj)
	return obj
}

// Live returns the number of objects currently allocated (only accurate
// immediately after a Collect; between collections it also counts garbage
// not yet swept).
func (h *Heap) Live() int {
	return len(h.objects)
}

// Collect runs one mark-and-sweep pass, seeding the mark phase from every
// root source's live values plus, transitively, every reachable object's
// fields and elements.
func (h *Heap) Collect(roots ...RootSource) {
	var worklist []*Object
	for _, r := range roots {
		for _, v := range r.LiveValues() {
			if obj, ok := objectOf(v); ok {
				worklist = append(worklist, obj)
			}
		}
	}

	var marked []*Object
	for len(worklist) > 0 {
		obj := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		if obj == nil || obj.marked {
			continue
		}
		obj.marked = true
		marked = append(marked, obj)
		for _, slot := range obj.Slots {
			if ref, ok := objectOf(slot); ok {
				worklist = append(worklist, ref)
			}
		}
	}

	live := h.objects[:0]
	for _, obj := range h.objects {
		if obj.marked {
			live = append(live, obj)
		}
	}
	h.objects = live

	// Clear marks on everything reached, including root objects the heap
	// does not track, so the next pass traces through them again.
	for _, obj := range marked {
		obj.marked = false
	}

	newThreshold := 2 * len(h.objects)
	if newThreshold < h.minThreshold {
		newThreshold = h.minThreshold
	}
	h.threshold = newThreshold
}

// objectOf extracts the *Object a Value references, if it is a non-null
// Object value.
func objectOf(v value.Value) (*Object, bool) {
	handle, ok := v.Handle()
	if !ok {
		return nil, false
	}
	obj, ok := handle.(*Object)
	return obj, ok
}
