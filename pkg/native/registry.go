// Package native implements the native-method registry (§6 "Native method
// registry"): a mapping keyed by (class name, method name, descriptor) to
// a host-language function, plus the minimal built-in set the interpreter
// depends on to run ordinary programs (println, arraycopy,
// identityHashCode, currentTimeMillis, and a few java/lang/Math bodies).
package native

import "github.com/jcbreger/rjvm/pkg/value"

// Func is a native method body. receiver is the zero Value for static
// methods. hasReturn is false for void methods.
type Func func(receiver value.Value, args []value.Value) (result value.Value, hasReturn bool, err error)

type key struct {
	class      string
	name       string
	descriptor string
}

// Registry is a simple hash-map-keyed lookup table, populated once at Vm
// construction (§6: "Registration happens at Vm construction").
type Registry struct {
	fns map[key]Func
}

func NewRegistry() *Registry {
	return &Registry{fns: make(map[key]Func)}
}

// Register installs fn under (class, name, descriptor), overwriting any
// previous registration for the same triple.
func (r *Registry) Register(class, name, descriptor string, fn Func) {
	r.fns[key{class, name, descriptor}] = fn
}

// Lookup finds the registered Func for (class, name, descriptor), if any.
func (r *Registry) Lookup(class, name, descriptor string) (Func, bool) {
	fn, ok := r.fns[key{class, name, descriptor}]
	return fn, ok
}
