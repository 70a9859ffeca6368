package native

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jcbreger/rjvm/internal/ioutil"
	"github.com/jcbreger/rjvm/pkg/heap"
	"github.com/jcbreger/rjvm/pkg/value"
)

// identityHash derives a stable-for-the-object's-lifetime int32 from its
// pointer identity, matching Object.hashCode()'s documented (but
// unspecified-value) contract of being consistent across calls on the same
// object.
func identityHash(h interface{}) int32 {
	addr := fmt.Sprintf("%p", h)
	n, _ := strconv.ParseUint(strings.TrimPrefix(addr, "0x"), 16, 64)
	return int32(n)
}

// Describer is implemented by runtime object handles that know how to
// render themselves as a Java toString() would (the interpreter's
// JString wraps a Go string behind this interface, keeping this package
// free of a dependency on pkg/vm).
type Describer interface {
	JavaString() string
}

// RegisterBuiltins installs the minimal native surface the interpreter
// needs to run ordinary programs without a full standard-library
// implementation on the classpath: console output, array copy, identity
// hash, the wall clock, and the handful of java/lang/Math and bit-pattern
// conversions programs commonly call directly.
func RegisterBuiltins(r *Registry, fs ioutil.FileSystem) {
	registerPrintStream(r)
	registerSystem(r, fs)
	registerMath(r)
}

func formatValue(v value.Value) string {
	switch v.Tag() {
	case value.Int:
		return fmt.Sprintf("%d", v.Int())
	case value.Long:
		return fmt.Sprintf("%d", v.Long())
	case value.Float:
		return fmt.Sprintf("%v", v.Float())
	case value.Double:
		return fmt.Sprintf("%v", v.Double())
	case value.Null:
		return "null"
	case value.Object:
		h, _ := v.Handle()
		if d, ok := h.(Describer); ok {
			return d.JavaString()
		}
		return fmt.Sprintf("%v", h)
	default:
		return ""
	}
}

// registerPrintStream backs java/io/PrintStream.println/print. Since the
// standard library's own bytecode is out of scope (§1), System.out's
// declared type is never actually loaded as a user class; the interpreter
// dispatches straight to these bodies by (declaring class, name,
// descriptor) before attempting ordinary virtual dispatch (see
// pkg/vm/interp_invoke.go).
func registerPrintStream(r *Registry) {
	descriptors := []string{
		"(I)V", "(J)V", "(F)V", "(D)V", "(Z)V", "(C)V",
		"(Ljava/lang/String;)V", "(Ljava/lang/Object;)V", "()V",
	}
	for _, d := range descriptors {
		desc := d
		r.Register("java/io/PrintStream", "println", desc, func(_ value.Value, args []value.Value) (value.Value, bool, error) {
			if len(args) == 0 {
				fmt.Println()
			} else {
				fmt.Println(formatValue(args[0]))
			}
			return value.Value{}, false, nil
		})
		r.Register("java/io/PrintStream", "print", desc, func(_ value.Value, args []value.Value) (value.Value, bool, error) {
			if len(args) > 0 {
				fmt.Print(formatValue(args[0]))
			}
			return value.Value{}, false, nil
		})
	}
}

func registerSystem(r *Registry, fs ioutil.FileSystem) {
	r.Register("java/lang/System", "currentTimeMillis", "()J", func(_ value.Value, _ []value.Value) (value.Value, bool, error) {
		return value.LongValue(fs.Now().UnixMilli()), true, nil
	})

	r.Register("java/lang/System", "identityHashCode", "(Ljava/lang/Object;)I", func(_ value.Value, args []value.Value) (value.Value, bool, error) {
		if args[0].IsNull() {
			return value.IntValue(0), true, nil
		}
		h, _ := args[0].Handle()
		return value.IntValue(identityHash(h)), true, nil
	})

	r.Register("java/lang/System", "arraycopy",
		"(Ljava/lang/Object;ILjava/lang/Object;II)V",
		func(_ value.Value, args []value.Value) (value.Value, bool, error) {
			srcH, _ := args[0].Handle()
			src, ok := srcH.(*heap.Object)
			if !ok || src.Kind != heap.KindArray {
				return value.Value{}, false, fmt.Errorf("arraycopy: src is not an array")
			}
			srcPos := args[1].Int()
			destH, _ := args[2].Handle()
			dest, ok := destH.(*heap.Object)
			if !ok || dest.Kind != heap.KindArray {
				return value.Value{}, false, fmt.Errorf("arraycopy: dest is not an array")
			}
			destPos := args[3].Int()
			length := args[4].Int()
			if srcPos < 0 || destPos < 0 || length < 0 ||
				int(srcPos+length) > src.Length || int(destPos+length) > dest.Length {
				return value.Value{}, false, fmt.Errorf("arraycopy: index out of bounds")
			}
			copy(dest.Slots[destPos:destPos+length], src.Slots[srcPos:srcPos+length])
			return value.Value{}, false, nil
		})
}

func registerMath(r *Registry) {
	r.Register("java/lang/Math", "sqrt", "(D)D", func(_ value.Value, args []value.Value) (value.Value, bool, error) {
		return value.DoubleValue(math.Sqrt(args[0].Double())), true, nil
	})
	r.Register("java/lang/Math", "pow", "(DD)D", func(_ value.Value, args []value.Value) (value.Value, bool, error) {
		return value.DoubleValue(math.Pow(args[0].Double(), args[1].Double())), true, nil
	})
	r.Register("java/lang/Math", "abs", "(D)D", func(_ value.Value, args []value.Value) (value.Value, bool, error) {
		return value.DoubleValue(math.Abs(args[0].Double())), true, nil
	})
	r.Register("java/lang/Math", "max", "(II)I", func(_ value.Value, args []value.Value) (value.Value, bool, error) {
		a, b := args[0].Int(), args[1].Int()
		if a > b {
			return value.IntValue(a), true, nil
		}
		return value.IntValue(b), true, nil
	})
	r.Register("java/lang/Math", "min", "(II)I", func(_ value.Value, args []value.Value) (value.Value, bool, error) {
		a, b := args[0].Int(), args[1].Int()
		if a < b {
			return value.IntValue(a), true, nil
		}
		return value.IntValue(b), true, nil
	})

	r.Register("java/lang/Float", "floatToIntBits", "(F)I", func(_ value.Value, args []value.Value) (value.Value, bool, error) {
		return value.IntValue(int32(math.Float32bits(args[0].Float()))), true, nil
	})
	r.Register("java/lang/Float", "intBitsToFloat", "(I)F", func(_ value.Value, args []value.Value) (value.Value, bool, error) {
		return value.FloatValue(math.Float32frombits(uint32(args[0].Int()))), true, nil
	})
	r.Register("java/lang/Double", "doubleToLongBits", "(D)J", func(_ value.Value, args []value.Value) (value.Value, bool, error) {
		return value.LongValue(int64(math.Float64bits(args[0].Double()))), true, nil
	})
	r.Register("java/lang/Double", "longBitsToDouble", "(J)D", func(_ value.Value, args []value.Value) (value.Value, bool, error) {
		return value.DoubleValue(math.Float64frombits(uint64(args[0].Long()))), true, nil
	})
}
