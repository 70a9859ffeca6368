package vm

import "github.com/jcbreger/rjvm/pkg/classfile"

// Class is an installed class: the parsed ClassFile plus the resolved
// pointers and derived layout the interpreter needs at run time. Classes
// are immutable once installed (§3: "Lifecycles").
type Class struct {
	File *classfile.ClassFile

	Name       string
	Superclass *Class // nil only for java/lang/Object
	Interfaces []*Class

	// ID is a stable, monotonically assigned, never-reused 32-bit class
	// identifier. class_id(superclass) < class_id(C) always holds.
	ID int32

	// Fields lists every instance field this class carries, superclass
	// fields first (in superclass-to-subclass order), then this class's
	// own fields in declaration order. FieldIndex looks an entry up by
	// name.
	Fields      []InstanceField
	FieldIndex  map[string]int
	StaticIndex map[string]*classfile.FieldInfo
}

// InstanceField is one slot in an installed class's field layout.
type InstanceField struct {
	DeclaringClass string
	Name           string
	Descriptor     string
}

// IsSubclassOf reports whether c is the same class as, or a (possibly
// indirect) subclass of, other.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Superclass {
		if cur == other {
			return true
		}
	}
	return false
}

// Implements reports whether c or any of its superclasses declares other
// among its directly-resolved interfaces (transitively, since each
// resolved Class's own Interfaces already includes its superinterfaces'
// chains through the same field on nested interfaces... here we just walk
// the direct set per class, which is sufficient because an interface's own
// superinterfaces appear in its own Interfaces slice).
func (c *Class) Implements(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Superclass {
		for _, iface := range cur.Interfaces {
			if iface == other || iface.Implements(other) {
				return true
			}
		}
	}
	return false
}

// IsAssignableTo reports whether a value of class c may be used where a
// reference of class other is expected (instanceof/checkcast semantics for
// the non-array, non-null case).
func (c *Class) IsAssignableTo(other *Class) bool {
	return c.IsSubclassOf(other) || c.Implements(other)
}

// FindMethod resolves name+descriptor by walking from this class upward
// through superclasses only (no interfaces); used for the static lookup
// step of invokespecial/invokestatic and as the starting point for virtual
// dispatch.
func (c *Class) FindMethod(name, descriptor string) (*Class, *classfile.MethodInfo) {
	for cur := c; cur != nil; cur = cur.Superclass {
		if m := cur.File.FindMethod(name, descriptor); m != nil {
			return cur, m
		}
	}
	return nil, nil
}

// FindInterfaceMethod additionally searches the interface hierarchy,
// needed when invokeinterface's statically-resolved declaring class is
// itself an interface with a default method, or when no class in the
// superclass chain implements the method directly.
func (c *Class) FindInterfaceMethod(name, descriptor string) (*Class, *classfile.MethodInfo) {
	if cls, m := c.FindMethod(name, descriptor); m != nil {
		return cls, m
	}
	for cur := c; cur != nil; cur = cur.Superclass {
		for _, iface := range cur.Interfaces {
			if cls, m := iface.FindInterfaceMethod(name, descriptor); m != nil {
				return cls, m
			}
		}
	}
	return nil, nil
}
