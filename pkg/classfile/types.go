// Package classfile parses the JVMS-§4 class-file binary format into an
// in-memory representation. Parsing is a pure function from bytes to a
// ClassFile; the result is immutable and consulted by the class manager and
// interpreter afterwards.
package classfile

// Access flag bits (JVMS §4.1, §4.5, §4.6).
const (
	AccPublic     = 0x0001
	AccPrivate    = 0x0002
	AccProtected  = 0x0004
	AccStatic     = 0x0008
	AccFinal      = 0x0010
	AccSuper      = 0x0020
	AccVolatile   = 0x0040
	AccBridge     = 0x0040
	AccTransient  = 0x0080
	AccVarargs    = 0x0080
	AccNative     = 0x0100
	AccInterface  = 0x0200
	AccAbstract   = 0x0400
	AccStrict     = 0x0800
	AccSynthetic  = 0x1000
	AccAnnotation = 0x2000
	AccEnum       = 0x4000
)

// ClassFile is the parsed, read-only representation of a single .class
// file. It never embeds resolved pointers to other classes: callers look
// class and interface names up through a class manager.
type ClassFile struct {
	MinorVersion     uint16
	MajorVersion     uint16
	ConstantPool     []ConstantPoolEntry
	AccessFlags      uint16
	ThisClass        uint16
	SuperClass       uint16
	Interfaces       []uint16
	Fields           []FieldInfo
	Methods          []MethodInfo
	SourceFile       string
	BootstrapMethods []BootstrapMethod
}

// FieldInfo describes one field declaration.
type FieldInfo struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Attributes  []AttributeInfo
}

// MethodInfo describes one method declaration. Code is nil for abstract
// and native methods.
type MethodInfo struct {
	AccessFlags uint16
	Name        string
	Descriptor  string
	Attributes  []AttributeInfo
	Code        *CodeAttribute
}

// AttributeInfo is a raw, unparsed attribute: name plus its data bytes.
// Attributes this reader understands (Code, LineNumberTable, SourceFile,
// BootstrapMethods) are additionally parsed into dedicated fields; all
// other attributes are kept only in this raw form and otherwise ignored.
type AttributeInfo struct {
	Name string
	Data []byte
}

// ExceptionTableEntry is one row of a Code attribute's exception table: a
// half-open bytecode range that, on an uncaught throw, dispatches to
// HandlerPC if the thrown object is assignable to CatchType (CatchType ==
// 0 means "catch any", used to implement finally).
type ExceptionTableEntry struct {
	StartPC   uint16
	EndPC     uint16
	HandlerPC uint16
	CatchType uint16
}

// LineNumberEntry maps a bytecode offset to a source line. The table is
// monotonically increasing in StartPC; the line in effect at a given pc is
// the entry with the largest StartPC not exceeding it.
type LineNumberEntry struct {
	StartPC    uint16
	LineNumber uint16
}

// CodeAttribute is the parsed form of a method's Code attribute.
type CodeAttribute struct {
	MaxStack        uint16
	MaxLocals       uint16
	Code            []byte
	ExceptionTable  []ExceptionTableEntry
	LineNumberTable []LineNumberEntry
}

// BootstrapMethod is one entry of the class-level BootstrapMethods
// attribute, kept for completeness; invokedynamic resolution against it is
// out of scope (spec non-goal), so nothing in the interpreter reads it today.
type BootstrapMethod struct {
	MethodRef          uint16
	BootstrapArguments []uint16
}

// LineForPC returns the source line in effect at pc, or 0 if the Code
// attribute carries no LineNumberTable attribute.
func (c *CodeAttribute) LineForPC(pc int) int {
	best := -1
	line := 0
	for _, entry := range c.LineNumberTable {
		if int(entry.StartPC) <= pc && int(entry.StartPC) > best {
			best = int(entry.StartPC)
			line = int(entry.LineNumber)
		}
	}
	return line
}

// ClassName returns the fully qualified binary name of this class.
func (cf *ClassFile) ClassName() (string, error) {
	return GetClassName(cf.ConstantPool, cf.ThisClass)
}

// SuperClassName returns the binary name of the superclass, or "" if this
// class has none (only java/lang/Object).
func (cf *ClassFile) SuperClassName() (string, error) {
	if cf.SuperClass == 0 {
		return "", nil
	}
	return GetClassName(cf.ConstantPool, cf.SuperClass)
}

// InterfaceNames returns the binary names of all directly implemented
// interfaces, in declaration order.
func (cf *ClassFile) InterfaceNames() ([]string, error) {
	names := make([]string, len(cf.Interfaces))
	for i, idx := range cf.Interfaces {
		name, err := GetClassName(cf.ConstantPool, idx)
		if err != nil {
			return nil, err
		}
		names[i] = name
	}
	return names, nil
}

// FindMethod finds a method by exact name and descriptor.
func (cf *ClassFile) FindMethod(name, descriptor string) *MethodInfo {
	for i := range cf.Methods {
		if cf.Methods[i].Name == name && cf.Methods[i].Descriptor == descriptor {
			return &cf.Methods[i]
		}
	}
	return nil
}

// FindField finds a field declared directly on this class by name.
func (cf *ClassFile) FindField(name string) *FieldInfo {
	for i := range cf.Fields {
		if cf.Fields[i].Name == name {
			return &cf.Fields[i]
		}
	}
	return nil
}

// IsInterface reports whether the AccInterface flag is set.
func (cf *ClassFile) IsInterface() bool { return cf.AccessFlags&AccInterface != 0 }
