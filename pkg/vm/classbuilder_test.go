package vm

import (
	"encoding/binary"

	"github.com/jcbreger/rjvm/pkg/classpath"
)

// The tests in this package exercise the interpreter against hand-built
// class files rather than binary fixtures, since none exist on disk.
// classBuilder assembles just enough of the JVMS §4 format for
// classfile.Parse to accept: a constant pool, this/super class,
// zero interfaces, optional fields (buildWithFields), and a handful of
// methods with a Code attribute.

type methodDef struct {
	name, descriptor string
	accessFlags      uint16
	maxStack         uint16
	maxLocals        uint16
	code             []byte
}

type fieldDef struct {
	name, descriptor string
	accessFlags      uint16
}

type classBuilder struct {
	pool      []byte
	nextIndex uint16
	utf8      map[string]uint16
	classes   map[string]uint16
}

func newClassBuilder() *classBuilder {
	return &classBuilder{nextIndex: 1, utf8: map[string]uint16{}, classes: map[string]uint16{}}
}

func (b *classBuilder) addUtf8(s string) uint16 {
	if idx, ok := b.utf8[s]; ok {
		return idx
	}
	idx := b.nextIndex
	b.nextIndex++
	b.pool = append(b.pool, 1) // TagUtf8
	var length [2]byte
	binary.BigEndian.PutUint16(length[:], uint16(len(s)))
	b.pool = append(b.pool, length[:]...)
	b.pool = append(b.pool, []byte(s)...)
	b.utf8[s] = idx
	return idx
}

func (b *classBuilder) addClass(name string) uint16 {
	if idx, ok := b.classes[name]; ok {
		return idx
	}
	nameIdx := b.addUtf8(name)
	idx := b.nextIndex
	b.nextIndex++
	b.pool = append(b.pool, 7) // TagClass
	var nameBytes [2]byte
	binary.BigEndian.PutUint16(nameBytes[:], nameIdx)
	b.pool = append(b.pool, nameBytes[:]...)
	b.classes[name] = idx
	return idx
}

func (b *classBuilder) addNameAndType(name, descriptor string) uint16 {
	nameIdx := b.addUtf8(name)
	descIdx := b.addUtf8(descriptor)
	idx := b.nextIndex
	b.nextIndex++
	b.pool = append(b.pool, 12) // TagNameAndType
	var idxBytes [4]byte
	binary.BigEndian.PutUint16(idxBytes[0:2], nameIdx)
	binary.BigEndian.PutUint16(idxBytes[2:4], descIdx)
	b.pool = append(b.pool, idxBytes[:]...)
	return idx
}

func (b *classBuilder) addMethodref(className, name, descriptor string) uint16 {
	classIdx := b.addClass(className)
	natIdx := b.addNameAndType(name, descriptor)
	idx := b.nextIndex
	b.nextIndex++
	b.pool = append(b.pool, 10) // TagMethodref
	var idxBytes [4]byte
	binary.BigEndian.PutUint16(idxBytes[0:2], classIdx)
	binary.BigEndian.PutUint16(idxBytes[2:4], natIdx)
	b.pool = append(b.pool, idxBytes[:]...)
	return idx
}

func (b *classBuilder) addFieldref(className, name, descriptor string) uint16 {
	classIdx := b.addClass(className)
	natIdx := b.addNameAndType(name, descriptor)
	idx := b.nextIndex
	b.nextIndex++
	b.pool = append(b.pool, 9) // TagFieldref
	var idxBytes [4]byte
	binary.BigEndian.PutUint16(idxBytes[0:2], classIdx)
	binary.BigEndian.PutUint16(idxBytes[2:4], natIdx)
	b.pool = append(b.pool, idxBytes[:]...)
	return idx
}

func (b *classBuilder) addString(s string) uint16 {
	strIdx := b.addUtf8(s)
	idx := b.nextIndex
	b.nextIndex++
	b.pool = append(b.pool, 8) // TagString
	var strBytes [2]byte
	binary.BigEndian.PutUint16(strBytes[:], strIdx)
	b.pool = append(b.pool, strBytes[:]...)
	return idx
}

func u16(v uint16) []byte {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return b[:]
}

func u32(v uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	return b[:]
}

// build assembles the full class file: thisName extends superName (empty
// superName produces java/lang/Object with no explicit superclass entry
// is not supported here — callers always pass a super, per JVMS; use
// "java/lang/Object" for leaf classes).
func (b *classBuilder) build(thisName, superName string, methods []methodDef) []byte {
	return b.buildWithFields(thisName, superName, nil, methods)
}

// buildWithFields is build plus a fields_count/field_info section (JVMS
// §4.5), each field carrying zero attributes.
func (b *classBuilder) buildWithFields(thisName, superName string, fields []fieldDef, methods []methodDef) []byte {
	thisIdx := b.addClass(thisName)
	superIdx := b.addClass(superName)
	codeNameIdx := b.addUtf8("Code")

	var fieldBytes []byte
	for _, f := range fields {
		nameIdx := b.addUtf8(f.name)
		descIdx := b.addUtf8(f.descriptor)
		fieldBytes = append(fieldBytes, u16(f.accessFlags)...)
		fieldBytes = append(fieldBytes, u16(nameIdx)...)
		fieldBytes = append(fieldBytes, u16(descIdx)...)
		fieldBytes = append(fieldBytes, u16(0)...) // attributes_count
	}

	var methodBytes []byte
	for _, m := range methods {
		nameIdx := b.addUtf8(m.name)
		descIdx := b.addUtf8(m.descriptor)
		methodBytes = append(methodBytes, u16(m.accessFlags)...)
		methodBytes = append(methodBytes, u16(nameIdx)...)
		methodBytes = append(methodBytes, u16(descIdx)...)
		methodBytes = append(methodBytes, u16(1)...) // one attribute: Code

		var codeAttr []byte
		codeAttr = append(codeAttr, u16(m.maxStack)...)
		codeAttr = append(codeAttr, u16(m.maxLocals)...)
		codeAttr = append(codeAttr, u32(uint32(len(m.code)))...)
		codeAttr = append(codeAttr, m.code...)
		codeAttr = append(codeAttr, u16(0)...) // exception table count
		codeAttr = append(codeAttr, u16(0)...) // Code's own attribute count

		methodBytes = append(methodBytes, u16(codeNameIdx)...)
		methodBytes = append(methodBytes, u32(uint32(len(codeAttr)))...)
		methodBytes = append(methodBytes, codeAttr...)
	}

	var out []byte
	out = append(out, u32(0xCAFEBABE)...)
	out = append(out, u16(0)...)  // minor
	out = append(out, u16(52)...) // major
	out = append(out, u16(b.nextIndex)...)
	out = append(out, b.pool...)
	out = append(out, u16(0x0021)...) // access flags: public, super
	out = append(out, u16(thisIdx)...)
	out = append(out, u16(superIdx)...)
	out = append(out, u16(0)...) // interfaces count
	out = append(out, u16(uint16(len(fields)))...)
	out = append(out, fieldBytes...)
	out = append(out, u16(uint16(len(methods)))...)
	out = append(out, methodBytes...)
	out = append(out, u16(0)...) // class attributes count
	return out
}

// buildSimpleClass builds a class with no explicitly-declared methods
// (used for exception classes the interpreter never calls into directly).
func buildSimpleClass(thisName, superName string) []byte {
	return newClassBuilder().build(thisName, superName, nil)
}

// memEntry is an in-memory classpath.Entry keyed by binary class name,
// used so tests never touch the filesystem.
type memEntry map[string][]byte

func (m memEntry) String() string { return "mem" }

func (m memEntry) Resolve(name string) ([]byte, bool, error) {
	data, ok := m[name]
	return data, ok, nil
}

var _ classpath.Entry = memEntry{}

// newTestClasspathWithObject returns a Classpath carrying the handful of
// built-in exception classes throwBuiltin materializes in these tests.
func newTestClasspathWithObject() *classpath.Classpath {
	entries := memEntry{
		"java/lang/ArithmeticException":            buildSimpleClass("java/lang/ArithmeticException", "java/lang/Object"),
		"java/lang/NullPointerException":           buildSimpleClass("java/lang/NullPointerException", "java/lang/Object"),
		"java/lang/ArrayIndexOutOfBoundsException":  buildSimpleClass("java/lang/ArrayIndexOutOfBoundsException", "java/lang/Object"),
		"java/lang/ClassNotFoundException":          buildSimpleClass("java/lang/ClassNotFoundException", "java/lang/Object"),
		"java/lang/NegativeArraySizeException":      buildSimpleClass("java/lang/NegativeArraySizeException", "java/lang/Object"),
		"java/lang/ClassCastException":              buildSimpleClass("java/lang/ClassCastException", "java/lang/Object"),
	}
	cp := classpath.New(nil)
	cp.PushEntry(entries)
	return cp
}
