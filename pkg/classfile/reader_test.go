package classfile

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildMinimalClass assembles just enough of the JVMS §4 byte stream for
// Parse to accept: a constant pool with one Utf8/Class pair for "this" and
// one for "super", no interfaces/fields, and a single method whose Code
// attribute holds one return instruction (no exception table, no nested
// attributes).
func buildMinimalClass(thisName, superName string) []byte {
	var pool bytes.Buffer

	writeUtf8 := func(s string) {
		pool.WriteByte(TagUtf8)
		binary.Write(&pool, binary.BigEndian, uint16(len(s)))
		pool.WriteString(s)
	}
	writeClass := func(nameIndex uint16) {
		pool.WriteByte(TagClass)
		binary.Write(&pool, binary.BigEndian, nameIndex)
	}

	writeUtf8(thisName)  // index 1
	writeClass(1)        // index 2: Class -> this
	writeUtf8(superName) // index 3
	writeClass(3)        // index 4: Class -> super
	writeUtf8("run")     // index 5
	writeUtf8("()V")     // index 6
	writeUtf8("Code")    // index 7

	var code bytes.Buffer
	binary.Write(&code, binary.BigEndian, uint16(1)) // max_stack
	binary.Write(&code, binary.BigEndian, uint16(1)) // max_locals
	body := []byte{0xB1}                             // return
	binary.Write(&code, binary.BigEndian, uint32(len(body)))
	code.Write(body)
	binary.Write(&code, binary.BigEndian, uint16(0)) // exception table count
	binary.Write(&code, binary.BigEndian, uint16(0)) // Code's own attributes

	var methods bytes.Buffer
	binary.Write(&methods, binary.BigEndian, uint16(AccPublic)) // access_flags
	binary.Write(&methods, binary.BigEndian, uint16(5))         // name_index -> "run"
	binary.Write(&methods, binary.BigEndian, uint16(6))         // descriptor_index -> "()V"
	binary.Write(&methods, binary.BigEndian, uint16(1))         // attributes_count
	binary.Write(&methods, binary.BigEndian, uint16(7))         // attribute_name_index -> "Code"
	binary.Write(&methods, binary.BigEndian, uint32(code.Len()))
	methods.Write(code.Bytes())

	var out bytes.Buffer
	binary.Write(&out, binary.BigEndian, uint32(classMagic))
	binary.Write(&out, binary.BigEndian, uint16(0))  // minor
	binary.Write(&out, binary.BigEndian, uint16(52)) // major
	binary.Write(&out, binary.BigEndian, uint16(8))  // constant_pool_count (indices 1..7)
	out.Write(pool.Bytes())
	binary.Write(&out, binary.BigEndian, uint16(AccPublic|AccSuper))
	binary.Write(&out, binary.BigEndian, uint16(2)) // this_class
	binary.Write(&out, binary.BigEndian, uint16(4)) // super_class
	binary.Write(&out, binary.BigEndian, uint16(0)) // interfaces_count
	binary.Write(&out, binary.BigEndian, uint16(0)) // fields_count
	binary.Write(&out, binary.BigEndian, uint16(1)) // methods_count
	out.Write(methods.Bytes())
	binary.Write(&out, binary.BigEndian, uint16(0)) // class attributes_count
	return out.Bytes()
}

func TestParseMinimalClass(t *testing.T) {
	data := buildMinimalClass("Example", "java/lang/Object")
	cf, err := Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	name, err := cf.ClassName()
	if err != nil || name != "Example" {
		t.Errorf("ClassName() = (%q, %v), want (Example, nil)", name, err)
	}
	super, err := cf.SuperClassName()
	if err != nil || super != "java/lang/Object" {
		t.Errorf("SuperClassName() = (%q, %v), want (java/lang/Object, nil)", super, err)
	}

	m := cf.FindMethod("run", "()V")
	if m == nil {
		t.Fatal("FindMethod(run, ()V) = nil")
	}
	if m.Code == nil {
		t.Fatal("method has no Code attribute")
	}
	if len(m.Code.Code) != 1 || m.Code.Code[0] != 0xB1 {
		t.Errorf("Code.Code = %x, want [B1]", m.Code.Code)
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	data := buildMinimalClass("Example", "java/lang/Object")
	data[0] = 0x00 // corrupt the magic number
	_, err := Parse(bytes.NewReader(data))
	if err == nil {
		t.Fatal("Parse accepted a class file with a corrupt magic number")
	}
}

func TestParseRejectsUnsupportedMajorVersion(t *testing.T) {
	data := buildMinimalClass("Example", "java/lang/Object")
	binary.BigEndian.PutUint16(data[6:8], 200) // major version, absurdly high
	_, err := Parse(bytes.NewReader(data))
	if err == nil {
		t.Fatal("Parse accepted an unsupported major version")
	}
}

func TestParseRejectsTruncatedInput(t *testing.T) {
	data := buildMinimalClass("Example", "java/lang/Object")
	_, err := Parse(bytes.NewReader(data[:10]))
	if err == nil {
		t.Fatal("Parse accepted truncated input")
	}
}
