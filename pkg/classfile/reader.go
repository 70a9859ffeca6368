package classfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const classMagic = 0xCAFEBABE

// minSupportedMajor/maxSupportedMajor bound the recognized class-file
// versions: JDK 6 (major 50) through roughly JDK 17 (major 61).
const (
	minSupportedMajor = 50
	maxSupportedMajor = 61
)

// ParseError reports a malformed class file together with a byte offset. It
// is returned for a truncated header, a bad magic number or version, an
// unknown constant-pool tag and an unreadable or undecodable Utf8 entry;
// constant-pool errors carry the offset at which the pool starts. Failures
// in other constant-pool entries, fields, methods or attributes are returned
// as plain wrapped errors without an offset.
type ParseError struct {
	Offset  int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("class file parse error at offset %d: %s", e.Offset, e.Message)
}

// countingReader wraps a reader and tracks how many bytes have been
// consumed, so parse errors can report an offset.
type countingReader struct {
	r   io.Reader
	pos int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.pos += n
	return n, err
}

// ParseFile opens and parses a .class file from the given path.
func ParseFile(path string) (*ClassFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a .class file from r and returns its structured form.
func Parse(r io.Reader) (*ClassFile, error) {
	cr := &countingReader{r: r}
	cf := &ClassFile{}

	var magic uint32
	if err := binary.Read(cr, binary.BigEndian, &magic); err != nil {
		return nil, &ParseError{Offset: cr.pos, Message: "reading magic number: " + err.Error()}
	}
	if magic != classMagic {
		return nil, &ParseError{Offset: 0, Message: fmt.Sprintf("invalid magic number: 0x%X (expected 0xCAFEBABE)", magic)}
	}

	if err := binary.Read(cr, binary.BigEndian, &cf.MinorVersion); err != nil {
		return nil, &ParseError{Offset: cr.pos, Message: "reading minor version: " + err.Error()}
	}
	if err := binary.Read(cr, binary.BigEndian, &cf.MajorVersion); err != nil {
		return nil, &ParseError{Offset: cr.pos, Message: "reading major version: " + err.Error()}
	}
	if cf.MajorVersion < minSupportedMajor || cf.MajorVersion > maxSupportedMajor {
		return nil, &ParseError{Offset: cr.pos, Message: fmt.Sprintf("unsupported class file major version %d", cf.MajorVersion)}
	}

	var cpCount uint16
	if err := binary.Read(cr, binary.BigEndian, &cpCount); err != nil {
		return nil, &ParseError{Offset: cr.pos, Message: "reading constant pool count: " + err.Error()}
	}
	pool, err := parseConstantPool(cr, cpCount, cr.pos)
	if err != nil {
		return nil, err
	}
	cf.ConstantPool = pool

	if err := binary.Read(cr, binary.BigEndian, &cf.AccessFlags); err != nil {
		return nil, &ParseError{Offset: cr.pos, Message: "reading access flags: " + err.Error()}
	}
	if err := binary.Read(cr, binary.BigEndian, &cf.ThisClass); err != nil {
		return nil, &ParseError{Offset: cr.pos, Message: "reading this_class: " + err.Error()}
	}
	if err := binary.Read(cr, binary.BigEndian, &cf.SuperClass); err != nil {
		return nil, &ParseError{Offset: cr.pos, Message: "reading super_class: " + err.Error()}
	}

	var interfacesCount uint16
	if err := binary.Read(cr, binary.BigEndian, &interfacesCount); err != nil {
		return nil, &ParseError{Offset: cr.pos, Message: "reading interfaces count: " + err.Error()}
	}
	cf.Interfaces = make([]uint16, interfacesCount)
	for i := uint16(0); i < interfacesCount; i++ {
		if err := binary.Read(cr, binary.BigEndian, &cf.Interfaces[i]); err != nil {
			return nil, &ParseError{Offset: cr.pos, Message: fmt.Sprintf("reading interface %d: %v", i, err)}
		}
	}

	var fieldsCount uint16
	if err := binary.Read(cr, binary.BigEndian, &fieldsCount); err != nil {
		return nil, &ParseError{Offset: cr.pos, Message: "reading fields count: " + err.Error()}
	}
	cf.Fields, err = parseFields(cr, cf.ConstantPool, fieldsCount)
	if err != nil {
		return nil, err
	}

	var methodsCount uint16
	if err := binary.Read(cr, binary.BigEndian, &methodsCount); err != nil {
		return nil, &ParseError{Offset: cr.pos, Message: "reading methods count: " + err.Error()}
	}
	cf.Methods, err = parseMethods(cr, cf.ConstantPool, methodsCount)
	if err != nil {
		return nil, err
	}

	if err := parseClassAttributes(cr, cf); err != nil {
		return nil, err
	}

	return cf, nil
}

func parseFields(r io.Reader, pool []ConstantPoolEntry, count uint16) ([]FieldInfo, error) {
	fields := make([]FieldInfo, count)
	for i := uint16(0); i < count; i++ {
		var accessFlags, nameIndex, descIndex, attrCount uint16
		if err := binary.Read(r, binary.BigEndian, &accessFlags); err != nil {
			return nil, fmt.Errorf("reading field %d access flags: %w", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &nameIndex); err != nil {
			return nil, fmt.Errorf("reading field %d name index: %w", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &descIndex); err != nil {
			return nil, fmt.Errorf("reading field %d descriptor index: %w", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &attrCount); err != nil {
			return nil, fmt.Errorf("reading field %d attributes count: %w", i, err)
		}

		name, err := GetUtf8(pool, nameIndex)
		if err != nil {
			return nil, fmt.Errorf("resolving field %d name: %w", i, err)
		}
		desc, err := GetUtf8(pool, descIndex)
		if err != nil {
			return nil, fmt.Errorf("resolving field %d descriptor: %w", i, err)
		}
		attrs, err := parseAttributeInfos(r, pool, attrCount)
		if err != nil {
			return nil, fmt.Errorf("parsing field %d attributes: %w", i, err)
		}

		fields[i] = FieldInfo{AccessFlags: accessFlags, Name: name, Descriptor: desc, Attributes: attrs}
	}
	return fields, nil
}

func parseMethods(r io.Reader, pool []ConstantPoolEntry, count uint16) ([]MethodInfo, error) {
	methods := make([]MethodInfo, count)
	for i := uint16(0); i < count; i++ {
		var accessFlags, nameIndex, descIndex, attrCount uint16
		if err := binary.Read(r, binary.BigEndian, &accessFlags); err != nil {
			return nil, fmt.Errorf("reading method %d access flags: %w", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &nameIndex); err != nil {
			return nil, fmt.Errorf("reading method %d name index: %w", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &descIndex); err != nil {
			return nil, fmt.Errorf("reading method %d descriptor index: %w", i, err)
		}
		if err := binary.Read(r, binary.BigEndian, &attrCount); err != nil {
			return nil, fmt.Errorf("reading method %d attributes count: %w", i, err)
		}

		name, err := GetUtf8(pool, nameIndex)
		if err != nil {
			return nil, fmt.Errorf("resolving method %d name: %w", i, err)
		}
		desc, err := GetUtf8(pool, descIndex)
		if err != nil {
			return nil, fmt.Errorf("resolving method %d descriptor: %w", i, err)
		}
		attrs, err := parseAttributeInfos(r, pool, attrCount)
		if err != nil {
			return nil, fmt.Errorf("parsing method %d attributes: %w", i, err)
		}

		m := MethodInfo{AccessFlags: accessFlags, Name: name, Descriptor: desc, Attributes: attrs}
		for _, attr := range attrs {
			if attr.Name == "Code" {
				code, err := parseCodeAttribute(pool, attr.Data)
				if err != nil {
					return nil, fmt.Errorf("parsing Code attribute for method %s: %w", name, err)
				}
				m.Code = code
				break
			}
		}
		methods[i] = m
	}
	return methods, nil
}

func parseAttributeInfos(r io.Reader, pool []ConstantPoolEntry, count uint16) ([]AttributeInfo, error) {
	attrs := make([]AttributeInfo, count)
	for i := uint16(0); i < count; i++ {
		var nameIndex uint16
		if err := binary.Read(r, binary.BigEndian, &nameIndex); err != nil {
			return nil, fmt.Errorf("reading attribute %d name index: %w", i, err)
		}
		var length uint32
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return nil, fmt.Errorf("reading attribute %d length: %w", i, err)
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("reading attribute %d data: %w", i, err)
		}
		name, err := GetUtf8(pool, nameIndex)
		if err != nil {
			return nil, fmt.Errorf("resolving attribute %d name: %w", i, err)
		}
		attrs[i] = AttributeInfo{Name: name, Data: data}
	}
	return attrs, nil
}

func parseCodeAttribute(pool []ConstantPoolEntry, data []byte) (*CodeAttribute, error) {
	if len(data) < 8 {
		return nil, fmt.Errorf("Code attribute too short: %d bytes", len(data))
	}

	maxStack := binary.BigEndian.Uint16(data[0:2])
	maxLocals := binary.BigEndian.Uint16(data[2:4])
	codeLength := binary.BigEndian.Uint32(data[4:8])

	if len(data) < 8+int(codeLength) {
		return nil, fmt.Errorf("Code attribute data too short for code_length %d", codeLength)
	}
	code := make([]byte, codeLength)
	copy(code, data[8:8+codeLength])

	offset := 8 + int(codeLength)
	if offset+2 > len(data) {
		return nil, fmt.Errorf("Code attribute truncated before exception table")
	}
	exTableLen := binary.BigEndian.Uint16(data[offset : offset+2])
	offset += 2
	handlers := make([]ExceptionTableEntry, exTableLen)
	for i := uint16(0); i < exTableLen; i++ {
		if offset+8 > len(data) {
			return nil, fmt.Errorf("Code attribute exception table truncated at entry %d", i)
		}
		handlers[i] = ExceptionTableEntry{
			StartPC:   binary.BigEndian.Uint16(data[offset : offset+2]),
			EndPC:     binary.BigEndian.Uint16(data[offset+2 : offset+4]),
			HandlerPC: binary.BigEndian.Uint16(data[offset+4 : offset+6]),
			CatchType: binary.BigEndian.Uint16(data[offset+6 : offset+8]),
		}
		offset += 8
	}

	// Code's own attributes (LineNumberTable is the only one this
	// interpreter consumes; others — StackMapTable, LocalVariableTable —
	// are skipped).
	var lineNumbers []LineNumberEntry
	if offset+2 <= len(data) {
		attrCount := binary.BigEndian.Uint16(data[offset : offset+2])
		offset += 2
		for i := uint16(0); i < attrCount; i++ {
			if offset+6 > len(data) {
				return nil, fmt.Errorf("Code attribute truncated in nested attribute %d", i)
			}
			nameIndex := binary.BigEndian.Uint16(data[offset : offset+2])
			attrLen := binary.BigEndian.Uint32(data[offset+2 : offset+6])
			offset += 6
			if offset+int(attrLen) > len(data) {
				return nil, fmt.Errorf("Code attribute nested attribute %d truncated", i)
			}
			attrData := data[offset : offset+int(attrLen)]
			offset += int(attrLen)

			name, err := GetUtf8(pool, nameIndex)
			if err != nil {
				continue
			}
			if name == "LineNumberTable" {
				lineNumbers, err = parseLineNumberTable(attrData)
				if err != nil {
					return nil, fmt.Errorf("parsing LineNumberTable: %w", err)
				}
			}
		}
	}

	return &CodeAttribute{
		MaxStack:        maxStack,
		MaxLocals:       maxLocals,
		Code:            code,
		ExceptionTable:  handlers,
		LineNumberTable: lineNumbers,
	}, nil
}

func parseLineNumberTable(data []byte) ([]LineNumberEntry, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("LineNumberTable too short")
	}
	count := binary.BigEndian.Uint16(data[0:2])
	offset := 2
	entries := make([]LineNumberEntry, count)
	for i := uint16(0); i < count; i++ {
		if offset+4 > len(data) {
			return nil, fmt.Errorf("LineNumberTable truncated at entry %d", i)
		}
		entries[i] = LineNumberEntry{
			StartPC:    binary.BigEndian.Uint16(data[offset : offset+2]),
			LineNumber: binary.BigEndian.Uint16(data[offset+2 : offset+4]),
		}
		offset += 4
	}
	return entries, nil
}

func parseClassAttributes(r io.Reader, cf *ClassFile) error {
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return fmt.Errorf("reading class attributes count: %w", err)
	}
	for i := uint16(0); i < count; i++ {
		var nameIndex uint16
		if err := binary.Read(r, binary.BigEndian, &nameIndex); err != nil {
			return fmt.Errorf("reading class attribute %d name index: %w", i, err)
		}
		var length uint32
		if err := binary.Read(r, binary.BigEndian, &length); err != nil {
			return fmt.Errorf("reading class attribute %d length: %w", i, err)
		}
		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return fmt.Errorf("reading class attribute %d data: %w", i, err)
		}
		name, err := GetUtf8(cf.ConstantPool, nameIndex)
		if err != nil {
			continue // skip attributes we can't even name
		}
		switch name {
		case "BootstrapMethods":
			cf.BootstrapMethods, err = parseBootstrapMethods(data)
			if err != nil {
				return fmt.Errorf("parsing BootstrapMethods: %w", err)
			}
		case "SourceFile":
			if len(data) < 2 {
				return fmt.Errorf("SourceFile attribute too short")
			}
			sourceFileIndex := binary.BigEndian.Uint16(data[0:2])
			cf.SourceFile, err = GetUtf8(cf.ConstantPool, sourceFileIndex)
			if err != nil {
				return fmt.Errorf("resolving SourceFile: %w", err)
			}
		}
	}
	return nil
}

func parseBootstrapMethods(data []byte) ([]BootstrapMethod, error) {
	if len(data) < 2 {
		return nil, fmt.Errorf("BootstrapMethods data too short")
	}
	numMethods := binary.BigEndian.Uint16(data[0:2])
	offset := 2
	methods := make([]BootstrapMethod, numMethods)
	for i := uint16(0); i < numMethods; i++ {
		if offset+4 > len(data) {
			return nil, fmt.Errorf("BootstrapMethods truncated at method %d", i)
		}
		methodRef := binary.BigEndian.Uint16(data[offset : offset+2])
		numArgs := binary.BigEndian.Uint16(data[offset+2 : offset+4])
		offset += 4
		args := make([]uint16, numArgs)
		for j := uint16(0); j < numArgs; j++ {
			if offset+2 > len(data) {
				return nil, fmt.Errorf("BootstrapMethods truncated at arg %d of method %d", j, i)
			}
			args[j] = binary.BigEndian.Uint16(data[offset : offset+2])
			offset += 2
		}
		methods[i] = BootstrapMethod{MethodRef: methodRef, BootstrapArguments: args}
	}
	return methods, nil
}
