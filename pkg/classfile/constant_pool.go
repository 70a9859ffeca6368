package classfile

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Constant pool tags (JVMS §4.4).
const (
	TagUtf8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldref           = 9
	TagMethodref          = 10
	TagInterfaceMethodref = 11
	TagNameAndType        = 12
	TagMethodHandle       = 15
	TagMethodType         = 16
	TagDynamic            = 17
	TagInvokeDynamic      = 18
)

// ConstantPoolEntry is implemented by every constant pool variant.
type ConstantPoolEntry interface {
	Tag() uint8
}

type ConstantUtf8 struct{ Value string }

func (c *ConstantUtf8) Tag() uint8 { return TagUtf8 }

type ConstantInteger struct{ Value int32 }

func (c *ConstantInteger) Tag() uint8 { return TagInteger }

type ConstantFloat struct{ Value float32 }

func (c *ConstantFloat) Tag() uint8 { return TagFloat }

type ConstantLong struct{ Value int64 }

func (c *ConstantLong) Tag() uint8 { return TagLong }

type ConstantDouble struct{ Value float64 }

func (c *ConstantDouble) Tag() uint8 { return TagDouble }

type ConstantClass struct{ NameIndex uint16 }

func (c *ConstantClass) Tag() uint8 { return TagClass }

type ConstantString struct{ StringIndex uint16 }

func (c *ConstantString) Tag() uint8 { return TagString }

type ConstantFieldref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantFieldref) Tag() uint8 { return TagFieldref }

type ConstantMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantMethodref) Tag() uint8 { return TagMethodref }

type ConstantInterfaceMethodref struct {
	ClassIndex       uint16
	NameAndTypeIndex uint16
}

func (c *ConstantInterfaceMethodref) Tag() uint8 { return TagInterfaceMethodref }

type ConstantNameAndType struct {
	NameIndex       uint16
	DescriptorIndex uint16
}

func (c *ConstantNameAndType) Tag() uint8 { return TagNameAndType }

// constantPlaceholder stands in for pool entries this reader does not
// resolve further (MethodHandle, MethodType, Dynamic, InvokeDynamic) —
// their bootstrap-driven consumers (invokedynamic) are out of scope.
type constantPlaceholder struct{ tag uint8 }

func (c *constantPlaceholder) Tag() uint8 { return c.tag }

// parseConstantPool reads constant_pool_count-1 entries. The returned
// slice is 1-indexed per JVMS: index 0 is always nil, and Long/Double
// entries additionally leave the following index nil (JVMS §4.4.5).
func parseConstantPool(r io.Reader, count uint16, offset int) ([]ConstantPoolEntry, error) {
	pool := make([]ConstantPoolEntry, count)

	for i := uint16(1); i < count; i++ {
		var tag uint8
		if err := binary.Read(r, binary.BigEndian, &tag); err != nil {
			return nil, &ParseError{Offset: offset, Message: fmt.Sprintf("reading constant pool tag at index %d: %v", i, err)}
		}

		switch tag {
		case TagUtf8:
			var length uint16
			if err := binary.Read(r, binary.BigEndian, &length); err != nil {
				return nil, &ParseError{Offset: offset, Message: fmt.Sprintf("reading Utf8 length at index %d: %v", i, err)}
			}
			raw := make([]byte, length)
			if _, err := io.ReadFull(r, raw); err != nil {
				return nil, &ParseError{Offset: offset, Message: fmt.Sprintf("reading Utf8 bytes at index %d: %v", i, err)}
			}
			decoded, err := DecodeModifiedUTF8(raw)
			if err != nil {
				return nil, &ParseError{Offset: offset, Message: fmt.Sprintf("decoding Utf8 at index %d: %v", i, err)}
			}
			pool[i] = &ConstantUtf8{Value: decoded}

		case TagInteger:
			var val int32
			if err := binary.Read(r, binary.BigEndian, &val); err != nil {
				return nil, fmt.Errorf("reading Integer at index %d: %w", i, err)
			}
			pool[i] = &ConstantInteger{Value: val}

		case TagFloat:
			var bits uint32
			if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
				return nil, fmt.Errorf("reading Float at index %d: %w", i, err)
			}
			pool[i] = &ConstantFloat{Value: math.Float32frombits(bits)}

		case TagLong:
			var val int64
			if err := binary.Read(r, binary.BigEndian, &val); err != nil {
				return nil, fmt.Errorf("reading Long at index %d: %w", i, err)
			}
			pool[i] = &ConstantLong{Value: val}
			i++ // Long occupies two constant pool indices

		case TagDouble:
			var bits uint64
			if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
				return nil, fmt.Errorf("reading Double at index %d: %w", i, err)
			}
			pool[i] = &ConstantDouble{Value: math.Float64frombits(bits)}
			i++ // Double occupies two constant pool indices

		case TagClass:
			var nameIndex uint16
			if err := binary.Read(r, binary.BigEndian, &nameIndex); err != nil {
				return nil, fmt.Errorf("reading Class at index %d: %w", i, err)
			}
			pool[i] = &ConstantClass{NameIndex: nameIndex}

		case TagString:
			var stringIndex uint16
			if err := binary.Read(r, binary.BigEndian, &stringIndex); err != nil {
				return nil, fmt.Errorf("reading String at index %d: %w", i, err)
			}
			pool[i] = &ConstantString{StringIndex: stringIndex}

		case TagFieldref:
			classIndex, natIndex, err := readRefPair(r, "Fieldref", i)
			if err != nil {
				return nil, err
			}
			pool[i] = &ConstantFieldref{ClassIndex: classIndex, NameAndTypeIndex: natIndex}

		case TagMethodref:
			classIndex, natIndex, err := readRefPair(r, "Methodref", i)
			if err != nil {
				return nil, err
			}
			pool[i] = &ConstantMethodref{ClassIndex: classIndex, NameAndTypeIndex: natIndex}

		case TagInterfaceMethodref:
			classIndex, natIndex, err := readRefPair(r, "InterfaceMethodref", i)
			if err != nil {
				return nil, err
			}
			pool[i] = &ConstantInterfaceMethodref{ClassIndex: classIndex, NameAndTypeIndex: natIndex}

		case TagNameAndType:
			nameIndex, descIndex, err := readRefPair(r, "NameAndType", i)
			if err != nil {
				return nil, err
			}
			pool[i] = &ConstantNameAndType{NameIndex: nameIndex, DescriptorIndex: descIndex}

		case TagMethodHandle:
			skip := make([]byte, 3) // reference_kind (u1) + reference_index (u2)
			if _, err := io.ReadFull(r, skip); err != nil {
				return nil, fmt.Errorf("reading MethodHandle at index %d: %w", i, err)
			}
			pool[i] = &constantPlaceholder{tag: tag}

		case TagMethodType:
			skip := make([]byte, 2) // descriptor_index (u2)
			if _, err := io.ReadFull(r, skip); err != nil {
				return nil, fmt.Errorf("reading MethodType at index %d: %w", i, err)
			}
			pool[i] = &constantPlaceholder{tag: tag}

		case TagDynamic, TagInvokeDynamic:
			skip := make([]byte, 4) // bootstrap_method_attr_index (u2) + name_and_type_index (u2)
			if _, err := io.ReadFull(r, skip); err != nil {
				return nil, fmt.Errorf("reading Dynamic/InvokeDynamic at index %d: %w", i, err)
			}
			pool[i] = &constantPlaceholder{tag: tag}

		default:
			return nil, &ParseError{Offset: offset, Message: fmt.Sprintf("unknown constant pool tag %d at index %d", tag, i)}
		}
	}

	return pool, nil
}

func readRefPair(r io.Reader, kind string, i uint16) (uint16, uint16, error) {
	var a, b uint16
	if err := binary.Read(r, binary.BigEndian, &a); err != nil {
		return 0, 0, fmt.Errorf("reading %s first index at index %d: %w", kind, i, err)
	}
	if err := binary.Read(r, binary.BigEndian, &b); err != nil {
		return 0, 0, fmt.Errorf("reading %s second index at index %d: %w", kind, i, err)
	}
	return a, b, nil
}

// GetUtf8 returns the Utf8 string at the given constant pool index.
func GetUtf8(pool []ConstantPoolEntry, index uint16) (string, error) {
	if int(index) >= len(pool) || pool[index] == nil {
		return "", fmt.Errorf("invalid constant pool index %d", index)
	}
	utf8, ok := pool[index].(*ConstantUtf8)
	if !ok {
		return "", fmt.Errorf("constant pool index %d is not Utf8 (tag=%d)", index, pool[index].Tag())
	}
	return utf8.Value, nil
}

// GetClassName returns the class name referenced by a CONSTANT_Class entry.
func GetClassName(pool []ConstantPoolEntry, classIndex uint16) (string, error) {
	if int(classIndex) >= len(pool) || pool[classIndex] == nil {
		return "", fmt.Errorf("invalid constant pool index %d", classIndex)
	}
	class, ok := pool[classIndex].(*ConstantClass)
	if !ok {
		return "", fmt.Errorf("constant pool index %d is not Class", classIndex)
	}
	return GetUtf8(pool, class.NameIndex)
}

// MethodRefInfo holds a resolved Methodref/InterfaceMethodref.
type MethodRefInfo struct {
	ClassName  string
	MethodName string
	Descriptor string
}

// ResolveMethodref resolves a CONSTANT_Methodref entry.
func ResolveMethodref(pool []ConstantPoolEntry, index uint16) (*MethodRefInfo, error) {
	if int(index) >= len(pool) || pool[index] == nil {
		return nil, fmt.Errorf("invalid constant pool index %d", index)
	}
	mref, ok := pool[index].(*ConstantMethodref)
	if !ok {
		return nil, fmt.Errorf("constant pool index %d is not Methodref", index)
	}
	return resolveMethodLike(pool, mref.ClassIndex, mref.NameAndTypeIndex, "Methodref")
}

// ResolveInterfaceMethodref resolves a CONSTANT_InterfaceMethodref entry.
func ResolveInterfaceMethodref(pool []ConstantPoolEntry, index uint16) (*MethodRefInfo, error) {
	if int(index) >= len(pool) || pool[index] == nil {
		return nil, fmt.Errorf("invalid constant pool index %d", index)
	}
	mref, ok := pool[index].(*ConstantInterfaceMethodref)
	if !ok {
		return nil, fmt.Errorf("constant pool index %d is not InterfaceMethodref", index)
	}
	return resolveMethodLike(pool, mref.ClassIndex, mref.NameAndTypeIndex, "InterfaceMethodref")
}

func resolveMethodLike(pool []ConstantPoolEntry, classIndex, natIndex uint16, kind string) (*MethodRefInfo, error) {
	className, err := GetClassName(pool, classIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving %s class: %w", kind, err)
	}
	name, desc, err := resolveNameAndType(pool, natIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving %s name-and-type: %w", kind, err)
	}
	return &MethodRefInfo{ClassName: className, MethodName: name, Descriptor: desc}, nil
}

// FieldRefInfo holds a resolved Fieldref.
type FieldRefInfo struct {
	ClassName  string
	FieldName  string
	Descriptor string
}

// ResolveFieldref resolves a CONSTANT_Fieldref entry.
func ResolveFieldref(pool []ConstantPoolEntry, index uint16) (*FieldRefInfo, error) {
	if int(index) >= len(pool) || pool[index] == nil {
		return nil, fmt.Errorf("invalid constant pool index %d", index)
	}
	fref, ok := pool[index].(*ConstantFieldref)
	if !ok {
		return nil, fmt.Errorf("constant pool index %d is not Fieldref", index)
	}
	className, err := GetClassName(pool, fref.ClassIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving Fieldref class: %w", err)
	}
	name, desc, err := resolveNameAndType(pool, fref.NameAndTypeIndex)
	if err != nil {
		return nil, fmt.Errorf("resolving Fieldref name-and-type: %w", err)
	}
	return &FieldRefInfo{ClassName: className, FieldName: name, Descriptor: desc}, nil
}

func resolveNameAndType(pool []ConstantPoolEntry, index uint16) (name, descriptor string, err error) {
	if int(index) >= len(pool) || pool[index] == nil {
		return "", "", fmt.Errorf("invalid NameAndType index %d", index)
	}
	nat, ok := pool[index].(*ConstantNameAndType)
	if !ok {
		return "", "", fmt.Errorf("constant pool index %d is not NameAndType", index)
	}
	name, err = GetUtf8(pool, nat.NameIndex)
	if err != nil {
		return "", "", fmt.Errorf("resolving name: %w", err)
	}
	descriptor, err = GetUtf8(pool, nat.DescriptorIndex)
	if err != nil {
		return "", "", fmt.Errorf("resolving descriptor: %w", err)
	}
	return name, descriptor, nil
}
