package vm

import (
	"bytes"
	"fmt"

	"github.com/jcbreger/rjvm/pkg/classfile"
	"github.com/jcbreger/rjvm/pkg/classpath"
)

// ClinitRunner executes a class's <clinit> method to completion. The
// manager calls it, rather than interpreting directly itself, so that
// class installation can trigger bytecode execution without this file
// depending on the interpreter's dispatch loop; Vm wires the two together
// at construction.
type ClinitRunner func(cls *Class, method *classfile.MethodInfo) error

// Manager is the class manager (§4.3): it resolves binary names to
// installed Classes on demand, assigning each a stable class id and
// computing its instance-field layout, and never re-installs a class once
// present.
type Manager struct {
	cp      *classpath.Classpath
	classes map[string]*Class
	byID    []*Class
	nextID  int32
	clinit  ClinitRunner

	resolving map[string]bool // cycle detection during recursive resolution
}

// ByID looks an installed class up by its class id, or returns nil if id
// is out of range (never the case for an id this Manager itself assigned).
func (m *Manager) ByID(id int32) *Class {
	if id < 0 || int(id) >= len(m.byID) {
		return nil
	}
	return m.byID[id]
}

// NewManager constructs a Manager over the given classpath. runner may be
// nil until SetClinitRunner is called (the Vm does this once it exists).
func NewManager(cp *classpath.Classpath, runner ClinitRunner) *Manager {
	return &Manager{
		cp:        cp,
		classes:   make(map[string]*Class),
		clinit:    runner,
		resolving: make(map[string]bool),
	}
}

// SetClinitRunner wires the interpreter entry point in after both the
// manager and the Vm exist.
func (m *Manager) SetClinitRunner(runner ClinitRunner) {
	m.clinit = runner
}

// Installed returns the already-installed class by name, or nil.
func (m *Manager) Installed(name string) *Class {
	return m.classes[name]
}

// GetOrResolve returns the installed Class for name, loading, parsing and
// linking it (recursively resolving its superclass and interfaces first)
// if it is not already installed. Idempotent: repeated calls for the same
// name return the same *Class.
func (m *Manager) GetOrResolve(name string) (*Class, error) {
	if cls, ok := m.classes[name]; ok {
		return cls, nil
	}

	if name == "java/lang/Object" {
		return m.installObjectBootstrap()
	}

	if m.resolving[name] {
		return nil, fmt.Errorf("class loading cycle detected resolving %s", name)
	}
	m.resolving[name] = true
	defer delete(m.resolving, name)

	data, err := m.cp.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("resolving class %s: %w", name, err)
	}
	if data == nil {
		return nil, fmt.Errorf("class not found: %s", name)
	}

	cf, err := classfile.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing class %s: %w", name, err)
	}
	return m.install(cf)
}

// install links an already-parsed ClassFile: resolves superclass and
// interfaces (recursively), assigns a class id, computes the field
// layout, registers the class, then runs <clinit> if present.
func (m *Manager) install(cf *classfile.ClassFile) (*Class, error) {
	name, err := cf.ClassName()
	if err != nil {
		return nil, err
	}
	if cls, ok := m.classes[name]; ok {
		return cls, nil
	}

	var super *Class
	superName, err := cf.SuperClassName()
	if err != nil {
		return nil, err
	}
	if superName != "" {
		super, err = m.GetOrResolve(superName)
		if err != nil {
			return nil, fmt.Errorf("resolving superclass of %s: %w", name, err)
		}
	}

	ifaceNames, err := cf.InterfaceNames()
	if err != nil {
		return nil, err
	}
	interfaces := make([]*Class, len(ifaceNames))
	for i, ifn := range ifaceNames {
		iface, err := m.GetOrResolve(ifn)
		if err != nil {
			return nil, fmt.Errorf("resolving interface %s of %s: %w", ifn, name, err)
		}
		interfaces[i] = iface
	}

	cls := &Class{
		File:        cf,
		Name:        name,
		Superclass:  super,
		Interfaces:  interfaces,
		ID:          m.nextID,
		FieldIndex:  make(map[string]int),
		StaticIndex: make(map[string]*classfile.FieldInfo),
	}
	m.nextID++
	m.byID = append(m.byID, cls)

	if super != nil {
		cls.Fields = append(cls.Fields, super.Fields...)
		for k, v := range super.FieldIndex {
			cls.FieldIndex[k] = v
		}
	}
	for i := range cf.Fields {
		f := &cf.Fields[i]
		if f.AccessFlags&classfile.AccStatic != 0 {
			cls.StaticIndex[f.Name] = f
			continue
		}
		cls.FieldIndex[f.Name] = len(cls.Fields)
		cls.Fields = append(cls.Fields, InstanceField{
			DeclaringClass: name,
			Name:           f.Name,
			Descriptor:     f.Descriptor,
		})
	}

	// Installed before <clinit> runs: a <clinit> that re-enters
	// get_or_resolve(name) (directly or via a static self-reference) must
	// observe the class as present, with fields not yet initialized.
	m.classes[name] = cls

	if clinit := cf.FindMethod("<clinit>", "()V"); clinit != nil && m.clinit != nil {
		if err := m.clinit(cls, clinit); err != nil {
			return nil, fmt.Errorf("running <clinit> for %s: %w", name, err)
		}
	}

	return cls, nil
}

// installObjectBootstrap installs java/lang/Object as a superclass-less
// class even if the classpath carries a real class file for it. The
// bootstrap classes are minimal: the interpreter only needs Object to
// terminate the superclass chain. No Object natives are registered; clone()
// on an array receiver is handled directly by the invoke path.
func (m *Manager) installObjectBootstrap() (*Class, error) {
	data, err := m.cp.Resolve("java/lang/Object")
	if err == nil && data != nil {
		cf, err := classfile.Parse(bytes.NewReader(data))
		if err == nil {
			return m.install(cf)
		}
	}
	cf := &classfile.ClassFile{
		MajorVersion: 50,
		ConstantPool: []classfile.ConstantPoolEntry{nil},
	}
	cls := &Class{
		File:        cf,
		Name:        "java/lang/Object",
		ID:          m.nextID,
		FieldIndex:  make(map[string]int),
		StaticIndex: make(map[string]*classfile.FieldInfo),
	}
	m.nextID++
	m.byID = append(m.byID, cls)
	m.classes["java/lang/Object"] = cls
	return cls, nil
}
