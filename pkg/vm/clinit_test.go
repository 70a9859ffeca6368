package vm

import "testing"

// TestClinitRunsOnFirstResolve exercises the Manager -> runClinit -> the
// interpreter's own dispatch loop wiring: a class with a <clinit> that
// writes a static field must have that field initialized by the time
// GetOrResolve first returns it, with no explicit invocation by the caller.
func TestClinitRunsOnFirstResolve(t *testing.T) {
	b := newClassBuilder()
	fieldRef := b.addFieldref("Settings", "limit", "I")

	clinitCode := []byte{
		OpBipush, 42,
		OpPutstatic, byte(fieldRef >> 8), byte(fieldRef),
		OpReturn,
	}
	data := b.buildWithFields("Settings", "java/lang/Object",
		[]fieldDef{{name: "limit", descriptor: "I", accessFlags: 0x0008}},
		[]methodDef{
			{name: "<clinit>", descriptor: "()V", accessFlags: 0x0008, maxStack: 2, maxLocals: 0, code: clinitCode},
		})

	cp := newTestClasspathWithObject()
	cp.PushEntry(memEntry{"Settings": data})
	machine := New(cp, nil, 0)

	cls, err := machine.Manager.GetOrResolve("Settings")
	if err != nil {
		t.Fatalf("GetOrResolve: %v", err)
	}
	if got := machine.staticField(cls, "limit").Int(); got != 42 {
		t.Errorf("static field after <clinit> = %d, want 42", got)
	}
}
