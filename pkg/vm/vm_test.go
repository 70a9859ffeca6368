package vm

import "testing"

// TestInvokeStaticEndToEnd builds a class with two static methods and
// drives the real dispatch loop (runFrame -> execInvoke -> invokeMethod)
// across a nested invokestatic, matching the end-to-end scenarios format
// without depending on binary .class fixtures.
func TestInvokeStaticEndToEnd(t *testing.T) {
	b := newClassBuilder()
	addOneRef := b.addMethodref("Calc", "addOne", "(I)I")

	addOneCode := []byte{
		OpIload, 0, // load local 0
		OpBipush, 1,
		OpIadd,
		OpIreturn,
	}
	callerCode := []byte{
		OpBipush, 5,
		OpInvokestatic, byte(addOneRef >> 8), byte(addOneRef),
		OpIreturn,
	}

	data := b.build("Calc", "java/lang/Object", []methodDef{
		{name: "addOne", descriptor: "(I)I", accessFlags: 0x0009 /* public static */, maxStack: 2, maxLocals: 1, code: addOneCode},
		{name: "call", descriptor: "()I", accessFlags: 0x0009, maxStack: 2, maxLocals: 0, code: callerCode},
	})

	cp := newTestClasspathWithObject()
	cp.PushEntry(memEntry{"Calc": data})

	machine := New(cp, nil, 0)
	cls, err := machine.Manager.GetOrResolve("Calc")
	if err != nil {
		t.Fatalf("GetOrResolve: %v", err)
	}
	_, method := cls.FindMethod("call", "()I")
	if method == nil {
		t.Fatal("call()I not found")
	}

	result, err := machine.invokeMethod(cls, method, nil)
	if err != nil {
		t.Fatalf("invokeMethod: %v", err)
	}
	if got := result.Int(); got != 6 {
		t.Errorf("call() = %d, want 6 (5+1)", got)
	}
}
