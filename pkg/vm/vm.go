package vm

import (
	"github.com/jcbreger/rjvm/internal/ioutil"
	"github.com/jcbreger/rjvm/pkg/classfile"
	"github.com/jcbreger/rjvm/pkg/classpath"
	"github.com/jcbreger/rjvm/pkg/heap"
	"github.com/jcbreger/rjvm/pkg/native"
	"github.com/jcbreger/rjvm/pkg/value"
)

// Vm is the call-stack / facade layer (§4.6): it owns the class manager,
// heap, static-instance table and native registry. RunMain is the entry
// point; invokeMethod runs a single method to completion.
type Vm struct {
	Manager   *Manager
	Heap      *heap.Heap
	Statics   *staticsTable
	Natives   *native.Registry
	IO        ioutil.FileSystem
	CallStack *CallStack

	staticSlotIndex map[int32]map[string]int
}

// New constructs a Vm over the given classpath. fs may be nil to use the
// real OS filesystem; maxStackDepth<=0 selects StackOverflowDepth.
func New(cp *classpath.Classpath, fs ioutil.FileSystem, maxStackDepth int) *Vm {
	if fs == nil {
		fs = ioutil.OS{}
	}
	vm := &Vm{
		Heap:            heap.NewHeap(0),
		Statics:         newStaticsTable(),
		Natives:         native.NewRegistry(),
		IO:              fs,
		CallStack:       NewCallStack(maxStackDepth),
		staticSlotIndex: make(map[int32]map[string]int),
	}
	vm.Manager = NewManager(cp, vm.runClinit)
	native.RegisterBuiltins(vm.Natives, fs)
	return vm
}

// gcRoots returns every heap.RootSource the collector must seed from: the
// whole call stack plus the static-instance table.
func (vm *Vm) gcRoots() []heap.RootSource {
	return []heap.RootSource{vm.CallStack, vm.Statics}
}

func (vm *Vm) classByID(id int32) *Class {
	return vm.Manager.ByID(id)
}

// runClinit is the ClinitRunner the Manager calls on first install of a
// class that declares <clinit>; it runs the method to completion using
// the same interpreter loop as ordinary invocation.
func (vm *Vm) runClinit(cls *Class, method *classfile.MethodInfo) error {
	_, err := vm.invokeMethod(cls, method, nil)
	return err
}

// RunMain resolves mainClass, finds its `main([Ljava/lang/String;)V`
// method, and invokes it with args materialized as a java/lang/String[].
func (vm *Vm) RunMain(mainClass string, args []string) error {
	cls, err := vm.Manager.GetOrResolve(mainClass)
	if err != nil {
		return err
	}
	_, method := cls.FindMethod("main", "([Ljava/lang/String;)V")
	if method == nil {
		return internalError(ErrMethodNotFound, "%s.main([Ljava/lang/String;)V", mainClass)
	}
	argsArray := vm.allocArray(heap.ElementType{ClassName: "java/lang/String"}, len(args))
	for i, a := range args {
		argsArray.Slots[i] = value.ObjectValue(&JString{S: a})
	}
	_, err = vm.invokeMethod(cls, method, []value.Value{value.ObjectValue(argsArray)})
	return err
}

// invokeMethod pushes a frame for method on cls, runs it to completion (or
// dispatches natively if the method is marked native), and pops the frame.
// params holds one entry per formal parameter (plus, for instance methods,
// the receiver first) in declaration order; invokeMethod itself reserves
// the extra local-variable slot a Long/Double parameter needs.
func (vm *Vm) invokeMethod(cls *Class, method *classfile.MethodInfo, params []value.Value) (value.Value, error) {
	if method.AccessFlags&classfile.AccNative != 0 {
		return vm.invokeNative(cls, method, params)
	}
	if method.Code == nil {
		return value.Value{}, internalError(ErrValidation, "%s.%s has no Code attribute", cls.Name, method.Name)
	}

	frame := NewCallFrame(cls, method)
	localIdx := 0
	for _, p := range params {
		frame.SetLocal(localIdx, p)
		if p.IsWide() {
			localIdx += 2
		} else {
			localIdx++
		}
	}
	if err := vm.CallStack.Push(frame); err != nil {
		return value.Value{}, err
	}
	defer vm.CallStack.Pop()

	return vm.runFrame(frame)
}

// invokeNative dispatches to the native registry, using the receiver (if
// any) peeled from params[0] for instance methods.
func (vm *Vm) invokeNative(cls *Class, method *classfile.MethodInfo, params []value.Value) (value.Value, error) {
	var receiver value.Value
	args := params
	if method.AccessFlags&classfile.AccStatic == 0 && len(params) > 0 {
		receiver, args = params[0], params[1:]
	}
	fn, ok := vm.Natives.Lookup(cls.Name, method.Name, method.Descriptor)
	if !ok {
		return value.Value{}, internalError(ErrMethodNotFound, "native %s.%s%s", cls.Name, method.Name, method.Descriptor)
	}
	result, _, err := fn(receiver, args)
	return result, err
}

// runFrame is the dispatch loop (§4.5): read one opcode, decode its
// operands, advance pc past the instruction, then execute it. Each exec*
// family function is tried in turn; the first that recognizes the opcode
// handles it.
func (vm *Vm) runFrame(frame *CallFrame) (value.Value, error) {
	for {
		opcodePC := frame.PC
		opcode := frame.ReadU8()

		result, err := vm.dispatch(frame, opcode, opcodePC)
		if err != nil {
			handled, handleErr := vm.handleException(frame, opcodePC, err)
			if handleErr != nil {
				return value.Value{}, handleErr
			}
			if handled {
				continue
			}
			return value.Value{}, err
		}
		if result.returned {
			return result.returnVal, nil
		}
	}
}

// dispatch tries each opcode family in turn.
func (vm *Vm) dispatch(frame *CallFrame, opcode byte, opcodePC int) (controlResult, error) {
	if ok, err := vm.execConst(frame, opcode); ok {
		return controlResult{}, err
	}
	if ok, err := vm.execLoad(frame, opcode); ok {
		return controlResult{}, err
	}
	if ok, err := vm.execStore(frame, opcode); ok {
		return controlResult{}, err
	}
	if ok, err := vm.execStack(frame, opcode); ok {
		return controlResult{}, err
	}
	if ok, err := vm.execMath(frame, opcode); ok {
		return controlResult{}, err
	}
	if ok, result, err := vm.execControl(frame, opcode, opcodePC); ok {
		return result, err
	}
	if ok, err := vm.execObject(frame, opcode); ok {
		return controlResult{}, err
	}
	if ok, err := vm.execInvoke(frame, opcode); ok {
		return controlResult{}, err
	}
	if opcode == OpAthrow {
		return controlResult{}, vm.execThrow(frame)
	}
	return controlResult{}, internalError(ErrNotImplemented, "opcode 0x%02X at pc=%d", opcode, opcodePC)
}

// StackTrace reconstructs the current stack trace (§4.6).
func (vm *Vm) StackTrace() []TraceEntry {
	return vm.CallStack.StackTrace()
}
