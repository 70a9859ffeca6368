package vm

import "github.com/jcbreger/rjvm/pkg/value"

// StackOverflowDepth is the default maximum number of frames a CallStack
// may hold before Push reports an internal StackOverflow error.
const StackOverflowDepth = 1024

// CallStack is an ordered sequence of CallFrames; the last entry is the
// one currently executing (§3 "CallStack").
type CallStack struct {
	frames   []*CallFrame
	maxDepth int
}

// NewCallStack constructs an empty call stack. maxDepth<=0 selects
// StackOverflowDepth.
func NewCallStack(maxDepth int) *CallStack {
	if maxDepth <= 0 {
		maxDepth = StackOverflowDepth
	}
	return &CallStack{maxDepth: maxDepth}
}

// Push installs frame as the new top of stack.
func (cs *CallStack) Push(frame *CallFrame) error {
	if len(cs.frames) >= cs.maxDepth {
		return internalError(ErrStackOverflow, "exceeded max call depth %d", cs.maxDepth)
	}
	cs.frames = append(cs.frames, frame)
	return nil
}

// Pop removes and discards the topmost frame.
func (cs *CallStack) Pop() {
	cs.frames = cs.frames[:len(cs.frames)-1]
}

// Top returns the currently executing frame, or nil if the stack is empty.
func (cs *CallStack) Top() *CallFrame {
	if len(cs.frames) == 0 {
		return nil
	}
	return cs.frames[len(cs.frames)-1]
}

// Depth returns the number of frames currently on the stack.
func (cs *CallStack) Depth() int { return len(cs.frames) }

// LiveValues implements heap.RootSource by concatenating every frame's
// live values: GC roots are gathered from the entire call stack, not just
// the topmost frame.
func (cs *CallStack) LiveValues() []value.Value {
	var live []value.Value
	for _, f := range cs.frames {
		live = append(live, f.LiveValues()...)
	}
	return live
}

// TraceEntry is one row of a reconstructed stack trace (§4.6).
type TraceEntry struct {
	ClassName  string
	MethodName string
	SourceFile string
	Line       int
}

// StackTrace enumerates frames top-down.
func (cs *CallStack) StackTrace() []TraceEntry {
	trace := make([]TraceEntry, 0, len(cs.frames))
	for i := len(cs.frames) - 1; i >= 0; i-- {
		f := cs.frames[i]
		line := 0
		if f.Code != nil {
			line = f.Code.LineForPC(f.PC)
		}
		trace = append(trace, TraceEntry{
			ClassName:  f.Class.Name,
			MethodName: f.Method.Name,
			SourceFile: f.Class.File.SourceFile,
			Line:       line,
		})
	}
	return trace
}
