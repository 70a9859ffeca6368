package vm

// JString is the runtime representation of a `ldc` string constant and of
// string-valued native results. Full java/lang/String modeling (a char
// array instance with its own installed class) is out of scope; strings
// are instead carried as a Go string behind an opaque object handle, which
// is sufficient for the println/string-concat/natives the interpreter
// exposes.
type JString struct {
	S string
}

// JavaString implements native.Describer, letting println et al. render a
// JString without pkg/native depending on this package.
func (s *JString) JavaString() string { return s.S }

// ClassRef is the runtime representation of a `ldc` class constant
// (`Foo.class`): the only reflection surface this interpreter supports
// (§1 non-goals).
type ClassRef struct {
	Class *Class
}
