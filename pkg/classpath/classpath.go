// Package classpath implements the classpath abstraction: an ordered list
// of lookup roots (directories and archives) that resolve a binary class
// name to the bytes of its .class file.
package classpath

import (
	"fmt"
	"strings"

	"github.com/jcbreger/rjvm/internal/ioutil"
)

// Entry is a single classpath root.
type Entry interface {
	fmt.Stringer

	// Resolve returns the bytes of name+".class" if this entry has it.
	// ok is false (with a nil error) when the entry simply doesn't carry
	// the class; a non-nil error means the lookup itself failed (a read
	// error), which aborts the whole classpath search per spec §4.2.
	Resolve(name string) (data []byte, ok bool, err error)
}

// Classpath is an ordered sequence of Entries, searched in declaration
// order; the first entry with a match wins.
type Classpath struct {
	entries []Entry
	fs      ioutil.FileSystem
}

// New constructs an empty Classpath. fs is the filesystem facade used to
// read archives and directory entries; pass nil to use the real OS
// filesystem.
func New(fs ioutil.FileSystem) *Classpath {
	if fs == nil {
		fs = ioutil.OS{}
	}
	return &Classpath{fs: fs}
}

// Push parses a colon-separated list of roots and appends them. Each root
// is tried first as an archive, then as a directory.
func (cp *Classpath) Push(spec string) error {
	for _, root := range strings.Split(spec, ":") {
		if root == "" {
			continue
		}
		entry, err := newEntry(root, cp.fs)
		if err != nil {
			return fmt.Errorf("classpath entry %q: %w", root, err)
		}
		cp.entries = append(cp.entries, entry)
	}
	return nil
}

// PushEntry appends an already-constructed entry directly, bypassing
// string parsing — useful for tests and for the bootstrap classpath.
func (cp *Classpath) PushEntry(entry Entry) {
	cp.entries = append(cp.entries, entry)
}

func newEntry(root string, fs ioutil.FileSystem) (Entry, error) {
	if archive, err := NewArchiveEntry(root, fs); err == nil {
		return archive, nil
	}
	return NewDirEntry(root, fs)
}

// Resolve searches entries in order and returns the first match. An I/O
// error on any entry aborts the search and is surfaced to the caller.
func (cp *Classpath) Resolve(name string) ([]byte, error) {
	for _, entry := range cp.entries {
		data, ok, err := entry.Resolve(name)
		if err != nil {
			return nil, fmt.Errorf("resolving %s in %s: %w", name, entry, err)
		}
		if ok {
			return data, nil
		}
	}
	return nil, nil
}
