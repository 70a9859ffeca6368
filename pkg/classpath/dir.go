package classpath

import (
	"fmt"
	"path/filepath"

	"github.com/jcbreger/rjvm/internal/ioutil"
)

// DirEntry is a directory classpath root. The root must exist and be a
// directory at construction time; lookups are relative to it.
type DirEntry struct {
	root string
	fs   ioutil.FileSystem
}

// NewDirEntry validates that root exists and is a directory, reading
// through fs.
func NewDirEntry(root string, fs ioutil.FileSystem) (*DirEntry, error) {
	if !fs.Exists(root) {
		return nil, fmt.Errorf("%s does not exist", root)
	}
	if !fs.IsDir(root) {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	return &DirEntry{root: root, fs: fs}, nil
}

func (e *DirEntry) String() string { return "dir:" + e.root }

// Resolve implements Entry. Path separators inside name are literal '/',
// so a class name like "a/b/C" forms "root/a/b/C.class" regardless of the
// host OS's path separator convention.
func (e *DirEntry) Resolve(name string) ([]byte, bool, error) {
	path := filepath.Join(e.root, filepath.FromSlash(name+".class"))
	if !e.fs.Exists(path) {
		return nil, false, nil
	}
	data, err := e.fs.ReadFile(path)
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}
