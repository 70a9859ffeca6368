package classpath

import (
	"errors"
	"testing"
	"time"
)

// fakeFS is an in-memory ioutil.FileSystem: files and directories are
// declared explicitly rather than touched on the real disk.
type fakeFS struct {
	files map[string][]byte
	dirs  map[string]bool
}

func newFakeFS() *fakeFS {
	return &fakeFS{files: map[string][]byte{}, dirs: map[string]bool{}}
}

func (f *fakeFS) ReadFile(path string) ([]byte, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, errors.New("no such file: " + path)
	}
	return data, nil
}

func (f *fakeFS) Exists(path string) bool {
	if f.dirs[path] {
		return true
	}
	_, ok := f.files[path]
	return ok
}

func (f *fakeFS) IsDir(path string) bool { return f.dirs[path] }

func (f *fakeFS) Now() time.Time { return time.Time{} }

func TestDirEntryResolvesNestedBinaryName(t *testing.T) {
	fs := newFakeFS()
	fs.dirs["/classes"] = true
	fs.files["/classes/a/b/C.class"] = []byte{0xCA, 0xFE}

	entry, err := NewDirEntry("/classes", fs)
	if err != nil {
		t.Fatalf("NewDirEntry: %v", err)
	}
	data, ok, err := entry.Resolve("a/b/C")
	if err != nil || !ok {
		t.Fatalf("Resolve(a/b/C) = (%v, %v, %v)", data, ok, err)
	}
	if len(data) != 2 {
		t.Errorf("Resolve returned %v, want the stored bytes", data)
	}
}

func TestDirEntryMissingClassReturnsOkFalse(t *testing.T) {
	fs := newFakeFS()
	fs.dirs["/classes"] = true
	entry, _ := NewDirEntry("/classes", fs)

	_, ok, err := entry.Resolve("Missing")
	if err != nil || ok {
		t.Errorf("Resolve(Missing) = (_, %v, %v), want (_, false, nil)", ok, err)
	}
}

func TestNewDirEntryRejectsNonexistentRoot(t *testing.T) {
	fs := newFakeFS()
	if _, err := NewDirEntry("/nope", fs); err == nil {
		t.Error("NewDirEntry accepted a root that does not exist")
	}
}

func TestNewDirEntryRejectsFileRoot(t *testing.T) {
	fs := newFakeFS()
	fs.files["/not-a-dir"] = []byte("x")
	if _, err := NewDirEntry("/not-a-dir", fs); err == nil {
		t.Error("NewDirEntry accepted a root that is a plain file")
	}
}

func TestClasspathResolvesInDeclarationOrder(t *testing.T) {
	first := memEntryForTest{"Dup": []byte("first")}
	second := memEntryForTest{"Dup": []byte("second"), "Only": []byte("only")}

	cp := New(nil)
	cp.PushEntry(first)
	cp.PushEntry(second)

	data, err := cp.Resolve("Dup")
	if err != nil || string(data) != "first" {
		t.Errorf("Resolve(Dup) = (%q, %v), want (first, nil) — first entry must win", data, err)
	}

	data, err = cp.Resolve("Only")
	if err != nil || string(data) != "only" {
		t.Errorf("Resolve(Only) = (%q, %v), want (only, nil)", data, err)
	}
}

func TestClasspathResolveMissReturnsNilNil(t *testing.T) {
	cp := New(nil)
	cp.PushEntry(memEntryForTest{})
	data, err := cp.Resolve("Nowhere")
	if data != nil || err != nil {
		t.Errorf("Resolve(Nowhere) = (%v, %v), want (nil, nil)", data, err)
	}
}

func TestClasspathResolveAbortsOnEntryError(t *testing.T) {
	cp := New(nil)
	cp.PushEntry(erroringEntry{})
	cp.PushEntry(memEntryForTest{"Reached": []byte("x")})

	if _, err := cp.Resolve("Reached"); err == nil {
		t.Error("Resolve did not surface an earlier entry's read error")
	}
}

type memEntryForTest map[string][]byte

func (m memEntryForTest) String() string { return "mem" }

func (m memEntryForTest) Resolve(name string) ([]byte, bool, error) {
	data, ok := m[name]
	return data, ok, nil
}

type erroringEntry struct{}

func (erroringEntry) String() string { return "erroring" }

func (erroringEntry) Resolve(name string) ([]byte, bool, error) {
	return nil, false, errors.New("boom")
}
