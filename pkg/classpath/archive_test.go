package classpath

import (
	"archive/zip"
	"bytes"
	"testing"
)

func buildTestJar(t *testing.T, entries map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range entries {
		f, err := w.Create(name)
		if err != nil {
			t.Fatalf("zip.Create(%s): %v", name, err)
		}
		if _, err := f.Write([]byte(content)); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("closing zip writer: %v", err)
	}
	return buf.Bytes()
}

func TestArchiveEntryResolvesStoredClass(t *testing.T) {
	jar := buildTestJar(t, map[string]string{"a/b/C.class": "bytecode"})
	fs := newFakeFS()
	fs.files["/lib.jar"] = jar

	entry, err := NewArchiveEntry("/lib.jar", fs)
	if err != nil {
		t.Fatalf("NewArchiveEntry: %v", err)
	}
	data, ok, err := entry.Resolve("a/b/C")
	if err != nil || !ok || string(data) != "bytecode" {
		t.Fatalf("Resolve(a/b/C) = (%q, %v, %v)", data, ok, err)
	}
}

func TestArchiveEntryMemoizesSecondRead(t *testing.T) {
	jar := buildTestJar(t, map[string]string{"X.class": "body"})
	fs := newFakeFS()
	fs.files["/lib.jar"] = jar
	entry, _ := NewArchiveEntry("/lib.jar", fs)

	first, _, _ := entry.Resolve("X")
	second, _, _ := entry.Resolve("X")
	if string(first) != string(second) {
		t.Errorf("two reads of the same entry disagreed: %q vs %q", first, second)
	}
}

func TestArchiveEntryMissReturnsOkFalse(t *testing.T) {
	jar := buildTestJar(t, map[string]string{"X.class": "body"})
	fs := newFakeFS()
	fs.files["/lib.jar"] = jar
	entry, _ := NewArchiveEntry("/lib.jar", fs)

	_, ok, err := entry.Resolve("Missing")
	if err != nil || ok {
		t.Errorf("Resolve(Missing) = (_, %v, %v), want (_, false, nil)", ok, err)
	}
}

func TestNewArchiveEntryRejectsNonZipData(t *testing.T) {
	fs := newFakeFS()
	fs.files["/bad.jar"] = []byte("not a zip file")
	if _, err := NewArchiveEntry("/bad.jar", fs); err == nil {
		t.Error("NewArchiveEntry accepted non-zip data")
	}
}

func TestPushPrefersArchiveThenDirectory(t *testing.T) {
	jar := buildTestJar(t, map[string]string{"FromJar.class": "jar-body"})
	fs := newFakeFS()
	fs.files["/lib.jar"] = jar
	fs.dirs["/classes"] = true
	fs.files["/classes/FromDir.class"] = []byte("dir-body")

	cp := New(fs)
	if err := cp.Push("/lib.jar:/classes"); err != nil {
		t.Fatalf("Push: %v", err)
	}

	data, err := cp.Resolve("FromJar")
	if err != nil || string(data) != "jar-body" {
		t.Errorf("Resolve(FromJar) = (%q, %v)", data, err)
	}
	data, err = cp.Resolve("FromDir")
	if err != nil || string(data) != "dir-body" {
		t.Errorf("Resolve(FromDir) = (%q, %v)", data, err)
	}
}
