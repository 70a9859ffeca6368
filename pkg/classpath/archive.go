package classpath

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"

	"github.com/jcbreger/rjvm/internal/ioutil"
)

// ArchiveEntry is a PKZIP-backed classpath root (a .jar, or any zip
// archive laid out with binary-name paths). The whole archive is read and
// indexed at construction; store (method 0) and deflate (method 8) are the
// only supported compression methods — anything else fails construction,
// since there is no other compressor registered with archive/zip.
type ArchiveEntry struct {
	path   string
	byPath map[string]*zip.File
	memo   map[string][]byte
}

// NewArchiveEntry opens path as a zip archive (read through fs) and
// indexes its entries by path. It fails if path is not a valid zip file,
// or if any entry uses an unsupported compression method.
func NewArchiveEntry(path string, fs ioutil.FileSystem) (*ArchiveEntry, error) {
	data, err := fs.ReadFile(path)
	if err != nil {
		return nil, err
	}
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	byPath := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		switch f.Method {
		case zip.Store, zip.Deflate:
			byPath[f.Name] = f
		default:
			return nil, fmt.Errorf("unsupported compression method %d for %s", f.Method, f.Name)
		}
	}

	return &ArchiveEntry{path: path, byPath: byPath, memo: make(map[string][]byte)}, nil
}

func (e *ArchiveEntry) String() string { return "archive:" + e.path }

// Resolve implements Entry. The first read of a deflated entry is
// inflated and memoized as raw bytes; subsequent reads are served from
// the memo.
func (e *ArchiveEntry) Resolve(name string) ([]byte, bool, error) {
	path := name + ".class"
	if cached, ok := e.memo[path]; ok {
		return cached, true, nil
	}
	f, ok := e.byPath[path]
	if !ok {
		return nil, false, nil
	}
	rc, err := f.Open()
	if err != nil {
		return nil, false, fmt.Errorf("opening %s in %s: %w", path, e.path, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, false, fmt.Errorf("reading %s in %s: %w", path, e.path, err)
	}
	e.memo[path] = data
	return data, true, nil
}
