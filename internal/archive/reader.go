package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
)

// ErrPDFNotFound is returned when a bill PDF cannot be located in the archive
// by any of the lookup strategies.
var ErrPDFNotFound = errors.New("pdf not found in archive")

// Reader is an in-memory handle over one uploaded ZIP archive. It is held for
// the duration of an upload session; PDF bytes are extracted on demand rather
// than pre-loaded.
type Reader struct {
	Filename string

	zr *zip.Reader
}

// NewReader decodes the uploaded archive bytes. The declared filename is kept
// because the send log is keyed by it.
func NewReader(data []byte, filename string) (*Reader, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("decode archive %s: %w", filename, err)
	}
	return &Reader{Filename: filename, zr: zr}, nil
}

// FindPDF locates a bill's bytes by trying, in order: exact entry-path match,
// exact filename match, then a scan for any entry whose base name equals the
// target filename. The scan tolerates archives where the manifest path and
// the actual on-disk path diverge in directory structure.
func (r *Reader) FindPDF(entryPath, filename string) ([]byte, error) {
	if f := r.entry(entryPath); f != nil {
		return readEntry(f)
	}
	if f := r.entry(filename); f != nil {
		return readEntry(f)
	}
	for _, f := range r.zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if path.Base(f.Name) == filename {
			return readEntry(f)
		}
	}
	return nil, ErrPDFNotFound
}

func (r *Reader) entry(name string) *zip.File {
	if name == "" {
		return nil
	}
	for _, f := range r.zr.File {
		if !f.FileInfo().IsDir() && f.Name == name {
			return f
		}
	}
	return nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open archive entry %s: %w", f.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read archive entry %s: %w", f.Name, err)
	}
	return data, nil
}
