// Package archive reads GeoNetwork batch export archives.
//
// An export is a zip file with one directory per record, laid out as
// <uuid>/metadata/metadata.xml alongside optional thumbnails and info files.
package archive

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
)

// DefaultRecordName is the base name GeoNetwork gives every record file.
const DefaultRecordName = "metadata.xml"

// Reader is an open export archive.
type Reader struct {
	path string
	zr   *zip.ReadCloser
}

// Open opens the archive at p.
func Open(p string) (*Reader, error) {
	zr, err := zip.OpenReader(p)
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", p, err)
	}
	return &Reader{path: p, zr: zr}, nil
}

// Path returns the filesystem path the archive was opened from.
func (r *Reader) Path() string {
	return r.path
}

// Close releases the archive.
func (r *Reader) Close() error {
	return r.zr.Close()
}

// Records returns every file entry whose base name equals name, in archive
// order.
func (r *Reader) Records(name string) []Entry {
	var out []Entry
	for _, f := range r.zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		if path.Base(f.Name) != name {
			continue
		}
		out = append(out, Entry{Name: f.Name, f: f})
	}
	return out
}

// Entry is one record file inside the archive.
type Entry struct {
	// Name is the archive-relative path of the entry.
	Name string

	f *zip.File
}

// Identifier returns the archive key of the record: the path segment one
// level above the record's parent directory. For "abc-123/metadata/metadata.xml"
// that is "abc-123".
func (e Entry) Identifier() string {
	return dirname(dirname(e.Name))
}

// Read returns the entry's uncompressed contents.
func (e Entry) Read() ([]byte, error) {
	rc, err := e.f.Open()
	if err != nil {
		return nil, fmt.Errorf("opening entry %s: %w", e.Name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("reading entry %s: %w", e.Name, err)
	}
	return data, nil
}

// dirname strips the last path element. Unlike path.Dir it returns "" rather
// than "." when there is no directory part, so a record at the archive root
// has an empty identifier.
func dirname(p string) string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ""
	}
	return p[:i]
}
