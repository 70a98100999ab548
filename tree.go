package mpform

import (
	"io"
	"path/filepath"
	"reflect"
)

// Value is a parameter value. It is one of [Scalar], [Nested] or [File].
type Value interface {
	isValue()
}

// Scalar is a leaf value written verbatim as the body of a field part.
type Scalar []byte

// Nested is a subtree whose keys are qualified by the parent key using
// bracket notation.
type Nested Tree

// File is a leaf value whose content is streamed from Source into a file
// part. The encoder reads Source to exhaustion but never closes it.
type File struct {
	Source FileSource
}

func (Scalar) isValue() {}
func (Nested) isValue() {}
func (File) isValue()   {}

// FileSource is a readable binary source. Implementations may additionally
// implement [OriginalFilenamer] or [Namer] to control the filename reported
// in the part header.
type FileSource interface {
	io.Reader
}

// OriginalFilenamer is implemented by sources that know the name the content
// was originally uploaded or created with.
type OriginalFilenamer interface {
	OriginalFilename() string
}

// Namer is implemented by sources backed by a path, such as [*os.File]. The
// last element of the path is used as the filename.
type Namer interface {
	Name() string
}

// UnknownFilename is reported for sources that expose neither an original
// filename nor a path.
const UnknownFilename = "Unknown"

// Field is a single key/value pair in a [Tree].
type Field struct {
	Key   string
	Value Value
}

// Tree is an ordered parameter tree. Fields are encoded in slice order.
type Tree []Field

// Add appends a field to the tree.
func (t *Tree) Add(key string, v Value) {
	*t = append(*t, Field{Key: key, Value: v})
}

// AddString appends a scalar field holding s.
func (t *Tree) AddString(key, s string) {
	t.Add(key, String(s))
}

// AddFile appends a file field reading from src.
func (t *Tree) AddFile(key string, src FileSource) {
	t.Add(key, File{Source: src})
}

// AddTree appends a nested subtree.
func (t *Tree) AddTree(key string, sub Tree) {
	t.Add(key, Nested(sub))
}

// String returns a scalar holding s.
func String(s string) Scalar {
	return Scalar(s)
}

// Bytes returns a scalar holding a copy of b.
func Bytes(b []byte) Scalar {
	return Scalar(append([]byte(nil), b...))
}

// NamedFile returns a file value reading from r and reporting name as its
// original filename.
func NamedFile(r io.Reader, name string) File {
	return File{Source: &namedSource{Reader: r, name: name}}
}

type namedSource struct {
	io.Reader
	name string
}

func (s *namedSource) OriginalFilename() string { return s.name }

// isNilSource reports whether src is nil or an interface holding a nil
// pointer, map, slice, func or chan.
func isNilSource(src FileSource) bool {
	if src == nil {
		return true
	}
	switch rv := reflect.ValueOf(src); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// filename resolves the filename reported for src: the original filename if
// known, else the base of its path, else [UnknownFilename].
func filename(src FileSource) string {
	if o, ok := src.(OriginalFilenamer); ok {
		if name := o.OriginalFilename(); name != "" {
			return name
		}
	}
	if n, ok := src.(Namer); ok {
		if name := n.Name(); name != "" {
			return filepath.Base(name)
		}
	}
	return UnknownFilename
}
