package mpform

import (
	"fmt"
	"io"
)

// Encoder writes multipart/form-data bodies to an [io.Writer].
type Encoder struct {
	w    io.Writer
	opts []Option
}

// NewEncoder creates a new [Encoder] that writes to w. The options are
// applied to the [MultipartEncoder] created for every call to Encode.
func NewEncoder(w io.Writer, opts ...Option) *Encoder {
	return &Encoder{w: w, opts: opts}
}

// Encode encodes v and writes the body to the underlying [io.Writer]. v is
// either a [Tree] or a value accepted by [Marshal]. It returns the content
// type of the body written.
func (e *Encoder) Encode(v interface{}) (string, error) {
	tree, err := toTree(v)
	if err != nil {
		return "", err
	}

	enc, err := NewMultipartEncoder(e.opts...)
	if err != nil {
		return "", err
	}
	out, err := enc.Encode(tree)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := out.WriteTo(e.w); err != nil {
		return "", fmt.Errorf("mpform: failed to write body: %w", err)
	}
	return out.ContentType(), nil
}

// EncodeToBytes is a convenience function that returns the multipart encoding
// of v, held in memory, and its content type.
func EncodeToBytes(v interface{}, opts ...Option) ([]byte, string, error) {
	tree, err := toTree(v)
	if err != nil {
		return nil, "", err
	}

	enc, err := NewMultipartEncoder(append(opts[:len(opts):len(opts)], WithSpoolThreshold(-1))...)
	if err != nil {
		return nil, "", err
	}
	out, err := enc.Encode(tree)
	if err != nil {
		return nil, "", err
	}
	return out.Bytes(), out.ContentType(), nil
}

func toTree(v interface{}) (Tree, error) {
	switch t := v.(type) {
	case Tree:
		return t, nil
	case *Tree:
		if t == nil {
			return Tree{}, nil
		}
		return *t, nil
	default:
		return Marshal(v)
	}
}
