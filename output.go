package mpform

import (
	"io"
	"os"
)

// EncodedOutput is a finished multipart body together with its content type.
// It is positioned at the start of the body. The caller owns it and must call
// Close to release any temporary file backing it.
type EncodedOutput struct {
	r           *io.SectionReader
	contentType string
	size        int64
	data        []byte
	file        *os.File
}

// ContentType returns the value for the Content-Type header that must
// accompany the body.
func (o *EncodedOutput) ContentType() string { return o.contentType }

// Len returns the total size of the body in bytes.
func (o *EncodedOutput) Len() int64 { return o.size }

// Spooled reports whether the body is stored in a temporary file.
func (o *EncodedOutput) Spooled() bool { return o.file != nil }

// Bytes returns the body when it is held in memory. For spooled bodies it
// returns nil; read them through the [io.Reader] interface instead.
func (o *EncodedOutput) Bytes() []byte { return o.data }

func (o *EncodedOutput) Read(p []byte) (int, error) { return o.r.Read(p) }

func (o *EncodedOutput) ReadAt(p []byte, off int64) (int, error) { return o.r.ReadAt(p, off) }

func (o *EncodedOutput) Seek(offset int64, whence int) (int64, error) {
	return o.r.Seek(offset, whence)
}

// WriteTo writes the unread remainder of the body to w.
func (o *EncodedOutput) WriteTo(w io.Writer) (int64, error) {
	return io.Copy(w, o.r)
}

// Close releases the storage backing the body. Reading after Close is not
// supported.
func (o *EncodedOutput) Close() error {
	o.data = nil
	if o.file == nil {
		return nil
	}
	name := o.file.Name()
	err := o.file.Close()
	o.file = nil
	if rerr := os.Remove(name); err == nil {
		err = rerr
	}
	return err
}
