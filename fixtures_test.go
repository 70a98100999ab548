package mpform_test

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"
	"time"

	"github.com/tomasbasham/mpform"
)

const testBoundary = "0123456789abcdef0123"

type Person struct {
	Name     string   `form:"name"`
	Age      int      `form:"age,omitempty"`
	Pronouns []string `form:"pronouns"`
}

type ComplexPerson struct {
	ID        int      `form:"id"`
	Name      string   `form:"name"`
	Age       int      `form:"age,omitempty"`
	Pronouns  []string `form:"pronouns,omitempty"`
	CreatedAt MyDate   `form:"created_at"`
	Private   string   `form:"-"`
	Optional  *string  `form:"optional,omitempty"`
}

type IgnoredFieldsForm struct {
	Public  string `form:"public"`
	Private string `form:"-"`
	Ignored string `form:",ignore"`
	NoTag   string
	Empty   string `form:""`
	Omitted string `form:",omitempty"`
	Complex MyDate `form:"complex,omitempty"`
	hidden  string
}

type User struct {
	Name    string  `form:"name"`
	Age     int     `form:"age,omitempty"`
	Address Address `form:"address"`
}

type Address struct {
	Street string `form:"street"`
	City   string `form:"city"`
	State  string `form:"state"`
	Zip    string `form:"zip"`
}

type Profile struct {
	Name   string    `form:"name"`
	Avatar io.Reader `form:"avatar,omitempty"`
}

type MyDate time.Time

func (d MyDate) MarshalForm() (string, error) {
	return time.Time(d).Format("2006.01.02"), nil
}

// upload is a file source exposing an original filename and a path, either
// of which may be empty.
type upload struct {
	*strings.Reader
	original string
	path     string
}

func (u *upload) OriginalFilename() string { return u.original }
func (u *upload) Name() string             { return u.path }

// pathOnly is a file source exposing only a path.
type pathOnly struct {
	*strings.Reader
	path string
}

func (p *pathOnly) Name() string { return p.path }

// failingReader returns data once, then err.
type failingReader struct {
	data []byte
	err  error
	done bool
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.done {
		return 0, r.err
	}
	r.done = true
	return copy(p, r.data), nil
}

// countingReader records the size of every read request.
type countingReader struct {
	r     io.Reader
	sizes []int
}

func (c *countingReader) Read(p []byte) (int, error) {
	c.sizes = append(c.sizes, len(p))
	return c.r.Read(p)
}

// stalledReader never returns data or an error.
type stalledReader struct {
	reads int
}

func (r *stalledReader) Read([]byte) (int, error) {
	r.reads++
	return 0, nil
}

// sparseReader interleaves empty reads between the bytes of data.
type sparseReader struct {
	data  []byte
	empty int
}

func (r *sparseReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	if r.empty < 50 {
		r.empty++
		return 0, nil
	}
	r.empty = 0
	p[0] = r.data[0]
	r.data = r.data[1:]
	return 1, nil
}

var errBoom = errors.New("boom")

// parsedPart is a decoded part used to compare encoder output with what the
// standard library multipart reader sees.
type parsedPart struct {
	Name     string
	Filename string
	Type     string
	Body     string
}

func parseBody(t *testing.T, contentType string, body io.Reader) []parsedPart {
	t.Helper()

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}
	if mediaType != "multipart/form-data" {
		t.Fatalf("unexpected media type %q", mediaType)
	}

	var parts []parsedPart
	r := multipart.NewReader(body, params["boundary"])
	for {
		p, err := r.NextRawPart()
		if err == io.EOF {
			return parts
		}
		if err != nil {
			t.Fatalf("next part: %v", err)
		}
		b, err := io.ReadAll(p)
		if err != nil {
			t.Fatalf("read part: %v", err)
		}
		parts = append(parts, parsedPart{
			Name:     p.FormName(),
			Filename: p.FileName(),
			Type:     p.Header.Get("Content-Type"),
			Body:     string(b),
		})
	}
}

func newEncoder(t *testing.T, opts ...mpform.Option) *mpform.MultipartEncoder {
	t.Helper()

	enc, err := mpform.NewMultipartEncoder(append([]mpform.Option{mpform.WithBoundary(testBoundary)}, opts...)...)
	if err != nil {
		t.Fatalf("new encoder: %v", err)
	}
	return enc
}

func encodeString(t *testing.T, tree mpform.Tree, opts ...mpform.Option) string {
	t.Helper()

	out, err := newEncoder(t, opts...).Encode(tree)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	defer out.Close()

	b, err := io.ReadAll(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	return string(b)
}

// field renders the expected bytes of a field part using testBoundary.
func field(name, value string) string {
	return "--" + testBoundary + "\r\n" +
		`Content-Disposition: form-data; name="` + name + `"` + "\r\n" +
		"\r\n" +
		value + "\r\n"
}

// file renders the expected bytes of a file part using testBoundary.
func file(name, filename, content string) string {
	return "--" + testBoundary + "\r\n" +
		`Content-Disposition: form-data; name="` + name + `"; filename="` + filename + `"` + "\r\n" +
		"Content-Type: application/octet-stream\r\n" +
		"Content-Transfer-Encoding: binary\r\n" +
		"\r\n" +
		content + "\r\n"
}

const closing = "--" + testBoundary + "--\r\n"
