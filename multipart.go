package mpform

import (
	"errors"
	"fmt"
	"io"
)

const crlf = "\r\n"

var (
	// ErrEmptyKey is returned when a tree contains a field with an empty key.
	ErrEmptyKey = errors.New("mpform: empty key")

	// ErrInvalidValue is returned when a tree contains a nil value or a file
	// without a source.
	ErrInvalidValue = errors.New("mpform: invalid value")
)

// MultipartEncoder writes a [Tree] as a multipart/form-data body. Each
// encoder owns one boundary and one sink and may encode a single tree. It is
// not safe for concurrent use.
type MultipartEncoder struct {
	cfg      config
	boundary string
	sink     *spooledSink
	chunk    []byte
	used     bool
}

// NewMultipartEncoder returns an encoder with a fresh boundary and an empty
// sink. It fails with an [*InitializationError] if the boundary cannot be
// generated, an option is invalid, or the sink cannot be opened.
func NewMultipartEncoder(opts ...Option) (*MultipartEncoder, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.chunkSize <= 0 {
		return nil, &InitializationError{Op: "chunk size", Err: fmt.Errorf("must be positive, got %d", cfg.chunkSize)}
	}

	boundary := cfg.boundary
	if boundary == "" {
		var err error
		if boundary, err = randomBoundary(cfg.random); err != nil {
			return nil, &InitializationError{Op: "generate boundary", Err: err}
		}
	}
	if err := validateBoundary(boundary); err != nil {
		return nil, &InitializationError{Op: "boundary " + boundary, Err: err}
	}

	sink, err := newSpooledSink(cfg.spoolThreshold, cfg.tempDir)
	if err != nil {
		return nil, &InitializationError{Op: "open sink", Err: err}
	}

	return &MultipartEncoder{
		cfg:      cfg,
		boundary: boundary,
		sink:     sink,
	}, nil
}

// Boundary returns the boundary delimiting the parts of the body.
func (e *MultipartEncoder) Boundary() string {
	return e.boundary
}

// MimeType returns the Content-Type header value for the body.
func (e *MultipartEncoder) MimeType() string {
	return "multipart/form-data; boundary=" + e.boundary
}

// Encode writes every leaf of tree as one part, in tree order, followed by
// the closing delimiter, and returns the finished body. File sources are read
// to exhaustion but not closed.
//
// Encode may be called once; later calls return [ErrAlreadyEncoded]. On
// failure the partially written body is discarded and the encoder cannot be
// reused.
func (e *MultipartEncoder) Encode(tree Tree) (*EncodedOutput, error) {
	if e.used {
		return nil, ErrAlreadyEncoded
	}
	e.used = true

	if err := e.encodeTree(nil, tree); err != nil {
		e.sink.discard()
		return nil, err
	}
	if err := e.writeString("--" + e.boundary + "--" + crlf); err != nil {
		e.sink.discard()
		return nil, err
	}

	spooled := e.sink.spooled()
	out, err := e.sink.finalize(e.MimeType())
	if err != nil {
		return nil, &SinkWriteError{Err: err}
	}

	e.cfg.logger.Debug().
		Str("boundary", e.boundary).
		Int64("size", out.Len()).
		Bool("spooled", spooled).
		Msg("multipart body encoded")
	return out, nil
}

// Close releases the sink of an encoder that was never used to encode. Once
// Encode has returned, the sink belongs to the output and Close does nothing.
func (e *MultipartEncoder) Close() error {
	if e.used {
		return nil
	}
	e.used = true
	return e.sink.discard()
}

func (e *MultipartEncoder) encodeTree(path []string, tree Tree) error {
	for _, f := range tree {
		if f.Key == "" {
			if len(path) == 0 {
				return ErrEmptyKey
			}
			return fmt.Errorf("%w under %q", ErrEmptyKey, renderPath(path))
		}

		p := appendPath(path, f.Key)
		switch v := f.Value.(type) {
		case Nested:
			if err := e.encodeTree(p, Tree(v)); err != nil {
				return err
			}
		case Scalar:
			if err := e.writeField(renderPath(p), v); err != nil {
				return err
			}
		case File:
			if isNilSource(v.Source) {
				return fmt.Errorf("%w: file %q has no source", ErrInvalidValue, renderPath(p))
			}
			if err := e.writeFile(renderPath(p), v.Source); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: %q has no value", ErrInvalidValue, renderPath(p))
		}
	}
	return nil
}

func (e *MultipartEncoder) writeField(key string, value Scalar) error {
	if err := e.writeString("--" + e.boundary + crlf +
		`Content-Disposition: form-data; name="` + e.quote(key) + `"` + crlf +
		crlf); err != nil {
		return err
	}
	if err := e.write(value); err != nil {
		return err
	}
	if err := e.writeString(crlf); err != nil {
		return err
	}

	e.cfg.logger.Debug().
		Str("key", key).
		Int("size", len(value)).
		Msg("wrote field part")
	return nil
}

func (e *MultipartEncoder) writeFile(key string, src FileSource) error {
	name := filename(src)
	if err := e.writeString("--" + e.boundary + crlf +
		`Content-Disposition: form-data; name="` + e.quote(key) + `"; filename="` + e.quote(name) + `"` + crlf +
		"Content-Type: application/octet-stream" + crlf +
		"Content-Transfer-Encoding: binary" + crlf +
		crlf); err != nil {
		return err
	}

	n, err := e.copyChunks(key, src)
	if err != nil {
		return err
	}
	if err := e.writeString(crlf); err != nil {
		return err
	}

	e.cfg.logger.Debug().
		Str("key", key).
		Str("filename", name).
		Int64("size", n).
		Msg("wrote file part")
	return nil
}

// maxConsecutiveEmptyReads bounds how many (0, nil) reads a source may return
// in a row before it is treated as stuck.
const maxConsecutiveEmptyReads = 100

// copyChunks streams src into the sink one chunk at a time until src reports
// io.EOF. A source that returns no data and no error maxConsecutiveEmptyReads
// times in a row fails with io.ErrNoProgress.
func (e *MultipartEncoder) copyChunks(key string, src FileSource) (int64, error) {
	if e.chunk == nil {
		e.chunk = make([]byte, e.cfg.chunkSize)
	}

	var total int64
	empty := 0
	for {
		n, err := src.Read(e.chunk)
		if n == 0 && err == nil {
			if empty++; empty >= maxConsecutiveEmptyReads {
				return total, &SourceReadError{Key: key, Err: io.ErrNoProgress}
			}
			continue
		}
		empty = 0
		if n > 0 {
			if werr := e.write(e.chunk[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, &SourceReadError{Key: key, Err: err}
		}
	}
}

func (e *MultipartEncoder) quote(s string) string {
	if e.cfg.escapeQuotes {
		return escapeQuotes(s)
	}
	return s
}

func (e *MultipartEncoder) write(p []byte) error {
	if _, err := e.sink.Write(p); err != nil {
		return &SinkWriteError{Err: err}
	}
	return nil
}

func (e *MultipartEncoder) writeString(s string) error {
	if _, err := e.sink.WriteString(s); err != nil {
		return &SinkWriteError{Err: err}
	}
	return nil
}
