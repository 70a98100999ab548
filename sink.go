package mpform

import (
	"bytes"
	"errors"
	"io"
	"os"
)

var errSinkFinalized = errors.New("sink already finalized")

// spooledSink accumulates a body in memory until it grows past threshold,
// then moves it to a temporary file. It is written once and then finalized
// into a read-only [EncodedOutput].
type spooledSink struct {
	threshold int64
	dir       string

	buf  bytes.Buffer
	file *os.File
	size int64
	done bool
}

func newSpooledSink(threshold int64, dir string) (*spooledSink, error) {
	s := &spooledSink{threshold: threshold, dir: dir}
	if threshold == 0 {
		if err := s.spill(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *spooledSink) Write(p []byte) (int, error) {
	if s.done {
		return 0, errSinkFinalized
	}
	if s.file == nil && s.threshold >= 0 && int64(s.buf.Len()+len(p)) > s.threshold {
		if err := s.spill(); err != nil {
			return 0, err
		}
	}

	var n int
	var err error
	if s.file != nil {
		n, err = s.file.Write(p)
	} else {
		n, err = s.buf.Write(p)
	}
	s.size += int64(n)
	return n, err
}

func (s *spooledSink) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

func (s *spooledSink) spill() error {
	f, err := os.CreateTemp(s.dir, "mpform-*")
	if err != nil {
		return err
	}
	if _, err := s.buf.WriteTo(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return err
	}
	s.file = f
	return nil
}

func (s *spooledSink) spooled() bool {
	return s.file != nil
}

// finalize ends the write phase and returns a read view over everything
// written, positioned at the start.
func (s *spooledSink) finalize(contentType string) (*EncodedOutput, error) {
	if s.done {
		return nil, errSinkFinalized
	}
	s.done = true

	out := &EncodedOutput{contentType: contentType, size: s.size}
	if s.file == nil {
		out.data = s.buf.Bytes()
		out.r = io.NewSectionReader(bytes.NewReader(out.data), 0, s.size)
		return out, nil
	}

	if err := s.file.Sync(); err != nil {
		s.discard()
		return nil, err
	}
	out.file = s.file
	out.r = io.NewSectionReader(s.file, 0, s.size)
	s.file = nil
	return out, nil
}

// discard drops everything written and removes the spool file, if any.
func (s *spooledSink) discard() error {
	s.done = true
	s.buf.Reset()
	if s.file == nil {
		return nil
	}
	name := s.file.Name()
	err := s.file.Close()
	s.file = nil
	if rerr := os.Remove(name); err == nil {
		err = rerr
	}
	return err
}
