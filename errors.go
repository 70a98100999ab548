package mpform

import (
	"errors"
	"fmt"
)

// ErrAlreadyEncoded is returned when Encode is called more than once on the
// same [MultipartEncoder].
var ErrAlreadyEncoded = errors.New("mpform: encoder already used")

// InitializationError describes a failure to set up an encoder, either while
// generating the boundary or while validating the supplied options.
type InitializationError struct {
	Op  string
	Err error
}

func (e *InitializationError) Error() string {
	return "mpform: " + e.Op + ": " + e.Err.Error()
}

func (e *InitializationError) Unwrap() error { return e.Err }

// SourceReadError describes a failure reading a file source. Parts written
// before the failure remain in the sink.
type SourceReadError struct {
	Key string
	Err error
}

func (e *SourceReadError) Error() string {
	return fmt.Sprintf("mpform: reading file for %q: %v", e.Key, e.Err)
}

func (e *SourceReadError) Unwrap() error { return e.Err }

// SinkWriteError describes a failure writing to, or finalising, the output
// sink.
type SinkWriteError struct {
	Err error
}

func (e *SinkWriteError) Error() string {
	return "mpform: writing body: " + e.Err.Error()
}

func (e *SinkWriteError) Unwrap() error { return e.Err }
