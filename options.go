package mpform

import (
	"crypto/rand"
	"io"

	"github.com/rs/zerolog"
)

const (
	// DefaultChunkSize is the number of bytes requested from a file source
	// per read.
	DefaultChunkSize = 8124

	// DefaultSpoolThreshold is the body size above which the sink spills to a
	// temporary file.
	DefaultSpoolThreshold = 1 << 20
)

type config struct {
	boundary       string
	random         io.Reader
	chunkSize      int
	spoolThreshold int64
	tempDir        string
	escapeQuotes   bool
	logger         zerolog.Logger
}

func defaultConfig() config {
	return config{
		random:         rand.Reader,
		chunkSize:      DefaultChunkSize,
		spoolThreshold: DefaultSpoolThreshold,
		logger:         zerolog.Nop(),
	}
}

// Option configures a [MultipartEncoder].
type Option func(*config)

// WithBoundary uses b instead of a randomly generated boundary. It is
// intended for tests and reproducible output; b must be a valid boundary.
func WithBoundary(b string) Option {
	return func(c *config) { c.boundary = b }
}

// WithRandom sets the source of randomness used to generate the boundary.
// Defaults to [crypto/rand.Reader].
func WithRandom(r io.Reader) Option {
	return func(c *config) { c.random = r }
}

// WithChunkSize sets the size of each read from a file source.
func WithChunkSize(n int) Option {
	return func(c *config) { c.chunkSize = n }
}

// WithSpoolThreshold sets the number of body bytes kept in memory before the
// sink spills to a temporary file. Zero spools to disk from the start, a
// negative value keeps the whole body in memory.
func WithSpoolThreshold(n int64) Option {
	return func(c *config) { c.spoolThreshold = n }
}

// WithTempDir sets the directory for spool files. Defaults to [os.TempDir].
func WithTempDir(dir string) Option {
	return func(c *config) { c.tempDir = dir }
}

// WithQuoteEscaping escapes backslashes and double quotes in field names and
// filenames. Off by default, in which case names are written verbatim.
func WithQuoteEscaping(v bool) Option {
	return func(c *config) { c.escapeQuotes = v }
}

// WithLogger attaches a logger that receives a debug event for every part
// written and for the finished body.
func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}
