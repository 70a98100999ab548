// Package cliconfig holds the configuration of the mpform command and the
// precedence rules between flags, environment variables and config files.
package cliconfig

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomasbasham/mpform"
)

// Config holds CLI configuration for mpform.
type Config struct {
	ParamsFile     string
	Fields         []string
	Output         string
	Boundary       string
	TempDir        string
	SpoolThreshold int64
	ChunkSize      int
	EscapeQuotes   bool
	Force          bool
	Verbose        bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Output:         "-",
		SpoolThreshold: mpform.DefaultSpoolThreshold,
		ChunkSize:      mpform.DefaultChunkSize,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ParamsFile == "" && len(c.Fields) == 0 {
		return fmt.Errorf("nothing to encode: pass --params or at least one --field")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive")
	}
	if c.Output == "" {
		c.Output = "-"
	}
	return nil
}

// ToStdout reports whether the body is written to standard output.
func (c *Config) ToStdout() bool {
	return c.Output == "-"
}

// EncoderOptions translates the configuration into encoder options.
func (c *Config) EncoderOptions(log zerolog.Logger) []mpform.Option {
	opts := []mpform.Option{
		mpform.WithChunkSize(c.ChunkSize),
		mpform.WithSpoolThreshold(c.SpoolThreshold),
		mpform.WithQuoteEscaping(c.EscapeQuotes),
		mpform.WithLogger(log),
	}
	if c.Boundary != "" {
		opts = append(opts, mpform.WithBoundary(c.Boundary))
	}
	if c.TempDir != "" {
		opts = append(opts, mpform.WithTempDir(c.TempDir))
	}
	return opts
}

// DefaultConfigPath returns ~/.mpform/config.toml, or "" if the home
// directory cannot be determined.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".mpform", "config.toml")
	}
	return ""
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Logger returns a console logger writing to w at info level, or debug level
// when verbose is set.
func Logger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// configSetter applies configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

func (s *configSetter) setInt64(flag string, value *int64, dst *int64) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}
