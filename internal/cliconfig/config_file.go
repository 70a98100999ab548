package cliconfig

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig is the TOML representation of [Config]. Pointer fields
// distinguish an explicit zero from an absent key.
type FileConfig struct {
	Params         string `toml:"params"`
	Output         string `toml:"output"`
	TempDir        string `toml:"temp_dir"`
	SpoolThreshold *int64 `toml:"spool_threshold"`
	ChunkSize      int    `toml:"chunk_size"`
	EscapeQuotes   *bool  `toml:"escape_quotes"`
	Verbose        *bool  `toml:"verbose"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// ApplyFileConfig applies configuration from a file to cfg. Flags present in
// changed take precedence and are left untouched.
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setString("params", fc.Params, &cfg.ParamsFile)
	s.setString("output", fc.Output, &cfg.Output)
	s.setString("temp-dir", fc.TempDir, &cfg.TempDir)
	s.setInt64("spool-threshold", fc.SpoolThreshold, &cfg.SpoolThreshold)
	s.setInt("chunk-size", fc.ChunkSize, &cfg.ChunkSize)
	s.setBool("escape-quotes", fc.EscapeQuotes, &cfg.EscapeQuotes)
	s.setBool("verbose", fc.Verbose, &cfg.Verbose)
}
