package cliconfig

import (
	"fmt"
	"os"
	"strconv"
)

// ApplyEnvConfig applies MPFORM_* environment variables to cfg. They override
// file configuration but not explicitly set flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	return applyEnv(cfg, changed, os.Getenv)
}

func applyEnv(cfg *Config, changed map[string]bool, getenv func(string) string) error {
	s := newConfigSetter(changed)

	s.setString("temp-dir", getenv("MPFORM_TEMP_DIR"), &cfg.TempDir)
	s.setString("boundary", getenv("MPFORM_BOUNDARY"), &cfg.Boundary)

	if v := getenv("MPFORM_SPOOL_THRESHOLD"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse MPFORM_SPOOL_THRESHOLD: %w", err)
		}
		s.setInt64("spool-threshold", &n, &cfg.SpoolThreshold)
	}
	if v := getenv("MPFORM_CHUNK_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse MPFORM_CHUNK_SIZE: %w", err)
		}
		s.setInt("chunk-size", n, &cfg.ChunkSize)
	}
	return nil
}
