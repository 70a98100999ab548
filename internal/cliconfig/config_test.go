package cliconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasbasham/mpform"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "params file only",
			cfg:  Config{ParamsFile: "p.toml", ChunkSize: 1},
		},
		{
			name: "fields only",
			cfg:  Config{Fields: []string{"a=b"}, ChunkSize: 1},
		},
		{
			name:    "nothing to encode",
			cfg:     Config{ChunkSize: 1},
			wantErr: true,
		},
		{
			name:    "zero chunk size",
			cfg:     Config{ParamsFile: "p.toml"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "-", tt.cfg.Output)
			assert.True(t, tt.cfg.ToStdout())
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, int64(mpform.DefaultSpoolThreshold), cfg.SpoolThreshold)
	assert.Equal(t, mpform.DefaultChunkSize, cfg.ChunkSize)
	assert.True(t, cfg.ToStdout())
}

func TestLoadAndApplyFileConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
params = "params.toml"
output = "body.bin"
temp_dir = "/var/tmp"
spool_threshold = 0
chunk_size = 512
escape_quotes = true
`), 0o600))

	fc, err := LoadFileConfig(path)
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Output = "explicit.bin"
	ApplyFileConfig(&cfg, fc, map[string]bool{"output": true})

	assert.Equal(t, "params.toml", cfg.ParamsFile)
	assert.Equal(t, "explicit.bin", cfg.Output, "flag must win over file")
	assert.Equal(t, "/var/tmp", cfg.TempDir)
	assert.Equal(t, int64(0), cfg.SpoolThreshold, "explicit zero must be applied")
	assert.Equal(t, 512, cfg.ChunkSize)
	assert.True(t, cfg.EscapeQuotes)
	assert.False(t, cfg.Verbose)
}

func TestLoadFileConfig_Errors(t *testing.T) {
	_, err := LoadFileConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size = [oops"), 0o600))
	_, err = LoadFileConfig(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"MPFORM_TEMP_DIR":        "/scratch",
		"MPFORM_BOUNDARY":        "fixed",
		"MPFORM_SPOOL_THRESHOLD": "-1",
		"MPFORM_CHUNK_SIZE":      "4096",
	}

	cfg := DefaultConfig()
	cfg.ChunkSize = 16
	err := applyEnv(&cfg, map[string]bool{"chunk-size": true}, func(k string) string { return env[k] })
	require.NoError(t, err)

	assert.Equal(t, "/scratch", cfg.TempDir)
	assert.Equal(t, "fixed", cfg.Boundary)
	assert.Equal(t, int64(-1), cfg.SpoolThreshold)
	assert.Equal(t, 16, cfg.ChunkSize)
}

func TestApplyEnv_InvalidNumbers(t *testing.T) {
	for _, key := range []string{"MPFORM_SPOOL_THRESHOLD", "MPFORM_CHUNK_SIZE"} {
		t.Run(key, func(t *testing.T) {
			cfg := DefaultConfig()
			err := applyEnv(&cfg, map[string]bool{}, func(k string) string {
				if k == key {
					return "many"
				}
				return ""
			})
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestConfig_EncoderOptions(t *testing.T) {
	cfg := Config{
		Boundary:       "cliboundary",
		SpoolThreshold: -1,
		ChunkSize:      3,
		EscapeQuotes:   true,
	}

	enc, err := mpform.NewMultipartEncoder(cfg.EncoderOptions(zerolog.Nop())...)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data; boundary=cliboundary", enc.MimeType())

	out, err := enc.Encode(mpform.Tree{{Key: `q"`, Value: mpform.String("v")}})
	require.NoError(t, err)
	defer out.Close()
	assert.False(t, out.Spooled())
	assert.Contains(t, string(out.Bytes()), `name="q\""`)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer

	quiet := Logger(&buf, false)
	quiet.Debug().Msg("hidden")
	assert.Empty(t, buf.String())

	verbose := Logger(&buf, true)
	verbose.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
