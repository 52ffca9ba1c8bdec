package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_Validates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestNew_AppliesOptions(t *testing.T) {
	cfg := New(
		WithChunkSize(1000),
		WithThresholds(0.7, 0.5),
		WithFanoutLimit(2),
	)
	assert.Equal(t, 1000, cfg.ChunkSize)
	assert.Equal(t, float32(0.7), cfg.TauExclusion)
	assert.Equal(t, float32(0.5), cfg.TauInclusion)
	assert.Equal(t, 2, cfg.FanoutLimit)
	assert.NoError(t, cfg.Validate())
}

func TestValidate_RejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		opt  Option
	}{
		{"negative chunk size", WithChunkSize(-1)},
		{"overlap at 1", WithChunkOverlap(1)},
		{"tau out of range", WithThresholds(1.5, 0.5)},
		{"zero fanout", WithFanoutLimit(0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New(tt.opt)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_YAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "chunk_size: 900\ntau_exclusion: 0.75\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 900, cfg.ChunkSize)
	assert.Equal(t, float32(0.75), cfg.TauExclusion)
	// Untouched fields keep their defaults.
	assert.Equal(t, 1536, cfg.EmbeddingDim)
}

func TestLoad_OptionsWinOverFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size: 900\n"), 0o644))

	cfg, err := Load(path, WithChunkSize(1200))
	require.NoError(t, err)
	assert.Equal(t, 1200, cfg.ChunkSize)
}
