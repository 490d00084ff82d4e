package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 128, cfg.NumFrames)
	assert.Equal(t, 128, cfg.FrameSize)
	assert.Equal(t, 8, cfg.MovingAvgN)
	assert.Equal(t, 10.0, cfg.Threshold)
	assert.Equal(t, 3, cfg.GaussBlur)
	assert.Equal(t, 300.0, cfg.MinArea)
	assert.Equal(t, 127, cfg.FramesProcessed())
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "single frame", mutate: func(c *Config) { c.NumFrames = 1 }},
		{name: "zero frame size", mutate: func(c *Config) { c.FrameSize = 0 }},
		{name: "empty window", mutate: func(c *Config) { c.MovingAvgN = 0 }},
		{name: "threshold above 255", mutate: func(c *Config) { c.Threshold = 300 }},
		{name: "even blur kernel", mutate: func(c *Config) { c.GaussBlur = 4 }},
		{name: "negative min area", mutate: func(c *Config) { c.MinArea = -1 }},
		{name: "negative warmup", mutate: func(c *Config) { c.Warmup = -2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(dir, "partial.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"num_frames": 16, "min_area": 120}`), 0644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 16, cfg.NumFrames)
		assert.Equal(t, 120.0, cfg.MinArea)
		assert.Equal(t, DefaultMovingAvgN, cfg.MovingAvgN)
		assert.Equal(t, DefaultGaussBlur, cfg.GaussBlur)
	})

	t.Run("rejects non json extension", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "config.yaml"))
		assert.Error(t, err)
	})

	t.Run("rejects missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.json"))
		assert.Error(t, err)
	})

	t.Run("rejects invalid values", func(t *testing.T) {
		path := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"gauss_blur": 2}`), 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"num_frames":`), 0644))

		_, err := Load(path)
		assert.Error(t, err)
	})
}
