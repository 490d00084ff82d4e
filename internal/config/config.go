// Package config holds the tracking parameters for a capture session.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Default tracking parameters.
const (
	DefaultNumFrames   = 128
	DefaultFrameSize   = 128
	DefaultMovingAvgN  = 8
	DefaultThreshold   = 10
	DefaultGaussBlur   = 3
	DefaultMinArea     = 300
	DefaultCameraID    = -1
	DefaultWarmup      = 1
	DefaultCountdown   = 3
	DefaultFramePrefix = "frame"
)

// maxFileSize bounds the size of a config file read by Load.
const maxFileSize = 1 << 20

// Config is the fixed parameter set of a session. It is read once at
// startup and never changed while a session is running.
type Config struct {
	// NumFrames is the total number of frames captured, including the seed frame.
	NumFrames int `json:"num_frames"`
	// FrameSize is the side length of the square analysis frame.
	FrameSize int `json:"frame_size"`
	// MovingAvgN is the capacity of each smoothing window.
	MovingAvgN int `json:"moving_avg_n"`
	// Threshold is the per-pixel difference above which a pixel counts as moving.
	Threshold float64 `json:"threshold"`
	// GaussBlur is the odd Gaussian kernel size.
	GaussBlur int `json:"gauss_blur"`
	// MinArea is the exclusive lower bound on candidate region area.
	MinArea float64 `json:"min_area"`

	CameraID   int  `json:"camera_id"`
	Warmup     int  `json:"warmup"`
	Countdown  int  `json:"countdown"`
	KeepFrames bool `json:"keep_frames"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		NumFrames:  DefaultNumFrames,
		FrameSize:  DefaultFrameSize,
		MovingAvgN: DefaultMovingAvgN,
		Threshold:  DefaultThreshold,
		GaussBlur:  DefaultGaussBlur,
		MinArea:    DefaultMinArea,
		CameraID:   DefaultCameraID,
		Warmup:     DefaultWarmup,
		Countdown:  DefaultCountdown,
	}
}

// Load reads a JSON config file on top of the defaults.
// Fields omitted from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := Default()

	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return cfg, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.Size() > maxFileSize {
		return cfg, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate reports every parameter that cannot drive a session.
func (c Config) Validate() error {
	var errs []error

	if c.NumFrames < 2 {
		errs = append(errs, fmt.Errorf("num_frames must be at least 2, got %d", c.NumFrames))
	}
	if c.FrameSize <= 0 {
		errs = append(errs, fmt.Errorf("frame_size must be positive, got %d", c.FrameSize))
	}
	if c.MovingAvgN < 1 {
		errs = append(errs, fmt.Errorf("moving_avg_n must be at least 1, got %d", c.MovingAvgN))
	}
	if c.Threshold < 0 || c.Threshold > 255 {
		errs = append(errs, fmt.Errorf("threshold must be within [0, 255], got %v", c.Threshold))
	}
	if c.GaussBlur <= 0 || c.GaussBlur%2 == 0 {
		errs = append(errs, fmt.Errorf("gauss_blur must be a positive odd number, got %d", c.GaussBlur))
	}
	if c.MinArea < 0 {
		errs = append(errs, fmt.Errorf("min_area must not be negative, got %v", c.MinArea))
	}
	if c.Warmup < 0 {
		errs = append(errs, fmt.Errorf("warmup must not be negative, got %d", c.Warmup))
	}

	return errors.Join(errs...)
}

// FramesProcessed is the number of frames that produce a position.
// The seed frame only primes the motion detector.
func (c Config) FramesProcessed() int {
	if c.NumFrames < 1 {
		return 0
	}
	return c.NumFrames - 1
}
