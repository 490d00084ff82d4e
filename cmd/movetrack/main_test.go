package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/movetrack/internal/config"
	"github.com/ayusman/movetrack/internal/store"
)

func TestCountdown(t *testing.T) {
	var buf bytes.Buffer
	if err := countdown(context.Background(), &buf, 3, time.Millisecond); err != nil {
		t.Fatalf("countdown() error = %v", err)
	}

	want := "capture starting in\n3...\n2...\n1...\n\n"
	if buf.String() != want {
		t.Errorf("countdown output = %q, want %q", buf.String(), want)
	}
}

func TestCountdown_Disabled(t *testing.T) {
	var buf bytes.Buffer
	if err := countdown(context.Background(), &buf, 0, time.Hour); err != nil {
		t.Fatalf("countdown() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestCountdown_Interrupted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var buf bytes.Buffer
	err := countdown(ctx, &buf, 3, time.Hour)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("countdown() error = %v, want context.Canceled", err)
	}
}

func TestResolveDBPath(t *testing.T) {
	dir := t.TempDir()
	want := filepath.Join(dir, "nested", "sessions.db")

	got, err := resolveDBPath(want)
	if err != nil {
		t.Fatalf("resolveDBPath() error = %v", err)
	}
	if got != want {
		t.Errorf("resolveDBPath() = %q, want %q", got, want)
	}
}

func TestApplyFlags_NoneSet(t *testing.T) {
	base := config.Default()
	base.NumFrames = 32

	flags := config.Default()
	flags.NumFrames = 64

	// Nothing was set on the command line, so the file wins
	got := applyFlags(base, flags)
	if got.NumFrames != 32 {
		t.Errorf("NumFrames = %d, want 32", got.NumFrames)
	}
}

func TestRun_ReturnsConfigErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"gauss_blur": 4}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	invalid := config.Default()
	invalid.MovingAvgN = 0

	tests := []struct {
		name string
		cfg  config.Config
		opts options
		want string
	}{
		{name: "missing config file", cfg: config.Default(), opts: options{configPath: filepath.Join(dir, "missing.json")}, want: "failed to load config"},
		{name: "invalid config file", cfg: config.Default(), opts: options{configPath: bad}, want: "failed to load config"},
		{name: "invalid flags", cfg: invalid, opts: options{noStore: true}, want: "invalid config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := run(context.Background(), &buf, tt.cfg, tt.opts)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("run() error = %v, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestRun_InterruptedBeforeCaptureReleasesStore(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dbPath := filepath.Join(t.TempDir(), "data", "movetrack.db")
	cfg := config.Default()
	cfg.Countdown = 3

	var buf bytes.Buffer
	if err := run(ctx, &buf, cfg, options{dbPath: dbPath}); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if strings.Contains(buf.String(), "capturing") {
		t.Errorf("capture should not start, output %q", buf.String())
	}

	// The store was closed on return and can be opened again
	st, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("reopen store: %v", err)
	}
	st.Close()
}
