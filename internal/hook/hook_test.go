package hook

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/movetrack/internal/track"
)

// writeScript creates an executable shell script in a temporary directory.
func writeScript(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "hook.sh")
	if err := os.WriteFile(path, []byte(content), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}
	return path
}

func testRequest() *Request {
	return &Request{
		Event:     EventSessionFinished,
		SessionID: "session-1",
		StartedAt: time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
		Report:    track.Report{FrameCount: 2, ElapsedSeconds: 0.2, FPS: 10},
		Track:     []track.Position{{X: 0.5, Y: 0.5}, {X: 0.56, Y: 0.44}},
	}
}

func TestRunner_Run(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	script := writeScript(t, `#!/bin/sh
cat <<'END'
{"success":true,"data":{"message":"hello world"}}
END
`)

	response, err := NewRunner(script, 5*time.Second).Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	if !response.Success {
		t.Errorf("expected success=true, got false")
	}

	var data map[string]interface{}
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	if data["message"] != "hello world" {
		t.Errorf("expected message 'hello world', got %v", data["message"])
	}
}

func TestRunner_Run_ReadsStdin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	// Echo the request back as response data
	script := writeScript(t, `#!/bin/sh
input=$(cat)
printf '{"success":true,"data":%s}' "$input"
`)

	response, err := NewRunner(script, 5*time.Second).Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	var echoed Request
	if err := json.Unmarshal(response.Data, &echoed); err != nil {
		t.Fatalf("failed to unmarshal echoed request: %v", err)
	}

	if echoed.Event != EventSessionFinished {
		t.Errorf("event = %q, want %q", echoed.Event, EventSessionFinished)
	}
	if echoed.SessionID != "session-1" {
		t.Errorf("session_id = %q, want session-1", echoed.SessionID)
	}
	if len(echoed.Track) != 2 || echoed.Track[1].X != 0.56 {
		t.Errorf("unexpected track %+v", echoed.Track)
	}
	if echoed.Report.FPS != 10 {
		t.Errorf("fps = %v, want 10", echoed.Report.FPS)
	}
}

func TestRunner_Run_ReportedFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	script := writeScript(t, `#!/bin/sh
echo '{"success":false,"error":"robot offline"}'
`)

	response, err := NewRunner(script, 5*time.Second).Run(context.Background(), testRequest())
	if !errors.Is(err, ErrHookFailed) {
		t.Fatalf("expected ErrHookFailed, got %v", err)
	}
	if response == nil || response.Error != "robot offline" {
		t.Errorf("expected response with error message, got %+v", response)
	}
}

func TestRunner_Run_NonZeroExit(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	script := writeScript(t, `#!/bin/sh
echo "something broke" >&2
exit 3
`)

	_, err := NewRunner(script, 5*time.Second).Run(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if !strings.Contains(err.Error(), "something broke") {
		t.Errorf("expected stderr in error, got %v", err)
	}
}

func TestRunner_Run_InvalidJSON(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	script := writeScript(t, `#!/bin/sh
echo "not json"
`)

	_, err := NewRunner(script, 5*time.Second).Run(context.Background(), testRequest())
	if err == nil || !strings.Contains(err.Error(), "failed to parse hook response") {
		t.Errorf("expected parse error, got %v", err)
	}
}

func TestRunner_Run_Timeout(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	script := writeScript(t, `#!/bin/sh
exec sleep 5
`)

	start := time.Now()
	_, err := NewRunner(script, 100*time.Millisecond).Run(context.Background(), testRequest())
	if err == nil || !strings.Contains(err.Error(), "timeout") {
		t.Errorf("expected timeout error, got %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("timeout was not enforced")
	}
}

func TestRunner_Run_RelativePath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("skipping test on Windows")
	}

	root := t.TempDir()
	dir := filepath.Join(root, "hooks", "echo")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create hook dir: %v", err)
	}
	script := `#!/bin/sh
cat > /dev/null
printf '{"success":true,"data":{"cwd":"%s"}}' "$(pwd -P)"
`
	if err := os.WriteFile(filepath.Join(dir, "run.sh"), []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	t.Chdir(root)

	runner := NewRunner(filepath.Join("hooks", "echo", "run.sh"), 5*time.Second)
	if !filepath.IsAbs(runner.Executable()) {
		t.Errorf("Executable() = %q, want an absolute path", runner.Executable())
	}

	response, err := runner.Run(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}

	var data map[string]string
	if err := json.Unmarshal(response.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}
	wantDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatalf("failed to resolve hook dir: %v", err)
	}
	if data["cwd"] != wantDir {
		t.Errorf("hook ran in %q, want %q", data["cwd"], wantDir)
	}
}

func TestRunner_Run_MissingExecutable(t *testing.T) {
	_, err := NewRunner(filepath.Join(t.TempDir(), "missing"), time.Second).Run(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error for missing executable")
	}
}

func TestNewRunner_DefaultTimeout(t *testing.T) {
	r := NewRunner("/bin/true", 0)
	if r.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", r.timeout, DefaultTimeout)
	}
	if r.Executable() != "/bin/true" {
		t.Errorf("Executable() = %q", r.Executable())
	}
}
