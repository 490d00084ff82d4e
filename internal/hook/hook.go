// Package hook runs an external program after each finished session.
//
// The program receives a JSON Request on stdin and must answer with a JSON
// Response on stdout.
package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ayusman/movetrack/internal/track"
)

// DefaultTimeout bounds a hook run when no timeout is given.
const DefaultTimeout = 5 * time.Second

// EventSessionFinished is the event name sent after a session completes.
const EventSessionFinished = "session.finished"

// ErrHookFailed is returned when the program ran but reported failure.
var ErrHookFailed = errors.New("hook reported failure")

// Request is the payload written to the hook's stdin.
type Request struct {
	Event     string           `json:"event"`
	SessionID string           `json:"session_id,omitempty"`
	StartedAt time.Time        `json:"started_at"`
	Report    track.Report     `json:"report"`
	Track     []track.Position `json:"track"`
}

// Response is what the hook writes to stdout.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Runner executes a hook program with a timeout.
type Runner struct {
	executable string
	timeout    time.Duration
}

// NewRunner creates a Runner for the given executable. A path with a
// directory component is made absolute, since the hook runs from its own
// directory. A bare name is looked up in PATH when run.
func NewRunner(executable string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if strings.ContainsRune(executable, filepath.Separator) && !filepath.IsAbs(executable) {
		if abs, err := filepath.Abs(executable); err == nil {
			executable = abs
		}
	}
	return &Runner{
		executable: executable,
		timeout:    timeout,
	}
}

// Executable returns the program path.
func (r *Runner) Executable() string {
	return r.executable
}

// Run sends req to the hook and returns its response. A response with
// Success set to false is returned together with ErrHookFailed.
func (r *Runner) Run(ctx context.Context, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.executable)
	if filepath.IsAbs(r.executable) {
		cmd.Dir = filepath.Dir(r.executable)
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("hook execution timeout after %s", r.timeout)
	}

	if err != nil {
		if stderrStr := stderr.String(); stderrStr != "" {
			return nil, fmt.Errorf("hook execution failed: %w, stderr: %s", err, stderrStr)
		}
		return nil, fmt.Errorf("hook execution failed: %w", err)
	}

	var response Response
	if err := json.Unmarshal(stdout.Bytes(), &response); err != nil {
		return nil, fmt.Errorf("failed to parse hook response: %w, stdout: %s", err, stdout.String())
	}

	if !response.Success {
		return &response, fmt.Errorf("%w: %s", ErrHookFailed, response.Error)
	}

	return &response, nil
}
