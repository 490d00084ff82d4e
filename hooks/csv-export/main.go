// Package main provides an example session hook that exports each finished
// track as a CSV file.
//
// The export directory is taken from MOVETRACK_EXPORT_DIR and defaults to
// the working directory.
package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Request represents the input from the hook runner.
type Request struct {
	Event     string     `json:"event"`
	SessionID string     `json:"session_id"`
	StartedAt time.Time  `json:"started_at"`
	Track     []position `json:"track"`
}

type position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Response represents the output to the hook runner.
type Response struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		writeErrorResponse(fmt.Sprintf("failed to decode request: %v", err))
		return
	}

	dir := os.Getenv("MOVETRACK_EXPORT_DIR")
	if dir == "" {
		dir = "."
	}

	path, err := export(dir, &req)
	if err != nil {
		writeErrorResponse(fmt.Sprintf("export failed: %v", err))
		return
	}

	data, _ := json.Marshal(map[string]string{"path": path})
	writeResponse(Response{Success: true, Data: data})
}

// export writes the track to <dir>/<name>.csv and returns the path.
func export(dir string, req *Request) (string, error) {
	name := req.SessionID
	if name == "" {
		name = req.StartedAt.Format("20060102-150405")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := writeCSV(f, req.Track); err != nil {
		return "", err
	}
	return path, f.Close()
}

func writeCSV(w io.Writer, track []position) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"seq", "x", "y"}); err != nil {
		return err
	}
	for i, p := range track {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(p.X, 'f', 4, 64),
			strconv.FormatFloat(p.Y, 'f', 4, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeErrorResponse writes an error response to stdout.
func writeErrorResponse(errMsg string) {
	writeResponse(Response{
		Success: false,
		Error:   errMsg,
	})
}

func writeResponse(resp Response) {
	json.NewEncoder(os.Stdout).Encode(resp)
}
