package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ayusman/movetrack/internal/store"
)

func TestAPI_SessionWorkflow(t *testing.T) {
	// Setup
	tmpDir := t.TempDir()
	s, err := store.New(filepath.Join(tmpDir, "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

	id := "3f1c9a2e-5b7d-4e8f-9a0b-1c2d3e4f5a6b"
	if err := s.Sessions().Create(&store.Session{
		ID:             id,
		StartedAt:      time.Now(),
		FrameCount:     2,
		ElapsedSeconds: 0.2,
		FPS:            10,
	}); err != nil {
		t.Fatalf("Sessions().Create() error = %v", err)
	}
	if err := s.Points().Create(id, []store.TrackPoint{{X: 0.5, Y: 0.5}, {X: 0.52, Y: 0.49, Detected: true}}); err != nil {
		t.Fatalf("Points().Create() error = %v", err)
	}

	srv := New(Config{Store: s})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	client := ts.Client()

	// 1. List sessions
	resp, err := client.Get(ts.URL + "/api/sessions")
	if err != nil {
		t.Fatalf("GET /api/sessions error = %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/sessions status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var listed struct {
		Sessions []struct {
			ID string `json:"id"`
		} `json:"sessions"`
	}
	json.NewDecoder(resp.Body).Decode(&listed)
	resp.Body.Close()

	if len(listed.Sessions) != 1 || listed.Sessions[0].ID != id {
		t.Fatalf("listed sessions = %+v, want [%s]", listed.Sessions, id)
	}

	// 2. Get single session with its track
	resp, _ = client.Get(ts.URL + "/api/sessions/" + id)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /api/sessions/%s status = %d, want %d", id, resp.StatusCode, http.StatusOK)
	}
	var got struct {
		Points []store.TrackPoint `json:"points"`
	}
	json.NewDecoder(resp.Body).Decode(&got)
	resp.Body.Close()

	if len(got.Points) != 2 {
		t.Fatalf("len(points) = %d, want 2", len(got.Points))
	}

	// 3. Plot
	resp, _ = client.Get(ts.URL + "/api/sessions/" + id + "/plot")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET plot status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("plot Content-Type = %s, want image/png", ct)
	}
	resp.Body.Close()

	// 4. Delete session
	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/"+id, nil)
	resp, _ = client.Do(req)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want %d", resp.StatusCode, http.StatusNoContent)
	}
	resp.Body.Close()

	// 5. Verify deleted
	resp, _ = client.Get(ts.URL + "/api/sessions/" + id)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("GET after delete status = %d, want %d", resp.StatusCode, http.StatusNotFound)
	}
	resp.Body.Close()
}

func TestAPI_HealthCheck(t *testing.T) {
	srv := New(Config{Hub: NewPositionHub()})
	ts := httptest.NewServer(srv)
	defer ts.Close()

	resp, err := ts.Client().Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var health struct {
		Status  string `json:"status"`
		Uptime  string `json:"uptime"`
		Clients *int   `json:"clients"`
	}
	json.NewDecoder(resp.Body).Decode(&health)

	if health.Status != "ok" {
		t.Errorf("status = %s, want ok", health.Status)
	}
	if health.Clients == nil || *health.Clients != 0 {
		t.Errorf("clients = %v, want 0", health.Clients)
	}
}

func TestAPI_SessionsWithoutStore(t *testing.T) {
	srv := New(Config{})

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d without a store, got %d", http.StatusNotFound, rec.Code)
	}
}
