// Package api provides HTTP API handlers for stored tracking sessions.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/ayusman/movetrack/internal/report"
	"github.com/ayusman/movetrack/internal/store"
	"github.com/ayusman/movetrack/internal/track"
)

// SessionHandler handles HTTP requests for session resources.
type SessionHandler struct {
	store *store.Store
}

// NewSessionHandler creates a new SessionHandler with the given store.
func NewSessionHandler(s *store.Store) *SessionHandler {
	return &SessionHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/sessions, /api/sessions/{id} or /api/sessions/{id}/plot
	path := strings.TrimPrefix(r.URL.Path, "/api/sessions")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	id, sub, _ := strings.Cut(path, "/")
	switch sub {
	case "":
	case "plot":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.plot(w, r, id)
		return
	default:
		http.NotFound(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Response types

type sessionResponse struct {
	ID             string             `json:"id"`
	StartedAt      string             `json:"started_at"`
	FrameCount     int                `json:"frame_count"`
	ElapsedSeconds float64            `json:"elapsed_seconds"`
	FPS            float64            `json:"fps"`
	Config         json.RawMessage    `json:"config"`
	Summary        *report.Summary    `json:"summary,omitempty"`
	Points         []store.TrackPoint `json:"points,omitempty"`
}

type listSessionsResponse struct {
	Sessions []sessionResponse `json:"sessions"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Session to a sessionResponse.
func toResponse(s *store.Session) sessionResponse {
	return sessionResponse{
		ID:             s.ID,
		StartedAt:      s.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		FrameCount:     s.FrameCount,
		ElapsedSeconds: s.ElapsedSeconds,
		FPS:            s.FPS,
		Config:         s.Config,
	}
}

// positions extracts the coordinates of stored points.
func positions(points []store.TrackPoint) []track.Position {
	out := make([]track.Position, len(points))
	for i, p := range points {
		out[i] = track.Position{X: p.X, Y: p.Y}
	}
	return out
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/sessions and returns all sessions without their tracks.
func (h *SessionHandler) list(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.store.Sessions().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list sessions")
		return
	}

	response := listSessionsResponse{
		Sessions: make([]sessionResponse, 0, len(sessions)),
	}

	for _, s := range sessions {
		response.Sessions = append(response.Sessions, toResponse(s))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/sessions/{id} and returns a session with its track.
func (h *SessionHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	session, err := h.store.Sessions().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	points, err := h.store.Points().GetBySessionID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get track")
		return
	}

	response := toResponse(session)
	summary := report.Summarize(positions(points))
	response.Summary = &summary
	response.Points = points

	writeJSON(w, http.StatusOK, response)
}

// plot handles GET /api/sessions/{id}/plot and renders the track as PNG.
func (h *SessionHandler) plot(w http.ResponseWriter, r *http.Request, id string) {
	if _, err := h.store.Sessions().GetByID(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get session")
		return
	}

	points, err := h.store.Points().GetBySessionID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get track")
		return
	}
	if len(points) == 0 {
		writeError(w, http.StatusNotFound, "Session has no track")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := report.RenderPNG(w, positions(points)); err != nil {
		log.Printf("Failed to render plot for session %s: %v", id, err)
	}
}

// delete handles DELETE /api/sessions/{id} and removes a session.
func (h *SessionHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	err := h.store.Sessions().Delete(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
