package server

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// StreamInterval is how often the stream checks for a new frame.
const StreamInterval = 66 * time.Millisecond // ~15 FPS

// FrameStream serves the most recent annotated frame as MJPEG.
type FrameStream struct {
	mu   sync.RWMutex
	jpeg []byte
	seq  uint64
}

// NewFrameStream creates a stream with no frame yet.
func NewFrameStream() *FrameStream {
	return &FrameStream{}
}

// Update encodes frame as JPEG and makes it the current frame.
// The frame is not retained.
func (s *FrameStream) Update(frame gocv.Mat) {
	buf, err := gocv.IMEncode(gocv.JPEGFileExt, frame)
	if err != nil {
		log.Printf("Failed to encode stream frame: %v", err)
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	s.mu.Lock()
	s.jpeg = data
	s.seq++
	s.mu.Unlock()
}

// Latest returns the current JPEG and its sequence number.
// The sequence is 0 until the first frame arrives.
func (s *FrameStream) Latest() ([]byte, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.jpeg, s.seq
}

// ServeHTTP streams MJPEG frames to connected clients.
func (s *FrameStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	var sent uint64
	for {
		select {
		case <-r.Context().Done():
			return
		default:
		}

		data, seq := s.Latest()
		if seq == sent {
			time.Sleep(StreamInterval)
			continue
		}
		sent = seq

		// Write MJPEG frame
		fmt.Fprintf(w, "--frame\r\n")
		fmt.Fprintf(w, "Content-Type: image/jpeg\r\n")
		fmt.Fprintf(w, "Content-Length: %d\r\n\r\n", len(data))
		w.Write(data)
		fmt.Fprintf(w, "\r\n")

		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}

		time.Sleep(StreamInterval)
	}
}
