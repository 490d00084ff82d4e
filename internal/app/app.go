// Package app wires the camera, the tracking session and persistence together.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"
	"gocv.io/x/gocv"

	"github.com/ayusman/movetrack/internal/capture"
	"github.com/ayusman/movetrack/internal/config"
	"github.com/ayusman/movetrack/internal/hook"
	"github.com/ayusman/movetrack/internal/store"
	"github.com/ayusman/movetrack/internal/track"
)

// ErrAlreadyRunning is returned when a session is started while another is active.
var ErrAlreadyRunning = errors.New("a session is already running")

// Config holds configuration options for the application.
type Config struct {
	Tracking config.Config
	// Store persists finished sessions when set.
	Store *store.Store
	// Camera overrides the device camera, mainly for tests.
	Camera capture.Camera
	// Hook is notified after every finished session when set.
	Hook *hook.Runner

	OnPosition func(seq int, p track.Point)
	OnFrame    func(frame gocv.Mat)
}

// App runs tracking sessions against a camera.
type App struct {
	config  Config
	camera  capture.Camera
	mu      sync.Mutex
	running bool
}

// New creates a new App instance with the given configuration.
func New(cfg Config) *App {
	cam := cfg.Camera
	if cam == nil {
		cam = capture.NewCamera(cfg.Tracking.CameraID)
	}

	return &App{
		config: cfg,
		camera: cam,
	}
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// IsRunning reports whether a session is in progress.
func (a *App) IsRunning() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

func (a *App) begin() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		return ErrAlreadyRunning
	}
	a.running = true
	return nil
}

func (a *App) end() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.running = false
}

// Run opens the camera, discards the warm-up frames and runs one session.
// When a store is configured the result is saved and its ID set. The caller
// owns the returned result and must Close it, also when only the save failed.
func (a *App) Run(ctx context.Context) (Result, error) {
	if err := a.begin(); err != nil {
		return Result{}, err
	}
	defer a.end()

	if err := a.camera.Open(); err != nil {
		return Result{}, err
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}()

	if err := capture.Warmup(a.camera, a.config.Tracking.Warmup); err != nil {
		return Result{}, err
	}

	session := NewSession(a.config.Tracking)
	session.OnPosition = a.config.OnPosition
	session.OnFrame = a.config.OnFrame

	result, err := session.Run(ctx, a.camera)
	if err != nil {
		return Result{}, err
	}

	if a.config.Store != nil {
		if err := a.Save(&result); err != nil {
			return result, fmt.Errorf("failed to save session: %w", err)
		}
		log.Printf("Saved session %s", result.ID)
	}

	if a.config.Hook != nil {
		a.notify(ctx, result)
	}

	return result, nil
}

// notify runs the session hook. Hook failures are logged and never fail
// the session.
func (a *App) notify(ctx context.Context, result Result) {
	_, err := a.config.Hook.Run(ctx, &hook.Request{
		Event:     hook.EventSessionFinished,
		SessionID: result.ID,
		StartedAt: result.StartedAt,
		Report:    result.Report,
		Track:     result.Track,
	})
	if err != nil {
		log.Printf("Session hook %s failed: %v", a.config.Hook.Executable(), err)
	}
}

// Save persists a finished result and assigns its ID.
func (a *App) Save(result *Result) error {
	if a.config.Store == nil {
		return errors.New("no store configured")
	}

	cfg, err := json.Marshal(a.config.Tracking)
	if err != nil {
		return err
	}

	sess := &store.Session{
		ID:             uuid.New().String(),
		StartedAt:      result.StartedAt,
		FrameCount:     result.Report.FrameCount,
		ElapsedSeconds: result.Report.ElapsedSeconds,
		FPS:            result.Report.FPS,
		Config:         cfg,
	}
	if err := a.config.Store.Sessions().Create(sess); err != nil {
		return err
	}

	points := make([]store.TrackPoint, len(result.Points))
	for i, p := range result.Points {
		points[i] = store.TrackPoint{Seq: i, X: p.X, Y: p.Y, Detected: p.Detected}
	}
	if err := a.config.Store.Points().Create(sess.ID, points); err != nil {
		// Do not leave a session without its track behind
		if delErr := a.config.Store.Sessions().Delete(sess.ID); delErr != nil {
			log.Printf("Failed to remove incomplete session %s: %v", sess.ID, delErr)
		}
		return err
	}

	result.ID = sess.ID
	return nil
}

// Snapshot opens the camera, discards the warm-up frames and writes one
// raw frame to path.
func (a *App) Snapshot(path string) error {
	if err := a.begin(); err != nil {
		return err
	}
	defer a.end()

	if err := a.camera.Open(); err != nil {
		return err
	}
	defer a.camera.Close()

	if err := capture.Warmup(a.camera, a.config.Tracking.Warmup); err != nil {
		return err
	}

	frame, err := a.camera.ReadFrame()
	if err != nil {
		return err
	}
	defer frame.Close()

	if ok := gocv.IMWrite(path, *frame); !ok {
		return fmt.Errorf("failed to write snapshot %s", path)
	}
	return nil
}
