package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/movetrack/internal/capture"
	"github.com/ayusman/movetrack/internal/config"
	"github.com/ayusman/movetrack/internal/track"
	"github.com/ayusman/movetrack/internal/vision"
)

// ErrSessionFinalized is returned when a finished session is driven again.
var ErrSessionFinalized = errors.New("session already finalized")

// State is the lifecycle phase of a Session.
type State int

const (
	StateIdle State = iota
	StateSeeding
	StateTracking
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSeeding:
		return "seeding"
	case StateTracking:
		return "tracking"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// TrackerState is everything carried from one frame to the next.
type TrackerState struct {
	// Previous is the last analysis frame, nil until the seed frame arrives.
	Previous *vision.AnalysisFrame
	Smoother *track.Smoother
	Recorder *track.Recorder
}

// NewTrackerState creates the initial state for a session.
func NewTrackerState(cfg config.Config) *TrackerState {
	return &TrackerState{
		Smoother: track.NewSmoother(cfg.MovingAvgN),
		Recorder: track.NewRecorder(cfg.FramesProcessed(), cfg.KeepFrames),
	}
}

// replacePrevious drops the retained frame and keeps frame in its place.
func (t *TrackerState) replacePrevious(frame vision.AnalysisFrame) {
	if t.Previous != nil {
		t.Previous.Close()
	}
	t.Previous = &frame
}

// Close releases the retained frame.
func (t *TrackerState) Close() {
	if t.Previous != nil {
		t.Previous.Close()
		t.Previous = nil
	}
}

// Result is the outcome of a completed session.
type Result struct {
	// ID is set once the result has been persisted.
	ID        string
	StartedAt time.Time
	Track     []track.Position
	Points    []track.Point
	Report    track.Report
	// Frames holds the annotated frames when they were kept. The caller
	// owns them and must release them with Close.
	Frames []gocv.Mat
}

// Close releases the annotated frames held by the result.
func (r *Result) Close() {
	for i := range r.Frames {
		r.Frames[i].Close()
	}
	r.Frames = nil
}

// Session runs the tracking pipeline over a fixed number of frames.
// A Session is single use and not safe for concurrent use.
type Session struct {
	cfg      config.Config
	pre      *vision.Preprocessor
	motion   *vision.MotionDetector
	selector *vision.Selector
	tracker  *TrackerState
	state    State

	// OnPosition, when set, is called with every recorded point.
	OnPosition func(seq int, p track.Point)
	// OnFrame, when set, receives each annotated frame. The frame is only
	// valid for the duration of the call.
	OnFrame func(frame gocv.Mat)
}

// NewSession creates an idle session for the given configuration.
func NewSession(cfg config.Config) *Session {
	return &Session{
		cfg:      cfg,
		pre:      vision.NewPreprocessor(cfg.FrameSize, cfg.GaussBlur),
		motion:   vision.NewMotionDetector(cfg.Threshold),
		selector: vision.NewSelector(cfg.MinArea),
		tracker:  NewTrackerState(cfg),
		state:    StateIdle,
	}
}

// State returns the current lifecycle phase.
func (s *Session) State() State {
	return s.state
}

// Tracker returns the state carried between frames.
func (s *Session) Tracker() *TrackerState {
	return s.tracker
}

func (s *Session) setState(next State) {
	if s.state == next {
		return
	}
	log.Printf("Session %s -> %s", s.state, next)
	s.state = next
}

// Step processes one raw frame. The first frame only seeds the motion
// detector and reports false. Every later frame records and returns the
// smoothed position. The raw frame is not modified or retained.
func (s *Session) Step(raw *gocv.Mat) (track.Position, bool, error) {
	if s.state == StateFinalized {
		return track.Position{}, false, ErrSessionFinalized
	}

	frame, err := s.pre.Normalize(raw)
	if err != nil {
		return track.Position{}, false, err
	}

	if s.tracker.Previous == nil {
		s.tracker.replacePrevious(frame)
		s.setState(StateSeeding)
		return track.Position{}, false, nil
	}
	s.setState(StateTracking)

	mask, err := s.motion.Detect(frame, *s.tracker.Previous)
	if err != nil {
		frame.Close()
		return track.Position{}, false, err
	}
	defer mask.Close()
	s.tracker.replacePrevious(frame)

	w, h := frame.Size()

	var candidate *track.Position
	region, ok := s.selector.Select(mask)
	if ok {
		p := track.Normalize(region.Centroid, w, h)
		candidate = &p
	}

	pos := s.tracker.Smoother.Update(candidate)
	s.tracker.Recorder.Record(pos, ok)

	if s.tracker.Recorder.KeepsFrames() || s.OnFrame != nil {
		s.annotate(mask, pos.Pixel(w, h))
	}

	if s.OnPosition != nil {
		s.OnPosition(s.tracker.Recorder.Len()-1, track.Point{Position: pos, Detected: ok})
	}

	return pos, true, nil
}

func (s *Session) annotate(mask vision.MotionMask, at image.Point) {
	annotated, err := vision.Annotate(mask, at)
	if err != nil {
		log.Printf("Failed to annotate frame: %v", err)
		return
	}
	if s.OnFrame != nil {
		s.OnFrame(annotated)
	}
	s.tracker.Recorder.AddFrame(annotated)
}

// Run reads NumFrames frames from an open camera and processes them in
// order. A capture or frame error aborts the session. The context is
// checked between frames.
func (s *Session) Run(ctx context.Context, cam capture.Camera) (Result, error) {
	if s.state != StateIdle {
		return Result{}, fmt.Errorf("cannot run session in state %s", s.state)
	}
	defer s.close()

	started := time.Now()
	log.Printf("Capturing %d frames", s.cfg.NumFrames)

	for i := 0; i < s.cfg.NumFrames; i++ {
		if err := ctx.Err(); err != nil {
			return Result{}, fmt.Errorf("session stopped at frame %d: %w", i, err)
		}

		raw, err := cam.ReadFrame()
		if err != nil {
			return Result{}, fmt.Errorf("failed to capture frame %d: %w", i, err)
		}

		_, _, err = s.Step(raw)
		raw.Close()
		if err != nil {
			return Result{}, fmt.Errorf("failed to process frame %d: %w", i, err)
		}
	}

	report := s.tracker.Recorder.Finalize(time.Since(started))
	s.setState(StateFinalized)
	log.Printf("Session finished: %d positions at %.2f fps", report.FrameCount, report.FPS)

	result := Result{
		StartedAt: started,
		Track:     s.tracker.Recorder.Track(),
		Points:    s.tracker.Recorder.Points(),
		Report:    report,
	}
	if s.tracker.Recorder.KeepsFrames() {
		result.Frames = s.tracker.Recorder.Frames()
	}

	return result, nil
}

// close releases detector resources. Kept frames survive in the result
// on success and are released on failure.
func (s *Session) close() {
	s.tracker.Close()
	s.motion.Close()
	if s.state != StateFinalized {
		s.tracker.Recorder.Close()
	}
}
