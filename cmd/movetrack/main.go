package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/movetrack/internal/app"
	"github.com/ayusman/movetrack/internal/config"
	"github.com/ayusman/movetrack/internal/hook"
	"github.com/ayusman/movetrack/internal/report"
	"github.com/ayusman/movetrack/internal/server"
	"github.com/ayusman/movetrack/internal/store"
	"github.com/ayusman/movetrack/internal/vision"
)

type options struct {
	configPath string
	framesDir  string
	plotPath   string
	dbPath     string
	noStore    bool
	serveAddr  string
	webDir     string
	snapshot   string
	hookPath   string
	hookWait   time.Duration
	version    bool
}

func main() {
	cfg := config.Default()
	var opts options

	flag.StringVar(&opts.configPath, "config", "", "JSON config file, applied before flags")
	flag.IntVar(&cfg.NumFrames, "frames", cfg.NumFrames, "number of frames to capture, including the seed frame")
	flag.IntVar(&cfg.FrameSize, "size", cfg.FrameSize, "side length of the analysis frame")
	flag.IntVar(&cfg.MovingAvgN, "window", cfg.MovingAvgN, "moving average window size")
	flag.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "pixel difference threshold")
	flag.IntVar(&cfg.GaussBlur, "blur", cfg.GaussBlur, "odd Gaussian blur kernel size")
	flag.Float64Var(&cfg.MinArea, "min-area", cfg.MinArea, "minimum region area in pixels (exclusive)")
	flag.IntVar(&cfg.CameraID, "camera", cfg.CameraID, "camera device ID, -1 for the first available")
	flag.IntVar(&cfg.Warmup, "warmup", cfg.Warmup, "frames to discard before capturing")
	flag.IntVar(&cfg.Countdown, "countdown", cfg.Countdown, "seconds to count down before capturing")
	flag.StringVar(&opts.framesDir, "frames-dir", "", "write annotated frames to this directory")
	flag.StringVar(&opts.plotPath, "plot", "", "write a trajectory plot to this file")
	flag.StringVar(&opts.dbPath, "db", "", "session database (default ~/.movetrack/movetrack.db)")
	flag.BoolVar(&opts.noStore, "no-store", false, "do not save the session")
	flag.StringVar(&opts.serveAddr, "serve", "", "serve the API on this address, e.g. :8080")
	flag.StringVar(&opts.webDir, "web", "", "static files to serve with -serve")
	flag.StringVar(&opts.snapshot, "snapshot", "", "capture a single frame to this file and exit")
	flag.StringVar(&opts.hookPath, "hook", "", "program to run with the session JSON after each session")
	flag.DurationVar(&opts.hookWait, "hook-timeout", hook.DefaultTimeout, "maximum run time of the hook")
	flag.BoolVar(&opts.version, "version", false, "print version information and exit")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Stdout, cfg, opts); err != nil {
		stop()
		log.Fatal(err)
	}
}

// run executes one invocation. Resources are released before it returns.
func run(ctx context.Context, w io.Writer, cfg config.Config, opts options) error {
	if opts.version {
		fmt.Fprintf(w, "movetrack (gocv %s, OpenCV %s)\n", gocv.Version(), gocv.OpenCVVersion())
		return nil
	}

	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = applyFlags(loaded, cfg)
	}
	if opts.framesDir != "" {
		cfg.KeepFrames = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if opts.snapshot != "" {
		if err := app.New(app.Config{Tracking: cfg}).Snapshot(opts.snapshot); err != nil {
			return fmt.Errorf("snapshot failed: %w", err)
		}
		fmt.Fprintf(w, "Saved %s\n", opts.snapshot)
		return nil
	}

	var st *store.Store
	if !opts.noStore {
		dbPath, err := resolveDBPath(opts.dbPath)
		if err != nil {
			return fmt.Errorf("failed to prepare data directory: %w", err)
		}
		st, err = store.New(dbPath)
		if err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}
		defer st.Close()
	}

	appCfg := app.Config{Tracking: cfg, Store: st}
	if opts.hookPath != "" {
		appCfg.Hook = hook.NewRunner(opts.hookPath, opts.hookWait)
	}

	var serveErr chan error
	if opts.serveAddr != "" {
		hub := server.NewPositionHub()
		defer hub.Close()
		stream := server.NewFrameStream()
		appCfg.OnPosition = hub.Publish
		appCfg.OnFrame = stream.Update

		srv := server.New(server.Config{
			StaticDir: opts.webDir,
			Store:     st,
			Hub:       hub,
			Stream:    stream,
		})

		serveErr = make(chan error, 1)
		go func() {
			fmt.Fprintf(w, "Starting server on %s\n", opts.serveAddr)
			serveErr <- srv.ListenAndServe(opts.serveAddr)
		}()
	}

	if err := countdown(ctx, w, cfg.Countdown, time.Second); err != nil {
		log.Println("Interrupted before capture")
		return nil
	}
	fmt.Fprintln(w, "capturing...")

	result, err := app.New(appCfg).Run(ctx)
	defer result.Close()
	if err != nil {
		if len(result.Track) == 0 {
			return fmt.Errorf("session failed: %w", err)
		}
		log.Printf("Warning: %v", err)
	}

	if err := report.Print(w, result.Track, result.Report); err != nil {
		log.Printf("Failed to print report: %v", err)
	}
	fmt.Fprintln(w, report.Summarize(result.Track))
	if result.ID != "" {
		fmt.Fprintf(w, "session: %s\n", result.ID)
	}

	if opts.framesDir != "" {
		if err := vision.WriteFrames(opts.framesDir, config.DefaultFramePrefix, result.Frames); err != nil {
			log.Printf("Failed to write frames: %v", err)
		} else {
			fmt.Fprintf(w, "Wrote %d frames to %s\n", len(result.Frames), opts.framesDir)
		}
	}

	if opts.plotPath != "" {
		if err := report.WritePlot(opts.plotPath, result.Track); err != nil {
			log.Printf("Failed to write plot: %v", err)
		}
	}

	if serveErr != nil {
		select {
		case err := <-serveErr:
			return fmt.Errorf("server failed: %w", err)
		case <-ctx.Done():
		}
	}
	return nil
}

// applyFlags overlays the flags given on the command line onto base.
func applyFlags(base, flags config.Config) config.Config {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "frames":
			base.NumFrames = flags.NumFrames
		case "size":
			base.FrameSize = flags.FrameSize
		case "window":
			base.MovingAvgN = flags.MovingAvgN
		case "threshold":
			base.Threshold = flags.Threshold
		case "blur":
			base.GaussBlur = flags.GaussBlur
		case "min-area":
			base.MinArea = flags.MinArea
		case "camera":
			base.CameraID = flags.CameraID
		case "warmup":
			base.Warmup = flags.Warmup
		case "countdown":
			base.Countdown = flags.Countdown
		}
	})
	return base
}

// countdown prints a 3-2-1 style countdown. It returns the context error
// if interrupted.
func countdown(ctx context.Context, w io.Writer, seconds int, tick time.Duration) error {
	if seconds <= 0 {
		return nil
	}

	fmt.Fprintln(w, "capture starting in")
	for i := seconds; i > 0; i-- {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(tick):
		}
		fmt.Fprintf(w, "%d...\n", i)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(tick):
	}
	fmt.Fprintln(w)
	return nil
}

// resolveDBPath returns path, or the default database under the user's
// home directory, creating its parent directory.
func resolveDBPath(path string) (string, error) {
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(homeDir, ".movetrack", "movetrack.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}
	return path, nil
}
