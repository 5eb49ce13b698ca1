package engine

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/Carmen-Shannon/taganka/engine/profiler"
	"github.com/Carmen-Shannon/taganka/engine/scene"
	"github.com/Carmen-Shannon/taganka/engine/telemetry"
	"go.uber.org/zap"
)

// engine implements the Engine interface.
type engine struct {
	scene  scene.Scene
	driver FrameDriver
	logger *zap.Logger

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	telemetry telemetry.Hub
	aspect    float64

	frames  atomic.Int64
	running atomic.Bool
}

// Engine is the main entry point. It loads the scene, then steps it once per frame produced by
// its FrameDriver: input is applied to the camera, the scene is drawn, readouts are published
// and the profiler is ticked.
type Engine interface {
	// Scene returns the scene the engine drives.
	//
	// Returns:
	//   - scene.Scene: the scene
	Scene() scene.Scene

	// Telemetry returns the readout hub, or nil if telemetry is disabled.
	//
	// Returns:
	//   - telemetry.Hub: the hub or nil
	Telemetry() telemetry.Hub

	// EnableProfiler enables frame statistics logging.
	EnableProfiler()

	// DisableProfiler disables frame statistics logging.
	DisableProfiler()

	// Frames returns the number of frames drawn so far.
	Frames() int

	// Run loads every model, prepares the projection and drives frames until the driver
	// stops. It blocks on the calling goroutine, which must own the window if there is one.
	//
	// Parameters:
	//   - ctx: the context governing asset loading and the frame loop
	//
	// Returns:
	//   - error: a load, prepare or frame error, or ctx.Err() on cancellation
	Run(ctx context.Context) error
}

var _ Engine = &engine{}

// NewEngine creates a new Engine that drives s with driver.
//
// Parameters:
//   - s: the scene to load and draw
//   - driver: the frame source (FixedDriver or NewWindowDriver)
//   - options: functional options for engine configuration (profiling, telemetry, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(s scene.Scene, driver FrameDriver, options ...EngineBuilderOption) Engine {
	e := &engine{
		scene:  s,
		driver: driver,
		logger: zap.NewNop(),
		aspect: 16.0 / 9.0,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	return e
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Telemetry() telemetry.Hub {
	return e.telemetry
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) Frames() int {
	return int(e.frames.Load())
}

func (e *engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return fmt.Errorf("engine already running")
	}
	defer e.running.Store(false)

	if err := e.scene.LoadModels(ctx); err != nil {
		return fmt.Errorf("failed to load scene: %w", err)
	}
	if err := e.scene.Prepare(e.aspect); err != nil {
		return fmt.Errorf("failed to prepare scene: %w", err)
	}
	e.logger.Info("engine running", zap.String("scene", e.scene.Name()))

	err := e.driver.Run(ctx, e.step)
	e.logger.Info("engine stopped", zap.Int("frames", e.Frames()), zap.Error(err))
	return err
}

// step handles a single frame. It runs on the driver's goroutine.
func (e *engine) step(f Frame) error {
	if f.Resized {
		if err := e.scene.Resize(f.Viewport.Width, f.Viewport.Height); err != nil {
			return fmt.Errorf("failed to resize scene: %w", err)
		}
	}

	e.applyInput(f.Input)

	if err := e.scene.DrawScene(f.DeltaTime); err != nil {
		return fmt.Errorf("frame %d: %w", e.Frames(), err)
	}
	e.frames.Add(1)

	if e.telemetry != nil {
		if r, ok := e.scene.Readouts(); ok {
			if err := e.telemetry.Publish(r); err != nil {
				e.logger.Warn("failed to publish readouts", zap.Error(err))
			}
		}
	}

	if e.profilingEnabled.Load() {
		e.profiler.Tick()
	}
	return nil
}

func (e *engine) applyInput(in InputDelta) {
	if in.IsZero() {
		return
	}
	cam := e.scene.Camera()
	if in.ResetView {
		cam.Reset()
		if w := e.scene.Wheels(); w != nil {
			w.Simulator().Reset()
		}
	}
	if in.MoveX != 0 || in.MoveY != 0 {
		cam.Move(in.MoveX, in.MoveY)
	}
	if in.RotateX != 0 || in.RotateY != 0 {
		cam.Rotate(in.RotateX, in.RotateY)
	}
	if in.Zoom != 0 {
		cam.Zoom(in.Zoom)
	}
}
