package engine

import (
	"context"
	"time"
)

// Input scaling applied by the window driver.
const (
	// TimeUnitsPerMillisecond converts wall-clock milliseconds into simulator time units.
	TimeUnitsPerMillisecond = 0.1

	// DragMoveScale converts a plain drag in pixels into camera pan units.
	DragMoveScale = 0.05

	// ScrollZoomScale converts one scroll step into camera zoom units.
	ScrollZoomScale = 1.0

	// NudgeStep is the simulator time added to the next frame by the '.' key and removed by ','.
	NudgeStep = 7.0
)

// InputDelta is the camera input accumulated since the previous frame.
type InputDelta struct {
	MoveX   float64
	MoveY   float64
	RotateX float64
	RotateY float64
	Zoom    float64

	// ResetView asks for the camera and wheels to return to their start state.
	ResetView bool
}

// IsZero reports whether the delta carries no input.
func (d InputDelta) IsZero() bool {
	return d == InputDelta{}
}

// Viewport is a surface size in pixels.
type Viewport struct {
	Width  int
	Height int
}

// Frame is one step of the frame loop.
type Frame struct {
	// DeltaTime is the simulation time elapsed since the previous frame.
	DeltaTime float64

	Input InputDelta

	// Viewport holds the new surface size when Resized is set.
	Viewport Viewport
	Resized  bool
}

// FrameDriver produces frames and hands each to step until it runs out, the context is
// cancelled or step fails.
type FrameDriver interface {
	// Run drives the frame loop on the calling goroutine.
	//
	// Parameters:
	//   - ctx: cancelling it stops the loop before the next frame
	//   - step: called once per frame; a non-nil error stops the loop
	//
	// Returns:
	//   - error: the step error, ctx.Err() on cancellation, or nil when the driver is exhausted
	Run(ctx context.Context, step func(Frame) error) error
}

// FixedDriver steps a fixed deltaTime for a fixed number of frames. It backs headless runs.
type FixedDriver struct {
	// Frames is the number of frames to run. Zero or negative runs until the context is cancelled.
	Frames int

	DeltaTime float64

	// Input, when set, supplies the input for frame i.
	Input func(i int) InputDelta

	// Interval, when positive, sleeps between frames.
	Interval time.Duration
}

var _ FrameDriver = FixedDriver{}

func (d FixedDriver) Run(ctx context.Context, step func(Frame) error) error {
	for i := 0; d.Frames <= 0 || i < d.Frames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		f := Frame{DeltaTime: d.DeltaTime}
		if d.Input != nil {
			f.Input = d.Input(i)
		}
		if err := step(f); err != nil {
			return err
		}

		if d.Interval > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(d.Interval):
			}
		}
	}
	return nil
}
