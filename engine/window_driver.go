package engine

import (
	"context"
	"time"

	"github.com/Carmen-Shannon/taganka/common"
	"github.com/Carmen-Shannon/taganka/engine/window"
	"go.uber.org/zap"
)

// windowDriver runs the frame loop off a platform window, turning its input callbacks into
// per-frame InputDeltas.
type windowDriver struct {
	window     window.Window
	logger     *zap.Logger
	now        func() time.Time
	frameLimit time.Duration

	pending InputDelta
	nudge   float64
	paused  bool
	resized bool
}

// WindowDriverOption is a functional option for configuring the window driver.
type WindowDriverOption func(*windowDriver)

// WithDriverLogger sets the driver's logger.
func WithDriverLogger(logger *zap.Logger) WindowDriverOption {
	return func(d *windowDriver) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithFrameLimit caps the frame rate. Zero or negative leaves the loop uncapped.
//
// Parameters:
//   - fps: maximum frames per second
//
// Returns:
//   - WindowDriverOption: option function to apply
func WithFrameLimit(fps float64) WindowDriverOption {
	return func(d *windowDriver) {
		if fps <= 0 {
			d.frameLimit = 0
			return
		}
		d.frameLimit = time.Duration(float64(time.Second) / fps)
	}
}

func withDriverClock(now func() time.Time) WindowDriverOption {
	return func(d *windowDriver) {
		d.now = now
	}
}

// NewWindowDriver creates a FrameDriver that polls w once per frame.
//
// Input mapping: a left-button drag pans the camera by DragMoveScale per pixel, and rotates it
// by one unit per pixel while control is held. Scrolling zooms by ScrollZoomScale per step.
// '.' and ',' add or remove NudgeStep of simulator time on the next frame. Space pauses the
// simulation clock and R resets the view.
//
// Parameters:
//   - w: an open window
//   - options: a variadic list of WindowDriverOption functions
//
// Returns:
//   - FrameDriver: the driver
func NewWindowDriver(w window.Window, options ...WindowDriverOption) FrameDriver {
	d := &windowDriver{
		window: w,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

func (d *windowDriver) bind() {
	d.window.SetDragCallback(func(dx, dy float64, ctrl bool) {
		if ctrl {
			d.pending.RotateX += dx
			d.pending.RotateY += dy
			return
		}
		d.pending.MoveX += dx * DragMoveScale
		d.pending.MoveY += dy * DragMoveScale
	})
	d.window.SetScrollCallback(func(delta float64) {
		d.pending.Zoom += delta * ScrollZoomScale
	})
	d.window.SetKeyDownCallback(func(keyCode uint32) {
		switch keyCode {
		case common.KeyPeriod:
			d.nudge += NudgeStep
		case common.KeyComma:
			d.nudge -= NudgeStep
		case common.KeySpace:
			d.paused = !d.paused
			d.logger.Debug("simulation clock toggled", zap.Bool("paused", d.paused))
		case common.KeyR:
			d.pending.ResetView = true
		}
	})
	d.window.SetResizeCallback(func(int, int) {
		d.resized = true
	})
}

// Run binds the window callbacks and loops until the window closes or ctx is cancelled.
// The first frame reports the current window size as a resize.
func (d *windowDriver) Run(ctx context.Context, step func(Frame) error) error {
	d.bind()
	d.resized = true
	last := d.now()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !d.window.PollEvents() {
			d.logger.Info("window closed")
			return nil
		}

		start := d.now()
		elapsed := start.Sub(last)
		last = start

		f := Frame{Input: d.pending}
		if !d.paused {
			f.DeltaTime = float64(elapsed.Microseconds()) / 1000 * TimeUnitsPerMillisecond
		}
		f.DeltaTime += d.nudge
		if d.resized {
			f.Resized = true
			f.Viewport = Viewport{Width: d.window.Width(), Height: d.window.Height()}
		}
		d.pending, d.nudge, d.resized = InputDelta{}, 0, false

		if err := step(f); err != nil {
			return err
		}

		if d.frameLimit > 0 {
			if remaining := d.frameLimit - d.now().Sub(start); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}
