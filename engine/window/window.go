package window

import (
	"github.com/Carmen-Shannon/taganka/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// engineWindow holds the platform-independent window state and input callbacks.
// Platform code feeds raw events into the handle* methods, which turn them into drags,
// scrolls and key presses.
type engineWindow struct {
	title     string
	width     int
	height    int
	minWidth  int
	minHeight int
	maxWidth  int
	maxHeight int

	onResize  func(width, height int)
	onScroll  func(delta float64)
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
	onDrag    func(dx, dy float64, ctrl bool)

	dragging    bool
	lastX       float64
	lastY       float64
	leftCtrl    bool
	rightCtrl   bool
	closeWanted bool

	internalWindow any
}

// Window defines the interface for the application window: a presentation surface plus the
// pointer and keyboard input that drives the camera.
// Callbacks fire from PollEvents on the goroutine that created the window.
type Window interface {
	// SetResizeCallback registers the function called when the framebuffer size changes.
	//
	// Parameters:
	//   - callback: receives the new framebuffer width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback registers the function called on vertical scroll.
	//
	// Parameters:
	//   - callback: receives the scroll offset, positive away from the user
	SetScrollCallback(callback func(delta float64))

	// SetKeyDownCallback registers the function called when a key is pressed or repeats.
	//
	// Parameters:
	//   - callback: receives the key code (see common.Key*)
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback registers the function called when a key is released.
	//
	// Parameters:
	//   - callback: receives the key code (see common.Key*)
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetDragCallback registers the function called when the cursor moves while the left
	// button is held.
	//
	// Parameters:
	//   - callback: receives the cursor delta in pixels since the previous event and whether
	//     either control key is held
	SetDragCallback(callback func(dx, dy float64, ctrl bool))

	// SurfaceDescriptor returns the wgpu surface descriptor for the window.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the platform surface descriptor, or nil if the window is closed
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// PollEvents processes pending window events without blocking, firing the registered callbacks.
	//
	// Returns:
	//   - bool: true while the window is still open
	PollEvents() bool

	// IsRunning reports whether the window is open.
	IsRunning() bool

	// Close destroys the window.
	//
	// Returns:
	//   - error: error if the window was never opened
	Close() error

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

var _ Window = &engineWindow{}

// NewWindow creates and opens a platform window with the provided options applied.
//
// Parameters:
//   - options: a variadic list of WindowBuilderOption functions to configure the Window
//
// Returns:
//   - Window: the opened window
//   - error: error if the platform window could not be created
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := newEngineWindow(options...)
	if err := newPlatformWindow(w); err != nil {
		return nil, err
	}
	return w, nil
}

func newEngineWindow(options ...WindowBuilderOption) *engineWindow {
	w := &engineWindow{
		title:     "taganka",
		width:     1280,
		height:    720,
		minWidth:  320,
		minHeight: 200,
		maxWidth:  3840,
		maxHeight: 2160,
	}
	for _, opt := range options {
		opt(w)
	}
	return w
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float64)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetDragCallback(callback func(dx, dy float64, ctrl bool)) {
	w.onDrag = callback
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) PollEvents() bool {
	return platformProcessMessages(w)
}

func (w *engineWindow) IsRunning() bool {
	return !w.closeWanted && platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}

// handleKey tracks the control keys, flags Escape as a close request and forwards the key.
func (w *engineWindow) handleKey(keyCode uint32, pressed bool) {
	switch keyCode {
	case common.KeyLeftControl:
		w.leftCtrl = pressed
	case common.KeyRightControl:
		w.rightCtrl = pressed
	case common.KeyEsc:
		if pressed {
			w.closeWanted = true
		}
		return
	}

	if pressed {
		if w.onKeyDown != nil {
			w.onKeyDown(keyCode)
		}
		return
	}
	if w.onKeyUp != nil {
		w.onKeyUp(keyCode)
	}
}

// handleButton starts or ends a drag at the given cursor position.
func (w *engineWindow) handleButton(pressed bool, x, y float64) {
	w.dragging = pressed
	w.lastX, w.lastY = x, y
}

// handleCursor reports the movement since the previous cursor event while dragging.
func (w *engineWindow) handleCursor(x, y float64) {
	if !w.dragging {
		return
	}
	dx, dy := x-w.lastX, y-w.lastY
	w.lastX, w.lastY = x, y
	if w.onDrag != nil && (dx != 0 || dy != 0) {
		w.onDrag(dx, dy, w.leftCtrl || w.rightCtrl)
	}
}

// handleLeave ends any drag in progress when the cursor leaves the window.
func (w *engineWindow) handleLeave() {
	w.dragging = false
}

func (w *engineWindow) handleScroll(yoff float64) {
	if w.onScroll != nil {
		w.onScroll(yoff)
	}
}

func (w *engineWindow) handleResize(width, height int) {
	w.width, w.height = width, height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}
