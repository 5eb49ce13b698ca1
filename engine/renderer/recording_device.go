package renderer

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/taganka/common"
	"go.uber.org/zap"
)

var (
	errFrameInProgress = errors.New("frame already in progress")
	errNoFrame         = errors.New("no frame in progress")
	errUnboundSlot     = errors.New("vertex slot not bound")
)

// CallOp names a recorded device call.
type CallOp string

const (
	OpCreateBuffer    CallOp = "CreateBuffer"
	OpSetVertexBuffer CallOp = "SetVertexBuffer"
	OpSetProjection   CallOp = "SetProjection"
	OpSetModelView    CallOp = "SetModelView"
	OpDraw            CallOp = "Draw"
	OpDrawIndexed     CallOp = "DrawIndexed"
	OpBeginFrame      CallOp = "BeginFrame"
	OpEndFrame        CallOp = "EndFrame"
	OpResize          CallOp = "Resize"
)

// Call is one recorded device call. Only the fields relevant to Op are set.
type Call struct {
	Op           CallOp
	Label        string
	Slot         int
	Buffer       *RecordedBuffer
	VertexFormat VertexFormat
	IndexFormat  IndexFormat
	Count        int
	Width        int
	Height       int
	Matrix       [16]float64
}

// RecordedBuffer is the BufferHandle produced by a RecordingDevice. It keeps a copy of the uploaded bytes.
type RecordedBuffer struct {
	label    string
	Kind     BufferKind
	Usage    BufferUsage
	Data     []byte
	released atomic.Bool
}

func (b *RecordedBuffer) Label() string { return b.label }
func (b *RecordedBuffer) Size() int     { return len(b.Data) }
func (b *RecordedBuffer) Release()      { b.released.Store(true) }

// Released reports whether Release has been called.
func (b *RecordedBuffer) Released() bool { return b.released.Load() }

// RecordingDevice is a Device that records every call in memory. It backs headless runs and tests.
type RecordingDevice struct {
	mu       sync.Mutex
	logger   *zap.Logger
	compiled bool

	calls   []Call
	buffers []*RecordedBuffer

	inFrame    bool
	frames     int
	slots      map[int]*RecordedBuffer
	modelView  [16]float64
	projection [16]float64
}

var _ Device = &RecordingDevice{}

// NewRecordingDevice creates a RecordingDevice with the given options applied.
//
// Parameters:
//   - options: functional options (WithLogger, WithProgramCompiled, WithShaderSource)
//
// Returns:
//   - *RecordingDevice: the device
func NewRecordingDevice(options ...DeviceBuilderOption) *RecordingDevice {
	cfg := newDeviceConfig()
	for _, opt := range options {
		opt(cfg)
	}
	return newRecordingDevice(cfg)
}

func newRecordingDevice(cfg *deviceConfig) *RecordingDevice {
	identity := common.NewMatrix4().Array()
	compiled := cfg.programCompiled
	if _, err := reflectModelProgram(cfg.shaderSource); err != nil {
		cfg.logger.Error("model shader failed to compile", zap.Error(err))
		compiled = false
	}
	return &RecordingDevice{
		logger:     cfg.logger,
		compiled:   compiled,
		slots:      make(map[int]*RecordedBuffer),
		modelView:  identity,
		projection: identity,
	}
}

func (d *RecordingDevice) CreateBuffer(label string, kind BufferKind, usage BufferUsage, data []byte) (BufferHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf := &RecordedBuffer{
		label: label,
		Kind:  kind,
		Usage: usage,
		Data:  append([]byte(nil), data...),
	}
	d.buffers = append(d.buffers, buf)
	d.calls = append(d.calls, Call{Op: OpCreateBuffer, Label: label, Buffer: buf, Count: len(data)})
	d.logger.Debug("buffer created", zap.String("label", label), zap.Stringer("kind", kind), zap.Int("bytes", len(data)))
	return buf, nil
}

func (d *RecordingDevice) SetVertexBuffer(slot int, buffer BufferHandle, format VertexFormat) {
	d.mu.Lock()
	defer d.mu.Unlock()

	rb, _ := buffer.(*RecordedBuffer)
	d.slots[slot] = rb
	d.calls = append(d.calls, Call{Op: OpSetVertexBuffer, Slot: slot, Buffer: rb, VertexFormat: format})
}

func (d *RecordingDevice) SetProjection(m *common.Matrix4) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.projection = m.Array()
	d.calls = append(d.calls, Call{Op: OpSetProjection, Matrix: d.projection})
}

func (d *RecordingDevice) SetModelView(m *common.Matrix4) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.modelView = m.Array()
	d.calls = append(d.calls, Call{Op: OpSetModelView, Matrix: d.modelView})
}

func (d *RecordingDevice) Draw(vertexCount int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkDraw(); err != nil {
		return err
	}
	d.calls = append(d.calls, Call{Op: OpDraw, Count: vertexCount, Matrix: d.modelView})
	return nil
}

func (d *RecordingDevice) DrawIndexed(indices BufferHandle, format IndexFormat, count int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.checkDraw(); err != nil {
		return err
	}
	rb, _ := indices.(*RecordedBuffer)
	d.calls = append(d.calls, Call{Op: OpDrawIndexed, Buffer: rb, IndexFormat: format, Count: count, Matrix: d.modelView})
	return nil
}

func (d *RecordingDevice) BeginFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.inFrame {
		return errFrameInProgress
	}
	d.inFrame = true
	d.calls = append(d.calls, Call{Op: OpBeginFrame})
	return nil
}

func (d *RecordingDevice) EndFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.inFrame {
		return errNoFrame
	}
	d.inFrame = false
	d.frames++
	d.calls = append(d.calls, Call{Op: OpEndFrame})
	return nil
}

func (d *RecordingDevice) Resize(width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, Call{Op: OpResize, Width: width, Height: height})
}

func (d *RecordingDevice) ProgramCompiled() bool {
	return d.compiled
}

// Calls returns a copy of every recorded call in order.
func (d *RecordingDevice) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// CallsOf returns the recorded calls with the given op.
func (d *RecordingDevice) CallsOf(op CallOp) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []Call
	for _, c := range d.calls {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Buffers returns every buffer created on the device.
func (d *RecordingDevice) Buffers() []*RecordedBuffer {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*RecordedBuffer(nil), d.buffers...)
}

// Frames returns the number of completed frames.
func (d *RecordingDevice) Frames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

// Projection returns the last uploaded projection matrix.
func (d *RecordingDevice) Projection() [16]float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.projection
}

// Reset clears the recorded calls but keeps created buffers.
func (d *RecordingDevice) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
}

func (d *RecordingDevice) checkDraw() error {
	if !d.inFrame {
		return errNoFrame
	}
	for _, slot := range []int{SlotPosition, SlotColor, SlotNormal} {
		if d.slots[slot] == nil {
			return errUnboundSlot
		}
	}
	return nil
}
