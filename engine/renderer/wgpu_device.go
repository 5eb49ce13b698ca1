package renderer

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/taganka/common"
	"github.com/Carmen-Shannon/taganka/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

const (
	// uniformSlotAlignment is the WebGPU default minUniformBufferOffsetAlignment.
	uniformSlotAlignment = 256
	matrixSize           = 64
)

var errDrawBudgetExceeded = errors.New("draw count exceeds per-frame model-view slots")

// clipDepthRemap maps OpenGL clip depth [-1, 1] onto WebGPU's [0, 1].
var clipDepthRemap = common.Matrix4FromArray([16]float64{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
})

type wgpuBuffer struct {
	label  string
	size   int
	buffer *wgpu.Buffer
}

func (b *wgpuBuffer) Label() string { return b.label }
func (b *wgpuBuffer) Size() int     { return b.size }

func (b *wgpuBuffer) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}

// wgpuDevice is the WebGPU implementation of Device. It owns a single render pipeline built from the
// embedded model shader; each draw gets its own model-view uniform slot addressed by dynamic offset.
type wgpuDevice struct {
	mu     *sync.Mutex
	logger *zap.Logger

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat        wgpu.TextureFormat
	presentMode          wgpu.PresentMode
	sampleCount          MSAASampleCount
	clearColor           wgpu.Color
	msaaTextureView      *wgpu.TextureView
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	pipeline         *wgpu.RenderPipeline
	bindGroup        *wgpu.BindGroup
	projectionBuffer *wgpu.Buffer
	modelViewBuffer  *wgpu.Buffer
	compiled         bool

	maxDraws    int
	drawSlot    int
	vertexSlots [3]*wgpuBuffer

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ Device = &wgpuDevice{}

func newWGPUDevice(surface SurfaceProvider, cfg *deviceConfig) (*wgpuDevice, error) {
	runtime.LockOSThread()

	d := &wgpuDevice{
		mu:          &sync.Mutex{},
		logger:      cfg.logger,
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: cfg.msaa,
		clearColor:  wgpu.Color{R: cfg.clearColor[0], G: cfg.clearColor[1], B: cfg.clearColor[2], A: cfg.clearColor[3]},
		maxDraws:    cfg.maxDrawsPerFrame,
	}
	if cfg.presentMode == PresentModeUncapped {
		d.presentMode = wgpu.PresentModeImmediate
	}

	d.surface = d.instance.CreateSurface(surface.SurfaceDescriptor())

	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: cfg.forceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request adapter: %w", err)
	}
	d.adapter = adapter

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to request device: %w", err)
	}
	d.device = device
	d.queue = device.GetQueue()

	if err := d.configureSurface(surface.Width(), surface.Height()); err != nil {
		return nil, err
	}

	if err := d.createUniforms(); err != nil {
		return nil, err
	}

	// A shader failure is surfaced through ProgramCompiled so the scene can refuse to start.
	program, err := reflectModelProgram(cfg.shaderSource)
	if err == nil {
		err = d.createPipeline(cfg.shaderSource, program)
	}
	if err != nil {
		d.logger.Error("model shader failed to compile", zap.Error(err))
	} else {
		d.compiled = true
	}

	return d, nil
}

// configureSurface configures the swapchain and (re)creates the MSAA and depth attachments.
// This is required when the surface size changes, such as when the window is resized.
func (d *wgpuDevice) configureSurface(width, height int) error {
	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surfaceFormat = capabilities.Formats[0]

	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	count := uint32(d.sampleCount)
	msaaEnabled := count > 1

	if d.msaaTextureView != nil {
		d.msaaTextureView.Release()
		d.msaaTextureView = nil
	}
	if msaaEnabled {
		view, err := d.createAttachment("MSAA Texture", width, height, d.surfaceFormat)
		if err != nil {
			return err
		}
		d.msaaTextureView = view
	}

	if d.depthTextureView != nil {
		d.depthTextureView.Release()
	}
	depthView, err := d.createAttachment("Depth Texture", width, height, wgpu.TextureFormatDepth24Plus)
	if err != nil {
		return err
	}
	d.depthTextureView = depthView

	// With MSAA the pass draws into the MSAA view and resolves into the swapchain view set in BeginFrame.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	d.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       d.msaaTextureView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    storeOp,
				ClearValue: d.clearColor,
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            d.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
	return nil
}

func (d *wgpuDevice) createAttachment(label string, width, height int, format wgpu.TextureFormat) (*wgpu.TextureView, error) {
	texture, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   uint32(d.sampleCount),
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", label, err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s view: %w", label, err)
	}
	return view, nil
}

func (d *wgpuDevice) createUniforms() error {
	var err error
	d.projectionBuffer, err = d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Projection Uniform",
		Size:  matrixSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create projection uniform: %w", err)
	}

	d.modelViewBuffer, err = d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Model-View Uniforms",
		Size:  uint64(d.maxDraws * uniformSlotAlignment),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("failed to create model-view uniforms: %w", err)
	}

	identity := common.NewMatrix4().Float32()
	d.queue.WriteBuffer(d.projectionBuffer, 0, common.StructToBytes(&identity))
	return nil
}

func (d *wgpuDevice) createPipeline(source string, program *shader.Program) error {
	module, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: program.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: source,
		},
	})
	if err != nil {
		return err
	}

	projectionEntry := wgpu.BindGroupLayoutEntry{Binding: 0, Visibility: wgpu.ShaderStageVertex}
	projectionEntry.Buffer.Type = wgpu.BufferBindingTypeUniform
	projectionEntry.Buffer.MinBindingSize = matrixSize

	modelViewEntry := wgpu.BindGroupLayoutEntry{Binding: 1, Visibility: wgpu.ShaderStageVertex}
	modelViewEntry.Buffer.Type = wgpu.BufferBindingTypeUniform
	modelViewEntry.Buffer.HasDynamicOffset = true
	modelViewEntry.Buffer.MinBindingSize = matrixSize

	layout, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   "Model Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{projectionEntry, modelViewEntry},
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group layout: %w", err)
	}

	d.bindGroup, err = d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Model Bind Group",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: d.projectionBuffer, Offset: 0, Size: wgpu.WholeSize},
			{Binding: 1, Buffer: d.modelViewBuffer, Offset: 0, Size: matrixSize},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create bind group: %w", err)
	}

	pipelineLayout, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Model Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		return err
	}

	vertexLayouts := []wgpu.VertexBufferLayout{
		{
			ArrayStride: uint64(VertexFormatFloat32x3.Stride()),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  []wgpu.VertexAttribute{{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: SlotPosition}},
		},
		{
			ArrayStride: uint64(VertexFormatUnorm16x4.Stride()),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  []wgpu.VertexAttribute{{Format: wgpu.VertexFormatUnorm16x4, Offset: 0, ShaderLocation: SlotColor}},
		},
		{
			ArrayStride: uint64(VertexFormatFloat32x3.Stride()),
			StepMode:    wgpu.VertexStepModeVertex,
			Attributes:  []wgpu.VertexAttribute{{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: SlotNormal}},
		},
	}

	d.pipeline, err = d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Model Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: program.VertexEntry,
			Buffers:    vertexLayouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: program.FragmentEntry,
			Targets: []wgpu.ColorTargetState{
				{Format: d.surfaceFormat, WriteMask: wgpu.ColorWriteMaskAll},
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(d.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:            wgpu.TextureFormatDepth24Plus,
			DepthWriteEnabled: true,
			DepthCompare:      wgpu.CompareFunctionLessEqual,
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		},
	})
	return err
}

func (d *wgpuDevice) CreateBuffer(label string, kind BufferKind, usage BufferUsage, data []byte) (BufferHandle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	flags := wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst
	if kind == BufferKindIndex {
		flags = wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst
	}

	// queue writes must be a multiple of 4 bytes
	padded := data
	if rem := len(data) % 4; rem != 0 {
		padded = append(append([]byte(nil), data...), make([]byte, 4-rem)...)
	}

	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label:            label,
		Size:             uint64(len(padded)),
		Usage:            flags,
		MappedAtCreation: false,
	})
	if err != nil {
		return nil, err
	}
	if len(padded) > 0 {
		d.queue.WriteBuffer(buf, 0, padded)
	}

	d.logger.Debug("buffer created",
		zap.String("label", label),
		zap.Stringer("kind", kind),
		zap.Int("bytes", len(data)),
		zap.Bool("static", usage == UsageStatic))

	return &wgpuBuffer{label: label, size: len(data), buffer: buf}, nil
}

func (d *wgpuDevice) SetVertexBuffer(slot int, buffer BufferHandle, format VertexFormat) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if slot < 0 || slot >= len(d.vertexSlots) {
		return
	}
	d.vertexSlots[slot], _ = buffer.(*wgpuBuffer)
}

func (d *wgpuDevice) SetProjection(m *common.Matrix4) {
	d.mu.Lock()
	defer d.mu.Unlock()

	projection := clipDepthRemap.Copy().MultiplyRight(m).Float32()
	d.queue.WriteBuffer(d.projectionBuffer, 0, common.StructToBytes(&projection))
}

func (d *wgpuDevice) SetModelView(m *common.Matrix4) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.drawSlot >= d.maxDraws {
		return
	}
	mv := m.Float32()
	d.queue.WriteBuffer(d.modelViewBuffer, uint64(d.drawSlot*uniformSlotAlignment), common.StructToBytes(&mv))
}

func (d *wgpuDevice) Draw(vertexCount int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.bindDraw(); err != nil {
		return err
	}
	d.framePass.Draw(uint32(vertexCount), 1, 0, 0)
	return nil
}

func (d *wgpuDevice) DrawIndexed(indices BufferHandle, format IndexFormat, count int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	ib, ok := indices.(*wgpuBuffer)
	if !ok {
		return fmt.Errorf("index buffer %q was not created by this device", indices.Label())
	}
	if err := d.bindDraw(); err != nil {
		return err
	}

	indexFormat := wgpu.IndexFormatUint32
	if format == IndexFormatUint16 {
		indexFormat = wgpu.IndexFormatUint16
	}
	d.framePass.SetIndexBuffer(ib.buffer, indexFormat, 0, wgpu.WholeSize)
	d.framePass.DrawIndexed(uint32(count), 1, 0, 0, 0)
	return nil
}

// bindDraw sets the pipeline, the current model-view slot and the vertex buffers on the frame pass,
// then advances to the next uniform slot. Caller holds mu.
func (d *wgpuDevice) bindDraw() error {
	if d.framePass == nil {
		return errNoFrame
	}
	if d.drawSlot >= d.maxDraws {
		return errDrawBudgetExceeded
	}
	for _, vb := range d.vertexSlots {
		if vb == nil {
			return errUnboundSlot
		}
	}

	d.framePass.SetPipeline(d.pipeline)
	d.framePass.SetBindGroup(0, d.bindGroup, []uint32{uint32(d.drawSlot * uniformSlotAlignment)})
	for slot, vb := range d.vertexSlots {
		d.framePass.SetVertexBuffer(uint32(slot), vb.buffer, 0, wgpu.WholeSize)
	}
	d.drawSlot++
	return nil
}

func (d *wgpuDevice) BeginFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.frameSurface != nil {
		return errFrameInProgress
	}

	surfaceTexture, err := d.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	if d.sampleCount > 1 {
		d.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		d.renderPassDescriptor.ColorAttachments[0].View = view
	}

	d.frameEncoder = encoder
	d.framePass = encoder.BeginRenderPass(d.renderPassDescriptor)
	d.frameSurface = surfaceTexture
	d.frameView = view
	d.drawSlot = 0
	return nil
}

func (d *wgpuDevice) EndFrame() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.framePass == nil {
		return errNoFrame
	}

	d.framePass.End()
	commandBuffer, err := d.frameEncoder.Finish(nil)
	if err == nil {
		d.queue.Submit(commandBuffer)
		commandBuffer.Release()
		d.surface.Present()
	}

	d.frameEncoder.Release()
	d.frameView.Release()
	d.frameSurface.Release()
	d.frameEncoder = nil
	d.framePass = nil
	d.frameView = nil
	d.frameSurface = nil
	return err
}

func (d *wgpuDevice) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.configureSurface(width, height); err != nil {
		d.logger.Error("surface reconfigure failed", zap.Int("width", width), zap.Int("height", height), zap.Error(err))
	}
}

func (d *wgpuDevice) ProgramCompiled() bool {
	return d.compiled
}
