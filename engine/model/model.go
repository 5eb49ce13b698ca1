package model

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/Carmen-Shannon/taganka/common"
	"github.com/Carmen-Shannon/taganka/engine/renderer"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AssetModel is anything the scene can load once and render every frame.
type AssetModel interface {
	// Load decodes the model's asset and binds its geometry to the device.
	// Not safe to call concurrently on the same instance; a second concurrent call fails with
	// common.ErrLoadInProgress. Once loaded, further calls return nil without importing or binding
	// again, so the bound buffers are never replaced.
	//
	// Parameters:
	//   - ctx: the context governing asset I/O
	//
	// Returns:
	//   - error: a structural error if the asset is malformed, or a precondition error
	Load(ctx context.Context) error

	// Render draws the model for one frame.
	//
	// Parameters:
	//   - options: the per-frame view matrix and elapsed time
	//
	// Returns:
	//   - error: common.ErrNotLoaded if Load has not completed, or a device error
	Render(options RenderOptions) error
}

// model is the implementation of the Model interface.
type model struct {
	mu      sync.RWMutex
	loading atomic.Bool

	id     uuid.UUID
	name   string
	logger *zap.Logger

	source AssetSource
	device renderer.Device

	loaded     bool
	primitives map[string]*common.PrimitiveGeometry
	buffers    map[string]*renderer.DeviceBuffers
	order      []string
	node       *common.Matrix4
}

// Model is the reusable decode-and-bind capability shared by every concrete scene model.
// On its own it renders as a static model: every primitive drawn with view × node rotation.
// Models with their own motion compose a Model and call RenderPrimitives with their transform.
type Model interface {
	AssetModel

	// ID returns the unique instance identifier used in device buffer labels.
	//
	// Returns:
	//   - uuid.UUID: the instance ID
	ID() uuid.UUID

	// Name returns the model name. Before Load completes this is the configured name, if any.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Loaded reports whether Load has completed successfully.
	//
	// Returns:
	//   - bool: true once geometry is bound
	Loaded() bool

	// Primitives returns the decoded geometry keyed by mesh name, or nil before Load.
	//
	// Returns:
	//   - map[string]*common.PrimitiveGeometry: the decoded geometry
	Primitives() map[string]*common.PrimitiveGeometry

	// NodeTransform returns a copy of the standing node rotation applied before every draw.
	//
	// Returns:
	//   - *common.Matrix4: the node transform (identity if the asset declares none)
	NodeTransform() *common.Matrix4

	// RenderPrimitives draws every primitive with modelView × node rotation as the model-view uniform.
	// modelView is not mutated.
	//
	// Parameters:
	//   - modelView: the transform from model space to view space, excluding the node rotation
	//
	// Returns:
	//   - error: common.ErrNotLoaded if Load has not completed, or a device error
	RenderPrimitives(modelView *common.Matrix4) error
}

var _ Model = &model{}

// NewModel creates a new Model with the provided options applied.
// A source and a device must be supplied before Load is called.
//
// Parameters:
//   - options: a variadic list of ModelBuilderOption functions to configure the Model
//
// Returns:
//   - Model: the configured, unloaded model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		id:     uuid.New(),
		logger: zap.NewNop(),
		node:   common.NewMatrix4(),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *model) ID() uuid.UUID {
	return m.id
}

func (m *model) Name() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.name
}

func (m *model) Loaded() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

func (m *model) Primitives() map[string]*common.PrimitiveGeometry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.primitives
}

func (m *model) NodeTransform() *common.Matrix4 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.node.Copy()
}

func (m *model) Load(ctx context.Context) error {
	if m.source == nil {
		return fmt.Errorf("%w: model has no asset source", common.ErrPrecondition)
	}
	if m.device == nil {
		return fmt.Errorf("%w: model has no device", common.ErrPrecondition)
	}
	if !m.loading.CompareAndSwap(false, true) {
		return common.ErrLoadInProgress
	}
	defer m.loading.Store(false)

	if m.Loaded() {
		return nil
	}

	asset, err := m.source.Import(ctx)
	if err != nil {
		return fmt.Errorf("failed to import model %q: %w", m.Name(), err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	name := common.Coalesce(m.Name(), asset.Name)
	label := fmt.Sprintf("%s-%s", name, m.id.String()[:8])

	buffers, err := renderer.BindGeometry(m.device, label, asset.Primitives)
	if err != nil {
		return fmt.Errorf("failed to bind model %q: %w", name, err)
	}

	node := common.NewMatrix4()
	if q := asset.NodeRotation; q != nil {
		node.RotateWithQuaternion(q[0], q[1], q[2], q[3])
	}

	order := make([]string, 0, len(buffers))
	for meshName := range buffers {
		order = append(order, meshName)
	}
	sort.Strings(order)

	m.mu.Lock()
	m.name = name
	m.primitives = asset.Primitives
	m.buffers = buffers
	m.order = order
	m.node = node
	m.loaded = true
	m.mu.Unlock()

	m.logger.Info("model loaded",
		zap.String("model", name),
		zap.Stringer("id", m.id),
		zap.Strings("meshes", order),
		zap.Bool("nodeRotation", asset.NodeRotation != nil))
	return nil
}

func (m *model) Render(options RenderOptions) error {
	view := options.View
	if view == nil {
		view = common.NewMatrix4()
	}
	return m.RenderPrimitives(view)
}

func (m *model) RenderPrimitives(modelView *common.Matrix4) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.loaded {
		return fmt.Errorf("cannot render model %q: %w", m.name, common.ErrNotLoaded)
	}

	m.device.SetModelView(modelView.Copy().MultiplyRight(m.node))
	for _, meshName := range m.order {
		if err := renderer.DrawPrimitive(m.device, m.buffers[meshName]); err != nil {
			return fmt.Errorf("failed to draw %q/%q: %w", m.name, meshName, err)
		}
	}
	return nil
}
