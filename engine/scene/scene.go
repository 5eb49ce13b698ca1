package scene

import (
	"context"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/taganka/common"
	"github.com/Carmen-Shannon/taganka/engine/camera"
	"github.com/Carmen-Shannon/taganka/engine/kinematics"
	"github.com/Carmen-Shannon/taganka/engine/model"
	"github.com/Carmen-Shannon/taganka/engine/renderer"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Scene defines the interface for a renderable scene: a camera, a device and the models drawn
// on it in insertion order.
type Scene interface {
	// Name returns the scene's name.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// Camera returns the camera the view matrix is built from.
	//
	// Returns:
	//   - camera.Camera: the scene camera
	Camera() camera.Camera

	// Models returns the scene's models in draw order.
	//
	// Returns:
	//   - []model.AssetModel: the models
	Models() []model.AssetModel

	// Wheels returns the wheels model, or nil if the scene has none.
	//
	// Returns:
	//   - WheelsModel: the wheels model or nil
	Wheels() WheelsModel

	// LoadModels loads every model concurrently and waits for all of them.
	// The first failure cancels the remaining loads.
	//
	// Parameters:
	//   - ctx: the context governing asset I/O
	//
	// Returns:
	//   - error: common.ErrShaderNotCompiled, or the first model load error
	LoadModels(ctx context.Context) error

	// Prepare uploads the perspective projection for the given viewport aspect ratio.
	// Call again after the viewport is resized.
	//
	// Parameters:
	//   - aspect: viewport width / height
	//
	// Returns:
	//   - error: common.ErrShaderNotCompiled if the device has no usable program
	Prepare(aspect float64) error

	// Resize resizes the device's render target and re-uploads the projection for the new
	// aspect ratio. A zero-area size is ignored.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	//
	// Returns:
	//   - error: common.ErrShaderNotCompiled if the device has no usable program
	Resize(width, height int) error

	// DrawScene renders one frame: builds the view from the camera and renders every model
	// with deltaTime inside a single device frame.
	//
	// Parameters:
	//   - deltaTime: elapsed simulation time since the previous frame
	//
	// Returns:
	//   - error: common.ErrShaderNotCompiled, a model render error, or a device frame error
	DrawScene(deltaTime float64) error

	// Readouts returns the wheel readouts. ok is false when the scene has no wheels.
	//
	// Returns:
	//   - kinematics.Readouts: heading, movement magnitude and front position
	//   - bool: whether the scene has wheels
	Readouts() (kinematics.Readouts, bool)
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu sync.Mutex

	name   string
	logger *zap.Logger

	camera camera.Camera
	device renderer.Device

	models    []model.AssetModel
	wheels    WheelsModel
	loadLimit int
}

var _ Scene = &scene{}

// NewScene creates a new Scene drawing on device from cam's point of view.
//
// Parameters:
//   - cam: the camera
//   - device: the graphics device
//   - options: a variadic list of SceneBuilderOption functions to configure the Scene
//
// Returns:
//   - Scene: the configured scene
func NewScene(cam camera.Camera, device renderer.Device, options ...SceneBuilderOption) Scene {
	s := &scene{
		name:   "scene",
		logger: zap.NewNop(),
		camera: cam,
		device: device,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// NewStaticModel creates a model drawn with the view and its node rotation only, such as terrain.
//
// Parameters:
//   - options: a variadic list of model.ModelBuilderOption functions to configure the model
//
// Returns:
//   - model.Model: the static model
func NewStaticModel(options ...model.ModelBuilderOption) model.Model {
	return model.NewModel(options...)
}

func (s *scene) Name() string {
	return s.name
}

func (s *scene) Camera() camera.Camera {
	return s.camera
}

func (s *scene) Models() []model.AssetModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.AssetModel, len(s.models))
	copy(out, s.models)
	return out
}

func (s *scene) Wheels() WheelsModel {
	return s.wheels
}

func (s *scene) checkProgram() error {
	if s.device == nil || !s.device.ProgramCompiled() {
		return common.ErrShaderNotCompiled
	}
	return nil
}

func (s *scene) LoadModels(ctx context.Context) error {
	if err := s.checkProgram(); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	if s.loadLimit > 0 {
		g.SetLimit(s.loadLimit)
	}
	for i, m := range s.Models() {
		index, m := i, m
		g.Go(func() error {
			if err := m.Load(gctx); err != nil {
				return fmt.Errorf("scene %q model %d: %w", s.name, index, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.logger.Info("scene models loaded", zap.String("scene", s.name), zap.Int("models", len(s.models)))
	return nil
}

func (s *scene) Prepare(aspect float64) error {
	if err := s.checkProgram(); err != nil {
		return err
	}
	s.device.SetProjection(s.camera.ProjectionMatrix(aspect))
	s.logger.Debug("scene prepared",
		zap.String("scene", s.name),
		zap.Float64("aspect", aspect),
		zap.Float64("fov", s.camera.Fov()))
	return nil
}

func (s *scene) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if err := s.checkProgram(); err != nil {
		return err
	}
	s.device.Resize(width, height)
	return s.Prepare(float64(width) / float64(height))
}

func (s *scene) DrawScene(deltaTime float64) (err error) {
	if err := s.checkProgram(); err != nil {
		return err
	}

	view := s.camera.ViewMatrix()

	if err := s.device.BeginFrame(); err != nil {
		return fmt.Errorf("failed to begin frame: %w", err)
	}
	defer func() {
		err = multierr.Append(err, s.device.EndFrame())
	}()

	opts := model.RenderOptions{View: view, DeltaTime: deltaTime}
	for _, m := range s.Models() {
		if err := m.Render(opts); err != nil {
			return err
		}
	}
	return nil
}

func (s *scene) Readouts() (kinematics.Readouts, bool) {
	if s.wheels == nil {
		return kinematics.Readouts{}, false
	}
	return s.wheels.Readouts(), true
}
