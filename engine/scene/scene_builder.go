package scene

import (
	"github.com/Carmen-Shannon/taganka/engine/model"
	"go.uber.org/zap"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's name.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithWheels adds the wheels model to the scene. It is drawn before any model added after it
// and is the source of the scene's readouts.
//
// Parameters:
//   - wheels: the wheels model
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithWheels(wheels WheelsModel) SceneBuilderOption {
	return func(s *scene) {
		s.wheels = wheels
		s.models = append(s.models, wheels)
	}
}

// WithModels adds models to the scene in draw order.
//
// Parameters:
//   - models: the models to add
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithModels(models ...model.AssetModel) SceneBuilderOption {
	return func(s *scene) {
		s.models = append(s.models, models...)
	}
}

// WithLoadConcurrency caps how many models LoadModels loads at once. Zero or less means no limit.
//
// Parameters:
//   - n: the maximum number of concurrent loads
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLoadConcurrency(n int) SceneBuilderOption {
	return func(s *scene) {
		s.loadLimit = n
	}
}

// WithLogger sets the scene's logger.
func WithLogger(logger *zap.Logger) SceneBuilderOption {
	return func(s *scene) {
		if logger != nil {
			s.logger = logger
		}
	}
}
