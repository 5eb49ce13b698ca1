package model

import (
	"github.com/Carmen-Shannon/taganka/engine/renderer"
	"go.uber.org/zap"
)

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
// When unset, the name is taken from the imported asset.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithSource is an option builder that sets where the Model's asset is decoded from.
//
// Parameters:
//   - source: the asset source
//
// Returns:
//   - ModelBuilderOption: a function that applies the source option to a model
func WithSource(source AssetSource) ModelBuilderOption {
	return func(m *model) {
		m.source = source
	}
}

// WithDevice is an option builder that sets the device the Model binds and draws on.
//
// Parameters:
//   - device: the graphics device
//
// Returns:
//   - ModelBuilderOption: a function that applies the device option to a model
func WithDevice(device renderer.Device) ModelBuilderOption {
	return func(m *model) {
		m.device = device
	}
}

// WithLogger is an option builder that sets the Model's logger.
func WithLogger(logger *zap.Logger) ModelBuilderOption {
	return func(m *model) {
		if logger != nil {
			m.logger = logger
		}
	}
}
