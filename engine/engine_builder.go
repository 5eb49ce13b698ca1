package engine

import (
	"github.com/Carmen-Shannon/taganka/engine/profiler"
	"github.com/Carmen-Shannon/taganka/engine/telemetry"
	"go.uber.org/zap"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithLogger sets the engine's logger. The default profiler logs through it too.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) EngineBuilderOption {
	return func(e *engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithProfiling enables or disables frame statistics logging.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled.Store(enabled)
	}
}

// WithProfiler replaces the default profiler.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTelemetry publishes the scene's readouts to hub after every frame.
//
// Parameters:
//   - hub: the telemetry hub
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTelemetry(hub telemetry.Hub) EngineBuilderOption {
	return func(e *engine) {
		e.telemetry = hub
	}
}

// WithAspect sets the viewport aspect ratio used before the driver reports a surface size.
func WithAspect(aspect float64) EngineBuilderOption {
	return func(e *engine) {
		if aspect > 0 {
			e.aspect = aspect
		}
	}
}
