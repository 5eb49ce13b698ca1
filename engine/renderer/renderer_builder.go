package renderer

import "go.uber.org/zap"

// deviceConfig collects pre-creation settings from DeviceBuilderOptions.
type deviceConfig struct {
	logger               *zap.Logger
	forceFallbackAdapter bool
	presentMode          PresentMode
	msaa                 MSAASampleCount
	clearColor           [4]float64
	maxDrawsPerFrame     int
	programCompiled      bool
	shaderSource         string
}

func newDeviceConfig() *deviceConfig {
	return &deviceConfig{
		logger:           zap.NewNop(),
		presentMode:      PresentModeVSync,
		msaa:             MSAA4x,
		clearColor:       [4]float64{0, 0, 0, 1},
		maxDrawsPerFrame: 256,
		programCompiled:  true,
		shaderSource:     modelShaderSource,
	}
}

// DeviceBuilderOption is a functional option applied to a device during construction via NewDevice.
type DeviceBuilderOption func(*deviceConfig)

// WithLogger sets the logger used by the device.
//
// Parameters:
//   - logger: the zap logger
//
// Returns:
//   - DeviceBuilderOption: a function that applies the logger option
func WithLogger(logger *zap.Logger) DeviceBuilderOption {
	return func(c *deviceConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithPresentMode sets the surface present mode which controls how frames are delivered to the display.
//
// Parameters:
//   - mode: the PresentMode to use (VSync or Uncapped)
//
// Returns:
//   - DeviceBuilderOption: a function that applies the present mode option
func WithPresentMode(mode PresentMode) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.presentMode = mode
	}
}

// WithMSAA sets the multisample anti-aliasing sample count. Defaults to MSAA4x.
//
// Parameters:
//   - count: the MSAASampleCount to use
//
// Returns:
//   - DeviceBuilderOption: a function that applies the MSAA option
func WithMSAA(count MSAASampleCount) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.msaa = count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter
//
// Returns:
//   - DeviceBuilderOption: a function that applies the option
func WithForceSoftwareRenderer(force bool) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.forceFallbackAdapter = force
	}
}

// WithClearColor sets the RGBA color each frame is cleared to. Defaults to opaque black.
func WithClearColor(r, g, b, a float64) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.clearColor = [4]float64{r, g, b, a}
	}
}

// WithMaxDrawsPerFrame sets how many draws a single frame may issue.
// Each draw owns one model-view uniform slot.
func WithMaxDrawsPerFrame(n int) DeviceBuilderOption {
	return func(c *deviceConfig) {
		if n > 0 {
			c.maxDrawsPerFrame = n
		}
	}
}

// WithProgramCompiled overrides the compiled state reported by a recording device.
// Used to exercise the shader precondition without a GPU.
func WithProgramCompiled(compiled bool) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.programCompiled = compiled
	}
}

// WithShaderSource replaces the built-in model program. The source must declare the position,
// color and normal inputs at the binder's slots and the projection and model-view uniforms,
// otherwise the device reports its program as not compiled.
//
// Parameters:
//   - source: WGSL source with one @vertex and one @fragment entry point
//
// Returns:
//   - DeviceBuilderOption: a function that applies the option
func WithShaderSource(source string) DeviceBuilderOption {
	return func(c *deviceConfig) {
		c.shaderSource = source
	}
}
