package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyComma  = 44  // , key (ASCII)
	KeyPeriod = 46  // . key (ASCII)
	KeyR      = 82  // R key (ASCII)
	KeySpace  = 32  // Spacebar (ASCII)
	KeyEsc    = 256 // Escape key (GLFW)
)

// Modifier keys
const (
	KeyLeftControl  = 341 // Left Control (GLFW)
	KeyRightControl = 345 // Right Control (GLFW)
)
