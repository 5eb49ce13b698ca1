package telemetry

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HubBuilderOption is a functional option for configuring a Hub.
type HubBuilderOption func(*hub)

// WithLogger sets the hub's logger.
func WithLogger(logger *zap.Logger) HubBuilderOption {
	return func(h *hub) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithWriteTimeout bounds how long a single client write may block Publish.
func WithWriteTimeout(timeout time.Duration) HubBuilderOption {
	return func(h *hub) {
		if timeout > 0 {
			h.writeTimeout = timeout
		}
	}
}

// WithAllowedOrigin restricts upgrades to requests from origin. An empty origin accepts any.
//
// Parameters:
//   - origin: the exact Origin header value to accept
//
// Returns:
//   - HubBuilderOption: option function to apply
func WithAllowedOrigin(origin string) HubBuilderOption {
	return func(h *hub) {
		if origin == "" {
			h.upgrader.CheckOrigin = func(*http.Request) bool { return true }
			return
		}
		h.upgrader.CheckOrigin = func(r *http.Request) bool {
			return r.Header.Get("Origin") == origin
		}
	}
}
