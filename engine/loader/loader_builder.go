package loader

import (
	"github.com/Carmen-Shannon/taganka/engine/model"
	"go.uber.org/zap"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithLogger is an option builder that sets the Loader's logger.
// Component type fallbacks are reported on it at warn level.
//
// Parameters:
//   - logger: the logger instance
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *zap.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithWorkers is an option builder that caps how many meshes are decoded concurrently.
func WithWorkers(workers int) LoaderBuilderOption {
	return func(l *loader) {
		if workers > 0 {
			l.workers = workers
		}
	}
}

// WithMinBufferViews is an option builder that sets the fewest buffer views an asset may declare.
// Assets with fewer fail with common.ErrInsufficientBufferViews.
func WithMinBufferViews(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n >= 0 {
			l.minBufferViews = n
		}
	}
}

// WithAsset is an option builder that pre-populates the asset cache.
//
// Parameters:
//   - key: the cache key for the asset
//   - asset: the decoded asset to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the asset option to a loader
func WithAsset(key string, asset *model.ImportedAsset) LoaderBuilderOption {
	return func(l *loader) {
		l.assetCache[key] = asset
	}
}
