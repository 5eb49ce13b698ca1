package loader

import (
	"context"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/taganka/engine/model"
	"go.uber.org/zap"
)

// gltfLoaderBackendImpl is the implementation of gltfLoaderBackend.
type gltfLoaderBackendImpl struct {
	importer gltfImporter
}

// gltfLoaderBackend is a loaderBackend implementation for glTF/GLB files.
// It delegates to the gltfImporter for parsing and extraction.
type gltfLoaderBackend interface {
	loaderBackend
}

var _ gltfLoaderBackend = &gltfLoaderBackendImpl{}

// newGLTFLoaderBackend creates a new glTF loader backend.
//
// Parameters:
//   - pool: the worker pool mesh decoding runs on
//   - logger: the backend's logger
//   - minBufferViews: the fewest buffer views an asset may declare
//
// Returns:
//   - gltfLoaderBackend: the loader backend for glTF/GLB files
func newGLTFLoaderBackend(pool worker.DynamicWorkerPool, logger *zap.Logger, minBufferViews int) gltfLoaderBackend {
	return &gltfLoaderBackendImpl{
		importer: newGLTFImporter(pool, logger, minBufferViews),
	}
}

func (b *gltfLoaderBackendImpl) Load(ctx context.Context, path string) (*model.ImportedAsset, error) {
	return b.importer.Import(ctx, path)
}

func (b *gltfLoaderBackendImpl) LoadBytes(ctx context.Context, name string, data []byte, isGLB bool) (*model.ImportedAsset, error) {
	return b.importer.ImportBytes(ctx, name, data, isGLB)
}
