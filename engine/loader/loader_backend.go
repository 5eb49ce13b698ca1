package loader

import (
	"context"

	"github.com/Carmen-Shannon/taganka/engine/model"
)

// loaderBackend defines the format-specific half of the Loader.
// Concrete implementations (e.g., gltfLoaderBackend) handle the container details.
type loaderBackend interface {
	// Load decodes an asset from the given file path.
	//
	// Parameters:
	//   - ctx: cancels the decode
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.ImportedAsset: the decoded asset
	//   - error: error if decoding fails
	Load(ctx context.Context, path string) (*model.ImportedAsset, error)

	// LoadBytes decodes an asset held in memory.
	//
	// Parameters:
	//   - ctx: cancels the decode
	//   - name: the fallback asset name
	//   - data: the file contents
	//   - isGLB: true for binary containers, false for text-based formats
	//
	// Returns:
	//   - *model.ImportedAsset: the decoded asset
	//   - error: error if decoding fails
	LoadBytes(ctx context.Context, name string, data []byte, isGLB bool) (*model.ImportedAsset, error)
}
