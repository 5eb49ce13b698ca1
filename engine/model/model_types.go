package model

import (
	"context"

	"github.com/Carmen-Shannon/taganka/common"
)

// ImportedAsset is the CPU-side result of decoding an asset file, before any device upload.
type ImportedAsset struct {
	// Name is the asset name, taken from the default scene or the source path.
	Name string

	// Primitives holds the geometry of the first primitive of every mesh, keyed by mesh name.
	Primitives map[string]*common.PrimitiveGeometry

	// NodeRotation is the standing rotation quaternion (x, y, z, w) of the first node, if it has one.
	NodeRotation *[4]float64
}

// AssetSource produces decoded assets. The loader package provides the glTF implementation.
type AssetSource interface {
	// Import decodes the asset. It may block on I/O and honours ctx cancellation.
	//
	// Parameters:
	//   - ctx: the context governing the import
	//
	// Returns:
	//   - *ImportedAsset: the decoded asset
	//   - error: a structural error if the asset is malformed, or an I/O error
	Import(ctx context.Context) (*ImportedAsset, error)
}

// AssetSourceFunc adapts a function to the AssetSource interface.
type AssetSourceFunc func(ctx context.Context) (*ImportedAsset, error)

func (f AssetSourceFunc) Import(ctx context.Context) (*ImportedAsset, error) {
	return f(ctx)
}

// RenderOptions are the per-frame inputs to AssetModel.Render.
type RenderOptions struct {
	// View is the camera view matrix. Render never mutates it.
	View *common.Matrix4

	// DeltaTime is the elapsed simulation time since the previous frame. Static models ignore it.
	DeltaTime float64
}
