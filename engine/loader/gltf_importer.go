package loader

import (
	"context"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/taganka/common"
	"github.com/Carmen-Shannon/taganka/engine/model"
	"go.uber.org/zap"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct {
	pool           worker.DynamicWorkerPool
	logger         *zap.Logger
	minBufferViews int
}

// gltfImporter orchestrates a glTF/GLB import: parse, resolve buffer views, then decode every
// mesh on the worker pool into an ImportedAsset.
type gltfImporter interface {
	// Import decodes a glTF/GLB file.
	//
	// Parameters:
	//   - ctx: cancels the import between stages
	//   - path: the file path to the glTF or GLB file
	//
	// Returns:
	//   - *model.ImportedAsset: the decoded asset
	//   - error: a container error, a structural error from common, or ctx.Err()
	Import(ctx context.Context, path string) (*model.ImportedAsset, error)

	// ImportBytes decodes an in-memory glTF JSON document or GLB container.
	// Relative buffer URIs are not supported for in-memory documents.
	//
	// Parameters:
	//   - ctx: cancels the import between stages
	//   - name: the fallback asset name
	//   - data: the file contents
	//   - isGLB: true if data is in GLB format
	//
	// Returns:
	//   - *model.ImportedAsset: the decoded asset
	//   - error: a container error, a structural error from common, or ctx.Err()
	ImportBytes(ctx context.Context, name string, data []byte, isGLB bool) (*model.ImportedAsset, error)
}

var _ gltfImporter = &gltfImporterImpl{}

// newGLTFImporter creates a new glTF importer that decodes meshes on pool.
//
// Parameters:
//   - pool: the worker pool mesh decoding runs on
//   - logger: the importer's logger
//   - minBufferViews: the fewest buffer views an asset may declare
//
// Returns:
//   - gltfImporter: the importer
func newGLTFImporter(pool worker.DynamicWorkerPool, logger *zap.Logger, minBufferViews int) gltfImporter {
	return &gltfImporterImpl{pool: pool, logger: logger, minBufferViews: minBufferViews}
}

func (imp *gltfImporterImpl) Import(ctx context.Context, path string) (*model.ImportedAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return imp.importFromParser(ctx, parser, path)
}

func (imp *gltfImporterImpl) ImportBytes(ctx context.Context, name string, data []byte, isGLB bool) (*model.ImportedAsset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parser := newGLTFParser()
	if err := parser.ParseBytes(data, isGLB); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return imp.importFromParser(ctx, parser, name)
}

// importFromParser runs the structural checks in order (buffer views, then meshes) and decodes
// every mesh concurrently. When several meshes fail, the error of the lowest mesh index wins.
func (imp *gltfImporterImpl) importFromParser(ctx context.Context, parser gltfParser, fallbackName string) (*model.ImportedAsset, error) {
	doc := parser.Document()

	views, err := parser.BufferViews()
	if err != nil {
		return nil, err
	}
	if len(views) < imp.minBufferViews {
		return nil, fmt.Errorf("asset declares %d buffer views, need at least %d: %w",
			len(views), imp.minBufferViews, common.ErrInsufficientBufferViews)
	}
	if len(doc.Meshes) == 0 {
		return nil, common.ErrNoMeshes
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	extractor := newGLTFMeshExtractor(doc, views, imp.logger)
	geometries := make([]*common.PrimitiveGeometry, len(doc.Meshes))
	errs := make([]error, len(doc.Meshes))

	var wg sync.WaitGroup
	for i := range doc.Meshes {
		wg.Add(1)
		meshIndex := i
		imp.pool.SubmitTask(worker.Task{
			ID: meshIndex,
			Do: func() (any, error) {
				defer wg.Done()
				if err := ctx.Err(); err != nil {
					errs[meshIndex] = err
					return nil, err
				}
				geometries[meshIndex], errs[meshIndex] = extractor.ExtractMesh(meshIndex)
				return nil, errs[meshIndex]
			},
		})
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	primitives := make(map[string]*common.PrimitiveGeometry, len(geometries))
	for i, g := range geometries {
		if _, taken := primitives[g.Name]; taken {
			renamed := fmt.Sprintf("%s_%d", g.Name, i)
			imp.logger.Warn("duplicate mesh name, renaming", zap.String("mesh", g.Name), zap.String("renamed", renamed))
			g.Name = renamed
		}
		primitives[g.Name] = g
	}

	asset := &model.ImportedAsset{
		Name:         gltfExtractModelName(doc, fallbackName),
		Primitives:   primitives,
		NodeRotation: gltfExtractNodeRotation(doc),
	}

	imp.logger.Debug("asset decoded",
		zap.String("asset", asset.Name),
		zap.Int("bufferViews", len(views)),
		zap.Int("meshes", len(primitives)))
	return asset, nil
}
