package loader

import (
	"fmt"
	"sort"

	"github.com/Carmen-Shannon/taganka/common"
	"go.uber.org/zap"
)

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	doc    *gltfDocument
	views  [][]byte
	logger *zap.Logger
}

// gltfMeshExtractor turns glTF meshes into CPU-side primitive geometry.
// Only the first primitive of each mesh is read. Safe for concurrent use once constructed.
type gltfMeshExtractor interface {
	// MeshName returns the name a mesh is keyed by: its declared name, or mesh_<index> when unnamed.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh
	//
	// Returns:
	//   - string: the mesh key
	MeshName(meshIndex int) string

	// ExtractMesh decodes the first primitive of a mesh.
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - *common.PrimitiveGeometry: the decoded attributes, indices and vertex count
	//   - error: a structural error from common if the primitive cannot be decoded
	ExtractMesh(meshIndex int) (*common.PrimitiveGeometry, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a mesh extractor over a parsed document and its resolved buffer views.
//
// Parameters:
//   - doc: the parsed document
//   - views: the resolved buffer view byte ranges, in document order
//   - logger: receives fallback warnings for unrecognized component types
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(doc *gltfDocument, views [][]byte, logger *zap.Logger) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{doc: doc, views: views, logger: logger}
}

func (e *gltfMeshExtractorImpl) MeshName(meshIndex int) string {
	if name := e.doc.Meshes[meshIndex].Name; name != "" {
		return name
	}
	return fmt.Sprintf("mesh_%d", meshIndex)
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) (*common.PrimitiveGeometry, error) {
	mesh := &e.doc.Meshes[meshIndex]
	name := e.MeshName(meshIndex)

	if len(mesh.Primitives) == 0 {
		return nil, fmt.Errorf("mesh %q: %w", name, common.ErrEmptyPrimitive)
	}
	if len(mesh.Primitives) > 1 {
		e.logger.Debug("ignoring extra primitives",
			zap.String("mesh", name),
			zap.Int("primitives", len(mesh.Primitives)))
	}
	prim := &mesh.Primitives[0]

	// Sorted so the first failing attribute is the same on every run.
	semantics := make([]string, 0, len(prim.Attributes))
	for semantic := range prim.Attributes {
		semantics = append(semantics, semantic)
	}
	sort.Strings(semantics)

	geometry := &common.PrimitiveGeometry{
		Name:       name,
		Attributes: make(map[string]common.Attribute, len(semantics)),
	}

	for _, semantic := range semantics {
		buf, acc, err := e.readAccessor(prim.Attributes[semantic])
		if err != nil {
			return nil, fmt.Errorf("mesh %q attribute %s: %w", name, semantic, err)
		}
		geometry.Attributes[semantic] = common.Attribute{
			Components: gltfAccessorTypeComponentCount(acc.Type),
			Normalized: acc.Normalized,
			Buffer:     buf,
		}
	}

	if prim.Indices != nil {
		buf, _, err := e.readAccessor(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("mesh %q indices: %w", name, err)
		}
		geometry.Indices = &buf
		geometry.VertexCount = buf.Len()
		return geometry, nil
	}

	position, ok := geometry.Attributes[common.AttributePosition]
	if !ok {
		return nil, &common.MissingAttributeError{Mesh: name, Attributes: []string{common.AttributePosition}}
	}
	geometry.VertexCount = position.Buffer.Len() / 3
	return geometry, nil
}

// readAccessor builds a typed view over an accessor's buffer view, starting at the accessor's
// byte offset and running to the end of the view. The element count is therefore the remaining
// view length divided by the component width, not the accessor's declared count.
func (e *gltfMeshExtractorImpl) readAccessor(accessorIndex int) (common.ElementBuffer, *gltfAccessor, error) {
	if accessorIndex < 0 || accessorIndex >= len(e.doc.Accessors) {
		return common.ElementBuffer{}, nil, fmt.Errorf("accessor %d: %w", accessorIndex, common.ErrAccessorNotFound)
	}
	acc := &e.doc.Accessors[accessorIndex]

	if acc.BufferView == nil {
		return common.ElementBuffer{}, nil, fmt.Errorf("accessor %d: %w", accessorIndex, common.ErrMissingBufferView)
	}
	viewIndex := *acc.BufferView
	if viewIndex < 0 || viewIndex >= len(e.views) {
		return common.ElementBuffer{}, nil, fmt.Errorf("accessor %d references buffer view %d: %w",
			accessorIndex, viewIndex, common.ErrMissingBufferView)
	}
	view := e.views[viewIndex]

	if acc.ByteOffset < 0 || acc.ByteOffset > len(view) {
		return common.ElementBuffer{}, nil, fmt.Errorf("accessor %d offset %d exceeds buffer view %d of %d bytes: %w",
			accessorIndex, acc.ByteOffset, viewIndex, len(view), common.ErrBufferViewOutOfRange)
	}

	componentType := common.ComponentType(acc.ComponentType)
	if !componentType.Known() {
		e.logger.Warn("unrecognized accessor component type, reading as unsigned bytes",
			zap.Int("accessor", accessorIndex),
			zap.Int("componentType", acc.ComponentType))
	}

	return common.ElementBuffer{
		ComponentType: componentType.Reader(),
		Data:          view[acc.ByteOffset:],
	}, acc, nil
}
