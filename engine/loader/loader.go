package loader

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/taganka/engine/model"
	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"
)

// LoaderBackendType identifies the asset file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeGLTF selects the glTF/GLB loader backend.
	BackendTypeGLTF LoaderBackendType = iota
)

// MinBufferViews is the default fewest buffer views an asset may declare.
const MinBufferViews = 5

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	logger         *zap.Logger
	workers        int
	minBufferViews int

	assetCache  map[string]*model.ImportedAsset
	digestCache map[uint64]*model.ImportedAsset

	pool    worker.DynamicWorkerPool
	backend loaderBackend
}

// Loader decodes asset files into CPU-side geometry and caches the results.
// Decoded assets are shared between callers and must be treated as read-only.
type Loader interface {
	// Load decodes an asset file and caches the result by path.
	// If the path is already cached, the cached asset is returned.
	// The backend is selected based on the file extension (.gltf/.glb → glTF backend).
	//
	// Parameters:
	//   - ctx: cancels the decode
	//   - path: the file path to the asset
	//
	// Returns:
	//   - *model.ImportedAsset: the decoded asset
	//   - error: error if decoding fails
	Load(ctx context.Context, path string) (*model.ImportedAsset, error)

	// LoadReader decodes an asset from a reader stream and caches it by the given name.
	// Streams with identical contents are decoded once, whatever name they are loaded under.
	//
	// Parameters:
	//   - ctx: cancels the decode
	//   - name: the cache key and fallback asset name
	//   - r: the reader providing asset data
	//   - isGLB: true if the reader provides GLB binary data
	//
	// Returns:
	//   - *model.ImportedAsset: the decoded asset
	//   - error: error if reading or decoding fails
	LoadReader(ctx context.Context, name string, r io.Reader, isGLB bool) (*model.ImportedAsset, error)

	// Source returns an AssetSource that decodes path through this Loader's cache.
	//
	// Parameters:
	//   - path: the file path to the asset
	//
	// Returns:
	//   - model.AssetSource: a source suitable for model.WithSource
	Source(path string) model.AssetSource

	// Get retrieves a cached asset by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - *model.ImportedAsset: the cached asset or nil
	Get(name string) *model.ImportedAsset

	// Assets returns a snapshot of the asset cache.
	//
	// Returns:
	//   - map[string]*model.ImportedAsset: all cached assets keyed by name
	Assets() map[string]*model.ImportedAsset
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the type of loader backend to use (e.g., BackendTypeGLTF)
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		logger:         zap.NewNop(),
		workers:        runtime.NumCPU(),
		minBufferViews: MinBufferViews,
		assetCache:     make(map[string]*model.ImportedAsset),
		digestCache:    make(map[uint64]*model.ImportedAsset),
	}

	for _, option := range options {
		option(l)
	}

	l.pool = worker.NewDynamicWorkerPool(l.workers, 256, 1*time.Second)

	switch backendType {
	case BackendTypeGLTF:
		l.backend = newGLTFLoaderBackend(l.pool, l.logger, l.minBufferViews)
	}
	return l
}

func (l *loader) Load(ctx context.Context, path string) (*model.ImportedAsset, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	asset, err := backend.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	l.mu.Lock()
	l.assetCache[path] = asset
	l.mu.Unlock()

	l.logger.Info("asset loaded", zap.String("path", path), zap.Int("meshes", len(asset.Primitives)))
	return asset, nil
}

func (l *loader) LoadReader(ctx context.Context, name string, r io.Reader, isGLB bool) (*model.ImportedAsset, error) {
	if cached := l.Get(name); cached != nil {
		return cached, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", name, err)
	}
	digest := xxhash.Sum64(data)

	l.mu.RLock()
	asset, ok := l.digestCache[digest]
	l.mu.RUnlock()

	if !ok {
		if l.backend == nil {
			return nil, fmt.Errorf("no loader backend configured for %q", name)
		}
		asset, err = l.backend.LoadBytes(ctx, name, data, isGLB)
		if err != nil {
			return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
		}
	} else {
		l.logger.Debug("asset contents already decoded", zap.String("name", name), zap.Uint64("digest", digest))
	}

	l.mu.Lock()
	l.assetCache[name] = asset
	l.digestCache[digest] = asset
	l.mu.Unlock()

	return asset, nil
}

func (l *loader) Source(path string) model.AssetSource {
	return model.AssetSourceFunc(func(ctx context.Context) (*model.ImportedAsset, error) {
		return l.Load(ctx, path)
	})
}

func (l *loader) Get(name string) *model.ImportedAsset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.assetCache[name]
}

func (l *loader) Assets() map[string]*model.ImportedAsset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]*model.ImportedAsset, len(l.assetCache))
	for k, v := range l.assetCache {
		result[k] = v
	}
	return result
}

// resolveBackend selects an appropriate loader backend based on the file extension.
// Currently only glTF/GLB is supported.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".gltf", ".glb":
		if l.backend == nil {
			return nil, fmt.Errorf("no loader backend configured for %s", ext)
		}
		return l.backend, nil
	default:
		return nil, fmt.Errorf("unsupported asset format: %s", ext)
	}
}
