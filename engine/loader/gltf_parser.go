package loader

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/taganka/common"
)

// Container errors returned by the parser. These describe files that are not glTF at all,
// as opposed to the structural errors in common that describe glTF files the scene cannot use.
var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errGLBTooSmall        = errors.New("GLB file too small")
	errGLBTruncated       = errors.New("GLB file truncated")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errNoDocument         = errors.New("no document loaded")
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	baseDir        string
	document       *gltfDocument
	glbBinaryChunk []byte
}

// gltfParser loads a glTF/GLB container and resolves its buffer views to raw bytes.
// This is internal to the loader package.
type gltfParser interface {
	// Parse loads and parses a glTF/GLB file from the given path.
	// The format is detected from the extension or the GLB magic number.
	//
	// Parameters:
	//   - path: path to the glTF or GLB file
	//
	// Returns:
	//   - error: error if reading or parsing fails
	Parse(path string) error

	// ParseBytes parses an in-memory glTF JSON document or GLB container.
	//
	// Parameters:
	//   - data: the file contents
	//   - isGLB: true if data is in GLB format
	//
	// Returns:
	//   - error: error if parsing fails
	ParseBytes(data []byte, isGLB bool) error

	// Document returns the parsed glTF document, or nil before a successful parse.
	//
	// Returns:
	//   - *gltfDocument: the parsed document or nil
	Document() *gltfDocument

	// BaseDir returns the directory used to resolve relative buffer URIs.
	//
	// Returns:
	//   - string: the base directory path
	BaseDir() string

	// BufferViews resolves every buffer view of the document to its byte range.
	// Returned slices alias the loaded buffer data.
	//
	// Returns:
	//   - [][]byte: one byte range per buffer view, in document order
	//   - error: common.ErrBufferViewOutOfRange if any view overruns its buffer
	BufferViews() ([][]byte, error)
}

var _ gltfParser = &gltfParserImpl{}

// newGLTFParser creates a new glTF parser instance.
//
// Returns:
//   - gltfParser: a new parser instance
func newGLTFParser() gltfParser {
	return &gltfParserImpl{}
}

func (p *gltfParserImpl) Document() *gltfDocument {
	return p.document
}

func (p *gltfParserImpl) BaseDir() string {
	return p.baseDir
}

func (p *gltfParserImpl) Parse(path string) error {
	p.baseDir = filepath.Dir(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	isGLB := ext == ".glb" || (len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic)
	return p.ParseBytes(data, isGLB)
}

func (p *gltfParserImpl) ParseBytes(data []byte, isGLB bool) error {
	if isGLB {
		return p.parseGLB(data)
	}
	return p.parseGLTF(data)
}

// parseGLTF parses a glTF JSON file.
func (p *gltfParserImpl) parseGLTF(data []byte) error {
	return p.parseDocument(data)
}

// parseGLB splits a GLB container into its JSON and BIN chunks.
// Bytes past the length declared in the header are ignored and unknown chunk types are skipped.
func (p *gltfParserImpl) parseGLB(data []byte) error {
	const headerSize, chunkHeaderSize = 12, 8
	if len(data) < headerSize {
		return errGLBTooSmall
	}

	header := gltfGLBHeader{
		Magic:   binary.LittleEndian.Uint32(data[0:]),
		Version: binary.LittleEndian.Uint32(data[4:]),
		Length:  binary.LittleEndian.Uint32(data[8:]),
	}
	if header.Magic != gltfGLBMagic {
		return errInvalidGLBMagic
	}
	if header.Version != gltfGLBVersion {
		return errInvalidGLBVersion
	}
	if int(header.Length) > len(data) {
		return fmt.Errorf("header declares %d bytes, have %d: %w", header.Length, len(data), errGLBTruncated)
	}
	data = data[:header.Length]

	var jsonData, binData []byte
	for off := headerSize; off < len(data); {
		if len(data)-off < chunkHeaderSize {
			return fmt.Errorf("chunk header at byte %d: %w", off, errGLBTruncated)
		}
		chunk := gltfGLBChunkHeader{
			ChunkLength: binary.LittleEndian.Uint32(data[off:]),
			ChunkType:   binary.LittleEndian.Uint32(data[off+4:]),
		}
		off += chunkHeaderSize
		if int(chunk.ChunkLength) > len(data)-off {
			return fmt.Errorf("chunk of %d bytes at byte %d: %w", chunk.ChunkLength, off, errGLBTruncated)
		}
		body := data[off : off+int(chunk.ChunkLength)]
		off += int(chunk.ChunkLength)

		switch {
		case chunk.ChunkType == gltfGLBChunkJSON && jsonData == nil:
			jsonData = body
		case chunk.ChunkType == gltfGLBChunkBIN && binData == nil:
			binData = body
		}
	}

	if jsonData == nil {
		return errMissingJSONChunk
	}

	p.glbBinaryChunk = binData
	return p.parseDocument(jsonData)
}

func (p *gltfParserImpl) parseDocument(jsonData []byte) error {
	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errInvalidGLTFVersion
	}
	if err := p.loadBuffers(&doc); err != nil {
		return err
	}

	p.document = &doc
	return nil
}

// loadBuffers fills every buffer's Data from the GLB binary chunk, a data URI or a sibling file.
// A document with no buffer payload at all fails with common.ErrMissingBinaryChunk.
func (p *gltfParserImpl) loadBuffers(doc *gltfDocument) error {
	if len(doc.Buffers) == 0 {
		return fmt.Errorf("document declares no buffers: %w", common.ErrMissingBinaryChunk)
	}

	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		if buf.URI == "" {
			if i == 0 && p.glbBinaryChunk != nil {
				buf.Data = p.glbBinaryChunk
				continue
			}
			return fmt.Errorf("buffer %d has no URI: %w", i, common.ErrMissingBinaryChunk)
		}

		data, err := p.loadBufferURI(buf.URI)
		if err != nil {
			return fmt.Errorf("buffer %d: %w", i, err)
		}
		buf.Data = data
	}
	return nil
}

// loadBufferURI loads buffer data from a data: URI or a path relative to the base directory.
func (p *gltfParserImpl) loadBufferURI(uri string) ([]byte, error) {
	if strings.HasPrefix(uri, "data:") {
		return p.loadDataURI(uri)
	}

	data, err := os.ReadFile(filepath.Join(p.baseDir, uri))
	if err != nil {
		return nil, fmt.Errorf("failed to load buffer file %q: %w", uri, err)
	}
	return data, nil
}

// loadDataURI decodes a base64 data URI of the form data:[<mediatype>];base64,<data>.
func (p *gltfParserImpl) loadDataURI(uri string) ([]byte, error) {
	commaIdx := strings.Index(uri, ",")
	if commaIdx < 0 {
		return nil, errInvalidBufferURI
	}

	header := uri[5:commaIdx]
	if !strings.Contains(header, "base64") {
		return nil, fmt.Errorf("unsupported data URI encoding %q: %w", header, errInvalidBufferURI)
	}

	data, err := base64.StdEncoding.DecodeString(uri[commaIdx+1:])
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, nil
}

func (p *gltfParserImpl) BufferViews() ([][]byte, error) {
	if p.document == nil {
		return nil, errNoDocument
	}

	views := make([][]byte, len(p.document.BufferViews))
	for i, bv := range p.document.BufferViews {
		if bv.Buffer < 0 || bv.Buffer >= len(p.document.Buffers) {
			return nil, fmt.Errorf("buffer view %d references buffer %d: %w", i, bv.Buffer, common.ErrBufferViewOutOfRange)
		}
		data := p.document.Buffers[bv.Buffer].Data
		start, end := bv.ByteOffset, bv.ByteOffset+bv.ByteLength
		if start < 0 || bv.ByteLength < 0 || end > len(data) {
			return nil, fmt.Errorf("buffer view %d [%d:%d] exceeds buffer %d of %d bytes: %w",
				i, start, end, bv.Buffer, len(data), common.ErrBufferViewOutOfRange)
		}
		views[i] = data[start:end:end]
	}
	return views, nil
}
