package loader

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	errInvalidGLTFVersion = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic    = errors.New("invalid GLB magic number")
	errInvalidGLBVersion  = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk   = errors.New("GLB file missing JSON chunk")
	errInvalidBufferURI   = errors.New("invalid buffer URI")
	errBufferSizeMismatch = errors.New("buffer size mismatch")
)

// gltfParserImpl is the implementation of the gltfParser interface.
type gltfParserImpl struct {
	baseDir        string
	document       *gltfDocument
	glbBinaryChunk []byte
}

// gltfParser loads a glTF/GLB document with its buffers and reads typed accessor data.
type gltfParser interface {
	// Parse loads a glTF or GLB file. GLB is detected from the extension or the magic number.
	Parse(path string) error

	// ParseReader parses a document from a stream.
	//
	// Parameters:
	//   - r: reader containing glTF JSON or GLB data
	//   - isGLB: true if the data is in GLB format
	//   - baseDir: directory used to resolve external buffer URIs
	//
	// Returns:
	//   - error: error if parsing fails
	ParseReader(r io.Reader, isGLB bool, baseDir string) error

	// Document returns the parsed document, or nil before a successful parse.
	Document() *gltfDocument

	// BaseDir returns the directory relative URIs resolve against.
	BaseDir() string

	// ReadVec2Accessor reads a VEC2 FLOAT accessor.
	ReadVec2Accessor(accessorIndex int) ([][2]float32, error)

	// ReadVec3Accessor reads a VEC3 FLOAT accessor.
	ReadVec3Accessor(accessorIndex int) ([][3]float32, error)

	// ReadVec4Accessor reads a VEC4 FLOAT accessor.
	ReadVec4Accessor(accessorIndex int) ([][4]float32, error)

	// ReadIndicesAccessor reads a SCALAR accessor of unsigned byte, short or int indices.
	//
	// Parameters:
	//   - accessorIndex: the index of the accessor
	//
	// Returns:
	//   - []uint32: the indices widened to uint32
	//   - error: error if reading fails
	ReadIndicesAccessor(accessorIndex int) ([]uint32, error)

	// ReadBufferView returns a copy of the raw bytes of a buffer view, used for embedded images.
	ReadBufferView(bufferViewIndex int) ([]byte, error)
}

var _ gltfParser = &gltfParserImpl{}

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

	if strings.EqualFold(filepath.Ext(path), ".glb") || (len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == gltfGLBMagic) {
		return p.parseGLB(data)
	}
	return p.parseGLTF(data)
}

func (p *gltfParserImpl) ParseReader(r io.Reader, isGLB bool, baseDir string) error {
	p.baseDir = baseDir

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}
	if isGLB {
		return p.parseGLB(data)
	}
	return p.parseGLTF(data)
}

func (p *gltfParserImpl) parseGLTF(data []byte) error {
	var doc gltfDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	return p.setDocument(&doc)
}

func (p *gltfParserImpl) parseGLB(data []byte) error {
	if len(data) < 12 {
		return errors.New("GLB file too small")
	}
	r := bytes.NewReader(data)

	var header gltfGLBHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to read GLB header: %w", err)
	}
	if header.Magic != gltfGLBMagic {
		return errInvalidGLBMagic
	}
	if header.Version != gltfGLBVersion {
		return errInvalidGLBVersion
	}

	var jsonData []byte
	for {
		var chunk gltfGLBChunkHeader
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("failed to read chunk header: %w", err)
		}
		body := make([]byte, chunk.ChunkLength)
		if _, err := io.ReadFull(r, body); err != nil {
			return fmt.Errorf("failed to read chunk data: %w", err)
		}
		switch chunk.ChunkType {
		case gltfGLBChunkJSON:
			jsonData = body
		case gltfGLBChunkBIN:
			p.glbBinaryChunk = body
		}
	}
	if jsonData == nil {
		return errMissingJSONChunk
	}

	var doc gltfDocument
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("failed to parse glTF JSON: %w", err)
	}
	return p.setDocument(&doc)
}

func (p *gltfParserImpl) setDocument(doc *gltfDocument) error {
	if !strings.HasPrefix(doc.Asset.Version, "2.") {
		return errInvalidGLTFVersion
	}
	if err := p.loadBuffers(doc); err != nil {
		return fmt.Errorf("failed to load buffers: %w", err)
	}
	p.document = doc
	return nil
}

// loadBuffers resolves every buffer from the GLB binary chunk, a data URI or an external file.
func (p *gltfParserImpl) loadBuffers(doc *gltfDocument) error {
	for i := range doc.Buffers {
		buf := &doc.Buffers[i]

		switch {
		case buf.URI == "" && i == 0 && p.glbBinaryChunk != nil:
			buf.Data = p.glbBinaryChunk
		case buf.URI == "":
			return fmt.Errorf("buffer %d has no URI and no GLB binary chunk", i)
		case strings.HasPrefix(buf.URI, "data:"):
			data, _, err := decodeDataURI(buf.URI)
			if err != nil {
				return fmt.Errorf("buffer %d: %w", i, err)
			}
			buf.Data = data
		default:
			data, err := os.ReadFile(filepath.Join(p.baseDir, buf.URI))
			if err != nil {
				return fmt.Errorf("buffer %d: failed to load %q: %w", i, buf.URI, err)
			}
			buf.Data = data
		}

		if len(buf.Data) < buf.ByteLength {
			return fmt.Errorf("buffer %d: %w", i, errBufferSizeMismatch)
		}
	}
	return nil
}

// decodeDataURI decodes a base64 data URI of the form data:[<mediatype>];base64,<data>.
func decodeDataURI(uri string) ([]byte, string, error) {
	header, encoded, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, "", errInvalidBufferURI
	}
	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return nil, "", fmt.Errorf("unsupported data URI encoding: %s", header)
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode base64: %w", err)
	}
	return data, mimeType, nil
}

// readAccessorData gathers the elements of an accessor into a tightly packed byte slice,
// honoring the buffer view stride.
func (p *gltfParserImpl) readAccessorData(accessorIndex int) (*gltfAccessor, []byte, error) {
	if p.document == nil {
		return nil, nil, errors.New("no document loaded")
	}
	if accessorIndex < 0 || accessorIndex >= len(p.document.Accessors) {
		return nil, nil, fmt.Errorf("accessor index %d out of range", accessorIndex)
	}
	acc := &p.document.Accessors[accessorIndex]
	if acc.Sparse != nil {
		return nil, nil, errors.New("sparse accessors are not supported")
	}
	if acc.BufferView == nil || *acc.BufferView >= len(p.document.BufferViews) {
		return nil, nil, errors.New("accessor has no valid bufferView")
	}

	bv := &p.document.BufferViews[*acc.BufferView]
	if bv.Buffer < 0 || bv.Buffer >= len(p.document.Buffers) {
		return nil, nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}
	buf := p.document.Buffers[bv.Buffer].Data

	elementSize := gltfComponentTypeSize(acc.ComponentType) * gltfAccessorTypeComponentCount(acc.Type)
	if elementSize == 0 {
		return nil, nil, fmt.Errorf("unsupported accessor layout: type=%s, componentType=%d", acc.Type, acc.ComponentType)
	}
	stride := elementSize
	if bv.ByteStride != nil && *bv.ByteStride > 0 {
		stride = *bv.ByteStride
	}

	start := bv.ByteOffset + acc.ByteOffset
	if acc.Count > 0 && start+(acc.Count-1)*stride+elementSize > len(buf) {
		return nil, nil, fmt.Errorf("accessor %d exceeds buffer bounds", accessorIndex)
	}

	out := make([]byte, acc.Count*elementSize)
	for i := 0; i < acc.Count; i++ {
		src := start + i*stride
		copy(out[i*elementSize:(i+1)*elementSize], buf[src:src+elementSize])
	}
	return acc, out, nil
}

// readFloatAccessor decodes a FLOAT accessor of the given type into fixed-size arrays.
func readFloatAccessor[T [2]float32 | [3]float32 | [4]float32](p *gltfParserImpl, accessorIndex int, accessorType string) ([]T, error) {
	acc, data, err := p.readAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != accessorType || acc.ComponentType != gltfComponentTypeFloat {
		return nil, fmt.Errorf("accessor is not %s FLOAT: type=%s, componentType=%d", accessorType, acc.Type, acc.ComponentType)
	}
	result := make([]T, acc.Count)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *gltfParserImpl) ReadVec2Accessor(accessorIndex int) ([][2]float32, error) {
	return readFloatAccessor[[2]float32](p, accessorIndex, gltfAccessorTypeVec2)
}

func (p *gltfParserImpl) ReadVec3Accessor(accessorIndex int) ([][3]float32, error) {
	return readFloatAccessor[[3]float32](p, accessorIndex, gltfAccessorTypeVec3)
}

func (p *gltfParserImpl) ReadVec4Accessor(accessorIndex int) ([][4]float32, error) {
	return readFloatAccessor[[4]float32](p, accessorIndex, gltfAccessorTypeVec4)
}

func (p *gltfParserImpl) ReadIndicesAccessor(accessorIndex int) ([]uint32, error) {
	acc, data, err := p.readAccessorData(accessorIndex)
	if err != nil {
		return nil, err
	}
	if acc.Type != gltfAccessorTypeScalar {
		return nil, fmt.Errorf("index accessor is not SCALAR: type=%s", acc.Type)
	}

	result := make([]uint32, acc.Count)
	switch acc.ComponentType {
	case gltfComponentTypeUnsignedByte:
		for i := range result {
			result[i] = uint32(data[i])
		}
	case gltfComponentTypeUnsignedShort:
		for i := range result {
			result[i] = uint32(binary.LittleEndian.Uint16(data[i*2:]))
		}
	case gltfComponentTypeUnsignedInt:
		for i := range result {
			result[i] = binary.LittleEndian.Uint32(data[i*4:])
		}
	default:
		return nil, fmt.Errorf("unsupported index component type: %d", acc.ComponentType)
	}
	return result, nil
}

func (p *gltfParserImpl) ReadBufferView(bufferViewIndex int) ([]byte, error) {
	doc := p.document
	if doc == nil {
		return nil, errors.New("no document loaded")
	}
	if bufferViewIndex < 0 || bufferViewIndex >= len(doc.BufferViews) {
		return nil, fmt.Errorf("bufferView index %d out of range", bufferViewIndex)
	}
	bv := &doc.BufferViews[bufferViewIndex]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer index %d out of range", bv.Buffer)
	}
	buf := doc.Buffers[bv.Buffer].Data
	end := bv.ByteOffset + bv.ByteLength
	if end > len(buf) {
		return nil, fmt.Errorf("bufferView exceeds buffer bounds: offset=%d length=%d bufSize=%d", bv.ByteOffset, bv.ByteLength, len(buf))
	}
	return bytes.Clone(buf[bv.ByteOffset:end]), nil
}

func gltfComponentTypeSize(componentType int) int {
	switch componentType {
	case gltfComponentTypeByte, gltfComponentTypeUnsignedByte:
		return 1
	case gltfComponentTypeShort, gltfComponentTypeUnsignedShort:
		return 2
	case gltfComponentTypeUnsignedInt, gltfComponentTypeFloat:
		return 4
	default:
		return 0
	}
}

func gltfAccessorTypeComponentCount(accessorType string) int {
	switch accessorType {
	case gltfAccessorTypeScalar:
		return 1
	case gltfAccessorTypeVec2:
		return 2
	case gltfAccessorTypeVec3:
		return 3
	case gltfAccessorTypeVec4:
		return 4
	default:
		return 0
	}
}
