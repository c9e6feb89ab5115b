package loader

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/graphics"
)

// objVertexKey identifies a unique position/uv/normal combination. Zero means absent.
type objVertexKey struct {
	v, vt, vn int
}

// objPart accumulates one mesh: a run of faces sharing an object/group and a material.
type objPart struct {
	mesh  ImportedMesh
	cache map[objVertexKey]uint32

	missingNormals bool
}

// objParser decodes Wavefront OBJ geometry and its MTL material libraries.
type objParser struct {
	baseDir string
	// openFile resolves a material library by its resolved path.
	openFile func(path string) (io.ReadCloser, error)

	positions []common.Vector3
	uvs       []common.Vector2
	normals   []common.Vector3

	parts   []*objPart
	current *objPart

	objectName string
	material   int

	materials     []common.ImportedMaterial
	materialIndex map[string]int

	line int
}

func newOBJParser(baseDir string, openFile func(string) (io.ReadCloser, error)) *objParser {
	return &objParser{
		baseDir:       baseDir,
		openFile:      openFile,
		material:      -1,
		materialIndex: make(map[string]int),
	}
}

// parse reads an OBJ stream and returns the decoded meshes and materials.
func (p *objParser) parse(r io.Reader) ([]ImportedMesh, []common.ImportedMaterial, error) {
	err := scanLines(r, func(line int, keyword string, fields []string, rest string) error {
		p.line = line
		return p.parseOBJLine(keyword, fields, rest)
	})
	if err != nil {
		return nil, nil, err
	}

	var meshes []ImportedMesh
	for _, part := range p.parts {
		if len(part.mesh.Indices) == 0 {
			continue
		}
		part.mesh.hasNormals = !part.missingNormals
		meshes = append(meshes, part.mesh)
	}
	return meshes, p.materials, nil
}

func (p *objParser) parseOBJLine(keyword string, fields []string, rest string) error {
	switch keyword {
	case "v":
		v, err := p.parseFloats(fields, 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, common.Vec3(v[0], v[1], v[2]))
	case "vt":
		v, err := p.parseFloats(fields, 2)
		if err != nil {
			return err
		}
		p.uvs = append(p.uvs, common.Vector2{X: v[0], Y: v[1]})
	case "vn":
		v, err := p.parseFloats(fields, 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, common.Vec3(v[0], v[1], v[2]))
	case "f":
		return p.parseFace(fields)
	case "o", "g":
		p.objectName = rest
		p.current = nil
	case "usemtl":
		idx, ok := p.materialIndex[rest]
		if !ok {
			common.Logger().Warn("obj material not found, using default", "material", rest, "line", p.line)
			idx = -1
		}
		if idx != p.material {
			p.material = idx
			p.current = nil
		}
	case "mtllib":
		for _, name := range fields {
			if err := p.loadMaterialLibrary(name); err != nil {
				common.Logger().Warn("obj material library not loaded", "library", name, "error", err)
			}
		}
	}
	// s, l, p and unknown statements are ignored
	return nil
}

// parseFace triangulates a polygon as a fan around its first vertex.
func (p *objParser) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("line %d: face needs at least 3 vertices, got %d", p.line, len(fields))
	}
	part := p.part()

	corners := make([]uint32, len(fields))
	for i, field := range fields {
		key, err := p.parseFaceVertex(field)
		if err != nil {
			return err
		}
		corners[i] = part.vertex(key, p)
	}
	for i := 1; i+1 < len(corners); i++ {
		part.mesh.Indices = append(part.mesh.Indices, corners[0], corners[i], corners[i+1])
	}
	return nil
}

// parseFaceVertex parses v, v/vt, v//vn or v/vt/vn. Negative indices count back from the
// latest element.
func (p *objParser) parseFaceVertex(field string) (objVertexKey, error) {
	parts := strings.Split(field, "/")
	if len(parts) > 3 {
		return objVertexKey{}, fmt.Errorf("line %d: invalid face vertex %q", p.line, field)
	}
	var key objVertexKey
	targets := [3]*int{&key.v, &key.vt, &key.vn}
	counts := [3]int{len(p.positions), len(p.uvs), len(p.normals)}
	for i, s := range parts {
		if s == "" {
			if i == 0 {
				return objVertexKey{}, fmt.Errorf("line %d: face vertex %q has no position", p.line, field)
			}
			continue
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return objVertexKey{}, fmt.Errorf("line %d: invalid index %q: %w", p.line, s, err)
		}
		if n < 0 {
			n = counts[i] + n + 1
		}
		if n < 1 || n > counts[i] {
			return objVertexKey{}, fmt.Errorf("line %d: index %s out of range", p.line, s)
		}
		*targets[i] = n
	}
	return key, nil
}

func (p *objParser) part() *objPart {
	if p.current == nil {
		p.current = &objPart{
			mesh: ImportedMesh{
				Name:          p.objectName,
				MaterialIndex: p.material,
			},
			cache: make(map[objVertexKey]uint32),
		}
		p.parts = append(p.parts, p.current)
	}
	return p.current
}

// vertex returns the index of the vertex for key, appending it on first use.
func (part *objPart) vertex(key objVertexKey, p *objParser) uint32 {
	if idx, ok := part.cache[key]; ok {
		return idx
	}
	v := graphics.Vertex{Position: p.positions[key.v-1]}
	if key.vt > 0 {
		v.UV = p.uvs[key.vt-1]
	}
	if key.vn > 0 {
		v.Normal = p.normals[key.vn-1]
	} else {
		part.missingNormals = true
	}
	idx := uint32(len(part.mesh.Vertices))
	part.mesh.Vertices = append(part.mesh.Vertices, v)
	part.cache[key] = idx
	return idx
}

func (p *objParser) loadMaterialLibrary(name string) error {
	if p.openFile == nil {
		return fmt.Errorf("no file access for %s", name)
	}
	f, err := p.openFile(p.resolve(name))
	if err != nil {
		return err
	}
	defer f.Close()

	current := -1
	return scanLines(f, func(line int, keyword string, fields []string, rest string) error {
		if keyword == "newmtl" {
			current = len(p.materials)
			p.materialIndex[rest] = current
			p.materials = append(p.materials, common.ImportedMaterial{Name: rest})
			return nil
		}
		if current < 0 {
			return nil
		}
		return p.parseMTLLine(&p.materials[current], line, keyword, fields)
	})
}

func (p *objParser) parseMTLLine(mat *common.ImportedMaterial, line int, keyword string, fields []string) error {
	color := func() (common.Color, error) {
		v, err := parseFloatFields(fields, 3)
		if err != nil {
			return common.Color{}, err
		}
		return common.Color{R: v[0], G: v[1], B: v[2], A: 1}, nil
	}

	var err error
	switch keyword {
	case "Ka":
		mat.Ambient, err = color()
	case "Kd":
		alpha := common.Coalesce(mat.Diffuse.A, 1)
		mat.Diffuse, err = color()
		mat.Diffuse.A = alpha
	case "Ks":
		mat.Specular, err = color()
	case "Ke":
		mat.Emissive, err = color()
	case "Ns":
		var v []float32
		if v, err = parseFloatFields(fields, 1); err == nil {
			mat.Shininess = v[0]
		}
	case "d", "Tr":
		var v []float32
		if v, err = parseFloatFields(fields, 1); err == nil {
			alpha := common.Clamp(v[0], 0, 1)
			if keyword == "Tr" {
				alpha = 1 - alpha
			}
			mat.Diffuse.A = alpha
		}
	case "map_Kd":
		mat.DiffuseTexture = p.textureRef("diffuse", fields)
	case "map_Ks":
		mat.SpecularTexture = p.textureRef("specular", fields)
	case "norm", "map_Kn":
		mat.NormalTexture = p.textureRef("normal", fields)
	case "bump", "map_bump", "map_Bump", "disp":
		mat.BumpTexture = p.textureRef("bump", fields)
	}
	if err != nil {
		return fmt.Errorf("mtl line %d: %w", line, err)
	}
	return nil
}

// textureRef takes the last field as the file name, skipping map options such as -bm 1.
func (p *objParser) textureRef(name string, fields []string) *common.ImportedTexture {
	if len(fields) == 0 {
		return nil
	}
	return &common.ImportedTexture{Name: name, Path: p.resolve(fields[len(fields)-1])}
}

func (p *objParser) resolve(name string) string {
	name = filepath.FromSlash(name)
	if filepath.IsAbs(name) || p.baseDir == "" {
		return name
	}
	return filepath.Join(p.baseDir, name)
}

func (p *objParser) parseFloats(fields []string, n int) ([]float32, error) {
	v, err := parseFloatFields(fields, n)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", p.line, err)
	}
	return v, nil
}

// parseFloatFields parses the first n fields. Extra fields (such as a w component) are ignored.
func parseFloatFields(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", fields[i], err)
		}
		out[i] = float32(f)
	}
	return out, nil
}

// scanLines calls fn for each statement with its keyword, its fields and the raw text after
// the keyword. Comments and blank lines are skipped.
func scanLines(r io.Reader, fn func(line int, keyword string, fields []string, rest string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), fields[0]))
		if err := fn(line, fields[0], fields[1:], rest); err != nil {
			return err
		}
	}
	return scanner.Err()
}
