package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
)

// maxFaceVerts caps the corners read from a single face line.
const maxFaceVerts = 32

// ObjMesh is a triangle soup read from a Wavefront OBJ file.
type ObjMesh struct {
	Name     string
	Vertices []float64 // (x, y, z) triples
	Indices  []int     // three vertex indices per triangle
	scale    float64
}

func NewObjMesh() *ObjMesh {
	return &ObjMesh{scale: 1}
}

func (m *ObjMesh) VertCount() int { return len(m.Vertices) / 3 }
func (m *ObjMesh) TriCount() int  { return len(m.Indices) / 3 }

// SetScale multiplies every vertex read afterwards.
func (m *ObjMesh) SetScale(scale float64) {
	m.scale = scale
}

// LoadObjFile reads the OBJ file at p.
func LoadObjFile(p string) (*ObjMesh, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, fmt.Errorf("load obj %s: %w", p, err)
	}
	defer f.Close()
	m := NewObjMesh()
	if err := m.Load(f); err != nil {
		return nil, fmt.Errorf("load obj %s: %w", p, err)
	}
	m.Name = path.Base(p)
	return m, nil
}

// Load parses vertex and face lines. Faces with more than three corners are
// fan triangulated, faces referencing missing vertices are skipped.
func (m *ObjMesh) Load(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		row := strings.TrimSpace(scanner.Text())
		if row == "" || strings.HasPrefix(row, "#") {
			continue
		}
		if err := m.parseRow(strings.Fields(row)); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}

func (m *ObjMesh) parseRow(ss []string) error {
	switch ss[0] {
	case "v":
		return m.parseVertex(ss[1:])
	case "f":
		return m.parseFace(ss[1:])
	}
	return nil
}

func (m *ObjMesh) parseVertex(ss []string) error {
	if len(ss) < 3 {
		return fmt.Errorf("vertex has %d components", len(ss))
	}
	var v [3]float64
	for i := range v {
		f, err := strconv.ParseFloat(ss[i], 64)
		if err != nil {
			return fmt.Errorf("parse vertex: %w", err)
		}
		v[i] = f * m.scale
	}
	m.Vertices = append(m.Vertices, v[0], v[1], v[2])
	return nil
}

func (m *ObjMesh) parseFace(ss []string) error {
	vertCount := m.VertCount()
	data := make([]int, 0, len(ss))
	for _, s := range ss {
		// v, v/vt, v//vn and v/vt/vn all start with the vertex index.
		vi, err := strconv.Atoi(strings.SplitN(s, "/", 2)[0])
		if err != nil {
			return fmt.Errorf("parse face: %w", err)
		}
		if vi < 0 {
			vi += vertCount
		} else {
			vi--
		}
		data = append(data, vi)
		if len(data) >= maxFaceVerts {
			break
		}
	}
	for i := 2; i < len(data); i++ {
		a, b, c := data[0], data[i-1], data[i]
		if a < 0 || a >= vertCount || b < 0 || b >= vertCount || c < 0 || c >= vertCount {
			continue
		}
		m.Indices = append(m.Indices, a, b, c)
	}
	return nil
}
