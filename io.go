package polyreg

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ReadOBJ loads the vertices, vertex normals and polygon faces of a Wavefront
// OBJ stream. Texture coordinates, groups and materials are ignored.
func ReadOBJ(r io.Reader, name string) (m *Mesh, err error) {
	m = NewMesh(name)
	var normals []r3.Vec
	faceNormals := make(map[int]int)

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v", "vn":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: expected three coordinates", lineNo)
			}
			var p r3.Vec
			if p, err = parseVec(fields[1:4]); err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			if fields[0] == "v" {
				m.AddVertex(p)
			} else {
				normals = append(normals, p)
			}
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: %w: fewer than three vertices", lineNo, ErrMalformedFace)
			}
			verts := make([]int, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				vi, ni, perr := parseFaceRef(ref, len(m.Vertices), len(normals))
				if perr != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, perr)
				}
				verts = append(verts, vi)
				if ni >= 0 {
					faceNormals[vi] = ni
				}
			}
			m.AddFace(verts...)
		}
	}
	if err = scanner.Err(); err != nil {
		return nil, err
	}

	for vi, ni := range faceNormals {
		m.Vertices[vi].N = normals[ni]
	}
	if len(faceNormals) == 0 && len(normals) == len(m.Vertices) {
		for vi := range m.Vertices {
			m.Vertices[vi].N = normals[vi]
		}
	}
	return m, nil
}

func parseVec(fields []string) (p r3.Vec, err error) {
	var c [3]float64
	for i, s := range fields {
		c[i], err = strconv.ParseFloat(s, 64)
		if err != nil {
			err = errors.New("Could not parse float64 from: " + s)
			return
		}
	}
	return r3.Vec{X: c[0], Y: c[1], Z: c[2]}, nil
}

// parseFaceRef parses "v", "v/t", "v/t/n" or "v//n" into zero based vertex
// and normal indices; the normal index is -1 when absent. Negative OBJ
// indices count back from the last element read so far.
func parseFaceRef(ref string, numVerts, numNormals int) (vi, ni int, err error) {
	parts := strings.Split(ref, "/")
	vi, err = resolveIndex(parts[0], numVerts)
	if err != nil {
		return
	}
	ni = -1
	if len(parts) == 3 && parts[2] != "" {
		ni, err = resolveIndex(parts[2], numNormals)
	}
	return
}

func resolveIndex(s string, count int) (int, error) {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.New("Could not parse int from: " + s)
	}
	if i < 0 {
		i = count + i
	} else {
		i--
	}
	if i < 0 || i >= count {
		return 0, fmt.Errorf("%w: index %s out of range", ErrMalformedFace, s)
	}
	return i, nil
}

func ReadOBJFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadOBJ(f, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
}

// WriteOBJ writes the live vertices, their normals and the live faces of m.
func (m *Mesh) WriteOBJ(w io.Writer) (err error) {
	bw := bufio.NewWriter(w)
	index := make([]int, len(m.Vertices))
	next := 1
	m.EachVertex(func(vi int, v *Vertex) {
		index[vi] = next
		next++
		fmt.Fprintf(bw, "v %g %g %g\n", v.P.X, v.P.Y, v.P.Z)
	})
	m.EachVertex(func(_ int, v *Vertex) {
		fmt.Fprintf(bw, "vn %g %g %g\n", v.N.X, v.N.Y, v.N.Z)
	})
	m.EachFace(func(_ int, f *Face) {
		bw.WriteString("f")
		for _, vi := range f.Verts {
			fmt.Fprintf(bw, " %d//%d", index[vi], index[vi])
		}
		bw.WriteString("\n")
	})
	return bw.Flush()
}

func (m *Mesh) WriteOBJFile(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return m.WriteOBJ(f)
}
