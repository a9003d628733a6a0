package arix

import "math"

// Mesh is an indexed triangle list in local space. Triangles are wound
// counter-clockwise when seen from outside, which the renderer relies on for
// backface culling. Meshes are shared between nodes and never mutated after
// construction.
type Mesh struct {
	Name      string
	Positions []Vec3
	Indices   []uint16

	// radius is the bounding sphere radius around the local origin.
	radius float64
}

// NumTriangles returns the number of triangles in the mesh.
func (m *Mesh) NumTriangles() int {
	return len(m.Indices) / 3
}

// Radius returns the bounding sphere radius around the local origin.
func (m *Mesh) Radius() float64 {
	return m.radius
}

// faceNormal returns the unit normal of triangle tri in local space.
func (m *Mesh) faceNormal(tri int) Vec3 {
	a := m.Positions[m.Indices[tri*3]]
	b := m.Positions[m.Indices[tri*3+1]]
	c := m.Positions[m.Indices[tri*3+2]]
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

func newMesh(name string, pos []Vec3, idx []uint16) *Mesh {
	m := &Mesh{Name: name, Positions: pos, Indices: idx}
	for _, p := range pos {
		if l := p.Len(); l > m.radius {
			m.radius = l
		}
	}
	return m
}

// orientOutward flips any triangle whose normal points toward the interior
// point center. Only valid for shapes that are star-shaped around center.
func orientOutward(m *Mesh, center Vec3) {
	for t := 0; t < m.NumTriangles(); t++ {
		i0, i1, i2 := m.Indices[t*3], m.Indices[t*3+1], m.Indices[t*3+2]
		a, b, c := m.Positions[i0], m.Positions[i1], m.Positions[i2]
		n := b.Sub(a).Cross(c.Sub(a))
		centroid := a.Add(b).Add(c).Scale(1.0 / 3)
		if n.Dot(centroid.Sub(center)) < 0 {
			m.Indices[t*3+1], m.Indices[t*3+2] = i2, i1
		}
	}
}

// NewCone builds a cone along +Y centered on the origin: the apex sits at
// height/2 and the capped base at -height/2.
func NewCone(radius, height float64, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	half := height / 2
	pos := make([]Vec3, 0, segments+2)
	for i := 0; i < segments; i++ {
		theta := float64(i) / float64(segments) * 2 * math.Pi
		pos = append(pos, Vec3{radius * math.Sin(theta), -half, radius * math.Cos(theta)})
	}
	apex := uint16(len(pos))
	pos = append(pos, Vec3{0, half, 0})
	base := uint16(len(pos))
	pos = append(pos, Vec3{0, -half, 0})

	idx := make([]uint16, 0, segments*6)
	for i := 0; i < segments; i++ {
		a := uint16(i)
		b := uint16((i + 1) % segments)
		idx = append(idx, a, b, apex, b, a, base)
	}
	m := newMesh("cone", pos, idx)
	orientOutward(m, Vec3{0, -half / 2, 0})
	return m
}

// NewDodecahedron builds a regular dodecahedron inscribed in a sphere of the
// given radius.
func NewDodecahedron(radius float64) *Mesh {
	t := (1 + math.Sqrt(5)) / 2
	r := 1 / t
	raw := []float64{
		-1, -1, -1, -1, -1, 1, -1, 1, -1, -1, 1, 1,
		1, -1, -1, 1, -1, 1, 1, 1, -1, 1, 1, 1,
		0, -r, -t, 0, -r, t, 0, r, -t, 0, r, t,
		-r, -t, 0, -r, t, 0, r, -t, 0, r, t, 0,
		-t, 0, -r, t, 0, -r, -t, 0, r, t, 0, r,
	}
	idx := []uint16{
		3, 11, 7, 3, 7, 15, 3, 15, 13,
		7, 19, 17, 7, 17, 6, 7, 6, 15,
		17, 4, 8, 17, 8, 10, 17, 10, 6,
		8, 0, 16, 8, 16, 2, 8, 2, 10,
		0, 12, 1, 0, 1, 18, 0, 18, 16,
		6, 10, 2, 6, 2, 13, 6, 13, 15,
		2, 16, 18, 2, 18, 3, 2, 3, 13,
		18, 1, 9, 18, 9, 11, 18, 11, 3,
		4, 14, 12, 4, 12, 0, 4, 0, 8,
		11, 9, 5, 11, 5, 19, 11, 19, 7,
		19, 5, 14, 19, 14, 4, 19, 4, 17,
		1, 12, 14, 1, 14, 5, 1, 5, 9,
	}
	pos := make([]Vec3, len(raw)/3)
	for i := range pos {
		pos[i] = Vec3{raw[i*3], raw[i*3+1], raw[i*3+2]}.Normalize().Scale(radius)
	}
	m := newMesh("dodecahedron", pos, idx)
	orientOutward(m, Vec3{})
	return m
}

// NewSphere builds a UV sphere. widthSegments wraps around Y, heightSegments
// runs pole to pole.
func NewSphere(radius float64, widthSegments, heightSegments int) *Mesh {
	if widthSegments < 3 {
		widthSegments = 3
	}
	if heightSegments < 2 {
		heightSegments = 2
	}
	pos := make([]Vec3, 0, (widthSegments+1)*(heightSegments+1))
	for y := 0; y <= heightSegments; y++ {
		v := float64(y) / float64(heightSegments)
		phi := v * math.Pi
		for x := 0; x <= widthSegments; x++ {
			u := float64(x) / float64(widthSegments)
			theta := u * 2 * math.Pi
			pos = append(pos, Vec3{
				-radius * math.Cos(theta) * math.Sin(phi),
				radius * math.Cos(phi),
				radius * math.Sin(theta) * math.Sin(phi),
			})
		}
	}
	row := widthSegments + 1
	var idx []uint16
	for y := 0; y < heightSegments; y++ {
		for x := 0; x < widthSegments; x++ {
			a := uint16(y*row + x + 1)
			b := uint16(y*row + x)
			c := uint16((y+1)*row + x)
			d := uint16((y+1)*row + x + 1)
			if y != 0 {
				idx = append(idx, a, b, d)
			}
			if y != heightSegments-1 {
				idx = append(idx, b, c, d)
			}
		}
	}
	m := newMesh("sphere", pos, idx)
	orientOutward(m, Vec3{})
	return m
}

// NewDisc builds a flat disc in the XZ plane facing +Y.
func NewDisc(radius float64, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	pos := make([]Vec3, 0, segments+1)
	pos = append(pos, Vec3{})
	for i := 0; i < segments; i++ {
		theta := float64(i) / float64(segments) * 2 * math.Pi
		pos = append(pos, Vec3{radius * math.Cos(theta), 0, -radius * math.Sin(theta)})
	}
	idx := make([]uint16, 0, segments*3)
	for i := 0; i < segments; i++ {
		a := uint16(i + 1)
		b := uint16((i+1)%segments + 1)
		idx = append(idx, 0, a, b)
	}
	return newMesh("disc", pos, idx)
}
