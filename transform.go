package arix

import "math"

// Mat4 is a 4x4 affine/projective matrix stored column-major: element
// (row r, column c) lives at index c*4+r.
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// ComposeMatrix builds Translate(pos) * Rotate(euler XYZ) * Scale(scale).
func ComposeMatrix(pos, euler, scale Vec3) Mat4 {
	a, b := math.Cos(euler.X), math.Sin(euler.X)
	c, d := math.Cos(euler.Y), math.Sin(euler.Y)
	e, f := math.Cos(euler.Z), math.Sin(euler.Z)
	ae, af, be, bf := a*e, a*f, b*e, b*f

	var m Mat4
	m[0] = c * e * scale.X
	m[1] = (af + be*d) * scale.X
	m[2] = (bf - ae*d) * scale.X

	m[4] = -c * f * scale.Y
	m[5] = (ae - bf*d) * scale.Y
	m[6] = (be + af*d) * scale.Y

	m[8] = d * scale.Z
	m[9] = -b * c * scale.Z
	m[10] = a * c * scale.Z

	m[12] = pos.X
	m[13] = pos.Y
	m[14] = pos.Z
	m[15] = 1
	return m
}

// Mul returns m * o.
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for c := 0; c < 4; c++ {
		for row := 0; row < 4; row++ {
			r[c*4+row] = m[row]*o[c*4] + m[4+row]*o[c*4+1] + m[8+row]*o[c*4+2] + m[12+row]*o[c*4+3]
		}
	}
	return r
}

// TransformPoint applies m to the point p (w = 1) without perspective divide.
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12],
		m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13],
		m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14],
	}
}

// TransformDir applies the upper 3x3 of m to the direction v.
func (m Mat4) TransformDir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// Project applies m to p and returns the clip-space coordinates after the
// perspective divide together with w.
func (m Mat4) Project(p Vec3) (Vec3, float64) {
	x := m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12]
	y := m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13]
	z := m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14]
	w := m[3]*p.X + m[7]*p.Y + m[11]*p.Z + m[15]
	if w > -1e-12 && w < 1e-12 {
		return Vec3{}, 0
	}
	return Vec3{x / w, y / w, z / w}, w
}

// Translation returns the translation column of m.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// Perspective returns a right-handed projection matrix mapping view space
// (camera looking down -Z) to clip space. fovY is in radians.
func Perspective(fovY, aspect, near, far float64) Mat4 {
	f := 1 / math.Tan(fovY/2)
	nf := 1 / (near - far)
	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// LookAtView returns the view matrix of a camera at eye looking at target.
func LookAtView(eye, target, up Vec3) Mat4 {
	z := eye.Sub(target).Normalize()
	if z.Len() == 0 {
		z = Vec3{0, 0, 1}
	}
	x := up.Cross(z).Normalize()
	if x.Len() == 0 {
		x = Vec3{1, 0, 0}
	}
	y := z.Cross(x)
	return Mat4{
		x.X, y.X, z.X, 0,
		x.Y, y.Y, z.Y, 0,
		x.Z, y.Z, z.Z, 0,
		-x.Dot(eye), -y.Dot(eye), -z.Dot(eye), 1,
	}
}

// lookRotation returns the Euler XYZ angles that orient an object at eye so
// its local +Z axis points at target, with up as the reference up vector.
func lookRotation(eye, target, up Vec3) Vec3 {
	z := target.Sub(eye).Normalize()
	if z.Len() == 0 {
		z = Vec3{0, 0, 1}
	}
	x := up.Cross(z)
	if x.Len() == 0 {
		// up parallel to the view direction: nudge z so a basis exists.
		if math.Abs(up.Z) == 1 {
			z.X += 1e-4
		} else {
			z.Z += 1e-4
		}
		z = z.Normalize()
		x = up.Cross(z)
	}
	x = x.Normalize()
	y := z.Cross(x)

	var m Mat4
	m[0], m[1], m[2] = x.X, x.Y, x.Z
	m[4], m[5], m[6] = y.X, y.Y, y.Z
	m[8], m[9], m[10] = z.X, z.Y, z.Z
	m[15] = 1
	return eulerFromMatrix(m)
}

// eulerFromMatrix extracts XYZ Euler angles from the (unscaled) rotation part
// of m.
func eulerFromMatrix(m Mat4) Vec3 {
	m11, m12, m13 := m[0], m[4], m[8]
	m22, m23 := m[5], m[9]
	m32, m33 := m[6], m[10]

	var e Vec3
	e.Y = math.Asin(math.Max(-1, math.Min(1, m13)))
	if math.Abs(m13) < 0.9999999 {
		e.X = math.Atan2(-m23, m33)
		e.Z = math.Atan2(-m12, m11)
	} else {
		e.X = math.Atan2(m32, m22)
		e.Z = 0
	}
	return e
}

// --- Node transforms ---

// updateWorldTransform recomputes a node's world matrix and world alpha.
// parentRecomputed indicates whether the parent was recomputed this frame,
// which forces recomputation of this node even if it's not dirty.
func updateWorldTransform(n *Node, parent Mat4, parentAlpha float64, parentRecomputed bool) {
	recompute := n.transformDirty || parentRecomputed
	if recompute {
		n.worldMatrix = parent.Mul(ComposeMatrix(n.Position, n.Rotation, n.Scale))
		n.worldAlpha = parentAlpha * n.Alpha
		n.transformDirty = false
	}

	for _, child := range n.children {
		updateWorldTransform(child, n.worldMatrix, n.worldAlpha, recompute)
	}
}

// SetPosition sets the node's local position and marks it dirty.
func (n *Node) SetPosition(x, y, z float64) {
	n.Position = Vec3{x, y, z}
	n.transformDirty = true
}

// SetScale sets a uniform local scale and marks the node dirty.
func (n *Node) SetScale(s float64) {
	n.Scale = Vec3{s, s, s}
	n.transformDirty = true
}

// SetRotation sets the node's Euler XYZ rotation (radians) and marks it dirty.
func (n *Node) SetRotation(x, y, z float64) {
	n.Rotation = Vec3{x, y, z}
	n.transformDirty = true
}

// SetAlpha sets the node's alpha and marks it dirty.
func (n *Node) SetAlpha(a float64) {
	n.Alpha = a
	n.transformDirty = true
}

// MarkDirty marks the node's transform as dirty, forcing recomputation
// on the next frame. Useful after bulk-setting fields directly.
func (n *Node) MarkDirty() {
	n.transformDirty = true
}

// WorldMatrix returns the node's world matrix as of the last update.
func (n *Node) WorldMatrix() Mat4 {
	return n.worldMatrix
}

// LocalToWorld converts a local-space point to world space.
func (n *Node) LocalToWorld(p Vec3) Vec3 {
	return n.worldMatrix.TransformPoint(p)
}
