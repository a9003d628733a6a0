package arix

// CommandType identifies the kind of render command.
type CommandType uint8

const (
	CommandMesh   CommandType = iota // one mesh under one model matrix
	CommandPoints                    // every point of an unsorted PointField
	CommandPoint                     // a single point of a depth-sorted PointField
)

// RenderCommand is a single draw instruction emitted during scene traversal.
// Instanced nodes emit one command per instance so instances of different
// groups interleave correctly in the back-to-front sort.
type RenderCommand struct {
	Type        CommandType
	Model       Mat4
	Depth       float64 // view-space distance of the command's origin
	Color       Color   // node tint with world alpha folded into A
	BlendMode   BlendMode
	RenderLayer uint8
	treeOrder   int // assigned during traversal for stable sort

	mesh     *Mesh
	material *Material
	points   *PointField
	index    int // point index for CommandPoint
}

// traverse walks the node tree depth-first and emits render commands for
// visible, renderable nodes. World transforms must already be current.
func (s *Scene) traverse(n *Node, view Mat4, treeOrder *int) {
	if !n.Visible {
		return
	}

	if n.Renderable && n.worldAlpha > 0 {
		tint := Color{n.Color.R, n.Color.G, n.Color.B, n.Color.A * n.worldAlpha}
		switch n.Type {
		case NodeTypeMesh:
			if n.Mesh != nil && n.Material != nil {
				s.emitMesh(n, n.worldMatrix, view, tint, treeOrder)
			}
		case NodeTypeInstanced:
			if n.Mesh != nil && n.Material != nil && n.Instances != nil {
				for i := 0; i < n.Instances.Count(); i++ {
					s.emitMesh(n, n.worldMatrix.Mul(n.Instances.MatrixAt(i)), view, tint, treeOrder)
				}
			}
		case NodeTypePoints:
			if n.Points != nil && n.Points.Len() > 0 {
				s.emitPoints(n, view, tint, treeOrder)
			}
			// NodeTypeContainer doesn't emit commands
		}
	}

	for _, child := range n.children {
		s.traverse(child, view, treeOrder)
	}
}

// instanceMatrices returns the world matrix of every instance of n. The cache
// is rebuilt only when the buffer was marked dirty, replaced, or resized, or
// when the node's own world transform moved. Rebuilding clears the dirty flag.
func (n *Node) instanceMatrices() []Mat4 {
	b := n.Instances
	if !b.Dirty() && b == n.instanceSource && b.Version() == n.instanceVersion &&
		len(n.instanceWorld) == b.Count() && n.worldMatrix == n.instanceParent {
		return n.instanceWorld
	}
	count := b.Count()
	if cap(n.instanceWorld) < count {
		n.instanceWorld = make([]Mat4, count)
	}
	n.instanceWorld = n.instanceWorld[:count]
	for i := range n.instanceWorld {
		n.instanceWorld[i] = n.worldMatrix.Mul(b.MatrixAt(i))
	}
	n.instanceParent = n.worldMatrix
	n.instanceSource = b
	n.instanceVersion = b.Version()
	b.ClearDirty()
	return n.instanceWorld
}

// emitMesh appends one CommandMesh unless the mesh lies entirely behind the
// near plane.
func (s *Scene) emitMesh(n *Node, model, view Mat4, tint Color, treeOrder *int) {
	depth := -view.TransformPoint(model.Translation()).Z
	if depth+n.Mesh.Radius()*maxAxisScale(model) < s.camera.Near {
		return
	}
	*treeOrder++
	s.commands = append(s.commands, RenderCommand{
		Type:        CommandMesh,
		Model:       model,
		Depth:       depth,
		Color:       tint,
		BlendMode:   n.BlendMode,
		RenderLayer: n.RenderLayer,
		treeOrder:   *treeOrder,
		mesh:        n.Mesh,
		material:    n.Material,
	})
}

// emitPoints appends either one command for the whole field or one per point.
func (s *Scene) emitPoints(n *Node, view Mat4, tint Color, treeOrder *int) {
	f := n.Points
	if !f.config.DepthSorted {
		*treeOrder++
		s.commands = append(s.commands, RenderCommand{
			Type:        CommandPoints,
			Model:       n.worldMatrix,
			Depth:       -view.TransformPoint(n.worldMatrix.Translation()).Z,
			Color:       tint,
			BlendMode:   n.BlendMode,
			RenderLayer: n.RenderLayer,
			treeOrder:   *treeOrder,
			points:      f,
		})
		return
	}
	mv := view.Mul(n.worldMatrix)
	for i := range f.points {
		depth := -mv.TransformPoint(f.points[i].pos).Z
		if depth < s.camera.Near {
			continue
		}
		*treeOrder++
		s.commands = append(s.commands, RenderCommand{
			Type:        CommandPoint,
			Model:       n.worldMatrix,
			Depth:       depth,
			Color:       tint,
			BlendMode:   n.BlendMode,
			RenderLayer: n.RenderLayer,
			treeOrder:   *treeOrder,
			points:      f,
			index:       i,
		})
	}
}

// maxAxisScale returns the largest basis vector length of m.
func maxAxisScale(m Mat4) float64 {
	sx := Vec3{m[0], m[1], m[2]}.Len()
	sy := Vec3{m[4], m[5], m[6]}.Len()
	sz := Vec3{m[8], m[9], m[10]}.Len()
	return max(sx, sy, sz)
}

// --- Merge sort ---

// commandLessOrEqual returns true if a should sort before or at the same
// position as b: lower layers first, then farther commands first.
// Using <= for treeOrder ensures stability.
func commandLessOrEqual(a, b RenderCommand) bool {
	if a.RenderLayer != b.RenderLayer {
		return a.RenderLayer < b.RenderLayer
	}
	if a.Depth != b.Depth {
		return a.Depth > b.Depth
	}
	return a.treeOrder <= b.treeOrder
}

// mergeSort sorts s.commands in-place using s.sortBuf as scratch space.
// Bottom-up merge sort: zero allocations after the sort buffer reaches high-water mark.
func (s *Scene) mergeSort() {
	n := len(s.commands)
	if n <= 1 {
		return
	}
	if cap(s.sortBuf) < n {
		s.sortBuf = make([]RenderCommand, n)
	}
	s.sortBuf = s.sortBuf[:n]

	a := s.commands
	b := s.sortBuf
	swapped := false

	for width := 1; width < n; width *= 2 {
		for i := 0; i < n; i += 2 * width {
			lo := i
			mid := min(lo+width, n)
			hi := min(lo+2*width, n)
			mergeRun(a, b, lo, mid, hi)
		}
		a, b = b, a
		swapped = !swapped
	}

	if swapped {
		copy(s.commands, s.sortBuf)
	}
}

// mergeRun merges two sorted runs [lo, mid) and [mid, hi) from src into dst.
func mergeRun(src, dst []RenderCommand, lo, mid, hi int) {
	i, j, k := lo, mid, lo
	for i < mid && j < hi {
		if commandLessOrEqual(src[i], src[j]) {
			dst[k] = src[i]
			i++
		} else {
			dst[k] = src[j]
			j++
		}
		k++
	}
	for i < mid {
		dst[k] = src[i]
		i++
		k++
	}
	for j < hi {
		dst[k] = src[j]
		j++
		k++
	}
}
