package arix

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// pointSpriteRadius is the radius in pixels of the generated soft dot that
// point fields are drawn with; quads scale it to the point size.
const pointSpriteRadius = 16

var (
	whitePixel  *ebiten.Image
	pointSprite *ebiten.Image
)

// ensureWhitePixel returns a shared 1x1 white sub-image used as the source
// texture for flat-shaded triangles.
func ensureWhitePixel() *ebiten.Image {
	if whitePixel == nil {
		img := ebiten.NewImage(3, 3)
		img.Fill(ColorWhite.toRGBA())
		whitePixel = img.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
	}
	return whitePixel
}

// ensurePointSprite returns the shared feathered dot used for points.
func ensurePointSprite() *ebiten.Image {
	if pointSprite == nil {
		pointSprite = generateCircle(pointSpriteRadius)
	}
	return pointSprite
}

// batchKey groups render commands that can be submitted in a single draw call.
type batchKey struct {
	source *ebiten.Image
	blend  BlendMode
}

func (s *Scene) commandBatchKey(cmd *RenderCommand) batchKey {
	if cmd.Type == CommandMesh {
		return batchKey{source: ensureWhitePixel(), blend: cmd.BlendMode}
	}
	return batchKey{source: ensurePointSprite(), blend: cmd.BlendMode}
}

// projected is a vertex after the model-view-projection transform.
type projected struct {
	world Vec3
	sx    float32
	sy    float32
	ndc   Vec3
	w     float64
}

// submitBatches iterates sorted commands, coalescing consecutive same-key
// commands into a single DrawTriangles32 call.
func (s *Scene) submitBatches(target *ebiten.Image) {
	if len(s.commands) == 0 {
		return
	}

	s.batchVerts = s.batchVerts[:0]
	s.batchInds = s.batchInds[:0]

	viewProj := s.camera.ViewProjection()
	eye := s.camera.Eye()

	var currentKey batchKey
	inRun := false
	for i := range s.commands {
		cmd := &s.commands[i]
		key := s.commandBatchKey(cmd)
		if inRun && key != currentKey {
			s.flushBatch(target, currentKey)
		}
		currentKey = key
		inRun = true

		switch cmd.Type {
		case CommandMesh:
			s.appendMesh(cmd, viewProj, eye)
		case CommandPoints:
			for j := range cmd.points.points {
				s.appendPoint(cmd, j)
			}
		case CommandPoint:
			s.appendPoint(cmd, cmd.index)
		}
	}
	s.flushBatch(target, currentKey)
}

// appendMesh shades and appends every front-facing triangle of a mesh
// command. Each triangle is flat shaded from its world-space face normal.
func (s *Scene) appendMesh(cmd *RenderCommand, viewProj Mat4, eye Vec3) {
	m := cmd.mesh
	if cap(s.projBuf) < len(m.Positions) {
		s.projBuf = make([]projected, len(m.Positions))
	}
	proj := s.projBuf[:len(m.Positions)]
	for i, p := range m.Positions {
		wp := cmd.Model.TransformPoint(p)
		ndc, w := viewProj.Project(wp)
		sx, sy := s.camera.ndcToScreen(ndc.X, ndc.Y)
		proj[i] = projected{world: wp, sx: float32(sx), sy: float32(sy), ndc: ndc, w: w}
	}

	near := s.camera.Near
	for t := 0; t < m.NumTriangles(); t++ {
		a := &proj[m.Indices[t*3]]
		b := &proj[m.Indices[t*3+1]]
		c := &proj[m.Indices[t*3+2]]
		if a.w < near || b.w < near || c.w < near {
			continue
		}
		if outsideClip(a.ndc, b.ndc, c.ndc) {
			continue
		}
		// Screen y points down, so front faces wind clockwise on screen.
		cross := (b.sx-a.sx)*(c.sy-a.sy) - (b.sy-a.sy)*(c.sx-a.sx)
		if cross >= 0 {
			continue
		}

		normal := b.world.Sub(a.world).Cross(c.world.Sub(a.world)).Normalize()
		centroid := a.world.Add(b.world).Add(c.world).Scale(1.0 / 3)
		col := s.lighting.Shade(cmd.material, normal, centroid, eye, cmd.Color)
		if col.A <= 0 {
			continue
		}
		ca := float32(col.A)
		cr, cg, cb := float32(col.R)*ca, float32(col.G)*ca, float32(col.B)*ca

		base := uint32(len(s.batchVerts))
		for _, v := range [3]*projected{a, b, c} {
			s.batchVerts = append(s.batchVerts, ebiten.Vertex{
				DstX:   v.sx,
				DstY:   v.sy,
				SrcX:   1.5,
				SrcY:   1.5,
				ColorR: cr,
				ColorG: cg,
				ColorB: cb,
				ColorA: ca,
			})
		}
		s.batchInds = append(s.batchInds, base, base+1, base+2)
		s.stats.triangles++
	}
}

// outsideClip reports whether a triangle lies entirely outside one of the
// four side planes of the view volume.
func outsideClip(a, b, c Vec3) bool {
	return (a.X < -1 && b.X < -1 && c.X < -1) ||
		(a.X > 1 && b.X > 1 && c.X > 1) ||
		(a.Y < -1 && b.Y < -1 && c.Y < -1) ||
		(a.Y > 1 && b.Y > 1 && c.Y > 1) ||
		(a.Z > 1 && b.Z > 1 && c.Z > 1)
}

// appendPoint appends one screen-aligned quad for point i of a field.
func (s *Scene) appendPoint(cmd *RenderCommand, i int) {
	f := cmd.points
	pos, size, alpha := f.PointAt(i)
	sx, sy, depth, ok := s.camera.WorldToScreen(cmd.Model.TransformPoint(pos))
	if !ok {
		return
	}
	if f.config.SizeAttenuation {
		size /= depth
	}
	half := size / 2
	if half < 0.25 {
		return
	}
	vp := s.camera.Viewport
	if sx+half < vp.X || sx-half > vp.X+vp.Width || sy+half < vp.Y || sy-half > vp.Y+vp.Height {
		return
	}

	c := f.color.Mul(cmd.Color)
	a := float32(clamp01(alpha * f.color.A * cmd.Color.A))
	if a <= 0 {
		return
	}
	cr, cg, cb := float32(c.R)*a, float32(c.G)*a, float32(c.B)*a

	const srcSize = pointSpriteRadius * 2
	x0, y0 := float32(sx-half), float32(sy-half)
	x1, y1 := float32(sx+half), float32(sy+half)
	base := uint32(len(s.batchVerts))
	s.batchVerts = append(s.batchVerts,
		ebiten.Vertex{DstX: x0, DstY: y0, SrcX: 0, SrcY: 0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: a},
		ebiten.Vertex{DstX: x1, DstY: y0, SrcX: srcSize, SrcY: 0, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: a},
		ebiten.Vertex{DstX: x0, DstY: y1, SrcX: 0, SrcY: srcSize, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: a},
		ebiten.Vertex{DstX: x1, DstY: y1, SrcX: srcSize, SrcY: srcSize, ColorR: cr, ColorG: cg, ColorB: cb, ColorA: a},
	)
	// Two triangles: TL-TR-BL, TR-BR-BL
	s.batchInds = append(s.batchInds,
		base+0, base+1, base+2,
		base+1, base+3, base+2,
	)
	s.stats.points++
}

// flushBatch submits accumulated vertices as a single DrawTriangles32 call.
func (s *Scene) flushBatch(target *ebiten.Image, key batchKey) {
	if len(s.batchVerts) == 0 {
		return
	}

	var triOp ebiten.DrawTrianglesOptions
	triOp.Blend = key.blend.EbitenBlend()
	triOp.ColorScaleMode = ebiten.ColorScaleModePremultipliedAlpha
	triOp.AntiAlias = s.antiAlias

	target.DrawTriangles32(s.batchVerts, s.batchInds, key.source, &triOp)
	s.stats.drawCalls++

	s.batchVerts = s.batchVerts[:0]
	s.batchInds = s.batchInds[:0]
}

// generateCircle creates a feathered white circle image with the given radius.
// Uses smoothstep falloff and premultiplied alpha.
func generateCircle(radius float64) *ebiten.Image {
	size := int(math.Ceil(radius * 2))
	if size < 1 {
		size = 1
	}
	img := ebiten.NewImage(size, size)
	img.WritePixels(circlePixels(radius, size))
	return img
}

// circlePixels returns premultiplied RGBA bytes for a size x size feathered
// white disc of the given radius.
func circlePixels(radius float64, size int) []byte {
	pix := make([]byte, size*size*4)
	cx, cy := radius, radius
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - cx
			dy := float64(y) + 0.5 - cy
			dist := math.Sqrt(dx*dx+dy*dy) / radius

			// smoothstep: 1 at center, 0 at edge
			alpha := 1 - smoothstep(0, 1, dist)

			a := uint8(alpha * 255)
			off := (y*size + x) * 4
			pix[off+0] = a // premultiplied white
			pix[off+1] = a
			pix[off+2] = a
			pix[off+3] = a
		}
	}
	return pix
}
