package arix

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

// traverseScene refreshes transforms and collects the scene's render commands
// without drawing.
func traverseScene(s *Scene) {
	updateWorldTransform(s.root, Identity(), 1.0, false)
	s.commands = s.commands[:0]
	order := 0
	s.traverse(s.root, s.camera.ViewMatrix(), &order)
}

func testMaterial(t *testing.T) *Material {
	t.Helper()
	m, err := NewMaterial("test", MaterialConfig{Color: "#ff0000"})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestTraverseContainerEmitsNothing(t *testing.T) {
	s := testScene()
	s.Root().AddChild(NewContainer("empty"))
	traverseScene(s)
	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0", len(s.commands))
	}
}

func TestTraverseMesh(t *testing.T) {
	s := testScene()
	mat := testMaterial(t)
	n := NewMeshNode("gem", NewDodecahedron(1), mat)
	n.RenderLayer = 2
	n.BlendMode = BlendAdd
	s.Root().AddChild(n)
	traverseScene(s)

	if len(s.commands) != 1 {
		t.Fatalf("commands = %d, want 1", len(s.commands))
	}
	c := s.commands[0]
	if c.Type != CommandMesh || c.mesh != n.Mesh || c.material != mat {
		t.Errorf("command = %+v", c)
	}
	if c.RenderLayer != 2 || c.BlendMode != BlendAdd {
		t.Errorf("layer/blend = %d/%d", c.RenderLayer, c.BlendMode)
	}
	assertNear(t, "depth", c.Depth, s.Camera().Eye().Len())
}

func TestTraverseFoldsWorldAlpha(t *testing.T) {
	s := testScene()
	parent := NewContainer("p")
	parent.SetAlpha(0.5)
	n := NewMeshNode("m", NewDodecahedron(1), testMaterial(t))
	n.SetAlpha(0.5)
	parent.AddChild(n)
	s.Root().AddChild(parent)
	traverseScene(s)

	if len(s.commands) != 1 {
		t.Fatalf("commands = %d, want 1", len(s.commands))
	}
	assertNear(t, "alpha", s.commands[0].Color.A, 0.25)
}

func TestTraverseInvisibleSkipsSubtree(t *testing.T) {
	s := testScene()
	parent := NewContainer("p")
	parent.Visible = false
	parent.AddChild(NewMeshNode("m", NewDodecahedron(1), testMaterial(t)))
	s.Root().AddChild(parent)
	traverseScene(s)
	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0", len(s.commands))
	}
}

func TestTraverseNonRenderableKeepsChildren(t *testing.T) {
	s := testScene()
	mat := testMaterial(t)
	parent := NewMeshNode("p", NewDodecahedron(1), mat)
	parent.Renderable = false
	parent.AddChild(NewMeshNode("c", NewDodecahedron(1), mat))
	s.Root().AddChild(parent)
	traverseScene(s)
	if len(s.commands) != 1 {
		t.Errorf("commands = %d, want 1 (child only)", len(s.commands))
	}
}

func TestTraverseInstancedOneCommandPerInstance(t *testing.T) {
	s := testScene()
	buf := NewInstanceBuffer(3)
	buf.SetMatrixAt(0, ComposeMatrix(Vec3{-2, 0, 0}, Vec3{}, Vec3{1, 1, 1}))
	buf.SetMatrixAt(1, ComposeMatrix(Vec3{0, 0, 2}, Vec3{}, Vec3{1, 1, 1}))
	buf.SetMatrixAt(2, ComposeMatrix(Vec3{2, 0, -2}, Vec3{}, Vec3{1, 1, 1}))
	s.Root().AddChild(NewInstanced("needles", NewCone(0.3, 1.2, 5), testMaterial(t), buf))
	traverseScene(s)

	if len(s.commands) != 3 {
		t.Fatalf("commands = %d, want 3", len(s.commands))
	}
	for i, c := range s.commands {
		assertVec(t, "instance position", c.Model.Translation(), buf.MatrixAt(i).Translation(), 1e-9)
	}
}

func TestDrawClearsInstanceDirtyFlag(t *testing.T) {
	s := testScene()
	buf := NewInstanceBuffer(2)
	buf.SetMatrixAt(1, ComposeMatrix(Vec3{1, 0, 0}, Vec3{}, Vec3{1, 1, 1}))
	buf.MarkDirty()
	s.Root().AddChild(NewInstanced("needles", NewCone(0.3, 1.2, 5), testMaterial(t), buf))

	s.Draw(ebiten.NewImage(800, 600))
	if buf.Dirty() {
		t.Error("instance buffer still dirty after Draw")
	}
}

func TestTraverseReusesCleanInstanceCache(t *testing.T) {
	s := testScene()
	buf := NewInstanceBuffer(1)
	buf.SetMatrixAt(0, ComposeMatrix(Vec3{1, 0, 0}, Vec3{}, Vec3{1, 1, 1}))
	buf.MarkDirty()
	n := NewInstanced("needles", NewCone(0.3, 1.2, 5), testMaterial(t), buf)
	s.Root().AddChild(n)
	traverseScene(s)

	// Writes without MarkDirty are not picked up while the node stays put.
	buf.SetMatrixAt(0, ComposeMatrix(Vec3{-1, 0, 0}, Vec3{}, Vec3{1, 1, 1}))
	traverseScene(s)
	if len(s.commands) != 1 {
		t.Fatalf("commands = %d, want 1", len(s.commands))
	}
	assertVec(t, "cached position", s.commands[0].Model.Translation(), Vec3{1, 0, 0}, 1e-9)

	buf.MarkDirty()
	traverseScene(s)
	assertVec(t, "rebuilt position", s.commands[0].Model.Translation(), Vec3{-1, 0, 0}, 1e-9)
	if buf.Dirty() {
		t.Error("instance buffer still dirty after rebuild")
	}
}

func TestTraverseRebuildsInstancesWhenParentMoves(t *testing.T) {
	s := testScene()
	buf := NewInstanceBuffer(1)
	buf.SetMatrixAt(0, ComposeMatrix(Vec3{1, 0, 0}, Vec3{}, Vec3{1, 1, 1}))
	buf.MarkDirty()
	n := NewInstanced("needles", NewCone(0.3, 1.2, 5), testMaterial(t), buf)
	s.Root().AddChild(n)
	traverseScene(s)

	n.SetPosition(0, 2, 0)
	traverseScene(s)
	assertVec(t, "moved position", s.commands[0].Model.Translation(), Vec3{1, 2, 0}, 1e-9)
}

func TestTraverseSharedInstanceBuffer(t *testing.T) {
	s := testScene()
	buf := NewInstanceBuffer(1)
	mesh, mat := NewCone(0.3, 1.2, 5), testMaterial(t)
	a := NewInstanced("a", mesh, mat, buf)
	b := NewInstanced("b", mesh, mat, buf)
	s.Root().AddChild(a)
	s.Root().AddChild(b)
	traverseScene(s)

	// The first node clears the flag; the second still sees the new version.
	buf.SetMatrixAt(0, ComposeMatrix(Vec3{0, 1, 0}, Vec3{}, Vec3{1, 1, 1}))
	buf.MarkDirty()
	traverseScene(s)
	if len(s.commands) != 2 {
		t.Fatalf("commands = %d, want 2", len(s.commands))
	}
	for _, c := range s.commands {
		assertVec(t, "shared position", c.Model.Translation(), Vec3{0, 1, 0}, 1e-9)
	}
}

func TestTraverseCullsBehindCamera(t *testing.T) {
	s := testScene()
	n := NewMeshNode("behind", NewDodecahedron(0.5), testMaterial(t))
	n.SetPosition(0, 1, 20)
	s.Root().AddChild(n)
	traverseScene(s)
	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0 for a mesh behind the camera", len(s.commands))
	}
}

func TestTraversePoints(t *testing.T) {
	cfg := PointFieldConfig{Count: 10, Extent: Vec3{1, 1, 1}, Size: Range{1, 1}, Opacity: 1, Color: "#ffffff"}

	s := testScene()
	s.Root().AddChild(NewPoints("dust", NewPointField(cfg, NewRandomSource(1))))
	traverseScene(s)
	if len(s.commands) != 1 || s.commands[0].Type != CommandPoints {
		t.Fatalf("unsorted field: commands = %+v", s.commands)
	}

	cfg.DepthSorted = true
	s = testScene()
	s.Root().AddChild(NewPoints("dust", NewPointField(cfg, NewRandomSource(1))))
	traverseScene(s)
	if len(s.commands) != 10 {
		t.Fatalf("sorted field: commands = %d, want 10", len(s.commands))
	}
	for i, c := range s.commands {
		if c.Type != CommandPoint || c.index != i {
			t.Errorf("command %d = type %d index %d", i, c.Type, c.index)
		}
	}
}

func TestTraverseEmptyPointsEmitNothing(t *testing.T) {
	s := testScene()
	s.Root().AddChild(NewPoints("none", NewPointField(PointFieldConfig{}, NewRandomSource(1))))
	traverseScene(s)
	if len(s.commands) != 0 {
		t.Errorf("commands = %d, want 0", len(s.commands))
	}
}

func TestMergeSortLayersThenDepth(t *testing.T) {
	s := testScene()
	s.commands = []RenderCommand{
		{RenderLayer: 1, Depth: 5, treeOrder: 1},
		{RenderLayer: 0, Depth: 100, treeOrder: 2},
		{RenderLayer: 1, Depth: 9, treeOrder: 3},
		{RenderLayer: 1, Depth: 5, treeOrder: 4},
		{RenderLayer: 1, Depth: 1, treeOrder: 5},
	}
	s.mergeSort()

	want := []int{2, 3, 1, 4, 5}
	for i, c := range s.commands {
		if c.treeOrder != want[i] {
			t.Errorf("position %d: treeOrder %d, want %d", i, c.treeOrder, want[i])
		}
	}
}

func TestMergeSortStableLarge(t *testing.T) {
	s := testScene()
	for i := 0; i < 100; i++ {
		s.commands = append(s.commands, RenderCommand{Depth: float64(i % 3), treeOrder: i})
	}
	s.mergeSort()
	for i := 1; i < len(s.commands); i++ {
		a, b := s.commands[i-1], s.commands[i]
		if !commandLessOrEqual(a, b) {
			t.Fatalf("out of order at %d: %+v before %+v", i, a, b)
		}
	}
}

func TestMaxAxisScale(t *testing.T) {
	m := ComposeMatrix(Vec3{}, Vec3{0.3, 0.2, 0.1}, Vec3{1, 3, 2})
	assertNear(t, "max axis scale", maxAxisScale(m), 3)
}
