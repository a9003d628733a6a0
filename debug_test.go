package arix

import (
	"bytes"
	"fmt"
	"log"
	"strings"
	"testing"
)

// captureLog routes the package logger into a buffer for the test.
func captureLog(t *testing.T, s *Scene) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	s.SetLogger(log.New(&buf, "", 0))
	t.Cleanup(func() { s.SetLogger(nil) })
	return &buf
}

func TestDebugMode_DisposedNodePanics(t *testing.T) {
	s := testScene()
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	parent := NewContainer("parent")
	s.Root().AddChild(parent)

	child := NewContainer("child")
	child.Dispose()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on AddChild with disposed node, got none")
		}
		msg := fmt.Sprint(r)
		if !strings.Contains(msg, "disposed") {
			t.Errorf("panic message should mention 'disposed', got: %s", msg)
		}
	}()

	parent.AddChild(child)
}

func TestDebugMode_DisposedParentPanics(t *testing.T) {
	s := testScene()
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	parent := NewContainer("parent")
	parent.Dispose()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic on AddChild to disposed parent, got none")
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, "disposed") {
			t.Errorf("panic message should mention 'disposed', got: %s", msg)
		}
	}()

	parent.AddChild(NewContainer("child"))
}

func TestDebugMode_TreeDepthWarning(t *testing.T) {
	s := testScene()
	buf := captureLog(t, s)
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	current := s.Root()
	for i := 0; i < debugMaxTreeDepth+5; i++ {
		child := NewContainer(fmt.Sprintf("depth_%d", i))
		current.AddChild(child)
		current = child
	}

	if !strings.Contains(buf.String(), "warning: tree depth") {
		t.Errorf("expected tree depth warning, got: %q", buf.String())
	}
}

func TestDebugMode_ChildCountWarning(t *testing.T) {
	s := testScene()
	buf := captureLog(t, s)
	s.SetDebugMode(true)
	defer s.SetDebugMode(false)

	parent := NewContainer("many_children")
	s.Root().AddChild(parent)
	for i := 0; i < debugMaxChildCount+1; i++ {
		parent.AddChild(NewContainer(fmt.Sprintf("c_%d", i)))
	}

	out := buf.String()
	if !strings.Contains(out, "warning: node") || !strings.Contains(out, "children") {
		t.Errorf("expected child count warning, got: %q", out)
	}
}

func TestReleaseMode_NoWarnings(t *testing.T) {
	s := testScene()
	buf := captureLog(t, s)
	s.SetDebugMode(false)

	current := s.Root()
	for i := 0; i < debugMaxTreeDepth+5; i++ {
		child := NewContainer("deep")
		current.AddChild(child)
		current = child
	}
	if buf.Len() != 0 {
		t.Errorf("release mode should be silent, got: %q", buf.String())
	}
}

func TestDebugLog(t *testing.T) {
	s := testScene()
	buf := captureLog(t, s)

	stats := frameStats{commandCount: 12, triangles: 340, points: 5, drawCalls: 3}
	s.debugLog(stats)
	if buf.Len() != 0 {
		t.Fatal("debugLog should be silent outside debug mode")
	}

	s.SetDebugMode(true)
	defer s.SetDebugMode(false)
	s.debugLog(stats)
	out := buf.String()
	for _, want := range []string{"commands: 12", "triangles: 340", "points: 5", "draw calls: 3"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %q: %q", want, out)
		}
	}
}

func TestStats(t *testing.T) {
	s := testScene()
	s.stats = frameStats{triangles: 10, points: 20, drawCalls: 2}
	tri, pts, dc := s.Stats()
	if tri != 10 || pts != 20 || dc != 2 {
		t.Errorf("Stats = %d, %d, %d", tri, pts, dc)
	}
}

func TestSetLoggerNilRestoresDefault(t *testing.T) {
	s := testScene()
	var buf bytes.Buffer
	s.SetLogger(log.New(&buf, "", 0))
	s.SetLogger(nil)
	if logger.Prefix() != "[arix] " {
		t.Errorf("prefix = %q, want %q", logger.Prefix(), "[arix] ")
	}
}

func TestSetLoggerSharedAcrossScenes(t *testing.T) {
	a, b := testScene(), testScene()
	var bufA, bufB bytes.Buffer
	a.SetLogger(log.New(&bufA, "", 0))
	b.SetLogger(log.New(&bufB, "", 0))
	t.Cleanup(func() { a.SetLogger(nil) })

	logger.Print("hello")
	if bufA.Len() != 0 {
		t.Errorf("first logger received %q after the second SetLogger", bufA.String())
	}
	if !strings.Contains(bufB.String(), "hello") {
		t.Errorf("last logger = %q, want it to receive output", bufB.String())
	}
}
