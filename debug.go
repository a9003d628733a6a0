package arix

import (
	"fmt"
	"log"
	"os"
	"time"
)

// logger receives all diagnostics. Scene.SetLogger replaces it.
var logger = defaultLogger()

func defaultLogger() *log.Logger {
	return log.New(os.Stderr, "[arix] ", 0)
}

// frameStats holds per-frame timing and draw metrics.
// Timings are only populated when Scene.debug is true.
type frameStats struct {
	traverseTime time.Duration
	sortTime     time.Duration
	submitTime   time.Duration
	commandCount int
	triangles    int
	points       int
	drawCalls    int
}

// Stats returns the triangle, point and draw-call counts of the last frame.
func (s *Scene) Stats() (triangles, points, drawCalls int) {
	return s.stats.triangles, s.stats.points, s.stats.drawCalls
}

// debugLog prints timing and draw-call stats through the logger.
func (s *Scene) debugLog(stats frameStats) {
	if !s.debug {
		return
	}
	total := stats.traverseTime + stats.sortTime + stats.submitTime
	logger.Printf("traverse: %v | sort: %v | submit: %v | total: %v",
		stats.traverseTime, stats.sortTime, stats.submitTime, total)
	logger.Printf("commands: %d | triangles: %d | points: %d | draw calls: %d",
		stats.commandCount, stats.triangles, stats.points, stats.drawCalls)
}

// debugCheckDisposed panics with a descriptive message when a disposed node is
// used in a tree operation. Only called in debug mode.
func debugCheckDisposed(n *Node, op string) {
	if n.disposed {
		panic(fmt.Sprintf("arix debug: %s on disposed node %q (ID was %d)", op, n.Name, n.ID))
	}
}

// debugCheckTreeDepth warns if tree depth exceeds the threshold.
const debugMaxTreeDepth = 32

func debugCheckTreeDepth(n *Node) {
	depth := 0
	for p := n; p != nil; p = p.Parent {
		depth++
	}
	if depth > debugMaxTreeDepth {
		logger.Printf("warning: tree depth %d exceeds %d (node %q)", depth, debugMaxTreeDepth, n.Name)
	}
}

// debugCheckChildCount warns if a node has more than 1000 children.
const debugMaxChildCount = 1000

func debugCheckChildCount(n *Node) {
	if len(n.children) > debugMaxChildCount {
		logger.Printf("warning: node %q has %d children (threshold %d)",
			n.Name, len(n.children), debugMaxChildCount)
	}
}
