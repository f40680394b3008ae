package sld

import (
	"math"

	"github.com/cadream/backend/internal/models"
)

// coordTolerance is how close two coordinates must be to count as aligned
// (or two points as duplicates).
const coordTolerance = 0.5

// Leg routes one orthogonal run from start to end, excluding start itself.
// Aligned endpoints produce a single straight segment; otherwise exactly one
// right-angle elbow, horizontal-first when |dx| >= |dy|.
func Leg(start, end models.Point) []models.Point {
	dx := end.X - start.X
	dy := end.Y - start.Y

	if math.Abs(dx) <= coordTolerance || math.Abs(dy) <= coordTolerance {
		return []models.Point{end}
	}

	if math.Abs(dx) >= math.Abs(dy) {
		return []models.Point{{X: end.X, Y: start.Y}, end}
	}
	return []models.Point{{X: start.X, Y: end.Y}, end}
}

// CollapseDuplicates drops every point within tolerance of its immediate
// predecessor, so concatenated legs never yield zero-length segments.
// Idempotent.
func CollapseDuplicates(points []models.Point) []models.Point {
	if len(points) == 0 {
		return points
	}
	out := make([]models.Point, 0, len(points))
	out = append(out, points[0])
	for _, p := range points[1:] {
		last := out[len(out)-1]
		if math.Abs(p.X-last.X) <= coordTolerance && math.Abs(p.Y-last.Y) <= coordTolerance {
			continue
		}
		out = append(out, p)
	}
	return out
}

// TerminalPosition resolves a terminal's absolute position: node position
// plus the terminal's local offset.
func TerminalPosition(node *models.SldNode, terminalID string) (models.Point, bool) {
	if node == nil {
		return models.Point{}, false
	}
	t := node.Terminal(terminalID)
	if t == nil {
		return models.Point{}, false
	}
	return models.Point{X: node.Pos.X + t.Offset.X, Y: node.Pos.Y + t.Offset.Y}, true
}

// Route computes an edge's polyline from its endpoints' current positions.
// Missing nodes or terminals yield an empty route rather than an error; the
// editor routinely routes through transient inconsistent states.
func Route(edge *models.SldEdge, d *models.DiagramState) []models.Point {
	start, ok := TerminalPosition(d.Node(edge.FromNode), edge.FromTerminal)
	if !ok {
		return nil
	}
	end, ok := TerminalPosition(d.Node(edge.ToNode), edge.ToTerminal)
	if !ok {
		return nil
	}

	pts := append([]models.Point{start}, Leg(start, end)...)
	return CollapseDuplicates(pts)
}

// RerouteAll recomputes every edge route, typically after a node moved.
func RerouteAll(d *models.DiagramState) {
	for i := range d.Edges {
		d.Edges[i].Points = Route(&d.Edges[i], d)
	}
}
