package sld

import (
	"testing"

	"github.com/cadream/backend/internal/models"
)

func TestLegAligned(t *testing.T) {
	tests := []struct {
		name       string
		start, end models.Point
	}{
		{"horizontal", models.Point{X: 0, Y: 10}, models.Point{X: 50, Y: 10}},
		{"vertical", models.Point{X: 5, Y: 0}, models.Point{X: 5, Y: -40}},
		{"within tolerance", models.Point{X: 0, Y: 0}, models.Point{X: 30, Y: 0.4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Leg(tt.start, tt.end)
			if len(got) != 1 || got[0] != tt.end {
				t.Errorf("Leg = %v, want [%v]", got, tt.end)
			}
		})
	}
}

func TestLegElbowHorizontalFirst(t *testing.T) {
	start := models.Point{X: 0, Y: 0}
	end := models.Point{X: 100, Y: 30}
	got := Leg(start, end)
	want := []models.Point{{X: 100, Y: 0}, {X: 100, Y: 30}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Leg = %v, want %v", got, want)
	}
}

func TestLegElbowVerticalFirst(t *testing.T) {
	start := models.Point{X: 0, Y: 0}
	end := models.Point{X: 30, Y: 100}
	got := Leg(start, end)
	want := []models.Point{{X: 0, Y: 100}, {X: 30, Y: 100}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Leg = %v, want %v", got, want)
	}
}

func TestLegTieGoesHorizontalFirst(t *testing.T) {
	got := Leg(models.Point{X: 0, Y: 0}, models.Point{X: 50, Y: 50})
	if got[0] != (models.Point{X: 50, Y: 0}) {
		t.Errorf("tie should route horizontal-first, got %v", got)
	}
}

func TestCollapseDuplicates(t *testing.T) {
	pts := []models.Point{
		{X: 0, Y: 0},
		{X: 0.2, Y: 0.3}, // duplicate of previous within tolerance
		{X: 10, Y: 0},
		{X: 10, Y: 0}, // exact duplicate
		{X: 10, Y: 20},
	}
	got := CollapseDuplicates(pts)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3: %v", len(got), got)
	}

	// Idempotent.
	again := CollapseDuplicates(got)
	if len(again) != len(got) {
		t.Errorf("not idempotent: %v -> %v", got, again)
	}
}

func TestCollapseDuplicatesEmpty(t *testing.T) {
	if got := CollapseDuplicates(nil); len(got) != 0 {
		t.Errorf("got %v", got)
	}
}

func routerDiagram() models.DiagramState {
	return models.DiagramState{
		Nodes: []models.SldNode{
			{
				ID: "node-1", Type: "battery", Pos: models.Point{X: 0, Y: 0},
				Terminals: []models.SldTerminal{
					{ID: "dc", Offset: models.Point{X: 50, Y: 0}, Role: models.RoleOut},
				},
			},
			{
				ID: "node-2", Type: "inverter", Pos: models.Point{X: 200, Y: 100},
				Terminals: []models.SldTerminal{
					{ID: "dc", Offset: models.Point{X: 45, Y: 60}, Role: models.RoleIn},
				},
			},
		},
		Edges: []models.SldEdge{
			{ID: "edge-1", FromNode: "node-1", FromTerminal: "dc", ToNode: "node-2", ToTerminal: "dc"},
		},
	}
}

func TestTerminalPosition(t *testing.T) {
	d := routerDiagram()
	p, ok := TerminalPosition(d.Node("node-2"), "dc")
	if !ok {
		t.Fatal("not found")
	}
	if p.X != 245 || p.Y != 160 {
		t.Errorf("got %+v, want (245,160)", p)
	}

	if _, ok := TerminalPosition(d.Node("node-2"), "nope"); ok {
		t.Error("unknown terminal resolved")
	}
	if _, ok := TerminalPosition(nil, "dc"); ok {
		t.Error("nil node resolved")
	}
}

func TestRoute(t *testing.T) {
	d := routerDiagram()
	pts := Route(&d.Edges[0], &d)
	if len(pts) < 2 {
		t.Fatalf("route too short: %v", pts)
	}
	if pts[0] != (models.Point{X: 50, Y: 0}) {
		t.Errorf("start = %v", pts[0])
	}
	if pts[len(pts)-1] != (models.Point{X: 245, Y: 160}) {
		t.Errorf("end = %v", pts[len(pts)-1])
	}
	// Orthogonality: consecutive points share an axis.
	for i := 1; i < len(pts); i++ {
		if pts[i].X != pts[i-1].X && pts[i].Y != pts[i-1].Y {
			t.Errorf("segment %d not orthogonal: %v -> %v", i, pts[i-1], pts[i])
		}
	}
}

func TestRouteMissingEndpoint(t *testing.T) {
	d := routerDiagram()
	edge := models.SldEdge{ID: "edge-x", FromNode: "node-1", FromTerminal: "dc", ToNode: "gone", ToTerminal: "dc"}
	if pts := Route(&edge, &d); pts != nil {
		t.Errorf("got %v, want nil", pts)
	}
}

func TestRerouteAllFollowsMove(t *testing.T) {
	d := routerDiagram()
	RerouteAll(&d)
	before := d.Edges[0].Points[len(d.Edges[0].Points)-1]

	d.Nodes[1].Pos = models.Point{X: 400, Y: 300}
	RerouteAll(&d)
	after := d.Edges[0].Points[len(d.Edges[0].Points)-1]

	if before == after {
		t.Error("route did not follow node move")
	}
	if after != (models.Point{X: 445, Y: 360}) {
		t.Errorf("end = %v, want (445,360)", after)
	}
}
