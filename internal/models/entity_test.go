package models

import (
	"encoding/json"
	"testing"
)

func TestPointJSONPairForm(t *testing.T) {
	var p Point
	if err := json.Unmarshal([]byte(`[3.5, -2]`), &p); err != nil {
		t.Fatalf("unmarshal pair: %v", err)
	}
	if p.X != 3.5 || p.Y != -2 {
		t.Errorf("got %+v, want {3.5 -2}", p)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != "[3.5,-2]" {
		t.Errorf("marshal = %s, want [3.5,-2]", out)
	}
}

func TestPointJSONObjectForm(t *testing.T) {
	var p Point
	if err := json.Unmarshal([]byte(`{"x": 10, "y": 20}`), &p); err != nil {
		t.Fatalf("unmarshal object: %v", err)
	}
	if p.X != 10 || p.Y != 20 {
		t.Errorf("got %+v, want {10 20}", p)
	}
}

func TestPointJSONRejectsOtherShapes(t *testing.T) {
	var p Point
	if err := json.Unmarshal([]byte(`"nope"`), &p); err == nil {
		t.Error("expected error for string input")
	}
}

func TestBoundsIntersects(t *testing.T) {
	a := Bounds{Min: Point{0, 0}, Max: Point{10, 10}}

	tests := []struct {
		name string
		b    Bounds
		want bool
	}{
		{"overlap", Bounds{Min: Point{5, 5}, Max: Point{15, 15}}, true},
		{"contained", Bounds{Min: Point{2, 2}, Max: Point{3, 3}}, true},
		{"touching edge", Bounds{Min: Point{10, 0}, Max: Point{20, 10}}, true},
		{"disjoint x", Bounds{Min: Point{11, 0}, Max: Point{20, 10}}, false},
		{"disjoint y", Bounds{Min: Point{0, 11}, Max: Point{10, 20}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := a.Intersects(tt.b); got != tt.want {
				t.Errorf("Intersects = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBoundsUnion(t *testing.T) {
	a := Bounds{Min: Point{0, 0}, Max: Point{5, 5}}
	b := Bounds{Min: Point{-2, 3}, Max: Point{4, 9}}
	u := a.Union(b)

	want := Bounds{Min: Point{-2, 0}, Max: Point{5, 9}}
	if u != want {
		t.Errorf("Union = %+v, want %+v", u, want)
	}
	if u.Width() != 7 || u.Height() != 9 {
		t.Errorf("Width/Height = %v/%v, want 7/9", u.Width(), u.Height())
	}
}

func TestRenderEntityDecodesParserPayload(t *testing.T) {
	payload := `{
		"type": "LINE",
		"layer": "walls",
		"p1": [0, 0],
		"p2": [100, 50]
	}`
	var e RenderEntity
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if e.Kind != KindLine || e.Layer != "walls" {
		t.Errorf("kind/layer = %s/%s", e.Kind, e.Layer)
	}
	if e.P1 == nil || e.P2 == nil || e.P2.X != 100 {
		t.Errorf("endpoints not decoded: %+v %+v", e.P1, e.P2)
	}
}
