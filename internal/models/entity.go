package models

import (
	"encoding/json"
	"fmt"
)

// EntityKind identifies the shape variant of a RenderEntity. The set is
// closed: every switch over it handles all seven kinds.
type EntityKind string

const (
	KindLine     EntityKind = "LINE"
	KindPolyline EntityKind = "LWPOLYLINE"
	KindCircle   EntityKind = "CIRCLE"
	KindArc      EntityKind = "ARC"
	KindText     EntityKind = "TEXT"
	KindMText    EntityKind = "MTEXT"
	KindInsert   EntityKind = "INSERT"
)

// Point is a 2D world-space coordinate.
//
// On the wire it is the `[x, y]` pair the DXF-parsing service emits; the
// decoder also accepts the `{"x":..,"y":..}` object form used by older
// project files.
type Point struct {
	X float64
	Y float64
}

// MarshalJSON encodes the point as [x, y].
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{p.X, p.Y})
}

// UnmarshalJSON decodes either [x, y] or {"x":..,"y":..}.
func (p *Point) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err == nil {
		p.X, p.Y = pair[0], pair[1]
		return nil
	}

	var obj struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("point must be [x,y] or {x,y}: %w", err)
	}
	p.X, p.Y = obj.X, obj.Y
	return nil
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min Point `json:"min"`
	Max Point `json:"max"`
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 { return b.Max.X - b.Min.X }

// Height returns the vertical extent.
func (b Bounds) Height() float64 { return b.Max.Y - b.Min.Y }

// Intersects reports whether two boxes overlap (touching counts).
func (b Bounds) Intersects(o Bounds) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y
}

// Contains reports whether the point lies inside the box (inclusive).
func (b Bounds) Contains(p Point) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

// Union grows the box to cover o.
func (b Bounds) Union(o Bounds) Bounds {
	if o.Min.X < b.Min.X {
		b.Min.X = o.Min.X
	}
	if o.Min.Y < b.Min.Y {
		b.Min.Y = o.Min.Y
	}
	if o.Max.X > b.Max.X {
		b.Max.X = o.Max.X
	}
	if o.Max.Y > b.Max.Y {
		b.Max.Y = o.Max.Y
	}
	return b
}

// RenderEntity is one drawable CAD entity as produced by the external DXF
// parsing service. Which fields are populated depends on Kind; the struct is
// immutable once ingested. ID is assigned at ingestion time and is the key
// for bounding-box memoization; a replaced entity gets a fresh ID and is
// therefore a cache miss, never an explicit invalidation.
type RenderEntity struct {
	ID    int        `json:"-"`
	Kind  EntityKind `json:"type"`
	Layer string     `json:"layer"`

	// LINE
	P1 *Point `json:"p1,omitempty"`
	P2 *Point `json:"p2,omitempty"`

	// LWPOLYLINE
	Points []Point `json:"points,omitempty"`
	Closed bool    `json:"closed,omitempty"`

	// CIRCLE / ARC
	Center     *Point  `json:"center,omitempty"`
	R          float64 `json:"r,omitempty"`
	StartAngle float64 `json:"start_angle,omitempty"`
	EndAngle   float64 `json:"end_angle,omitempty"`

	// TEXT / MTEXT
	Text   string  `json:"text,omitempty"`
	Pos    *Point  `json:"pos,omitempty"`
	Height float64 `json:"height,omitempty"`

	// INSERT (Pos doubles as the insertion point)
	Name     string  `json:"name,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
	XScale   float64 `json:"xscale,omitempty"`
	YScale   float64 `json:"yscale,omitempty"`
}

// LayerInfo describes one layer of the source drawing.
type LayerInfo struct {
	Name     string `json:"name"`
	Color    int    `json:"color"`
	Linetype string `json:"linetype,omitempty"`
}

// RenderDoc is the parsed drawing document: layers, modelspace entities and
// named block definitions. Block definitions may themselves contain INSERT
// entities referencing further blocks. The document is read-only to the
// editor core.
type RenderDoc struct {
	Layers   []LayerInfo                `json:"layers"`
	Entities []*RenderEntity            `json:"entities"`
	Bounds   *Bounds                    `json:"bounds,omitempty"`
	Blocks   map[string][]*RenderEntity `json:"blocks,omitempty"`
}
