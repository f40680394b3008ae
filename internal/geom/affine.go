// Package geom implements the 2D affine algebra, viewport mapping, adaptive
// tessellation and bounds estimation behind the drawing editor.
package geom

import (
	"math"

	"github.com/cadream/backend/internal/models"
)

// Affine2D is a 2D linear map plus translation:
//
//	x' = A*x + B*y + TX
//	y' = C*x + D*y + TY
//
// Value type; the zero value is NOT the identity.
type Affine2D struct {
	A, B, C, D, TX, TY float64
}

// Identity returns the neutral transform.
func Identity() Affine2D {
	return Affine2D{A: 1, B: 0, C: 0, D: 1, TX: 0, TY: 0}
}

// FromInsert builds the placement transform of a block instance:
// rotation, then per-axis scale, then translation to pos.
func FromInsert(pos models.Point, rotationDeg, xscale, yscale float64) Affine2D {
	rad := rotationDeg * math.Pi / 180
	cos := math.Cos(rad)
	sin := math.Sin(rad)
	return Affine2D{
		A: cos * xscale, B: -sin * yscale,
		C: sin * xscale, D: cos * yscale,
		TX: pos.X, TY: pos.Y,
	}
}

// Compose returns the transform equivalent to applying local first, then
// parent. The local translation is mapped through parent's linear part
// before parent's own translation is added.
func Compose(parent, local Affine2D) Affine2D {
	return Affine2D{
		A:  parent.A*local.A + parent.B*local.C,
		B:  parent.A*local.B + parent.B*local.D,
		C:  parent.C*local.A + parent.D*local.C,
		D:  parent.C*local.B + parent.D*local.D,
		TX: parent.A*local.TX + parent.B*local.TY + parent.TX,
		TY: parent.C*local.TX + parent.D*local.TY + parent.TY,
	}
}

// Apply maps a point through the transform.
func (m Affine2D) Apply(x, y float64) models.Point {
	return models.Point{
		X: m.A*x + m.B*y + m.TX,
		Y: m.C*x + m.D*y + m.TY,
	}
}

// ApplyPoint maps a models.Point through the transform.
func (m Affine2D) ApplyPoint(p models.Point) models.Point {
	return m.Apply(p.X, p.Y)
}

// TransformBounds maps all four corners of the box and returns the new
// axis-aligned envelope. Mapping only min/max would be wrong under rotation.
func TransformBounds(b models.Bounds, m Affine2D) models.Bounds {
	corners := [4]models.Point{
		m.Apply(b.Min.X, b.Min.Y),
		m.Apply(b.Max.X, b.Min.Y),
		m.Apply(b.Min.X, b.Max.Y),
		m.Apply(b.Max.X, b.Max.Y),
	}
	out := models.Bounds{Min: corners[0], Max: corners[0]}
	for _, p := range corners[1:] {
		if p.X < out.Min.X {
			out.Min.X = p.X
		}
		if p.Y < out.Min.Y {
			out.Min.Y = p.Y
		}
		if p.X > out.Max.X {
			out.Max.X = p.X
		}
		if p.Y > out.Max.Y {
			out.Max.Y = p.Y
		}
	}
	return out
}
