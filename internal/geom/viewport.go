package geom

import (
	"math"

	"github.com/cadream/backend/internal/models"
)

// minViewportScale guards the inverse mapping against division blow-up at
// extreme zoom-out.
const minViewportScale = 1e-4

// WorldBoundsFromViewport inverts the screen = world*scale + pan mapping to
// recover the world-space rectangle currently visible, expanded by paddingPx
// screen pixels (converted to world units).
func WorldBoundsFromViewport(viewportW, viewportH float64, pan models.Point, scale, paddingPx float64) models.Bounds {
	s := math.Max(math.Abs(scale), minViewportScale)

	x0 := (0 - pan.X) / s
	y0 := (0 - pan.Y) / s
	x1 := (viewportW - pan.X) / s
	y1 := (viewportH - pan.Y) / s

	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}

	pad := paddingPx / s
	return models.Bounds{
		Min: models.Point{X: x0 - pad, Y: y0 - pad},
		Max: models.Point{X: x1 + pad, Y: y1 + pad},
	}
}
