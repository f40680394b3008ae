package geom

import (
	"math"
	"sort"

	"github.com/cadream/backend/internal/models"
)

// Tuning constants for the structure-bounds estimator, arrived at against a
// corpus of real site drawings; none of them is a principled invariant.
const (
	maxBoundsSamples     = 120000
	trimActivateSamples  = 80
	trimLowQuantile      = 0.02
	trimHighQuantile     = 0.98
	trimMinSpanFraction  = 0.05
	windowActivateCount  = 300
	windowFraction       = 0.85
	coreCoverageFraction = 0.55
	coreTightnessRatio   = 0.80
	boundsPadFraction    = 0.08
	boundsPadMinUnits    = 100.0
)

// EstimateStructureBounds produces a "fit to drawing" box that is robust to
// a small number of far-flung stray entities (annotation text, reference
// blocks) which would otherwise make a naive bbox hide the real structure.
// Returns nil when fewer than 4 samples exist; the caller falls back to a
// simpler bounds source.
func EstimateStructureBounds(entities []*models.RenderEntity) *models.Bounds {
	xs, ys := collectSamples(entities, maxBoundsSamples)
	if len(xs) < 4 || len(ys) < 4 {
		return nil
	}

	sort.Float64s(xs)
	sort.Float64s(ys)

	rawMinX, rawMaxX := xs[0], xs[len(xs)-1]
	rawMinY, rawMaxY := ys[0], ys[len(ys)-1]

	minX, maxX := trimmedRange(xs, rawMinX, rawMaxX)
	minY, maxY := trimmedRange(ys, rawMinY, rawMaxY)

	// A degenerate or over-aggressive trim means the samples were one
	// coherent cluster, not a structure plus outliers.
	if maxX <= minX || maxY <= minY ||
		(maxX-minX) < trimMinSpanFraction*(rawMaxX-rawMinX) ||
		(maxY-minY) < trimMinSpanFraction*(rawMaxY-rawMinY) {
		minX, maxX = rawMinX, rawMaxX
		minY, maxY = rawMinY, rawMaxY
	}

	if len(xs) >= windowActivateCount {
		coreMinX, coreMaxX := densestWindow(xs, windowFraction)
		coreMinY, coreMaxY := densestWindow(ys, windowFraction)
		core := models.Bounds{
			Min: models.Point{X: coreMinX, Y: coreMinY},
			Max: models.Point{X: coreMaxX, Y: coreMaxY},
		}
		// xs/ys are independently sorted, so coverage is counted against
		// a re-walk of the original sample stream.
		inside := countInside(entities, core, maxBoundsSamples)
		tighterX := (coreMaxX - coreMinX) < coreTightnessRatio*(maxX-minX)
		tighterY := (coreMaxY - coreMinY) < coreTightnessRatio*(maxY-minY)
		if float64(inside) >= coreCoverageFraction*float64(len(xs)) && tighterX && tighterY {
			minX, maxX = coreMinX, coreMaxX
			minY, maxY = coreMinY, coreMaxY
		}
	}

	padX := math.Max((maxX-minX)*boundsPadFraction, boundsPadMinUnits)
	padY := math.Max((maxY-minY)*boundsPadFraction, boundsPadMinUnits)

	return &models.Bounds{
		Min: models.Point{X: minX - padX, Y: minY - padY},
		Max: models.Point{X: maxX + padX, Y: maxY + padY},
	}
}

// collectSamples gathers representative points from every entity: line
// endpoints, all polyline vertices, circle/arc bbox corners, insert anchor
// points. Capped for cost control on huge imports.
func collectSamples(entities []*models.RenderEntity, limit int) (xs, ys []float64) {
	add := func(x, y float64) {
		if len(xs) < limit {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}

	for _, e := range entities {
		if len(xs) >= limit {
			break
		}
		switch e.Kind {
		case models.KindLine:
			if e.P1 != nil && e.P2 != nil {
				add(e.P1.X, e.P1.Y)
				add(e.P2.X, e.P2.Y)
			}
		case models.KindPolyline:
			for _, p := range e.Points {
				add(p.X, p.Y)
			}
		case models.KindCircle, models.KindArc:
			if e.Center != nil {
				add(e.Center.X-e.R, e.Center.Y-e.R)
				add(e.Center.X+e.R, e.Center.Y+e.R)
			}
		case models.KindText, models.KindMText, models.KindInsert:
			if e.Pos != nil {
				add(e.Pos.X, e.Pos.Y)
			}
		}
	}
	return xs, ys
}

// countInside re-walks the sample stream and counts points inside the box.
func countInside(entities []*models.RenderEntity, b models.Bounds, limit int) int {
	n, inside := 0, 0
	visit := func(x, y float64) {
		if n >= limit {
			return
		}
		n++
		if b.Contains(models.Point{X: x, Y: y}) {
			inside++
		}
	}

	for _, e := range entities {
		if n >= limit {
			break
		}
		switch e.Kind {
		case models.KindLine:
			if e.P1 != nil && e.P2 != nil {
				visit(e.P1.X, e.P1.Y)
				visit(e.P2.X, e.P2.Y)
			}
		case models.KindPolyline:
			for _, p := range e.Points {
				visit(p.X, p.Y)
			}
		case models.KindCircle, models.KindArc:
			if e.Center != nil {
				visit(e.Center.X-e.R, e.Center.Y-e.R)
				visit(e.Center.X+e.R, e.Center.Y+e.R)
			}
		case models.KindText, models.KindMText, models.KindInsert:
			if e.Pos != nil {
				visit(e.Pos.X, e.Pos.Y)
			}
		}
	}
	return inside
}

// trimmedRange returns the 2nd..98th percentile range when enough samples
// exist, raw extents otherwise. sorted must be ascending.
func trimmedRange(sorted []float64, rawMin, rawMax float64) (float64, float64) {
	if len(sorted) < trimActivateSamples {
		return rawMin, rawMax
	}
	return quantile(sorted, trimLowQuantile), quantile(sorted, trimHighQuantile)
}

// quantile computes a linear-interpolated quantile of an ascending slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// densestWindow finds the shortest contiguous run of sorted samples covering
// the target fraction via a linear sliding-window scan. Unlike a fixed
// percentile cut this adapts to non-uniform and multi-cluster layouts.
func densestWindow(sorted []float64, fraction float64) (float64, float64) {
	n := len(sorted)
	w := int(math.Floor(float64(n) * fraction))
	if w < 2 {
		w = 2
	}
	if w > n {
		w = n
	}

	bestLo := 0
	bestSpan := sorted[w-1] - sorted[0]
	for lo := 1; lo+w <= n; lo++ {
		span := sorted[lo+w-1] - sorted[lo]
		if span < bestSpan {
			bestSpan = span
			bestLo = lo
		}
	}
	return sorted[bestLo], sorted[bestLo+w-1]
}
