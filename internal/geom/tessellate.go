package geom

import (
	"math"

	"github.com/cadream/backend/internal/models"
)

// Segment-count floors: full circles never drop below 24 segments, partial
// arcs never below 8. Both exist so shapes stay recognizable at any zoom.
const (
	minSegmentsFullCircle = 24
	minSegmentsArc        = 8
	fullCircleSpanDeg     = 359.999
)

// NormalizedSpanDeg maps an arc's start/end angles to a span in (0, 360].
// A raw span of 0 (start == end) means a full circle, never a zero arc.
func NormalizedSpanDeg(startDeg, endDeg float64) float64 {
	span := math.Mod(endDeg-startDeg, 360)
	span = math.Mod(span+360, 360)
	if span == 0 {
		return 360
	}
	return span
}

// SegmentCount picks how many line segments to use for an arc so that the
// on-screen length of each segment stays under maxPxPerSegment. Scaling with
// screen size (not world size) keeps zoomed-out heavy drawings cheap while
// zoomed-in arcs stay smooth, under a hard cap to bound per-frame cost.
func SegmentCount(radiusWorld, spanDeg, zoomScale, maxPxPerSegment float64, maxSegments int) int {
	arcLenPx := radiusWorld * math.Abs(zoomScale) * spanDeg * math.Pi / 180
	raw := int(math.Ceil(arcLenPx / math.Max(2, maxPxPerSegment)))

	min := minSegmentsArc
	if spanDeg >= fullCircleSpanDeg {
		min = minSegmentsFullCircle
	}

	if raw < min {
		raw = min
	}
	if raw > maxSegments {
		raw = maxSegments
	}
	return raw
}

// CircleSegmentCount is SegmentCount with the span fixed at a full circle.
func CircleSegmentCount(radiusWorld, zoomScale, maxPxPerSegment float64, maxSegments int) int {
	return SegmentCount(radiusWorld, 360, zoomScale, maxPxPerSegment, maxSegments)
}

// ArcPoints samples segments+1 angles linearly from startDeg to endDeg,
// producing a polyline approximation of the arc. When end < start, 360 is
// added to end so spans sweep forward; callers wanting the reverse direction
// pass the angles swapped.
func ArcPoints(center models.Point, r, startDeg, endDeg float64, segments int) []models.Point {
	if segments < 1 {
		segments = 1
	}
	if endDeg < startDeg {
		endDeg += 360
	}

	pts := make([]models.Point, 0, segments+1)
	for i := 0; i <= segments; i++ {
		deg := startDeg + (endDeg-startDeg)*float64(i)/float64(segments)
		rad := deg * math.Pi / 180
		pts = append(pts, models.Point{
			X: center.X + r*math.Cos(rad),
			Y: center.Y + r*math.Sin(rad),
		})
	}
	return pts
}
