// Package siteplan implements the site-plan editing engine: battery
// placements, the point of interconnection and cable-path drafting with
// nearest-asset snapping.
package siteplan

import (
	"math"

	"github.com/cadream/backend/internal/models"
)

// snapRadiusPx is the screen-space snap distance floor; at low zoom the
// world-space radius grows so snapping stays usable.
const (
	snapRadiusPx         = 60.0
	snapMarkerSizeFactor = 1.6
	minSnapScale         = 1e-4
)

// CableDraft is an in-progress cable polyline. Vertices accumulate in click
// order; nothing is committed until Finish.
type CableDraft struct {
	Points []models.Point `json:"points"`
}

// AddVertex appends a vertex to the draft.
func (d *CableDraft) AddVertex(p models.Point) {
	d.Points = append(d.Points, p)
}

// SnapRadius is the zoom-adaptive snap distance in world units.
func SnapRadius(markerSize, scale float64) float64 {
	s := math.Max(math.Abs(scale), minSnapScale)
	return math.Max(markerSize*snapMarkerSizeFactor, snapRadiusPx/s)
}

// NearestBess finds the placed asset closest to p within radius. Squared
// distances avoid a square root per candidate. Returns ok=false when no
// candidate is in range.
func NearestBess(p models.Point, bess []models.BessPlacement, radius float64) (id string, at models.Point, ok bool) {
	best := radius * radius
	for i := range bess {
		dx := bess[i].X - p.X
		dy := bess[i].Y - p.Y
		d2 := dx*dx + dy*dy
		if d2 <= best {
			best = d2
			id = bess[i].ID
			at = models.Point{X: bess[i].X, Y: bess[i].Y}
			ok = true
		}
	}
	return id, at, ok
}

// FinishCable commits a draft as a cable path: the first vertex snaps to the
// nearest asset within the zoom-adaptive radius (staying put when nothing is
// in range), the last vertex is forced to the current point of
// interconnection. Returns nil when the draft has fewer than 2 points or no
// POI is placed; the draft is simply discarded in that case.
func FinishCable(state *models.SitePlanState, draft CableDraft, markerSize, scale float64) *models.CablePath {
	if len(draft.Points) < 2 || state.POI == nil {
		return nil
	}

	points := make([]models.Point, len(draft.Points))
	copy(points, draft.Points)

	var fromID string
	if id, at, ok := NearestBess(points[0], state.Bess, SnapRadius(markerSize, scale)); ok {
		points[0] = at
		fromID = id
	}
	points[len(points)-1] = models.Point{X: state.POI.X, Y: state.POI.Y}

	ids := make([]string, len(state.CablePaths))
	for i := range state.CablePaths {
		ids[i] = state.CablePaths[i].ID
	}

	cable := models.CablePath{
		ID:         models.FormatID("cable", models.NextCounter(ids, "cable")),
		Points:     points,
		FromBessID: fromID,
		ToPOI:      true,
	}
	state.CablePaths = append(state.CablePaths, cable)
	return &state.CablePaths[len(state.CablePaths)-1]
}

// MovePOI relocates the point of interconnection and re-snaps the terminal
// end of every cable to it. The move breaks any asset anchoring on that end.
func MovePOI(state *models.SitePlanState, to models.Point) {
	if state.POI == nil {
		state.POI = &models.PointOfInterconnection{}
	}
	state.POI.X = to.X
	state.POI.Y = to.Y

	for i := range state.CablePaths {
		c := &state.CablePaths[i]
		if len(c.Points) == 0 {
			continue
		}
		c.Points[len(c.Points)-1] = to
		c.ToPOI = true
	}
}

// DragCableStart moves a cable's start handle to p and re-runs the same
// nearest-asset snap against current asset positions. Out-of-range drops
// leave the raw pointer location and clear the anchor.
func DragCableStart(state *models.SitePlanState, cableID string, p models.Point, markerSize, scale float64) bool {
	c := state.CablePath(cableID)
	if c == nil || len(c.Points) == 0 {
		return false
	}

	if id, at, ok := NearestBess(p, state.Bess, SnapRadius(markerSize, scale)); ok {
		c.Points[0] = at
		c.FromBessID = id
	} else {
		c.Points[0] = p
		c.FromBessID = ""
	}
	return true
}

// PlaceBess adds a battery placement marker at the given position.
func PlaceBess(state *models.SitePlanState, p models.Point, width, height float64, label string) *models.BessPlacement {
	ids := make([]string, len(state.Bess))
	for i := range state.Bess {
		ids[i] = state.Bess[i].ID
	}

	if label == "" {
		label = "BESS Unit"
	}
	state.Bess = append(state.Bess, models.BessPlacement{
		ID:     models.FormatID("bess", models.NextCounter(ids, "bess")),
		X:      p.X,
		Y:      p.Y,
		Width:  width,
		Height: height,
		Label:  label,
	})
	return &state.Bess[len(state.Bess)-1]
}

// MoveBess relocates a placement. Cables anchored to it follow: their start
// vertex moves with the marker.
func MoveBess(state *models.SitePlanState, id string, to models.Point) bool {
	b := state.Placement(id)
	if b == nil {
		return false
	}
	b.X = to.X
	b.Y = to.Y

	for i := range state.CablePaths {
		c := &state.CablePaths[i]
		if c.FromBessID == id && len(c.Points) > 0 {
			c.Points[0] = to
		}
	}
	return true
}

// DeleteCable removes a committed cable path.
func DeleteCable(state *models.SitePlanState, id string) bool {
	for i := range state.CablePaths {
		if state.CablePaths[i].ID == id {
			state.CablePaths = append(state.CablePaths[:i], state.CablePaths[i+1:]...)
			return true
		}
	}
	return false
}

// DeleteBess removes a placement. Cables anchored to it keep their geometry
// but lose the anchor.
func DeleteBess(state *models.SitePlanState, id string) bool {
	idx := -1
	for i := range state.Bess {
		if state.Bess[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	state.Bess = append(state.Bess[:idx], state.Bess[idx+1:]...)

	for i := range state.CablePaths {
		if state.CablePaths[i].FromBessID == id {
			state.CablePaths[i].FromBessID = ""
		}
	}
	return true
}
