package models

// Viewport is a pan/zoom camera over world space: screen = world*Scale + Pos.
type Viewport struct {
	Scale float64 `json:"scale"`
	Pos   Point   `json:"pos"`
}

// CadInsert records the CAD block instance a site-plan asset was derived
// from, so exports can round-trip back into drawing coordinates.
type CadInsert struct {
	Name     string  `json:"name"`
	Pos      Point   `json:"pos"`
	Rotation float64 `json:"rotation,omitempty"`
	XScale   float64 `json:"xscale,omitempty"`
	YScale   float64 `json:"yscale,omitempty"`
}

// BessPlacement is one battery unit placed on the site plan. X/Y is the
// marker position in CAD world coordinates.
type BessPlacement struct {
	ID        string     `json:"id"`
	X         float64    `json:"x"`
	Y         float64    `json:"y"`
	Width     float64    `json:"width"`
	Height    float64    `json:"height"`
	Rotation  float64    `json:"rotation,omitempty"`
	Label     string     `json:"label,omitempty"`
	CadInsert *CadInsert `json:"cad_insert,omitempty"`
}

// PointOfInterconnection is the grid tie-in location. At most one per plan.
type PointOfInterconnection struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label,omitempty"`
}

// CablePath is a drafted cable run. Points always has length >= 2. The first
// point may be anchored to a battery placement, the last to the POI; an
// anchor means "follow that asset when it moves".
type CablePath struct {
	ID         string  `json:"id"`
	Points     []Point `json:"points"`
	CableType  string  `json:"cable_type,omitempty"`
	Label      string  `json:"label,omitempty"`
	FromBessID string  `json:"from_bess_id,omitempty"`
	ToPOI      bool    `json:"to_poi,omitempty"`
}

// SitePlanState is the site-plan half of an editor session.
type SitePlanState struct {
	Bess           []BessPlacement         `json:"bess"`
	POI            *PointOfInterconnection `json:"poi,omitempty"`
	CablePaths     []CablePath             `json:"cable_paths"`
	ToolMode       string                  `json:"tool_mode,omitempty"`
	BessSizeFactor float64                 `json:"bess_size_factor,omitempty"`
	HiddenLayers   []string                `json:"hidden_layers,omitempty"`
	Viewport       Viewport                `json:"viewport"`
}

// Placement returns the battery placement with the given id, or nil.
func (s *SitePlanState) Placement(id string) *BessPlacement {
	for i := range s.Bess {
		if s.Bess[i].ID == id {
			return &s.Bess[i]
		}
	}
	return nil
}

// CablePath returns the cable with the given id, or nil.
func (s *SitePlanState) CablePath(id string) *CablePath {
	for i := range s.CablePaths {
		if s.CablePaths[i].ID == id {
			return &s.CablePaths[i]
		}
	}
	return nil
}
