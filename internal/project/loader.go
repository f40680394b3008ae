// Package project reads and writes persisted editor projects. Loading is
// defensive: every field is type-checked and bad values fall back to
// caller-supplied defaults. An unrecognized schema version is the only hard
// failure.
package project

import (
	"encoding/json"

	"github.com/cadream/backend/internal/models"
)

// Defaults supplies the fallback values used for missing or malformed
// fields during load.
type Defaults struct {
	ToolMode       string
	BessSizeFactor float64
	Viewport       models.Viewport
}

// StandardDefaults are the editor's initial settings.
func StandardDefaults() Defaults {
	return Defaults{
		ToolMode:       "select",
		BessSizeFactor: 1.0,
		Viewport:       models.Viewport{Scale: 1},
	}
}

// Load parses a persisted project in either the flat v1 or nested v2 format.
// Returns nil when the payload is not JSON or carries an unknown
// schema_version; every other defect is repaired with defaults.
func Load(data []byte, def Defaults) *models.Project {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil
	}

	switch str(raw, "schema_version", "") {
	case models.SchemaProjectV1:
		p := &models.Project{
			SourceDXFFilename: str(raw, "source_dxf_filename", ""),
			SitePlan:          loadSitePlan(raw, def),
			Diagram:           defaultDiagram(def),
		}
		return p

	case models.SchemaProjectV2:
		ifaces := asMap(raw["interfaces"])
		site := asMap(ifaces["interactive_site_plan"])
		p := &models.Project{
			SourceDXFFilename: str(raw, "source_dxf_filename", str(site, "source_dxf_filename", "")),
			SitePlan:          loadSitePlan(site, def),
			Diagram:           loadDiagram(asMap(ifaces["single_line_diagram_builder"]), def),
		}
		return p
	}

	return nil
}

// loadSitePlan reads the v1-shaped site-plan payload (also nested unchanged
// inside v2).
func loadSitePlan(raw map[string]any, def Defaults) models.SitePlanState {
	entities := asMap(raw["entities"])
	tools := asMap(raw["tool_settings"])

	state := models.SitePlanState{
		Bess:           []models.BessPlacement{},
		CablePaths:     []models.CablePath{},
		ToolMode:       str(tools, "tool_mode", def.ToolMode),
		BessSizeFactor: num(tools, "bess_size_factor", def.BessSizeFactor),
		HiddenLayers:   strSlice(tools["hidden_layers"]),
		Viewport:       loadViewport(asMap(tools["viewport"]), def.Viewport),
	}

	for _, v := range asSlice(entities["bess"]) {
		m := asMap(v)
		if m == nil {
			continue
		}
		b := models.BessPlacement{
			ID:       str(m, "id", ""),
			X:        num(m, "x", 0),
			Y:        num(m, "y", 0),
			Width:    num(m, "width", 0),
			Height:   num(m, "height", 0),
			Rotation: num(m, "rotation", 0),
			Label:    str(m, "label", ""),
		}
		if ins := asMap(m["cad_insert"]); ins != nil {
			b.CadInsert = &models.CadInsert{
				Name:     str(ins, "name", ""),
				Pos:      point(ins["pos"], models.Point{}),
				Rotation: num(ins, "rotation", 0),
				XScale:   num(ins, "xscale", 1),
				YScale:   num(ins, "yscale", 1),
			}
		}
		if b.ID == "" {
			b.ID = models.FormatID("bess", models.NextCounter(bessIDs(state.Bess), "bess"))
		}
		state.Bess = append(state.Bess, b)
	}

	if m := asMap(entities["poi"]); m != nil {
		state.POI = &models.PointOfInterconnection{
			X:     num(m, "x", 0),
			Y:     num(m, "y", 0),
			Label: str(m, "label", ""),
		}
	}

	for _, v := range asSlice(entities["cable_paths"]) {
		m := asMap(v)
		if m == nil {
			continue
		}
		pts := pointSlice(m["points"])
		if len(pts) < 2 {
			continue
		}
		c := models.CablePath{
			ID:         str(m, "id", ""),
			Points:     pts,
			CableType:  str(m, "cable_type", ""),
			Label:      str(m, "label", ""),
			FromBessID: str(m, "from_bess_id", ""),
			ToPOI:      boolean(m, "to_poi", false),
		}
		if c.ID == "" {
			c.ID = models.FormatID("cable", models.NextCounter(cableIDs(state.CablePaths), "cable"))
		}
		state.CablePaths = append(state.CablePaths, c)
	}

	return state
}

// loadDiagram reads the sld-v1 payload. Anything unrecognized collapses to
// an empty diagram rather than failing the whole load.
func loadDiagram(raw map[string]any, def Defaults) models.DiagramState {
	if raw == nil || str(raw, "schema_version", "") != models.SchemaSldV1 {
		return defaultDiagram(def)
	}
	tools := asMap(raw["tool_settings"])

	d := models.DiagramState{
		Nodes:    []models.SldNode{},
		Edges:    []models.SldEdge{},
		ToolMode: str(tools, "tool_mode", def.ToolMode),
		Viewport: loadViewport(asMap(tools["viewport"]), def.Viewport),
	}

	for _, v := range asSlice(raw["nodes"]) {
		m := asMap(v)
		if m == nil || str(m, "id", "") == "" {
			continue
		}
		n := models.SldNode{
			ID:       str(m, "id", ""),
			Type:     str(m, "type", ""),
			Label:    str(m, "label", ""),
			Pos:      point(m["pos"], models.Point{}),
			Rotation: num(m, "rotation", 0),
			Meta:     asMap(m["meta"]),
		}
		for _, tv := range asSlice(m["terminals"]) {
			tm := asMap(tv)
			if tm == nil || str(tm, "id", "") == "" {
				continue
			}
			role := models.TerminalRole(str(tm, "role", string(models.RoleLine)))
			switch role {
			case models.RoleLine, models.RoleIn, models.RoleOut:
			default:
				role = models.RoleLine
			}
			n.Terminals = append(n.Terminals, models.SldTerminal{
				ID:     str(tm, "id", ""),
				Offset: point(tm["offset"], models.Point{}),
				Role:   role,
			})
		}
		d.Nodes = append(d.Nodes, n)
	}

	for _, v := range asSlice(raw["edges"]) {
		m := asMap(v)
		if m == nil || str(m, "id", "") == "" {
			continue
		}
		d.Edges = append(d.Edges, models.SldEdge{
			ID:           str(m, "id", ""),
			FromNode:     str(m, "from_node", ""),
			FromTerminal: str(m, "from_terminal", ""),
			ToNode:       str(m, "to_node", ""),
			ToTerminal:   str(m, "to_terminal", ""),
			Points:       pointSlice(m["points"]),
		})
	}

	return d
}

func defaultDiagram(def Defaults) models.DiagramState {
	return models.DiagramState{
		Nodes:    []models.SldNode{},
		Edges:    []models.SldEdge{},
		ToolMode: def.ToolMode,
		Viewport: def.Viewport,
	}
}

func loadViewport(m map[string]any, def models.Viewport) models.Viewport {
	if m == nil {
		return def
	}
	vp := models.Viewport{
		Scale: num(m, "scale", def.Scale),
		Pos:   point(m["pos"], def.Pos),
	}
	if vp.Scale == 0 {
		vp.Scale = def.Scale
	}
	return vp
}

func bessIDs(list []models.BessPlacement) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].ID
	}
	return out
}

func cableIDs(list []models.CablePath) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = list[i].ID
	}
	return out
}

// Typed extraction helpers. Each returns the fallback when the value is
// missing or of the wrong type.

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func str(m map[string]any, key, fallback string) string {
	if m == nil {
		return fallback
	}
	if s, ok := m[key].(string); ok {
		return s
	}
	return fallback
}

func num(m map[string]any, key string, fallback float64) float64 {
	if m == nil {
		return fallback
	}
	if f, ok := m[key].(float64); ok {
		return f
	}
	return fallback
}

func boolean(m map[string]any, key string, fallback bool) bool {
	if m == nil {
		return fallback
	}
	if b, ok := m[key].(bool); ok {
		return b
	}
	return fallback
}

func strSlice(v any) []string {
	var out []string
	for _, item := range asSlice(v) {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// point accepts [x,y] pairs and {x,y} objects; anything else yields the
// fallback.
func point(v any, fallback models.Point) models.Point {
	switch t := v.(type) {
	case []any:
		if len(t) >= 2 {
			x, okX := t[0].(float64)
			y, okY := t[1].(float64)
			if okX && okY {
				return models.Point{X: x, Y: y}
			}
		}
	case map[string]any:
		return models.Point{X: num(t, "x", fallback.X), Y: num(t, "y", fallback.Y)}
	}
	return fallback
}

func pointSlice(v any) []models.Point {
	var out []models.Point
	for _, item := range asSlice(v) {
		switch item.(type) {
		case []any, map[string]any:
			out = append(out, point(item, models.Point{}))
		}
	}
	return out
}
