package project

import (
	"encoding/json"

	"github.com/cadream/backend/internal/models"
)

// Wire shapes for the v2 save format. Points marshal as [x,y] pairs via
// models.Point.

type fileV2 struct {
	SchemaVersion     string       `json:"schema_version"`
	SourceDXFFilename string       `json:"source_dxf_filename"`
	Interfaces        interfacesV2 `json:"interfaces"`
}

type interfacesV2 struct {
	SitePlan sitePlanFile `json:"interactive_site_plan"`
	Diagram  diagramFile  `json:"single_line_diagram_builder"`
}

type sitePlanFile struct {
	Entities     sitePlanEntities `json:"entities"`
	ToolSettings toolSettingsFile `json:"tool_settings"`
}

type sitePlanEntities struct {
	Bess       []bessFile         `json:"bess"`
	POI        *poiFile           `json:"poi,omitempty"`
	CablePaths []models.CablePath `json:"cable_paths"`
}

type bessFile struct {
	ID        string         `json:"id"`
	X         float64        `json:"x"`
	Y         float64        `json:"y"`
	Width     float64        `json:"width"`
	Height    float64        `json:"height"`
	Rotation  float64        `json:"rotation"`
	Label     string         `json:"label"`
	CadInsert *cadInsertFile `json:"cad_insert,omitempty"`
}

type cadInsertFile struct {
	Name     string       `json:"name"`
	Pos      models.Point `json:"pos"`
	Rotation float64      `json:"rotation"`
	XScale   float64      `json:"xscale"`
	YScale   float64      `json:"yscale"`
}

type poiFile struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Label string  `json:"label"`
}

type toolSettingsFile struct {
	ToolMode       string       `json:"tool_mode"`
	BessSizeFactor float64      `json:"bess_size_factor,omitempty"`
	HiddenLayers   []string     `json:"hidden_layers,omitempty"`
	Viewport       viewportFile `json:"viewport"`
}

type viewportFile struct {
	Scale float64      `json:"scale"`
	Pos   models.Point `json:"pos"`
}

type diagramFile struct {
	SchemaVersion string           `json:"schema_version"`
	Nodes         []nodeFile       `json:"nodes"`
	Edges         []models.SldEdge `json:"edges"`
	ToolSettings  toolSettingsFile `json:"tool_settings"`
}

type nodeFile struct {
	ID        string               `json:"id"`
	Type      string               `json:"type"`
	Label     string               `json:"label"`
	Pos       models.Point         `json:"pos"`
	Rotation  float64              `json:"rotation"`
	Terminals []models.SldTerminal `json:"terminals"`
	Meta      map[string]any       `json:"meta,omitempty"`
}

// Save serializes a project in the current (v2) format. Older v1 files are
// readable but never written.
func Save(p *models.Project) ([]byte, error) {
	site := p.SitePlan
	diag := p.Diagram

	bess := make([]bessFile, 0, len(site.Bess))
	for _, b := range site.Bess {
		bf := bessFile{
			ID:       b.ID,
			X:        b.X,
			Y:        b.Y,
			Width:    b.Width,
			Height:   b.Height,
			Rotation: b.Rotation,
			Label:    b.Label,
		}
		if b.CadInsert != nil {
			bf.CadInsert = &cadInsertFile{
				Name:     b.CadInsert.Name,
				Pos:      b.CadInsert.Pos,
				Rotation: b.CadInsert.Rotation,
				XScale:   b.CadInsert.XScale,
				YScale:   b.CadInsert.YScale,
			}
		}
		bess = append(bess, bf)
	}

	var poi *poiFile
	if site.POI != nil {
		poi = &poiFile{X: site.POI.X, Y: site.POI.Y, Label: site.POI.Label}
	}

	nodes := make([]nodeFile, 0, len(diag.Nodes))
	for _, n := range diag.Nodes {
		nodes = append(nodes, nodeFile{
			ID:        n.ID,
			Type:      n.Type,
			Label:     n.Label,
			Pos:       n.Pos,
			Rotation:  n.Rotation,
			Terminals: n.Terminals,
			Meta:      n.Meta,
		})
	}

	cables := site.CablePaths
	if cables == nil {
		cables = []models.CablePath{}
	}
	edges := diag.Edges
	if edges == nil {
		edges = []models.SldEdge{}
	}

	out := fileV2{
		SchemaVersion:     models.SchemaProjectV2,
		SourceDXFFilename: p.SourceDXFFilename,
		Interfaces: interfacesV2{
			SitePlan: sitePlanFile{
				Entities: sitePlanEntities{
					Bess:       bess,
					POI:        poi,
					CablePaths: cables,
				},
				ToolSettings: toolSettingsFile{
					ToolMode:       site.ToolMode,
					BessSizeFactor: site.BessSizeFactor,
					HiddenLayers:   site.HiddenLayers,
					Viewport:       viewportFile{Scale: site.Viewport.Scale, Pos: site.Viewport.Pos},
				},
			},
			Diagram: diagramFile{
				SchemaVersion: models.SchemaSldV1,
				Nodes:         nodes,
				Edges:         edges,
				ToolSettings: toolSettingsFile{
					ToolMode: diag.ToolMode,
					Viewport: viewportFile{Scale: diag.Viewport.Scale, Pos: diag.Viewport.Pos},
				},
			},
		},
	}
	return json.MarshalIndent(out, "", "  ")
}
