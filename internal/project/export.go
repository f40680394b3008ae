package project

import (
	"encoding/json"

	"github.com/cadream/backend/internal/models"
)

// SchemaExportV1 tags the local site-plan export format.
const SchemaExportV1 = "cadream-export-v1"

type exportFile struct {
	SchemaVersion     string           `json:"schema_version"`
	SourceDXFFilename string           `json:"source_dxf_filename"`
	CoordinateSpace   string           `json:"coordinate_space"`
	Entities          sitePlanEntities `json:"entities"`
}

// Export writes the site-plan entities alone, in CAD world coordinates, for
// downstream tooling. Viewport and tool settings are editor state and are
// deliberately left out.
func Export(p *models.Project) ([]byte, error) {
	site := p.SitePlan

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

	cables := site.CablePaths
	if cables == nil {
		cables = []models.CablePath{}
	}

	out := exportFile{
		SchemaVersion:     SchemaExportV1,
		SourceDXFFilename: p.SourceDXFFilename,
		CoordinateSpace:   "cad_world",
		Entities: sitePlanEntities{
			Bess:       bess,
			POI:        poi,
			CablePaths: cables,
		},
	}
	return json.MarshalIndent(out, "", "  ")
}
