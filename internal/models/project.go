package models

// Project schema versions accepted by the loader. v2 is what we save.
const (
	SchemaProjectV1 = "cadream-project-v1"
	SchemaProjectV2 = "cadream-project-v2"
	SchemaSldV1     = "sld-v1"
)

// Project is the in-memory form of a persisted editor project: the site-plan
// state plus the single-line diagram. v1 files carry only the site plan; the
// loader fills the diagram with defaults.
type Project struct {
	SourceDXFFilename string        `json:"source_dxf_filename,omitempty"`
	SitePlan          SitePlanState `json:"site_plan"`
	Diagram           DiagramState  `json:"single_line_diagram"`
}

// SessionInfo is the API view of one editor session.
type SessionInfo struct {
	ID                string `json:"id"`
	SourceDXFFilename string `json:"sourceDxfFilename,omitempty"`
	EntityCount       int    `json:"entityCount"`
	LayerCount        int    `json:"layerCount"`
	BlockCount        int    `json:"blockCount"`
	NodeCount         int    `json:"nodeCount"`
	EdgeCount         int    `json:"edgeCount"`
	CableCount        int    `json:"cableCount"`
	CreatedAt         int64  `json:"createdAt"` // Unix ms
}
