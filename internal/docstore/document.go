// Package docstore holds ingested render documents and answers viewport
// culling queries over them. Small documents are served from memory with a
// memoized bounding-box table; large documents additionally get a
// DuckDB-backed spatial index so window queries stay cheap.
package docstore

import (
	"github.com/cadream/backend/internal/geom"
	"github.com/cadream/backend/internal/models"
)

// Document is one ingested render document. The RenderDoc itself is
// read-only; ingestion assigns sequential entity ids (the bbox memoization
// key) and estimates the structure bounds once.
type Document struct {
	Doc    *models.RenderDoc
	Bounds *models.Bounds // robust structure bounds; nil when too few samples

	cache *geom.BoundsCache
	byID  map[int]*models.RenderEntity
	duck  *DuckStore
}

// Ingest takes ownership of a parsed document: ids are assigned to both
// modelspace and block entities, the bbox cache is created and the structure
// bounds are estimated.
func Ingest(doc *models.RenderDoc) *Document {
	next := 1
	byID := make(map[int]*models.RenderEntity, len(doc.Entities))
	for _, e := range doc.Entities {
		e.ID = next
		byID[next] = e
		next++
	}
	for _, block := range doc.Blocks {
		for _, e := range block {
			e.ID = next
			next++
		}
	}

	return &Document{
		Doc:    doc,
		Bounds: geom.EstimateStructureBounds(doc.Entities),
		cache:  geom.NewBoundsCache(doc),
		byID:   byID,
	}
}

// EntityCount returns the number of modelspace entities.
func (d *Document) EntityCount() int {
	return len(d.Doc.Entities)
}

// Entity returns the entity with the given ingestion id, or nil.
func (d *Document) Entity(id int) *models.RenderEntity {
	return d.byID[id]
}

// EntityBounds returns the memoized bounding box of one entity.
func (d *Document) EntityBounds(e *models.RenderEntity) *models.Bounds {
	return d.cache.EntityBounds(e)
}

// AttachIndex wires a DuckDB index to the document. Window queries prefer
// the index once attached.
func (d *Document) AttachIndex(duck *DuckStore) {
	d.duck = duck
}

// HasIndex reports whether a DuckDB index is attached.
func (d *Document) HasIndex() bool {
	return d.duck != nil
}

// QueryWindow returns the entities whose bounding boxes intersect the world
// window, skipping hidden layers. Entities with no resolvable bounds
// (unknown blocks, cyclic inserts) are treated as absent.
func (d *Document) QueryWindow(window models.Bounds, hiddenLayers []string) ([]*models.RenderEntity, error) {
	hidden := make(map[string]struct{}, len(hiddenLayers))
	for _, l := range hiddenLayers {
		hidden[l] = struct{}{}
	}

	if d.duck != nil {
		ids, err := d.duck.QueryWindow(window, hiddenLayers)
		if err != nil {
			return nil, err
		}
		out := make([]*models.RenderEntity, 0, len(ids))
		for _, id := range ids {
			if e := d.byID[id]; e != nil {
				out = append(out, e)
			}
		}
		return out, nil
	}

	out := make([]*models.RenderEntity, 0)
	for _, e := range d.Doc.Entities {
		if _, skip := hidden[e.Layer]; skip {
			continue
		}
		b := d.cache.EntityBounds(e)
		if b == nil {
			continue
		}
		if b.Intersects(window) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Close releases the DuckDB index, if any.
func (d *Document) Close() {
	if d.duck != nil {
		d.duck.Close()
		d.duck = nil
	}
}
