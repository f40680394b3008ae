package geom

import "github.com/cadream/backend/internal/models"

// maxBlockDepth caps block-instance recursion. Cyclic block graphs are a
// real possible input, not a hypothetical; anything past the cap contributes
// nothing rather than erroring.
const maxBlockDepth = 10

// BoundsCache memoizes per-entity bounding boxes across culling passes,
// keyed by the entity id assigned at ingestion. A replaced entity has a new
// id and is simply a cache miss; nothing is ever invalidated.
type BoundsCache struct {
	doc  *models.RenderDoc
	byID map[int]*models.Bounds
}

// NewBoundsCache creates a cache over the given document. The document is
// read-only; the cache only ever grows.
func NewBoundsCache(doc *models.RenderDoc) *BoundsCache {
	return &BoundsCache{doc: doc, byID: make(map[int]*models.Bounds)}
}

// EntityBounds returns the world-space bounding box of an entity, or nil for
// entities with no resolvable extent (empty polylines, inserts of unknown or
// cyclic blocks). Results are memoized by entity id.
func (c *BoundsCache) EntityBounds(e *models.RenderEntity) *models.Bounds {
	if b, ok := c.byID[e.ID]; ok {
		return b
	}
	b := entityBounds(e, c.doc, Identity(), 0, nil)
	c.byID[e.ID] = b
	return b
}

// entityBounds computes bounds under an accumulated instance transform.
// visited carries the chain of block names already being expanded.
func entityBounds(e *models.RenderEntity, doc *models.RenderDoc, xform Affine2D, depth int, visited []string) *models.Bounds {
	switch e.Kind {
	case models.KindLine:
		if e.P1 == nil || e.P2 == nil {
			return nil
		}
		return pointsBounds([]models.Point{xform.ApplyPoint(*e.P1), xform.ApplyPoint(*e.P2)})

	case models.KindPolyline:
		if len(e.Points) == 0 {
			return nil
		}
		pts := make([]models.Point, len(e.Points))
		for i, p := range e.Points {
			pts[i] = xform.ApplyPoint(p)
		}
		return pointsBounds(pts)

	case models.KindCircle, models.KindArc:
		if e.Center == nil {
			return nil
		}
		local := models.Bounds{
			Min: models.Point{X: e.Center.X - e.R, Y: e.Center.Y - e.R},
			Max: models.Point{X: e.Center.X + e.R, Y: e.Center.Y + e.R},
		}
		b := TransformBounds(local, xform)
		return &b

	case models.KindText, models.KindMText:
		if e.Pos == nil {
			return nil
		}
		p := xform.ApplyPoint(*e.Pos)
		return &models.Bounds{Min: p, Max: p}

	case models.KindInsert:
		return insertBounds(e, doc, xform, depth, visited)
	}
	return nil
}

// insertBounds expands a block instance depth-first, composing the instance
// transform onto the accumulated one. Unknown blocks, cyclic references and
// over-deep nesting are treated as absent.
func insertBounds(e *models.RenderEntity, doc *models.RenderDoc, xform Affine2D, depth int, visited []string) *models.Bounds {
	if e.Pos == nil || depth >= maxBlockDepth {
		return nil
	}
	for _, name := range visited {
		if name == e.Name {
			return nil
		}
	}
	children, ok := doc.Blocks[e.Name]
	if !ok {
		return nil
	}

	xs, ys := e.XScale, e.YScale
	if xs == 0 {
		xs = 1
	}
	if ys == 0 {
		ys = 1
	}
	child := Compose(xform, FromInsert(*e.Pos, e.Rotation, xs, ys))
	chain := append(visited, e.Name)

	var out *models.Bounds
	for _, c := range children {
		b := entityBounds(c, doc, child, depth+1, chain)
		if b == nil {
			continue
		}
		if out == nil {
			v := *b
			out = &v
		} else {
			v := out.Union(*b)
			out = &v
		}
	}
	return out
}

func pointsBounds(pts []models.Point) *models.Bounds {
	b := models.Bounds{Min: pts[0], Max: pts[0]}
	for _, p := range pts[1:] {
		if p.X < b.Min.X {
			b.Min.X = p.X
		}
		if p.Y < b.Min.Y {
			b.Min.Y = p.Y
		}
		if p.X > b.Max.X {
			b.Max.X = p.X
		}
		if p.Y > b.Max.Y {
			b.Max.Y = p.Y
		}
	}
	return &b
}
