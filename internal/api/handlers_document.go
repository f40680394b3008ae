// handlers_document.go - Render document ingestion and viewport query handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/cadream/backend/internal/docstore"
	"github.com/cadream/backend/internal/geom"
	"github.com/cadream/backend/internal/models"
	"github.com/cadream/backend/internal/session"
	"github.com/labstack/echo/v4"
	"github.com/vmihailenco/msgpack/v5"
)

// DocumentHandlerImpl implements the DocumentHandler interface
type DocumentHandlerImpl struct {
	sessionMgr *session.Manager

	viewportPaddingPx float64
	maxPxPerSegment   float64
	maxSegmentsPerArc int
}

// NewDocumentHandler creates a new document handler instance
func NewDocumentHandler(sessionMgr *session.Manager, paddingPx, maxPxPerSegment float64, maxSegments int) DocumentHandler {
	return &DocumentHandlerImpl{
		sessionMgr:        sessionMgr,
		viewportPaddingPx: paddingPx,
		maxPxPerSegment:   maxPxPerSegment,
		maxSegmentsPerArc: maxSegments,
	}
}

type ingestRequest struct {
	SourceDXFFilename string           `json:"source_dxf_filename"`
	Document          models.RenderDoc `json:"document"`
}

// HandleIngestDocument accepts a parsed render document and opens an editor
// session around it.
func (h *DocumentHandlerImpl) HandleIngestDocument(c echo.Context) error {
	var req ingestRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	doc := docstore.Ingest(&req.Document)
	sess, err := h.sessionMgr.Create(doc, req.SourceDXFFilename)
	if err != nil {
		return NewInternalError("failed to create session", err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"session": sess.Info(),
		"bounds":  doc.Bounds,
		"indexed": doc.HasIndex(),
	})
}

// HandleGetSessionInfo returns session metadata.
func (h *DocumentHandlerImpl) HandleGetSessionInfo(c echo.Context) error {
	sess, apiErr := h.lookup(c)
	if apiErr != nil {
		return apiErr
	}
	h.sessionMgr.Touch(sess.ID)
	return c.JSON(http.StatusOK, sess.Info())
}

// HandleGetLayers returns the document's layer table.
func (h *DocumentHandlerImpl) HandleGetLayers(c echo.Context) error {
	sess, apiErr := h.lookup(c)
	if apiErr != nil {
		return apiErr
	}
	if sess.Doc == nil {
		return NewNotFoundError("document", sess.ID)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"layers": sess.Doc.Doc.Layers,
		"hidden": sess.SitePlan.HiddenLayers,
	})
}

// HandleGetBounds returns the estimated structure bounds of the document.
func (h *DocumentHandlerImpl) HandleGetBounds(c echo.Context) error {
	sess, apiErr := h.lookup(c)
	if apiErr != nil {
		return apiErr
	}
	if sess.Doc == nil {
		return NewNotFoundError("document", sess.ID)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"bounds": sess.Doc.Bounds,
	})
}

// HandleQueryWindow returns the entities visible in the requested viewport.
// The window is given either directly (minX..maxY) or as a screen viewport
// (width, height, panX, panY, scale) which is inverted server-side.
func (h *DocumentHandlerImpl) HandleQueryWindow(c echo.Context) error {
	entities, window, apiErr := h.queryWindow(c)
	if apiErr != nil {
		return apiErr
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"entities": entities,
		"total":    len(entities),
		"window":   window,
	})
}

// HandleQueryWindowMsgpack is HandleQueryWindow with a msgpack body, used by
// the renderer for heavy frames.
func (h *DocumentHandlerImpl) HandleQueryWindowMsgpack(c echo.Context) error {
	entities, window, apiErr := h.queryWindow(c)
	if apiErr != nil {
		return apiErr
	}

	data, err := msgpack.Marshal(map[string]interface{}{
		"entities": entities,
		"total":    len(entities),
		"window":   window,
	})
	if err != nil {
		return NewInternalError("failed to encode msgpack", err)
	}
	return c.Blob(http.StatusOK, "application/msgpack", data)
}

func (h *DocumentHandlerImpl) queryWindow(c echo.Context) ([]*models.RenderEntity, models.Bounds, *APIError) {
	sess, apiErr := h.lookup(c)
	if apiErr != nil {
		return nil, models.Bounds{}, apiErr
	}
	if sess.Doc == nil {
		return nil, models.Bounds{}, NewNotFoundError("document", sess.ID)
	}
	h.sessionMgr.Touch(sess.ID)

	window, apiErr := h.parseWindow(c)
	if apiErr != nil {
		return nil, models.Bounds{}, apiErr
	}

	entities, err := sess.Doc.QueryWindow(window, sess.SitePlan.HiddenLayers)
	if err != nil {
		return nil, models.Bounds{}, NewInternalError("window query failed", err)
	}
	return entities, window, nil
}

func (h *DocumentHandlerImpl) parseWindow(c echo.Context) (models.Bounds, *APIError) {
	if c.QueryParam("minX") != "" {
		minX, err1 := strconv.ParseFloat(c.QueryParam("minX"), 64)
		minY, err2 := strconv.ParseFloat(c.QueryParam("minY"), 64)
		maxX, err3 := strconv.ParseFloat(c.QueryParam("maxX"), 64)
		maxY, err4 := strconv.ParseFloat(c.QueryParam("maxY"), 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return models.Bounds{}, NewValidationError("minX/minY/maxX/maxY")
		}
		return models.Bounds{
			Min: models.Point{X: minX, Y: minY},
			Max: models.Point{X: maxX, Y: maxY},
		}, nil
	}

	width, err1 := strconv.ParseFloat(c.QueryParam("width"), 64)
	height, err2 := strconv.ParseFloat(c.QueryParam("height"), 64)
	scale, err3 := strconv.ParseFloat(c.QueryParam("scale"), 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return models.Bounds{}, NewValidationError("width/height/scale")
	}
	panX, _ := strconv.ParseFloat(c.QueryParam("panX"), 64)
	panY, _ := strconv.ParseFloat(c.QueryParam("panY"), 64)

	padding := h.viewportPaddingPx
	if p := c.QueryParam("padding"); p != "" {
		if v, err := strconv.ParseFloat(p, 64); err == nil {
			padding = v
		}
	}

	return geom.WorldBoundsFromViewport(width, height, models.Point{X: panX, Y: panY}, scale, padding), nil
}

// HandleTessellateArc returns the polyline approximation of a circle or arc
// at the requested zoom, using the adaptive segment budget.
func (h *DocumentHandlerImpl) HandleTessellateArc(c echo.Context) error {
	cx, err1 := strconv.ParseFloat(c.QueryParam("cx"), 64)
	cy, err2 := strconv.ParseFloat(c.QueryParam("cy"), 64)
	r, err3 := strconv.ParseFloat(c.QueryParam("r"), 64)
	scale, err4 := strconv.ParseFloat(c.QueryParam("scale"), 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return NewValidationError("cx/cy/r/scale")
	}

	center := models.Point{X: cx, Y: cy}

	var points []models.Point
	var segments int
	if c.QueryParam("start") != "" || c.QueryParam("end") != "" {
		start, err1 := strconv.ParseFloat(c.QueryParam("start"), 64)
		end, err2 := strconv.ParseFloat(c.QueryParam("end"), 64)
		if err1 != nil || err2 != nil {
			return NewValidationError("start/end")
		}
		span := geom.NormalizedSpanDeg(start, end)
		segments = geom.SegmentCount(r, span, scale, h.maxPxPerSegment, h.maxSegmentsPerArc)
		points = geom.ArcPoints(center, r, start, end, segments)
	} else {
		segments = geom.CircleSegmentCount(r, scale, h.maxPxPerSegment, h.maxSegmentsPerArc)
		points = geom.ArcPoints(center, r, 0, 360, segments)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"segments": segments,
		"points":   points,
	})
}

type hiddenLayersRequest struct {
	Layers []string `json:"layers"`
}

// HandleSetHiddenLayers replaces the session's hidden-layer set.
func (h *DocumentHandlerImpl) HandleSetHiddenLayers(c echo.Context) error {
	var req hiddenLayersRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	id := c.Param("sessionId")
	err := h.sessionMgr.Apply(id, func(sess *session.EditorSession) error {
		sess.SitePlan.HiddenLayers = req.Layers
		return nil
	})
	if err != nil {
		return NewNotFoundError("session", id)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"hidden": req.Layers})
}

// HandleDeleteSession closes a session and frees its resources.
func (h *DocumentHandlerImpl) HandleDeleteSession(c echo.Context) error {
	id := c.Param("sessionId")
	if !h.sessionMgr.Delete(id) {
		return NewNotFoundError("session", id)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *DocumentHandlerImpl) lookup(c echo.Context) (*session.EditorSession, *APIError) {
	id := c.Param("sessionId")
	if id == "" {
		return nil, NewValidationError("sessionId")
	}
	sess, ok := h.sessionMgr.Get(id)
	if !ok {
		return nil, NewNotFoundError("session", id)
	}
	return sess, nil
}
