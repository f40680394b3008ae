// handlers_siteplan.go - Site-plan editing handlers
package api

import (
	"net/http"

	"github.com/cadream/backend/internal/models"
	"github.com/cadream/backend/internal/session"
	"github.com/cadream/backend/internal/siteplan"
	"github.com/labstack/echo/v4"
)

// SitePlanHandlerImpl implements the SitePlanHandler interface
type SitePlanHandlerImpl struct {
	sessionMgr   *session.Manager
	markerSizePx float64
}

// NewSitePlanHandler creates a new site-plan handler instance
func NewSitePlanHandler(sessionMgr *session.Manager, markerSizePx float64) SitePlanHandler {
	return &SitePlanHandlerImpl{
		sessionMgr:   sessionMgr,
		markerSizePx: markerSizePx,
	}
}

// HandleGetSitePlan returns the current site-plan state and draft.
func (h *SitePlanHandlerImpl) HandleGetSitePlan(c echo.Context) error {
	id := c.Param("sessionId")
	sess, ok := h.sessionMgr.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	h.sessionMgr.Touch(id)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"site_plan":   sess.SitePlan,
		"cable_draft": sess.CableDraft,
	})
}

type placeBessRequest struct {
	Pos    models.Point `json:"pos"`
	Width  float64      `json:"width"`
	Height float64      `json:"height"`
	Label  string       `json:"label"`
}

// HandlePlaceBess places a battery marker.
func (h *SitePlanHandlerImpl) HandlePlaceBess(c echo.Context) error {
	var req placeBessRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	return h.apply(c, func(sess *session.EditorSession) *APIError {
		siteplan.PlaceBess(&sess.SitePlan, req.Pos, req.Width, req.Height, req.Label)
		return nil
	})
}

type movePointRequest struct {
	Pos models.Point `json:"pos"`
}

// HandleMoveBess relocates a battery marker; anchored cables follow.
func (h *SitePlanHandlerImpl) HandleMoveBess(c echo.Context) error {
	bessID := c.Param("bessId")
	var req movePointRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	return h.apply(c, func(sess *session.EditorSession) *APIError {
		if !siteplan.MoveBess(&sess.SitePlan, bessID, req.Pos) {
			return NewNotFoundError("bess", bessID)
		}
		return nil
	})
}

// HandleDeleteBess removes a battery marker.
func (h *SitePlanHandlerImpl) HandleDeleteBess(c echo.Context) error {
	bessID := c.Param("bessId")
	return h.apply(c, func(sess *session.EditorSession) *APIError {
		if !siteplan.DeleteBess(&sess.SitePlan, bessID) {
			return NewNotFoundError("bess", bessID)
		}
		return nil
	})
}

type setPOIRequest struct {
	Pos   models.Point `json:"pos"`
	Label string       `json:"label"`
}

// HandleSetPOI places or moves the point of interconnection. Cable terminal
// ends re-snap to the new location.
func (h *SitePlanHandlerImpl) HandleSetPOI(c echo.Context) error {
	var req setPOIRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	return h.apply(c, func(sess *session.EditorSession) *APIError {
		siteplan.MovePOI(&sess.SitePlan, req.Pos)
		if req.Label != "" {
			sess.SitePlan.POI.Label = req.Label
		}
		return nil
	})
}

type cableVertexRequest struct {
	Pos models.Point `json:"pos"`
}

// HandleAddCableVertex appends a vertex to the in-progress cable draft,
// starting one if needed.
func (h *SitePlanHandlerImpl) HandleAddCableVertex(c echo.Context) error {
	var req cableVertexRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	return h.apply(c, func(sess *session.EditorSession) *APIError {
		if sess.CableDraft == nil {
			sess.CableDraft = &siteplan.CableDraft{}
		}
		sess.CableDraft.AddVertex(req.Pos)
		return nil
	})
}

type finishCableRequest struct {
	Scale float64 `json:"scale"`
}

// HandleFinishCable commits the cable draft. The draft is consumed whether or
// not a cable results.
func (h *SitePlanHandlerImpl) HandleFinishCable(c echo.Context) error {
	var req finishCableRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Scale == 0 {
		req.Scale = 1
	}
	return h.apply(c, func(sess *session.EditorSession) *APIError {
		if sess.CableDraft == nil {
			return NewConflictError("no cable draft in progress")
		}
		markerSize := h.markerSizePx * sess.SitePlan.BessSizeFactor
		siteplan.FinishCable(&sess.SitePlan, *sess.CableDraft, markerSize, req.Scale)
		sess.CableDraft = nil
		return nil
	})
}

// HandleDiscardCableDraft drops the in-progress cable draft.
func (h *SitePlanHandlerImpl) HandleDiscardCableDraft(c echo.Context) error {
	return h.apply(c, func(sess *session.EditorSession) *APIError {
		sess.CableDraft = nil
		return nil
	})
}

type dragCableStartRequest struct {
	Pos   models.Point `json:"pos"`
	Scale float64      `json:"scale"`
}

// HandleDragCableStart drops a cable's start handle at a new position,
// re-running the nearest-asset snap.
func (h *SitePlanHandlerImpl) HandleDragCableStart(c echo.Context) error {
	cableID := c.Param("cableId")
	var req dragCableStartRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Scale == 0 {
		req.Scale = 1
	}
	return h.apply(c, func(sess *session.EditorSession) *APIError {
		markerSize := h.markerSizePx * sess.SitePlan.BessSizeFactor
		if !siteplan.DragCableStart(&sess.SitePlan, cableID, req.Pos, markerSize, req.Scale) {
			return NewNotFoundError("cable", cableID)
		}
		return nil
	})
}

// HandleDeleteCable removes a committed cable.
func (h *SitePlanHandlerImpl) HandleDeleteCable(c echo.Context) error {
	cableID := c.Param("cableId")
	return h.apply(c, func(sess *session.EditorSession) *APIError {
		if !siteplan.DeleteCable(&sess.SitePlan, cableID) {
			return NewNotFoundError("cable", cableID)
		}
		return nil
	})
}

// apply runs a site-plan mutation under the session lock and responds with
// the updated state.
func (h *SitePlanHandlerImpl) apply(c echo.Context, fn func(*session.EditorSession) *APIError) error {
	id := c.Param("sessionId")

	var state models.SitePlanState
	var draft *siteplan.CableDraft
	var opErr *APIError
	err := h.sessionMgr.Apply(id, func(sess *session.EditorSession) error {
		opErr = fn(sess)
		state = sess.SitePlan
		draft = sess.CableDraft
		return nil
	})
	if err != nil {
		return NewNotFoundError("session", id)
	}
	if opErr != nil {
		return opErr
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"site_plan":   state,
		"cable_draft": draft,
	})
}
