// handlers_diagram.go - Single-line-diagram editing handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/cadream/backend/internal/models"
	"github.com/cadream/backend/internal/session"
	"github.com/cadream/backend/internal/sld"
	"github.com/labstack/echo/v4"
)

// DiagramHandlerImpl implements the DiagramHandler interface
type DiagramHandlerImpl struct {
	sessionMgr *session.Manager
	registry   *sld.Registry
}

// NewDiagramHandler creates a new diagram handler instance
func NewDiagramHandler(sessionMgr *session.Manager, registry *sld.Registry) DiagramHandler {
	return &DiagramHandlerImpl{
		sessionMgr: sessionMgr,
		registry:   registry,
	}
}

// HandleGetSymbols returns the symbol catalog.
func (h *DiagramHandlerImpl) HandleGetSymbols(c echo.Context) error {
	types := h.registry.Types()
	symbols := make([]*models.SymbolDefinition, 0, len(types))
	for _, t := range types {
		symbols = append(symbols, h.registry.Get(t))
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"symbols": symbols})
}

// HandleGetDiagram returns the diagram plus current validation findings.
func (h *DiagramHandlerImpl) HandleGetDiagram(c echo.Context) error {
	id := c.Param("sessionId")
	sess, ok := h.sessionMgr.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	h.sessionMgr.Touch(id)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"state":  sess.SLD,
		"issues": sld.Validate(&sess.SLD.Diagram, h.registry),
	})
}

type placeNodeRequest struct {
	Type  string       `json:"type"`
	Pos   models.Point `json:"pos"`
	Label string       `json:"label"`
}

// HandlePlaceNode places a new symbol node.
func (h *DiagramHandlerImpl) HandlePlaceNode(c echo.Context) error {
	var req placeNodeRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Type == "" {
		return NewValidationError("type")
	}
	if h.registry.Get(req.Type) == nil {
		return NewNotFoundError("symbol type", req.Type)
	}

	return h.apply(c, func(sess *session.EditorSession) {
		sess.SLD = sld.PlaceNode(sess.SLD, h.registry, req.Type, req.Pos, req.Label)
	})
}

// HandleDeleteNode removes a node and every edge touching it.
func (h *DiagramHandlerImpl) HandleDeleteNode(c echo.Context) error {
	nodeID := c.Param("nodeId")
	if nodeID == "" {
		return NewValidationError("nodeId")
	}
	return h.apply(c, func(sess *session.EditorSession) {
		sess.SLD = sld.DeleteNode(sess.SLD, nodeID)
	})
}

type moveNodeRequest struct {
	Pos models.Point `json:"pos"`
}

// HandleMoveNode repositions a node; connected wires are rerouted.
func (h *DiagramHandlerImpl) HandleMoveNode(c echo.Context) error {
	nodeID := c.Param("nodeId")
	if nodeID == "" {
		return NewValidationError("nodeId")
	}
	var req moveNodeRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	return h.apply(c, func(sess *session.EditorSession) {
		sess.SLD = sld.MoveNode(sess.SLD, nodeID, req.Pos)
	})
}

type terminalClickRequest struct {
	NodeID     string `json:"node_id"`
	TerminalID string `json:"terminal_id"`
}

// HandleClickTerminal advances the wiring tool on a terminal click.
func (h *DiagramHandlerImpl) HandleClickTerminal(c echo.Context) error {
	var req terminalClickRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.NodeID == "" || req.TerminalID == "" {
		return NewValidationError("node_id/terminal_id")
	}
	return h.apply(c, func(sess *session.EditorSession) {
		sess.SLD = sld.ClickTerminal(sess.SLD, req.NodeID, req.TerminalID)
	})
}

type canvasClickRequest struct {
	Pos models.Point `json:"pos"`
}

// HandleClickCanvas adds a manual corner to the wire being drafted.
func (h *DiagramHandlerImpl) HandleClickCanvas(c echo.Context) error {
	var req canvasClickRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	return h.apply(c, func(sess *session.EditorSession) {
		sess.SLD = sld.ClickCanvas(sess.SLD, req.Pos)
	})
}

// HandleCancelDraft discards any in-progress draft.
func (h *DiagramHandlerImpl) HandleCancelDraft(c echo.Context) error {
	return h.apply(c, func(sess *session.EditorSession) {
		sess.SLD = sld.Cancel(sess.SLD)
	})
}

type reconnectRequest struct {
	EdgeID string `json:"edge_id"`
	End    string `json:"end"`
}

// HandleBeginReconnect arms a reconnect of one edge endpoint.
func (h *DiagramHandlerImpl) HandleBeginReconnect(c echo.Context) error {
	var req reconnectRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	end := sld.EdgeEnd(req.End)
	if end != sld.EndFrom && end != sld.EndTo {
		return NewValidationError("end")
	}
	return h.apply(c, func(sess *session.EditorSession) {
		sess.SLD = sld.BeginReconnect(sess.SLD, req.EdgeID, end)
	})
}

// HandlePreview returns the live wire preview toward the cursor. Read-only.
func (h *DiagramHandlerImpl) HandlePreview(c echo.Context) error {
	id := c.Param("sessionId")
	sess, ok := h.sessionMgr.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	x, err1 := strconv.ParseFloat(c.QueryParam("x"), 64)
	y, err2 := strconv.ParseFloat(c.QueryParam("y"), 64)
	if err1 != nil || err2 != nil {
		return NewValidationError("x/y")
	}

	points := sld.Preview(sess.SLD, models.Point{X: x, Y: y})
	return c.JSON(http.StatusOK, map[string]interface{}{"points": points})
}

// HandleValidate returns the current validation findings.
func (h *DiagramHandlerImpl) HandleValidate(c echo.Context) error {
	id := c.Param("sessionId")
	sess, ok := h.sessionMgr.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"issues": sld.Validate(&sess.SLD.Diagram, h.registry),
	})
}

// apply runs a diagram mutation under the session lock and responds with the
// updated state plus revalidation findings.
func (h *DiagramHandlerImpl) apply(c echo.Context, fn func(*session.EditorSession)) error {
	id := c.Param("sessionId")

	var state sld.EditorState
	var issues []models.Issue
	err := h.sessionMgr.Apply(id, func(sess *session.EditorSession) error {
		fn(sess)
		state = sess.SLD
		issues = sld.Validate(&sess.SLD.Diagram, h.registry)
		return nil
	})
	if err != nil {
		return NewNotFoundError("session", id)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"state":  state,
		"issues": issues,
	})
}
