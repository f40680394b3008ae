// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"github.com/labstack/echo/v4"
)

// DocumentHandler handles render-document ingestion and viewport queries
type DocumentHandler interface {
	HandleIngestDocument(c echo.Context) error
	HandleGetSessionInfo(c echo.Context) error
	HandleGetLayers(c echo.Context) error
	HandleGetBounds(c echo.Context) error
	HandleQueryWindow(c echo.Context) error
	HandleQueryWindowMsgpack(c echo.Context) error
	HandleTessellateArc(c echo.Context) error
	HandleSetHiddenLayers(c echo.Context) error
	HandleDeleteSession(c echo.Context) error
}

// DiagramHandler handles single-line-diagram editing operations
type DiagramHandler interface {
	HandleGetSymbols(c echo.Context) error
	HandleGetDiagram(c echo.Context) error
	HandlePlaceNode(c echo.Context) error
	HandleDeleteNode(c echo.Context) error
	HandleMoveNode(c echo.Context) error
	HandleClickTerminal(c echo.Context) error
	HandleClickCanvas(c echo.Context) error
	HandleCancelDraft(c echo.Context) error
	HandleBeginReconnect(c echo.Context) error
	HandlePreview(c echo.Context) error
	HandleValidate(c echo.Context) error
}

// SitePlanHandler handles site-plan editing operations
type SitePlanHandler interface {
	HandleGetSitePlan(c echo.Context) error
	HandlePlaceBess(c echo.Context) error
	HandleMoveBess(c echo.Context) error
	HandleDeleteBess(c echo.Context) error
	HandleSetPOI(c echo.Context) error
	HandleAddCableVertex(c echo.Context) error
	HandleFinishCable(c echo.Context) error
	HandleDiscardCableDraft(c echo.Context) error
	HandleDragCableStart(c echo.Context) error
	HandleDeleteCable(c echo.Context) error
}

// ProjectHandler handles project persistence operations
type ProjectHandler interface {
	HandleLoadProject(c echo.Context) error
	HandleSaveProject(c echo.Context) error
	HandleExportSitePlan(c echo.Context) error
	HandleListProjects(c echo.Context) error
	HandleDownloadProject(c echo.Context) error
	HandleDeleteProject(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}
