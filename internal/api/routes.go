// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/cadream/backend/internal/config"
	"github.com/cadream/backend/internal/session"
	"github.com/cadream/backend/internal/sld"
	"github.com/cadream/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store      storage.Store
	SessionMgr *session.Manager
	Registry   *sld.Registry
	Config     *config.AppConfig
	Version    string
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Document DocumentHandler
	Diagram  DiagramHandler
	SitePlan SitePlanHandler
	Project  ProjectHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	editor := deps.Config.Editor
	return &Handlers{
		Health: NewHealthHandler(deps.Version, deps.SessionMgr),
		Document: NewDocumentHandler(deps.SessionMgr,
			editor.ViewportPaddingPx, editor.MaxPxPerSegment, editor.MaxSegmentsPerArc),
		Diagram:  NewDiagramHandler(deps.SessionMgr, deps.Registry),
		SitePlan: NewSitePlanHandler(deps.SessionMgr, editor.MarkerSizePx),
		Project:  NewProjectHandler(deps.Store, deps.SessionMgr),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	// Health check
	e.GET("/health", handlers.Health.HandleHealth)

	// Document ingestion and viewport queries
	docGroup := e.Group("/api/documents")
	docGroup.POST("", handlers.Document.HandleIngestDocument)
	docGroup.GET("/tessellate", handlers.Document.HandleTessellateArc)

	sessGroup := e.Group("/api/sessions/:sessionId")
	sessGroup.GET("", handlers.Document.HandleGetSessionInfo)
	sessGroup.DELETE("", handlers.Document.HandleDeleteSession)
	sessGroup.GET("/layers", handlers.Document.HandleGetLayers)
	sessGroup.PUT("/layers/hidden", handlers.Document.HandleSetHiddenLayers)
	sessGroup.GET("/bounds", handlers.Document.HandleGetBounds)
	sessGroup.GET("/entities", handlers.Document.HandleQueryWindow)
	sessGroup.GET("/entities/msgpack", handlers.Document.HandleQueryWindowMsgpack)

	// Single-line diagram editing
	e.GET("/api/symbols", handlers.Diagram.HandleGetSymbols)
	diagGroup := sessGroup.Group("/diagram")
	diagGroup.GET("", handlers.Diagram.HandleGetDiagram)
	diagGroup.GET("/validation", handlers.Diagram.HandleValidate)
	diagGroup.GET("/preview", handlers.Diagram.HandlePreview)
	diagGroup.POST("/nodes", handlers.Diagram.HandlePlaceNode)
	diagGroup.DELETE("/nodes/:nodeId", handlers.Diagram.HandleDeleteNode)
	diagGroup.PUT("/nodes/:nodeId/position", handlers.Diagram.HandleMoveNode)
	diagGroup.POST("/terminal-click", handlers.Diagram.HandleClickTerminal)
	diagGroup.POST("/canvas-click", handlers.Diagram.HandleClickCanvas)
	diagGroup.POST("/cancel", handlers.Diagram.HandleCancelDraft)
	diagGroup.POST("/reconnect", handlers.Diagram.HandleBeginReconnect)

	// Site-plan editing
	siteGroup := sessGroup.Group("/siteplan")
	siteGroup.GET("", handlers.SitePlan.HandleGetSitePlan)
	siteGroup.POST("/bess", handlers.SitePlan.HandlePlaceBess)
	siteGroup.PUT("/bess/:bessId/position", handlers.SitePlan.HandleMoveBess)
	siteGroup.DELETE("/bess/:bessId", handlers.SitePlan.HandleDeleteBess)
	siteGroup.PUT("/poi", handlers.SitePlan.HandleSetPOI)
	siteGroup.POST("/cables/draft", handlers.SitePlan.HandleAddCableVertex)
	siteGroup.POST("/cables/finish", handlers.SitePlan.HandleFinishCable)
	siteGroup.DELETE("/cables/draft", handlers.SitePlan.HandleDiscardCableDraft)
	siteGroup.PUT("/cables/:cableId/start", handlers.SitePlan.HandleDragCableStart)
	siteGroup.DELETE("/cables/:cableId", handlers.SitePlan.HandleDeleteCable)

	// Project persistence
	sessGroup.POST("/project/load", handlers.Project.HandleLoadProject)
	sessGroup.POST("/project/save", handlers.Project.HandleSaveProject)
	sessGroup.GET("/export", handlers.Project.HandleExportSitePlan)

	projGroup := e.Group("/api/projects")
	projGroup.GET("", handlers.Project.HandleListProjects)
	projGroup.GET("/:fileId", handlers.Project.HandleDownloadProject)
	projGroup.DELETE("/:fileId", handlers.Project.HandleDeleteProject)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler
}
