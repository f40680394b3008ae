// handlers_project.go - Project persistence handlers
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/cadream/backend/internal/models"
	"github.com/cadream/backend/internal/project"
	"github.com/cadream/backend/internal/session"
	"github.com/cadream/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// ProjectHandlerImpl implements the ProjectHandler interface
type ProjectHandlerImpl struct {
	store      storage.Store
	sessionMgr *session.Manager
}

// NewProjectHandler creates a new project handler instance
func NewProjectHandler(store storage.Store, sessionMgr *session.Manager) ProjectHandler {
	return &ProjectHandlerImpl{
		store:      store,
		sessionMgr: sessionMgr,
	}
}

// HandleLoadProject applies a saved project file (v1 or v2) to the session.
// The request body is the raw project JSON.
func (h *ProjectHandlerImpl) HandleLoadProject(c echo.Context) error {
	id := c.Param("sessionId")

	data, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return NewBadRequestError("failed to read request body", err)
	}

	p := project.Load(data, project.StandardDefaults())
	if p == nil {
		return NewUnsupportedSchemaError(schemaVersionOf(data))
	}

	var state *session.EditorSession
	err = h.sessionMgr.Apply(id, func(sess *session.EditorSession) error {
		sess.SitePlan = p.SitePlan
		sess.SLD.Diagram = p.Diagram
		sess.CableDraft = nil
		if p.SourceDXFFilename != "" {
			sess.SourceDXFFilename = p.SourceDXFFilename
		}
		state = sess
		return nil
	})
	if err != nil {
		return NewNotFoundError("session", id)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"site_plan": state.SitePlan,
		"diagram":   state.SLD.Diagram,
		"session":   state.Info(),
	})
}

type saveProjectRequest struct {
	Name string `json:"name"`
}

// HandleSaveProject serializes the session as a v2 project file and stores it.
func (h *ProjectHandlerImpl) HandleSaveProject(c echo.Context) error {
	id := c.Param("sessionId")
	sess, ok := h.sessionMgr.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}
	h.sessionMgr.Touch(id)

	var req saveProjectRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}
	if req.Name == "" {
		req.Name = "project.json"
	}

	p := &models.Project{
		SourceDXFFilename: sess.SourceDXFFilename,
		SitePlan:          sess.SitePlan,
		Diagram:           sess.SLD.Diagram,
	}
	data, err := project.Save(p)
	if err != nil {
		return NewInternalError("failed to serialize project", err)
	}

	info, err := h.store.Save(req.Name, bytes.NewReader(data))
	if err != nil {
		return NewInternalError("failed to store project", err)
	}

	return c.JSON(http.StatusCreated, info)
}

// HandleExportSitePlan returns the site-plan entities in CAD world
// coordinates for downstream tooling.
func (h *ProjectHandlerImpl) HandleExportSitePlan(c echo.Context) error {
	id := c.Param("sessionId")
	sess, ok := h.sessionMgr.Get(id)
	if !ok {
		return NewNotFoundError("session", id)
	}

	p := &models.Project{
		SourceDXFFilename: sess.SourceDXFFilename,
		SitePlan:          sess.SitePlan,
	}
	data, err := project.Export(p)
	if err != nil {
		return NewInternalError("failed to export site plan", err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="siteplan-export.json"`)
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
}

// HandleListProjects returns the most recently stored project files.
func (h *ProjectHandlerImpl) HandleListProjects(c echo.Context) error {
	limit := 20
	if l := c.QueryParam("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 {
			limit = v
		}
	}

	files, err := h.store.List(limit)
	if err != nil {
		return NewInternalError("failed to list projects", err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"files": files})
}

// HandleDownloadProject streams a stored project file.
func (h *ProjectHandlerImpl) HandleDownloadProject(c echo.Context) error {
	fileID := c.Param("fileId")

	info, err := h.store.Get(fileID)
	if err != nil {
		return NewNotFoundError("project file", fileID)
	}
	path, err := h.store.GetFilePath(fileID)
	if err != nil {
		return NewNotFoundError("project file", fileID)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", info.Name))
	return c.File(path)
}

// HandleDeleteProject removes a stored project file.
func (h *ProjectHandlerImpl) HandleDeleteProject(c echo.Context) error {
	fileID := c.Param("fileId")
	if err := h.store.Delete(fileID); err != nil {
		return NewNotFoundError("project file", fileID)
	}
	return c.NoContent(http.StatusNoContent)
}

// schemaVersionOf extracts schema_version for the error message; best effort.
func schemaVersionOf(data []byte) string {
	var probe struct {
		SchemaVersion string `json:"schema_version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return ""
	}
	return probe.SchemaVersion
}
