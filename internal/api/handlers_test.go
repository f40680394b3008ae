package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cadream/backend/internal/config"
	"github.com/cadream/backend/internal/session"
	"github.com/cadream/backend/internal/sld"
	"github.com/cadream/backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	e     *echo.Echo
	store *testutil.MockStorage
	mgr   *session.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	store := testutil.NewMockStorage()
	mgr := session.NewManagerWithTempDir(t.TempDir())

	cfg := config.DefaultConfig()
	handlers := NewHandlers(&Dependencies{
		Store:      store,
		SessionMgr: mgr,
		Registry:   sld.NewRegistry(),
		Config:     cfg,
		Version:    "test",
	})

	e := echo.New()
	SetupMiddleware(e)
	RegisterRoutes(e, handlers)

	return &testServer{e: e, store: store, mgr: mgr}
}

func (ts *testServer) request(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

// ingestSession opens a session around a small two-line document and returns
// its id.
func (ts *testServer) ingestSession(t *testing.T) string {
	t.Helper()
	body := `{
		"source_dxf_filename": "site.dxf",
		"document": {
			"layers": [{"name": "WALLS", "color": 7}, {"name": "DIM", "color": 1}],
			"entities": [
				{"type": "LINE", "layer": "WALLS", "p1": [0, 0], "p2": [100, 100]},
				{"type": "LINE", "layer": "DIM", "p1": [50, 50], "p2": [60, 60]},
				{"type": "CIRCLE", "layer": "WALLS", "center": [5000, 5000], "r": 10}
			]
		}
	}`
	rec := ts.request(http.MethodPost, "/api/documents", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := ts.decode(t, rec)
	sess := resp["session"].(map[string]any)
	return sess["id"].(string)
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.request(http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := ts.decode(t, rec)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "test", resp["version"])
}

func TestIngestDocument(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)
	assert.NotEmpty(t, id)

	rec := ts.request(http.MethodGet, "/api/sessions/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	info := ts.decode(t, rec)
	assert.Equal(t, float64(3), info["entityCount"])
	assert.Equal(t, "site.dxf", info["sourceDxfFilename"])
}

func TestIngestDocumentBadBody(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.request(http.MethodPost, "/api/documents", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := ts.decode(t, rec)
	assert.Equal(t, "BAD_REQUEST", resp["code"])
}

func TestSessionNotFound(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.request(http.MethodGet, "/api/sessions/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	resp := ts.decode(t, rec)
	assert.Equal(t, "NOT_FOUND", resp["code"])
}

func TestGetLayers(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)

	rec := ts.request(http.MethodGet, "/api/sessions/"+id+"/layers", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := ts.decode(t, rec)
	layers := resp["layers"].([]any)
	assert.Len(t, layers, 2)
}

func TestQueryWindowExplicit(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)

	rec := ts.request(http.MethodGet,
		"/api/sessions/"+id+"/entities?minX=-1&minY=-1&maxX=200&maxY=200", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := ts.decode(t, rec)
	// Both lines intersect; the circle at (5000,5000) is culled.
	assert.Equal(t, float64(2), resp["total"])
}

func TestQueryWindowHiddenLayers(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)

	rec := ts.request(http.MethodPut, "/api/sessions/"+id+"/layers/hidden",
		`{"layers": ["DIM"]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(http.MethodGet,
		"/api/sessions/"+id+"/entities?minX=-1&minY=-1&maxX=200&maxY=200", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := ts.decode(t, rec)
	assert.Equal(t, float64(1), resp["total"])
}

func TestQueryWindowViewportForm(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)

	// 200x200 screen at scale 1 anchored at the origin covers both lines.
	rec := ts.request(http.MethodGet,
		"/api/sessions/"+id+"/entities?width=200&height=200&scale=1&panX=0&panY=0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := ts.decode(t, rec)
	assert.Equal(t, float64(2), resp["total"])
}

func TestQueryWindowValidation(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)

	rec := ts.request(http.MethodGet, "/api/sessions/"+id+"/entities", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := ts.decode(t, rec)
	assert.Equal(t, "VALIDATION_ERROR", resp["code"])
}

func TestQueryWindowMsgpack(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)

	rec := ts.request(http.MethodGet,
		"/api/sessions/"+id+"/entities/msgpack?minX=-1&minY=-1&maxX=200&maxY=200", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get(echo.HeaderContentType))
	assert.NotEmpty(t, rec.Body.Bytes())
}

func TestTessellateArc(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.request(http.MethodGet, "/api/documents/tessellate?cx=0&cy=0&r=10&scale=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := ts.decode(t, rec)

	segments := resp["segments"].(float64)
	points := resp["points"].([]any)
	assert.GreaterOrEqual(t, segments, float64(24))
	assert.Len(t, points, int(segments)+1)

	rec = ts.request(http.MethodGet, "/api/documents/tessellate?cx=0&cy=0&r=10", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteSession(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)

	rec := ts.request(http.MethodDelete, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.request(http.MethodDelete, "/api/sessions/"+id, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSymbols(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.request(http.MethodGet, "/api/symbols", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := ts.decode(t, rec)
	symbols := resp["symbols"].([]any)
	assert.Len(t, symbols, 8)
}

func TestDiagramWireFlow(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)
	base := "/api/sessions/" + id + "/diagram"

	rec := ts.request(http.MethodPost, base+"/nodes",
		`{"type": "battery", "pos": [0, 0]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.request(http.MethodPost, base+"/nodes",
		`{"type": "inverter", "pos": [300, 200], "label": "INV-1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// battery.dc -> inverter.dc
	rec = ts.request(http.MethodPost, base+"/terminal-click",
		`{"node_id": "node-1", "terminal_id": "dc"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Live preview while drafting.
	rec = ts.request(http.MethodGet, base+"/preview?x=150&y=80", "")
	require.Equal(t, http.StatusOK, rec.Code)
	preview := ts.decode(t, rec)
	assert.NotEmpty(t, preview["points"])

	rec = ts.request(http.MethodPost, base+"/terminal-click",
		`{"node_id": "node-2", "terminal_id": "dc"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := ts.decode(t, rec)
	state := resp["state"].(map[string]any)
	diagram := state["diagram"].(map[string]any)
	edges := diagram["edges"].([]any)
	require.Len(t, edges, 1)
	edge := edges[0].(map[string]any)
	assert.Equal(t, "edge-1", edge["id"])
	assert.Equal(t, "node-1", edge["from_node"])
	assert.Equal(t, "node-2", edge["to_node"])

	// Moving the target reroutes; the response carries the updated state.
	rec = ts.request(http.MethodPut, base+"/nodes/node-2/position", `{"pos": [600, 400]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Deleting the source cascades.
	rec = ts.request(http.MethodDelete, base+"/nodes/node-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp = ts.decode(t, rec)
	diagram = resp["state"].(map[string]any)["diagram"].(map[string]any)
	assert.Empty(t, diagram["edges"])
}

func TestPlaceNodeUnknownSymbol(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)

	rec := ts.request(http.MethodPost, "/api/sessions/"+id+"/diagram/nodes",
		`{"type": "warp-core", "pos": [0, 0]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = ts.request(http.MethodPost, "/api/sessions/"+id+"/diagram/nodes",
		`{"pos": [0, 0]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDiagramValidation(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)

	rec := ts.request(http.MethodPost, "/api/sessions/"+id+"/diagram/nodes",
		`{"type": "transformer", "pos": [0, 0]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(http.MethodGet, "/api/sessions/"+id+"/diagram/validation", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := ts.decode(t, rec)
	issues := resp["issues"].([]any)
	// Both transformer terminals are required and open.
	assert.Len(t, issues, 2)
}

func TestSitePlanFlow(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)
	base := "/api/sessions/" + id + "/siteplan"

	rec := ts.request(http.MethodPost, base+"/bess",
		`{"pos": [10, 10], "width": 40, "height": 25, "label": "Unit A"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.request(http.MethodPut, base+"/poi", `{"pos": [1000, 1000], "label": "POI"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// Draft two vertices; the first is near the marker and snaps on finish.
	rec = ts.request(http.MethodPost, base+"/cables/draft", `{"pos": [15, 12]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.request(http.MethodPost, base+"/cables/draft", `{"pos": [500, 500]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.request(http.MethodPost, base+"/cables/finish", `{"scale": 1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := ts.decode(t, rec)
	assert.Nil(t, resp["cable_draft"])
	plan := resp["site_plan"].(map[string]any)
	cables := plan["cable_paths"].([]any)
	require.Len(t, cables, 1)
	cable := cables[0].(map[string]any)
	assert.Equal(t, "bess-1", cable["from_bess_id"])

	pts := cable["points"].([]any)
	first := pts[0].([]any)
	last := pts[len(pts)-1].([]any)
	assert.Equal(t, []any{float64(10), float64(10)}, first)
	assert.Equal(t, []any{float64(1000), float64(1000)}, last)

	// Finishing again conflicts: the draft was consumed.
	rec = ts.request(http.MethodPost, base+"/cables/finish", `{"scale": 1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Moving the marker drags the anchored cable start.
	rec = ts.request(http.MethodPut, base+"/bess/bess-1/position", `{"pos": [80, 90]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = ts.decode(t, rec)
	plan = resp["site_plan"].(map[string]any)
	cable = plan["cable_paths"].([]any)[0].(map[string]any)
	first = cable["points"].([]any)[0].([]any)
	assert.Equal(t, []any{float64(80), float64(90)}, first)

	rec = ts.request(http.MethodDelete, base+"/cables/cable-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec = ts.request(http.MethodDelete, base+"/cables/cable-1", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSitePlanDiscardDraft(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)
	base := "/api/sessions/" + id + "/siteplan"

	ts.request(http.MethodPost, base+"/cables/draft", `{"pos": [1, 1]}`)
	rec := ts.request(http.MethodDelete, base+"/cables/draft", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := ts.decode(t, rec)
	assert.Nil(t, resp["cable_draft"])
}

func TestSitePlanNotFoundErrors(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)
	base := "/api/sessions/" + id + "/siteplan"

	rec := ts.request(http.MethodPut, base+"/bess/bess-9/position", `{"pos": [0, 0]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.request(http.MethodDelete, base+"/bess/bess-9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = ts.request(http.MethodPut, base+"/cables/cable-9/start", `{"pos": [0, 0], "scale": 1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProjectSaveAndList(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)

	ts.request(http.MethodPost, "/api/sessions/"+id+"/siteplan/bess",
		`{"pos": [10, 10], "width": 40, "height": 25}`)

	rec := ts.request(http.MethodPost, "/api/sessions/"+id+"/project/save",
		`{"name": "yard.json"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	info := ts.decode(t, rec)
	fileID := info["id"].(string)
	assert.Equal(t, "yard.json", info["name"])

	data, err := ts.store.GetFileData(fileID)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"schema_version": "cadream-project-v2"`)
	assert.Contains(t, string(data), "interactive_site_plan")

	rec = ts.request(http.MethodGet, "/api/projects", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := ts.decode(t, rec)
	assert.Len(t, resp["files"].([]any), 1)

	rec = ts.request(http.MethodDelete, "/api/projects/"+fileID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 0, ts.store.GetFileCount())
}

func TestProjectLoad(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)

	body := `{
		"schema_version": "cadream-project-v2",
		"source_dxf_filename": "plant.dxf",
		"interfaces": {
			"interactive_site_plan": {
				"entities": {
					"bess": [{"id": "bess-1", "x": 5, "y": 5, "width": 40, "height": 25}],
					"poi": {"x": 900, "y": 900}
				},
				"tool_settings": {"tool_mode": "select", "viewport": {"scale": 1, "pos": [0, 0]}}
			},
			"single_line_diagram_builder": {
				"schema_version": "sld-v1",
				"nodes": [{"id": "node-1", "type": "battery", "pos": [0, 0],
					"terminals": [{"id": "dc", "offset": [50, 0], "role": "out"}]}],
				"edges": [],
				"tool_settings": {"tool_mode": "select", "viewport": {"scale": 1, "pos": [0, 0]}}
			}
		}
	}`

	rec := ts.request(http.MethodPost, "/api/sessions/"+id+"/project/load", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := ts.decode(t, rec)
	plan := resp["site_plan"].(map[string]any)
	assert.Len(t, plan["bess"].([]any), 1)
	diagram := resp["diagram"].(map[string]any)
	assert.Len(t, diagram["nodes"].([]any), 1)
	sess := resp["session"].(map[string]any)
	assert.Equal(t, "plant.dxf", sess["sourceDxfFilename"])
}

func TestProjectLoadUnsupportedSchema(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)

	rec := ts.request(http.MethodPost, "/api/sessions/"+id+"/project/load",
		`{"schema_version": "cadream-project-v99"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := ts.decode(t, rec)
	assert.Equal(t, "UNSUPPORTED_SCHEMA", resp["code"])
	assert.Contains(t, resp["message"], "cadream-project-v99")
}

func TestExportSitePlan(t *testing.T) {
	ts := newTestServer(t)
	id := ts.ingestSession(t)

	ts.request(http.MethodPost, "/api/sessions/"+id+"/siteplan/bess",
		`{"pos": [1, 2], "width": 40, "height": 25}`)

	rec := ts.request(http.MethodGet, "/api/sessions/"+id+"/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "siteplan-export.json")

	resp := ts.decode(t, rec)
	assert.Equal(t, "cadream-export-v1", resp["schema_version"])
	assert.Equal(t, "cad_world", resp["coordinate_space"])
}

func TestDownloadProjectNotFound(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.request(http.MethodGet, "/api/projects/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMutationOnUnknownSession(t *testing.T) {
	ts := newTestServer(t)
	for _, tc := range []struct {
		method, path, body string
	}{
		{http.MethodPost, "/api/sessions/nope/diagram/nodes", `{"type": "battery", "pos": [0, 0]}`},
		{http.MethodPost, "/api/sessions/nope/siteplan/bess", `{"pos": [0, 0]}`},
		{http.MethodPost, "/api/sessions/nope/project/save", `{"name": "x"}`},
	} {
		rec := ts.request(tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code,
			fmt.Sprintf("%s %s", tc.method, tc.path))
	}
}
