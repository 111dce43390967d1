package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"deskcontrol/driver"
	"deskcontrol/models"
	"deskcontrol/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	_ "github.com/mattn/go-sqlite3"
)

func newTestServer(t *testing.T) (*gin.Engine, *service.SessionManager, *driver.MockDevice) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	device := driver.NewMockDevice()
	hub := service.NewMonitorHub()
	queue := service.NewActionQueue(device, device, hub)
	queue.SettleDelay = time.Millisecond
	queue.DoubleClickDelay = time.Millisecond
	queue.DragStepDelay = 0
	queue.ScreenshotDelay = time.Millisecond
	queue.IdleDelay = time.Millisecond
	queue.Start()
	t.Cleanup(queue.Stop)

	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open in-memory database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	macros := service.NewMacroStore(db)
	if err := macros.Init(); err != nil {
		t.Fatalf("failed to init macro store: %v", err)
	}

	sessions := service.NewSessionManager(time.Minute)

	router := gin.New()
	SetupRoutes(router, queue, sessions, macros, hub, device)
	return router, sessions, device
}

func doJSON(router *gin.Engine, method, path, sessionID string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set("X-Session-ID", sessionID)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doJSON(router, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Errorf("health returned %d", w.Code)
	}
}

func TestActionRequiresSession(t *testing.T) {
	router, _, _ := newTestServer(t)

	body := models.ActionRequest{ID: "r1", Action: models.Action{Type: models.ActionLeftClick}}

	w := doJSON(router, http.MethodPost, "/v1/action", "", body)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing session should be 401, got %d", w.Code)
	}

	w = doJSON(router, http.MethodPost, "/v1/action", "not-a-session", body)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("invalid session should be 401, got %d", w.Code)
	}
}

func TestSessionLifecycleOverHTTP(t *testing.T) {
	router, _, _ := newTestServer(t)

	// Create.
	w := doJSON(router, http.MethodPost, "/v1/session", "", gin.H{"clear_existing": false})
	if w.Code != http.StatusOK {
		t.Fatalf("create session returned %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		SessionID string `json:"session_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil || created.SessionID == "" {
		t.Fatalf("bad session response: %s", w.Body.String())
	}

	// Second create without clear_existing conflicts.
	w = doJSON(router, http.MethodPost, "/v1/session", "", gin.H{"clear_existing": false})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create should be 409, got %d", w.Code)
	}

	// Authorized action goes through.
	w = doJSON(router, http.MethodPost, "/v1/action", created.SessionID,
		models.ActionRequest{ID: "r1", Action: models.Action{Type: models.ActionLeftClick}})
	if w.Code != http.StatusOK {
		t.Fatalf("action returned %d: %s", w.Code, w.Body.String())
	}
	var resp models.ActionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad action response: %v", err)
	}
	if resp.RequestID != "r1" || resp.Status != models.StatusSuccess {
		t.Errorf("unexpected response: %+v", resp)
	}

	// End session, then the id no longer works.
	w = doJSON(router, http.MethodDelete, "/v1/session", created.SessionID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("end session returned %d", w.Code)
	}
	w = doJSON(router, http.MethodPost, "/v1/action", created.SessionID,
		models.ActionRequest{ID: "r2", Action: models.Action{Type: models.ActionLeftClick}})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("action after end session should be 401, got %d", w.Code)
	}
}

func TestActionStatusCodeMapping(t *testing.T) {
	router, sessions, _ := newTestServer(t)
	session, _ := sessions.CreateSession(false)

	// invalid_input maps to 422.
	w := doJSON(router, http.MethodPost, "/v1/action", session.ID,
		models.ActionRequest{ID: "r1", Action: models.Action{Type: models.ActionTypeText, Text: ""}})
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("invalid_input should be 422, got %d: %s", w.Code, w.Body.String())
	}

	var resp models.ActionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if resp.Error == nil || resp.Error.Kind != models.ErrorInvalidInput {
		t.Errorf("unexpected error payload: %+v", resp.Error)
	}
}

func TestActionMalformedBody(t *testing.T) {
	router, sessions, _ := newTestServer(t)
	session, _ := sessions.CreateSession(false)

	req := httptest.NewRequest(http.MethodPost, "/v1/action", bytes.NewBufferString(`{"id":1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Session-ID", session.ID)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("malformed body should be 400, got %d", w.Code)
	}
}

func TestSystemInfo(t *testing.T) {
	router, _, _ := newTestServer(t)

	w := doJSON(router, http.MethodGet, "/v1/system/info", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("system info returned %d", w.Code)
	}

	var info struct {
		OSType        string `json:"os_type"`
		DisplayWidth  int    `json:"display_width"`
		DisplayHeight int    `json:"display_height"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if info.OSType == "" || info.DisplayWidth <= 0 || info.DisplayHeight <= 0 {
		t.Errorf("unexpected system info: %+v", info)
	}
}

func TestMacroLifecycleOverHTTP(t *testing.T) {
	router, sessions, device := newTestServer(t)
	session, _ := sessions.CreateSession(false)

	// Create a macro.
	w := doJSON(router, http.MethodPost, "/v1/macros", session.ID, CreateMacroRequest{
		Name: "greet",
		Actions: []models.Action{
			{Type: models.ActionMouseMove, X: 10, Y: 20},
			{Type: models.ActionTypeText, Text: "hi"},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("create macro returned %d: %s", w.Code, w.Body.String())
	}
	var created struct {
		Data models.Macro `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil || created.Data.ID == "" {
		t.Fatalf("bad create response: %s", w.Body.String())
	}

	// List shows it.
	w = doJSON(router, http.MethodGet, "/v1/macros", session.ID, nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "greet") {
		t.Errorf("list returned %d: %s", w.Code, w.Body.String())
	}

	// Run replays the actions through the queue.
	w = doJSON(router, http.MethodPost, "/v1/macros/"+created.Data.ID+"/run", session.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("run macro returned %d: %s", w.Code, w.Body.String())
	}
	if device.LastOperation() != "type_text hi" {
		t.Errorf("macro actions not executed, last op: %s", device.LastOperation())
	}

	// Delete removes it.
	w = doJSON(router, http.MethodDelete, "/v1/macros/"+created.Data.ID, session.ID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("delete macro returned %d", w.Code)
	}
	w = doJSON(router, http.MethodPost, "/v1/macros/"+created.Data.ID+"/run", session.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("running a deleted macro should be 404, got %d", w.Code)
	}
}

func TestMonitorStream(t *testing.T) {
	router, sessions, _ := newTestServer(t)
	session, _ := sessions.CreateSession(false)

	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/monitor?session_id=" + session.ID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("monitor dial failed: %v", err)
	}
	defer conn.Close()

	// Give the handler a moment to register its hub subscription after
	// the handshake completes.
	time.Sleep(100 * time.Millisecond)

	// Trigger one action over HTTP; the monitor must relay a request
	// event followed by a response event.
	w := doJSON(router, http.MethodPost, "/v1/action", session.ID,
		models.ActionRequest{ID: "mon-1", Action: models.Action{Type: models.ActionLeftClick}})
	if w.Code != http.StatusOK {
		t.Fatalf("action returned %d", w.Code)
	}

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var first models.MonitorEvent
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("failed to read first event: %v", err)
	}
	if first.EventType != models.EventActionRequest {
		t.Errorf("first event = %s, want action_request", first.EventType)
	}

	var second models.MonitorEvent
	if err := conn.ReadJSON(&second); err != nil {
		t.Fatalf("failed to read second event: %v", err)
	}
	if second.EventType != models.EventActionResponse {
		t.Errorf("second event = %s, want action_response", second.EventType)
	}
}

func TestMonitorRequiresSession(t *testing.T) {
	router, _, _ := newTestServer(t)

	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/v1/monitor"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("monitor dial without session should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 handshake response, got %+v", resp)
	}
}
