package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/lifecycle"
	"github.com/lzjever/training-workspaces/internal/store"
)

type echoHandler struct{}

func (echoHandler) Create(ctx context.Context, ev lifecycle.Event, log *zap.Logger) (lifecycle.Outcome, error) {
	return lifecycle.Outcome{PhysicalResourceID: "ws-" + ev.ResourceProperties["userName"]}, nil
}

func (echoHandler) Update(ctx context.Context, ev lifecycle.Event, log *zap.Logger) (lifecycle.Outcome, error) {
	return lifecycle.Outcome{}, nil
}

func (echoHandler) Delete(ctx context.Context, ev lifecycle.Event, log *zap.Logger) (lifecycle.Outcome, error) {
	return lifecycle.Outcome{}, errors.New("TerminateWorkspaces: AccessDenied")
}

type fakeLister struct{ err error }

func (f fakeLister) ListWorkspaces(ctx context.Context, directoryID string) ([]core.WorkspaceInstance, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []core.WorkspaceInstance{{WorkspaceID: "ws-1", DirectoryID: directoryID, Username: "training01", State: "AVAILABLE"}}, nil
}

type fakeAudit struct {
	pingErr error
	filter  store.AuditFilter
}

func (f *fakeAudit) ListAudit(ctx context.Context, filter store.AuditFilter) ([]core.AuditEvent, error) {
	f.filter = filter
	return []core.AuditEvent{{EventID: 7, Handler: "user", Status: "SUCCESS"}}, nil
}

func (f *fakeAudit) Ping(ctx context.Context) error { return f.pingErr }

func newTestGateway(opts ...Option) *Gateway {
	log := zap.NewNop()
	dispatchers := map[string]*lifecycle.Dispatcher{
		"workspace": lifecycle.NewDispatcher("workspace", echoHandler{}, log),
		"user":      lifecycle.NewDispatcher("user", echoHandler{}, log),
	}
	return New(dispatchers, log, opts...)
}

func postEvent(t *testing.T, h http.Handler, path string, ev lifecycle.Event) *httptest.ResponseRecorder {
	t.Helper()
	b, _ := json.Marshal(ev)
	req := httptest.NewRequest("POST", path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthHandler(t *testing.T) {
	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	newTestGateway().Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	if w.Body.String() != "OK" {
		t.Errorf("expected body OK, got %s", w.Body.String())
	}
}

func TestReadyHandler(t *testing.T) {
	cases := []struct {
		name string
		gw   *Gateway
		want int
	}{
		{"no audit", newTestGateway(), http.StatusOK},
		{"audit up", newTestGateway(WithAudit(&fakeAudit{})), http.StatusOK},
		{"audit down", newTestGateway(WithAudit(&fakeAudit{pingErr: errors.New("refused")})), http.StatusServiceUnavailable},
		{"no handlers", New(nil, zap.NewNop()), http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tc.gw.Router().ServeHTTP(w, httptest.NewRequest("GET", "/readyz", nil))
			if w.Code != tc.want {
				t.Errorf("expected status %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestListHandlers(t *testing.T) {
	w := httptest.NewRecorder()
	newTestGateway().Router().ServeHTTP(w, httptest.NewRequest("GET", "/v1/handlers", nil))

	var resp HandlerListResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %s", err)
	}
	if len(resp.Handlers) != 2 || resp.Handlers[0] != "user" || resp.Handlers[1] != "workspace" {
		t.Errorf("expected [user workspace], got %v", resp.Handlers)
	}
}

func TestHandleEvent(t *testing.T) {
	ev := lifecycle.Event{
		RequestType:        lifecycle.RequestCreate,
		RequestID:          "req-1",
		LogicalResourceID:  "Workspace_training01",
		ResourceProperties: lifecycle.Properties{"userName": "training01"},
	}
	w := postEvent(t, newTestGateway().Router(), "/v1/handlers/workspace/events", ev)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp lifecycle.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %s", err)
	}
	if resp.Status != lifecycle.StatusSuccess {
		t.Errorf("expected SUCCESS, got %s", resp.Status)
	}
	if resp.PhysicalResourceID != "ws-training01" {
		t.Errorf("expected physical id ws-training01, got %s", resp.PhysicalResourceID)
	}
}

func TestHandleEventFailedResponseIsStill200(t *testing.T) {
	ev := lifecycle.Event{RequestType: lifecycle.RequestDelete, LogicalResourceID: "Workspace_training01", PhysicalResourceID: "ws-1"}
	b, _ := json.Marshal(ev)
	req := httptest.NewRequest("POST", "/v1/handlers/workspace/events", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", "hdr-req")
	w := httptest.NewRecorder()
	newTestGateway().Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp lifecycle.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != lifecycle.StatusFailed {
		t.Errorf("expected FAILED, got %s", resp.Status)
	}
	if resp.RequestID != "hdr-req" {
		t.Errorf("expected request id from header, got %s", resp.RequestID)
	}
	if resp.PhysicalResourceID != "ws-1" {
		t.Errorf("expected physical id ws-1, got %s", resp.PhysicalResourceID)
	}
}

func TestHandleEventRejections(t *testing.T) {
	h := newTestGateway().Router()

	w := postEvent(t, h, "/v1/handlers/unknown/events", lifecycle.Event{LogicalResourceID: "x"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown handler: expected 404, got %d", w.Code)
	}

	w = postEvent(t, h, "/v1/handlers/user/events", lifecycle.Event{RequestType: lifecycle.RequestCreate})
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing logical id: expected 400, got %d", w.Code)
	}

	req := httptest.NewRequest("POST", "/v1/handlers/user/events", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad body: expected 400, got %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %s", err)
	}
	if resp.Code != core.ErrValidation {
		t.Errorf("expected code %s, got %s", core.ErrValidation, resp.Code)
	}
	if resp.RequestID == "" || resp.RequestID != w.Header().Get("X-Request-ID") {
		t.Errorf("expected error body to carry the request id, got %q", resp.RequestID)
	}

	req = httptest.NewRequest("POST", "/v1/handlers/user/events", bytes.NewReader([]byte("{}")))
	req.Header.Set("Content-Type", "text/plain")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("content type: expected 415, got %d", w.Code)
	}
}

func TestListWorkspaces(t *testing.T) {
	w := httptest.NewRecorder()
	newTestGateway(WithWorkspaces(fakeLister{})).Router().
		ServeHTTP(w, httptest.NewRequest("GET", "/v1/directories/d-123/workspaces", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp WorkspaceListResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.DirectoryID != "d-123" || len(resp.Workspaces) != 1 {
		t.Errorf("unexpected response %+v", resp)
	}

	w = httptest.NewRecorder()
	newTestGateway().Router().ServeHTTP(w, httptest.NewRequest("GET", "/v1/directories/d-123/workspaces", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("unconfigured: expected 503, got %d", w.Code)
	}
}

func TestListAudit(t *testing.T) {
	audit := &fakeAudit{}
	h := newTestGateway(WithAudit(audit)).Router()

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/v1/audit?handler=user&limit=5", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if audit.filter.Handler != "user" || audit.filter.Limit != 5 {
		t.Errorf("unexpected filter %+v", audit.filter)
	}

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest("GET", "/v1/audit?limit=0", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad limit: expected 400, got %d", w.Code)
	}
}

func TestClientRoundTrip(t *testing.T) {
	srv := httptest.NewServer(newTestGateway(WithWorkspaces(fakeLister{}), WithAudit(&fakeAudit{})).Router())
	defer srv.Close()
	c := NewClient(srv.URL)
	ctx := context.Background()

	resp, err := c.Invoke(ctx, "workspace", lifecycle.Event{
		RequestType:        lifecycle.RequestCreate,
		LogicalResourceID:  "Workspace_training02",
		ResourceProperties: lifecycle.Properties{"userName": "training02"},
	})
	if err != nil {
		t.Fatalf("invoke failed: %s", err)
	}
	if resp.PhysicalResourceID != "ws-training02" {
		t.Errorf("expected ws-training02, got %s", resp.PhysicalResourceID)
	}
	if resp.RequestID == "" {
		t.Errorf("expected a synthesized request id")
	}

	_, err = c.Invoke(ctx, "nope", lifecycle.Event{LogicalResourceID: "x"})
	if core.CodeOf(err) != core.ErrNotFound {
		t.Errorf("expected NOT_FOUND, got %v", err)
	}

	names, err := c.Handlers(ctx)
	if err != nil || len(names) != 2 {
		t.Errorf("handlers: %v %v", names, err)
	}
	ws, err := c.ListWorkspaces(ctx, "d-123")
	if err != nil || len(ws) != 1 {
		t.Errorf("workspaces: %v %v", ws, err)
	}
	events, err := c.ListAudit(ctx, store.AuditFilter{Handler: "user", Limit: 3})
	if err != nil || len(events) != 1 || events[0].EventID != 7 {
		t.Errorf("audit: %v %v", events, err)
	}
}
