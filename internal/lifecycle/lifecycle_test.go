package lifecycle

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lzjever/training-workspaces/internal/core"
)

type stubHandler struct {
	outcome Outcome
	err     error
	panics  bool
	calls   []RequestType
}

func (s *stubHandler) run(rt RequestType) (Outcome, error) {
	s.calls = append(s.calls, rt)
	if s.panics {
		panic("boom")
	}
	return s.outcome, s.err
}

func (s *stubHandler) Create(ctx context.Context, ev Event, log *zap.Logger) (Outcome, error) {
	return s.run(RequestCreate)
}

func (s *stubHandler) Update(ctx context.Context, ev Event, log *zap.Logger) (Outcome, error) {
	return s.run(RequestUpdate)
}

func (s *stubHandler) Delete(ctx context.Context, ev Event, log *zap.Logger) (Outcome, error) {
	return s.run(RequestDelete)
}

type memRecorder struct {
	records []Record
}

func (m *memRecorder) Record(ctx context.Context, rec Record) error {
	m.records = append(m.records, rec)
	return nil
}

func testEvent(rt RequestType) Event {
	return Event{
		RequestType:       rt,
		StackID:           "arn:aws:cloudformation:eu-central-1:123:stack/test/1",
		RequestID:         "req-1",
		LogicalResourceID: "Workspace_training01",
	}
}

func TestDispatchEveryRequestTypeYieldsOneResponse(t *testing.T) {
	for _, rt := range []RequestType{RequestCreate, RequestUpdate, RequestDelete, "Replace", ""} {
		t.Run(string(rt), func(t *testing.T) {
			h := &stubHandler{outcome: Outcome{PhysicalResourceID: "ws-1"}}
			rec := &memRecorder{}
			d := NewDispatcher("workspace", h, zap.NewNop(), WithRecorder(rec))

			resp := d.Dispatch(context.Background(), testEvent(rt))

			require.Len(t, rec.records, 1)
			assert.Contains(t, []Status{StatusSuccess, StatusFailed}, resp.Status)
			assert.Equal(t, "req-1", resp.RequestID)
			assert.Equal(t, "Workspace_training01", resp.LogicalResourceID)
			if rt == RequestCreate || rt == RequestUpdate || rt == RequestDelete {
				assert.Equal(t, StatusSuccess, resp.Status)
				assert.Equal(t, []RequestType{rt}, h.calls)
			} else {
				assert.Equal(t, StatusFailed, resp.Status)
				assert.Contains(t, resp.Reason, "unsupported request type")
				assert.Empty(t, h.calls)
			}
		})
	}
}

func TestDispatchRecoversPanics(t *testing.T) {
	d := NewDispatcher("user", &stubHandler{panics: true}, zap.NewNop())
	resp := d.Dispatch(context.Background(), testEvent(RequestCreate))
	assert.Equal(t, StatusFailed, resp.Status)
	assert.Contains(t, resp.Reason, "handler panic: boom")
}

func TestDispatchValidationReason(t *testing.T) {
	h := &stubHandler{err: &core.ValidationError{
		Reason:  core.ReasonMissingParameters,
		Missing: []string{"email", "username"},
	}}
	d := NewDispatcher("user", h, zap.NewNop())

	resp := d.Dispatch(context.Background(), testEvent(RequestCreate))

	assert.Equal(t, StatusFailed, resp.Status)
	assert.Equal(t, "Not all Parameters Maintained", resp.Reason)
	assert.Equal(t, "email,username", resp.Data["missingFields"])
}

func TestDispatchKeepsPhysicalIDOnFailure(t *testing.T) {
	h := &stubHandler{
		outcome: Outcome{PhysicalResourceID: "d-1registration"},
		err:     errors.New("AccessDenied"),
	}
	d := NewDispatcher("registration", h, zap.NewNop())
	resp := d.Dispatch(context.Background(), testEvent(RequestCreate))
	assert.Equal(t, StatusFailed, resp.Status)
	assert.Equal(t, "d-1registration", resp.PhysicalResourceID)
	assert.Equal(t, "AccessDenied", resp.Reason)
}

func TestDispatchPhysicalIDFallback(t *testing.T) {
	d := NewDispatcher("user", &stubHandler{}, zap.NewNop())

	ev := testEvent(RequestDelete)
	ev.PhysicalResourceID = "existing"
	assert.Equal(t, "existing", d.Dispatch(context.Background(), ev).PhysicalResourceID)

	ev.PhysicalResourceID = ""
	assert.Equal(t, "Workspace_training01", d.Dispatch(context.Background(), ev).PhysicalResourceID)
}

func TestHandleNeverReturnsError(t *testing.T) {
	d := NewDispatcher("user", &stubHandler{err: errors.New("fail")}, zap.NewNop())
	resp, err := d.Handle(context.Background(), testEvent(RequestCreate))
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, resp.Status)
}

func TestDispatchDeliversToResponseURL(t *testing.T) {
	var got Response
	var method, contentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	h := &stubHandler{outcome: Outcome{PhysicalResourceID: "ws-9"}}
	d := NewDispatcher("workspace", h, zap.NewNop(), WithResponder(NewResponder(srv.Client())))
	ev := testEvent(RequestCreate)
	ev.ResponseURL = srv.URL + "/signed"

	resp := d.Dispatch(context.Background(), ev)

	assert.Equal(t, http.MethodPut, method)
	assert.Empty(t, contentType)
	assert.Equal(t, resp, got)
	assert.Equal(t, "ws-9", got.PhysicalResourceID)
}

func TestResponderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "SignatureDoesNotMatch", http.StatusForbidden)
	}))
	defer srv.Close()

	err := NewResponder(srv.Client()).Send(context.Background(), srv.URL, Response{Status: StatusSuccess})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 403")
}

func TestPropertiesUnmarshal(t *testing.T) {
	var ev Event
	raw := `{
		"RequestType": "Create",
		"RequestId": "r",
		"ResourceProperties": {
			"ServiceToken": "arn:aws:lambda:x",
			"userAmount": 2,
			"enabled": true,
			"nothing": null,
			"tags": {"a": "b"}
		}
	}`
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	assert.Equal(t, RequestCreate, ev.RequestType)
	assert.Equal(t, "2", ev.ResourceProperties["userAmount"])
	assert.Equal(t, "true", ev.ResourceProperties["enabled"])
	assert.Equal(t, `{"a":"b"}`, ev.ResourceProperties["tags"])
	_, present := ev.ResourceProperties["nothing"]
	assert.False(t, present)
	assert.Equal(t, []string{"ServiceToken", "enabled", "tags", "userAmount"}, ev.ResourceProperties.Keys())
}

func TestDecoderCollectsAllMissing(t *testing.T) {
	d := NewDecoder(Properties{"directoryId": "d-1", "email": "  "})
	assert.Equal(t, "d-1", d.Require("directoryId"))
	d.Require("email")
	d.Require("username")
	assert.Equal(t, "AUTO_STOP", d.Optional("runningMode", "AUTO_STOP"))
	d.Invalid("bundleId")

	err := d.Err(core.ReasonMissingParameters)
	var vErr *core.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, []string{"email", "username"}, vErr.Missing)
	assert.Equal(t, []string{"bundleId"}, vErr.Invalid)

	assert.NoError(t, NewDecoder(Properties{"a": "b"}).Err("x"))
}

func TestTruncateReason(t *testing.T) {
	long := make([]byte, maxReasonLen+100)
	for i := range long {
		long[i] = 'x'
	}
	got := truncateReason(string(long))
	assert.Len(t, got, maxReasonLen)
	assert.Equal(t, "...", got[len(got)-3:])
}
