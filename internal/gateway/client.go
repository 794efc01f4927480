package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/lifecycle"
	"github.com/lzjever/training-workspaces/internal/store"
)

// Client talks to a running gateway. It satisfies fleet.Invoker.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient uses a generous timeout: a registration delete waits for every
// workspace to terminate.
func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: &http.Client{Timeout: 15 * time.Minute}}
}

func (c *Client) Invoke(ctx context.Context, handler string, ev lifecycle.Event) (lifecycle.Response, error) {
	var resp lifecycle.Response
	err := c.do(ctx, http.MethodPost, "/v1/handlers/"+url.PathEscape(handler)+"/events", ev, &resp)
	return resp, err
}

func (c *Client) Handlers(ctx context.Context) ([]string, error) {
	var resp HandlerListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/handlers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Handlers, nil
}

func (c *Client) ListWorkspaces(ctx context.Context, directoryID string) ([]core.WorkspaceInstance, error) {
	var resp WorkspaceListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/directories/"+url.PathEscape(directoryID)+"/workspaces", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Workspaces, nil
}

func (c *Client) ListAudit(ctx context.Context, f store.AuditFilter) ([]core.AuditEvent, error) {
	q := url.Values{}
	if f.Handler != "" {
		q.Set("handler", f.Handler)
	}
	if f.LogicalResourceID != "" {
		q.Set("logical_resource_id", f.LogicalResourceID)
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	path := "/v1/audit"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var resp AuditListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return parseResponse(resp, out)
}

func parseResponse(resp *http.Response, out interface{}) error {
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if json.Unmarshal(b, &errResp) != nil || errResp.Code == "" {
			return fmt.Errorf("gateway returned %d", resp.StatusCode)
		}
		return errResp.AppError()
	}
	if out != nil {
		return json.Unmarshal(b, out)
	}
	return nil
}
