package lifecycle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Responder uploads a response to the pre-signed ResponseURL of a direct
// CloudFormation custom resource.
type Responder struct {
	client *http.Client
}

func NewResponder(client *http.Client) *Responder {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Responder{client: client}
}

func (r *Responder) Send(ctx context.Context, url string, resp Response) error {
	body, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build response request: %w", err)
	}
	// The pre-signed URL is signed without a content type.
	req.Header.Set("Content-Type", "")
	req.ContentLength = int64(len(body))

	res, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("put response: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return fmt.Errorf("put response: status %d: %s", res.StatusCode, bytes.TrimSpace(msg))
	}
	return nil
}
