package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/lzjever/training-workspaces/internal/core"
)

const RequestIDHeader = "X-Request-ID"

// AmznTraceHeader is set by API Gateway and ALB in front of the gateway.
const AmznTraceHeader = "X-Amzn-Trace-Id"

const maxRequestIDLen = 128

type ctxKeyRequestID struct{}

// RequestID puts a request id into the context and echoes it back. An
// inbound X-Request-ID is kept when it is printable and short; otherwise a
// new one is generated. Events posted without a RequestId inherit it.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !validRequestID(id) {
			id = core.NewRequestID()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeyRequestID{}, id)))
	})
}

// GetRequestID returns the id assigned by RequestID, if it ran.
func GetRequestID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKeyRequestID{}).(string)
	return id
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLen {
		return false
	}
	return strings.IndexFunc(id, func(c rune) bool { return c < 0x21 || c > 0x7e }) < 0
}
