package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/lzjever/training-workspaces/internal/core"
)

// Recoverer turns a panic in routing or encoding into a 500 with the
// gateway error body. Handler panics never get here; the dispatcher
// already converts them to FAILED responses.
func Recoverer(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				id := GetRequestID(r)
				log.Error("gateway panic",
					zap.Any("panic", rvr),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.String("request_id", id),
					zap.ByteString("stack", debug.Stack()),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{
					"code":       string(core.ErrInternal),
					"message":    "internal gateway error",
					"request_id": id,
				})
			}()
			next.ServeHTTP(w, r)
		})
	}
}
