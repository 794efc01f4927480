package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/gateway/middleware"
)

// ErrorResponse is the body of a rejected gateway request. Lifecycle
// FAILED responses are not errors at this level and never use it.
type ErrorResponse struct {
	Code      core.ErrorCode `json:"code"`
	Message   string         `json:"message"`
	RequestID string         `json:"request_id,omitempty"`
}

func (e ErrorResponse) AppError() *core.AppError {
	return core.NewAppError(e.Code, e.Message)
}

func WriteError(w http.ResponseWriter, r *http.Request, err *core.AppError) {
	WriteJSON(w, err.Code.HTTPStatus(), ErrorResponse{
		Code:      err.Code,
		Message:   err.Message,
		RequestID: middleware.GetRequestID(r),
	})
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
