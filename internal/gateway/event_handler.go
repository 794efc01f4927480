package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/gateway/middleware"
	"github.com/lzjever/training-workspaces/internal/lifecycle"
)

type HandlerListResponse struct {
	Handlers []string `json:"handlers"`
}

func (g *Gateway) ListHandlers(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HandlerListResponse{Handlers: g.handlerNames()})
}

// HandleEvent runs one lifecycle event through the named handler. The
// lifecycle response is the body whatever its status; non-200 codes are
// reserved for requests that never reached a handler.
func (g *Gateway) HandleEvent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "handler")
	d, ok := g.dispatchers[name]
	if !ok {
		WriteError(w, r, core.NewAppError(core.ErrNotFound, fmt.Sprintf("unknown handler %q", name)))
		return
	}

	var ev lifecycle.Event
	if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
		WriteError(w, r, core.NewAppError(core.ErrValidation, "invalid event body: "+err.Error()))
		return
	}
	if ev.RequestID == "" {
		ev.RequestID = middleware.GetRequestID(r)
	}
	if ev.LogicalResourceID == "" {
		WriteError(w, r, core.NewAppError(core.ErrValidation, "LogicalResourceId required"))
		return
	}

	resp := d.Dispatch(r.Context(), ev)
	g.log.Debug("event handled",
		zap.String("handler", name),
		zap.String("request_id", ev.RequestID),
		zap.String("status", string(resp.Status)),
	)
	WriteJSON(w, http.StatusOK, resp)
}
