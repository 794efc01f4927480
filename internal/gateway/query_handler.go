package gateway

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/store"
)

type WorkspaceListResponse struct {
	DirectoryID string                   `json:"directory_id"`
	Workspaces  []core.WorkspaceInstance `json:"workspaces"`
}

func (g *Gateway) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	if g.workspaces == nil {
		WriteError(w, r, core.NewAppError(core.ErrDependencyNotReady, "workspace listing not configured"))
		return
	}
	dir := chi.URLParam(r, "directory_id")
	list, err := g.workspaces.ListWorkspaces(r.Context(), dir)
	if err != nil {
		g.log.Error("list workspaces", zap.String("directory_id", dir), zap.Error(err))
		WriteError(w, r, core.WrapAppError(core.CodeOf(err), err.Error(), err))
		return
	}
	if list == nil {
		list = []core.WorkspaceInstance{}
	}
	WriteJSON(w, http.StatusOK, WorkspaceListResponse{DirectoryID: dir, Workspaces: list})
}

type AuditListResponse struct {
	Events []core.AuditEvent `json:"events"`
}

func (g *Gateway) ListAudit(w http.ResponseWriter, r *http.Request) {
	if g.audit == nil {
		WriteError(w, r, core.NewAppError(core.ErrDependencyNotReady, "audit trail not configured"))
		return
	}
	f := store.AuditFilter{
		Handler:           r.URL.Query().Get("handler"),
		LogicalResourceID: r.URL.Query().Get("logical_resource_id"),
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 || n > 500 {
			WriteError(w, r, core.NewAppError(core.ErrValidation, "limit must be between 1 and 500"))
			return
		}
		f.Limit = n
	}
	events, err := g.audit.ListAudit(r.Context(), f)
	if err != nil {
		g.log.Error("list audit", zap.Error(err))
		WriteError(w, r, core.NewAppError(core.ErrInternal, "audit query failed"))
		return
	}
	if events == nil {
		events = []core.AuditEvent{}
	}
	WriteJSON(w, http.StatusOK, AuditListResponse{Events: events})
}
