package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/lifecycle"
	"github.com/lzjever/training-workspaces/internal/workspaces"
)

type WorkspaceProvisioner interface {
	CreateWorkspace(ctx context.Context, req workspaces.CreateRequest) (string, error)
	TerminateWorkspace(ctx context.Context, workspaceID string) error
}

// Workspace provisions the desktop of one trainee. The provider-assigned
// workspace id is the physical id.
type Workspace struct {
	ws WorkspaceProvisioner
}

func NewWorkspace(ws WorkspaceProvisioner) *Workspace {
	return &Workspace{ws: ws}
}

func decodeWorkspace(props lifecycle.Properties) (workspaces.CreateRequest, error) {
	dec := lifecycle.NewDecoder(props)
	req := workspaces.CreateRequest{
		DirectoryID: dec.Require("directoryId"),
		BundleID:    dec.Require("bundleId"),
		Username:    dec.Require("userName"),
	}
	if raw := dec.Require("runningMode"); raw != "" {
		mode, err := core.ParseRunningMode(raw)
		if err != nil {
			dec.Invalid("runningMode")
		}
		req.RunningMode = mode
	}
	return req, dec.Err(core.ReasonMissingParameters)
}

// Create never reports an empty physical id: a failed create is reported
// as failedToCreate so the rollback delete has nothing to terminate.
func (h *Workspace) Create(ctx context.Context, ev lifecycle.Event, log *zap.Logger) (lifecycle.Outcome, error) {
	failed := lifecycle.Outcome{PhysicalResourceID: core.FailedWorkspacePhysicalID}
	req, err := decodeWorkspace(ev.ResourceProperties)
	if err != nil {
		return failed, err
	}
	log = log.With(zap.String("directory_id", req.DirectoryID), zap.String("username", req.Username))

	id, err := h.ws.CreateWorkspace(ctx, req)
	if err != nil {
		return failed, err
	}
	log.Info("workspace requested", zap.String("workspace_id", id), zap.String("running_mode", string(req.RunningMode)))
	return lifecycle.Outcome{
		PhysicalResourceID: id,
		Data:               map[string]string{"directory": req.DirectoryID, "workspaceId": id},
	}, nil
}

func (h *Workspace) Update(ctx context.Context, ev lifecycle.Event, log *zap.Logger) (lifecycle.Outcome, error) {
	return lifecycle.Outcome{Reason: "No update function defined"}, nil
}

func (h *Workspace) Delete(ctx context.Context, ev lifecycle.Event, log *zap.Logger) (lifecycle.Outcome, error) {
	id := ev.PhysicalResourceID
	if !core.IsWorkspaceID(id) {
		log.Info("no workspace behind physical id", zap.String("physical_resource_id", id))
		return lifecycle.Outcome{Reason: "No workspace to terminate"}, nil
	}
	if err := h.ws.TerminateWorkspace(ctx, id); err != nil {
		return lifecycle.Outcome{}, err
	}
	log.Info("workspace terminated", zap.String("workspace_id", id))
	return lifecycle.Outcome{}, nil
}
