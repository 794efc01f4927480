package workspaces

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/workspaces"
	"github.com/aws/aws-sdk-go-v2/service/workspaces/types"
	"go.uber.org/zap"

	"github.com/lzjever/training-workspaces/internal/awsclient"
	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/observability"
)

// terminateBatchSize is the per-call limit of TerminateWorkspaces.
const terminateBatchSize = 25

// API is the subset of *workspaces.Client used here.
type API interface {
	RegisterWorkspaceDirectory(ctx context.Context, params *workspaces.RegisterWorkspaceDirectoryInput, optFns ...func(*workspaces.Options)) (*workspaces.RegisterWorkspaceDirectoryOutput, error)
	ModifyWorkspaceAccessProperties(ctx context.Context, params *workspaces.ModifyWorkspaceAccessPropertiesInput, optFns ...func(*workspaces.Options)) (*workspaces.ModifyWorkspaceAccessPropertiesOutput, error)
	CreateWorkspaces(ctx context.Context, params *workspaces.CreateWorkspacesInput, optFns ...func(*workspaces.Options)) (*workspaces.CreateWorkspacesOutput, error)
	DescribeWorkspaces(ctx context.Context, params *workspaces.DescribeWorkspacesInput, optFns ...func(*workspaces.Options)) (*workspaces.DescribeWorkspacesOutput, error)
	TerminateWorkspaces(ctx context.Context, params *workspaces.TerminateWorkspacesInput, optFns ...func(*workspaces.Options)) (*workspaces.TerminateWorkspacesOutput, error)
	DeregisterWorkspaceDirectory(ctx context.Context, params *workspaces.DeregisterWorkspaceDirectoryInput, optFns ...func(*workspaces.Options)) (*workspaces.DeregisterWorkspaceDirectoryOutput, error)
}

type Client struct {
	api API
	cfg Config
	log *zap.Logger
}

func NewClient(api API, cfg Config, log *zap.Logger) *Client {
	return &Client{api: api, cfg: cfg, log: log}
}

type CreateRequest struct {
	DirectoryID string
	BundleID    string
	Username    string
	RunningMode core.RunningMode
}

func (c *Client) RegisterDirectory(ctx context.Context, directoryID string) error {
	_, err := c.api.RegisterWorkspaceDirectory(ctx, &workspaces.RegisterWorkspaceDirectoryInput{
		DirectoryId:    aws.String(directoryID),
		EnableWorkDocs: aws.Bool(false),
	})
	observability.ObserveCall("workspaces", "RegisterWorkspaceDirectory", err)
	if err != nil {
		return fmt.Errorf("register directory %s: %w", directoryID, err)
	}
	return nil
}

// SetAccessProperties allows every client device type on the directory.
func (c *Client) SetAccessProperties(ctx context.Context, directoryID string) error {
	allow := types.AccessPropertyValueAllow
	_, err := c.api.ModifyWorkspaceAccessProperties(ctx, &workspaces.ModifyWorkspaceAccessPropertiesInput{
		ResourceId: aws.String(directoryID),
		WorkspaceAccessProperties: &types.WorkspaceAccessProperties{
			DeviceTypeAndroid:    allow,
			DeviceTypeChromeOs:   allow,
			DeviceTypeIos:        allow,
			DeviceTypeOsx:        allow,
			DeviceTypeWeb:        allow,
			DeviceTypeWindows:    allow,
			DeviceTypeZeroClient: allow,
		},
	})
	observability.ObserveCall("workspaces", "ModifyWorkspaceAccessProperties", err)
	if err != nil {
		return fmt.Errorf("set access properties on %s: %w", directoryID, err)
	}
	return nil
}

// CreateWorkspace submits one workspace. The call only counts as success
// when nothing failed and a pending request carries the new id.
func (c *Client) CreateWorkspace(ctx context.Context, req CreateRequest) (string, error) {
	out, err := c.api.CreateWorkspaces(ctx, &workspaces.CreateWorkspacesInput{
		Workspaces: []types.WorkspaceRequest{{
			DirectoryId: aws.String(req.DirectoryID),
			BundleId:    aws.String(req.BundleID),
			UserName:    aws.String(req.Username),
			WorkspaceProperties: &types.WorkspaceProperties{
				RunningMode: types.RunningMode(req.RunningMode),
			},
		}},
	})
	observability.ObserveCall("workspaces", "CreateWorkspaces", err)
	if err != nil {
		return "", fmt.Errorf("create workspace for %s: %w", req.Username, err)
	}
	if len(out.FailedRequests) > 0 {
		var msgs []string
		for _, f := range out.FailedRequests {
			msgs = append(msgs, fmt.Sprintf("%s: %s", aws.ToString(f.ErrorCode), aws.ToString(f.ErrorMessage)))
		}
		return "", core.NewAppError(core.ErrContentInvariant,
			fmt.Sprintf("create workspace for %s failed: %s", req.Username, strings.Join(msgs, "; ")))
	}
	if len(out.PendingRequests) == 0 || aws.ToString(out.PendingRequests[0].WorkspaceId) == "" {
		return "", core.NewAppError(core.ErrContentInvariant,
			fmt.Sprintf("create workspace for %s returned no workspace id", req.Username))
	}
	return aws.ToString(out.PendingRequests[0].WorkspaceId), nil
}

func (c *Client) ListWorkspaces(ctx context.Context, directoryID string) ([]core.WorkspaceInstance, error) {
	var result []core.WorkspaceInstance
	p := workspaces.NewDescribeWorkspacesPaginator(c.api, &workspaces.DescribeWorkspacesInput{
		DirectoryId: aws.String(directoryID),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		observability.ObserveCall("workspaces", "DescribeWorkspaces", err)
		if err != nil {
			return nil, fmt.Errorf("list workspaces of %s: %w", directoryID, err)
		}
		for _, ws := range page.Workspaces {
			inst := core.WorkspaceInstance{
				WorkspaceID: aws.ToString(ws.WorkspaceId),
				BundleID:    aws.ToString(ws.BundleId),
				DirectoryID: aws.ToString(ws.DirectoryId),
				Username:    aws.ToString(ws.UserName),
				State:       string(ws.State),
			}
			if ws.WorkspaceProperties != nil {
				inst.RunningMode = core.RunningMode(ws.WorkspaceProperties.RunningMode)
			}
			result = append(result, inst)
		}
	}
	return result, nil
}

// TerminateWorkspace terminates one workspace. A workspace that no longer
// exists is already in the desired state.
func (c *Client) TerminateWorkspace(ctx context.Context, workspaceID string) error {
	err := c.terminate(ctx, []string{workspaceID})
	if awsclient.IsErrorCode(err, awsclient.CodeResourceNotFound) {
		c.log.Info("workspace already gone", zap.String("workspace_id", workspaceID))
		return nil
	}
	return err
}

// TerminateAll terminates every live workspace of the directory and
// returns how many were submitted.
func (c *Client) TerminateAll(ctx context.Context, directoryID string) (int, error) {
	all, err := c.ListWorkspaces(ctx, directoryID)
	if err != nil {
		return 0, err
	}
	var ids []string
	for _, ws := range all {
		if !ws.Terminated() {
			ids = append(ids, ws.WorkspaceID)
		}
	}
	for start := 0; start < len(ids); start += terminateBatchSize {
		end := min(start+terminateBatchSize, len(ids))
		if err := c.terminate(ctx, ids[start:end]); err != nil {
			return start, err
		}
	}
	c.log.Info("workspaces submitted for termination",
		zap.String("directory_id", directoryID), zap.Int("count", len(ids)))
	return len(ids), nil
}

func (c *Client) terminate(ctx context.Context, ids []string) error {
	reqs := make([]types.TerminateRequest, 0, len(ids))
	for _, id := range ids {
		reqs = append(reqs, types.TerminateRequest{WorkspaceId: aws.String(id)})
	}
	out, err := c.api.TerminateWorkspaces(ctx, &workspaces.TerminateWorkspacesInput{TerminateWorkspaceRequests: reqs})
	observability.ObserveCall("workspaces", "TerminateWorkspaces", err)
	if err != nil {
		return fmt.Errorf("terminate %s: %w", strings.Join(ids, ","), err)
	}
	var msgs []string
	gone := 0
	for _, f := range out.FailedRequests {
		// Per-item not-found codes look like ResourceNotFound.Workspace.
		if strings.HasPrefix(aws.ToString(f.ErrorCode), "ResourceNotFound") {
			gone++
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s %s: %s", aws.ToString(f.WorkspaceId), aws.ToString(f.ErrorCode), aws.ToString(f.ErrorMessage)))
	}
	observability.WorkspacesTerminatedTotal.Add(float64(len(ids) - len(out.FailedRequests)))
	if gone > 0 {
		c.log.Info("workspaces already gone", zap.Int("count", gone))
	}
	if len(msgs) > 0 {
		return core.NewAppError(core.ErrProvider, "terminate failed: "+strings.Join(msgs, "; "))
	}
	return nil
}

var ErrTerminationTimeout = errors.New("workspaces still terminating")

// WaitForTermination polls until the directory has no workspace left that
// is not TERMINATED, or the configured timeout passes.
func (c *Client) WaitForTermination(ctx context.Context, directoryID string) error {
	deadline := time.Now().Add(c.cfg.TerminateTimeout)
	for {
		all, err := c.ListWorkspaces(ctx, directoryID)
		if err != nil {
			return err
		}
		live := 0
		for _, ws := range all {
			if !ws.Terminated() {
				live++
			}
		}
		if live == 0 {
			return nil
		}
		if !time.Now().Before(deadline) {
			return core.WrapAppError(core.ErrDependencyNotReady,
				fmt.Sprintf("%d workspaces of %s still terminating after %s", live, directoryID, c.cfg.TerminateTimeout),
				ErrTerminationTimeout)
		}
		c.log.Debug("waiting for workspace termination",
			zap.String("directory_id", directoryID), zap.Int("live", live))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.TerminatePollInterval):
		}
	}
}

// DeregisterDirectory removes every workspace and then the registration.
// Deregistration runs even when there was nothing to terminate.
func (c *Client) DeregisterDirectory(ctx context.Context, directoryID string) error {
	if _, err := c.TerminateAll(ctx, directoryID); err != nil {
		return err
	}
	if err := c.WaitForTermination(ctx, directoryID); err != nil {
		return err
	}
	_, err := c.api.DeregisterWorkspaceDirectory(ctx, &workspaces.DeregisterWorkspaceDirectoryInput{
		DirectoryId: aws.String(directoryID),
	})
	observability.ObserveCall("workspaces", "DeregisterWorkspaceDirectory", err)
	if awsclient.IsErrorCode(err, awsclient.CodeResourceNotFound) {
		c.log.Info("directory already deregistered", zap.String("directory_id", directoryID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("deregister directory %s: %w", directoryID, err)
	}
	return nil
}
