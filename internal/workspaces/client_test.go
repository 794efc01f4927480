package workspaces

import (
	"context"
	"errors"
	"testing"
	"time"

	wsapi "github.com/aws/aws-sdk-go-v2/service/workspaces"
	"github.com/aws/aws-sdk-go-v2/service/workspaces/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/workspaces/workspacestest"
)

const dir = "d-123"

func newTestClient(api API) *Client {
	return NewClient(api, Config{TerminatePollInterval: time.Millisecond, TerminateTimeout: 50 * time.Millisecond}, zap.NewNop())
}

func TestRegisterAndAccessProperties(t *testing.T) {
	api := workspacestest.New()
	c := newTestClient(api)
	require.NoError(t, c.RegisterDirectory(context.Background(), dir))
	require.NoError(t, c.SetAccessProperties(context.Background(), dir))

	assert.True(t, api.Registered[dir])
	props := api.Access[dir]
	require.NotNil(t, props)
	for _, v := range []types.AccessPropertyValue{
		props.DeviceTypeAndroid, props.DeviceTypeChromeOs, props.DeviceTypeIos, props.DeviceTypeOsx,
		props.DeviceTypeWeb, props.DeviceTypeWindows, props.DeviceTypeZeroClient,
	} {
		assert.Equal(t, types.AccessPropertyValueAllow, v)
	}
}

func TestRegisterErrorSurfaces(t *testing.T) {
	api := workspacestest.New()
	api.Errs["RegisterWorkspaceDirectory"] = errors.New("InvalidResourceStateException")
	err := newTestClient(api).RegisterDirectory(context.Background(), dir)
	assert.ErrorContains(t, err, "InvalidResourceStateException")
}

func TestCreateWorkspace(t *testing.T) {
	api := workspacestest.New()
	id, err := newTestClient(api).CreateWorkspace(context.Background(), CreateRequest{
		DirectoryID: dir, BundleID: "wsb-1", Username: "training01", RunningMode: core.RunningModeAutoStop,
	})
	require.NoError(t, err)
	assert.True(t, core.IsWorkspaceID(id))
	assert.Equal(t, []string{id}, api.Live(dir))
	assert.Equal(t, types.RunningModeAutoStop, api.Workspaces[id].WorkspaceProperties.RunningMode)
}

func TestCreateWorkspaceFailedRequest(t *testing.T) {
	api := workspacestest.New()
	api.FailCreate["training01"] = "ResourceLimitExceeded"
	_, err := newTestClient(api).CreateWorkspace(context.Background(), CreateRequest{DirectoryID: dir, BundleID: "wsb-1", Username: "training01"})

	var appErr *core.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, core.ErrContentInvariant, appErr.Code)
	assert.Contains(t, appErr.Message, "ResourceLimitExceeded")
}

type emptyCreate struct{ API }

func (emptyCreate) CreateWorkspaces(ctx context.Context, params *wsapi.CreateWorkspacesInput, optFns ...func(*wsapi.Options)) (*wsapi.CreateWorkspacesOutput, error) {
	return &wsapi.CreateWorkspacesOutput{}, nil
}

func TestCreateWorkspaceNoPendingRequest(t *testing.T) {
	_, err := newTestClient(emptyCreate{workspacestest.New()}).CreateWorkspace(context.Background(), CreateRequest{Username: "training01"})
	assert.Equal(t, core.ErrContentInvariant, core.CodeOf(err))
}

func TestListWorkspacesPaginates(t *testing.T) {
	api := workspacestest.New()
	api.PageSize = 2
	for _, u := range core.TraineeNames(5) {
		api.Add(dir, u)
	}
	api.Add("d-other", "someone")

	got, err := newTestClient(api).ListWorkspaces(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, got, 5)
	for _, ws := range got {
		assert.Equal(t, dir, ws.DirectoryID)
		assert.Equal(t, core.RunningModeAutoStop, ws.RunningMode)
	}
}

func TestTerminateWorkspaceAlreadyGone(t *testing.T) {
	api := workspacestest.New()
	require.NoError(t, newTestClient(api).TerminateWorkspace(context.Background(), "ws-missing"))
}

func TestTerminateWorkspaceAPINotFound(t *testing.T) {
	api := workspacestest.New()
	api.Errs["TerminateWorkspaces"] = &smithy.GenericAPIError{Code: "ResourceNotFoundException", Message: "gone"}
	require.NoError(t, newTestClient(api).TerminateWorkspace(context.Background(), "ws-1"))
}

func TestTerminateWorkspaceFailureSurfaces(t *testing.T) {
	api := workspacestest.New()
	api.Errs["TerminateWorkspaces"] = errors.New("AccessDeniedException")
	err := newTestClient(api).TerminateWorkspace(context.Background(), "ws-1")
	assert.ErrorContains(t, err, "AccessDeniedException")
}

func TestTerminateAllChunks(t *testing.T) {
	api := workspacestest.New()
	for _, u := range core.TraineeNames(60) {
		api.Add(dir, u)
	}
	n, err := newTestClient(api).TerminateAll(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 60, n)
	require.Len(t, api.Terminated, 3)
	assert.Len(t, api.Terminated[0], 25)
	assert.Len(t, api.Terminated[1], 25)
	assert.Len(t, api.Terminated[2], 10)
	assert.Empty(t, api.Live(dir))
}

func TestTerminateAllEmptyMakesNoCall(t *testing.T) {
	api := workspacestest.New()
	n, err := newTestClient(api).TerminateAll(context.Background(), dir)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NotContains(t, api.CallLog(), "TerminateWorkspaces")
}

func TestDeregisterTerminatesFirst(t *testing.T) {
	api := workspacestest.New()
	api.Registered[dir] = true
	api.Add(dir, "training01")
	api.Add(dir, "training02")

	require.NoError(t, newTestClient(api).DeregisterDirectory(context.Background(), dir))
	calls := api.CallLog()
	assert.Equal(t, "DeregisterWorkspaceDirectory", calls[len(calls)-1])
	assert.Less(t, indexOf(calls, "TerminateWorkspaces"), indexOf(calls, "DeregisterWorkspaceDirectory"))
	assert.False(t, api.Registered[dir])
}

func TestDeregisterEmptyInventoryStillDeregisters(t *testing.T) {
	api := workspacestest.New()
	api.Registered[dir] = true
	require.NoError(t, newTestClient(api).DeregisterDirectory(context.Background(), dir))
	assert.Contains(t, api.CallLog(), "DeregisterWorkspaceDirectory")
	assert.False(t, api.Registered[dir])
}

func TestDeregisterAlreadyDeregistered(t *testing.T) {
	api := workspacestest.New()
	api.Errs["DeregisterWorkspaceDirectory"] = &smithy.GenericAPIError{Code: "ResourceNotFoundException"}
	require.NoError(t, newTestClient(api).DeregisterDirectory(context.Background(), dir))
}

func TestWaitForTerminationTimesOut(t *testing.T) {
	api := workspacestest.New()
	api.TerminateState = types.WorkspaceStateTerminating
	api.Add(dir, "training01")
	c := newTestClient(api)
	_, err := c.TerminateAll(context.Background(), dir)
	require.NoError(t, err)

	err = c.WaitForTermination(context.Background(), dir)
	assert.ErrorIs(t, err, ErrTerminationTimeout)
	assert.Equal(t, core.ErrDependencyNotReady, core.CodeOf(err))

	err = c.DeregisterDirectory(context.Background(), dir)
	require.Error(t, err)
	assert.NotContains(t, api.CallLog(), "DeregisterWorkspaceDirectory")
}

func TestWaitForTerminationHonorsContext(t *testing.T) {
	api := workspacestest.New()
	api.TerminateState = types.WorkspaceStateTerminating
	api.Add(dir, "training01")
	c := NewClient(api, Config{TerminatePollInterval: time.Hour, TerminateTimeout: time.Hour}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.WaitForTermination(ctx, dir), context.Canceled)
}

func indexOf(calls []string, op string) int {
	for i, c := range calls {
		if c == op {
			return i
		}
	}
	return -1
}
