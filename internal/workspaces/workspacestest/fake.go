// Package workspacestest provides an in-memory WorkSpaces API for tests.
package workspacestest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/workspaces"
	"github.com/aws/aws-sdk-go-v2/service/workspaces/types"
)

// FakeAPI records every call and keeps workspaces per directory. Terminated
// workspaces stay listed in state TERMINATED.
type FakeAPI struct {
	mu sync.Mutex

	Calls      []string
	Registered map[string]bool
	Access     map[string]*types.WorkspaceAccessProperties
	Workspaces map[string]*types.Workspace
	Terminated [][]string

	// PageSize limits DescribeWorkspaces pages when set.
	PageSize int
	// FailCreate makes CreateWorkspaces report a failed request for the user.
	FailCreate map[string]string
	// Errs makes the named operation return the error.
	Errs map[string]error
	// TerminateState is the state a terminated workspace moves to;
	// TERMINATED when empty.
	TerminateState types.WorkspaceState

	nextID int
}

func New() *FakeAPI {
	return &FakeAPI{
		Registered: map[string]bool{},
		Access:     map[string]*types.WorkspaceAccessProperties{},
		Workspaces: map[string]*types.Workspace{},
		FailCreate: map[string]string{},
		Errs:       map[string]error{},
	}
}

func (f *FakeAPI) record(op string) error {
	f.Calls = append(f.Calls, op)
	return f.Errs[op]
}

// Add seeds a workspace in state AVAILABLE and returns its id.
func (f *FakeAPI) Add(directoryID, username string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.add(directoryID, "wsb-test", username, types.RunningModeAutoStop)
}

func (f *FakeAPI) add(directoryID, bundleID, username string, mode types.RunningMode) string {
	f.nextID++
	id := fmt.Sprintf("ws-%08d", f.nextID)
	f.Workspaces[id] = &types.Workspace{
		WorkspaceId:         aws.String(id),
		DirectoryId:         aws.String(directoryID),
		BundleId:            aws.String(bundleID),
		UserName:            aws.String(username),
		State:               types.WorkspaceStateAvailable,
		WorkspaceProperties: &types.WorkspaceProperties{RunningMode: mode},
	}
	return id
}

// Live returns the ids of non-terminated workspaces of the directory.
func (f *FakeAPI) Live(directoryID string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []string
	for id, ws := range f.Workspaces {
		if aws.ToString(ws.DirectoryId) == directoryID && ws.State != types.WorkspaceStateTerminated {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// CallLog returns a copy of the recorded operation names.
func (f *FakeAPI) CallLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

func (f *FakeAPI) RegisterWorkspaceDirectory(ctx context.Context, params *workspaces.RegisterWorkspaceDirectoryInput, optFns ...func(*workspaces.Options)) (*workspaces.RegisterWorkspaceDirectoryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("RegisterWorkspaceDirectory"); err != nil {
		return nil, err
	}
	f.Registered[aws.ToString(params.DirectoryId)] = true
	return &workspaces.RegisterWorkspaceDirectoryOutput{}, nil
}

func (f *FakeAPI) ModifyWorkspaceAccessProperties(ctx context.Context, params *workspaces.ModifyWorkspaceAccessPropertiesInput, optFns ...func(*workspaces.Options)) (*workspaces.ModifyWorkspaceAccessPropertiesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ModifyWorkspaceAccessProperties"); err != nil {
		return nil, err
	}
	f.Access[aws.ToString(params.ResourceId)] = params.WorkspaceAccessProperties
	return &workspaces.ModifyWorkspaceAccessPropertiesOutput{}, nil
}

func (f *FakeAPI) CreateWorkspaces(ctx context.Context, params *workspaces.CreateWorkspacesInput, optFns ...func(*workspaces.Options)) (*workspaces.CreateWorkspacesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateWorkspaces"); err != nil {
		return nil, err
	}
	out := &workspaces.CreateWorkspacesOutput{}
	for _, req := range params.Workspaces {
		user := aws.ToString(req.UserName)
		if code, ok := f.FailCreate[user]; ok {
			r := req
			out.FailedRequests = append(out.FailedRequests, types.FailedCreateWorkspaceRequest{
				ErrorCode:        aws.String(code),
				ErrorMessage:     aws.String("cannot create workspace for " + user),
				WorkspaceRequest: &r,
			})
			continue
		}
		var mode types.RunningMode
		if req.WorkspaceProperties != nil {
			mode = req.WorkspaceProperties.RunningMode
		}
		id := f.add(aws.ToString(req.DirectoryId), aws.ToString(req.BundleId), user, mode)
		ws := *f.Workspaces[id]
		ws.State = types.WorkspaceStatePending
		out.PendingRequests = append(out.PendingRequests, ws)
	}
	return out, nil
}

func (f *FakeAPI) DescribeWorkspaces(ctx context.Context, params *workspaces.DescribeWorkspacesInput, optFns ...func(*workspaces.Options)) (*workspaces.DescribeWorkspacesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DescribeWorkspaces"); err != nil {
		return nil, err
	}
	var ids []string
	for id, ws := range f.Workspaces {
		if params.DirectoryId == nil || aws.ToString(ws.DirectoryId) == aws.ToString(params.DirectoryId) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	start := 0
	if params.NextToken != nil {
		start, _ = strconv.Atoi(*params.NextToken)
	}
	end := len(ids)
	if f.PageSize > 0 && start+f.PageSize < end {
		end = start + f.PageSize
	}
	out := &workspaces.DescribeWorkspacesOutput{}
	for _, id := range ids[start:end] {
		out.Workspaces = append(out.Workspaces, *f.Workspaces[id])
	}
	if end < len(ids) {
		out.NextToken = aws.String(strconv.Itoa(end))
	}
	return out, nil
}

func (f *FakeAPI) TerminateWorkspaces(ctx context.Context, params *workspaces.TerminateWorkspacesInput, optFns ...func(*workspaces.Options)) (*workspaces.TerminateWorkspacesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("TerminateWorkspaces"); err != nil {
		return nil, err
	}
	out := &workspaces.TerminateWorkspacesOutput{}
	var batch []string
	for _, req := range params.TerminateWorkspaceRequests {
		id := aws.ToString(req.WorkspaceId)
		batch = append(batch, id)
		ws, ok := f.Workspaces[id]
		if !ok {
			out.FailedRequests = append(out.FailedRequests, types.FailedWorkspaceChangeRequest{
				WorkspaceId:  aws.String(id),
				ErrorCode:    aws.String("ResourceNotFound.Workspace"),
				ErrorMessage: aws.String("The specified WorkSpace cannot be found."),
			})
			continue
		}
		ws.State = types.WorkspaceStateTerminated
		if f.TerminateState != "" {
			ws.State = f.TerminateState
		}
	}
	f.Terminated = append(f.Terminated, batch)
	return out, nil
}

func (f *FakeAPI) DeregisterWorkspaceDirectory(ctx context.Context, params *workspaces.DeregisterWorkspaceDirectoryInput, optFns ...func(*workspaces.Options)) (*workspaces.DeregisterWorkspaceDirectoryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeregisterWorkspaceDirectory"); err != nil {
		return nil, err
	}
	delete(f.Registered, aws.ToString(params.DirectoryId))
	return &workspaces.DeregisterWorkspaceDirectoryOutput{}, nil
}
