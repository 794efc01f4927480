package core

import (
	"fmt"
	"strings"
)

type RunningMode string

const (
	RunningModeAutoStop RunningMode = "AUTO_STOP"
	RunningModeAlwaysOn RunningMode = "ALWAYS_ON"
)

func ParseRunningMode(s string) (RunningMode, error) {
	switch RunningMode(strings.ToUpper(strings.TrimSpace(s))) {
	case RunningModeAutoStop:
		return RunningModeAutoStop, nil
	case RunningModeAlwaysOn:
		return RunningModeAlwaysOn, nil
	}
	return "", fmt.Errorf("invalid running mode %q", s)
}

// FailedWorkspacePhysicalID is reported when creation did not yield a
// workspace id. A later delete for it has nothing to terminate.
const FailedWorkspacePhysicalID = "failedToCreate"

const workspaceIDPrefix = "ws-"

// IsWorkspaceID reports whether id can name a provider workspace.
func IsWorkspaceID(id string) bool {
	return strings.HasPrefix(id, workspaceIDPrefix) && len(id) > len(workspaceIDPrefix)
}

type WorkspaceInstance struct {
	WorkspaceID string      `json:"workspace_id"`
	BundleID    string      `json:"bundle_id,omitempty"`
	DirectoryID string      `json:"directory_id"`
	Username    string      `json:"username"`
	RunningMode RunningMode `json:"running_mode,omitempty"`
	State       string      `json:"state,omitempty"`
}

// Terminated reports whether the provider has finished removing the instance.
func (w WorkspaceInstance) Terminated() bool {
	return w.State == "TERMINATED"
}
