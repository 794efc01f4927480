package fleet

import (
	"sort"
	"strings"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/directory"
	"github.com/lzjever/training-workspaces/internal/lifecycle"
)

const (
	DefaultConcurrency = 4

	logicalRegistration = "Registration"
)

// Plan describes one training fleet: a registered directory plus one
// (user, workspace) pair per trainee.
type Plan struct {
	DirectoryID            string
	Domain                 string
	BaseDN                 string
	AdminUser              string
	AdminPasswordParameter string
	BundleID               string
	RunningMode            core.RunningMode
	Email                  string
	Trainees               int
	// Usernames overrides the generated training01..NN names.
	Usernames   []string
	StackID     string
	Concurrency int
}

// WithDefaults fills every optional field.
func (p Plan) WithDefaults() Plan {
	if p.BaseDN == "" {
		p.BaseDN = directory.BaseDNForDomain(p.Domain)
	}
	if p.AdminUser == "" {
		p.AdminUser = core.DefaultAdminUser
	}
	if p.RunningMode == "" {
		p.RunningMode = core.RunningModeAutoStop
	}
	if p.Email == "" {
		p.Email = core.DefaultTraineeEmail
	}
	if p.Concurrency <= 0 {
		p.Concurrency = DefaultConcurrency
	}
	if p.StackID == "" {
		p.StackID = core.CLIStackID(p.DirectoryID)
	}
	return p
}

func (p Plan) Users() []string {
	if len(p.Usernames) > 0 {
		return p.Usernames
	}
	return core.TraineeNames(p.Trainees)
}

// ValidateUp checks what fleet setup needs.
func (p Plan) ValidateUp() error {
	var missing []string
	for key, v := range map[string]string{
		"directory-id":             p.DirectoryID,
		"domain":                   p.Domain,
		"admin-password-parameter": p.AdminPasswordParameter,
		"bundle-id":                p.BundleID,
	} {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, key)
		}
	}
	if len(p.Users()) == 0 {
		missing = append(missing, "trainees")
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return &core.ValidationError{Reason: "incomplete fleet plan", Missing: missing}
}

func (p Plan) ValidateDown() error {
	if strings.TrimSpace(p.DirectoryID) == "" {
		return &core.ValidationError{Reason: "incomplete fleet plan", Missing: []string{"directory-id"}}
	}
	return nil
}

func (p Plan) event(rt lifecycle.RequestType, logicalID string, props lifecycle.Properties) lifecycle.Event {
	return lifecycle.Event{
		RequestType:        rt,
		StackID:            p.StackID,
		RequestID:          core.NewRequestID(),
		ResourceType:       "Custom::TrainingWorkspaces",
		LogicalResourceID:  logicalID,
		ResourceProperties: props,
	}
}

func (p Plan) registrationProps() lifecycle.Properties {
	return lifecycle.Properties{"directory": p.DirectoryID}
}

func (p Plan) userProps(username string) lifecycle.Properties {
	return lifecycle.Properties{
		"directoryId":            p.DirectoryID,
		"adminPasswordParameter": p.AdminPasswordParameter,
		"adminUser":              p.AdminUser,
		"baseDN":                 p.BaseDN,
		"email":                  p.Email,
		"domain":                 p.Domain,
		"password":               core.DefaultPassword(username),
		"username":               username,
	}
}

func (p Plan) workspaceProps(username string) lifecycle.Properties {
	return lifecycle.Properties{
		"directoryId": p.DirectoryID,
		"bundleId":    p.BundleID,
		"userName":    username,
		"runningMode": string(p.RunningMode),
	}
}

func userLogicalID(username string) string      { return "User_" + username }
func workspaceLogicalID(username string) string { return "Workspace_" + username }
