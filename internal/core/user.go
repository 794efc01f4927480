package core

import "fmt"

const (
	DefaultAdminUser    = "Administrator"
	TraineePrefix       = "training"
	DefaultTraineeEmail = "noreply@tecracer.de"
)

type UserRecord struct {
	Username    string `json:"username"`
	Email       string `json:"email"`
	Password    string `json:"-"`
	DirectoryID string `json:"directory_id"`
}

// PrincipalName is the userPrincipalName of the user in domain.
func (u UserRecord) PrincipalName(domain string) string {
	return u.Username + "@" + domain
}

// DN is the distinguished name of the user entry under baseDN.
func (u UserRecord) DN(baseDN string) string {
	return "CN=" + u.Username + "," + baseDN
}

// UserPhysicalID identifies a user resource towards the lifecycle engine.
func UserPhysicalID(directoryID, username string) string {
	return directoryID + "+user-" + username
}

// AdminCredential is the directory administrator. Password is read from
// the parameter store, never written.
type AdminCredential struct {
	Username      string
	ParameterName string
	Password      string
}

func (a AdminCredential) BindDN(baseDN string) string {
	return "CN=" + a.Username + "," + baseDN
}

// TraineeNames returns training01..trainingNN.
func TraineeNames(n int) []string {
	names := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		names = append(names, fmt.Sprintf("%s%02d", TraineePrefix, i))
	}
	return names
}

// DefaultPassword is the initial password handed to a trainee.
func DefaultPassword(username string) string {
	return username + "!"
}
