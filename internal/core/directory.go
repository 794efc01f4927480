package core

type RegistrationState string

const (
	RegistrationUnregistered  RegistrationState = "UNREGISTERED"
	RegistrationRegistering   RegistrationState = "REGISTERING"
	RegistrationRegistered    RegistrationState = "REGISTERED"
	RegistrationDeregistering RegistrationState = "DEREGISTERING"
	RegistrationDeregistered  RegistrationState = "DEREGISTERED"
)

// DirectoryHandle is one Simple AD instance as reported by Directory Service.
type DirectoryHandle struct {
	ID       string   `json:"directory_id"`
	Name     string   `json:"name,omitempty"`
	BaseDN   string   `json:"base_dn,omitempty"`
	DNSAddrs []string `json:"dns_addrs"`
	Stage    string   `json:"stage,omitempty"`
}

// Endpoint returns the first DNS address of the directory. It is empty
// until the directory has finished provisioning.
func (d DirectoryHandle) Endpoint() (string, bool) {
	for _, addr := range d.DNSAddrs {
		if addr != "" {
			return addr, true
		}
	}
	return "", false
}

// RegistrationPhysicalID is the identifier the lifecycle engine correlates
// registration events with; the provider assigns none.
func RegistrationPhysicalID(directoryID string) string {
	return directoryID + "registration"
}
