package directory

import (
	"context"
	"fmt"
	"net"
	"time"

	ldap3 "github.com/go-ldap/ldap/v3"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/observability"
)

// RequestTimeout bounds every LDAP request. It is not configurable per call.
const RequestTimeout = 5 * time.Second

// Conn is the part of *ldap3.Conn the access client drives.
type Conn interface {
	Bind(username, password string) error
	Add(req *ldap3.AddRequest) error
	Unbind() error
}

type DialFunc func(url string, timeout time.Duration) (Conn, error)

// DialLDAP opens a plain LDAP connection with timeout applied to both the
// dial and each request.
func DialLDAP(url string, timeout time.Duration) (Conn, error) {
	conn, err := ldap3.DialURL(url, ldap3.DialWithDialer(&net.Dialer{Timeout: timeout}))
	if err != nil {
		return nil, err
	}
	conn.SetTimeout(timeout)
	return conn, nil
}

// Access creates directory entries over LDAP.
type Access struct {
	dial DialFunc
}

func NewAccess(dial DialFunc) *Access {
	if dial == nil {
		dial = DialLDAP
	}
	return &Access{dial: dial}
}

// Open binds to the directory at endpoint as admin. The returned session
// must be closed.
func (a *Access) Open(ctx context.Context, endpoint, baseDN string, admin core.AdminCredential) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	url := "ldap://" + endpoint
	conn, err := a.dial(url, RequestTimeout)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}
	bindDN := admin.BindDN(baseDN)
	if err := conn.Bind(bindDN, admin.Password); err != nil {
		_ = conn.Unbind()
		return nil, fmt.Errorf("bind as %s: %w", bindDN, err)
	}
	return &Session{conn: conn, baseDN: baseDN}, nil
}

type Session struct {
	conn   Conn
	baseDN string
}

// AddUser creates the user entry. An entry that already exists counts as
// created, so the call is idempotent; created reports which case applied.
func (s *Session) AddUser(user core.UserRecord, domain string) (created bool, err error) {
	dn := user.DN(s.baseDN)
	req := ldap3.NewAddRequest(dn, nil)
	req.Attribute("sn", []string{user.Username})
	req.Attribute("sAMAccountName", []string{user.Username})
	req.Attribute("userPrincipalName", []string{user.PrincipalName(domain)})
	req.Attribute("mail", []string{user.Email})
	req.Attribute("givenName", []string{user.Username})
	req.Attribute("objectClass", []string{"user"})

	err = s.conn.Add(req)
	observability.ObserveCall("ldap", "Add", err)
	if ldap3.IsErrorWithCode(err, ldap3.LDAPResultEntryAlreadyExists) {
		observability.LDAPDuplicateEntriesTotal.Inc()
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("add entry %s: %w", dn, err)
	}
	return true, nil
}

func (s *Session) Close() error {
	return s.conn.Unbind()
}
