package handler

import (
	"context"

	"go.uber.org/zap"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/directory"
	"github.com/lzjever/training-workspaces/internal/lifecycle"
)

type EndpointResolver interface {
	ResolveEndpoint(ctx context.Context, directoryID string) (string, error)
}

type PasswordResetter interface {
	ResetPassword(ctx context.Context, directoryID, username, password string) error
}

type SecretReader interface {
	AdminPassword(ctx context.Context, name string) (string, error)
}

// UserSession is a bound directory connection.
type UserSession interface {
	AddUser(user core.UserRecord, domain string) (created bool, err error)
	Close() error
}

type DirectoryWriter interface {
	Open(ctx context.Context, endpoint, baseDN string, admin core.AdminCredential) (UserSession, error)
}

// LDAPWriter adapts a directory access client to DirectoryWriter.
func LDAPWriter(a *directory.Access) DirectoryWriter {
	return ldapWriter{a: a}
}

type ldapWriter struct {
	a *directory.Access
}

func (w ldapWriter) Open(ctx context.Context, endpoint, baseDN string, admin core.AdminCredential) (UserSession, error) {
	s, err := w.a.Open(ctx, endpoint, baseDN, admin)
	if err != nil {
		return nil, err
	}
	return s, nil
}

type UserDeps struct {
	Endpoints EndpointResolver
	Passwords PasswordResetter
	Secrets   SecretReader
	Directory DirectoryWriter
}

// User creates one trainee entry in the directory. Users are removed
// together with the directory, so delete does nothing.
type User struct {
	deps UserDeps
}

func NewUser(deps UserDeps) *User {
	return &User{deps: deps}
}

type userProps struct {
	directoryID string
	paramName   string
	adminUser   string
	baseDN      string
	domain      string
	user        core.UserRecord
}

func decodeUser(props lifecycle.Properties) (userProps, error) {
	dec := lifecycle.NewDecoder(props)
	p := userProps{
		directoryID: dec.Require("directoryId"),
		paramName:   dec.Require("adminPasswordParameter"),
		adminUser:   dec.Require("adminUser"),
		baseDN:      dec.Require("baseDN"),
		domain:      dec.Require("domain"),
	}
	p.user = core.UserRecord{
		Email:    dec.Require("email"),
		Password: dec.Require("password"),
		Username: dec.Require("username"),
	}
	p.user.DirectoryID = p.directoryID
	return p, dec.Err(core.ReasonMissingParameters)
}

func (h *User) Create(ctx context.Context, ev lifecycle.Event, log *zap.Logger) (lifecycle.Outcome, error) {
	p, err := decodeUser(ev.ResourceProperties)
	if err != nil {
		return lifecycle.Outcome{}, err
	}
	out := lifecycle.Outcome{PhysicalResourceID: core.UserPhysicalID(p.directoryID, p.user.Username)}
	log = log.With(zap.String("directory_id", p.directoryID), zap.String("username", p.user.Username))

	endpoint, err := h.deps.Endpoints.ResolveEndpoint(ctx, p.directoryID)
	if err != nil {
		return out, err
	}
	adminPW, err := h.deps.Secrets.AdminPassword(ctx, p.paramName)
	if err != nil {
		return out, err
	}
	admin := core.AdminCredential{Username: p.adminUser, ParameterName: p.paramName, Password: adminPW}

	sess, err := h.deps.Directory.Open(ctx, endpoint, p.baseDN, admin)
	if err != nil {
		return out, err
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warn("ldap unbind failed", zap.Error(cerr))
		}
	}()

	created, err := sess.AddUser(p.user, p.domain)
	if err != nil {
		return out, err
	}
	if !created {
		log.Info("directory entry already exists")
	}
	if err := h.deps.Passwords.ResetPassword(ctx, p.directoryID, p.user.Username, p.user.Password); err != nil {
		return out, err
	}
	log.Info("directory user ready", zap.Bool("created", created))
	out.Data = map[string]string{"directory": p.directoryID, "username": p.user.Username}
	return out, nil
}

func (h *User) Update(ctx context.Context, ev lifecycle.Event, log *zap.Logger) (lifecycle.Outcome, error) {
	return lifecycle.Outcome{Reason: "No update function defined"}, nil
}

func (h *User) Delete(ctx context.Context, ev lifecycle.Event, log *zap.Logger) (lifecycle.Outcome, error) {
	return lifecycle.Outcome{Reason: "Directory users are removed with the directory"}, nil
}
