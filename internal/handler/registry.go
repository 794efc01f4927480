package handler

import (
	"go.uber.org/zap"

	"github.com/lzjever/training-workspaces/internal/awsclient"
	"github.com/lzjever/training-workspaces/internal/directory"
	"github.com/lzjever/training-workspaces/internal/lifecycle"
	"github.com/lzjever/training-workspaces/internal/secrets"
	"github.com/lzjever/training-workspaces/internal/workspaces"
)

const (
	NameRegistration = "registration"
	NameUser         = "user"
	NameWorkspace    = "workspace"
)

// Names lists the handlers in provisioning order.
var Names = []string{NameRegistration, NameUser, NameWorkspace}

// Services are the provider clients the handlers run on.
type Services struct {
	WorkSpaces *workspaces.Client
	Directory  *directory.Service
	Secrets    *secrets.Store
	LDAP       *directory.Access
}

func NewServices(clients *awsclient.Clients, wsCfg workspaces.Config, log *zap.Logger) Services {
	return Services{
		WorkSpaces: workspaces.NewClient(clients.WorkSpaces, wsCfg, log.Named("workspaces")),
		Directory:  directory.NewService(clients.Directory),
		Secrets:    secrets.NewStore(clients.SSM),
		LDAP:       directory.NewAccess(nil),
	}
}

// New returns the named handler, or nil for an unknown name.
func New(name string, svc Services) lifecycle.Handler {
	switch name {
	case NameRegistration:
		return NewRegistration(svc.WorkSpaces)
	case NameUser:
		return NewUser(UserDeps{
			Endpoints: svc.Directory,
			Passwords: svc.Directory,
			Secrets:   svc.Secrets,
			Directory: LDAPWriter(svc.LDAP),
		})
	case NameWorkspace:
		return NewWorkspace(svc.WorkSpaces)
	}
	return nil
}

// Dispatchers builds one dispatcher per handler.
func Dispatchers(svc Services, log *zap.Logger, opts ...lifecycle.Option) map[string]*lifecycle.Dispatcher {
	m := make(map[string]*lifecycle.Dispatcher, len(Names))
	for _, name := range Names {
		m[name] = lifecycle.NewDispatcher(name, New(name, svc), log, opts...)
	}
	return m
}
