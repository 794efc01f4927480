package gateway

import (
	"context"
	"sort"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/gateway/middleware"
	"github.com/lzjever/training-workspaces/internal/lifecycle"
	"github.com/lzjever/training-workspaces/internal/store"
)

type WorkspaceLister interface {
	ListWorkspaces(ctx context.Context, directoryID string) ([]core.WorkspaceInstance, error)
}

// AuditReader is the audit trail as seen by the gateway. It also backs the
// readiness check.
type AuditReader interface {
	ListAudit(ctx context.Context, f store.AuditFilter) ([]core.AuditEvent, error)
	Ping(ctx context.Context) error
}

// Gateway hosts the lifecycle handlers over HTTP.
type Gateway struct {
	dispatchers map[string]*lifecycle.Dispatcher
	workspaces  WorkspaceLister
	audit       AuditReader
	log         *zap.Logger
}

type Option func(*Gateway)

func WithWorkspaces(l WorkspaceLister) Option {
	return func(g *Gateway) { g.workspaces = l }
}

func WithAudit(a AuditReader) Option {
	return func(g *Gateway) { g.audit = a }
}

func New(dispatchers map[string]*lifecycle.Dispatcher, log *zap.Logger, opts ...Option) *Gateway {
	g := &Gateway{dispatchers: dispatchers, log: log}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recoverer(g.log))
	r.Use(middleware.Logger(g.log))

	r.Get("/healthz", g.HealthHandler)
	r.Get("/readyz", g.ReadyHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/handlers", g.ListHandlers)
		r.With(chiMiddleware.AllowContentType("application/json")).
			Post("/handlers/{handler}/events", g.HandleEvent)

		r.Get("/directories/{directory_id}/workspaces", g.ListWorkspaces)
		r.Get("/audit", g.ListAudit)
	})

	return r
}

func (g *Gateway) handlerNames() []string {
	names := make([]string, 0, len(g.dispatchers))
	for name := range g.dispatchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
