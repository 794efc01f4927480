package main

import (
	"context"
	"fmt"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/lzjever/training-workspaces/internal/bootstrap"
	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/fleet"
	"github.com/lzjever/training-workspaces/internal/gateway"
	"github.com/lzjever/training-workspaces/internal/observability"
	"github.com/lzjever/training-workspaces/internal/store"
)

type auditLister interface {
	ListAudit(ctx context.Context, f store.AuditFilter) ([]core.AuditEvent, error)
}

// backend is either a remote gateway or the handlers wired in-process.
type backend struct {
	invoker fleet.Invoker
	lister  fleet.WorkspaceLister
	audit   auditLister
	log     *zap.Logger
	close   func()
}

func newBackend(ctx context.Context) (*backend, error) {
	log, err := observability.NewLogger("trainingctl", logLevel)
	if err != nil {
		return nil, err
	}
	if gatewayURL != "" {
		c := gateway.NewClient(gatewayURL)
		return &backend{invoker: c, lister: c, audit: c, log: log, close: func() { log.Sync() }}, nil
	}

	var cfg bootstrap.Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	rt, err := bootstrap.New(ctx, cfg.Settings(), log)
	if err != nil {
		return nil, err
	}
	b := &backend{
		invoker: fleet.LocalInvoker(rt.Dispatchers(log)),
		lister:  rt.Services.WorkSpaces,
		log:     log,
		close: func() {
			rt.Close()
			log.Sync()
		},
	}
	if rt.Audit != nil {
		b.audit = rt.Audit
	}
	return b, nil
}
