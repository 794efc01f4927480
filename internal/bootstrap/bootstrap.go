// Package bootstrap wires provider clients, handlers and the optional
// audit trail from the environment.
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/lzjever/training-workspaces/internal/awsclient"
	"github.com/lzjever/training-workspaces/internal/handler"
	"github.com/lzjever/training-workspaces/internal/lifecycle"
	"github.com/lzjever/training-workspaces/internal/observability"
	"github.com/lzjever/training-workspaces/internal/store"
	"github.com/lzjever/training-workspaces/internal/workspaces"
)

// Config is the environment of a Lambda entrypoint.
type Config struct {
	LogLevel     string `envconfig:"PROVISIONER_LOG_LEVEL" default:"info"`
	SendResponse bool   `envconfig:"PROVISIONER_SEND_RESPONSE" default:"false"`
	DBDSN        string `envconfig:"PROVISIONER_DB_DSN"`
}

// Settings select the optional parts of a Runtime.
type Settings struct {
	SendResponse bool
	DBDSN        string
}

func (c Config) Settings() Settings {
	return Settings{SendResponse: c.SendResponse, DBDSN: c.DBDSN}
}

// Runtime holds everything the handlers run on.
type Runtime struct {
	Services handler.Services
	Options  []lifecycle.Option
	Audit    *store.AuditStore

	closers []func()
}

// New loads the provider configuration from the environment and builds
// the services. The audit store is migrated on first use.
func New(ctx context.Context, s Settings, log *zap.Logger) (*Runtime, error) {
	var awsCfg awsclient.Config
	if err := envconfig.Process("", &awsCfg); err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}
	var wsCfg workspaces.Config
	if err := envconfig.Process("", &wsCfg); err != nil {
		return nil, fmt.Errorf("workspaces config: %w", err)
	}
	sdkCfg, err := awsclient.Load(ctx, awsCfg)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Services: handler.NewServices(awsclient.NewClients(sdkCfg), wsCfg, log)}
	if s.SendResponse {
		rt.Options = append(rt.Options, lifecycle.WithResponder(lifecycle.NewResponder(nil)))
	}
	if s.DBDSN != "" {
		pool, err := store.NewPool(ctx, s.DBDSN)
		if err != nil {
			return nil, err
		}
		rt.closers = append(rt.closers, pool.Close)
		rt.Audit = store.NewAuditStore(pool)
		if err := rt.Audit.Migrate(ctx); err != nil {
			rt.Close()
			return nil, err
		}
		rt.Options = append(rt.Options, lifecycle.WithRecorder(rt.Audit))
	}
	log.Info("runtime ready",
		zap.String("region", sdkCfg.Region),
		zap.Int("max_attempts", awsCfg.MaxAttempts),
		zap.Bool("send_response", s.SendResponse),
		zap.Bool("audit", rt.Audit != nil),
	)
	return rt, nil
}

func (r *Runtime) Dispatcher(name string, log *zap.Logger) *lifecycle.Dispatcher {
	return lifecycle.NewDispatcher(name, handler.New(name, r.Services), log, r.Options...)
}

func (r *Runtime) Dispatchers(log *zap.Logger) map[string]*lifecycle.Dispatcher {
	return handler.Dispatchers(r.Services, log, r.Options...)
}

func (r *Runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// RunLambda serves the named handler as a Lambda function. It does not
// return.
func RunLambda(name string) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, _ := observability.NewLogger(name+"-handler", cfg.LogLevel)
	defer log.Sync()

	rt, err := New(context.Background(), cfg.Settings(), log)
	if err != nil {
		log.Fatal("runtime setup failed", zap.Error(err))
	}
	defer rt.Close()

	lambda.Start(rt.Dispatcher(name, log).Handle)
}
