package handler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/lifecycle"
	"github.com/lzjever/training-workspaces/internal/observability"
)

const propDirectory = "directory"

// Registrar is what the registration handler needs from the workspace
// service.
type Registrar interface {
	RegisterDirectory(ctx context.Context, directoryID string) error
	SetAccessProperties(ctx context.Context, directoryID string) error
	DeregisterDirectory(ctx context.Context, directoryID string) error
}

// Registration makes a directory usable for workspaces on create and
// removes every workspace plus the registration on delete.
type Registration struct {
	ws Registrar
}

func NewRegistration(ws Registrar) *Registration {
	return &Registration{ws: ws}
}

func (h *Registration) directoryID(ev lifecycle.Event) (string, error) {
	dec := lifecycle.NewDecoder(ev.ResourceProperties)
	id := dec.Require(propDirectory)
	if err := dec.Err(core.ReasonMissingDirectory); err != nil {
		return "", err
	}
	return id, nil
}

func (h *Registration) Create(ctx context.Context, ev lifecycle.Event, log *zap.Logger) (lifecycle.Outcome, error) {
	dir, err := h.directoryID(ev)
	if err != nil {
		return lifecycle.Outcome{}, err
	}
	out := lifecycle.Outcome{PhysicalResourceID: core.RegistrationPhysicalID(dir)}
	log = log.With(zap.String("directory_id", dir))

	transition(log, core.RegistrationUnregistered, core.RegistrationRegistering)
	if err := h.ws.RegisterDirectory(ctx, dir); err != nil {
		transition(log, core.RegistrationRegistering, core.RegistrationUnregistered)
		return out, err
	}
	if err := h.ws.SetAccessProperties(ctx, dir); err != nil {
		return out, err
	}
	transition(log, core.RegistrationRegistering, core.RegistrationRegistered)
	out.Data = map[string]string{"directory": dir}
	return out, nil
}

// Update accepts an unchanged directory and refuses to move the
// registration to another one.
func (h *Registration) Update(ctx context.Context, ev lifecycle.Event, log *zap.Logger) (lifecycle.Outcome, error) {
	dir, err := h.directoryID(ev)
	if err != nil {
		return lifecycle.Outcome{}, err
	}
	old := ev.OldResourceProperties[propDirectory]
	if old != "" && old != dir {
		return lifecycle.Outcome{PhysicalResourceID: core.RegistrationPhysicalID(old)},
			core.NewAppError(core.ErrUpdateUnsupported, "Update not supported: directory registration is immutable")
	}
	return lifecycle.Outcome{
		PhysicalResourceID: core.RegistrationPhysicalID(dir),
		Reason:             "Directory registration unchanged",
	}, nil
}

func (h *Registration) Delete(ctx context.Context, ev lifecycle.Event, log *zap.Logger) (lifecycle.Outcome, error) {
	dir, err := h.directoryID(ev)
	if err != nil {
		return lifecycle.Outcome{}, err
	}
	out := lifecycle.Outcome{PhysicalResourceID: core.RegistrationPhysicalID(dir)}
	log = log.With(zap.String("directory_id", dir))

	transition(log, core.RegistrationRegistered, core.RegistrationDeregistering)
	if err := h.ws.DeregisterDirectory(ctx, dir); err != nil {
		return out, fmt.Errorf("tear down directory %s: %w", dir, err)
	}
	transition(log, core.RegistrationDeregistering, core.RegistrationDeregistered)
	return out, nil
}

func transition(log *zap.Logger, from, to core.RegistrationState) {
	observability.RegistrationStateTransitions.WithLabelValues(string(from), string(to)).Inc()
	log.Info("registration state changed", zap.String("from", string(from)), zap.String("to", string(to)))
}
