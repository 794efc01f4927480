package lifecycle

import (
	"context"

	"go.uber.org/zap"
)

// Outcome is what a handler reports back. PhysicalResourceID is honored
// on failure too, so later events can still be correlated.
type Outcome struct {
	PhysicalResourceID string
	Reason             string
	Data               map[string]string
}

// Handler reacts to one lifecycle event for one logical resource.
type Handler interface {
	Create(ctx context.Context, ev Event, log *zap.Logger) (Outcome, error)
	Update(ctx context.Context, ev Event, log *zap.Logger) (Outcome, error)
	Delete(ctx context.Context, ev Event, log *zap.Logger) (Outcome, error)
}
