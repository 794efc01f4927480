package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"go.uber.org/zap"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/observability"
)

// Recorder persists a produced response, e.g. to the audit trail.
type Recorder interface {
	Record(ctx context.Context, rec Record) error
}

type Record struct {
	Handler   string
	Event     Event
	Response  Response
	ErrorCode core.ErrorCode
	Duration  time.Duration
}

// Dispatcher turns one event into exactly one response, whatever the
// handler does: unknown request types and panics become FAILED responses.
type Dispatcher struct {
	name      string
	handler   Handler
	log       *zap.Logger
	recorder  Recorder
	responder *Responder
}

type Option func(*Dispatcher)

func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) { d.recorder = r }
}

// WithResponder makes the dispatcher also deliver every response to the
// event's ResponseURL when one is present.
func WithResponder(r *Responder) Option {
	return func(d *Dispatcher) { d.responder = r }
}

func NewDispatcher(name string, h Handler, log *zap.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{name: name, handler: h, log: log}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Dispatcher) Name() string { return d.name }

// Handle is the Lambda entrypoint signature; the error is always nil so the
// runtime never turns a FAILED response into an invocation error.
func (d *Dispatcher) Handle(ctx context.Context, ev Event) (Response, error) {
	return d.Dispatch(ctx, ev), nil
}

func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) Response {
	start := time.Now()
	log := observability.EventLogger(d.log, d.name, string(ev.RequestType), ev.RequestID, ev.LogicalResourceID)
	if lc, ok := lambdacontext.FromContext(ctx); ok {
		log = log.With(zap.String("aws_request_id", lc.AwsRequestID))
	}
	log.Info("lifecycle event received",
		zap.String("physical_resource_id", ev.PhysicalResourceID),
		zap.Strings("properties", ev.ResourceProperties.Keys()),
		zap.Bool("synthesized", core.Synthesized(ev.StackID)),
	)

	outcome, err := d.invoke(ctx, ev, log)
	resp := d.buildResponse(ev, outcome, err)

	elapsed := time.Since(start)
	observability.HandlerInvocationsTotal.WithLabelValues(d.name, string(ev.RequestType), string(resp.Status)).Inc()
	observability.HandlerDuration.WithLabelValues(d.name, string(ev.RequestType)).Observe(elapsed.Seconds())

	var code core.ErrorCode
	if err != nil {
		code = core.CodeOf(err)
		fields := []zap.Field{zap.Error(err), zap.String("code", string(code)), zap.String("physical_resource_id", resp.PhysicalResourceID)}
		var appErr *core.AppError
		if errors.As(err, &appErr) && appErr.Retryable() {
			fields = append(fields, zap.Bool("retryable", true))
		}
		log.Error("lifecycle event failed", fields...)
	} else {
		log.Info("lifecycle event succeeded",
			zap.String("physical_resource_id", resp.PhysicalResourceID),
			zap.String("reason", resp.Reason),
			zap.Duration("duration", elapsed),
		)
	}

	if d.recorder != nil {
		rec := Record{Handler: d.name, Event: ev, Response: resp, ErrorCode: code, Duration: elapsed}
		if rerr := d.recorder.Record(ctx, rec); rerr != nil {
			log.Warn("audit record failed", zap.Error(rerr))
		}
	}
	if d.responder != nil && ev.ResponseURL != "" {
		if serr := d.responder.Send(ctx, ev.ResponseURL, resp); serr != nil {
			log.Error("response delivery failed", zap.Error(serr))
		}
	}
	return resp
}

func (d *Dispatcher) invoke(ctx context.Context, ev Event, log *zap.Logger) (outcome Outcome, err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			log.Error("panic recovered",
				zap.Any("panic", rvr),
				zap.String("stack", string(debug.Stack())),
			)
			err = core.NewAppError(core.ErrInternal, fmt.Sprintf("handler panic: %v", rvr))
		}
	}()

	switch ev.RequestType {
	case RequestCreate:
		return d.handler.Create(ctx, ev, log)
	case RequestUpdate:
		return d.handler.Update(ctx, ev, log)
	case RequestDelete:
		return d.handler.Delete(ctx, ev, log)
	}
	return Outcome{}, core.NewAppError(core.ErrValidation, fmt.Sprintf("unsupported request type %q", ev.RequestType))
}

func (d *Dispatcher) buildResponse(ev Event, outcome Outcome, err error) Response {
	resp := NewResponse(ev)
	if outcome.PhysicalResourceID != "" {
		resp.PhysicalResourceID = outcome.PhysicalResourceID
	}
	if resp.PhysicalResourceID == "" {
		resp.PhysicalResourceID = ev.LogicalResourceID
	}

	if err == nil {
		resp.Status = StatusSuccess
		resp.Reason = truncateReason(outcome.Reason)
		resp.Data = outcome.Data
		return resp
	}

	resp.Status = StatusFailed
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		resp.Reason = vErr.Reason
		resp.Data = map[string]string{}
		if len(vErr.Missing) > 0 {
			resp.Data["missingFields"] = strings.Join(vErr.Missing, ",")
		}
		if len(vErr.Invalid) > 0 {
			resp.Data["invalidFields"] = strings.Join(vErr.Invalid, ",")
		}
		return resp
	}
	// Fixed reasons stay exact; the cause is in the log.
	var appErr *core.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		switch appErr.Code {
		case core.ErrDependencyNotReady, core.ErrValidation, core.ErrUpdateUnsupported:
			resp.Reason = appErr.Message
			return resp
		}
	}
	resp.Reason = truncateReason(err.Error())
	return resp
}
