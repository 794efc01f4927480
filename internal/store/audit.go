package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/lifecycle"
)

const schema = `
CREATE SCHEMA IF NOT EXISTS provisioner;
CREATE TABLE IF NOT EXISTS provisioner.audit_events (
	event_id BIGSERIAL PRIMARY KEY,
	ts TIMESTAMPTZ NOT NULL DEFAULT now(),
	handler TEXT NOT NULL,
	request_type TEXT NOT NULL,
	request_id TEXT NOT NULL,
	stack_id TEXT NOT NULL DEFAULT '',
	logical_resource_id TEXT NOT NULL,
	physical_resource_id TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	reason TEXT NOT NULL DEFAULT '',
	error_code TEXT NOT NULL DEFAULT '',
	duration_ms BIGINT NOT NULL DEFAULT 0,
	data JSONB
);
CREATE INDEX IF NOT EXISTS audit_events_logical_idx ON provisioner.audit_events (logical_resource_id, event_id DESC);
`

const defaultListLimit = 50

// AuditStore records every lifecycle response. It implements
// lifecycle.Recorder.
type AuditStore struct {
	pool *pgxpool.Pool
}

func NewAuditStore(pool *pgxpool.Pool) *AuditStore {
	return &AuditStore{pool: pool}
}

// Migrate creates the audit schema when it does not exist yet.
func (s *AuditStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate audit schema: %w", err)
	}
	return nil
}

func (s *AuditStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *AuditStore) Record(ctx context.Context, rec lifecycle.Record) error {
	ev := core.AuditEvent{
		Handler:            rec.Handler,
		RequestType:        string(rec.Event.RequestType),
		RequestID:          rec.Response.RequestID,
		StackID:            rec.Response.StackID,
		LogicalResourceID:  rec.Response.LogicalResourceID,
		PhysicalResourceID: rec.Response.PhysicalResourceID,
		Status:             string(rec.Response.Status),
		Reason:             rec.Response.Reason,
		ErrorCode:          string(rec.ErrorCode),
		DurationMs:         rec.Duration.Milliseconds(),
	}
	if len(rec.Response.Data) > 0 {
		b, err := json.Marshal(rec.Response.Data)
		if err != nil {
			return fmt.Errorf("marshal response data: %w", err)
		}
		ev.Data = b
	}
	_, err := s.InsertAudit(ctx, ev)
	return err
}

func (s *AuditStore) InsertAudit(ctx context.Context, ev core.AuditEvent) (core.AuditEvent, error) {
	var data []byte
	if len(ev.Data) > 0 {
		data = ev.Data
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO provisioner.audit_events
			(handler, request_type, request_id, stack_id, logical_resource_id, physical_resource_id,
			 status, reason, error_code, duration_ms, data)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING event_id, ts`,
		ev.Handler, ev.RequestType, ev.RequestID, ev.StackID, ev.LogicalResourceID, ev.PhysicalResourceID,
		ev.Status, ev.Reason, ev.ErrorCode, ev.DurationMs, data,
	).Scan(&ev.EventID, &ev.Ts)
	if err != nil {
		return core.AuditEvent{}, fmt.Errorf("insert audit event: %w", err)
	}
	return ev, nil
}

type AuditFilter struct {
	Handler           string
	LogicalResourceID string
	Limit             int
}

// ListAudit returns the newest events first.
func (s *AuditStore) ListAudit(ctx context.Context, f AuditFilter) ([]core.AuditEvent, error) {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	rows, err := s.pool.Query(ctx, `
		SELECT event_id, ts, handler, request_type, request_id, stack_id, logical_resource_id,
		       physical_resource_id, status, reason, error_code, duration_ms, data
		FROM provisioner.audit_events
		WHERE ($1 = '' OR handler = $1) AND ($2 = '' OR logical_resource_id = $2)
		ORDER BY event_id DESC
		LIMIT $3`,
		f.Handler, f.LogicalResourceID, f.Limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	events, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (core.AuditEvent, error) {
		var ev core.AuditEvent
		var data []byte
		err := row.Scan(&ev.EventID, &ev.Ts, &ev.Handler, &ev.RequestType, &ev.RequestID, &ev.StackID,
			&ev.LogicalResourceID, &ev.PhysicalResourceID, &ev.Status, &ev.Reason, &ev.ErrorCode,
			&ev.DurationMs, &data)
		if len(data) > 0 {
			ev.Data = data
		}
		return ev, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan audit events: %w", err)
	}
	return events, nil
}
