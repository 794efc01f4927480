package core

import (
	"encoding/json"
	"time"
)

// AuditEvent is one lifecycle response as recorded in the audit trail.
type AuditEvent struct {
	EventID            int64           `json:"event_id"`
	Ts                 time.Time       `json:"ts"`
	Handler            string          `json:"handler"`
	RequestType        string          `json:"request_type"`
	RequestID          string          `json:"request_id"`
	StackID            string          `json:"stack_id"`
	LogicalResourceID  string          `json:"logical_resource_id"`
	PhysicalResourceID string          `json:"physical_resource_id"`
	Status             string          `json:"status"`
	Reason             string          `json:"reason,omitempty"`
	ErrorCode          string          `json:"error_code,omitempty"`
	DurationMs         int64           `json:"duration_ms"`
	Data               json.RawMessage `json:"data,omitempty"`
}
