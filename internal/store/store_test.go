package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/lifecycle"
)

func TestAuditStoreIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("provisioner"),
		postgres.WithUsername("provisioner"),
		postgres.WithPassword("provisioner_pass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start container: %s", err)
	}
	defer pgContainer.Terminate(ctx)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %s", err)
	}

	pool, err := NewPool(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to connect: %s", err)
	}
	defer pool.Close()

	audit := NewAuditStore(pool)
	if err := audit.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate: %s", err)
	}
	// Migrate is repeatable.
	if err := audit.Migrate(ctx); err != nil {
		t.Fatalf("second migrate failed: %s", err)
	}

	t.Run("RecordResponse", func(t *testing.T) {
		rec := lifecycle.Record{
			Handler: "workspace",
			Event:   lifecycle.Event{RequestType: lifecycle.RequestCreate},
			Response: lifecycle.Response{
				Status:             lifecycle.StatusSuccess,
				RequestID:          "req-1",
				StackID:            "stack-1",
				LogicalResourceID:  "Workspace_training01",
				PhysicalResourceID: "ws-abc123",
				Data:               map[string]string{"workspaceId": "ws-abc123"},
			},
			Duration: 1500 * time.Millisecond,
		}
		if err := audit.Record(ctx, rec); err != nil {
			t.Fatalf("failed to record: %s", err)
		}
	})

	t.Run("InsertAudit", func(t *testing.T) {
		ev, err := audit.InsertAudit(ctx, core.AuditEvent{
			Handler:           "user",
			RequestType:       "Create",
			RequestID:         "req-2",
			LogicalResourceID: "User_training01",
			Status:            "FAILED",
			Reason:            core.ReasonEndpointNotFound,
			ErrorCode:         string(core.ErrDependencyNotReady),
		})
		if err != nil {
			t.Fatalf("failed to insert: %s", err)
		}
		if ev.EventID == 0 {
			t.Errorf("expected event id to be assigned")
		}
		if ev.Ts.IsZero() {
			t.Errorf("expected timestamp to be assigned")
		}
	})

	t.Run("ListAudit", func(t *testing.T) {
		all, err := audit.ListAudit(ctx, AuditFilter{})
		if err != nil {
			t.Fatalf("failed to list: %s", err)
		}
		if len(all) != 2 {
			t.Fatalf("expected 2 events, got %d", len(all))
		}
		if all[0].Handler != "user" {
			t.Errorf("expected newest first, got %s", all[0].Handler)
		}

		ws, err := audit.ListAudit(ctx, AuditFilter{Handler: "workspace"})
		if err != nil {
			t.Fatalf("failed to list by handler: %s", err)
		}
		if len(ws) != 1 {
			t.Fatalf("expected 1 workspace event, got %d", len(ws))
		}
		if ws[0].DurationMs != 1500 {
			t.Errorf("expected duration 1500ms, got %d", ws[0].DurationMs)
		}
		var data map[string]string
		if err := json.Unmarshal(ws[0].Data, &data); err != nil {
			t.Fatalf("failed to parse data: %s", err)
		}
		if data["workspaceId"] != "ws-abc123" {
			t.Errorf("expected workspaceId ws-abc123, got %v", data)
		}
	})
}
