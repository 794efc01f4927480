package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/gateway"
	"github.com/lzjever/training-workspaces/internal/lifecycle"
)

var (
	eventFile  string
	logicalID  string
	physicalID string
	propFlags  []string
)

var invokeCmd = &cobra.Command{
	Use:   "invoke <handler> [Create|Update|Delete]",
	Short: "Send one lifecycle event to a handler",
	Long: `Send one lifecycle event to a handler and print the response.

The event is read from --event-file, or built from the request type and --prop key=value pairs.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, err := buildEvent(args)
		if err != nil {
			return err
		}
		b, err := newBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer b.close()

		resp, err := b.invoker.Invoke(cmd.Context(), args[0], ev)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		printResult(resp)
		if !resp.Succeeded() {
			return fmt.Errorf("%s", resp.Reason)
		}
		return nil
	},
}

func buildEvent(args []string) (lifecycle.Event, error) {
	var ev lifecycle.Event
	if eventFile != "" {
		b, err := os.ReadFile(eventFile)
		if err != nil {
			return ev, err
		}
		if err := json.Unmarshal(b, &ev); err != nil {
			return ev, fmt.Errorf("parse %s: %w", eventFile, err)
		}
	}
	if len(args) > 1 {
		ev.RequestType = lifecycle.RequestType(args[1])
	}
	if ev.RequestType == "" {
		return ev, fmt.Errorf("request type required")
	}
	if logicalID != "" {
		ev.LogicalResourceID = logicalID
	}
	if ev.LogicalResourceID == "" {
		ev.LogicalResourceID = args[0]
	}
	if physicalID != "" {
		ev.PhysicalResourceID = physicalID
	}
	if ev.RequestID == "" {
		ev.RequestID = core.NewRequestID()
	}
	if ev.StackID == "" {
		ev.StackID = core.CLIStackID("invoke")
	}
	if ev.ResourceProperties == nil {
		ev.ResourceProperties = lifecycle.Properties{}
	}
	for _, kv := range propFlags {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return ev, fmt.Errorf("invalid --prop %q, want key=value", kv)
		}
		ev.ResourceProperties[k] = v
	}
	return ev, nil
}

var handlersCmd = &cobra.Command{
	Use:   "handlers",
	Short: "List the handlers a gateway serves",
	RunE: func(cmd *cobra.Command, args []string) error {
		if gatewayURL == "" {
			return fmt.Errorf("--gateway-url required")
		}
		names, err := gateway.NewClient(gatewayURL).Handlers(cmd.Context())
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

func init() {
	invokeCmd.Flags().StringVarP(&eventFile, "event-file", "f", "", "JSON lifecycle event")
	invokeCmd.Flags().StringVar(&logicalID, "logical-id", "", "LogicalResourceId")
	invokeCmd.Flags().StringVar(&physicalID, "physical-id", "", "PhysicalResourceId")
	invokeCmd.Flags().StringArrayVarP(&propFlags, "prop", "p", nil, "resource property key=value (repeatable)")

	rootCmd.AddCommand(invokeCmd, handlersCmd)
}
