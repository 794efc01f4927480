package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lzjever/training-workspaces/internal/store"
)

var workspacesCmd = &cobra.Command{
	Use:     "workspaces",
	Aliases: []string{"ws"},
	Short:   "Workspace inventory commands",
}

var workspacesListCmd = &cobra.Command{
	Use:   "list <directory-id>",
	Short: "List the workspaces of a directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer b.close()

		list, err := b.lister.ListWorkspaces(cmd.Context(), args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		printResult(list)
		return nil
	},
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit trail commands",
}

var auditFilter store.AuditFilter

var auditListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded lifecycle responses, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer b.close()
		if b.audit == nil {
			return fmt.Errorf("audit trail not configured: set PROVISIONER_DB_DSN or --gateway-url")
		}

		events, err := b.audit.ListAudit(cmd.Context(), auditFilter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		printResult(events)
		return nil
	},
}

func init() {
	workspacesCmd.AddCommand(workspacesListCmd)

	auditListCmd.Flags().StringVar(&auditFilter.Handler, "handler", "", "only events of this handler")
	auditListCmd.Flags().StringVar(&auditFilter.LogicalResourceID, "logical-id", "", "only events of this logical resource")
	auditListCmd.Flags().IntVarP(&auditFilter.Limit, "limit", "l", 50, "maximum events")
	auditCmd.AddCommand(auditListCmd)

	rootCmd.AddCommand(workspacesCmd, auditCmd)
}
