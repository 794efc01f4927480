package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/fleet"
	"github.com/lzjever/training-workspaces/internal/lifecycle"
)

func printResult(v interface{}) {
	if output == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		enc.Encode(v)
		return
	}
	printTable(v)
}

func printTable(v interface{}) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	switch data := v.(type) {
	case []core.WorkspaceInstance:
		if len(data) == 0 {
			fmt.Println("No workspaces found.")
			return
		}
		fmt.Fprintln(w, "WORKSPACE ID\tUSER\tSTATE\tRUNNING MODE\tBUNDLE")
		for _, ws := range data {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", ws.WorkspaceID, ws.Username, ws.State, ws.RunningMode, ws.BundleID)
		}
	case []core.AuditEvent:
		if len(data) == 0 {
			fmt.Println("No audit events found.")
			return
		}
		fmt.Fprintln(w, "ID\tTIME\tHANDLER\tTYPE\tLOGICAL ID\tPHYSICAL ID\tSTATUS\tREASON")
		for _, e := range data {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n", e.EventID, e.Ts.Format("2006-01-02 15:04:05"),
				e.Handler, e.RequestType, e.LogicalResourceID, e.PhysicalResourceID, e.Status, truncate(e.Reason, 50))
		}
	case fleet.Report:
		fmt.Fprintf(w, "Directory:\t%s\n", data.DirectoryID)
		fmt.Fprintf(w, "Registration:\t%s\t%s\n", data.Registration.Status, data.Registration.Reason)
		if len(data.Items) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, "USER\tWORKSPACE ID\tSTATUS\tREASON")
			for _, it := range data.Items {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", it.Username, it.WorkspaceID, it.Status, truncate(it.Reason, 60))
			}
		}
	case lifecycle.Response:
		fmt.Fprintf(w, "Status:\t%s\n", data.Status)
		fmt.Fprintf(w, "Physical ID:\t%s\n", data.PhysicalResourceID)
		fmt.Fprintf(w, "Logical ID:\t%s\n", data.LogicalResourceID)
		fmt.Fprintf(w, "Request ID:\t%s\n", data.RequestID)
		if data.Reason != "" {
			fmt.Fprintf(w, "Reason:\t%s\n", data.Reason)
		}
		for k, val := range data.Data {
			fmt.Fprintf(w, "Data.%s:\t%s\n", k, val)
		}
	default:
		json.NewEncoder(os.Stdout).Encode(v)
	}
	w.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
