package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lzjever/training-workspaces/internal/core"
	"github.com/lzjever/training-workspaces/internal/fleet"
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Provision or tear down a whole training fleet",
}

var plan fleet.Plan
var runningMode string

var fleetUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Register the directory and create every trainee user and workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		if runningMode != "" {
			mode, err := core.ParseRunningMode(runningMode)
			if err != nil {
				return err
			}
			plan.RunningMode = mode
		}
		b, err := newBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer b.close()

		report, err := fleet.NewRunner(b.invoker, b.log).Up(cmd.Context(), plan)
		if report.DirectoryID != "" {
			printResult(report)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		return nil
	},
}

var fleetDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Terminate every trainee workspace and deregister the directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := newBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer b.close()

		report, err := fleet.NewRunner(b.invoker, b.log).Down(cmd.Context(), plan, b.lister)
		if report.DirectoryID != "" {
			printResult(report)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return err
		}
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{fleetUpCmd, fleetDownCmd} {
		c.Flags().StringVar(&plan.DirectoryID, "directory-id", "", "Simple AD directory id")
		c.Flags().IntVarP(&plan.Trainees, "trainees", "n", 0, "number of trainees (training01..NN)")
		c.Flags().StringSliceVar(&plan.Usernames, "users", nil, "explicit usernames instead of generated names")
		c.Flags().IntVar(&plan.Concurrency, "concurrency", fleet.DefaultConcurrency, "trainees processed in parallel")
		c.MarkFlagRequired("directory-id")
	}
	fleetUpCmd.Flags().StringVar(&plan.Domain, "domain", "", "directory domain name")
	fleetUpCmd.Flags().StringVar(&plan.BaseDN, "base-dn", "", "users container (default CN=Users under the domain)")
	fleetUpCmd.Flags().StringVar(&plan.AdminUser, "admin-user", core.DefaultAdminUser, "directory administrator")
	fleetUpCmd.Flags().StringVar(&plan.AdminPasswordParameter, "admin-password-parameter", "", "SSM parameter holding the administrator password")
	fleetUpCmd.Flags().StringVar(&plan.BundleID, "bundle-id", "", "workspace bundle id")
	fleetUpCmd.Flags().StringVar(&plan.Email, "email", core.DefaultTraineeEmail, "mail attribute for every trainee")
	fleetUpCmd.Flags().StringVar(&runningMode, "running-mode", string(core.RunningModeAutoStop), "AUTO_STOP or ALWAYS_ON")

	fleetCmd.AddCommand(fleetUpCmd, fleetDownCmd)
	rootCmd.AddCommand(fleetCmd)
}
