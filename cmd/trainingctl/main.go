package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	gatewayURL string
	output     string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "trainingctl",
	Short: "trainingctl - training workspace fleet command line tool",
	Long: `trainingctl provisions and tears down trainee directories users and workspaces.

Without --gateway-url the handlers run in-process with the local AWS credentials.`,
	SilenceUsage: true,
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&gatewayURL, "gateway-url", "g", os.Getenv("PROVISIONER_GATEWAY_URL"), "provisioner gateway URL (empty runs handlers in-process)")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level for in-process handlers")
}
