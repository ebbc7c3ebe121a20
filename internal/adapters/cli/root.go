package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	daemonAddr string
	verbose    bool
)

// NewRootCommand creates the root command for the CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "glpctl",
		Short: "GLP Fleet CLI - Control the fleet simulation daemon",
		Long: `glpctl controls a running GLP fleet simulation daemon over HTTP.

Examples:
  glpctl status
  glpctl pause
  glpctl resume
  glpctl speed 250
  glpctl vehicles
  glpctl orders create --client CL-77 --x 40 --y 21 --amount 12.5 --due 6
  glpctl breakdown --vehicle TD03 --hours 3 --reason "flat tire"
  glpctl repair --vehicle TD03`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&daemonAddr, "addr", getDefaultAddr(),
		"Daemon HTTP address")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output")

	rootCmd.AddCommand(NewHealthCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewPauseCommand())
	rootCmd.AddCommand(NewResumeCommand())
	rootCmd.AddCommand(NewSpeedCommand())
	rootCmd.AddCommand(NewVehiclesCommand())
	rootCmd.AddCommand(NewOrdersCommand())
	rootCmd.AddCommand(NewBreakdownCommand())
	rootCmd.AddCommand(NewRepairCommand())

	return rootCmd
}

// getDefaultAddr returns the default daemon address
func getDefaultAddr() string {
	if addr := os.Getenv("GLP_ADDR"); addr != "" {
		return addr
	}
	return "http://localhost:8080"
}

// clientContext builds a client and a bounded request context.
func clientContext() (*Client, context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	return NewClient(daemonAddr), ctx, cancel
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
