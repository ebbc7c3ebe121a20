package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// statusPayload mirrors the daemon's simulation status shape.
type statusPayload struct {
	State          string `json:"state"`
	SimulationTime string `json:"simulation_time"`
	Tick           uint64 `json:"tick"`
	SpeedMs        int    `json:"speed_ms"`
	PendingOrders  int    `json:"pending_orders"`
}

// NewHealthCommand creates the health command
func NewHealthCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check daemon health status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel := clientContext()
			defer cancel()

			if err := client.Get(ctx, "/health", nil); err != nil {
				return fmt.Errorf("health check failed: %w", err)
			}
			fmt.Println("✓ Daemon is healthy")
			return nil
		},
	}
}

// NewStatusCommand creates the status command
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the simulation loop state",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel := clientContext()
			defer cancel()

			var status statusPayload
			if err := client.Get(ctx, "/simulation/status", &status); err != nil {
				return err
			}

			fmt.Printf("State:           %s\n", status.State)
			fmt.Printf("Simulation time: %s\n", status.SimulationTime)
			fmt.Printf("Tick:            %d\n", status.Tick)
			fmt.Printf("Speed:           %d ms/tick\n", status.SpeedMs)
			fmt.Printf("Pending orders:  %d\n", status.PendingOrders)
			return nil
		},
	}
}

// NewPauseCommand creates the pause command
func NewPauseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pause",
		Short: "Pause the simulation loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel := clientContext()
			defer cancel()

			if err := client.Post(ctx, "/simulation/pause", nil, nil); err != nil {
				return err
			}
			fmt.Println("✓ Simulation paused")
			return nil
		},
	}
}

// NewResumeCommand creates the resume command
func NewResumeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "resume",
		Short: "Resume a paused simulation loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel := clientContext()
			defer cancel()

			if err := client.Post(ctx, "/simulation/start", nil, nil); err != nil {
				return err
			}
			fmt.Println("✓ Simulation running")
			return nil
		},
	}
}

// NewSpeedCommand creates the speed command
func NewSpeedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "speed [milliseconds]",
		Short: "Show or set the wall-clock pause between ticks",
		Long: `Without an argument, shows the current tick pacing.
With an argument, sets the pause between ticks in milliseconds (50-10000).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel := clientContext()
			defer cancel()

			if len(args) == 0 {
				var payload struct {
					Speed int `json:"speed"`
				}
				if err := client.Get(ctx, "/simulation/speed", &payload); err != nil {
					return err
				}
				fmt.Printf("Speed: %d ms/tick\n", payload.Speed)
				return nil
			}

			ms, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("speed must be an integer number of milliseconds: %q", args[0])
			}
			body := map[string]int{"speed": ms}
			if err := client.Post(ctx, "/simulation/speed", body, nil); err != nil {
				return err
			}
			fmt.Printf("✓ Speed set to %d ms/tick\n", ms)
			return nil
		},
	}
}
