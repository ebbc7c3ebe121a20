package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// vehiclePayload mirrors the daemon's vehicle view shape.
type vehiclePayload struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	GLPM3      float64 `json:"glp_m3"`
	CapacityM3 float64 `json:"capacity_m3"`
	FuelGal    float64 `json:"fuel_gal"`
	Status     string  `json:"status"`
}

// NewVehiclesCommand creates the vehicles command
func NewVehiclesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vehicles [id]",
		Short: "List the fleet, or show one vehicle",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel := clientContext()
			defer cancel()

			if len(args) == 1 {
				var v vehiclePayload
				if err := client.Get(ctx, "/vehicles/"+args[0], &v); err != nil {
					return err
				}
				fmt.Printf("Vehicle %s (%s)\n", v.ID, v.Type)
				fmt.Printf("  Position: (%d,%d)\n", v.X, v.Y)
				fmt.Printf("  GLP:      %.1f / %.1f m3\n", v.GLPM3, v.CapacityM3)
				fmt.Printf("  Fuel:     %.1f gal\n", v.FuelGal)
				fmt.Printf("  Status:   %s\n", v.Status)
				return nil
			}

			var vehicles []vehiclePayload
			if err := client.Get(ctx, "/vehicles", &vehicles); err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tPOS\tGLP (m3)\tFUEL (gal)\tSTATUS")
			for _, v := range vehicles {
				fmt.Fprintf(w, "%s\t%s\t(%d,%d)\t%.1f/%.1f\t%.1f\t%s\n",
					v.ID, v.Type, v.X, v.Y, v.GLPM3, v.CapacityM3, v.FuelGal, v.Status)
			}
			return w.Flush()
		},
	}

	return cmd
}

// NewBreakdownCommand creates the breakdown command
func NewBreakdownCommand() *cobra.Command {
	var (
		vehicleID string
		reason    string
		hours     float64
	)

	cmd := &cobra.Command{
		Use:   "breakdown",
		Short: "Report a vehicle breakdown",
		Long: `Report a breakdown for a vehicle. The estimated repair time
classifies the incident: up to 2 hours is a roadside stop, up to 24
hours takes the vehicle out for the rest of the shift cycle, anything
longer parks it for days.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel := clientContext()
			defer cancel()

			body := map[string]interface{}{
				"vehicleId":            vehicleID,
				"reason":               reason,
				"estimatedRepairHours": hours,
			}
			var result struct {
				IncidentID  string `json:"incident_id"`
				Type        string `json:"type"`
				AvailableAt string `json:"available_at"`
			}
			if err := client.Post(ctx, "/vehicle/breakdown", body, &result); err != nil {
				return err
			}

			fmt.Printf("✓ Breakdown registered: %s\n", result.IncidentID)
			fmt.Printf("  Severity:     %s\n", result.Type)
			fmt.Printf("  Available at: %s\n", result.AvailableAt)
			return nil
		},
	}

	cmd.Flags().StringVar(&vehicleID, "vehicle", "", "Vehicle ID (required)")
	cmd.Flags().StringVar(&reason, "reason", "", "Free-form breakdown description")
	cmd.Flags().Float64Var(&hours, "hours", 2, "Estimated repair time in hours")
	_ = cmd.MarkFlagRequired("vehicle")

	return cmd
}

// NewRepairCommand creates the repair command
func NewRepairCommand() *cobra.Command {
	var vehicleID string

	cmd := &cobra.Command{
		Use:   "repair",
		Short: "Force-resolve a vehicle's incidents",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel := clientContext()
			defer cancel()

			body := map[string]string{"vehicleId": vehicleID}
			if err := client.Post(ctx, "/vehicle/repair", body, nil); err != nil {
				return err
			}
			fmt.Printf("✓ Vehicle %s repaired\n", vehicleID)
			return nil
		},
	}

	cmd.Flags().StringVar(&vehicleID, "vehicle", "", "Vehicle ID (required)")
	_ = cmd.MarkFlagRequired("vehicle")

	return cmd
}
