package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// orderPayload mirrors the daemon's order view shape.
type orderPayload struct {
	ID          string  `json:"id"`
	ClientID    string  `json:"client_id"`
	X           int     `json:"x"`
	Y           int     `json:"y"`
	RequestedM3 float64 `json:"requested_m3"`
	RemainingM3 float64 `json:"remaining_m3"`
	DueTime     string  `json:"due_time"`
	Overdue     bool    `json:"overdue"`
}

// NewOrdersCommand creates the orders command group
func NewOrdersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "List pending orders or register a new one",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel := clientContext()
			defer cancel()

			var orders []orderPayload
			if err := client.Get(ctx, "/orders", &orders); err != nil {
				return err
			}
			if len(orders) == 0 {
				fmt.Println("No pending orders")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCLIENT\tPOS\tREMAINING (m3)\tDUE\tOVERDUE")
			for _, o := range orders {
				overdue := ""
				if o.Overdue {
					overdue = "yes"
				}
				fmt.Fprintf(w, "%s\t%s\t(%d,%d)\t%.1f/%.1f\t%s\t%s\n",
					o.ID, o.ClientID, o.X, o.Y, o.RemainingM3, o.RequestedM3, o.DueTime, overdue)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(newOrdersCreateCommand())
	return cmd
}

func newOrdersCreateCommand() *cobra.Command {
	var (
		clientID string
		x, y     int
		amount   float64
		due      float64
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new delivery order",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, ctx, cancel := clientContext()
			defer cancel()

			body := map[string]interface{}{
				"clientId": clientID,
				"x":        x,
				"y":        y,
				"amountM3": amount,
				"dueHours": due,
			}
			var result struct {
				OrderID string `json:"order_id"`
				DueTime string `json:"due_time"`
			}
			if err := client.Post(ctx, "/orders", body, &result); err != nil {
				return err
			}

			fmt.Printf("✓ Order registered: %s\n", result.OrderID)
			fmt.Printf("  Due: %s\n", result.DueTime)
			return nil
		},
	}

	cmd.Flags().StringVar(&clientID, "client", "", "Client ID (required)")
	cmd.Flags().IntVar(&x, "x", 0, "Delivery X coordinate")
	cmd.Flags().IntVar(&y, "y", 0, "Delivery Y coordinate")
	cmd.Flags().Float64Var(&amount, "amount", 0, "Requested GLP volume in m3")
	cmd.Flags().Float64Var(&due, "due", 4, "Hours until the order is due")
	_ = cmd.MarkFlagRequired("client")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}
