package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cinderlabs/cinder-client/internal/constants"
	"github.com/cinderlabs/cinder-client/internal/costs"
	"github.com/cinderlabs/cinder-client/internal/voting"
)

func costsCommand() *cobra.Command {
	var fuel, repair string
	cmd := &cobra.Command{
		Use:   "costs",
		Short: "Print the token cost of fuel, energy and repair",
		RunE: func(cmd *cobra.Command, args []string) error {
			units, err := costs.ParseQuantity(fuel)
			if err != nil {
				return err
			}
			points, err := costs.ParseQuantity(repair)
			if err != nil {
				return err
			}
			fuelCost, err := costs.FuelCost(units)
			if err != nil {
				return err
			}
			repairCost, err := costs.RepairCost(points)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "fuel   %s\n", costs.Quantity(fuelCost, constants.TrashPrecision, constants.SymbolTrash))
			_, _ = fmt.Fprintf(out, "energy %s\n", costs.Quantity(costs.EnergyCost(), constants.CinderPrecision, constants.SymbolCinder))
			_, _ = fmt.Fprintf(out, "repair %s\n", costs.Quantity(repairCost, constants.CinderPrecision, constants.SymbolCinder))
			return nil
		},
	}
	cmd.Flags().StringVar(&fuel, "fuel", "0", "fuel units")
	cmd.Flags().StringVar(&repair, "repair", "0", "durability points to repair")
	return cmd
}

func remainingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remaining <created_at>",
		Short: "Print the voting time left for a proposal created at an RFC 3339 time",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			createdAt, err := time.Parse(time.RFC3339, args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), voting.RemainingVotingTime(createdAt, time.Now()).String())
			return nil
		},
	}
}
