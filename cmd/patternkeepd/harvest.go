package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var harvestCmd = &cobra.Command{
	Use:   "harvest <root>",
	Short: "scan a directory tree and submit unique functions as candidates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		submitted, err := eng.Harvest(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("submitted %d candidate(s)\n", len(submitted))
		for _, c := range submitted {
			fmt.Printf("  %s  %s  composite=%.2f\n", c.ID, c.Name, c.Coherency.Composite)
		}
		return nil
	},
}
