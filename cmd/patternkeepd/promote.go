package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var promoteCmd = &cobra.Command{
	Use:   "promote <candidate-id>",
	Short: "promote a proven candidate to a durable pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := eng.Pipeline.Promote(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("promoted %s to version %d\n", p.ID, p.Version)
		return nil
	},
}

var autoPromoteCmd = &cobra.Command{
	Use:   "auto-promote",
	Short: "promote every proven candidate up to the per-run cap",
	RunE: func(cmd *cobra.Command, args []string) error {
		promoted, err := eng.Pipeline.AutoPromote(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("promoted %d pattern(s)\n", len(promoted))
		for _, p := range promoted {
			fmt.Printf("  %s  %s\n", p.ID, p.Name)
		}
		return nil
	},
}
