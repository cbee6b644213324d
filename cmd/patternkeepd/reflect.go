package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reflectCmd = &cobra.Command{
	Use:   "reflect <pattern-id>",
	Short: "run the bounded reflection loop over one stored pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		refined, record, err := eng.Reflect(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s  %.3f -> %.3f  (%s)\n", refined.ID, record.PreComposite, record.PostComposite, record.Outcome)
		return nil
	},
}
