package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"codenerd/internal/dedup"
	"codenerd/internal/harvest"
	"codenerd/internal/model"
)

var submitName string

var submitCmd = &cobra.Command{
	Use:   "submit <file>",
	Short: "submit one source file as a candidate through the covenant check and scorer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		lang := harvest.LanguageForExt(args[0])
		name := submitName
		if name == "" {
			name = args[0]
		}
		code := string(raw)

		candidate := model.Candidate{
			Pattern: model.Pattern{
				ID:          fmt.Sprintf("submit-%s", name),
				Name:        name,
				Code:        code,
				Language:    lang,
				Fingerprint: dedup.Fingerprint(code, lang),
			},
			GenerationMethod: model.MethodVariant,
		}
		out, err := eng.Pipeline.Submit(cmd.Context(), candidate)
		if err != nil {
			return err
		}
		fmt.Printf("%s  state=%s  composite=%.2f\n", out.ID, out.State, out.Coherency.Composite)
		return nil
	},
}

func init() {
	submitCmd.Flags().StringVar(&submitName, "name", "", "candidate name (default: file path)")
}
