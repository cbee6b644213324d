package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"codenerd/internal/model"
	"codenerd/internal/relevance"
)

var (
	queryLanguage string
	queryTags     []string
)

var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "rank stored patterns against a text/tag/language query",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := relevance.Query{Text: args[0], Tags: queryTags, Language: model.Language(queryLanguage)}
		results, err := eng.Query(q, 0, 0)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("no matches")
			return nil
		}
		for _, r := range results {
			fmt.Printf("%.3f  %s  %s\n", r.Score, r.Pattern.ID, r.Pattern.Name)
		}
		return nil
	},
}

func init() {
	queryCmd.Flags().StringVar(&queryLanguage, "language", "", "restrict to one language")
	queryCmd.Flags().StringSliceVar(&queryTags, "tag", nil, "rank by tag overlap; only patterns carrying the first tag are considered")
}
