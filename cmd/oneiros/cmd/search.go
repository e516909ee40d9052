package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	searchAgent string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <brain-name> <query>",
	Short: "Run a full-text search against a brain's expression index",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		brainName, query := args[0], args[1]

		mgr, err := openManager()
		if err != nil {
			return err
		}
		defer mgr.Close()

		ctx, err := mgr.Brain(brainName)
		if err != nil {
			return err
		}

		results, err := ctx.Search(query, searchAgent, searchLimit)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("no matches")
			return nil
		}
		for _, r := range results {
			fmt.Printf("%.3f  %-12s %s\n    %s\n", r.Rank, r.Kind, r.Ref, r.Snippet)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchAgent, "agent", "", "scope results to one agent")
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum results to return")
}
