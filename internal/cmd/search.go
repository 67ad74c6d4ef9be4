package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fracta-app/fracta/internal/index"
	"github.com/fracta-app/fracta/internal/vfs"
)

var searchLimit int

var searchCmd = &cobra.Command{
	Use:   "search <path> <query>",
	Short: "Run a full-text query against a Location's search cache",
	Args:  cobra.ExactArgs(2),
	RunE:  runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum number of hits to print")
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[1]
	return withLocationIndex(args[0], func(loc *vfs.Location, ix *index.Index) error {
		hits, err := ix.Search(query, searchLimit)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		if len(hits) == 0 {
			fmt.Println("no matches")
			return nil
		}
		for _, hit := range hits {
			title := hit.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%6.3f  %s  %s\n", hit.Score, hit.Path, title)
		}
		return nil
	})
}
