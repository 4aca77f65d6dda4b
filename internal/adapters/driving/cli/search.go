package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagewise/internal/core/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search saved pages",
	Long: `Finds the chunks that best match the query.

Keyword matches rank first. When no chunk contains the query terms,
results come from vector similarity instead. Set retrieval.fusion to
"weighted" to always blend both signals.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", domain.DefaultSearchLimit, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchService == nil {
		return errors.New("search service not configured")
	}

	query := strings.Join(args, " ")
	results := searchService.Search(cmd.Context(), query, domain.SearchOptions{Limit: searchLimit})

	if searchJSON {
		return printJSON(cmd, toSearchResultsJSON(results))
	}

	outputSearchTable(cmd, results)
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		// Format: [N] Title (relevance, kind)
		cmd.Printf("  [%d] %s (%.2f, %s)\n", i+1, r.Chunk.Title, r.Relevance, r.Kind)
		cmd.Printf("      %s\n", r.Chunk.URL)

		snippet := truncate(r.Chunk.Content, 160)
		if len(r.Highlights) > 0 {
			snippet = r.Highlights[0]
		}
		if snippet != "" {
			cmd.Printf("      %s\n", snippet)
		}
		cmd.Println()
	}
}
