package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pagewise/internal/core/domain"
)

var (
	ingestTextFile string
	ingestTitle    string
	ingestJSON     bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [url]",
	Short: "Save a web page to the knowledge base",
	Long: `Fetches the page, extracts its readable text, splits it into chunks,
embeds them and stores the result.

Use --text-file to store text you already have instead of fetching the page.
The URL is then only used as the source reference.

After saving, the top matches for the page title are printed as a preview.

Examples:
  pagewise ingest https://go.dev/doc/effective_go
  pagewise ingest https://example.com/notes --title "Notes" --text-file notes.txt
  cat page.txt | pagewise ingest https://example.com/page --text-file -`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestTextFile, "text-file", "f", "", "read text from file instead of fetching (- for stdin)")
	ingestCmd.Flags().StringVarP(&ingestTitle, "title", "t", "", "title for --text-file content (default: the URL)")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output the stored item as JSON")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	url := args[0]
	var (
		item *domain.ContentItem
		err  error
	)
	if ingestTextFile != "" {
		text, readErr := readTextInput(cmd, ingestTextFile)
		if readErr != nil {
			return readErr
		}
		item, err = ingestService.IngestText(cmd.Context(), url, ingestTitle, text)
	} else {
		item, err = ingestService.Ingest(cmd.Context(), url)
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		return printJSON(cmd, toContentJSON(item))
	}

	cmd.Printf("Ingested %q\n", item.Title)
	cmd.Printf("  ID:     %s\n", item.ID)
	cmd.Printf("  URL:    %s\n", item.URL)
	cmd.Printf("  Chunks: %d\n", item.TotalChunks)
	printPreview(cmd, item)
	return nil
}

// printPreview shows what a search for the page title now returns.
func printPreview(cmd *cobra.Command, item *domain.ContentItem) {
	if searchService == nil {
		return
	}
	results := searchService.Search(cmd.Context(), item.Title, domain.SearchOptions{Limit: domain.DefaultPreviewLimit})
	if len(results) == 0 {
		return
	}

	cmd.Println()
	cmd.Printf("Preview for %q:\n", item.Title)
	for i := range results {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, results[i].Chunk.Title, results[i].Relevance)
		cmd.Printf("      %s\n", truncate(results[i].Chunk.Content, 100))
	}
}

func readTextInput(cmd *cobra.Command, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read text: %w", err)
	}
	return string(data), nil
}
