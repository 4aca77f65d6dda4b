package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var contentCmd = &cobra.Command{
	Use:   "content",
	Short: "Manage saved pages",
	Long:  `List, view, or delete saved pages and their chunks.`,
}

var contentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved pages",
	Args:  cobra.NoArgs,
	RunE:  runContentList,
}

var contentGetCmd = &cobra.Command{
	Use:   "get [content-id]",
	Short: "Show a saved page",
	Args:  cobra.ExactArgs(1),
	RunE:  runContentGet,
}

var contentDeleteCmd = &cobra.Command{
	Use:   "delete [content-id]",
	Short: "Delete a saved page and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runContentDelete,
}

var contentClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all pages, chunks and history",
	Args:  cobra.NoArgs,
	RunE:  runContentClear,
}

var (
	contentJSONOutput bool
	contentShowChunks bool
	contentClearYes   bool
)

func init() {
	contentListCmd.Flags().BoolVar(&contentJSONOutput, "json", false, "output as JSON")
	contentGetCmd.Flags().BoolVar(&contentJSONOutput, "json", false, "output as JSON")
	contentGetCmd.Flags().BoolVarP(&contentShowChunks, "chunks", "c", false, "print every chunk")
	contentClearCmd.Flags().BoolVarP(&contentClearYes, "yes", "y", false, "skip the confirmation prompt")

	contentCmd.AddCommand(contentListCmd)
	contentCmd.AddCommand(contentGetCmd)
	contentCmd.AddCommand(contentDeleteCmd)
	contentCmd.AddCommand(contentClearCmd)
	rootCmd.AddCommand(contentCmd)
}

func runContentList(cmd *cobra.Command, _ []string) error {
	if contentService == nil {
		return errors.New("content service not configured")
	}

	items, err := contentService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list content: %w", err)
	}

	if contentJSONOutput {
		out := make([]contentJSON, 0, len(items))
		for i := range items {
			out = append(out, toContentJSON(&items[i]))
		}
		return printJSON(cmd, out)
	}

	if len(items) == 0 {
		cmd.Println("No saved pages. Add one with 'pagewise ingest <url>'.")
		return nil
	}

	for i := range items {
		cmd.Printf("  %s\n", items[i].ID)
		cmd.Printf("    Title:  %s\n", items[i].Title)
		cmd.Printf("    URL:    %s\n", items[i].URL)
		cmd.Printf("    Chunks: %d\n", items[i].TotalChunks)
		cmd.Println()
	}

	cmd.Printf("Total: %d pages\n", len(items))
	return nil
}

func runContentGet(cmd *cobra.Command, args []string) error {
	if contentService == nil {
		return errors.New("content service not configured")
	}

	item, err := contentService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get content: %w", err)
	}

	if contentJSONOutput && !contentShowChunks {
		return printJSON(cmd, toContentJSON(item))
	}

	chunks, err := contentService.Chunks(cmd.Context(), item.ID)
	if err != nil {
		return fmt.Errorf("failed to get chunks: %w", err)
	}

	if contentJSONOutput {
		out := make([]chunkJSON, 0, len(chunks))
		for i := range chunks {
			out = append(out, toChunkJSON(&chunks[i]))
		}
		return printJSON(cmd, struct {
			Content contentJSON `json:"content"`
			Chunks  []chunkJSON `json:"chunks"`
		}{toContentJSON(item), out})
	}

	cmd.Printf("Content: %s\n\n", item.ID)
	cmd.Printf("  Title:   %s\n", item.Title)
	cmd.Printf("  URL:     %s\n", item.URL)
	cmd.Printf("  Chunks:  %d\n", item.TotalChunks)
	cmd.Printf("  Created: %s\n", item.CreatedAt.Format("2006-01-02 15:04:05"))

	if !contentShowChunks {
		cmd.Printf("\n  %s\n", truncate(item.Content, 300))
		return nil
	}

	for i := range chunks {
		cmd.Printf("\n--- chunk %d (%s) ---\n", chunks[i].ChunkIndex, chunks[i].ID)
		cmd.Println(chunks[i].Content)
	}
	return nil
}

func runContentDelete(cmd *cobra.Command, args []string) error {
	if contentService == nil {
		return errors.New("content service not configured")
	}

	if err := contentService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete content: %w", err)
	}

	cmd.Printf("Deleted %s\n", args[0])
	return nil
}

func runContentClear(cmd *cobra.Command, _ []string) error {
	if contentService == nil {
		return errors.New("content service not configured")
	}

	if !contentClearYes {
		cmd.Print("Delete all saved pages and history? [y/N]: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		answer := strings.ToLower(readLine(reader))
		if answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := contentService.ClearAll(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear content: %w", err)
	}

	cmd.Println("All content and history deleted.")
	return nil
}
