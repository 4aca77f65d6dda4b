package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently asked questions",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of entries (0 = all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	if contentService == nil {
		return errors.New("content service not configured")
	}

	records, err := contentService.History(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if historyJSON {
		out := make([]queryRecordJSON, 0, len(records))
		for _, r := range records {
			out = append(out, queryRecordJSON{
				ID:        r.ID,
				Question:  r.Question,
				Answer:    r.Answer,
				Timestamp: r.Timestamp,
				Sources:   r.Sources,
			})
		}
		return printJSON(cmd, out)
	}

	if len(records) == 0 {
		cmd.Println("No questions asked yet.")
		return nil
	}

	for _, r := range records {
		cmd.Printf("%s  %s\n", r.Timestamp.Local().Format("2006-01-02 15:04"), r.Question)
		cmd.Printf("    %s\n", truncate(r.Answer, 120))
		for _, url := range r.Sources {
			cmd.Printf("    - %s\n", url)
		}
		cmd.Println()
	}
	return nil
}
