package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askJSON bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about saved pages",
	Long: `Answers the question from the most relevant saved chunks and lists
the pages it drew on. Every question is recorded in the history.

With an LLM provider configured the answer is generated from the
retrieved context; otherwise it is assembled from the best matches.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if answerService == nil {
		return errors.New("answer service not configured")
	}

	answer, err := answerService.AnswerQuestion(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	if askJSON {
		return printJSON(cmd, toAnswerJSON(answer))
	}

	cmd.Println(answer.Text)
	if len(answer.Sources) == 0 {
		return nil
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, s := range answer.Sources {
		cmd.Printf("  [%d] %s\n", i+1, s.Title)
		cmd.Printf("      %s\n", s.URL)
	}
	return nil
}
