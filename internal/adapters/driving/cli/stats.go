package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge base statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the knowledge base for problems",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(healthCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	if contentService == nil {
		return errors.New("content service not configured")
	}

	stats, err := contentService.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get stats: %w", err)
	}

	if statsJSON {
		return printJSON(cmd, map[string]any{
			"total_content":      stats.TotalContent,
			"total_chunks":       stats.TotalChunks,
			"total_queries":      stats.TotalQueries,
			"storage_size_bytes": stats.StorageSizeBytes,
			"vector_dimension":   stats.VectorDimension,
		})
	}

	cmd.Printf("Pages:            %d\n", stats.TotalContent)
	cmd.Printf("Chunks:           %d\n", stats.TotalChunks)
	cmd.Printf("Questions:        %d\n", stats.TotalQueries)
	cmd.Printf("Storage:          %s\n", formatBytes(stats.StorageSizeBytes))
	cmd.Printf("Vector dimension: %d\n", stats.VectorDimension)
	return nil
}

func runHealth(cmd *cobra.Command, _ []string) error {
	if contentService == nil {
		return errors.New("content service not configured")
	}

	health := contentService.Health(cmd.Context())
	if health.Healthy {
		cmd.Println("Healthy")
		return nil
	}

	cmd.Println("Unhealthy:")
	for _, issue := range health.Issues {
		cmd.Printf("  - %s\n", issue)
	}
	return errors.New("health check failed")
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
