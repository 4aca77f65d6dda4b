package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/pagewise/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings stored in config.toml.

AI providers are optional. Without an embedding provider, vectors are
computed offline; without an LLM, answers are assembled from the best
matching chunks.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a single setting",
	Long: `Change a single setting by its dotted key.

Examples:
  pagewise settings set retrieval.fusion weighted
  pagewise settings set retrieval.alpha 0.6
  pagewise settings set chunking.size 800
  pagewise settings set ingest.allow_mock_content false

Run 'pagewise settings keys' for the full list.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding [provider]",
	Short: "Configure the embedding provider",
	Long: `Configure the embedding provider (ollama or openai).
Prompts for the provider when omitted and for an API key when needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm [provider]",
	Short: "Configure the LLM provider",
	Long: `Configure the LLM provider (ollama, openai or anthropic).
Prompts for the provider when omitted and for an API key when needed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSettingsLLM,
}

var settingsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that configured providers are reachable",
	Args:  cobra.NoArgs,
	RunE:  runSettingsCheck,
}

var settingsModel string

func init() {
	settingsEmbeddingCmd.Flags().StringVarP(&settingsModel, "model", "m", "", "model name (default: provider default)")
	settingsLLMCmd.Flags().StringVarP(&settingsModel, "model", "m", "", "model name (default: provider default)")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsCheckCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	cmd.Printf("  Timeout: %ds\n", settings.Embedding.TimeoutSeconds)
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Printf("  Retries: %d\n", settings.LLM.Retries)
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Fusion: %s\n", settings.Retrieval.Fusion.Description())
	if settings.Retrieval.Fusion == domain.FusionWeighted {
		cmd.Printf("  Alpha: %.2f\n", settings.Retrieval.Alpha)
	}
	cmd.Printf("  Search limit: %d\n", settings.Retrieval.SearchLimit)
	cmd.Printf("  Answer limit: %d\n", settings.Retrieval.AnswerLimit)
	cmd.Println()

	cmd.Println("[Chunking]")
	cmd.Printf("  Size: %d\n", settings.Chunking.Size)
	cmd.Printf("  Overlap: %d\n", settings.Chunking.Overlap)
	cmd.Println()

	cmd.Println("[Ingest]")
	cmd.Printf("  Mock content on fetch failure: %s\n", yesNo(settings.Ingest.AllowMockContent))
	cmd.Printf("  Offline vectors on provider failure: %s\n", yesNo(settings.Ingest.AllowFallbackEmbedding))
	cmd.Printf("  Fetch timeout: %ds\n", settings.Ingest.FetchTimeoutSeconds)
	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	if provider == domain.AIProviderNone {
		return
	}
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}

	cmd.Printf("%s = %s\n", args[0], args[1])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	provider, err := chooseProvider(cmd, reader, args, domain.AllEmbeddingProviders())
	if err != nil {
		return err
	}

	model := modelOrDefault(settingsModel, domain.DefaultEmbeddingModels()[provider])
	apiKey, err := promptAPIKey(cmd, reader, provider)
	if err != nil {
		return err
	}

	if err := settingsService.SetEmbeddingProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), model)
	cmd.Println("Pages ingested with another model keep their old vectors; re-ingest them for consistent results.")
	return nil
}

func runSettingsLLM(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	provider, err := chooseProvider(cmd, reader, args, domain.AllLLMProviders())
	if err != nil {
		return err
	}

	model := modelOrDefault(settingsModel, domain.DefaultLLMModels()[provider])
	apiKey, err := promptAPIKey(cmd, reader, provider)
	if err != nil {
		return err
	}

	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func runSettingsCheck(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Print("Validating configuration... ")
	if err := settingsService.Validate(); err != nil {
		cmd.Println("FAILED")
		return err
	}
	cmd.Println("OK")
	return nil
}

// chooseProvider takes the provider from args or asks for it.
func chooseProvider(
	cmd *cobra.Command,
	reader *bufio.Reader,
	args []string,
	providers []domain.AIProvider,
) (domain.AIProvider, error) {
	if len(args) == 1 {
		provider := domain.AIProvider(strings.ToLower(args[0]))
		for _, p := range providers {
			if p == provider {
				return p, nil
			}
		}
		return "", fmt.Errorf("%w: unsupported provider %q", domain.ErrInvalidInput, args[0])
	}

	cmd.Println("Select Provider")
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	return providers[idx-1], nil
}

func promptAPIKey(cmd *cobra.Command, reader *bufio.Reader, provider domain.AIProvider) (string, error) {
	if !provider.RequiresAPIKey() {
		return "", nil
	}
	cmd.Print("Enter API key: ")
	apiKey := readPassword(cmd.InOrStdin(), reader)
	cmd.Println()
	if apiKey == "" {
		return "", errors.New("API key is required for this provider")
	}
	return apiKey, nil
}

func modelOrDefault(model, fallback string) string {
	if model = strings.TrimSpace(model); model != "" {
		return model
	}
	return fallback
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when in is a terminal.
func readPassword(in io.Reader, reader *bufio.Reader) string {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
