package cli

import (
	"fmt"

	"talentlens/internal/ai"
	"talentlens/internal/common"
	"talentlens/internal/types"

	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [name] [email]",
	Short: "Sketch a candidate's public presence from name and email",
	Long: `Generate a short summary of a candidate's likely public presence from
their name and email address. No real web lookup is performed: the
summary is a model-generated impression and must be treated as
advisory, never as verified data.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if discoverConfig.OutputFormat == "" {
			discoverConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(discoverConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runDiscover,
}

var discoverConfig common.CommandConfig

func init() {
	discoverCmd.Flags().StringVarP(&discoverConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	discoverCmd.Flags().StringVar(&discoverConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = discoverCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

// runDiscover takes its input from the arguments directly rather than
// from files, so it bypasses the file-based command runner.
func runDiscover(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	discoverAIConfig := cfg.GetDiscoverConfig()
	aiService, err := ai.NewService(&discoverAIConfig, "discover", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	input := types.DiscoverProfileInput{
		Name:  args[0],
		Email: args[1],
	}

	logger.Info("Starting profile discovery",
		"name", input.Name,
		"output_format", discoverConfig.OutputFormat)

	result, tokenUsage, err := aiService.Provider.DiscoverProfile(cmd.Context(), input)
	if err != nil {
		return fmt.Errorf("failed to discover profile: %w", err)
	}

	if tokenUsage != nil {
		logger.Info("AI token usage",
			"input_tokens", tokenUsage.InputTokens,
			"output_tokens", tokenUsage.OutputTokens,
			"total_tokens", tokenUsage.TotalTokens)
	}

	outputHandler := common.NewOutputHandler(logger)
	if err := outputHandler.HandleOutput(result, discoverConfig); err != nil {
		return err
	}
	logger.Info("Profile discovery completed successfully")
	return nil
}
