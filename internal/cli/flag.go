package cli

import (
	"context"
	"fmt"

	"talentlens/internal/ai"
	"talentlens/internal/common"
	"talentlens/internal/types"

	"github.com/spf13/cobra"
)

var flagCmd = &cobra.Command{
	Use:   "flag [resume-file] [discovery-summary-file]",
	Short: "Check a resume for red flags",
	Long: `Assess a resume for inconsistencies, exaggerations and gaps. The
command takes two arguments: the path to the resume file and the path
to a discovery summary file produced by the discover command. The
discovery summary is a hard prerequisite; the assessment cross-checks
the resume against it.`,
	Args: cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if flagConfig.OutputFormat == "" {
			flagConfig.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(flagConfig.OutputFormat, cfg.App.SupportedFormats)
	},
	RunE: runFlag,
}

var flagConfig common.CommandConfig

func init() {
	flagCmd.Flags().StringVarP(&flagConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	flagCmd.Flags().StringVar(&flagConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	_ = flagCmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg := getConfigFromContext(cmd.Context())
		return common.GetSupportedFormats(cfg.App.SupportedFormats), cobra.ShellCompDirectiveNoFileComp
	})
}

func runFlag(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	flagAIConfig := cfg.GetFlagConfig()
	aiService, err := ai.NewService(&flagAIConfig, "flag", logger)
	if err != nil {
		return fmt.Errorf("failed to create AI service: %w", err)
	}

	createInput := func(contents []string) (types.DetectFlagsInput, error) {
		if len(contents) != 2 {
			return types.DetectFlagsInput{}, fmt.Errorf("expected 2 file paths, got %d", len(contents))
		}
		return types.DetectFlagsInput{
			ResumeText:       contents[0],
			DiscoverySummary: contents[1],
		}, nil
	}

	logDetails := func(input types.DetectFlagsInput, cfg common.CommandConfig) {
		logger.Info("Starting red-flag detection",
			"resume_chars", len(input.ResumeText),
			"summary_chars", len(input.DiscoverySummary),
			"output_format", cfg.OutputFormat)
	}

	flagOperation := func(ctx context.Context, input types.DetectFlagsInput) (types.DetectFlagsOutput, *ai.TokenUsage, error) {
		return aiService.Provider.DetectFlags(ctx, input)
	}

	err = common.RunAICommand(
		cmd.Context(),
		logger,
		flagConfig,
		args,
		createInput,
		flagOperation,
		logDetails,
	)

	if err != nil {
		return fmt.Errorf("failed to detect red flags: %w", err)
	}
	logger.Info("Red-flag detection completed successfully")
	return nil
}
