package cli

import (
	"fmt"

	"talentlens/internal/common"
	"talentlens/internal/errors"
	"talentlens/internal/store"

	"github.com/spf13/cobra"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates",
	Short: "Inspect the candidate record store",
	Long: `Inspect candidate records held in the configured store. These commands
talk to the durable store directly; use the serve command's REST API
to create records and run pipeline stages against them.`,
}

var candidatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all candidate records",
	RunE:  runCandidatesList,
}

var candidatesGetCmd = &cobra.Command{
	Use:   "get [record-id]",
	Short: "Show a single candidate record",
	Args:  cobra.ExactArgs(1),
	RunE:  runCandidatesGet,
}

var candidatesDeleteCmd = &cobra.Command{
	Use:   "delete [record-id]",
	Short: "Delete a candidate record",
	Args:  cobra.ExactArgs(1),
	RunE:  runCandidatesDelete,
}

var candidatesConfig common.CommandConfig

func init() {
	candidatesCmd.PersistentFlags().StringVarP(&candidatesConfig.OutputFile, "output", "o", "", "Output file path (default: stdout)")
	candidatesCmd.PersistentFlags().StringVar(&candidatesConfig.OutputFormat, "format", "", "Output format: json, text, or markdown")

	candidatesCmd.AddCommand(candidatesListCmd)
	candidatesCmd.AddCommand(candidatesGetCmd)
	candidatesCmd.AddCommand(candidatesDeleteCmd)
}

// openCandidateStore builds the candidate store from the configured
// driver and loads the projection from the durable collection.
func openCandidateStore(cmd *cobra.Command) (*store.CandidateStore, *errors.Logger, error) {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	if candidatesConfig.OutputFormat == "" {
		candidatesConfig.OutputFormat = cfg.App.DefaultFormat
	}
	if err := common.ValidateOutputFormat(candidatesConfig.OutputFormat, cfg.App.SupportedFormats); err != nil {
		return nil, nil, err
	}

	collection, err := store.NewCollection(cfg.Store, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open candidate collection: %w", err)
	}

	candidateStore, err := store.NewCandidateStore(cmd.Context(), collection, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load candidate store: %w", err)
	}

	return candidateStore, logger, nil
}

func runCandidatesList(cmd *cobra.Command, args []string) error {
	candidateStore, logger, err := openCandidateStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(candidateStore, logger)

	records := candidateStore.List(cmd.Context())
	if len(records) == 0 {
		fmt.Println("No candidate records found")
		return nil
	}

	outputHandler := common.NewOutputHandler(logger)
	return outputHandler.HandleOutput(records, candidatesConfig)
}

func runCandidatesGet(cmd *cobra.Command, args []string) error {
	candidateStore, logger, err := openCandidateStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(candidateStore, logger)

	record, err := candidateStore.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	outputHandler := common.NewOutputHandler(logger)
	return outputHandler.HandleOutput(record, candidatesConfig)
}

func runCandidatesDelete(cmd *cobra.Command, args []string) error {
	candidateStore, logger, err := openCandidateStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(candidateStore, logger)

	if err := candidateStore.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}

	logger.Info("Candidate record deleted", "id", args[0])
	fmt.Printf("Deleted candidate record %s\n", args[0])
	return nil
}

func closeStore(candidateStore *store.CandidateStore, logger *errors.Logger) {
	if err := candidateStore.Close(); err != nil {
		logger.LogError(err, "Failed to close candidate store")
	}
}
