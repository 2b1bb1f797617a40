package cli

import (
	"fmt"

	"talentlens/internal/pipeline"
	"talentlens/internal/server"
	"talentlens/internal/store"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for the candidate intelligence pipeline",
	Long: `Start an HTTP server that exposes the candidate pipeline and record
store over a REST API.

Available endpoints:
- POST /pipeline/parse: Extract structured fields from resume text
- POST /pipeline/discover: Sketch a candidate's public presence
- POST /pipeline/flag: Check a resume for red flags
- POST /pipeline/match: Score a resume against a job description
- GET/POST /candidates: List records, or parse a resume into a new record
- POST /candidates/upsert: Create or merge a record by external uid
- GET/DELETE /candidates/{id}: Fetch or delete a record
- POST /candidates/{id}/stages/{stage}: Run a stage and merge its output
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("port", "p", "", "Port to listen on (default from config)")
	serveCmd.Flags().String("host", "", "Host to bind to (default from config)")
	serveCmd.Flags().String("store-driver", "", "Candidate store driver: memory or postgres (overrides config)")
	serveCmd.Flags().String("store-dsn", "", "Candidate store DSN for the postgres driver (overrides config)")

	// Bind flags to viper config keys
	bindFlag := func(key, flagName string) {
		if err := viper.BindPFlag(key, serveCmd.Flags().Lookup(flagName)); err != nil {
			panic(err)
		}
	}

	bindFlag("server.port", "port")
	bindFlag("server.host", "host")
	bindFlag("store.driver", "store-driver")
	bindFlag("store.dsn", "store-dsn")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	orchestrator, err := pipeline.NewOrchestrator(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create stage services: %w", err)
	}

	collection, err := store.NewCollection(cfg.Store, logger)
	if err != nil {
		return fmt.Errorf("failed to open candidate collection: %w", err)
	}

	candidateStore, err := store.NewCandidateStore(cmd.Context(), collection, logger)
	if err != nil {
		return fmt.Errorf("failed to load candidate store: %w", err)
	}

	serverCfg := server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: int64(cfg.App.MaxFileSize),
		RateLimit:      &cfg.Server.RateLimit,
	}
	return server.NewServer(cfg, serverCfg, orchestrator, candidateStore, logger).Start()
}
