package server

import (
	"time"

	"talentlens/internal/config"
	talentlensErrors "talentlens/internal/errors"
	"talentlens/internal/pipeline"
	"talentlens/internal/store"
)

// ParseRequest represents the request body for the parse endpoint
type ParseRequest struct {
	ResumeText string `json:"resumeText"`
}

// DiscoverRequest represents the request body for the discover endpoint
type DiscoverRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// FlagRequest represents the request body for the flag endpoint
type FlagRequest struct {
	ResumeText       string `json:"resumeText"`
	DiscoverySummary string `json:"discoverySummary"`
}

// MatchRequest represents the request body for the match endpoint
type MatchRequest struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

// CreateCandidateRequest creates a candidate record from raw resume text
type CreateCandidateRequest struct {
	ExternalUID string `json:"externalUid,omitempty"`
	ResumeText  string `json:"resumeText"`
}

// UpsertCandidateRequest merges fields into the record for an external uid
type UpsertCandidateRequest struct {
	ExternalUID    string  `json:"externalUid"`
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Education      *string `json:"education,omitempty"`
	Experience     *string `json:"experience,omitempty"`
	Skills         *string `json:"skills,omitempty"`
	Certifications *string `json:"certifications,omitempty"`
}

// RunStageRequest carries the per-request inputs for a stage run against a
// stored candidate record. JobDescription is only used by the match stage;
// ResumeText only by a parse re-run.
type RunStageRequest struct {
	ResumeText     string `json:"resumeText,omitempty"`
	JobDescription string `json:"jobDescription,omitempty"`
}

// SetApplicationRequest records the candidate's current job application
type SetApplicationRequest struct {
	JobID  string `json:"jobId"`
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server holds configuration for the HTTP server
type Server struct {
	Host    string
	Port    string
	Version string

	// Full application configuration
	AppConfig *config.Config

	// Pipeline orchestration and candidate storage
	Orchestrator *pipeline.Orchestrator
	Store        *store.CandidateStore

	// API Authentication
	APIKeys map[string]bool

	// Timeout configurations
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// Request size limit
	MaxRequestSize int64

	// Rate limiting
	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	// Logger
	Logger *talentlensErrors.Logger
}

// ServerConfig holds configuration for creating a Server instance
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, orch *pipeline.Orchestrator, candidateStore *store.CandidateStore, logger *talentlensErrors.Logger) *Server {
	// Convert API keys slice to map for O(1) lookup
	apiKeyMap := make(map[string]bool)
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	var rateLimiter *RateLimiter
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		rateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		Orchestrator:   orch,
		Store:          candidateStore,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		RateLimiter:    rateLimiter,
		Logger:         logger,
	}
}
