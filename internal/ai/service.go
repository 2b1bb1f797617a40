package ai

import (
	"context"
	"fmt"

	"talentlens/internal/config"
	"talentlens/internal/errors"
)

// Service handles model-backed analysis for a single pipeline stage
type Service struct {
	Provider Provider // Exported for access from server package
	config   *config.StageAIConfig
	logger   *errors.Logger
}

// NewService creates a new AI service instance with configuration for a specific stage
func NewService(cfg *config.StageAIConfig, stageName string, logger *errors.Logger) (*Service, error) {
	var provider Provider
	var err error

	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"stage", stageName,
		"model", cfg.Model,
		"temperature", *cfg.Temperature,
		"timeout", *cfg.Timeout,
		"use_system_prompts", *cfg.UseSystemPrompts)

	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, stageName, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}

	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeModelUnavailable,
			"Failed to create AI provider", err)
	}

	return &Service{
		Provider: provider,
		config:   cfg,
		logger:   logger,
	}, nil
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) any {
	return s.Provider.GetModelInfo(ctx)
}
