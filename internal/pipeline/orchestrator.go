package pipeline

import (
	"context"

	"talentlens/internal/ai"
	"talentlens/internal/config"
	"talentlens/internal/errors"
	"talentlens/internal/types"
)

// Orchestrator owns one model-backed service per stage and enforces the
// stage dependency contract. It never writes to the candidate store;
// merging outputs back into records is the caller's responsibility.
type Orchestrator struct {
	services map[Stage]*ai.Service
	logger   *errors.Logger
}

// NewOrchestrator builds a service for each stage from its resolved
// per-stage configuration.
func NewOrchestrator(cfg *config.Config, logger *errors.Logger) (*Orchestrator, error) {
	services := make(map[Stage]*ai.Service, len(Stages))
	for _, stage := range Stages {
		stageCfg := cfg.GetStageConfig(string(stage))
		service, err := ai.NewService(&stageCfg, string(stage), logger)
		if err != nil {
			return nil, err
		}
		services[stage] = service
	}
	return &Orchestrator{services: services, logger: logger}, nil
}

// CanRun exposes the guard predicate for callers that schedule stages.
func (o *Orchestrator) CanRun(stage Stage, state StageState) bool {
	return CanRun(stage, state)
}

// RunParse extracts structured candidate fields from raw resume text.
func (o *Orchestrator) RunParse(ctx context.Context, input types.ParseResumeInput) (types.ParseResumeOutput, *ai.TokenUsage, error) {
	return o.services[StageParse].Provider.ParseResume(ctx, input)
}

// RunDiscover produces a public-presence impression from name and email.
func (o *Orchestrator) RunDiscover(ctx context.Context, input types.DiscoverProfileInput) (types.DiscoverProfileOutput, *ai.TokenUsage, error) {
	return o.services[StageDiscover].Provider.DiscoverProfile(ctx, input)
}

// RunFlag assesses the resume against the discovery summary. The
// discovery output is a hard prerequisite.
func (o *Orchestrator) RunFlag(ctx context.Context, input types.DetectFlagsInput) (types.DetectFlagsOutput, *ai.TokenUsage, error) {
	state := StageState{ResumeText: input.ResumeText}
	if input.DiscoverySummary != "" {
		state.DiscoverySummary = &input.DiscoverySummary
	}
	if !CanRun(StageFlag, state) {
		return types.DetectFlagsOutput{}, nil, dependencyErr(StageFlag)
	}
	return o.services[StageFlag].Provider.DetectFlags(ctx, input)
}

// RunMatch scores the resume against a job description.
func (o *Orchestrator) RunMatch(ctx context.Context, input types.MatchRoleInput) (types.MatchRoleOutput, *ai.TokenUsage, error) {
	state := StageState{ResumeText: input.ResumeText, JobDescription: input.JobDescription}
	if !CanRun(StageMatch, state) {
		return types.MatchRoleOutput{}, nil, dependencyErr(StageMatch)
	}
	return o.services[StageMatch].Provider.MatchRole(ctx, input)
}

// Service returns the underlying stage service, or nil for an unknown
// stage. Used by health checks and breaker stats.
func (o *Orchestrator) Service(stage Stage) *ai.Service {
	return o.services[stage]
}

// Close releases every stage provider.
func (o *Orchestrator) Close() error {
	var firstErr error
	for _, stage := range Stages {
		if service := o.services[stage]; service != nil && service.Provider != nil {
			if err := service.Provider.Close(); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
