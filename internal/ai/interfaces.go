package ai

import (
	"context"

	"talentlens/internal/types"

	"google.golang.org/genai"
)

// Provider is the set of pipeline stages backed by a generative model.
// All methods return token usage information - callers can ignore it if not needed
type Provider interface {
	ParseResume(ctx context.Context, input types.ParseResumeInput) (types.ParseResumeOutput, *TokenUsage, error)
	DiscoverProfile(ctx context.Context, input types.DiscoverProfileInput) (types.DiscoverProfileOutput, *TokenUsage, error)
	DetectFlags(ctx context.Context, input types.DetectFlagsInput) (types.DetectFlagsOutput, *TokenUsage, error)
	MatchRole(ctx context.Context, input types.MatchRoleInput) (types.MatchRoleOutput, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// contentGenerator is the seam between the invoker and the generation
// backend. *genai.Models satisfies it; tests substitute a fake.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}
